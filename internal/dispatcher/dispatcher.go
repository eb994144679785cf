// Package dispatcher sends a batch of messages one at a time with a fixed
// pause between sends and records the outcome of every attempt.
package dispatcher

import (
	"context"
	"errors"
	"time"

	"github.com/nimasrn/wa-messenger/internal/model"
	"github.com/nimasrn/wa-messenger/pkg/logger"
	"github.com/nimasrn/wa-messenger/pkg/prom"
)

var (
	ErrInvalidDelay     = errors.New("delay must not be negative")
	ErrInvalidRecipient = errors.New("recipient has no phone number")
)

type Transport interface {
	SendMessage(ctx context.Context, target, message string) error
}

// Recipient is one item of a batch. When Render is set it is called right
// before the send and its output is the message; otherwise Message is sent.
type Recipient struct {
	Phone   string
	Contact *model.Contact
	Message string
	Render  func() string
}

// ProgressFunc is called after every attempt with its position in the batch.
type ProgressFunc func(index, total int, result model.BulkSendResult)

type Batch struct {
	Recipients []Recipient
	Delay      time.Duration
	// Kind labels the send metrics.
	Kind     model.BulkKind
	Progress ProgressFunc
}

type Option func(*Dispatcher)

// WithSleep replaces the function used to wait between sends.
func WithSleep(sleep func(time.Duration)) Option {
	return func(d *Dispatcher) {
		d.sleep = sleep
	}
}

func WithClock(now func() time.Time) Option {
	return func(d *Dispatcher) {
		d.now = now
	}
}

type Dispatcher struct {
	transport Transport
	sleep     func(time.Duration)
	now       func() time.Time
}

func New(transport Transport, opts ...Option) *Dispatcher {
	d := &Dispatcher{
		transport: transport,
		sleep:     time.Sleep,
		now:       time.Now,
	}
	for _, o := range opts {
		o(d)
	}
	return d
}

// Dispatch sends to every recipient in order and returns one result per
// recipient in the same order. A failed send never aborts the batch. The
// delay is applied between consecutive sends, never after the last one.
//
// Once started the batch runs to completion: ctx values are kept but its
// cancellation is ignored.
func (d *Dispatcher) Dispatch(ctx context.Context, b Batch) ([]model.BulkSendResult, error) {
	if b.Delay < 0 {
		return nil, ErrInvalidDelay
	}
	recipients := b.Recipients
	for _, r := range recipients {
		if r.Phone == "" {
			return nil, ErrInvalidRecipient
		}
	}

	ctx = context.WithoutCancel(ctx)
	prom.ObserveBulkSize(len(recipients))

	results := make([]model.BulkSendResult, 0, len(recipients))
	for i, r := range recipients {
		res := d.send(ctx, r, string(b.Kind))
		results = append(results, res)
		if b.Progress != nil {
			b.Progress(i, len(recipients), res)
		}

		if i < len(recipients)-1 && b.Delay > 0 {
			d.sleep(b.Delay)
		}
	}
	return results, nil
}

func (d *Dispatcher) send(ctx context.Context, r Recipient, kind string) model.BulkSendResult {
	msg := r.Message
	if r.Render != nil {
		msg = r.Render()
	}

	start := time.Now()
	err := d.transport.SendMessage(ctx, r.Phone, msg)
	res := model.BulkSendResult{
		Contact:   r.Contact.Clone(),
		Phone:     r.Phone,
		Timestamp: d.now(),
	}
	if err != nil {
		res.Status = model.SendStatusFailed
		res.Error = err.Error()
		logger.Warn("[dispatcher] send failed", "phone", r.Phone, "error", err)
	} else {
		res.Status = model.SendStatusSuccess
		res.Message = msg
		logger.Debug("[dispatcher] message sent", "phone", r.Phone)
	}
	prom.IncMessageSent(string(res.Status), kind)
	prom.ObserveSendDuration(time.Since(start).Seconds(), string(res.Status))
	return res
}

func Summarize(results []model.BulkSendResult) model.BulkSummary {
	s := model.BulkSummary{Total: len(results)}
	for _, r := range results {
		if r.Status == model.SendStatusSuccess {
			s.Successful++
		} else {
			s.Failed++
		}
	}
	return s
}
