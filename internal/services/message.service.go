package services

import (
	"context"
	"errors"
	"fmt"
	"io"
	"math"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/nimasrn/wa-messenger/internal/csvimport"
	"github.com/nimasrn/wa-messenger/internal/dispatcher"
	"github.com/nimasrn/wa-messenger/internal/model"
	"github.com/nimasrn/wa-messenger/internal/personalization"
	"github.com/nimasrn/wa-messenger/internal/status"
	"github.com/nimasrn/wa-messenger/pkg/logger"
)

type Transport interface {
	IsReady() bool
	SendMessage(ctx context.Context, target, message string) error
}

type EventPublisher interface {
	Publish(eventType string, data any)
}

type MessagingOptions struct {
	// DefaultDelay applies when a request carries no delay.
	DefaultDelay time.Duration
	PreviewLimit int
	Sleep        func(time.Duration)
	Now          func() time.Time
}

// BulkContact is an inline recipient of a manual bulk request.
type BulkContact struct {
	Name         string            `json:"name"`
	Phone        string            `json:"phone"`
	Email        string            `json:"email"`
	Company      string            `json:"company"`
	CustomFields map[string]string `json:"customFields"`
}

type BulkRequest struct {
	Contacts     []BulkContact  `json:"contacts"`
	Numbers      []string       `json:"numbers"`
	GroupID      string         `json:"groupId"`
	Message      string         `json:"message"`
	Delay        *int64         `json:"delay"`
	Personalize  bool           `json:"personalize"`
	CustomTokens map[string]any `json:"customTokens"`
}

type CSVBulkRequest struct {
	CSV          io.Reader
	Message      string
	Delay        *int64
	Personalize  bool
	CustomTokens map[string]any
}

type MessagingService struct {
	transport  Transport
	contacts   ContactStore
	groups     *GroupService
	templates  TemplateStore
	runs       RunStore
	events     EventPublisher
	resolver   *personalization.Resolver
	dispatcher *dispatcher.Dispatcher
	opts       MessagingOptions
}

// NewMessagingService wires the send paths. runs and events may be nil.
func NewMessagingService(transport Transport, contacts ContactStore, groups GroupStore, templates TemplateStore, runs RunStore, events EventPublisher, opts MessagingOptions) *MessagingService {
	if opts.Now == nil {
		opts.Now = time.Now
	}
	if opts.PreviewLimit <= 0 {
		opts.PreviewLimit = 5
	}
	dopts := []dispatcher.Option{dispatcher.WithClock(opts.Now)}
	if opts.Sleep != nil {
		dopts = append(dopts, dispatcher.WithSleep(opts.Sleep))
	}
	return &MessagingService{
		transport:  transport,
		contacts:   contacts,
		groups:     NewGroupService(groups, contacts),
		templates:  templates,
		runs:       runs,
		events:     events,
		resolver:   personalization.NewResolver(personalization.WithClock(opts.Now)),
		dispatcher: dispatcher.New(transport, dopts...),
		opts:       opts,
	}
}

// Send delivers a single message right away.
func (s *MessagingService) Send(ctx context.Context, number, message string) error {
	number = strings.TrimSpace(number)
	if number == "" || message == "" {
		return ErrNumberRequired
	}
	if !s.transport.IsReady() {
		return ErrNotConnected
	}
	if err := s.transport.SendMessage(ctx, number, message); err != nil {
		s.publish(status.EventMessageSendError, map[string]any{"phone": number, "error": err.Error()})
		return err
	}
	s.publish(status.EventMessageSent, map[string]any{"phone": number})
	return nil
}

// SendBulk sends one message to inline contacts, bare numbers or the
// members of a group. With Personalize set the message is resolved per
// recipient right before its send.
func (s *MessagingService) SendBulk(ctx context.Context, req BulkRequest) (*model.BulkReport, error) {
	if len(req.Contacts) == 0 && len(req.Numbers) == 0 && req.GroupID == "" {
		return nil, ErrRecipientsRequired
	}
	if strings.TrimSpace(req.Message) == "" {
		return nil, ErrMessageRequired
	}
	delay, err := s.delay(req.Delay)
	if err != nil {
		return nil, err
	}

	var targets []model.Recipient
	for _, c := range req.Contacts {
		phone := strings.TrimSpace(c.Phone)
		if phone == "" {
			return nil, ErrInvalidRecipient
		}
		targets = append(targets, model.Recipient{
			Phone: phone,
			Contact: &model.Contact{
				Name:         c.Name,
				Phone:        phone,
				Email:        c.Email,
				Company:      c.Company,
				Tags:         []string{},
				CustomFields: c.CustomFields,
			},
		})
	}
	for _, n := range req.Numbers {
		if n = strings.TrimSpace(n); n != "" {
			targets = append(targets, model.Recipient{Phone: n})
		}
	}

	kind := model.BulkKindManual
	if req.GroupID != "" {
		kind = model.BulkKindGroup
		members, err := s.groups.Contacts(ctx, req.GroupID)
		if err != nil {
			return nil, err
		}
		for _, c := range members {
			targets = append(targets, model.Recipient{Phone: c.Phone, Contact: c})
		}
	}
	if len(targets) == 0 {
		return nil, ErrNoValidContacts
	}
	if !s.transport.IsReady() {
		return nil, ErrNotConnected
	}

	var tokens map[string]any
	if req.Personalize {
		tokens = req.CustomTokens
	}
	return s.run(ctx, bulkRun{
		kind:       kind,
		groupID:    req.GroupID,
		delay:      delay,
		recipients: s.recipients(targets, req.Message, req.Personalize, tokens),
	})
}

// SendCSV sends the message to every row of an uploaded CSV file.
func (s *MessagingService) SendCSV(ctx context.Context, req CSVBulkRequest) (*model.BulkReport, error) {
	if strings.TrimSpace(req.Message) == "" {
		return nil, ErrMessageRequired
	}
	delay, err := s.delay(req.Delay)
	if err != nil {
		return nil, err
	}
	if !s.transport.IsReady() {
		return nil, ErrNotConnected
	}
	targets, err := csvimport.ParseRecipients(req.CSV)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidCSV, err)
	}
	if len(targets) == 0 {
		return nil, ErrNoValidContacts
	}
	return s.run(ctx, bulkRun{
		kind:       model.BulkKindCSV,
		delay:      delay,
		recipients: s.recipients(targets, req.Message, req.Personalize, req.CustomTokens),
	})
}

// Runs lists the most recent bulk runs, newest first.
func (s *MessagingService) Runs(ctx context.Context, limit int64) ([]*model.BulkRun, error) {
	if s.runs == nil {
		return nil, ErrHistoryDisabled
	}
	return s.runs.Recent(ctx, limit)
}

func (s *MessagingService) Run(ctx context.Context, id string) (*model.BulkRun, error) {
	if s.runs == nil {
		return nil, ErrHistoryDisabled
	}
	return s.runs.Get(ctx, id)
}

type bulkRun struct {
	kind       model.BulkKind
	templateID string
	groupID    string
	delay      time.Duration
	recipients []dispatcher.Recipient
}

func (s *MessagingService) run(ctx context.Context, b bulkRun) (*model.BulkReport, error) {
	started := s.opts.Now()
	logger.Info("[messaging] bulk run started", "kind", b.kind, "recipients", len(b.recipients), "delay", b.delay)

	results, err := s.dispatcher.Dispatch(ctx, dispatcher.Batch{
		Recipients: b.recipients,
		Delay:      b.delay,
		Kind:       b.kind,
		Progress:   s.progress,
	})
	switch {
	case errors.Is(err, dispatcher.ErrInvalidDelay):
		return nil, ErrInvalidDelay
	case errors.Is(err, dispatcher.ErrInvalidRecipient):
		return nil, ErrInvalidRecipient
	case err != nil:
		return nil, err
	}

	report := &model.BulkReport{Results: results, Summary: dispatcher.Summarize(results)}
	logger.Info("[messaging] bulk run finished", "kind", b.kind, "total", report.Summary.Total, "failed", report.Summary.Failed)

	if s.runs == nil {
		return report, nil
	}
	run := &model.BulkRun{
		ID:         uuid.NewString(),
		Kind:       b.kind,
		TemplateID: b.templateID,
		GroupID:    b.groupID,
		DelayMs:    b.delay.Milliseconds(),
		StartedAt:  started,
		FinishedAt: s.opts.Now(),
		Results:    results,
		Summary:    report.Summary,
	}
	if err := s.runs.Save(context.WithoutCancel(ctx), run); err != nil {
		logger.Warn("[messaging] failed to record bulk run", "error", err)
		return report, nil
	}
	report.RunID = run.ID
	return report, nil
}

func (s *MessagingService) recipients(targets []model.Recipient, message string, personalize bool, tokens map[string]any) []dispatcher.Recipient {
	out := make([]dispatcher.Recipient, len(targets))
	for i, t := range targets {
		r := dispatcher.Recipient{Phone: t.Phone, Contact: t.Contact, Message: message}
		if personalize {
			contact := t.Contact
			r.Render = func() string {
				return s.resolver.Resolve(message, contact, tokens)
			}
		}
		out[i] = r
	}
	return out
}

func (s *MessagingService) progress(index, total int, res model.BulkSendResult) {
	data := map[string]any{
		"index":  index,
		"total":  total,
		"phone":  res.Phone,
		"status": res.Status,
	}
	if res.Status == model.SendStatusFailed {
		data["error"] = res.Error
		s.publish(status.EventMessageSendError, data)
		return
	}
	s.publish(status.EventMessageSent, data)
}

func (s *MessagingService) publish(eventType string, data any) {
	if s.events != nil {
		s.events.Publish(eventType, data)
	}
}

// maxDelayMs is the largest delay representable as a time.Duration.
const maxDelayMs = math.MaxInt64 / int64(time.Millisecond)

// delay converts a request delay in milliseconds. nil selects the default;
// an explicit zero disables the pause.
func (s *MessagingService) delay(ms *int64) (time.Duration, error) {
	if ms == nil {
		return s.opts.DefaultDelay, nil
	}
	if *ms < 0 || *ms > maxDelayMs {
		return 0, ErrInvalidDelay
	}
	return time.Duration(*ms) * time.Millisecond, nil
}
