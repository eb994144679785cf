package whatsapp

import (
	"context"
	"sync"

	"github.com/nimasrn/wa-messenger/internal/status"
)

const demoJID = "0000000000@s.whatsapp.net"

// SentMessage is a message accepted by the demo transport.
type SentMessage struct {
	Target  string
	Message string
}

// DemoClient goes through the session lifecycle without a WhatsApp account.
// Sends are logged and recorded instead of delivered.
type DemoClient struct {
	*machine

	mu      sync.Mutex
	sent    []SentMessage
	failing map[string]error
}

func NewDemoClient(events Publisher) *DemoClient {
	return &DemoClient{
		machine: newMachine(events, true),
		failing: map[string]error{},
	}
}

// FailTarget makes every later send to target return err.
func (d *DemoClient) FailTarget(target string, err error) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.failing[target] = err
}

func (d *DemoClient) Connect(ctx context.Context) error {
	if d.IsReady() {
		return nil
	}
	d.transition(StatusConnecting, "", "")
	d.transition(StatusAuthenticated, demoJID, "")
	d.publish(status.EventAuthenticated, map[string]string{"jid": demoJID})
	d.transition(StatusReady, demoJID, "")
	d.publish(status.EventConnectionReady, d.State())
	log.Info("demo session ready")
	return nil
}

func (d *DemoClient) Disconnect() {
	d.transition(StatusDisconnected, "", "")
	d.publish(status.EventDisconnected, map[string]string{"reason": "manual disconnect"})
}

func (d *DemoClient) Reconnect(ctx context.Context) error {
	d.Disconnect()
	return d.Connect(ctx)
}

func (d *DemoClient) RefreshQR(ctx context.Context) error {
	return ErrAlreadyPaired
}

func (d *DemoClient) SendMessage(ctx context.Context, target, message string) error {
	if !d.IsReady() {
		return ErrNotReady
	}
	if _, err := ParseTarget(target); err != nil {
		return err
	}

	d.mu.Lock()
	defer d.mu.Unlock()
	if err, ok := d.failing[target]; ok {
		return err
	}
	d.sent = append(d.sent, SentMessage{Target: target, Message: message})
	log.Info("demo send", "target", target, "length", len(message))
	return nil
}

// Sent returns a copy of every message accepted so far.
func (d *DemoClient) Sent() []SentMessage {
	d.mu.Lock()
	defer d.mu.Unlock()
	return append([]SentMessage(nil), d.sent...)
}

func (d *DemoClient) Close() error {
	d.Disconnect()
	return nil
}
