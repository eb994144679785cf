// Package whatsapp connects the messenger to a WhatsApp account and reports
// the session lifecycle to the status hub.
package whatsapp

import (
	"errors"
	"sync"

	"github.com/nimasrn/wa-messenger/internal/status"
	"github.com/nimasrn/wa-messenger/pkg/logger"
	"github.com/nimasrn/wa-messenger/pkg/prom"
)

type Status string

const (
	StatusDisconnected  Status = "disconnected"
	StatusConnecting    Status = "connecting"
	StatusQRReady       Status = "qr_ready"
	StatusAuthenticated Status = "authenticated"
	StatusReady         Status = "ready"
	StatusAuthFailure   Status = "auth_failure"
	StatusError         Status = "error"
)

var log = logger.Named("whatsapp")

var (
	ErrNotReady      = errors.New("WhatsApp client is not ready")
	ErrInvalidPhone  = errors.New("invalid phone number")
	ErrAlreadyPaired = errors.New("WhatsApp client is already paired")
)

// State is the snapshot served by the status endpoint and pushed as
// status_update.
type State struct {
	Status   Status `json:"status"`
	IsReady  bool   `json:"isReady"`
	DemoMode bool   `json:"demoMode"`
	JID      string `json:"jid,omitempty"`
	Error    string `json:"error,omitempty"`
}

type Publisher interface {
	Publish(eventType string, data any)
}

type noopPublisher struct{}

func (noopPublisher) Publish(string, any) {}

// machine holds the session state shared by the real and the demo client.
type machine struct {
	mu     sync.RWMutex
	state  State
	qr     string
	events Publisher
}

func newMachine(events Publisher, demo bool) *machine {
	if events == nil {
		events = noopPublisher{}
	}
	return &machine{
		state:  State{Status: StatusDisconnected, DemoMode: demo},
		events: events,
	}
}

func (m *machine) State() State {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.state
}

func (m *machine) IsReady() bool {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.state.IsReady
}

// QRCode returns the current pairing QR code as a PNG data URL, or "" when
// no code is pending.
func (m *machine) QRCode() string {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.qr
}

// transition moves to s and publishes the new state. detail is kept as the
// state's error text for auth_failure and error.
func (m *machine) transition(s Status, jid, detail string) {
	m.mu.Lock()
	prev := m.state.Status
	m.state.Status = s
	m.state.IsReady = s == StatusReady
	if jid != "" {
		m.state.JID = jid
	}
	if s == StatusDisconnected {
		m.state.JID = ""
	}
	m.state.Error = ""
	if s == StatusAuthFailure || s == StatusError {
		m.state.Error = detail
	}
	if s != StatusQRReady {
		m.qr = ""
	}
	snapshot := m.state
	m.mu.Unlock()

	if prev != s {
		log.Info("status changed", "from", prev, "to", s)
		prom.IncSessionStatus(string(s))
	}
	m.events.Publish(status.EventStatusUpdate, snapshot)
}

func (m *machine) setQR(dataURL string) {
	m.mu.Lock()
	m.qr = dataURL
	m.mu.Unlock()
	m.transition(StatusQRReady, "", "")
	m.events.Publish(status.EventQRCode, map[string]string{"qr": dataURL})
}

func (m *machine) publish(eventType string, data any) {
	m.events.Publish(eventType, data)
}
