package handlers

import (
	"bufio"
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/nimasrn/wa-messenger/internal/status"
	"github.com/nimasrn/wa-messenger/internal/whatsapp"
	xhttp "github.com/nimasrn/wa-messenger/pkg/http"
	"github.com/nimasrn/wa-messenger/pkg/logger"
	"github.com/nimasrn/wa-messenger/pkg/prom"
)

const heartbeatInterval = 15 * time.Second

// Session is the part of the WhatsApp client the HTTP surface controls.
type Session interface {
	State() whatsapp.State
	QRCode() string
	Connect(ctx context.Context) error
	Reconnect(ctx context.Context) error
	Disconnect()
	RefreshQR(ctx context.Context) error
}

type EventSource interface {
	Subscribe() *status.Subscription
	Unsubscribe(sub *status.Subscription)
}

type WhatsAppHandler struct {
	session Session
	events  EventSource
	// base outlives the request so a pairing started here keeps running.
	base context.Context
}

func RegisterWhatsAppRoutes(g *xhttp.Group, h *WhatsAppHandler) {
	g.GET("/whatsapp/status", h.GetStatus)
	g.GET("/whatsapp/qr", h.GetQR)
	g.POST("/whatsapp/connect", h.Connect)
	g.POST("/whatsapp/reconnect", h.Reconnect)
	g.POST("/whatsapp/disconnect", h.Disconnect)
	g.POST("/whatsapp/refresh-qr", h.RefreshQR)
	g.GET("/whatsapp/events", h.Events)
}

func NewWhatsAppHandler(base context.Context, session Session, events EventSource) *WhatsAppHandler {
	return &WhatsAppHandler{session: session, events: events, base: base}
}

func (h *WhatsAppHandler) GetStatus(ctx *xhttp.RequestCtx) {
	s := h.session.State()
	p := payload{
		"status":   s.Status,
		"isReady":  s.IsReady,
		"demoMode": s.DemoMode,
	}
	if s.JID != "" {
		p["jid"] = s.JID
	}
	if s.Error != "" {
		p["error"] = s.Error
	}
	writeOK(ctx, xhttp.StatusOK, p)
}

// GetQR answers 200 with success false while no code is pending; the UI
// polls it.
func (h *WhatsAppHandler) GetQR(ctx *xhttp.RequestCtx) {
	qr := h.session.QRCode()
	if qr == "" {
		writeJSON(ctx, xhttp.StatusOK, map[string]any{"success": false, "message": "QR code not available"})
		return
	}
	writeOK(ctx, xhttp.StatusOK, payload{"qr": qr})
}

func (h *WhatsAppHandler) Connect(ctx *xhttp.RequestCtx) {
	if err := h.session.Connect(h.base); err != nil {
		writeServiceError(ctx, err)
		return
	}
	writeOK(ctx, xhttp.StatusOK, payload{"message": "WhatsApp connection initiated"})
}

func (h *WhatsAppHandler) Reconnect(ctx *xhttp.RequestCtx) {
	if err := h.session.Reconnect(h.base); err != nil {
		writeServiceError(ctx, err)
		return
	}
	writeOK(ctx, xhttp.StatusOK, payload{"message": "WhatsApp reconnection initiated"})
}

func (h *WhatsAppHandler) Disconnect(ctx *xhttp.RequestCtx) {
	h.session.Disconnect()
	writeOK(ctx, xhttp.StatusOK, payload{"message": "WhatsApp disconnected"})
}

func (h *WhatsAppHandler) RefreshQR(ctx *xhttp.RequestCtx) {
	if err := h.session.RefreshQR(h.base); err != nil {
		writeServiceError(ctx, err)
		return
	}
	writeOK(ctx, xhttp.StatusOK, payload{"message": "QR code refresh initiated"})
}

// Events streams hub events as server-sent events until the client goes
// away or the hub is closed.
func (h *WhatsAppHandler) Events(ctx *xhttp.RequestCtx) {
	ctx.SetContentType("text/event-stream")
	ctx.Response.Header.Set("Cache-Control", "no-cache")
	ctx.Response.Header.Set("Connection", "keep-alive")
	ctx.Response.Header.Set("X-Accel-Buffering", "no")
	ctx.SetStatusCode(xhttp.StatusOK)

	ctx.SetBodyStreamWriter(func(w *bufio.Writer) {
		sub := h.events.Subscribe()
		defer h.events.Unsubscribe(sub)
		prom.StreamOpened()
		defer prom.StreamClosed()

		if !sub.Replayed {
			initial := status.Event{Type: status.EventStatusUpdate, Data: h.session.State(), Timestamp: time.Now()}
			if err := writeEvent(w, initial); err != nil {
				return
			}
		}
		heartbeat := time.NewTicker(heartbeatInterval)
		defer heartbeat.Stop()
		for {
			select {
			case ev, ok := <-sub.C:
				if !ok {
					return
				}
				if err := writeEvent(w, ev); err != nil {
					logger.Debug("[handlers] event stream closed", "error", err)
					return
				}
			case <-heartbeat.C:
				if _, err := w.WriteString(": ping\n\n"); err != nil {
					return
				}
				if err := w.Flush(); err != nil {
					return
				}
			}
		}
	})
}

func writeEvent(w *bufio.Writer, ev status.Event) error {
	b, err := json.Marshal(ev)
	if err != nil {
		return err
	}
	if _, err := fmt.Fprintf(w, "event: %s\ndata: %s\n\n", ev.Type, b); err != nil {
		return err
	}
	return w.Flush()
}
