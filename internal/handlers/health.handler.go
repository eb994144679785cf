package handlers

import (
	"context"
	"time"

	"github.com/nimasrn/wa-messenger/internal/whatsapp"
	xhttp "github.com/nimasrn/wa-messenger/pkg/http"
)

const pingTimeout = 2 * time.Second

type StateProvider interface {
	State() whatsapp.State
}

// Pinger is a backing service checked by the health endpoint.
type Pinger interface {
	Ping(ctx context.Context) error
}

type HealthHandler struct {
	session StateProvider
	deps    map[string]Pinger
	started time.Time
}

func RegisterHealthRoutes(g *xhttp.Group, h *HealthHandler) {
	g.GET("/health", h.GetHealth)
}

// NewHealthHandler reports the session state and pings deps by name. A
// disconnected WhatsApp session does not make the process unhealthy.
func NewHealthHandler(session StateProvider, deps map[string]Pinger) *HealthHandler {
	return &HealthHandler{session: session, deps: deps, started: time.Now()}
}

func (h *HealthHandler) GetHealth(ctx *xhttp.RequestCtx) {
	p := payload{
		"status":   "ok",
		"whatsapp": h.session.State().Status,
		"uptime":   time.Since(h.started).Round(time.Second).String(),
	}
	if len(h.deps) == 0 {
		writeOK(ctx, xhttp.StatusOK, p)
		return
	}

	pctx, cancel := context.WithTimeout(ctx, pingTimeout)
	defer cancel()
	healthy := true
	checks := make(map[string]string, len(h.deps))
	for name, dep := range h.deps {
		if err := dep.Ping(pctx); err != nil {
			checks[name] = err.Error()
			healthy = false
			continue
		}
		checks[name] = "ok"
	}
	p["checks"] = checks

	if !healthy {
		p["status"] = "degraded"
		p["success"] = false
		writeJSON(ctx, xhttp.StatusServiceUnavailable, p)
		return
	}
	writeOK(ctx, xhttp.StatusOK, p)
}
