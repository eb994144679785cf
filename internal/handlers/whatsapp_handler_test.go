package handlers

import (
	"bytes"
	"context"
	"encoding/json"
	"strings"
	"testing"
	"time"

	"github.com/nimasrn/wa-messenger/internal/status"
	"github.com/nimasrn/wa-messenger/internal/whatsapp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestWhatsAppHandler_Lifecycle(t *testing.T) {
	app := newTestApp(t)
	handler := NewWhatsAppHandler(context.Background(), app.session, app.hub)

	ctx := setupTestContext("GET", "/api/v1/whatsapp/status", nil)
	handler.GetStatus(ctx)
	body := decodeBody(t, ctx)
	assert.Equal(t, "disconnected", body["status"])
	assert.Equal(t, false, body["isReady"])
	assert.Equal(t, true, body["demoMode"])

	ctx = setupTestContext("GET", "/api/v1/whatsapp/qr", nil)
	handler.GetQR(ctx)
	assert.Equal(t, 200, ctx.Response.StatusCode())
	assert.Equal(t, false, decodeBody(t, ctx)["success"])

	ctx = setupTestContext("POST", "/api/v1/whatsapp/connect", nil)
	handler.Connect(ctx)
	assert.Equal(t, 200, ctx.Response.StatusCode())
	assert.True(t, app.session.IsReady())

	ctx = setupTestContext("GET", "/api/v1/whatsapp/status", nil)
	handler.GetStatus(ctx)
	body = decodeBody(t, ctx)
	assert.Equal(t, "ready", body["status"])
	assert.NotEmpty(t, body["jid"])

	ctx = setupTestContext("POST", "/api/v1/whatsapp/refresh-qr", nil)
	handler.RefreshQR(ctx)
	assert.Equal(t, 400, ctx.Response.StatusCode())

	ctx = setupTestContext("POST", "/api/v1/whatsapp/disconnect", nil)
	handler.Disconnect(ctx)
	assert.Equal(t, 200, ctx.Response.StatusCode())
	assert.Equal(t, whatsapp.StatusDisconnected, app.session.State().Status)

	ctx = setupTestContext("POST", "/api/v1/whatsapp/reconnect", nil)
	handler.Reconnect(ctx)
	assert.Equal(t, 200, ctx.Response.StatusCode())
	assert.True(t, app.session.IsReady())
}

func TestWhatsAppHandler_EventsStream(t *testing.T) {
	t.Run("fresh hub sends the current state once", func(t *testing.T) {
		app := newTestApp(t)
		handler := NewWhatsAppHandler(context.Background(), app.session, app.hub)

		frames := streamEvents(t, handler, app.hub, func() {
			app.hub.Publish(status.EventMessageSent, map[string]string{"phone": "+1"})
		})

		require.Len(t, frames, 2)
		assert.Equal(t, status.EventStatusUpdate, frames[0].name)
		assert.Equal(t, status.EventStatusUpdate, frames[0].data["type"])
		assert.Equal(t, "disconnected", frames[0].data["data"].(map[string]any)["status"])
		assert.NotEmpty(t, frames[0].data["timestamp"])

		assert.Equal(t, status.EventMessageSent, frames[1].name)
		assert.Equal(t, "+1", frames[1].data["data"].(map[string]any)["phone"])
	})

	t.Run("connected session replays the latest state once", func(t *testing.T) {
		app := newTestApp(t)
		handler := NewWhatsAppHandler(context.Background(), app.session, app.hub)
		require.NoError(t, app.session.Connect(context.Background()))

		frames := streamEvents(t, handler, app.hub, func() {})

		updates := 0
		for _, f := range frames {
			assert.Equal(t, f.name, f.data["type"])
			assert.Contains(t, f.data, "timestamp")
			if f.name == status.EventStatusUpdate {
				updates++
				assert.Equal(t, "ready", f.data["data"].(map[string]any)["status"])
			}
		}
		assert.Equal(t, 1, updates)
	})
}

type sseFrame struct {
	name string
	data map[string]any
}

// streamEvents opens the event stream, runs publish once the observer is
// registered, closes the hub and returns the frames written.
func streamEvents(t *testing.T, handler *WhatsAppHandler, hub *status.Hub, publish func()) []sseFrame {
	t.Helper()
	ctx := setupTestContext("GET", "/api/v1/whatsapp/events", nil)
	handler.Events(ctx)
	assert.Equal(t, "text/event-stream", string(ctx.Response.Header.ContentType()))
	require.True(t, ctx.Response.IsBodyStream())

	var buf bytes.Buffer
	done := make(chan error, 1)
	go func() {
		done <- ctx.Response.BodyWriteTo(&buf)
	}()

	require.Eventually(t, func() bool { return hub.Count() == 1 }, time.Second, 5*time.Millisecond)
	publish()
	hub.Close()

	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatal("event stream did not finish after the hub closed")
	}

	var frames []sseFrame
	for _, block := range strings.Split(strings.TrimSpace(buf.String()), "\n\n") {
		if strings.HasPrefix(block, ":") {
			continue
		}
		lines := strings.SplitN(block, "\n", 2)
		require.Len(t, lines, 2, block)
		f := sseFrame{name: strings.TrimPrefix(lines[0], "event: ")}
		require.NoError(t, json.Unmarshal([]byte(strings.TrimPrefix(lines[1], "data: ")), &f.data), block)
		frames = append(frames, f)
	}
	return frames
}
