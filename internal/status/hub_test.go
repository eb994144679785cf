package status

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestHub(t *testing.T) {
	t.Run("publish reaches every subscriber", func(t *testing.T) {
		h := NewHub(4)
		a, b := h.Subscribe(), h.Subscribe()
		assert.Equal(t, 2, h.Count())

		h.Publish(EventMessageSent, map[string]string{"phone": "1"})

		for _, sub := range []*Subscription{a, b} {
			ev := <-sub.C
			assert.Equal(t, EventMessageSent, ev.Type)
			assert.False(t, ev.Timestamp.IsZero())
		}
	})

	t.Run("latest status is replayed to new subscribers", func(t *testing.T) {
		h := NewHub(4)
		h.Publish(EventStatusUpdate, "connecting")
		h.Publish(EventQRCode, "data:image/png;base64,xx")
		h.Publish(EventStatusUpdate, "qr_ready")

		sub := h.Subscribe()
		assert.True(t, sub.Replayed)
		ev := <-sub.C
		assert.Equal(t, EventStatusUpdate, ev.Type)
		assert.Equal(t, "qr_ready", ev.Data)
		assert.Len(t, sub.C, 0)
	})

	t.Run("slow subscriber does not block publish", func(t *testing.T) {
		h := NewHub(1)
		sub := h.Subscribe()
		assert.False(t, sub.Replayed)
		h.Publish(EventMessageSent, 1)
		h.Publish(EventMessageSent, 2)

		ev := <-sub.C
		assert.Equal(t, 1, ev.Data)
		assert.Len(t, sub.C, 0)
	})

	t.Run("unsubscribe closes the channel", func(t *testing.T) {
		h := NewHub(1)
		sub := h.Subscribe()
		h.Unsubscribe(sub)
		h.Unsubscribe(sub)

		_, ok := <-sub.C
		assert.False(t, ok)
		assert.Equal(t, 0, h.Count())
	})

	t.Run("close ends all subscriptions", func(t *testing.T) {
		h := NewHub(1)
		sub := h.Subscribe()
		h.Close()
		h.Publish(EventMessageSent, 1)

		_, ok := <-sub.C
		assert.False(t, ok)

		late := h.Subscribe()
		_, ok = <-late.C
		require.False(t, ok)
	})
}
