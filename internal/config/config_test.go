package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoad(t *testing.T) {
	t.Run("defaults", func(t *testing.T) {
		t.Setenv("STORE_DRIVER", "")
		os.Unsetenv("STORE_DRIVER")

		require.NoError(t, Load(""))
		c := Get()
		assert.Equal(t, ":3000", c.HttpListenAddr)
		assert.Equal(t, StoreDriverJSON, c.StoreDriver)
		assert.Equal(t, 2*time.Second, c.BulkDefaultDelay())
		assert.Equal(t, 5, c.PreviewLimit)
		assert.False(t, c.WhatsAppDemoMode)
	})

	t.Run("env file", func(t *testing.T) {
		path := filepath.Join(t.TempDir(), "test.env")
		require.NoError(t, os.WriteFile(path, []byte("BULK_DEFAULT_DELAY_MS=0\nWHATSAPP_DEMO_MODE=true\nDATA_DIR=/tmp/wa\n"), 0o600))
		t.Cleanup(func() {
			os.Unsetenv("BULK_DEFAULT_DELAY_MS")
			os.Unsetenv("WHATSAPP_DEMO_MODE")
			os.Unsetenv("DATA_DIR")
		})

		require.NoError(t, Load(path))
		c := Get()
		assert.Equal(t, time.Duration(0), c.BulkDefaultDelay())
		assert.True(t, c.WhatsAppDemoMode)
		assert.Equal(t, "/tmp/wa", c.DataDir)
	})

	t.Run("missing env file", func(t *testing.T) {
		err := Load(filepath.Join(t.TempDir(), "nope.env"))
		assert.Error(t, err)
	})

	t.Run("unknown store driver", func(t *testing.T) {
		t.Setenv("STORE_DRIVER", "mongo")
		err := Load("")
		assert.ErrorContains(t, err, "STORE_DRIVER")
	})
}
