package config

import (
	"time"

	"github.com/Netflix/go-env"
	"github.com/joho/godotenv"
	"github.com/nimasrn/wa-messenger/pkg/logger"
	"github.com/pkg/errors"
)

const (
	StoreDriverJSON     = "json"
	StoreDriverPostgres = "postgres"
)

var config *Config

// Config holds every value the binaries read from the environment.
// Packages below cmd/ never read the environment themselves; they receive
// the values they need from here.
type Config struct {
	AppEnv              string `env:"APP_ENV,default=dev"`
	AppName             string `env:"APP_NAME,default=wa_messenger"`
	AppDebugMetricsAddr string `env:"APP_DEBUG_METRIC_ADDR"`
	AppDebugMetricsURI  string `env:"APP_DEBUG_METRIC_URI,default=/metrics"`

	HttpListenAddr            string        `env:"HTTP_LISTEN_ADDR,default=:3000"`
	HttpServerReadTimeout     time.Duration `env:"HTTP_SERVER_READ_TIMEOUT,default=10s"`
	HttpServerRequestTimeout  time.Duration `env:"HTTP_SERVER_REQUEST_TIMEOUT,default=15s"`
	HttpServerReadBufferSize  int           `env:"HTTP_SERVER_READ_BUFFER_SIZE,default=16384"`
	HttpServerWriteBufferSize int           `env:"HTTP_SERVER_WRITE_BUFFER_SIZE,default=16384"`
	HttpStaticDir             string        `env:"HTTP_STATIC_DIR,default=./public"`
	HttpCorsOrigin            string        `env:"HTTP_CORS_ORIGIN,default=*"`

	StoreDriver string `env:"STORE_DRIVER,default=json"`
	DataDir     string `env:"DATA_DIR,default=./data"`

	PostgresReadHost     string `env:"POSTGRES_READ_HOST"`
	PostgresReadPort     string `env:"POSTGRES_READ_PORT,default=5432"`
	PostgresReadUser     string `env:"POSTGRES_READ_USER"`
	PostgresReadPassword string `env:"POSTGRES_READ_PASSWORD"`
	PostgresReadDatabase string `env:"POSTGRES_READ_DBNAME"`

	PostgresWriteHost     string `env:"POSTGRES_WRITE_HOST"`
	PostgresWritePort     string `env:"POSTGRES_WRITE_PORT,default=5432"`
	PostgresWriteUser     string `env:"POSTGRES_WRITE_USER"`
	PostgresWritePassword string `env:"POSTGRES_WRITE_PASSWORD"`
	PostgresWriteDatabase string `env:"POSTGRES_WRITE_DBNAME"`

	PostgresSSLMode         string        `env:"POSTGRES_SSLMODE,default=disable"`
	PostgresMaxOpenConns    int           `env:"POSTGRES_MAX_OPEN_CONNS,default=10"`
	PostgresMaxIdleConns    int           `env:"POSTGRES_MAX_IDLE_CONNS,default=5"`
	PostgresConnMaxLifetime time.Duration `env:"POSTGRES_CONN_MAX_LIFETIME,default=30m"`

	RedisAddr               string `env:"REDIS_ADDR"`
	RedisUsername           string `env:"REDIS_USER"`
	RedisPassword           string `env:"REDIS_PASS"`
	RedisDatabase           int    `env:"REDIS_DATABASE,default=0"`
	RedisUniversalKeyPrefix string `env:"REDIS_UNIVERSAL_KEY_PREFIX,default=wa:"`

	HistoryTTL     time.Duration `env:"HISTORY_TTL,default=168h"`
	HistoryMaxRuns int64         `env:"HISTORY_MAX_RUNS,default=50"`

	PromNamespace string `env:"PROM_NAMESPACE,default=wa_messenger"`

	LogLevel string `env:"LOG_LEVEL,default=info"`

	WhatsAppSessionDB   string `env:"WHATSAPP_SESSION_DB,default=whatsapp.db"`
	WhatsAppDemoMode    bool   `env:"WHATSAPP_DEMO_MODE,default=false"`
	WhatsAppAutoConnect bool   `env:"WHATSAPP_AUTO_CONNECT,default=true"`
	WhatsAppPrintQR     bool   `env:"WHATSAPP_PRINT_QR,default=true"`
	WhatsAppLogLevel    string `env:"WHATSAPP_LOG_LEVEL,default=warn"`

	BulkDefaultDelayMs int64 `env:"BULK_DEFAULT_DELAY_MS,default=2000"`
	PreviewLimit       int   `env:"PREVIEW_LIMIT,default=5"`
}

// BulkDefaultDelay is the inter-message delay used when a request omits one.
func (c *Config) BulkDefaultDelay() time.Duration {
	return time.Duration(c.BulkDefaultDelayMs) * time.Millisecond
}

func (c *Config) validate() error {
	switch c.StoreDriver {
	case StoreDriverJSON, StoreDriverPostgres:
	default:
		return errors.Errorf("unknown STORE_DRIVER %q", c.StoreDriver)
	}
	if c.BulkDefaultDelayMs < 0 {
		return errors.New("BULK_DEFAULT_DELAY_MS must not be negative")
	}
	if c.PreviewLimit <= 0 {
		return errors.New("PREVIEW_LIMIT must be positive")
	}
	return nil
}

func Load(path string) error {
	logger.Info("loading configs..", "path", path)
	if path != "" {
		logger.Info("trying to publish env from file", "path", path)
		if err := godotenv.Load(path); err != nil {
			return errors.Wrapf(err, "failed to load configuration file %s", path)
		}
	}

	c := &Config{}
	if _, err := env.UnmarshalFromEnviron(c); err != nil {
		return errors.Wrap(err, "failed to map env variables to Config")
	}
	if err := c.validate(); err != nil {
		return err
	}

	config = c
	return nil
}

func Get() *Config {
	if config == nil {
		logger.Panic("Config is not initialized")
	}
	return config
}
