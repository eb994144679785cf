package main

import (
	"context"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/nimasrn/wa-messenger/internal/config"
	"github.com/nimasrn/wa-messenger/internal/filestore"
	"github.com/nimasrn/wa-messenger/internal/handlers"
	"github.com/nimasrn/wa-messenger/internal/history"
	"github.com/nimasrn/wa-messenger/internal/repository"
	"github.com/nimasrn/wa-messenger/internal/services"
	"github.com/nimasrn/wa-messenger/internal/status"
	"github.com/nimasrn/wa-messenger/internal/whatsapp"
	xhttp "github.com/nimasrn/wa-messenger/pkg/http"
	"github.com/nimasrn/wa-messenger/pkg/logger"
	"github.com/nimasrn/wa-messenger/pkg/pg"
	"github.com/nimasrn/wa-messenger/pkg/prom"
	"github.com/nimasrn/wa-messenger/pkg/redis"
)

var (
	version = "dev"
	commit  = "none"
	date    = "unknown"
)

// routes that hold the request open for as long as they run
var longRunning = []string{
	"/api/v1/messages/bulk",
	"/api/v1/personalization/bulk-send",
	"/api/v1/personalization/group-send",
	"/api/v1/whatsapp/events",
}

type session interface {
	handlers.Session
	services.Transport
	Close() error
}

type stores struct {
	contacts  services.ContactStore
	groups    services.GroupStore
	templates services.TemplateStore
	// db is set for the postgres driver only.
	db    *pg.DB
	close func() error
}

func main() {
	defer logger.Sync()

	err := config.Load(argContainsEnvPath())
	if err != nil {
		logger.Error("failed to load config", "error", err)
		return
	}
	cfg := config.Get()
	if err := logger.SetLevel(cfg.LogLevel); err != nil {
		logger.Warn("invalid LOG_LEVEL, keeping default", "level", cfg.LogLevel, "error", err)
	}
	logger.Info("starting wa-messenger", "version", version, "commit", commit, "date", date, "env", cfg.AppEnv)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if cfg.AppDebugMetricsAddr != "" {
		host, _ := os.Hostname()
		if err := prom.Create(host, cfg.AppEnv, cfg.PromNamespace); err != nil {
			logger.Error("failed creating metrics", "error", err)
		}
		go prom.ListenAndServer(cfg.AppDebugMetricsAddr, cfg.AppDebugMetricsURI)
	}

	st, err := openStores(cfg)
	if err != nil {
		logger.Error("failed opening stores", "driver", cfg.StoreDriver, "error", err)
		return
	}
	defer st.close()

	deps := map[string]handlers.Pinger{}
	if st.db != nil {
		deps["postgres"] = st.db
	}

	var runs services.RunStore
	if cfg.RedisAddr != "" {
		redisAdap, err := redis.NewRedisAdapter("default", cfg.RedisUniversalKeyPrefix, &redis.Options{
			Addrs:      []string{cfg.RedisAddr},
			ClientName: cfg.AppName,
			DB:         cfg.RedisDatabase,
			Username:   cfg.RedisUsername,
			Password:   cfg.RedisPassword,
		})
		if err != nil {
			logger.Error("failed connecting to redis", "error", err)
			return
		}
		defer redisAdap.Close()
		store := history.NewStore(redisAdap, cfg.HistoryTTL, cfg.HistoryMaxRuns)
		runs = store
		deps["redis"] = store
	} else {
		logger.Info("REDIS_ADDR not set, bulk run history disabled")
	}

	hub := status.NewHub(0)
	defer hub.Close()

	var wa session
	if cfg.WhatsAppDemoMode {
		wa = whatsapp.NewDemoClient(hub)
	} else {
		wa, err = whatsapp.NewClient(ctx, whatsapp.Options{
			SessionDB: cfg.WhatsAppSessionDB,
			LogLevel:  cfg.WhatsAppLogLevel,
			PrintQR:   cfg.WhatsAppPrintQR,
		}, hub)
		if err != nil {
			logger.Error("failed creating whatsapp client", "error", err)
			return
		}
	}
	defer wa.Close()

	// services
	contactService := services.NewContactService(st.contacts)
	groupService := services.NewGroupService(st.groups, st.contacts)
	templateService := services.NewTemplateService(st.templates)
	messagingService := services.NewMessagingService(wa, st.contacts, st.groups, st.templates, runs, hub, services.MessagingOptions{
		DefaultDelay: cfg.BulkDefaultDelay(),
		PreviewLimit: cfg.PreviewLimit,
	})

	// transport
	s := xhttp.CreateServer(xhttp.ServerOption{
		ReadTimeout:     cfg.HttpServerReadTimeout,
		ReadBufferSize:  cfg.HttpServerReadBufferSize,
		WriteBufferSize: cfg.HttpServerWriteBufferSize,
		Name:            cfg.AppName,
		StaticDir:       cfg.HttpStaticDir,
	})
	s.Use(xhttp.RecoverMiddleware)
	s.Use(xhttp.RequestIDMiddleware)
	s.Use(xhttp.RequestLoggerMiddleware)
	s.Use(xhttp.CORSMiddleware(cfg.HttpCorsOrigin))
	s.Use(xhttp.Except(xhttp.CompressMiddleware(6), "/api/v1/whatsapp/events"))
	s.Use(xhttp.Except(xhttp.TimeoutMiddleware(cfg.HttpServerRequestTimeout), longRunning...))

	// v1 handlers
	g := s.Router.Group("/api/v1")
	handlers.RegisterHealthRoutes(g, handlers.NewHealthHandler(wa, deps))
	handlers.RegisterWhatsAppRoutes(g, handlers.NewWhatsAppHandler(ctx, wa, hub))
	handlers.RegisterMessageRoutes(g, handlers.NewMessageHandler(messagingService))
	handlers.RegisterContactRoutes(g, handlers.NewContactHandler(contactService))
	handlers.RegisterGroupRoutes(g, handlers.NewGroupHandler(groupService))
	handlers.RegisterTemplateRoutes(g, handlers.NewTemplateHandler(templateService))
	handlers.RegisterPersonalizationRoutes(g, handlers.NewPersonalizationHandler(messagingService))

	if cfg.WhatsAppAutoConnect {
		go func() {
			if err := wa.Connect(ctx); err != nil {
				logger.Error("whatsapp auto-connect failed", "error", err)
			}
		}()
	}

	go func() {
		if err := s.ListenAndServe(cfg.HttpListenAddr); err != nil {
			logger.Error("error in running http-server", "error", err)
			stop()
		}
	}()

	<-ctx.Done()
	logger.Info("shutdown signal received")
	hub.Close()
	s.Shutdown()
}

func openStores(cfg *config.Config) (*stores, error) {
	switch cfg.StoreDriver {
	case config.StoreDriverPostgres:
		db, err := pg.CreateReadWrite(readConfig(cfg), writeConfig(cfg), cfg.AppEnv == "dev")
		if err != nil {
			return nil, err
		}
		return &stores{
			contacts:  repository.NewContactRepository(db),
			groups:    repository.NewGroupRepository(db),
			templates: repository.NewTemplateRepository(db),
			db:        db,
			close:     db.Close,
		}, nil
	default:
		fs, err := filestore.Open(cfg.DataDir)
		if err != nil {
			return nil, err
		}
		return &stores{
			contacts:  fs.Contacts(),
			groups:    fs.Groups(),
			templates: fs.Templates(),
			close:     func() error { return nil },
		}, nil
	}
}

func readConfig(cfg *config.Config) pg.Config {
	return pg.Config{
		User:     cfg.PostgresReadUser,
		Host:     cfg.PostgresReadHost,
		Port:     cfg.PostgresReadPort,
		Password: cfg.PostgresReadPassword,
		Database: cfg.PostgresReadDatabase,

		SSLMode:         cfg.PostgresSSLMode,
		MaxOpenConns:    cfg.PostgresMaxOpenConns,
		MaxIdleConns:    cfg.PostgresMaxIdleConns,
		ConnMaxLifetime: cfg.PostgresConnMaxLifetime,
	}
}

func writeConfig(cfg *config.Config) pg.Config {
	return pg.Config{
		User:     cfg.PostgresWriteUser,
		Host:     cfg.PostgresWriteHost,
		Port:     cfg.PostgresWritePort,
		Password: cfg.PostgresWritePassword,
		Database: cfg.PostgresWriteDatabase,

		SSLMode:         cfg.PostgresSSLMode,
		MaxOpenConns:    cfg.PostgresMaxOpenConns,
		MaxIdleConns:    cfg.PostgresMaxIdleConns,
		ConnMaxLifetime: cfg.PostgresConnMaxLifetime,
	}
}

func argContainsEnvPath() string {
	for _, v := range os.Args {
		if strings.HasPrefix(v, "--env=") {
			p := strings.TrimPrefix(v, "--env=")
			if _, err := os.Stat(p); err != nil {
				logger.Error("failed to open the passed env file", "path", p, "error", err)
				return ""
			}
			return p
		}
	}
	return ""
}
