package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/nimasrn/wa-messenger/internal/config"
	"github.com/nimasrn/wa-messenger/internal/model"
	"github.com/nimasrn/wa-messenger/internal/services"
	"github.com/nimasrn/wa-messenger/internal/status"
	"github.com/nimasrn/wa-messenger/internal/whatsapp"
	"github.com/nimasrn/wa-messenger/pkg/logger"
	"github.com/pkg/errors"
)

type transport interface {
	services.Transport
	Connect(ctx context.Context) error
	Close() error
}

// tokenFlags collects repeated -token key=value overrides.
type tokenFlags map[string]any

func (t tokenFlags) String() string {
	pairs := make([]string, 0, len(t))
	for k, v := range t {
		pairs = append(pairs, fmt.Sprintf("%s=%v", k, v))
	}
	return strings.Join(pairs, ",")
}

func (t tokenFlags) Set(v string) error {
	key, value, ok := strings.Cut(v, "=")
	key = strings.TrimSpace(key)
	if !ok || key == "" {
		return fmt.Errorf("token %q is not key=value", v)
	}
	t[key] = value
	return nil
}

type options struct {
	envPath     string
	csvPath     string
	messagePath string
	delayMs     int64
	dryRun      bool
	pairTimeout time.Duration
	tokens      tokenFlags
}

func main() {
	defer logger.Sync()

	opts := options{tokens: tokenFlags{}}

	flag.StringVar(&opts.csvPath, "csv", "contacts.csv", "CSV file with a phone or number column")
	flag.StringVar(&opts.messagePath, "message", "message.txt", "file holding the message, {{tokens}} are personalized per row")
	flag.Int64Var(&opts.delayMs, "delay", -1, "pause between sends in milliseconds, defaults to BULK_DEFAULT_DELAY_MS")
	flag.BoolVar(&opts.dryRun, "dry-run", false, "run against the demo transport instead of WhatsApp")
	flag.DurationVar(&opts.pairTimeout, "pair-timeout", 3*time.Minute, "how long to wait for the session to become ready")
	flag.StringVar(&opts.envPath, "env", "", "optional env file")
	flag.Var(opts.tokens, "token", "key=value override applied to every row, repeatable")
	flag.Parse()

	if err := run(opts); err != nil {
		logger.Error("bulk send failed", "error", err)
		os.Exit(1)
	}
}

func run(opts options) error {
	if err := config.Load(opts.envPath); err != nil {
		return err
	}
	cfg := config.Get()
	if err := logger.SetLevel(cfg.LogLevel); err != nil {
		logger.Warn("invalid LOG_LEVEL, keeping default", "level", cfg.LogLevel)
	}

	message, err := os.ReadFile(opts.messagePath)
	if err != nil {
		return errors.Wrap(err, "read message file")
	}
	f, err := os.Open(opts.csvPath)
	if err != nil {
		return errors.Wrap(err, "open csv")
	}
	defer f.Close()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	hub := status.NewHub(0)
	defer hub.Close()

	var wa transport
	if opts.dryRun {
		wa = whatsapp.NewDemoClient(hub)
	} else {
		wa, err = whatsapp.NewClient(ctx, whatsapp.Options{
			SessionDB: cfg.WhatsAppSessionDB,
			LogLevel:  cfg.WhatsAppLogLevel,
			PrintQR:   true,
		}, hub)
		if err != nil {
			return err
		}
	}
	defer wa.Close()

	if err := waitReady(ctx, wa, hub, opts.pairTimeout); err != nil {
		return err
	}

	// A running batch is not cancelled. Restoring the default signal handling
	// lets an interrupt end the process instead.
	stop()

	var delay *int64
	if opts.delayMs >= 0 {
		delay = &opts.delayMs
	}
	svc := services.NewMessagingService(wa, nil, nil, nil, nil, nil, services.MessagingOptions{
		DefaultDelay: cfg.BulkDefaultDelay(),
	})
	report, err := svc.SendCSV(context.Background(), services.CSVBulkRequest{
		CSV:          f,
		Message:      strings.TrimSpace(string(message)),
		Delay:        delay,
		Personalize:  true,
		CustomTokens: opts.tokens,
	})
	if err != nil {
		return err
	}
	printReport(report)
	return nil
}

// waitReady connects and blocks until the session is ready, pairing fails or
// timeout passes.
func waitReady(ctx context.Context, wa transport, hub *status.Hub, timeout time.Duration) error {
	sub := hub.Subscribe()
	defer hub.Unsubscribe(sub)

	if err := wa.Connect(ctx); err != nil {
		return err
	}
	timer := time.NewTimer(timeout)
	defer timer.Stop()
	for !wa.IsReady() {
		select {
		case ev, ok := <-sub.C:
			if !ok {
				return errors.New("status hub closed")
			}
			if ev.Type == status.EventAuthFailure {
				return errors.Errorf("pairing failed: %v", ev.Data)
			}
		case <-timer.C:
			return errors.Errorf("session not ready after %s", timeout)
		case <-ctx.Done():
			return ctx.Err()
		}
	}
	logger.Info("whatsapp session ready")
	return nil
}

func printReport(r *model.BulkReport) {
	for i, res := range r.Results {
		if res.Status == model.SendStatusFailed {
			fmt.Printf("%3d  %-18s  FAILED  %s\n", i+1, res.Phone, res.Error)
			continue
		}
		fmt.Printf("%3d  %-18s  sent\n", i+1, res.Phone)
	}
	fmt.Printf("\ntotal %d, sent %d, failed %d\n", r.Summary.Total, r.Summary.Successful, r.Summary.Failed)
}
