package whatsapp

import (
	"context"
	"encoding/base64"
	"fmt"
	"io"
	"os"
	"sync"

	_ "github.com/mattn/go-sqlite3"
	"github.com/mdp/qrterminal/v3"
	"github.com/nimasrn/wa-messenger/internal/status"
	"github.com/pkg/errors"
	"github.com/rs/zerolog"
	qrcode "github.com/skip2/go-qrcode"
	"go.mau.fi/whatsmeow"
	"go.mau.fi/whatsmeow/proto/waE2E"
	"go.mau.fi/whatsmeow/store/sqlstore"
	"go.mau.fi/whatsmeow/types/events"
	waLog "go.mau.fi/whatsmeow/util/log"
	"google.golang.org/protobuf/proto"
)

type Options struct {
	// SessionDB is the sqlite file holding the paired device.
	SessionDB string
	LogLevel  string
	// PrintQR also renders pairing codes on QROut.
	PrintQR bool
	QROut   io.Writer
}

// Client is the whatsmeow backed transport. A single device is kept in the
// session database; the first Connect on an empty store starts QR pairing.
type Client struct {
	*machine

	opts      Options
	container *sqlstore.Container
	cli       *whatsmeow.Client

	connMu   sync.Mutex
	cancelQR context.CancelFunc
}

func NewClient(ctx context.Context, opts Options, events Publisher) (*Client, error) {
	if opts.QROut == nil {
		opts.QROut = os.Stdout
	}
	level, err := zerolog.ParseLevel(opts.LogLevel)
	if err != nil || opts.LogLevel == "" {
		level = zerolog.WarnLevel
	}
	zl := zerolog.New(zerolog.ConsoleWriter{Out: os.Stderr}).Level(level).With().Timestamp().Logger()

	dsn := fmt.Sprintf("file:%s?_foreign_keys=on", opts.SessionDB)
	container, err := sqlstore.New(ctx, "sqlite3", dsn, waLog.Zerolog(zl.With().Str("module", "database").Logger()))
	if err != nil {
		return nil, errors.Wrapf(err, "open session store %s", opts.SessionDB)
	}
	device, err := container.GetFirstDevice(ctx)
	if err != nil {
		_ = container.Close()
		return nil, errors.Wrap(err, "load device")
	}

	c := &Client{
		machine:   newMachine(events, false),
		opts:      opts,
		container: container,
		cli:       whatsmeow.NewClient(device, waLog.Zerolog(zl.With().Str("module", "client").Logger())),
	}
	c.cli.AddEventHandler(c.handleEvent)
	return c, nil
}

// Connect starts the websocket session. Pairing, when needed, continues in
// the background and is reported through the publisher.
func (c *Client) Connect(ctx context.Context) error {
	c.connMu.Lock()
	defer c.connMu.Unlock()

	if c.cli.IsConnected() {
		return nil
	}
	c.transition(StatusConnecting, "", "")

	if c.cli.Store.ID == nil {
		qrCtx, cancel := context.WithCancel(context.WithoutCancel(ctx))
		qrChan, err := c.cli.GetQRChannel(qrCtx)
		switch {
		case errors.Is(err, whatsmeow.ErrQRStoreContainsID):
			cancel()
		case err != nil:
			cancel()
			c.fail(err)
			return errors.Wrap(err, "open QR channel")
		default:
			c.cancelQR = cancel
			go c.watchQR(qrChan)
		}
	}

	if err := c.cli.Connect(); err != nil {
		c.stopQR()
		c.fail(err)
		return errors.Wrap(err, "connect")
	}
	return nil
}

func (c *Client) Disconnect() {
	c.connMu.Lock()
	defer c.connMu.Unlock()
	c.disconnect("manual disconnect")
}

func (c *Client) disconnect(reason string) {
	c.stopQR()
	c.cli.Disconnect()
	c.transition(StatusDisconnected, "", "")
	c.publish(status.EventDisconnected, map[string]string{"reason": reason})
}

func (c *Client) Reconnect(ctx context.Context) error {
	c.connMu.Lock()
	c.disconnect("reconnect")
	c.connMu.Unlock()
	return c.Connect(ctx)
}

// RefreshQR restarts pairing to get a fresh code. A paired device has no QR
// to refresh.
func (c *Client) RefreshQR(ctx context.Context) error {
	if c.cli.Store.ID != nil {
		return ErrAlreadyPaired
	}
	return c.Reconnect(ctx)
}

func (c *Client) SendMessage(ctx context.Context, target, message string) error {
	if !c.IsReady() {
		return ErrNotReady
	}
	jid, err := ParseTarget(target)
	if err != nil {
		return err
	}
	_, err = c.cli.SendMessage(ctx, jid, &waE2E.Message{Conversation: proto.String(message)})
	return err
}

func (c *Client) Close() error {
	c.connMu.Lock()
	defer c.connMu.Unlock()
	c.stopQR()
	c.cli.Disconnect()
	return c.container.Close()
}

func (c *Client) stopQR() {
	if c.cancelQR != nil {
		c.cancelQR()
		c.cancelQR = nil
	}
}

func (c *Client) fail(err error) {
	log.Error("connection error", "error", err)
	c.transition(StatusError, "", err.Error())
}

func (c *Client) watchQR(ch <-chan whatsmeow.QRChannelItem) {
	for item := range ch {
		switch item.Event {
		case whatsmeow.QRChannelEventCode:
			c.showQR(item.Code)
		case whatsmeow.QRChannelSuccess.Event:
			log.Info("QR pairing succeeded")
		case whatsmeow.QRChannelTimeout.Event:
			log.Warn("QR pairing timed out")
			c.transition(StatusDisconnected, "", "")
			c.publish(status.EventDisconnected, map[string]string{"reason": "qr timeout"})
		default:
			reason := item.Event
			if item.Error != nil {
				reason = item.Error.Error()
			}
			log.Warn("QR pairing failed", "reason", reason)
			c.transition(StatusAuthFailure, "", reason)
			c.publish(status.EventAuthFailure, map[string]string{"message": reason})
		}
	}
}

func (c *Client) showQR(code string) {
	png, err := qrcode.Encode(code, qrcode.Medium, 256)
	if err != nil {
		log.Error("failed to render QR code", "error", err)
		return
	}
	if c.opts.PrintQR {
		qrterminal.GenerateHalfBlock(code, qrterminal.L, c.opts.QROut)
	}
	c.setQR("data:image/png;base64," + base64.StdEncoding.EncodeToString(png))
}

func (c *Client) deviceJID() string {
	if c.cli == nil || c.cli.Store == nil || c.cli.Store.ID == nil {
		return ""
	}
	return c.cli.Store.ID.String()
}

func (c *Client) handleEvent(evt any) {
	switch e := evt.(type) {
	case *events.PairSuccess:
		c.transition(StatusAuthenticated, e.ID.String(), "")
		c.publish(status.EventAuthenticated, map[string]string{"jid": e.ID.String()})
	case *events.Connected:
		c.transition(StatusReady, c.deviceJID(), "")
		c.publish(status.EventConnectionReady, c.State())
	case *events.Disconnected:
		c.transition(StatusDisconnected, "", "")
		c.publish(status.EventDisconnected, map[string]string{"reason": "connection lost"})
	case *events.StreamReplaced:
		c.transition(StatusDisconnected, "", "")
		c.publish(status.EventDisconnected, map[string]string{"reason": "session opened elsewhere"})
	case *events.LoggedOut:
		reason := e.Reason.String()
		c.transition(StatusAuthFailure, "", reason)
		c.publish(status.EventAuthFailure, map[string]string{"message": reason})
	case *events.ConnectFailure:
		reason := fmt.Sprintf("%v %s", e.Reason, e.Message)
		c.transition(StatusAuthFailure, "", reason)
		c.publish(status.EventAuthFailure, map[string]string{"message": reason})
	case *events.TemporaryBan:
		c.transition(StatusError, "", e.String())
	}
}
