package helpers

import (
	"bytes"
	"context"
	"encoding/json"
	"net"
	"path/filepath"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/nimasrn/wa-messenger/internal/repository"
	xhttp "github.com/nimasrn/wa-messenger/pkg/http"
	"github.com/nimasrn/wa-messenger/pkg/pg"
	"github.com/nimasrn/wa-messenger/pkg/redis"
	"github.com/stretchr/testify/require"
	"github.com/valyala/fasthttp"
	"github.com/valyala/fasthttp/fasthttputil"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"
)

// SetupTestDB opens a migrated sqlite database behind the pg read/write pair.
func SetupTestDB(t *testing.T) *pg.DB {
	path := filepath.Join(t.TempDir(), "e2e.db")
	db, err := gorm.Open(sqlite.Open("file:"+path+"?_foreign_keys=on"), &gorm.Config{
		Logger: gormlogger.Default.LogMode(gormlogger.Silent),
	})
	require.NoError(t, err)

	err = db.AutoMigrate(
		&repository.ContactEntity{},
		&repository.GroupEntity{},
		&repository.TemplateEntity{},
	)
	require.NoError(t, err)

	pgDB := pg.New(db, db)
	t.Cleanup(func() { _ = pgDB.Close() })
	return pgDB
}

func SetupTestRedis(t *testing.T) (*miniredis.Miniredis, redis.RedisAdapter) {
	mr := miniredis.RunT(t)
	adapter, err := redis.NewRedisAdapter(t.Name(), "wa:", &redis.Options{
		Addrs: []string{mr.Addr()},
	})
	require.NoError(t, err)
	t.Cleanup(func() { _ = adapter.Close() })
	return mr, adapter
}

// Client talks to an engine served on an in-memory listener.
type Client struct {
	t    *testing.T
	http *fasthttp.Client
}

type Response struct {
	Status int
	Body   map[string]any
}

// Serve installs the engine's routing and serves it until the test ends.
func Serve(t *testing.T, e *xhttp.Engine) *Client {
	require.NoError(t, e.DoRouting())
	ln := fasthttputil.NewInmemoryListener()
	go func() { _ = e.Server.Serve(ln) }()
	t.Cleanup(func() { _ = e.Server.Shutdown() })

	return &Client{
		t: t,
		http: &fasthttp.Client{
			Dial: func(string) (net.Conn, error) { return ln.Dial() },
		},
	}
}

func (c *Client) Do(method, path string, body any) Response {
	c.t.Helper()
	var raw []byte
	if body != nil {
		var err error
		raw, err = json.Marshal(body)
		require.NoError(c.t, err)
	}
	return c.DoRaw(method, path, "application/json", raw)
}

func (c *Client) DoRaw(method, path, contentType string, body []byte) Response {
	c.t.Helper()
	req := fasthttp.AcquireRequest()
	resp := fasthttp.AcquireResponse()
	defer fasthttp.ReleaseRequest(req)
	defer fasthttp.ReleaseResponse(resp)

	req.Header.SetMethod(method)
	req.SetRequestURI("http://messenger.test" + path)
	if body != nil {
		req.Header.SetContentType(contentType)
		req.SetBody(body)
	}
	require.NoError(c.t, c.http.DoTimeout(req, resp, 5*time.Second))

	out := Response{Status: resp.StatusCode()}
	if b := resp.Body(); len(bytes.TrimSpace(b)) > 0 {
		require.NoError(c.t, json.Unmarshal(b, &out.Body), string(b))
	}
	return out
}

func WaitForCondition(t *testing.T, timeout time.Duration, condition func() bool) bool {
	deadline := time.Now().Add(timeout)
	for time.Now().Before(deadline) {
		if condition() {
			return true
		}
		time.Sleep(10 * time.Millisecond)
	}
	return false
}

func AssertEventually(t *testing.T, timeout time.Duration, condition func() bool, msg string) {
	if !WaitForCondition(t, timeout, condition) {
		t.Fatal(msg)
	}
}

func ContextWithTimeout(timeout time.Duration) (context.Context, context.CancelFunc) {
	return context.WithTimeout(context.Background(), timeout)
}

func Ptr[T any](v T) *T {
	return &v
}
