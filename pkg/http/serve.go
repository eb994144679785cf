package xhttp

import (
	"reflect"
	"runtime"
	"slices"
	"time"

	"github.com/nimasrn/wa-messenger/pkg/logger"
	"github.com/valyala/fasthttp"
)

type Server = fasthttp.Server

// ServerOption tunes the underlying fasthttp server. Zero values fall back
// to DefaultServerOption.
type ServerOption struct {
	// ReadTimeout bounds reading a request including its body. CSV uploads
	// are read within it.
	ReadTimeout time.Duration

	// WriteTimeout stays zero: the event stream and bulk sends keep a
	// response open for as long as they run.
	WriteTimeout time.Duration

	IdleTimeout        time.Duration
	ReadBufferSize     int
	WriteBufferSize    int
	MaxRequestBodySize int
	Concurrency        int
	Name               string

	// StaticDir holds the browser UI served for unmatched GET requests.
	StaticDir string
}

var DefaultServerOption = ServerOption{
	ReadTimeout:        10 * time.Second,
	IdleTimeout:        30 * time.Second,
	ReadBufferSize:     16 * 1024,
	WriteBufferSize:    16 * 1024,
	MaxRequestBodySize: 10 * 1024 * 1024, // csv uploads
	Concurrency:        10_000,
	Name:               "wa-messenger",
}

type Engine struct {
	*Router
	*Server
	option ServerOption
	middle []MiddlewareFunc
}

func (o ServerOption) withDefaults() ServerOption {
	d := DefaultServerOption
	if o.ReadTimeout > 0 {
		d.ReadTimeout = o.ReadTimeout
	}
	if o.WriteTimeout > 0 {
		d.WriteTimeout = o.WriteTimeout
	}
	if o.IdleTimeout > 0 {
		d.IdleTimeout = o.IdleTimeout
	}
	if o.ReadBufferSize > 0 {
		d.ReadBufferSize = o.ReadBufferSize
	}
	if o.WriteBufferSize > 0 {
		d.WriteBufferSize = o.WriteBufferSize
	}
	if o.MaxRequestBodySize > 0 {
		d.MaxRequestBodySize = o.MaxRequestBodySize
	}
	if o.Concurrency > 0 {
		d.Concurrency = o.Concurrency
	}
	if o.Name != "" {
		d.Name = o.Name
	}
	d.StaticDir = o.StaticDir
	return d
}

func newServer(options ServerOption) *fasthttp.Server {
	return &fasthttp.Server{
		Name:                         options.Name,
		Concurrency:                  options.Concurrency,
		ReadBufferSize:               options.ReadBufferSize,
		WriteBufferSize:              options.WriteBufferSize,
		ReadTimeout:                  options.ReadTimeout,
		WriteTimeout:                 options.WriteTimeout,
		IdleTimeout:                  options.IdleTimeout,
		MaxRequestBodySize:           options.MaxRequestBodySize,
		TCPKeepalive:                 true,
		DisablePreParseMultipartForm: false,
		NoDefaultServerHeader:        true,
		NoDefaultContentType:         true,
		CloseOnShutdown:              true,
		Logger:                       logger.GetLogger(),
		ErrorHandler: func(ctx *RequestCtx, err error) {
			logger.Warn("[xhttp] request error", "error", err)
		},
	}
}

// CreateServer returns an engine with the default router for options.
func CreateServer(options ServerOption) *Engine {
	options = options.withDefaults()
	return &Engine{
		Server: newServer(options),
		Router: CreateDefaultRouter(options.StaticDir),
		option: options,
	}
}

func (e *Engine) ListenAndServe(addr string) error {
	if err := e.DoRouting(); err != nil {
		return err
	}
	logger.Info("[xhttp] server is listening", "addr", addr)
	return e.Server.ListenAndServe(addr)
}

// DoRouting installs the router behind the registered middlewares. The
// first middleware passed to Use is the outermost.
func (e *Engine) DoRouting() error {
	for method, routes := range e.Router.List() {
		for _, r := range routes {
			logger.Debug("[xhttp] route registered", "method", method, "path", r)
		}
	}
	handler := e.Router.Handler
	middle := slices.Clone(e.middle)
	slices.Reverse(middle)
	for _, m := range middle {
		handler = m(handler)
		logger.Debug("[xhttp] middleware registered", "name", runtime.FuncForPC(reflect.ValueOf(m).Pointer()).Name())
	}
	e.Server.Handler = handler
	return nil
}

// Use adds middleware to the end of the chain which is run for every request.
func (e *Engine) Use(middleware MiddlewareFunc) {
	e.middle = append(e.middle, middleware)
}

// Shutdown gracefully shuts down the server without interrupting any active
// connections.
func (e *Engine) Shutdown() {
	logger.Info("[xhttp] server is shutting down")
	if err := e.Server.Shutdown(); err != nil {
		logger.Error("[xhttp] error while shutting down", "error", err)
	}
}
