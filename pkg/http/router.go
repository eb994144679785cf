package xhttp

import (
	"os"
	"strings"

	"github.com/fasthttp/router"
	"github.com/valyala/fasthttp"
)

type Router = router.Router
type Group = router.Group

func NewRouter() *Router {
	return router.New()
}

// CreateDefaultRouter returns a router with the default handlers. When
// staticDir exists, unmatched GET requests outside /api are served from it.
func CreateDefaultRouter(staticDir string) *Router {
	r := NewRouter()
	r.RedirectTrailingSlash = true
	r.SaveMatchedRoutePath = true
	r.NotFound = NotFoundHandler
	r.MethodNotAllowed = NotFoundHandler
	r.HandleOPTIONS = false
	r.HandleMethodNotAllowed = true
	if static := staticHandler(staticDir); static != nil {
		r.NotFound = func(ctx *RequestCtx) {
			if !ctx.IsGet() || strings.HasPrefix(string(ctx.Path()), "/api/") {
				NotFoundHandler(ctx)
				return
			}
			static(ctx)
		}
	}
	return r
}

func NotFoundHandler(ctx *RequestCtx) {
	ctx.Response.Header.SetContentType("application/json; charset=utf-8")
	ctx.SetStatusCode(StatusNotFound)
	ctx.SetBodyString(`{"success":false,"message":"Not Found"}`)
}

func staticHandler(dir string) RequestHandler {
	if dir == "" {
		return nil
	}
	if info, err := os.Stat(dir); err != nil || !info.IsDir() {
		return nil
	}
	fs := &fasthttp.FS{
		Root:               dir,
		IndexNames:         []string{"index.html"},
		Compress:           true,
		AcceptByteRange:    true,
		PathNotFound:       NotFoundHandler,
		GenerateIndexPages: false,
	}
	return fs.NewRequestHandler()
}
