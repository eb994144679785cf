package handlers

import (
	"bytes"
	"encoding/json"
	"mime/multipart"
	"testing"
	"time"

	"github.com/nimasrn/wa-messenger/internal/filestore"
	"github.com/nimasrn/wa-messenger/internal/services"
	"github.com/nimasrn/wa-messenger/internal/status"
	"github.com/nimasrn/wa-messenger/internal/whatsapp"
	xhttp "github.com/nimasrn/wa-messenger/pkg/http"
	"github.com/stretchr/testify/require"
	"github.com/valyala/fasthttp"
)

func setupTestContext(method, path string, body []byte) *xhttp.RequestCtx {
	ctx := &fasthttp.RequestCtx{}
	ctx.Request.Header.SetMethod(method)
	ctx.Request.SetRequestURI(path)
	if body != nil {
		ctx.Request.Header.SetContentType("application/json")
		ctx.Request.SetBody(body)
	}
	return ctx
}

func setupMultipartContext(t *testing.T, path string, fields map[string]string, csv string) *xhttp.RequestCtx {
	t.Helper()
	var buf bytes.Buffer
	w := multipart.NewWriter(&buf)
	for k, v := range fields {
		require.NoError(t, w.WriteField(k, v))
	}
	if csv != "" {
		fw, err := w.CreateFormFile("csvFile", "contacts.csv")
		require.NoError(t, err)
		_, err = fw.Write([]byte(csv))
		require.NoError(t, err)
	}
	require.NoError(t, w.Close())

	ctx := &fasthttp.RequestCtx{}
	ctx.Request.Header.SetMethod("POST")
	ctx.Request.SetRequestURI(path)
	ctx.Request.Header.SetContentType(w.FormDataContentType())
	ctx.Request.SetBody(buf.Bytes())
	return ctx
}

func mustJSON(t *testing.T, v any) []byte {
	t.Helper()
	b, err := json.Marshal(v)
	require.NoError(t, err)
	return b
}

func decodeBody(t *testing.T, ctx *xhttp.RequestCtx) map[string]any {
	t.Helper()
	var out map[string]any
	require.NoError(t, json.Unmarshal(ctx.Response.Body(), &out))
	return out
}

type testApp struct {
	store     *filestore.Store
	session   *whatsapp.DemoClient
	hub       *status.Hub
	contacts  *services.ContactService
	groups    *services.GroupService
	templates *services.TemplateService
	messaging *services.MessagingService
}

// newTestApp wires the real services over a seeded file store and the demo
// transport. The transport starts disconnected.
func newTestApp(t *testing.T) *testApp {
	t.Helper()
	store, err := filestore.Open(t.TempDir())
	require.NoError(t, err)

	hub := status.NewHub(64)
	t.Cleanup(hub.Close)
	session := whatsapp.NewDemoClient(hub)

	return &testApp{
		store:     store,
		session:   session,
		hub:       hub,
		contacts:  services.NewContactService(store.Contacts()),
		groups:    services.NewGroupService(store.Groups(), store.Contacts()),
		templates: services.NewTemplateService(store.Templates()),
		messaging: services.NewMessagingService(session, store.Contacts(), store.Groups(), store.Templates(), nil, hub, services.MessagingOptions{
			Sleep: func(time.Duration) {},
		}),
	}
}
