package e2e

import (
	"bytes"
	"context"
	"mime/multipart"
	"testing"
	"time"

	"github.com/nimasrn/wa-messenger/internal/handlers"
	"github.com/nimasrn/wa-messenger/internal/history"
	"github.com/nimasrn/wa-messenger/internal/repository"
	"github.com/nimasrn/wa-messenger/internal/services"
	"github.com/nimasrn/wa-messenger/internal/status"
	"github.com/nimasrn/wa-messenger/internal/whatsapp"
	xhttp "github.com/nimasrn/wa-messenger/pkg/http"
	"github.com/nimasrn/wa-messenger/test/fixtures"
	"github.com/nimasrn/wa-messenger/test/helpers"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type TestEnvironment struct {
	Client  *helpers.Client
	Session *whatsapp.DemoClient
	Hub     *status.Hub
}

// setupE2EEnvironment serves the full API over the sql repositories, redis
// run history and the demo transport.
func setupE2EEnvironment(t *testing.T) *TestEnvironment {
	db := helpers.SetupTestDB(t)
	_, rdb := helpers.SetupTestRedis(t)

	hub := status.NewHub(64)
	t.Cleanup(hub.Close)
	session := whatsapp.NewDemoClient(hub)

	contacts := repository.NewContactRepository(db)
	groups := repository.NewGroupRepository(db)
	templates := repository.NewTemplateRepository(db)
	runs := history.NewStore(rdb, time.Hour, 10)

	messaging := services.NewMessagingService(session, contacts, groups, templates, runs, hub, services.MessagingOptions{
		DefaultDelay: 2 * time.Second,
		Sleep:        func(time.Duration) {},
	})

	s := xhttp.CreateServer(xhttp.ServerOption{Name: "e2e"})
	s.Use(xhttp.RecoverMiddleware)
	s.Use(xhttp.CORSMiddleware("*"))

	g := s.Router.Group("/api/v1")
	handlers.RegisterHealthRoutes(g, handlers.NewHealthHandler(session, map[string]handlers.Pinger{"redis": runs, "postgres": db}))
	handlers.RegisterWhatsAppRoutes(g, handlers.NewWhatsAppHandler(context.Background(), session, hub))
	handlers.RegisterMessageRoutes(g, handlers.NewMessageHandler(messaging))
	handlers.RegisterContactRoutes(g, handlers.NewContactHandler(services.NewContactService(contacts)))
	handlers.RegisterGroupRoutes(g, handlers.NewGroupHandler(services.NewGroupService(groups, contacts)))
	handlers.RegisterTemplateRoutes(g, handlers.NewTemplateHandler(services.NewTemplateService(templates)))
	handlers.RegisterPersonalizationRoutes(g, handlers.NewPersonalizationHandler(messaging))

	return &TestEnvironment{
		Client:  helpers.Serve(t, s),
		Session: session,
		Hub:     hub,
	}
}

func (env *TestEnvironment) connect(t *testing.T) {
	t.Helper()
	resp := env.Client.Do("POST", "/api/v1/whatsapp/connect", nil)
	require.Equal(t, 200, resp.Status)
	require.True(t, env.Session.IsReady())
}

func (env *TestEnvironment) createContact(t *testing.T, req any) string {
	t.Helper()
	resp := env.Client.Do("POST", "/api/v1/contacts", req)
	require.Equal(t, 201, resp.Status, resp.Body)
	return resp.Body["contact"].(map[string]any)["id"].(string)
}

func TestE2E_HealthAndSessionLifecycle(t *testing.T) {
	env := setupE2EEnvironment(t)

	resp := env.Client.Do("GET", "/api/v1/health", nil)
	require.Equal(t, 200, resp.Status)
	assert.Equal(t, "ok", resp.Body["status"])

	resp = env.Client.Do("GET", "/api/v1/whatsapp/status", nil)
	require.Equal(t, 200, resp.Status)
	assert.Equal(t, "disconnected", resp.Body["status"])
	assert.Equal(t, false, resp.Body["isReady"])

	env.connect(t)

	resp = env.Client.Do("GET", "/api/v1/whatsapp/status", nil)
	assert.Equal(t, "ready", resp.Body["status"])
	assert.Equal(t, true, resp.Body["demoMode"])

	resp = env.Client.Do("POST", "/api/v1/whatsapp/disconnect", nil)
	require.Equal(t, 200, resp.Status)
	assert.False(t, env.Session.IsReady())

	t.Run("sending while disconnected is rejected", func(t *testing.T) {
		resp := env.Client.Do("POST", "/api/v1/messages/send", map[string]any{
			"number":  "+15550001111",
			"message": "hello",
		})
		assert.Equal(t, 400, resp.Status)
		assert.Equal(t, false, resp.Body["success"])
		assert.Empty(t, env.Session.Sent())
	})
}

func TestE2E_GroupTemplateBulkFlow(t *testing.T) {
	env := setupE2EEnvironment(t)
	env.connect(t)

	aliceID := env.createContact(t, fixtures.Alice)
	bobID := env.createContact(t, fixtures.Bob)

	resp := env.Client.Do("POST", "/api/v1/groups", fixtures.NewGroup("Customers", aliceID))
	require.Equal(t, 201, resp.Status, resp.Body)
	groupID := resp.Body["group"].(map[string]any)["id"].(string)

	resp = env.Client.Do("POST", "/api/v1/groups/"+groupID+"/contacts/"+bobID, nil)
	require.Equal(t, 200, resp.Status, resp.Body)

	resp = env.Client.Do("GET", "/api/v1/groups/"+groupID+"/contacts", nil)
	require.Equal(t, 200, resp.Status)
	require.Len(t, resp.Body["contacts"], 2)

	resp = env.Client.Do("POST", "/api/v1/templates", fixtures.Greeting)
	require.Equal(t, 201, resp.Status, resp.Body)
	tpl := resp.Body["template"].(map[string]any)
	templateID := tpl["id"].(string)
	assert.Equal(t, []any{"first_name", "company", "plan"}, tpl["variables"])

	t.Run("validate reports missing tokens", func(t *testing.T) {
		resp := env.Client.Do("POST", "/api/v1/personalization/validate", map[string]any{
			"message":    fixtures.Greeting.Content,
			"contactIds": []string{aliceID, bobID},
		})
		require.Equal(t, 200, resp.Status)
		summary := resp.Body["summary"].(map[string]any)
		assert.Equal(t, float64(1), summary["valid"])
		assert.Equal(t, float64(1), summary["invalid"])
	})

	t.Run("group send personalizes per member", func(t *testing.T) {
		resp := env.Client.Do("POST", "/api/v1/personalization/group-send", map[string]any{
			"templateId": templateID,
			"groupId":    groupID,
			"delay":      0,
		})
		require.Equal(t, 200, resp.Status, resp.Body)
		summary := resp.Body["summary"].(map[string]any)
		assert.Equal(t, float64(2), summary["total"])
		assert.Equal(t, float64(2), summary["successful"])
		require.NotEmpty(t, resp.Body["runId"])

		sent := env.Session.Sent()
		require.Len(t, sent, 2)
		assert.Equal(t, "+15550001111", sent[0].Target)
		assert.Equal(t, "Hi Alice from Acme, your plan is gold", sent[0].Message)
		assert.Equal(t, "+15550002222", sent[1].Target)
		assert.Equal(t, "Hi Bob from , your plan is {{plan}}", sent[1].Message)

		runID := resp.Body["runId"].(string)
		resp = env.Client.Do("GET", "/api/v1/bulk/runs/"+runID, nil)
		require.Equal(t, 200, resp.Status)
		run := resp.Body["run"].(map[string]any)
		assert.Equal(t, "group", run["kind"])
		assert.Equal(t, groupID, run["groupId"])
		assert.Equal(t, templateID, run["templateId"])
	})

	t.Run("deleting a contact removes it from the group", func(t *testing.T) {
		resp := env.Client.Do("DELETE", "/api/v1/contacts/"+bobID, nil)
		require.Equal(t, 200, resp.Status)

		resp = env.Client.Do("GET", "/api/v1/groups/"+groupID+"/contacts", nil)
		require.Equal(t, 200, resp.Status)
		assert.Len(t, resp.Body["contacts"], 1)
	})

	t.Run("unknown template is not found", func(t *testing.T) {
		resp := env.Client.Do("POST", "/api/v1/personalization/group-send", map[string]any{
			"templateId": "missing",
			"groupId":    groupID,
		})
		assert.Equal(t, 404, resp.Status)
	})
}

func TestE2E_CSVBulkAndHistory(t *testing.T) {
	env := setupE2EEnvironment(t)
	env.connect(t)

	var body bytes.Buffer
	w := multipart.NewWriter(&body)
	require.NoError(t, w.WriteField("message", "Hello {{first_name}} at {{company}}"))
	require.NoError(t, w.WriteField("personalize", "true"))
	require.NoError(t, w.WriteField("delay", "0"))
	fw, err := w.CreateFormFile("csvFile", "contacts.csv")
	require.NoError(t, err)
	_, err = fw.Write([]byte(fixtures.ContactsCSV))
	require.NoError(t, err)
	require.NoError(t, w.Close())

	resp := env.Client.DoRaw("POST", "/api/v1/messages/bulk/csv", w.FormDataContentType(), body.Bytes())
	require.Equal(t, 200, resp.Status, resp.Body)
	summary := resp.Body["summary"].(map[string]any)
	assert.Equal(t, float64(2), summary["total"])
	assert.Equal(t, float64(2), summary["successful"])

	sent := env.Session.Sent()
	require.Len(t, sent, 2)
	assert.Equal(t, "Hello Carol at Globex", sent[0].Message)
	assert.Equal(t, "Hello Dan at ", sent[1].Message)

	resp = env.Client.Do("POST", "/api/v1/messages/bulk", map[string]any{
		"numbers": []string{"+15550009999"},
		"message": "plain",
		"delay":   0,
	})
	require.Equal(t, 200, resp.Status, resp.Body)

	resp = env.Client.Do("GET", "/api/v1/bulk/runs?limit=5", nil)
	require.Equal(t, 200, resp.Status)
	runs := resp.Body["runs"].([]any)
	require.Len(t, runs, 2)
	assert.Equal(t, "manual", runs[0].(map[string]any)["kind"])
	assert.Equal(t, "csv", runs[1].(map[string]any)["kind"])

	resp = env.Client.Do("GET", "/api/v1/bulk/runs/does-not-exist", nil)
	assert.Equal(t, 404, resp.Status)
}

func TestE2E_ManualBulkRejectsBadInput(t *testing.T) {
	env := setupE2EEnvironment(t)
	env.connect(t)

	tests := []struct {
		name string
		body map[string]any
	}{
		{"no recipients", map[string]any{"message": "hi"}},
		{"no message", map[string]any{"numbers": []string{"+15550001111"}}},
		{"negative delay", map[string]any{"numbers": []string{"+15550001111"}, "message": "hi", "delay": -1}},
		{"malformed number", map[string]any{"numbers": []string{"+15550001111", "abc"}, "message": "hi"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			resp := env.Client.Do("POST", "/api/v1/messages/bulk", tt.body)
			assert.Equal(t, 400, resp.Status, resp.Body)
			assert.Equal(t, false, resp.Body["success"])
		})
	}
	assert.Empty(t, env.Session.Sent())
}
