package handlers

import (
	"context"
	"fmt"
	"strconv"

	"github.com/nimasrn/wa-messenger/internal/model"
	"github.com/nimasrn/wa-messenger/internal/services"
	xhttp "github.com/nimasrn/wa-messenger/pkg/http"
)

const defaultRunsLimit = 20

type MessagingService interface {
	Send(ctx context.Context, number, message string) error
	SendBulk(ctx context.Context, req services.BulkRequest) (*model.BulkReport, error)
	SendCSV(ctx context.Context, req services.CSVBulkRequest) (*model.BulkReport, error)
	Runs(ctx context.Context, limit int64) ([]*model.BulkRun, error)
	Run(ctx context.Context, id string) (*model.BulkRun, error)
}

type MessageHandler struct {
	svc MessagingService
}

func RegisterMessageRoutes(g *xhttp.Group, h *MessageHandler) {
	g.POST("/messages/send", h.SendMessage)
	g.POST("/messages/bulk", h.SendBulk)
	g.POST("/messages/bulk/csv", h.SendBulkCSV)
	g.GET("/bulk/runs", h.ListRuns)
	g.GET("/bulk/runs/{id}", h.GetRun)
}

func NewMessageHandler(svc MessagingService) *MessageHandler {
	return &MessageHandler{svc: svc}
}

type sendMessageRequest struct {
	Number  string `json:"number"`
	Message string `json:"message"`
}

func (h *MessageHandler) SendMessage(ctx *xhttp.RequestCtx) {
	var req sendMessageRequest
	if err := readJSON(ctx, &req); err != nil {
		writeServiceError(ctx, err)
		return
	}
	if err := h.svc.Send(ctx, req.Number, req.Message); err != nil {
		writeServiceError(ctx, err)
		return
	}
	writeOK(ctx, xhttp.StatusOK, payload{"message": "Message sent successfully"})
}

func (h *MessageHandler) SendBulk(ctx *xhttp.RequestCtx) {
	var req services.BulkRequest
	if err := readJSON(ctx, &req); err != nil {
		writeServiceError(ctx, err)
		return
	}
	report, err := h.svc.SendBulk(ctx, req)
	if err != nil {
		writeServiceError(ctx, err)
		return
	}
	writeReport(ctx, report)
}

// SendBulkCSV takes a multipart form with csvFile, message, delay and
// personalize fields, plus customTokens as a JSON object.
func (h *MessageHandler) SendBulkCSV(ctx *xhttp.RequestCtx) {
	fh, err := ctx.FormFile("csvFile")
	if err != nil {
		writeError(ctx, xhttp.StatusBadRequest, "CSV file is required")
		return
	}
	delay, err := formDelay(string(ctx.FormValue("delay")))
	if err != nil {
		writeServiceError(ctx, err)
		return
	}
	personalize, _ := strconv.ParseBool(string(ctx.FormValue("personalize")))
	tokens, err := formTokens(string(ctx.FormValue("customTokens")))
	if err != nil {
		writeServiceError(ctx, err)
		return
	}

	f, err := fh.Open()
	if err != nil {
		writeServiceError(ctx, err)
		return
	}
	defer f.Close()

	report, err := h.svc.SendCSV(ctx, services.CSVBulkRequest{
		CSV:          f,
		Message:      string(ctx.FormValue("message")),
		Delay:        delay,
		Personalize:  personalize,
		CustomTokens: tokens,
	})
	if err != nil {
		writeServiceError(ctx, err)
		return
	}
	writeReport(ctx, report)
}

func (h *MessageHandler) ListRuns(ctx *xhttp.RequestCtx) {
	limit := int64(defaultRunsLimit)
	if v := query(ctx, "limit"); v != "" {
		if n, err := strconv.ParseInt(v, 10, 64); err == nil {
			limit = n
		}
	}
	runs, err := h.svc.Runs(ctx, limit)
	if err != nil {
		writeServiceError(ctx, err)
		return
	}
	writeOK(ctx, xhttp.StatusOK, payload{"runs": runs})
}

func (h *MessageHandler) GetRun(ctx *xhttp.RequestCtx) {
	run, err := h.svc.Run(ctx, param(ctx, "id"))
	if err != nil {
		writeServiceError(ctx, err)
		return
	}
	writeOK(ctx, xhttp.StatusOK, payload{"run": run})
}

func writeReport(ctx *xhttp.RequestCtx, report *model.BulkReport) {
	p := payload{
		"message": fmt.Sprintf("Bulk send completed: %d sent, %d failed", report.Summary.Successful, report.Summary.Failed),
		"results": report.Results,
		"summary": report.Summary,
	}
	if report.RunID != "" {
		p["runId"] = report.RunID
	}
	writeOK(ctx, xhttp.StatusOK, p)
}

var _ MessagingService = (*services.MessagingService)(nil)
