package handlers

import (
	"context"

	"github.com/nimasrn/wa-messenger/internal/model"
	"github.com/nimasrn/wa-messenger/internal/services"
	xhttp "github.com/nimasrn/wa-messenger/pkg/http"
)

type PersonalizationService interface {
	SendPersonalized(ctx context.Context, req services.PersonalizedBulkRequest) (*model.BulkReport, error)
	SendPersonalizedGroup(ctx context.Context, req services.GroupBulkRequest) (*model.BulkReport, error)
	Personalize(ctx context.Context, message, contactID string, tokens map[string]any) (string, *model.Contact, error)
	Previews(ctx context.Context, templateID string, contactIDs []string, tokens map[string]any) ([]model.Preview, error)
	ValidateTokens(ctx context.Context, message string, contactIDs []string) ([]model.TokenValidation, model.ValidationSummary, error)
	ExtractTokens(message string) ([]string, error)
	SuggestedTokens(ctx context.Context) (model.SuggestedTokens, error)
}

type PersonalizationHandler struct {
	svc PersonalizationService
}

func RegisterPersonalizationRoutes(g *xhttp.Group, h *PersonalizationHandler) {
	g.GET("/personalization/tokens", h.SuggestedTokens)
	g.POST("/personalization/personalize", h.Personalize)
	g.POST("/personalization/previews", h.Previews)
	g.POST("/personalization/bulk-send", h.BulkSend)
	g.POST("/personalization/group-send", h.GroupSend)
	g.POST("/personalization/validate", h.Validate)
	g.POST("/personalization/extract", h.Extract)
}

func NewPersonalizationHandler(svc PersonalizationService) *PersonalizationHandler {
	return &PersonalizationHandler{svc: svc}
}

type personalizeRequest struct {
	Message      string         `json:"message"`
	ContactID    string         `json:"contactId"`
	CustomTokens map[string]any `json:"customTokens"`
}

type previewsRequest struct {
	TemplateID   string         `json:"templateId"`
	ContactIDs   []string       `json:"contactIds"`
	CustomTokens map[string]any `json:"customTokens"`
}

type validateRequest struct {
	Message    string   `json:"message"`
	ContactIDs []string `json:"contactIds"`
}

type extractRequest struct {
	Message string `json:"message"`
}

func (h *PersonalizationHandler) SuggestedTokens(ctx *xhttp.RequestCtx) {
	tokens, err := h.svc.SuggestedTokens(ctx)
	if err != nil {
		writeServiceError(ctx, err)
		return
	}
	writeOK(ctx, xhttp.StatusOK, payload{"tokens": tokens})
}

func (h *PersonalizationHandler) Personalize(ctx *xhttp.RequestCtx) {
	var req personalizeRequest
	if err := readJSON(ctx, &req); err != nil {
		writeServiceError(ctx, err)
		return
	}
	msg, contact, err := h.svc.Personalize(ctx, req.Message, req.ContactID, req.CustomTokens)
	if err != nil {
		writeServiceError(ctx, err)
		return
	}
	p := payload{
		"originalMessage":     req.Message,
		"personalizedMessage": msg,
		"contact":             map[string]any{},
	}
	if contact != nil {
		p["contact"] = contact
	}
	writeOK(ctx, xhttp.StatusOK, p)
}

func (h *PersonalizationHandler) Previews(ctx *xhttp.RequestCtx) {
	var req previewsRequest
	if err := readJSON(ctx, &req); err != nil {
		writeServiceError(ctx, err)
		return
	}
	previews, err := h.svc.Previews(ctx, req.TemplateID, req.ContactIDs, req.CustomTokens)
	if err != nil {
		writeServiceError(ctx, err)
		return
	}
	writeOK(ctx, xhttp.StatusOK, payload{"previews": previews})
}

func (h *PersonalizationHandler) BulkSend(ctx *xhttp.RequestCtx) {
	var req services.PersonalizedBulkRequest
	if err := readJSON(ctx, &req); err != nil {
		writeServiceError(ctx, err)
		return
	}
	report, err := h.svc.SendPersonalized(ctx, req)
	if err != nil {
		writeServiceError(ctx, err)
		return
	}
	writeReport(ctx, report)
}

func (h *PersonalizationHandler) GroupSend(ctx *xhttp.RequestCtx) {
	var req services.GroupBulkRequest
	if err := readJSON(ctx, &req); err != nil {
		writeServiceError(ctx, err)
		return
	}
	report, err := h.svc.SendPersonalizedGroup(ctx, req)
	if err != nil {
		writeServiceError(ctx, err)
		return
	}
	writeReport(ctx, report)
}

func (h *PersonalizationHandler) Validate(ctx *xhttp.RequestCtx) {
	var req validateRequest
	if err := readJSON(ctx, &req); err != nil {
		writeServiceError(ctx, err)
		return
	}
	validation, summary, err := h.svc.ValidateTokens(ctx, req.Message, req.ContactIDs)
	if err != nil {
		writeServiceError(ctx, err)
		return
	}
	writeOK(ctx, xhttp.StatusOK, payload{"validation": validation, "summary": summary})
}

func (h *PersonalizationHandler) Extract(ctx *xhttp.RequestCtx) {
	var req extractRequest
	if err := readJSON(ctx, &req); err != nil {
		writeServiceError(ctx, err)
		return
	}
	tokens, err := h.svc.ExtractTokens(req.Message)
	if err != nil {
		writeServiceError(ctx, err)
		return
	}
	writeOK(ctx, xhttp.StatusOK, payload{"tokens": tokens})
}

var _ PersonalizationService = (*services.MessagingService)(nil)
