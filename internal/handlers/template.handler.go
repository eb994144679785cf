package handlers

import (
	"context"

	"github.com/nimasrn/wa-messenger/internal/model"
	"github.com/nimasrn/wa-messenger/internal/services"
	xhttp "github.com/nimasrn/wa-messenger/pkg/http"
)

type TemplateService interface {
	List(ctx context.Context) ([]*model.Template, error)
	Get(ctx context.Context, id string) (*model.Template, error)
	Create(ctx context.Context, p model.TemplateCreateRequest) (*model.Template, error)
	Update(ctx context.Context, id string, p model.TemplateUpdateRequest) (*model.Template, error)
	Delete(ctx context.Context, id string) error
	Categories(ctx context.Context) ([]string, error)
	Process(ctx context.Context, id string, variables map[string]any) (string, *model.Template, error)
}

type TemplateHandler struct {
	svc TemplateService
}

func RegisterTemplateRoutes(g *xhttp.Group, h *TemplateHandler) {
	g.GET("/templates", h.ListTemplates)
	g.POST("/templates", h.CreateTemplate)
	g.GET("/templates/categories", h.ListCategories)
	g.GET("/templates/{id}", h.GetTemplate)
	g.PUT("/templates/{id}", h.UpdateTemplate)
	g.DELETE("/templates/{id}", h.DeleteTemplate)
	g.POST("/templates/{id}/process", h.ProcessTemplate)
}

func NewTemplateHandler(svc TemplateService) *TemplateHandler {
	return &TemplateHandler{svc: svc}
}

type processTemplateRequest struct {
	Variables map[string]any `json:"variables"`
}

func (h *TemplateHandler) ListTemplates(ctx *xhttp.RequestCtx) {
	templates, err := h.svc.List(ctx)
	if err != nil {
		writeServiceError(ctx, err)
		return
	}
	writeOK(ctx, xhttp.StatusOK, payload{"templates": templates})
}

func (h *TemplateHandler) GetTemplate(ctx *xhttp.RequestCtx) {
	t, err := h.svc.Get(ctx, param(ctx, "id"))
	if err != nil {
		writeServiceError(ctx, err)
		return
	}
	writeOK(ctx, xhttp.StatusOK, payload{"template": t})
}

func (h *TemplateHandler) CreateTemplate(ctx *xhttp.RequestCtx) {
	var req model.TemplateCreateRequest
	if err := readJSON(ctx, &req); err != nil {
		writeServiceError(ctx, err)
		return
	}
	t, err := h.svc.Create(ctx, req)
	if err != nil {
		writeServiceError(ctx, err)
		return
	}
	writeOK(ctx, xhttp.StatusCreated, payload{"message": "Template created successfully", "template": t})
}

func (h *TemplateHandler) UpdateTemplate(ctx *xhttp.RequestCtx) {
	var req model.TemplateUpdateRequest
	if err := readJSON(ctx, &req); err != nil {
		writeServiceError(ctx, err)
		return
	}
	t, err := h.svc.Update(ctx, param(ctx, "id"), req)
	if err != nil {
		writeServiceError(ctx, err)
		return
	}
	writeOK(ctx, xhttp.StatusOK, payload{"message": "Template updated successfully", "template": t})
}

func (h *TemplateHandler) DeleteTemplate(ctx *xhttp.RequestCtx) {
	if err := h.svc.Delete(ctx, param(ctx, "id")); err != nil {
		writeServiceError(ctx, err)
		return
	}
	writeOK(ctx, xhttp.StatusOK, payload{"message": "Template deleted successfully"})
}

func (h *TemplateHandler) ListCategories(ctx *xhttp.RequestCtx) {
	categories, err := h.svc.Categories(ctx)
	if err != nil {
		writeServiceError(ctx, err)
		return
	}
	writeOK(ctx, xhttp.StatusOK, payload{"categories": categories})
}

func (h *TemplateHandler) ProcessTemplate(ctx *xhttp.RequestCtx) {
	var req processTemplateRequest
	if err := readJSON(ctx, &req); err != nil {
		writeServiceError(ctx, err)
		return
	}
	processed, t, err := h.svc.Process(ctx, param(ctx, "id"), req.Variables)
	if err != nil {
		writeServiceError(ctx, err)
		return
	}
	writeOK(ctx, xhttp.StatusOK, payload{"processedContent": processed, "template": t})
}

var _ TemplateService = (*services.TemplateService)(nil)
