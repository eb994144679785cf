package handlers

import (
	"context"
	"io"

	"github.com/nimasrn/wa-messenger/internal/model"
	"github.com/nimasrn/wa-messenger/internal/services"
	xhttp "github.com/nimasrn/wa-messenger/pkg/http"
)

type ContactService interface {
	List(ctx context.Context, f model.ContactFilter) ([]*model.Contact, error)
	Get(ctx context.Context, id string) (*model.Contact, error)
	Create(ctx context.Context, p model.ContactCreateRequest) (*model.Contact, error)
	Update(ctx context.Context, id string, p model.ContactUpdateRequest) (*model.Contact, error)
	Delete(ctx context.Context, id string) error
	Tags(ctx context.Context) ([]string, error)
	Import(ctx context.Context, r io.Reader) ([]*model.Contact, error)
}

type ContactHandler struct {
	svc ContactService
}

func RegisterContactRoutes(g *xhttp.Group, h *ContactHandler) {
	g.GET("/contacts", h.ListContacts)
	g.POST("/contacts", h.CreateContact)
	g.GET("/contacts/tags", h.ListTags)
	g.POST("/contacts/import", h.ImportContacts)
	g.GET("/contacts/{id}", h.GetContact)
	g.PUT("/contacts/{id}", h.UpdateContact)
	g.DELETE("/contacts/{id}", h.DeleteContact)
}

func NewContactHandler(svc ContactService) *ContactHandler {
	return &ContactHandler{svc: svc}
}

func (h *ContactHandler) ListContacts(ctx *xhttp.RequestCtx) {
	contacts, err := h.svc.List(ctx, model.ContactFilter{
		Search: query(ctx, "search"),
		Tag:    query(ctx, "tag"),
	})
	if err != nil {
		writeServiceError(ctx, err)
		return
	}
	writeOK(ctx, xhttp.StatusOK, payload{"contacts": contacts, "count": len(contacts)})
}

func (h *ContactHandler) GetContact(ctx *xhttp.RequestCtx) {
	c, err := h.svc.Get(ctx, param(ctx, "id"))
	if err != nil {
		writeServiceError(ctx, err)
		return
	}
	writeOK(ctx, xhttp.StatusOK, payload{"contact": c})
}

func (h *ContactHandler) CreateContact(ctx *xhttp.RequestCtx) {
	var req model.ContactCreateRequest
	if err := readJSON(ctx, &req); err != nil {
		writeServiceError(ctx, err)
		return
	}
	c, err := h.svc.Create(ctx, req)
	if err != nil {
		writeServiceError(ctx, err)
		return
	}
	writeOK(ctx, xhttp.StatusCreated, payload{"message": "Contact created successfully", "contact": c})
}

func (h *ContactHandler) UpdateContact(ctx *xhttp.RequestCtx) {
	var req model.ContactUpdateRequest
	if err := readJSON(ctx, &req); err != nil {
		writeServiceError(ctx, err)
		return
	}
	c, err := h.svc.Update(ctx, param(ctx, "id"), req)
	if err != nil {
		writeServiceError(ctx, err)
		return
	}
	writeOK(ctx, xhttp.StatusOK, payload{"message": "Contact updated successfully", "contact": c})
}

func (h *ContactHandler) DeleteContact(ctx *xhttp.RequestCtx) {
	if err := h.svc.Delete(ctx, param(ctx, "id")); err != nil {
		writeServiceError(ctx, err)
		return
	}
	writeOK(ctx, xhttp.StatusOK, payload{"message": "Contact deleted successfully"})
}

func (h *ContactHandler) ListTags(ctx *xhttp.RequestCtx) {
	tags, err := h.svc.Tags(ctx)
	if err != nil {
		writeServiceError(ctx, err)
		return
	}
	writeOK(ctx, xhttp.StatusOK, payload{"tags": tags})
}

func (h *ContactHandler) ImportContacts(ctx *xhttp.RequestCtx) {
	fh, err := ctx.FormFile("csvFile")
	if err != nil {
		writeError(ctx, xhttp.StatusBadRequest, "CSV file is required")
		return
	}
	f, err := fh.Open()
	if err != nil {
		writeServiceError(ctx, err)
		return
	}
	defer f.Close()

	imported, err := h.svc.Import(ctx, f)
	if err != nil {
		writeServiceError(ctx, err)
		return
	}
	writeOK(ctx, xhttp.StatusOK, payload{
		"message":  "Contacts imported successfully",
		"imported": len(imported),
		"contacts": imported,
	})
}

var _ ContactService = (*services.ContactService)(nil)
