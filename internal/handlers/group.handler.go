package handlers

import (
	"context"

	"github.com/nimasrn/wa-messenger/internal/model"
	"github.com/nimasrn/wa-messenger/internal/services"
	xhttp "github.com/nimasrn/wa-messenger/pkg/http"
)

type GroupService interface {
	List(ctx context.Context) ([]*model.Group, error)
	Get(ctx context.Context, id string) (*model.Group, error)
	Create(ctx context.Context, p model.GroupCreateRequest) (*model.Group, error)
	Update(ctx context.Context, id string, p model.GroupUpdateRequest) (*model.Group, error)
	Delete(ctx context.Context, id string) error
	AddContact(ctx context.Context, groupID, contactID string) (*model.Group, error)
	RemoveContact(ctx context.Context, groupID, contactID string) (*model.Group, error)
	Contacts(ctx context.Context, groupID string) ([]*model.Contact, error)
}

type GroupHandler struct {
	svc GroupService
}

func RegisterGroupRoutes(g *xhttp.Group, h *GroupHandler) {
	g.GET("/groups", h.ListGroups)
	g.POST("/groups", h.CreateGroup)
	g.GET("/groups/{id}", h.GetGroup)
	g.PUT("/groups/{id}", h.UpdateGroup)
	g.DELETE("/groups/{id}", h.DeleteGroup)
	g.GET("/groups/{id}/contacts", h.ListGroupContacts)
	g.POST("/groups/{id}/contacts/{contactId}", h.AddGroupContact)
	g.DELETE("/groups/{id}/contacts/{contactId}", h.RemoveGroupContact)
}

func NewGroupHandler(svc GroupService) *GroupHandler {
	return &GroupHandler{svc: svc}
}

func (h *GroupHandler) ListGroups(ctx *xhttp.RequestCtx) {
	groups, err := h.svc.List(ctx)
	if err != nil {
		writeServiceError(ctx, err)
		return
	}
	writeOK(ctx, xhttp.StatusOK, payload{"groups": groups})
}

func (h *GroupHandler) GetGroup(ctx *xhttp.RequestCtx) {
	g, err := h.svc.Get(ctx, param(ctx, "id"))
	if err != nil {
		writeServiceError(ctx, err)
		return
	}
	writeOK(ctx, xhttp.StatusOK, payload{"group": g})
}

func (h *GroupHandler) CreateGroup(ctx *xhttp.RequestCtx) {
	var req model.GroupCreateRequest
	if err := readJSON(ctx, &req); err != nil {
		writeServiceError(ctx, err)
		return
	}
	g, err := h.svc.Create(ctx, req)
	if err != nil {
		writeServiceError(ctx, err)
		return
	}
	writeOK(ctx, xhttp.StatusCreated, payload{"message": "Group created successfully", "group": g})
}

func (h *GroupHandler) UpdateGroup(ctx *xhttp.RequestCtx) {
	var req model.GroupUpdateRequest
	if err := readJSON(ctx, &req); err != nil {
		writeServiceError(ctx, err)
		return
	}
	g, err := h.svc.Update(ctx, param(ctx, "id"), req)
	if err != nil {
		writeServiceError(ctx, err)
		return
	}
	writeOK(ctx, xhttp.StatusOK, payload{"message": "Group updated successfully", "group": g})
}

func (h *GroupHandler) DeleteGroup(ctx *xhttp.RequestCtx) {
	if err := h.svc.Delete(ctx, param(ctx, "id")); err != nil {
		writeServiceError(ctx, err)
		return
	}
	writeOK(ctx, xhttp.StatusOK, payload{"message": "Group deleted successfully"})
}

func (h *GroupHandler) ListGroupContacts(ctx *xhttp.RequestCtx) {
	contacts, err := h.svc.Contacts(ctx, param(ctx, "id"))
	if err != nil {
		writeServiceError(ctx, err)
		return
	}
	writeOK(ctx, xhttp.StatusOK, payload{"contacts": contacts})
}

func (h *GroupHandler) AddGroupContact(ctx *xhttp.RequestCtx) {
	g, err := h.svc.AddContact(ctx, param(ctx, "id"), param(ctx, "contactId"))
	if err != nil {
		writeServiceError(ctx, err)
		return
	}
	writeOK(ctx, xhttp.StatusOK, payload{"message": "Contact added to group", "group": g})
}

func (h *GroupHandler) RemoveGroupContact(ctx *xhttp.RequestCtx) {
	g, err := h.svc.RemoveContact(ctx, param(ctx, "id"), param(ctx, "contactId"))
	if err != nil {
		writeServiceError(ctx, err)
		return
	}
	writeOK(ctx, xhttp.StatusOK, payload{"message": "Contact removed from group", "group": g})
}

var _ GroupService = (*services.GroupService)(nil)
