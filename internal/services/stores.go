package services

import (
	"context"

	"github.com/nimasrn/wa-messenger/internal/model"
)

// The stores below are implemented by both the JSON file store and the
// PostgreSQL repositories.

type ContactStore interface {
	List(ctx context.Context) ([]*model.Contact, error)
	Get(ctx context.Context, id string) (*model.Contact, error)
	Create(ctx context.Context, c *model.Contact) (*model.Contact, error)
	Update(ctx context.Context, c *model.Contact) (*model.Contact, error)
	// Delete also removes the contact from every group.
	Delete(ctx context.Context, id string) error
}

type GroupStore interface {
	List(ctx context.Context) ([]*model.Group, error)
	Get(ctx context.Context, id string) (*model.Group, error)
	Create(ctx context.Context, g *model.Group) (*model.Group, error)
	Update(ctx context.Context, g *model.Group) (*model.Group, error)
	Delete(ctx context.Context, id string) error
}

type TemplateStore interface {
	List(ctx context.Context) ([]*model.Template, error)
	Get(ctx context.Context, id string) (*model.Template, error)
	Create(ctx context.Context, t *model.Template) (*model.Template, error)
	Update(ctx context.Context, t *model.Template) (*model.Template, error)
	Delete(ctx context.Context, id string) error
}

type RunStore interface {
	Save(ctx context.Context, run *model.BulkRun) error
	Get(ctx context.Context, id string) (*model.BulkRun, error)
	Recent(ctx context.Context, limit int64) ([]*model.BulkRun, error)
}
