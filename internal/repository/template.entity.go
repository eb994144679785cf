package repository

import (
	"time"

	"github.com/lib/pq"
	"github.com/nimasrn/wa-messenger/internal/model"
)

type TemplateEntity struct {
	ID        string         `gorm:"primaryKey;column:id"`
	Name      string         `gorm:"column:name;not null"`
	Content   string         `gorm:"column:content;not null"`
	Category  string         `gorm:"column:category;not null;default:'general'"`
	Variables pq.StringArray `gorm:"column:variables;type:text"`
	CreatedAt time.Time      `gorm:"column:created_at;autoCreateTime:false"`
	UpdatedAt time.Time      `gorm:"column:updated_at;autoUpdateTime:false"`
}

func (TemplateEntity) TableName() string {
	return "templates"
}

func toTemplateEntity(m *model.Template) *TemplateEntity {
	if m == nil {
		return nil
	}
	return &TemplateEntity{
		ID:        m.ID,
		Name:      m.Name,
		Content:   m.Content,
		Category:  m.Category,
		Variables: pq.StringArray(append([]string{}, m.Variables...)),
		CreatedAt: m.CreatedAt,
		UpdatedAt: m.UpdatedAt,
	}
}

func toTemplateModel(e *TemplateEntity) *model.Template {
	if e == nil {
		return nil
	}
	vars := []string(e.Variables)
	if vars == nil {
		vars = []string{}
	}
	return &model.Template{
		ID:        e.ID,
		Name:      e.Name,
		Content:   e.Content,
		Category:  e.Category,
		Variables: vars,
		CreatedAt: e.CreatedAt,
		UpdatedAt: e.UpdatedAt,
	}
}

func toTemplateModels(entities []*TemplateEntity) []*model.Template {
	models := make([]*model.Template, len(entities))
	for i, e := range entities {
		models[i] = toTemplateModel(e)
	}
	return models
}
