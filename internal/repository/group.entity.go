package repository

import (
	"time"

	"github.com/lib/pq"
	"github.com/nimasrn/wa-messenger/internal/model"
)

type GroupEntity struct {
	ID          string         `gorm:"primaryKey;column:id"`
	Name        string         `gorm:"column:name;not null"`
	Description string         `gorm:"column:description;not null;default:''"`
	ContactIDs  pq.StringArray `gorm:"column:contact_ids;type:text"`
	CreatedAt   time.Time      `gorm:"column:created_at;autoCreateTime:false"`
	UpdatedAt   time.Time      `gorm:"column:updated_at;autoUpdateTime:false"`
}

func (GroupEntity) TableName() string {
	return "groups"
}

func toGroupEntity(m *model.Group) *GroupEntity {
	if m == nil {
		return nil
	}
	return &GroupEntity{
		ID:          m.ID,
		Name:        m.Name,
		Description: m.Description,
		ContactIDs:  pq.StringArray(append([]string{}, m.ContactIDs...)),
		CreatedAt:   m.CreatedAt,
		UpdatedAt:   m.UpdatedAt,
	}
}

func toGroupModel(e *GroupEntity) *model.Group {
	if e == nil {
		return nil
	}
	ids := []string(e.ContactIDs)
	if ids == nil {
		ids = []string{}
	}
	return &model.Group{
		ID:          e.ID,
		Name:        e.Name,
		Description: e.Description,
		ContactIDs:  ids,
		CreatedAt:   e.CreatedAt,
		UpdatedAt:   e.UpdatedAt,
	}
}

func toGroupModels(entities []*GroupEntity) []*model.Group {
	models := make([]*model.Group, len(entities))
	for i, e := range entities {
		models[i] = toGroupModel(e)
	}
	return models
}
