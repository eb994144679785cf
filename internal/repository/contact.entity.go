package repository

import (
	"time"

	"github.com/lib/pq"
	"github.com/nimasrn/wa-messenger/internal/model"
)

type ContactEntity struct {
	ID           string         `gorm:"primaryKey;column:id"`
	Name         string         `gorm:"column:name;not null"`
	Phone        string         `gorm:"column:phone;not null"`
	Email        string         `gorm:"column:email;not null;default:''"`
	Company      string         `gorm:"column:company;not null;default:''"`
	Tags         pq.StringArray `gorm:"column:tags;type:text"`
	CustomFields stringMap      `gorm:"column:custom_fields;type:text"`
	CreatedAt    time.Time      `gorm:"column:created_at;autoCreateTime:false"`
	UpdatedAt    time.Time      `gorm:"column:updated_at;autoUpdateTime:false"`
}

func (ContactEntity) TableName() string {
	return "contacts"
}

func toContactEntity(m *model.Contact) *ContactEntity {
	if m == nil {
		return nil
	}
	return &ContactEntity{
		ID:           m.ID,
		Name:         m.Name,
		Phone:        m.Phone,
		Email:        m.Email,
		Company:      m.Company,
		Tags:         pq.StringArray(append([]string{}, m.Tags...)),
		CustomFields: stringMap(m.CustomFields),
		CreatedAt:    m.CreatedAt,
		UpdatedAt:    m.UpdatedAt,
	}
}

func toContactModel(e *ContactEntity) *model.Contact {
	if e == nil {
		return nil
	}
	tags := []string(e.Tags)
	if tags == nil {
		tags = []string{}
	}
	return &model.Contact{
		ID:           e.ID,
		Name:         e.Name,
		Phone:        e.Phone,
		Email:        e.Email,
		Company:      e.Company,
		Tags:         tags,
		CustomFields: map[string]string(e.CustomFields),
		CreatedAt:    e.CreatedAt,
		UpdatedAt:    e.UpdatedAt,
	}
}

func toContactModels(entities []*ContactEntity) []*model.Contact {
	models := make([]*model.Contact, len(entities))
	for i, e := range entities {
		models[i] = toContactModel(e)
	}
	return models
}
