package repository

import (
	"context"
	"errors"

	"github.com/nimasrn/wa-messenger/internal/model"
	"github.com/nimasrn/wa-messenger/pkg/pg"
	"gorm.io/gorm"
)

type ContactRepository struct {
	*pg.DB
}

func NewContactRepository(db *pg.DB) *ContactRepository {
	return &ContactRepository{
		db,
	}
}

func (r *ContactRepository) List(ctx context.Context) ([]*model.Contact, error) {
	var entities []*ContactEntity
	err := r.Read(ctx).
		Order("created_at ASC, id ASC").
		Find(&entities).
		Error
	if err != nil {
		return nil, err
	}
	return toContactModels(entities), nil
}

func (r *ContactRepository) Get(ctx context.Context, id string) (*model.Contact, error) {
	var entity ContactEntity
	err := r.Read(ctx).
		Where("id = ?", id).
		First(&entity).
		Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, model.ErrContactNotFound
		}
		return nil, err
	}
	return toContactModel(&entity), nil
}

func (r *ContactRepository) Create(ctx context.Context, contact *model.Contact) (*model.Contact, error) {
	entity := toContactEntity(contact)
	if err := r.Write(ctx).Create(entity).Error; err != nil {
		return nil, err
	}
	return toContactModel(entity), nil
}

func (r *ContactRepository) Update(ctx context.Context, contact *model.Contact) (*model.Contact, error) {
	entity := toContactEntity(contact)
	result := r.Write(ctx).
		Model(&ContactEntity{}).
		Where("id = ?", contact.ID).
		Select("*").
		Updates(entity)
	if result.Error != nil {
		return nil, result.Error
	}
	if result.RowsAffected == 0 {
		return nil, model.ErrContactNotFound
	}
	return toContactModel(entity), nil
}

// Delete removes the contact and strips its id from every group in one
// transaction.
func (r *ContactRepository) Delete(ctx context.Context, id string) error {
	return r.WithinTransaction(ctx, func(ctx context.Context) error {
		result := r.Write(ctx).
			Where("id = ?", id).
			Delete(&ContactEntity{})
		if result.Error != nil {
			return result.Error
		}
		if result.RowsAffected == 0 {
			return model.ErrContactNotFound
		}

		var groups []*GroupEntity
		if err := r.Write(ctx).Find(&groups).Error; err != nil {
			return err
		}
		for _, g := range groups {
			m := toGroupModel(g)
			if !m.RemoveContact(id) {
				continue
			}
			err := r.Write(ctx).
				Model(&GroupEntity{}).
				Where("id = ?", g.ID).
				Update("contact_ids", toGroupEntity(m).ContactIDs).
				Error
			if err != nil {
				return err
			}
		}
		return nil
	})
}
