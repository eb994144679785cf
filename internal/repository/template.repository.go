package repository

import (
	"context"
	"errors"

	"github.com/nimasrn/wa-messenger/internal/model"
	"github.com/nimasrn/wa-messenger/pkg/pg"
	"gorm.io/gorm"
)

type TemplateRepository struct {
	*pg.DB
}

func NewTemplateRepository(db *pg.DB) *TemplateRepository {
	return &TemplateRepository{
		db,
	}
}

func (r *TemplateRepository) List(ctx context.Context) ([]*model.Template, error) {
	var entities []*TemplateEntity
	err := r.Read(ctx).
		Order("created_at ASC, id ASC").
		Find(&entities).
		Error
	if err != nil {
		return nil, err
	}
	return toTemplateModels(entities), nil
}

func (r *TemplateRepository) Get(ctx context.Context, id string) (*model.Template, error) {
	var entity TemplateEntity
	err := r.Read(ctx).
		Where("id = ?", id).
		First(&entity).
		Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, model.ErrTemplateNotFound
		}
		return nil, err
	}
	return toTemplateModel(&entity), nil
}

func (r *TemplateRepository) Create(ctx context.Context, tpl *model.Template) (*model.Template, error) {
	entity := toTemplateEntity(tpl)
	if err := r.Write(ctx).Create(entity).Error; err != nil {
		return nil, err
	}
	return toTemplateModel(entity), nil
}

func (r *TemplateRepository) Update(ctx context.Context, tpl *model.Template) (*model.Template, error) {
	entity := toTemplateEntity(tpl)
	result := r.Write(ctx).
		Model(&TemplateEntity{}).
		Where("id = ?", tpl.ID).
		Select("*").
		Updates(entity)
	if result.Error != nil {
		return nil, result.Error
	}
	if result.RowsAffected == 0 {
		return nil, model.ErrTemplateNotFound
	}
	return toTemplateModel(entity), nil
}

func (r *TemplateRepository) Delete(ctx context.Context, id string) error {
	result := r.Write(ctx).
		Where("id = ?", id).
		Delete(&TemplateEntity{})
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return model.ErrTemplateNotFound
	}
	return nil
}
