package repository

import (
	"context"
	"errors"

	"github.com/nimasrn/wa-messenger/internal/model"
	"github.com/nimasrn/wa-messenger/pkg/pg"
	"gorm.io/gorm"
)

type GroupRepository struct {
	*pg.DB
}

func NewGroupRepository(db *pg.DB) *GroupRepository {
	return &GroupRepository{
		db,
	}
}

func (r *GroupRepository) List(ctx context.Context) ([]*model.Group, error) {
	var entities []*GroupEntity
	err := r.Read(ctx).
		Order("created_at ASC, id ASC").
		Find(&entities).
		Error
	if err != nil {
		return nil, err
	}
	return toGroupModels(entities), nil
}

func (r *GroupRepository) Get(ctx context.Context, id string) (*model.Group, error) {
	var entity GroupEntity
	err := r.Read(ctx).
		Where("id = ?", id).
		First(&entity).
		Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, model.ErrGroupNotFound
		}
		return nil, err
	}
	return toGroupModel(&entity), nil
}

func (r *GroupRepository) Create(ctx context.Context, group *model.Group) (*model.Group, error) {
	entity := toGroupEntity(group)
	if err := r.Write(ctx).Create(entity).Error; err != nil {
		return nil, err
	}
	return toGroupModel(entity), nil
}

func (r *GroupRepository) Update(ctx context.Context, group *model.Group) (*model.Group, error) {
	entity := toGroupEntity(group)
	result := r.Write(ctx).
		Model(&GroupEntity{}).
		Where("id = ?", group.ID).
		Select("*").
		Updates(entity)
	if result.Error != nil {
		return nil, result.Error
	}
	if result.RowsAffected == 0 {
		return nil, model.ErrGroupNotFound
	}
	return toGroupModel(entity), nil
}

func (r *GroupRepository) Delete(ctx context.Context, id string) error {
	result := r.Write(ctx).
		Where("id = ?", id).
		Delete(&GroupEntity{})
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return model.ErrGroupNotFound
	}
	return nil
}
