package repository

import (
	"context"

	"github.com/nimasrn/wa-messenger/internal/model"
	"github.com/nimasrn/wa-messenger/pkg/pg"
	"gorm.io/gorm"
)

// Seed inserts the contacts, groups and templates whose ids are not stored
// yet and returns how many rows it created.
func Seed(ctx context.Context, db *pg.DB, contacts []*model.Contact, groups []*model.Group, templates []*model.Template) (int, error) {
	inserted := 0
	err := db.WithinTransaction(ctx, func(ctx context.Context) error {
		tx := db.Write(ctx)
		for _, c := range contacts {
			ok, err := insertMissing(tx, c.ID, toContactEntity(c))
			if err != nil {
				return err
			}
			if ok {
				inserted++
			}
		}
		for _, g := range groups {
			ok, err := insertMissing(tx, g.ID, toGroupEntity(g))
			if err != nil {
				return err
			}
			if ok {
				inserted++
			}
		}
		for _, t := range templates {
			ok, err := insertMissing(tx, t.ID, toTemplateEntity(t))
			if err != nil {
				return err
			}
			if ok {
				inserted++
			}
		}
		return nil
	})
	return inserted, err
}

func insertMissing(tx *gorm.DB, id string, entity any) (bool, error) {
	var n int64
	if err := tx.Model(entity).Where("id = ?", id).Count(&n).Error; err != nil {
		return false, err
	}
	if n > 0 {
		return false, nil
	}
	if err := tx.Create(entity).Error; err != nil {
		return false, err
	}
	return true, nil
}
