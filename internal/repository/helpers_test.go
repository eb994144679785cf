package repository

import (
	"path/filepath"
	"testing"

	"github.com/nimasrn/wa-messenger/pkg/pg"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// setupTestDB opens a file-backed sqlite database so that every pooled
// connection sees the same address book schema.
func setupTestDB(t *testing.T) *pg.DB {
	t.Helper()
	path := filepath.Join(t.TempDir(), "address_book.db")
	db, err := gorm.Open(sqlite.Open("file:"+path+"?_foreign_keys=on"), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	require.NoError(t, err)
	require.NoError(t, db.AutoMigrate(&ContactEntity{}, &GroupEntity{}, &TemplateEntity{}))

	pgDB := pg.New(db, db)
	t.Cleanup(func() { _ = pgDB.Close() })
	return pgDB
}
