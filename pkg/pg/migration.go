package pg

import (
	_ "github.com/lib/pq"
	"github.com/nimasrn/wa-messenger/pkg/logger"
	"github.com/pkg/errors"
	"github.com/pressly/goose/v3"
)

// Migrate applies every pending goose migration found in dir and logs the
// resulting schema version.
func Migrate(cfg Config, dir string) error {
	if err := goose.SetDialect("postgres"); err != nil {
		return errors.Wrap(err, "set goose dialect")
	}

	db, err := openSQL(cfg)
	if err != nil {
		return errors.Wrap(err, "open postgres")
	}
	defer db.Close()

	logger.Info("[pg] running migrations", "dir", dir, "host", cfg.Host, "database", cfg.Database)
	if err = goose.Up(db, dir); err != nil {
		return errors.Wrap(err, "apply migrations")
	}
	version, err := goose.GetDBVersion(db)
	if err != nil {
		return errors.Wrap(err, "read schema version")
	}
	logger.Info("[pg] address book schema is up to date", "version", version)
	return nil
}
