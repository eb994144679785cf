// Package pg holds the PostgreSQL read/write handles used by the address
// book repositories.
package pg

import (
	"context"
	"fmt"
	"time"

	"github.com/nimasrn/wa-messenger/pkg/logger"
	"github.com/pkg/errors"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"
)

type txContextKey struct{}

const slowQueryThreshold = 200 * time.Millisecond

// DB splits reads and writes across two gorm handles. Inside
// WithinTransaction both resolve to the transaction.
type DB struct {
	read  *gorm.DB
	write *gorm.DB
}

// New wraps already opened handles, e.g. a sqlite database in tests.
func New(read, write *gorm.DB) *DB {
	return &DB{read: read, write: write}
}

// gormWriter routes gorm's slow query and error lines into the zap logger.
type gormWriter struct {
	log logger.Logger
}

func (w gormWriter) Printf(format string, args ...any) {
	w.log.Info(fmt.Sprintf(format, args...))
}

func Create(config Config, withDebug bool) (*gorm.DB, error) {
	level := gormlogger.Warn
	if withDebug {
		level = gormlogger.Info
	}
	db, err := gorm.Open(postgres.Open(config.DSN()), &gorm.Config{
		Logger: gormlogger.New(gormWriter{log: logger.Named("gorm")}, gormlogger.Config{
			SlowThreshold:             slowQueryThreshold,
			LogLevel:                  level,
			IgnoreRecordNotFoundError: true,
		}),
	})
	if err != nil {
		return nil, errors.Wrapf(err, "open postgres %s/%s", config.Host, config.Database)
	}

	sqlDB, err := db.DB()
	if err != nil {
		return nil, err
	}
	config.tune(sqlDB)
	return db, nil
}

func CreateReadWrite(readConfig Config, writeConfig Config, withDebug bool) (*DB, error) {
	read, err := Create(readConfig, withDebug)
	if err != nil {
		return nil, err
	}
	write, err := Create(writeConfig, withDebug)
	if err != nil {
		return nil, err
	}
	return &DB{read: read, write: write}, nil
}

// WithinTransaction runs fn in a write transaction. A call nested in another
// transaction joins it.
func (r *DB) WithinTransaction(ctx context.Context, fn func(ctx context.Context) error) error {
	if _, ok := ctx.Value(txContextKey{}).(*gorm.DB); ok {
		return fn(ctx)
	}
	return r.write.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return fn(context.WithValue(ctx, txContextKey{}, tx))
	})
}

func (r *DB) Write(ctx context.Context) *gorm.DB {
	if tx, ok := ctx.Value(txContextKey{}).(*gorm.DB); ok {
		return tx
	}
	return r.write.WithContext(ctx)
}

func (r *DB) Read(ctx context.Context) *gorm.DB {
	if tx, ok := ctx.Value(txContextKey{}).(*gorm.DB); ok {
		return tx
	}
	return r.read.WithContext(ctx)
}

// Ping checks both pools.
func (r *DB) Ping(ctx context.Context) error {
	for _, db := range []*gorm.DB{r.read, r.write} {
		sqlDB, err := db.DB()
		if err != nil {
			return err
		}
		if err := sqlDB.PingContext(ctx); err != nil {
			return errors.Wrap(err, "ping postgres")
		}
	}
	return nil
}

// Close releases both connection pools.
func (r *DB) Close() error {
	for _, db := range []*gorm.DB{r.read, r.write} {
		sqlDB, err := db.DB()
		if err != nil {
			return err
		}
		if err := sqlDB.Close(); err != nil {
			return err
		}
	}
	return nil
}
