// Package history keeps finished bulk runs in redis so they can be listed
// and fetched after the HTTP response has gone out.
package history

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"github.com/nimasrn/wa-messenger/internal/model"
	"github.com/nimasrn/wa-messenger/pkg/logger"
	"github.com/nimasrn/wa-messenger/pkg/redis"
	pkgerrors "github.com/pkg/errors"
)

var ErrRunNotFound = errors.New("bulk run not found")

const (
	runsListKey = "bulk:runs"
	runKeyBase  = "bulk:run:"
)

type Store struct {
	rdb     redis.RedisAdapter
	ttl     time.Duration
	maxRuns int64
}

func NewStore(rdb redis.RedisAdapter, ttl time.Duration, maxRuns int64) *Store {
	return &Store{rdb: rdb, ttl: ttl, maxRuns: maxRuns}
}

// Ping reports whether the backing redis is reachable.
func (s *Store) Ping(ctx context.Context) error {
	return s.rdb.Ping(ctx)
}

func runKey(id string) string {
	return runKeyBase + id
}

// Save records run and keeps only the newest maxRuns ids in the index.
func (s *Store) Save(ctx context.Context, run *model.BulkRun) error {
	b, err := json.Marshal(run)
	if err != nil {
		return pkgerrors.Wrap(err, "encode bulk run")
	}
	if err := s.rdb.PushCapped(ctx, runsListKey, run.ID, runKey(run.ID), b, s.ttl, s.maxRuns); err != nil {
		return pkgerrors.Wrapf(err, "save bulk run %s", run.ID)
	}
	logger.Debug("[history] bulk run saved", "run_id", run.ID, "results", len(run.Results))
	return nil
}

func (s *Store) Get(ctx context.Context, id string) (*model.BulkRun, error) {
	b, err := s.rdb.Get(ctx, runKey(id))
	if errors.Is(err, redis.NilError) {
		return nil, ErrRunNotFound
	}
	if err != nil {
		return nil, pkgerrors.Wrapf(err, "load bulk run %s", id)
	}
	var run model.BulkRun
	if err := json.Unmarshal(b, &run); err != nil {
		return nil, pkgerrors.Wrapf(err, "decode bulk run %s", id)
	}
	return &run, nil
}

// Recent returns up to limit runs, newest first. Ids whose payload has
// expired are skipped and dropped from the index.
func (s *Store) Recent(ctx context.Context, limit int64) ([]*model.BulkRun, error) {
	if limit <= 0 || (s.maxRuns > 0 && limit > s.maxRuns) {
		limit = s.maxRuns
	}
	stop := int64(-1)
	if limit > 0 {
		stop = limit - 1
	}
	ids, err := s.rdb.LRange(ctx, runsListKey, 0, stop)
	if err != nil {
		return nil, pkgerrors.Wrap(err, "list bulk runs")
	}
	keys := make([]string, len(ids))
	for i, id := range ids {
		keys[i] = runKey(id)
	}
	payloads, err := s.rdb.MGet(ctx, keys...)
	if err != nil {
		return nil, pkgerrors.Wrap(err, "load bulk runs")
	}

	runs := make([]*model.BulkRun, 0, len(payloads))
	for i, b := range payloads {
		if b == nil {
			if err := s.rdb.LRem(ctx, runsListKey, ids[i]); err != nil {
				logger.Warn("[history] failed to prune expired run", "run_id", ids[i], "error", err)
			}
			continue
		}
		var run model.BulkRun
		if err := json.Unmarshal(b, &run); err != nil {
			logger.Warn("[history] skipping undecodable run", "run_id", ids[i], "error", err)
			continue
		}
		runs = append(runs, &run)
	}
	return runs, nil
}
