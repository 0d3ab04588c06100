package storage

import (
	"context"
	"errors"
	"time"

	"go.uber.org/zap"

	"dmml/internal/logging"
	"dmml/internal/metrics"
)

// CopyFn abstracts a backend's bulk insert. It inserts rows aligned to
// columns and returns the number of rows reported as inserted.
type CopyFn func(ctx context.Context, columns []string, rows [][]any) (int64, error)

// DefaultBatchSize is used when LoadOptions.BatchSize is not positive.
const DefaultBatchSize = 500

// LoadOptions configures LoadBatches. All fields are optional.
type LoadOptions struct {
	BatchSize int
	// Log receives one progress line per flushed batch.
	Log *logging.Logger
	// Job labels the batch counter.
	Job string
}

// LoadBatches drains rows from in, groups them into batches and calls copyFn
// for each non-empty batch. It returns the total number of rows reported by
// copyFn and the first error encountered, or ctx.Err() when canceled.
func LoadBatches(ctx context.Context, columns []string, in <-chan []any, opt LoadOptions, copyFn CopyFn) (int64, error) {
	if copyFn == nil {
		return 0, errors.New("copyFn must not be nil")
	}
	batchSize := opt.BatchSize
	if batchSize <= 0 {
		batchSize = DefaultBatchSize
	}
	log := opt.Log
	if log == nil {
		log = logging.Nop()
	}

	var (
		total     int64
		batches   int64
		batch     = make([][]any, 0, batchSize)
		start     = time.Now()
		lastFlush = start
	)

	flush := func() error {
		if len(batch) == 0 {
			return nil
		}
		n, err := copyFn(ctx, columns, batch)
		total += n
		batch = batch[:0]
		if err != nil {
			log.Error("batch insert failed", zap.Int64("inserted", n), zap.Int64("total", total), zap.Error(err))
			return err
		}

		batches++
		metrics.RecordBatches(opt.Job, 1)
		now := time.Now()
		since := now.Sub(lastFlush)
		rps := float64(0)
		if since > 0 {
			rps = float64(n) / since.Seconds()
		}
		log.Debug("batch stored",
			zap.Int64("batch", batches),
			zap.Int64("inserted", n),
			zap.Int64("total", total),
			zap.Float64("rps", rps),
			zap.Duration("elapsed", now.Sub(start).Truncate(time.Millisecond)),
		)
		lastFlush = now
		return nil
	}

	for {
		select {
		case <-ctx.Done():
			return total, ctx.Err()

		case row, ok := <-in:
			if !ok {
				if err := flush(); err != nil {
					return total, err
				}
				log.Debug("loader input closed", zap.Int64("batches", batches), zap.Int64("total", total))
				return total, nil
			}
			batch = append(batch, row)
			if len(batch) >= batchSize {
				if err := flush(); err != nil {
					return total, err
				}
			}
		}
	}
}
