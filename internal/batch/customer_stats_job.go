package batch

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"customer-engine/internal/infrastructure/monitoring"
)

const (
	SegmentAll    = "all"
	SegmentPro    = "pro"
	SegmentNonPro = "non_pro"
)

// CustomerCounter is the part of customer.CustomerService the stats job reads.
type CustomerCounter interface {
	CountAll(ctx context.Context) (int64, error)
	CountProMembers(ctx context.Context) (int64, error)
	CountNonProMembers(ctx context.Context) (int64, error)
}

// CustomerStatsJob refreshes the per-segment customer gauges.
type CustomerStatsJob struct {
	counter CustomerCounter
	logger  *slog.Logger
}

func NewCustomerStatsJob(counter CustomerCounter, logger *slog.Logger) *CustomerStatsJob {
	if counter == nil || logger == nil {
		panic("CustomerStatsJob dependencies cannot be nil")
	}
	return &CustomerStatsJob{
		counter: counter,
		logger:  logger.With("job", "CustomerStats"),
	}
}

// Run counts every segment concurrently. A segment whose count fails keeps
// its previous gauge value; the others are still updated.
func (j *CustomerStatsJob) Run(ctx context.Context) error {
	startTime := time.Now()
	j.logger.InfoContext(ctx, "Starting customer stats job.")

	segments := []struct {
		name  string
		count func(context.Context) (int64, error)
	}{
		{SegmentAll, j.counter.CountAll},
		{SegmentPro, j.counter.CountProMembers},
		{SegmentNonPro, j.counter.CountNonProMembers},
	}

	var (
		wg   sync.WaitGroup
		mu   sync.Mutex
		errs []error
	)
	for _, seg := range segments {
		wg.Add(1)
		go func() {
			defer wg.Done()

			logCtx := j.logger.With(slog.String("segment", seg.name))
			n, err := seg.count(ctx)
			if err != nil {
				logCtx.ErrorContext(ctx, "Failed to count customers for segment", slog.Any("error", err))
				mu.Lock()
				errs = append(errs, fmt.Errorf("segment %s: %w", seg.name, err))
				mu.Unlock()
				return
			}
			monitoring.SetCustomerCount(seg.name, n)
			logCtx.DebugContext(ctx, "Customer count refreshed.", slog.Int64("count", n))
		}()
	}
	wg.Wait()

	summaryLog := j.logger.With(
		slog.Duration("duration", time.Since(startTime)),
		slog.Int("segments", len(segments)),
		slog.Int("errors_encountered", len(errs)),
	)
	if len(errs) > 0 {
		summaryLog.WarnContext(ctx, "Customer stats job finished with errors.")
		return fmt.Errorf("job completed with %d errors: %w", len(errs), errors.Join(errs...))
	}
	summaryLog.InfoContext(ctx, "Customer stats job finished successfully.")
	return nil
}
