package services

import (
	"context"
	"time"

	"github.com/robfig/cron/v3"
	"go.uber.org/zap"

	"github.com/fastygo/ordercore/domain"
	"github.com/fastygo/ordercore/repository"
)

// RetentionSweeper periodically removes cancelled orders older than the
// configured age. Open and paid orders are never touched.
type RetentionSweeper struct {
	orders   repository.OrderRepository
	maxAge   time.Duration
	interval time.Duration
	logger   *zap.Logger

	cron *cron.Cron
}

func NewRetentionSweeper(orders repository.OrderRepository, maxAge, interval time.Duration, logger *zap.Logger) *RetentionSweeper {
	if maxAge <= 0 {
		maxAge = 30 * 24 * time.Hour
	}
	if interval <= 0 {
		interval = time.Hour
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &RetentionSweeper{
		orders:   orders,
		maxAge:   maxAge,
		interval: interval,
		logger:   logger,
		cron:     cron.New(),
	}
}

// Start schedules the sweep and runs the scheduler in its own goroutine.
func (s *RetentionSweeper) Start() error {
	_, err := s.cron.AddFunc("@every "+s.interval.String(), func() {
		ctx, cancel := context.WithTimeout(context.Background(), time.Minute)
		defer cancel()
		s.Sweep(ctx)
	})
	if err != nil {
		return err
	}
	s.cron.Start()
	return nil
}

// Stop halts the scheduler and waits for a running sweep to finish.
func (s *RetentionSweeper) Stop(ctx context.Context) {
	done := s.cron.Stop().Done()
	select {
	case <-done:
	case <-ctx.Done():
	}
}

// Sweep deletes cancelled orders whose last modification is older than the
// retention window. Returns the number of removed orders.
func (s *RetentionSweeper) Sweep(ctx context.Context) int {
	orders, err := s.orders.ListByStatus(ctx, domain.OrderStatusCancelled)
	if err != nil {
		s.logger.Warn("retention sweep listing failed", zap.Error(err))
		return 0
	}

	cutoff := time.Now().Add(-s.maxAge)
	removed := 0
	for _, order := range orders {
		meta := order.StateMeta()
		if meta.LastModified.IsZero() || meta.LastModified.Std().After(cutoff) {
			continue
		}
		if err := s.orders.Remove(ctx, order.AggregateID()); err != nil {
			s.logger.Warn("retention sweep removal failed",
				zap.String("order_id", order.AggregateID()),
				zap.Error(err),
			)
			continue
		}
		removed++
	}

	if removed > 0 {
		s.logger.Info("retention sweep completed", zap.Int("removed", removed))
	}
	return removed
}
