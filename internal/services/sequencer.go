package services

import (
	"context"
	"time"

	"go.uber.org/zap"

	"bonneaffaire/internal/repository"
)

// OrderSequencer hands out positions within a day's orders.
type OrderSequencer interface {
	// Reserve claims a slot in the day [dayStart, dayEnd) and returns how many orders precede it.
	Reserve(ctx context.Context, dayStart, dayEnd time.Time) (int64, error)
}

// countSequencer counts the day's stored orders. Two concurrent callers can get
// the same answer; the unique order number index rejects the loser, which retries.
type countSequencer struct {
	orderRepo repository.OrderRepository
}

func NewCountSequencer(orderRepo repository.OrderRepository) OrderSequencer {
	return &countSequencer{orderRepo: orderRepo}
}

func (s *countSequencer) Reserve(ctx context.Context, dayStart, dayEnd time.Time) (int64, error) {
	return s.orderRepo.CountCreatedBetween(ctx, dayStart, dayEnd)
}

// SequenceStore is an atomic per-day counter, see redis.Client.NextOrderSequence.
type SequenceStore interface {
	NextOrderSequence(ctx context.Context, day time.Time, seed func(context.Context) (int64, error)) (int64, error)
}

type atomicSequencer struct {
	store    SequenceStore
	fallback OrderSequencer
	logger   *zap.Logger
}

// NewAtomicSequencer numbers orders from store, seeding each day from fallback
// and using fallback outright while store is unreachable.
func NewAtomicSequencer(store SequenceStore, fallback OrderSequencer, logger *zap.Logger) OrderSequencer {
	return &atomicSequencer{store: store, fallback: fallback, logger: logger}
}

func (s *atomicSequencer) Reserve(ctx context.Context, dayStart, dayEnd time.Time) (int64, error) {
	seq, err := s.store.NextOrderSequence(ctx, dayStart, func(ctx context.Context) (int64, error) {
		return s.fallback.Reserve(ctx, dayStart, dayEnd)
	})
	if err != nil {
		s.logger.Warn("order sequence store unavailable, counting stored orders", zap.Error(err))
		return s.fallback.Reserve(ctx, dayStart, dayEnd)
	}
	return seq - 1, nil
}
