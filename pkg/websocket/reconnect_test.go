package websocket

import (
	"context"
	"errors"
	"testing"
	"time"

	"go.uber.org/zap"
)

func TestDelayGrowsAndCaps(t *testing.T) {
	rm := NewReconnectManager(ReconnectConfig{
		InitialDelay:      100 * time.Millisecond,
		MaxDelay:          400 * time.Millisecond,
		BackoffMultiplier: 2.0,
		JitterPercent:     0,
	}, zap.NewNop())

	tests := []struct {
		attempt int
		want    time.Duration
	}{
		{1, 100 * time.Millisecond},
		{2, 200 * time.Millisecond},
		{3, 400 * time.Millisecond},
		{4, 400 * time.Millisecond},
		{10, 400 * time.Millisecond},
	}

	for _, tt := range tests {
		if got := rm.delayFor(tt.attempt); got != tt.want {
			t.Errorf("attempt %d: expected delay %v, got %v", tt.attempt, tt.want, got)
		}
	}
}

func TestReconnectSucceedsAfterFailures(t *testing.T) {
	rm := NewReconnectManager(ReconnectConfig{
		InitialDelay:      time.Millisecond,
		MaxDelay:          5 * time.Millisecond,
		BackoffMultiplier: 2.0,
	}, zap.NewNop())

	attempts := 0
	err := rm.Reconnect(context.Background(), func(ctx context.Context) error {
		attempts++
		if attempts < 3 {
			return errors.New("connection refused")
		}
		return nil
	})

	if err != nil {
		t.Fatalf("Reconnect failed: %v", err)
	}
	if attempts != 3 {
		t.Errorf("expected 3 attempts, got %d", attempts)
	}
}

func TestReconnectStopsAtAttemptBudget(t *testing.T) {
	rm := NewReconnectManager(ReconnectConfig{
		InitialDelay:      time.Millisecond,
		MaxDelay:          5 * time.Millisecond,
		BackoffMultiplier: 2.0,
		MaxAttempts:       3,
	}, zap.NewNop())

	attempts := 0
	err := rm.Reconnect(context.Background(), func(ctx context.Context) error {
		attempts++
		return errors.New("connection refused")
	})

	if !errors.Is(err, ErrReconnectExhausted) {
		t.Fatalf("expected ErrReconnectExhausted, got %v", err)
	}
	if attempts != 3 {
		t.Errorf("expected exactly 3 attempts, got %d", attempts)
	}
}

func TestReconnectHonorsCancellation(t *testing.T) {
	rm := NewReconnectManager(ReconnectConfig{
		InitialDelay:      time.Millisecond,
		MaxDelay:          5 * time.Millisecond,
		BackoffMultiplier: 2.0,
	}, zap.NewNop())

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	err := rm.Reconnect(ctx, func(ctx context.Context) error {
		return errors.New("never succeeds")
	})

	if !errors.Is(err, context.Canceled) {
		t.Errorf("expected context.Canceled, got %v", err)
	}
}
