package alert

import (
	"testing"
	"time"

	"go.uber.org/zap"

	"github.com/arbitragex/arbfeed/pkg/cache"
	"github.com/arbitragex/arbfeed/pkg/types"
)

func newTestNotifier(t *testing.T) *Notifier {
	t.Helper()
	throttle, err := cache.NewRistrettoCache(&cache.RistrettoConfig{
		NumCounters: 1000,
		MaxCost:     100,
		BufferItems: 64,
		Logger:      zap.NewNop(),
	})
	if err != nil {
		t.Fatalf("create throttle cache: %v", err)
	}
	return New(Config{
		ThrottleWindow: 30 * time.Second,
		BufferSize:     16,
		Throttle:       throttle,
		Logger:         zap.NewNop(),
	})
}

func TestNotifyEmitsAlert(t *testing.T) {
	n := newTestNotifier(t)
	defer n.Close()

	opp := &types.Opportunity{ID: "x", Provider: "papa", ArbPercentage: 7.5}
	now := time.Now()
	n.Notify(opp, now)

	select {
	case a := <-n.Alerts():
		if a.OpportunityID != "x" {
			t.Errorf("unexpected opportunity id %q", a.OpportunityID)
		}
		if a.ID == "" {
			t.Error("expected alert id assigned")
		}
		if !a.At.Equal(now) {
			t.Error("expected alert timestamp from caller clock")
		}
	default:
		t.Fatal("expected alert on channel")
	}
}

func TestNotifyThrottlesRepeatIdentity(t *testing.T) {
	n := newTestNotifier(t)
	defer n.Close()

	opp := &types.Opportunity{ID: "x", Provider: "papa"}
	n.Notify(opp, time.Now())
	n.throttle.Wait()
	n.Notify(opp, time.Now())

	count := 0
	for {
		select {
		case <-n.Alerts():
			count++
			continue
		default:
		}
		break
	}

	if count != 1 {
		t.Errorf("expected exactly 1 alert within throttle window, got %d", count)
	}
}

func TestNotifyDistinctIdentities(t *testing.T) {
	n := newTestNotifier(t)
	defer n.Close()

	n.Notify(&types.Opportunity{ID: "x"}, time.Now())
	n.throttle.Wait()
	n.Notify(&types.Opportunity{ID: "y"}, time.Now())

	count := 0
	for {
		select {
		case <-n.Alerts():
			count++
			continue
		default:
		}
		break
	}

	if count != 2 {
		t.Errorf("expected 2 alerts for distinct identities, got %d", count)
	}
}
