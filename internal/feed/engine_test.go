package feed

import (
	"context"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/arbitragex/arbfeed/internal/store"
	"github.com/arbitragex/arbfeed/pkg/types"
)

func newTestEngine(t *testing.T, onAuth func()) (*Engine, *store.Store, chan types.Signal, context.CancelFunc) {
	t.Helper()

	st := store.New(store.Config{
		ExpiringWindow:   8 * time.Second,
		ExpiryThreshold:  10 * time.Second,
		MaxOpportunities: 1000,
		Logger:           zap.NewNop(),
	})

	signals := make(chan types.Signal, 16)
	e := New(Config{
		ExpiringSweepInterval: 200 * time.Millisecond,
		EvictionSweepInterval: time.Second,
		OnAuthRequired:        onAuth,
		Logger:                zap.NewNop(),
	}, st, nil, nil, signals)

	ctx, cancel := context.WithCancel(context.Background())
	require.NoError(t, e.Start(ctx))

	t.Cleanup(func() {
		cancel()
		_ = e.Close()
	})

	return e, st, signals, cancel
}

func TestEngineUpsertsEvents(t *testing.T) {
	_, st, signals, _ := newTestEngine(t, nil)

	signals <- types.Signal{
		Type:    types.SignalEvent,
		Payload: []byte(`{"event_id_provider":"e1","provider":"papa","sport":"soccer","market_name":"Match Odds","runner":"Home","arb_percentage":5.0}`),
	}

	require.Eventually(t, func() bool {
		return st.Len() == 1
	}, 2*time.Second, 10*time.Millisecond, "event never reached the store")

	opp, ok := st.Get("e1-papa-Match Odds-Home")
	require.True(t, ok)
	require.Equal(t, "papa", opp.Provider)
}

func TestEngineBatchSkipsMalformed(t *testing.T) {
	_, st, signals, _ := newTestEngine(t, nil)

	signals <- types.Signal{
		Type: types.SignalEvent,
		Payload: []byte(`[
			{"event_id_provider":"e1","provider":"papa","market_name":"m","runner":"r"},
			{"no":"identity"},
			{"event_id_provider":"e2","provider":"onwin","market_name":"m","runner":"r"}
		]`),
	}

	require.Eventually(t, func() bool {
		return st.Len() == 2
	}, 2*time.Second, 10*time.Millisecond)
}

func TestEngineTracksConnectionState(t *testing.T) {
	e, _, signals, _ := newTestEngine(t, nil)

	require.False(t, e.Connected())

	signals <- types.Signal{Type: types.SignalConnected}
	require.Eventually(t, e.Connected, time.Second, 5*time.Millisecond)

	signals <- types.Signal{Type: types.SignalDisconnected}
	require.Eventually(t, func() bool { return !e.Connected() }, time.Second, 5*time.Millisecond)
}

func TestEngineAuthFailureCallback(t *testing.T) {
	var called atomic.Bool
	_, _, signals, _ := newTestEngine(t, func() { called.Store(true) })

	signals <- types.Signal{Type: types.SignalAuthFailed}

	require.Eventually(t, called.Load, time.Second, 5*time.Millisecond,
		"auth failure must propagate to the host immediately")
}

func TestEngineStopsOnCancel(t *testing.T) {
	e, st, signals, cancel := newTestEngine(t, nil)

	cancel()
	require.NoError(t, e.Close())

	// A signal sent after teardown must not mutate the store.
	select {
	case signals <- types.Signal{
		Type:    types.SignalEvent,
		Payload: []byte(`{"event_id_provider":"late","provider":"papa","market_name":"m","runner":"r"}`),
	}:
	default:
	}

	time.Sleep(50 * time.Millisecond)
	require.Equal(t, 0, st.Len(), "engine mutated store after teardown")
}
