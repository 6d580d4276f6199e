// Package websocket is the connection lifecycle adapter between the
// upstream feed and the reconciliation core. It owns the persistent
// connection, reconnect/backoff, and keepalive, and reduces everything
// the transport does to the closed set of signals in pkg/types.
package websocket

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"sync"
	"sync/atomic"
	"time"

	json "github.com/goccy/go-json"
	"github.com/gorilla/websocket"
	"go.uber.org/zap"

	"github.com/arbitragex/arbfeed/pkg/types"
)

// Manager manages the feed WebSocket connection.
type Manager struct {
	url          string
	logger       *zap.Logger
	reconnectMgr *ReconnectManager
	config       Config
	signals      chan types.Signal
	conn         *websocket.Conn
	ctx          context.Context
	cancel       context.CancelFunc
	wg           sync.WaitGroup
	mu           sync.RWMutex
	token        string
	connected    atomic.Bool
	authFailed   atomic.Bool
	lastPongTime atomic.Int64
}

// Config holds WebSocket manager configuration.
type Config struct {
	URL                   string
	AuthToken             string
	DialTimeout           time.Duration
	PongTimeout           time.Duration
	PingInterval          time.Duration
	ReconnectInitialDelay time.Duration
	ReconnectMaxDelay     time.Duration
	ReconnectBackoffMult  float64
	ReconnectMaxAttempts  int
	SignalBufferSize      int
	Logger                *zap.Logger
}

// New creates a new WebSocket manager.
func New(cfg Config) *Manager {
	ctx, cancel := context.WithCancel(context.Background())

	reconnectCfg := ReconnectConfig{
		InitialDelay:      cfg.ReconnectInitialDelay,
		MaxDelay:          cfg.ReconnectMaxDelay,
		BackoffMultiplier: cfg.ReconnectBackoffMult,
		JitterPercent:     0.2,
		MaxAttempts:       cfg.ReconnectMaxAttempts,
	}

	return &Manager{
		url:          cfg.URL,
		logger:       cfg.Logger,
		reconnectMgr: NewReconnectManager(reconnectCfg, cfg.Logger),
		config:       cfg,
		signals:      make(chan types.Signal, cfg.SignalBufferSize),
		token:        cfg.AuthToken,
		ctx:          ctx,
		cancel:       cancel,
	}
}

// Start connects and starts the read and keepalive loops.
func (m *Manager) Start() error {
	m.logger.Info("websocket-manager-starting", zap.String("url", m.url))

	err := m.connect(m.ctx)
	if err != nil {
		return fmt.Errorf("initial connection: %w", err)
	}
	m.emitLifecycle(types.Signal{Type: types.SignalConnected})

	m.wg.Add(2)
	go m.readLoop()
	go m.pingLoop()

	return nil
}

// connect establishes a WebSocket connection with the auth token header.
func (m *Manager) connect(ctx context.Context) error {
	dialer := websocket.Dialer{
		HandshakeTimeout: m.config.DialTimeout,
	}

	m.mu.RLock()
	token := m.token
	m.mu.RUnlock()

	header := http.Header{}
	if token != "" {
		header.Set("X-Token", token)
	}

	m.logger.Info("connecting-to-feed", zap.String("url", m.url))

	conn, _, err := dialer.DialContext(ctx, m.url, header)
	if err != nil {
		return fmt.Errorf("dial: %w", err)
	}

	conn.SetPongHandler(func(string) error {
		m.lastPongTime.Store(time.Now().Unix())
		return nil
	})

	m.mu.Lock()
	m.conn = conn
	m.mu.Unlock()

	m.connected.Store(true)
	m.lastPongTime.Store(time.Now().Unix())
	ActiveConnections.Set(1)

	m.logger.Info("feed-connected")

	return nil
}

// readLoop reads frames until teardown, reconnecting on transport errors.
func (m *Manager) readLoop() {
	defer m.wg.Done()

	for {
		select {
		case <-m.ctx.Done():
			return
		default:
		}

		m.mu.RLock()
		conn := m.conn
		m.mu.RUnlock()

		if conn == nil {
			time.Sleep(100 * time.Millisecond)
			continue
		}

		_, message, err := conn.ReadMessage()
		if err != nil {
			if m.ctx.Err() != nil {
				return
			}

			m.logger.Warn("read-error", zap.Error(err))
			m.connected.Store(false)
			ActiveConnections.Set(0)
			m.emitLifecycle(types.Signal{Type: types.SignalDisconnected})

			// Auth failure is fatal to the session; the host decides
			// whether to come back with a fresh token.
			if m.authFailed.Load() {
				return
			}

			reconnectErr := m.reconnectMgr.Reconnect(m.ctx, m.connect)
			if reconnectErr != nil {
				// An exhausted attempt budget ends the session for good;
				// tell the engine so the condition is visible, not silent.
				if errors.Is(reconnectErr, ErrReconnectExhausted) {
					m.logger.Error("giving-up-on-reconnection", zap.Error(reconnectErr))
					m.emitLifecycle(types.Signal{Type: types.SignalError, Err: reconnectErr})
				}
				return
			}
			m.emitLifecycle(types.Signal{Type: types.SignalConnected})
			continue
		}

		m.handleFrame(message)
	}
}

// handleFrame decodes one frame and emits the matching signal.
func (m *Manager) handleFrame(message []byte) {
	var frame types.FeedFrame
	err := json.Unmarshal(message, &frame)
	if err != nil {
		m.logger.Warn("undecodable-frame", zap.Error(err))
		m.emitLifecycle(types.Signal{Type: types.SignalError, Err: &types.DecodeError{Reason: err}})
		return
	}

	switch frame.Event {
	case types.EventNewArb:
		FramesTotal.WithLabelValues("new_arb").Inc()
		m.emitEvent(types.Signal{Type: types.SignalEvent, Payload: frame.Data})
	case types.EventAuthFailed:
		FramesTotal.WithLabelValues("auth_failed").Inc()
		m.logger.Error("feed-authentication-failed")
		m.authFailed.Store(true)
		m.ClearToken()
		m.emitLifecycle(types.Signal{Type: types.SignalAuthFailed})
		// Force the read loop into its error path so it stops.
		m.closeConn()
	default:
		FramesTotal.WithLabelValues("other").Inc()
		m.logger.Debug("ignored-frame", zap.String("event", frame.Event))
	}
}

// pingLoop sends keepalive pings and tears the connection down when
// pongs go stale, which forces the read loop to reconnect.
func (m *Manager) pingLoop() {
	defer m.wg.Done()

	ticker := time.NewTicker(m.config.PingInterval)
	defer ticker.Stop()

	for {
		select {
		case <-m.ctx.Done():
			return
		case <-ticker.C:
			if !m.connected.Load() {
				continue
			}

			m.mu.RLock()
			conn := m.conn
			m.mu.RUnlock()
			if conn == nil {
				continue
			}

			err := conn.WriteControl(websocket.PingMessage, nil, time.Now().Add(m.config.DialTimeout))
			if err != nil {
				m.logger.Warn("ping-error", zap.Error(err))
				continue
			}

			lastPong := time.Unix(m.lastPongTime.Load(), 0)
			if time.Since(lastPong) > m.config.PongTimeout {
				m.logger.Warn("pong-timeout", zap.Time("last-pong", lastPong))
				m.closeConn()
			}
		}
	}
}

// emitEvent delivers an event signal without blocking the read loop.
func (m *Manager) emitEvent(sig types.Signal) {
	select {
	case m.signals <- sig:
	default:
		SignalsDroppedTotal.Inc()
		m.logger.Error("signal-channel-full-dropping-event",
			zap.Int("buffer-size", cap(m.signals)))
	}
}

// emitLifecycle delivers a lifecycle signal, waiting if the consumer is
// briefly behind; lifecycle signals must not be dropped.
func (m *Manager) emitLifecycle(sig types.Signal) {
	select {
	case m.signals <- sig:
	case <-m.ctx.Done():
	}
}

func (m *Manager) closeConn() {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.conn != nil {
		_ = m.conn.Close()
	}
}

// Signals returns the channel of lifecycle and event signals.
func (m *Manager) Signals() <-chan types.Signal {
	return m.signals
}

// Connected reports whether the feed connection is currently up.
func (m *Manager) Connected() bool {
	return m.connected.Load()
}

// ClearToken discards the cached credential. Called on auth failure so
// a stale token is never replayed on the next connect.
func (m *Manager) ClearToken() {
	m.mu.Lock()
	m.token = ""
	m.mu.Unlock()
}

// SetToken installs a fresh credential for subsequent connects.
func (m *Manager) SetToken(token string) {
	m.mu.Lock()
	m.token = token
	m.mu.Unlock()
}

// Close tears down the connection and stops all loops. After Close no
// further signals are emitted.
func (m *Manager) Close() error {
	m.logger.Info("closing-websocket-manager")

	m.cancel()
	m.closeConn()
	m.wg.Wait()
	close(m.signals)

	m.connected.Store(false)
	ActiveConnections.Set(0)

	m.logger.Info("websocket-manager-closed")
	return nil
}
