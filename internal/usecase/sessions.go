package usecase

import (
	"hash/fnv"
	"sync"
	"time"

	drepo "YiJinJing/internal/domain/repository"
	"YiJinJing/pkg/clock"
	applogger "YiJinJing/pkg/logger"
	"YiJinJing/pkg/random"
)

// SessionManager keeps one engine per logged-in user, created on first use.
type SessionManager struct {
	mu      sync.Mutex
	engines map[string]*Engine
	closed  bool

	cfg       EngineConfig
	clk       clock.Clock
	seed      uint64
	publisher drepo.EventPublisher
	metrics   drepo.Metrics
	log       *applogger.Logger
	idleAfter time.Duration
	reaper    clock.Timer
}

// SessionOption configures SessionManager.
type SessionOption func(*SessionManager)

// WithSeed makes every session's random source deterministic. Zero means time-based.
func WithSeed(seed uint64) SessionOption {
	return func(m *SessionManager) { m.seed = seed }
}

// WithIdleTimeout stops sessions without commands for d. Zero disables reaping.
func WithIdleTimeout(d time.Duration) SessionOption {
	return func(m *SessionManager) { m.idleAfter = d }
}

func WithSessionMetrics(metrics drepo.Metrics) SessionOption {
	return func(m *SessionManager) { m.metrics = metrics }
}

func WithSessionLogger(l *applogger.Logger) SessionOption {
	return func(m *SessionManager) { m.log = l }
}

// NewSessionManager creates an empty manager. The idle reaper runs on clk.
func NewSessionManager(cfg EngineConfig, clk clock.Clock, pub drepo.EventPublisher, opts ...SessionOption) *SessionManager {
	m := &SessionManager{
		engines:   make(map[string]*Engine),
		cfg:       cfg,
		clk:       clk,
		publisher: pub,
		metrics:   drepo.NopMetrics{},
		log:       applogger.Nop(),
	}
	for _, opt := range opts {
		opt(m)
	}
	if m.idleAfter > 0 {
		interval := m.idleAfter / 2
		if interval > time.Minute {
			interval = time.Minute
		}
		m.reaper = clk.Every(interval, func() { m.Reap() })
	}
	return m
}

// Get returns the engine of session, starting one if needed.
func (m *SessionManager) Get(session string) (*Engine, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.closed {
		return nil, ErrEngineStopped
	}
	if e, ok := m.engines[session]; ok {
		return e, nil
	}

	e := NewEngine(session, m.cfg, m.clk, m.randomFor(session), m.publisher,
		WithEngineMetrics(m.metrics),
		WithEngineLogger(m.log),
	)
	e.Start()
	m.engines[session] = e
	m.metrics.SetActiveSessions(len(m.engines))
	m.log.Info("session started", applogger.String("session", session))
	return e, nil
}

// Lookup returns an existing engine without creating one.
func (m *SessionManager) Lookup(session string) (*Engine, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	e, ok := m.engines[session]
	return e, ok
}

// Len reports running sessions.
func (m *SessionManager) Len() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.engines)
}

// Reap stops sessions idle for longer than the idle timeout and returns how many it stopped.
func (m *SessionManager) Reap() int {
	if m.idleAfter <= 0 {
		return 0
	}
	m.mu.Lock()
	candidates := make([]*Engine, 0, len(m.engines))
	for _, e := range m.engines {
		candidates = append(candidates, e)
	}
	m.mu.Unlock()

	now := m.clk.Now()
	var idle []*Engine
	for _, e := range candidates {
		last, err := e.LastActive()
		if err != nil || now.Sub(last) > m.idleAfter {
			idle = append(idle, e)
		}
	}
	if len(idle) == 0 {
		return 0
	}

	m.mu.Lock()
	for _, e := range idle {
		if m.engines[e.Session()] == e {
			delete(m.engines, e.Session())
		}
	}
	m.metrics.SetActiveSessions(len(m.engines))
	m.mu.Unlock()

	for _, e := range idle {
		e.Stop()
		m.log.Info("session reaped", applogger.String("session", e.Session()))
	}
	return len(idle)
}

// Close stops every engine. Later Get calls fail.
func (m *SessionManager) Close() {
	m.mu.Lock()
	m.closed = true
	engines := m.engines
	m.engines = make(map[string]*Engine)
	m.mu.Unlock()

	if m.reaper != nil {
		m.reaper.Stop()
	}
	for _, e := range engines {
		e.Stop()
	}
	m.metrics.SetActiveSessions(0)
}

func (m *SessionManager) randomFor(session string) random.Source {
	if m.seed == 0 {
		return random.NewSeeded(0)
	}
	h := fnv.New64a()
	_, _ = h.Write([]byte(session))
	return random.NewSeeded(m.seed ^ h.Sum64())
}
