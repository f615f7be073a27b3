package lifecycle

import (
	"fmt"
	"strings"
	"sync"
	"time"

	"YiJinJing/internal/domain/models"
	"YiJinJing/pkg/clock"

	"github.com/google/uuid"
)

// Scheduler runs deferred callbacks. clock.Clock satisfies it.
type Scheduler interface {
	Now() time.Time
	AfterFunc(d time.Duration, f func()) clock.Timer
}

// Observer receives lifecycle notifications. Calls happen outside the machine's lock.
type Observer interface {
	OnTransition(models.Transition)
	OnExecutionLog(models.LogEntry)
	OnSettlement(models.Settlement)
}

// Config holds the simulated latencies.
type Config struct {
	BuyDelay      time.Duration
	SellDelay     time.Duration
	BuyLogOffsets []time.Duration
}

// DefaultConfig returns the stock timings.
func DefaultConfig() Config {
	return Config{
		BuyDelay:  2500 * time.Millisecond,
		SellDelay: 1500 * time.Millisecond,
		BuyLogOffsets: []time.Duration{
			200 * time.Millisecond,
			800 * time.Millisecond,
			1600 * time.Millisecond,
			2200 * time.Millisecond,
		},
	}
}

// Machine is the IDLE -> BUYING -> HOLDING -> SELLING -> IDLE trade flow.
type Machine struct {
	mu       sync.Mutex
	cfg      Config
	sched    Scheduler
	observer Observer
	trend    func() models.MarketTrend
	stock    func() models.StockSymbol

	state   models.TradingState
	enabled bool
	gen     uint64
	timers  []clock.Timer
	logs    []models.LogEntry
}

// Option configures Machine.
type Option func(*Machine)

// WithObserver sets the notification sink.
func WithObserver(o Observer) Option {
	return func(m *Machine) { m.observer = o }
}

// WithTrend sets the trend read at settlement time.
func WithTrend(f func() models.MarketTrend) Option {
	return func(m *Machine) { m.trend = f }
}

// WithStock sets the instrument named in execution logs and settlements.
func WithStock(f func() models.StockSymbol) Option {
	return func(m *Machine) { m.stock = f }
}

// New creates a disabled machine in IDLE.
func New(cfg Config, sched Scheduler, opts ...Option) *Machine {
	if cfg.BuyDelay <= 0 || cfg.SellDelay <= 0 {
		d := DefaultConfig()
		if cfg.BuyDelay <= 0 {
			cfg.BuyDelay = d.BuyDelay
		}
		if cfg.SellDelay <= 0 {
			cfg.SellDelay = d.SellDelay
		}
	}
	m := &Machine{
		cfg:   cfg,
		sched: sched,
		state: models.StateIdle,
		trend: func() models.MarketTrend { return models.TrendBullish },
		stock: func() models.StockSymbol { return models.StockCambricon },
	}
	for _, opt := range opts {
		opt(m)
	}
	return m
}

// State returns the current state.
func (m *Machine) State() models.TradingState {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.state
}

// Enabled reports the master switch as seen by the machine.
func (m *Machine) Enabled() bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.enabled
}

// Logs returns the execution log of the current trade.
func (m *Machine) Logs() []models.LogEntry {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]models.LogEntry, len(m.logs))
	copy(out, m.logs)
	return out
}

// Buy starts a trade. Returns false, changing nothing, unless enabled and IDLE.
func (m *Machine) Buy() bool {
	m.mu.Lock()
	if !m.enabled || m.state != models.StateIdle {
		m.mu.Unlock()
		return false
	}
	tr := m.setState(models.StateBuying)
	m.logs = m.logs[:0]
	m.timers = m.timers[:0]
	gen := m.gen
	stock := m.stock()
	ref := strings.ReplaceAll(uuid.NewString(), "-", "")[:4]
	lines := []struct {
		msg   string
		level models.LogLevel
	}{
		{fmt.Sprintf("[Step 1] MEHGT Signal Verified (%s)... OK", stock), models.LogInfo},
		{"[Step 2] Route Optimization... OK", models.LogInfo},
		{fmt.Sprintf("[Step 3] Broadcast Tx (Ref: 0x%s...)", ref), models.LogInfo},
		{"[Success] Rebalance Complete.", models.LogSuccess},
	}
	for i, off := range m.cfg.BuyLogOffsets {
		if i >= len(lines) {
			break
		}
		line := lines[i]
		m.schedule(off, gen, func() []func() {
			return []func(){m.appendLog(line.msg, line.level)}
		})
	}
	m.schedule(m.cfg.BuyDelay, gen, func() []func() {
		if m.state != models.StateBuying {
			return nil
		}
		return []func(){m.setState(models.StateHolding)}
	})
	m.mu.Unlock()

	tr()
	return true
}

// Sell closes the position. Returns false, changing nothing, unless enabled and HOLDING.
func (m *Machine) Sell() bool {
	m.mu.Lock()
	if !m.enabled || m.state != models.StateHolding {
		m.mu.Unlock()
		return false
	}
	notes := []func(){m.setState(models.StateSelling)}
	m.logs = m.logs[:0]
	notes = append(notes,
		m.appendLog("[Order] Take Profit Queued...", models.LogInfo),
		m.appendLog("[System] Clearing positions...", models.LogInfo),
	)
	gen := m.gen
	m.schedule(m.cfg.SellDelay, gen, func() []func() {
		if m.state != models.StateSelling {
			return nil
		}
		out := []func(){m.setState(models.StateIdle)}
		s := NewSettlement(m.trend(), m.stock(), m.sched.Now())
		if m.observer != nil {
			out = append(out, func() { m.observer.OnSettlement(s) })
		}
		return out
	})
	m.mu.Unlock()

	for _, n := range notes {
		n()
	}
	return true
}

// SetEnabled mirrors the master switch. Disabling cancels every pending timer and forces IDLE.
func (m *Machine) SetEnabled(on bool) {
	m.mu.Lock()
	if on {
		m.enabled = true
		m.mu.Unlock()
		return
	}
	m.enabled = false
	m.gen++
	for _, t := range m.timers {
		t.Stop()
	}
	m.timers = nil
	var note func()
	if m.state != models.StateIdle {
		note = m.setState(models.StateIdle)
	}
	m.logs = m.logs[:0]
	m.mu.Unlock()

	if note != nil {
		note()
	}
}

// schedule arms a timer whose body runs under the lock and returns notifications to fire after unlock.
// Timers from an older generation are ignored when they fire.
func (m *Machine) schedule(d time.Duration, gen uint64, body func() []func()) {
	t := m.sched.AfterFunc(d, func() {
		m.mu.Lock()
		if gen != m.gen || !m.enabled {
			m.mu.Unlock()
			return
		}
		notes := body()
		m.mu.Unlock()
		for _, n := range notes {
			if n != nil {
				n()
			}
		}
	})
	m.timers = append(m.timers, t)
}

func (m *Machine) setState(to models.TradingState) func() {
	tr := models.Transition{From: m.state, To: to}
	m.state = to
	if m.observer == nil {
		return func() {}
	}
	return func() { m.observer.OnTransition(tr) }
}

func (m *Machine) appendLog(msg string, level models.LogLevel) func() {
	e := models.LogEntry{
		ID:        uuid.NewString(),
		Timestamp: m.sched.Now(),
		Message:   msg,
		Level:     level,
	}
	m.logs = append(m.logs, e)
	if m.observer == nil {
		return func() {}
	}
	return func() { m.observer.OnExecutionLog(e) }
}
