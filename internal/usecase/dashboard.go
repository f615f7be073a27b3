package usecase

import (
	"context"
	"errors"
	"math"
	"sync"
	"sync/atomic"
	"time"

	"YiJinJing/internal/domain/models"
	drepo "YiJinJing/internal/domain/repository"
	"YiJinJing/internal/services/feeds"
	"YiJinJing/internal/services/lifecycle"
	"YiJinJing/internal/services/signal"
	"YiJinJing/pkg/clock"
	"YiJinJing/pkg/config"
	applogger "YiJinJing/pkg/logger"
	"YiJinJing/pkg/random"

	"github.com/google/uuid"
)

const inboxSize = 256

var (
	ErrEngineStopped = errors.New("dashboard: engine stopped")
	ErrSystemOffline = errors.New("dashboard: system is offline")
	ErrTradeRejected = errors.New("dashboard: trade not allowed in current state")
	ErrUnknownStock  = errors.New("dashboard: unknown stock")
)

// EngineConfig holds the cadences of one dashboard session.
type EngineConfig struct {
	TickInterval    time.Duration
	TrendInterval   time.Duration
	WindowSize      int
	Lifecycle       lifecycle.Config
	NewsInterval    time.Duration
	LogInterval     time.Duration
	HeatmapInterval time.Duration
	RadarInterval   time.Duration
	LatencyInterval time.Duration
	TaskInterval    time.Duration
	JitterInterval  time.Duration
	Language        models.Language
	Stock           models.StockSymbol
}

// DefaultEngineConfig returns the stock dashboard cadences.
func DefaultEngineConfig() EngineConfig {
	return EngineConfig{
		TickInterval:    800 * time.Millisecond,
		TrendInterval:   20 * time.Second,
		WindowSize:      signal.WarmupSteps,
		Lifecycle:       lifecycle.DefaultConfig(),
		NewsInterval:    4 * time.Second,
		LogInterval:     1200 * time.Millisecond,
		HeatmapInterval: 500 * time.Millisecond,
		RadarInterval:   50 * time.Millisecond,
		LatencyInterval: 2 * time.Second,
		TaskInterval:    3 * time.Second,
		JitterInterval:  time.Second,
		Language:        models.LangCN,
		Stock:           models.StockCambricon,
	}
}

// EngineConfigFrom maps application config onto engine cadences.
func EngineConfigFrom(cfg *config.Config) EngineConfig {
	ec := DefaultEngineConfig()
	ec.TickInterval = cfg.Simulation.TickInterval
	ec.TrendInterval = cfg.Simulation.TrendInterval
	ec.WindowSize = cfg.Simulation.WindowSize
	ec.Lifecycle.BuyDelay = cfg.Lifecycle.BuyDelay
	ec.Lifecycle.SellDelay = cfg.Lifecycle.SellDelay
	ec.NewsInterval = cfg.Feeds.NewsInterval
	ec.LogInterval = cfg.Feeds.LogInterval
	ec.HeatmapInterval = cfg.Feeds.HeatmapInterval
	ec.RadarInterval = cfg.Feeds.RadarInterval
	ec.LatencyInterval = cfg.Feeds.LatencyInterval
	ec.TaskInterval = cfg.Feeds.TaskInterval
	ec.JitterInterval = cfg.Feeds.JitterInterval
	ec.Language = models.ParseLanguage(cfg.Feeds.DefaultLanguage)
	ec.Stock = models.StockSymbol(cfg.Feeds.DefaultStock)
	return ec
}

// Engine owns the state of one dashboard session. A single goroutine applies
// API commands and clock callbacks in arrival order.
type Engine struct {
	session   string
	cfg       EngineConfig
	clk       clock.Clock
	publisher drepo.EventPublisher
	metrics   drepo.Metrics
	log       *applogger.Logger

	inbox   chan func()
	done    chan struct{}
	stopped chan struct{}
	once    sync.Once
	started atomic.Bool
	ctx     context.Context
	cancel  context.CancelFunc

	// Fields below are touched only by the loop goroutine.
	run        uint64
	rnd        random.Source
	systemOn   bool
	quiet      bool
	trend      models.MarketTrend
	stock      models.StockSymbol
	lang       models.Language
	sim        *signal.Simulator
	window     *signal.Window
	machine    *lifecycle.Machine
	settlement *models.Settlement
	news       *feeds.News
	console    *feeds.Console
	heatmap    *feeds.HeatmapGrid
	radar      *feeds.Radar
	status     *feeds.Status
	tickers    []clock.Timer
	tickT      clock.Timer
	tickGen    uint64
	consoleT   clock.Timer
	lastActive time.Time
}

// EngineOption configures Engine.
type EngineOption func(*Engine)

func WithEngineMetrics(m drepo.Metrics) EngineOption {
	return func(e *Engine) { e.metrics = m }
}

func WithEngineLogger(l *applogger.Logger) EngineOption {
	return func(e *Engine) { e.log = l }
}

// NewEngine builds a stopped engine for session. The system starts off and bullish.
func NewEngine(session string, cfg EngineConfig, clk clock.Clock, rnd random.Source, pub drepo.EventPublisher, opts ...EngineOption) *Engine {
	if !cfg.Stock.IsValid() {
		cfg.Stock = models.StockCambricon
	}
	if cfg.WindowSize <= 0 {
		cfg.WindowSize = signal.WarmupSteps
	}

	ctx, cancel := context.WithCancel(context.Background())
	e := &Engine{
		session:   session,
		cfg:       cfg,
		clk:       clk,
		publisher: pub,
		metrics:   drepo.NopMetrics{},
		log:       applogger.Nop(),
		inbox:     make(chan func(), inboxSize),
		done:      make(chan struct{}),
		stopped:   make(chan struct{}),
		ctx:       ctx,
		cancel:    cancel,
		trend:     models.TrendBullish,
		stock:     cfg.Stock,
		lang:      cfg.Language,
		rnd:       rnd,
	}
	for _, opt := range opts {
		opt(e)
	}
	e.log = e.log.With(applogger.String("session", session))

	e.sim = signal.NewSimulator(rnd, clk, signal.WithInterval(cfg.TickInterval))
	e.window = signal.NewWindow(cfg.WindowSize)
	e.window.Reset(e.sim.Initialize(e.stock))
	e.machine = lifecycle.New(cfg.Lifecycle, loopScheduler{e},
		lifecycle.WithObserver(engineObserver{e}),
		lifecycle.WithTrend(func() models.MarketTrend { return e.trend }),
		lifecycle.WithStock(func() models.StockSymbol { return e.stock }),
	)
	e.news = feeds.NewNews(rnd, clk, e.lang)
	e.console = feeds.NewConsole(rnd, clk, e.lang)
	e.heatmap = feeds.NewHeatmapGrid(rnd)
	e.radar = feeds.NewRadar(rnd, e.lang)
	e.status = feeds.NewStatus(rnd)
	e.lastActive = clk.Now()
	return e
}

// Start launches the loop and the always-on console feed.
func (e *Engine) Start() {
	if !e.started.CompareAndSwap(false, true) {
		return
	}
	// Armed before the loop runs so the first line is due one interval after Start.
	e.consoleT = e.clk.Every(e.cfg.LogInterval, func() {
		e.post(func() { e.emit(models.EventLog, e.console.Next()) })
	})
	go e.loop()
}

// Stop cancels every timer and ends the loop. Safe to call more than once.
func (e *Engine) Stop() {
	e.once.Do(func() {
		close(e.done)
	})
	if e.started.Load() {
		<-e.stopped
	}
	e.cancel()
}

// Session returns the owning session id.
func (e *Engine) Session() string { return e.session }

// SetSystem sets the master switch and returns the resulting state.
func (e *Engine) SetSystem(on bool) (bool, error) {
	var res bool
	err := e.command(func() {
		e.applySystem(on)
		res = e.systemOn
	})
	return res, err
}

// Toggle inverts the master switch.
func (e *Engine) Toggle() (bool, error) {
	var res bool
	err := e.command(func() {
		e.applySystem(!e.systemOn)
		res = e.systemOn
	})
	return res, err
}

// Buy starts a smart-follow trade.
func (e *Engine) Buy() (models.TradingState, error) {
	return e.trade(func() bool { return e.machine.Buy() })
}

// Sell takes profit on the held position.
func (e *Engine) Sell() (models.TradingState, error) {
	return e.trade(func() bool { return e.machine.Sell() })
}

func (e *Engine) trade(act func() bool) (models.TradingState, error) {
	var (
		state    models.TradingState
		rejected error
	)
	err := e.command(func() {
		switch {
		case !e.systemOn:
			rejected = ErrSystemOffline
		case !act():
			rejected = ErrTradeRejected
		}
		state = e.machine.State()
	})
	if err != nil {
		return "", err
	}
	return state, rejected
}

// SetStock switches instrument, replacing the chart with a fresh warm-up.
func (e *Engine) SetStock(sym models.StockSymbol) error {
	if !sym.IsValid() {
		return ErrUnknownStock
	}
	return e.command(func() {
		if sym == e.stock {
			return
		}
		e.stock = sym
		e.window.Reset(e.sim.Initialize(sym))
		e.emit(models.EventStock, map[string]interface{}{
			"stock":        sym,
			"stock_config": models.Stocks[sym],
			"chart":        e.window.Snapshot(),
		})
	})
}

// SetLanguage switches content pools. The news stream is reseeded.
func (e *Engine) SetLanguage(lang models.Language) error {
	return e.command(func() {
		if lang == e.lang {
			return
		}
		e.lang = lang
		e.news.Reset(lang)
		e.console.SetLanguage(lang)
		e.radar.SetLanguage(lang)
		e.emit(models.EventLanguage, map[string]interface{}{
			"language": lang,
			"news":     e.news.Items(),
			"radar":    e.radar.Metrics(),
		})
	})
}

// DismissSettlement clears the last settlement. Returns false if there was none.
func (e *Engine) DismissSettlement() (bool, error) {
	var had bool
	err := e.command(func() {
		had = e.settlement != nil
		e.settlement = nil
	})
	return had, err
}

// Snapshot returns the full session state.
func (e *Engine) Snapshot() (models.Snapshot, error) {
	var s models.Snapshot
	err := e.command(func() { s = e.snapshot() })
	return s, err
}

// Chart returns the newest limit chart points, oldest first.
func (e *Engine) Chart(limit int) ([]models.ChartPoint, error) {
	var pts []models.ChartPoint
	err := e.command(func() {
		if limit <= 0 || limit >= e.window.Len() {
			pts = e.window.Snapshot()
			return
		}
		pts = e.window.Last(limit)
	})
	return pts, err
}

// AssetDetail returns the asset perspective of the selected stock with a fresh net value curve.
func (e *Engine) AssetDetail() (models.AssetDetail, error) {
	var d models.AssetDetail
	err := e.command(func() { d = feeds.AssetDetail(e.rnd, e.stock) })
	return d, err
}

// LastActive reports when a command last reached the engine.
func (e *Engine) LastActive() (time.Time, error) {
	var t time.Time
	err := e.call(func() { t = e.lastActive })
	return t, err
}

func (e *Engine) loop() {
	defer close(e.stopped)
	for {
		select {
		case f := <-e.inbox:
			f()
		case <-e.done:
			e.shutdown()
			return
		}
	}
}

func (e *Engine) shutdown() {
	e.quiet = true
	e.stopTickers()
	if e.consoleT != nil {
		e.consoleT.Stop()
	}
	e.machine.SetEnabled(false)
}

// post queues f on the loop. Returns false once the engine is stopping.
func (e *Engine) post(f func()) bool {
	select {
	case <-e.done:
		return false
	default:
	}
	select {
	case e.inbox <- f:
		return true
	case <-e.done:
		return false
	}
}

// command is call for user actions; it refreshes the idle timestamp.
func (e *Engine) command(f func()) error {
	return e.call(func() {
		e.lastActive = e.clk.Now()
		f()
	})
}

// call runs f on the loop and waits for it.
func (e *Engine) call(f func()) error {
	ran := make(chan struct{})
	ok := e.post(func() {
		f()
		close(ran)
	})
	if !ok {
		return ErrEngineStopped
	}
	select {
	case <-ran:
		return nil
	case <-e.stopped:
		select {
		case <-ran:
			return nil
		default:
			return ErrEngineStopped
		}
	}
}

func (e *Engine) applySystem(on bool) {
	if on == e.systemOn {
		return
	}
	e.systemOn = on
	e.run++
	e.status.SetOnline(on)

	if on {
		e.machine.SetEnabled(true)
		e.startTickers()
	} else {
		e.stopTickers()
		e.machine.SetEnabled(false)
	}

	e.log.Info("system switched", applogger.Bool("on", on))
	e.emit(models.EventSystem, map[string]interface{}{
		"system_on": on,
		"telemetry": e.telemetry(),
	})
}

func (e *Engine) startTickers() {
	e.armTick()
	e.every(e.cfg.TrendInterval, e.onTrend)
	e.every(e.cfg.NewsInterval, func() { e.emit(models.EventNews, e.news.Next()) })
	e.every(e.cfg.HeatmapInterval, func() { e.emit(models.EventHeatmap, e.heatmap.Step()) })
	e.every(e.cfg.RadarInterval, func() { e.emit(models.EventRadar, e.radar.Step()) })
	e.every(e.cfg.LatencyInterval, func() {
		e.status.SampleLatency()
		e.emit(models.EventTelemetry, e.telemetry())
	})
	e.every(e.cfg.TaskInterval, func() {
		e.status.NextTask()
		e.emit(models.EventTelemetry, e.telemetry())
	})
	e.every(e.cfg.JitterInterval, func() {
		e.status.StepJitter()
		e.emit(models.EventPortfolio, e.portfolio())
	})
}

// every arms a ticker that only fires for the current run while the system is on.
func (e *Engine) every(d time.Duration, f func()) {
	run := e.run
	t := e.clk.Every(d, func() {
		e.post(func() {
			if e.run != run || !e.systemOn {
				return
			}
			f()
		})
	})
	e.tickers = append(e.tickers, t)
}

// armTick (re)starts the simulator cadence. A trend flip restarts it.
func (e *Engine) armTick() {
	if e.tickT != nil {
		e.tickT.Stop()
	}
	e.tickGen++
	run, gen := e.run, e.tickGen
	e.tickT = e.clk.Every(e.cfg.TickInterval, func() {
		e.post(func() {
			if e.run != run || e.tickGen != gen || !e.systemOn {
				return
			}
			e.onTick()
		})
	})
}

func (e *Engine) stopTickers() {
	for _, t := range e.tickers {
		t.Stop()
	}
	e.tickers = nil
	if e.tickT != nil {
		e.tickT.Stop()
		e.tickT = nil
	}
}

func (e *Engine) onTick() {
	start := time.Now()
	p := e.sim.Tick(e.trend)
	e.window.Append(p)
	e.metrics.RecordTick(string(e.stock), p.Alpha)
	if p.Signal != models.SignalNone {
		e.metrics.RecordSignal(string(e.stock), string(p.Signal))
	}
	e.emit(models.EventTick, p)
	e.metrics.RecordLatency("simulator_tick", time.Since(start).Seconds())
}

func (e *Engine) onTrend() {
	e.trend = e.trend.Flip()
	e.armTick()
	e.emit(models.EventTrend, e.trend)
	e.emit(models.EventPortfolio, e.portfolio())
}

func (e *Engine) telemetry() models.Telemetry {
	t := e.status.Telemetry()
	if !e.systemOn {
		t.NodeTask = "OFFLINE"
	}
	return t
}

func (e *Engine) portfolio() models.Portfolio {
	return feeds.ComputePortfolio(e.trend, e.status.Jitter(), e.machine.State())
}

func (e *Engine) snapshot() models.Snapshot {
	s := models.Snapshot{
		Session:      e.session,
		SystemOn:     e.systemOn,
		Trend:        e.trend,
		Stock:        e.stock,
		StockConfig:  models.Stocks[e.stock],
		Language:     e.lang,
		TradingState: e.machine.State(),
		Chart:        e.window.Snapshot(),
		TradeLogs:    e.machine.Logs(),
		News:         e.news.Items(),
		Logs:         e.console.Entries(),
		Heatmap:      e.heatmap.Grid(),
		Radar:        e.radar.Metrics(),
		Telemetry:    e.telemetry(),
		Portfolio:    e.portfolio(),
	}
	if e.settlement != nil {
		st := *e.settlement
		s.Settlement = &st
	}
	return s
}

func (e *Engine) emit(t models.EventType, payload interface{}) {
	if e.quiet || e.publisher == nil {
		return
	}
	ev := &models.Event{
		ID:      uuid.NewString(),
		Type:    t,
		Session: e.session,
		Time:    e.clk.Now(),
		Payload: payload,
	}
	if err := e.publisher.PublishEvent(e.ctx, ev); err != nil {
		e.metrics.RecordError("publish_event")
		e.log.Warn("publish event failed", applogger.String("type", string(t)), applogger.Error(err))
	}
}

// loopScheduler runs lifecycle timers on the engine loop.
type loopScheduler struct{ e *Engine }

func (s loopScheduler) Now() time.Time { return s.e.clk.Now() }

func (s loopScheduler) AfterFunc(d time.Duration, f func()) clock.Timer {
	return s.e.clk.AfterFunc(d, func() { s.e.post(f) })
}

// engineObserver turns lifecycle notifications into events. Runs on the loop.
type engineObserver struct{ e *Engine }

func (o engineObserver) OnTransition(t models.Transition) {
	o.e.metrics.RecordTransition(string(t.From), string(t.To))
	o.e.emit(models.EventTransition, t)
	o.e.emit(models.EventPortfolio, o.e.portfolio())
}

func (o engineObserver) OnExecutionLog(l models.LogEntry) {
	o.e.emit(models.EventTradeLog, l)
}

func (o engineObserver) OnSettlement(s models.Settlement) {
	o.e.settlement = &s
	pnl, _ := s.RealizedPnL.Float64()
	o.e.metrics.RecordSettlement(string(s.Trend), math.Abs(pnl))
	o.e.log.Info("trade settled",
		applogger.String("stock", string(s.Stock)),
		applogger.String("pnl", s.RealizedPnL.String()),
		applogger.String("tx_ref", s.TxRef),
	)
	o.e.emit(models.EventSettlement, s)
}
