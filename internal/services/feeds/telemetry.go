package feeds

import (
	"YiJinJing/internal/domain/models"
	"YiJinJing/pkg/random"

	"github.com/shopspring/decimal"
)

const (
	latencyOnline = 12
	latencySpread = 14
	jitterSpan    = 50
)

var (
	assetBase    = decimal.NewFromInt(1420592)
	pnlBullish   = decimal.NewFromInt(12400)
	pnlBearish   = decimal.NewFromInt(-2100)
	pctBullish   = decimal.RequireFromString("3.8")
	pctBearish   = decimal.RequireFromString("-0.15")
	stockHolding = 90
	stockIdle    = 20
)

// Status is the header strip plus the P&L jitter walk.
type Status struct {
	rnd       random.Source
	latency   int
	taskIndex int
	jitter    float64
}

func NewStatus(rnd random.Source) *Status {
	return &Status{rnd: rnd}
}

// SetOnline reports the fixed start-up latency when on and zero when off.
func (s *Status) SetOnline(on bool) {
	if on {
		s.latency = latencyOnline
	} else {
		s.latency = 0
	}
}

// SampleLatency draws a latency in [12, 26) ms.
func (s *Status) SampleLatency() int {
	s.latency = latencyOnline + random.Intn(s.rnd, latencySpread)
	return s.latency
}

// NextTask rotates the node task label.
func (s *Status) NextTask() int {
	s.taskIndex = (s.taskIndex + 1) % len(SystemTasks)
	return s.taskIndex
}

// StepJitter moves the P&L jitter by U(-25, 25).
func (s *Status) StepJitter() float64 {
	s.jitter += (s.rnd.Float64() - 0.5) * jitterSpan
	return s.jitter
}

func (s *Status) Jitter() float64 { return s.jitter }

func (s *Status) Telemetry() models.Telemetry {
	return models.Telemetry{
		LatencyMs: s.latency,
		NodeTask:  SystemTasks[s.taskIndex],
		TaskIndex: s.taskIndex,
	}
}

// ComputePortfolio derives the account card from trend, jitter and the trade position.
func ComputePortfolio(trend models.MarketTrend, jitter float64, state models.TradingState) models.Portfolio {
	pnl, pct := pnlBearish, pctBearish
	if trend == models.TrendBullish {
		pnl, pct = pnlBullish, pctBullish
	}
	pnl = pnl.Add(decimal.NewFromFloat(jitter)).Round(2)

	stock := stockIdle
	if state == models.StateHolding || state == models.StateSelling {
		stock = stockHolding
	}
	return models.Portfolio{
		TotalAssets: assetBase.Add(pnl),
		PnL:         pnl,
		PnLPercent:  pct,
		StockPct:    stock,
		CashPct:     100 - stock,
	}
}
