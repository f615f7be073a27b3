package models

import "time"

// MarketTrend biases the simulator's mean-reversion target.
type MarketTrend string

const (
	TrendBullish MarketTrend = "BULLISH"
	TrendBearish MarketTrend = "BEARISH"
)

// Flip returns the opposite trend.
func (t MarketTrend) Flip() MarketTrend {
	if t == TrendBullish {
		return TrendBearish
	}
	return TrendBullish
}

// IsValid reports whether t is a known trend.
func (t MarketTrend) IsValid() bool {
	return t == TrendBullish || t == TrendBearish
}

// Signal is a discrete trade hint attached to a chart point.
type Signal string

const (
	SignalNone Signal = ""
	SignalBuy  Signal = "buy"
	SignalSell Signal = "sell"
)

// ChartPoint is one simulator tick.
type ChartPoint struct {
	Time               time.Time  `json:"time"`
	Alpha              float64    `json:"alpha"`
	Risk               float64    `json:"risk"`
	ConfidenceInterval [2]float64 `json:"confidence_interval"`
	Signal             Signal     `json:"signal,omitempty"`
}

// Low is the lower confidence bound.
func (p ChartPoint) Low() float64 { return p.ConfidenceInterval[0] }

// High is the upper confidence bound.
func (p ChartPoint) High() float64 { return p.ConfidenceInterval[1] }
