package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// LogLevel classifies a console line.
type LogLevel string

const (
	LogInfo    LogLevel = "info"
	LogWarning LogLevel = "warning"
	LogError   LogLevel = "error"
	LogSuccess LogLevel = "success"
)

// LogEntry is a line in the system console or the trade execution log.
type LogEntry struct {
	ID        string    `json:"id"`
	Timestamp time.Time `json:"timestamp"`
	Message   string    `json:"message"`
	Level     LogLevel  `json:"level"`
}

// NewsKind is the bracketed tag family of a headline.
type NewsKind string

const (
	NewsPlain  NewsKind = ""
	NewsFlash  NewsKind = "Flash"
	NewsAlert  NewsKind = "Alert"
	NewsNotice NewsKind = "Notice"
)

// NewsItem is one extracted headline.
type NewsItem struct {
	ID         string    `json:"id"`
	Time       time.Time `json:"time"`
	Title      string    `json:"title"`
	Source     string    `json:"source"`
	Kind       NewsKind  `json:"kind,omitempty"`
	Confidence float64   `json:"confidence"`
}

// RadarMetric is one axis of the knowledge-graph radar.
type RadarMetric struct {
	Subject  string  `json:"subject"`
	Value    float64 `json:"value"`
	Target   float64 `json:"-"`
	Speed    float64 `json:"-"`
	FullMark float64 `json:"full_mark"`
}

// Heatmap dimensions.
const (
	HeatmapRows = 5
	HeatmapCols = 8
)

// Heatmap holds intensity levels 0..4.
type Heatmap [HeatmapRows][HeatmapCols]int

// Telemetry is the header status strip.
type Telemetry struct {
	LatencyMs int    `json:"latency_ms"`
	NodeTask  string `json:"node_task"`
	TaskIndex int    `json:"task_index"`
}

// Portfolio is the account card.
type Portfolio struct {
	TotalAssets decimal.Decimal `json:"total_assets"`
	PnL         decimal.Decimal `json:"pnl"`
	PnLPercent  decimal.Decimal `json:"pnl_percent"`
	StockPct    int             `json:"stock_pct"`
	CashPct     int             `json:"cash_pct"`
}

// SplashProgress is the loading screen state.
type SplashProgress struct {
	Percent int    `json:"percent"`
	Message string `json:"message"`
	Done    bool   `json:"done"`
}

// AllocationSlice is one segment of the asset allocation pie.
type AllocationSlice struct {
	Name    string `json:"name"`
	Percent int    `json:"percent"`
	Color   string `json:"color"`
}

// NetValuePoint is one day of the cumulative net value curve.
// Label is set on every fifth day only.
type NetValuePoint struct {
	Day   int     `json:"day"`
	Label string  `json:"label,omitempty"`
	Value float64 `json:"value"`
}

// YieldRecord is a row of the recent yields list.
type YieldRecord struct {
	Date     string          `json:"date"`
	Strategy string          `json:"strategy"`
	Amount   decimal.Decimal `json:"amount"`
	Rate     decimal.Decimal `json:"rate"`
}

// AssetDetail is the asset perspective view of the selected stock.
type AssetDetail struct {
	Stock      StockSymbol       `json:"stock"`
	Allocation []AllocationSlice `json:"allocation"`
	NetValue   []NetValuePoint   `json:"net_value"`
	Yields     []YieldRecord     `json:"yields"`
}
