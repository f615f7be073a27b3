package models

import "time"

// EventType names a dashboard state change pushed to subscribers.
type EventType string

const (
	EventSystem     EventType = "system"
	EventTick       EventType = "tick"
	EventTrend      EventType = "trend"
	EventTransition EventType = "transition"
	EventTradeLog   EventType = "trade_log"
	EventSettlement EventType = "settlement"
	EventNews       EventType = "news"
	EventLog        EventType = "log"
	EventHeatmap    EventType = "heatmap"
	EventRadar      EventType = "radar"
	EventTelemetry  EventType = "telemetry"
	EventPortfolio  EventType = "portfolio"
	EventStock      EventType = "stock"
	EventLanguage   EventType = "language"
)

// Event is one pushed update, scoped to a session.
type Event struct {
	ID      string      `json:"id"`
	Type    EventType   `json:"type"`
	Session string      `json:"session"`
	Time    time.Time   `json:"time"`
	Payload interface{} `json:"payload"`
}

// Transition is a lifecycle state change.
type Transition struct {
	From TradingState `json:"from"`
	To   TradingState `json:"to"`
}

// Snapshot is the full dashboard state of a session.
type Snapshot struct {
	Session      string        `json:"session"`
	SystemOn     bool          `json:"system_on"`
	Trend        MarketTrend   `json:"trend"`
	Stock        StockSymbol   `json:"stock"`
	StockConfig  StockConfig   `json:"stock_config"`
	Language     Language      `json:"language"`
	TradingState TradingState  `json:"trading_state"`
	Chart        []ChartPoint  `json:"chart"`
	TradeLogs    []LogEntry    `json:"trade_logs"`
	Settlement   *Settlement   `json:"settlement,omitempty"`
	News         []NewsItem    `json:"news"`
	Logs         []LogEntry    `json:"logs"`
	Heatmap      Heatmap       `json:"heatmap"`
	Radar        []RadarMetric `json:"radar"`
	Telemetry    Telemetry     `json:"telemetry"`
	Portfolio    Portfolio     `json:"portfolio"`
}
