package models

import (
	"strings"
	"time"

	"github.com/shopspring/decimal"
)

// TradingState is the smart-trade lifecycle position.
type TradingState string

const (
	StateIdle    TradingState = "IDLE"
	StateBuying  TradingState = "BUYING"
	StateHolding TradingState = "HOLDING"
	StateSelling TradingState = "SELLING"
)

// Settlement summarizes a completed sell. Not persisted.
type Settlement struct {
	Strategy    string          `json:"strategy"`
	Stock       StockSymbol     `json:"stock"`
	Principal   decimal.Decimal `json:"principal"`
	RealizedPnL decimal.Decimal `json:"realized_pnl"`
	PnLPercent  decimal.Decimal `json:"pnl_percent"`
	Trend       MarketTrend     `json:"trend"`
	TxRef       string          `json:"tx_ref"`
	SettledAt   time.Time       `json:"settled_at"`
}

// Language selects the label and content pools.
type Language string

const (
	LangCN Language = "CN"
	LangEN Language = "EN"
)

// ParseLanguage normalizes s, falling back to CN.
func ParseLanguage(s string) Language {
	if strings.EqualFold(strings.TrimSpace(s), string(LangEN)) {
		return LangEN
	}
	return LangCN
}

// StockSymbol identifies a tracked instrument.
type StockSymbol string

const (
	StockCambricon StockSymbol = "CAMBRICON"
	StockBYD       StockSymbol = "BYD"
	StockZTE       StockSymbol = "ZTE"
)

// StockConfig is the display metadata of an instrument.
type StockConfig struct {
	Name   string          `json:"name"`
	Symbol string          `json:"symbol"`
	Price  decimal.Decimal `json:"price"`
	Color  string          `json:"color"`
}

// Stocks lists the tracked instruments.
var Stocks = map[StockSymbol]StockConfig{
	StockCambricon: {Name: "寒武纪", Symbol: "688256", Price: decimal.RequireFromString("245.50"), Color: "#d946ef"},
	StockBYD:       {Name: "比亚迪", Symbol: "002594", Price: decimal.RequireFromString("208.60"), Color: "#10b981"},
	StockZTE:       {Name: "中兴通讯", Symbol: "000063", Price: decimal.RequireFromString("29.15"), Color: "#3b82f6"},
}

// IsValid reports whether s is a tracked instrument.
func (s StockSymbol) IsValid() bool {
	_, ok := Stocks[s]
	return ok
}

