package lifecycle

import (
	"strings"
	"time"

	"YiJinJing/internal/domain/models"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

const StrategyLabel = "MEHGT-V3 (Adaptive)"

var (
	Principal = decimal.RequireFromString("1420000.00")

	profitAmount  = decimal.NewFromInt(12580)
	profitPercent = decimal.RequireFromString("3.8")
	lossAmount    = decimal.NewFromInt(-2100)
	lossPercent   = decimal.RequireFromString("-0.15")
)

// NewSettlement builds the summary of a sell completed under trend.
func NewSettlement(trend models.MarketTrend, stock models.StockSymbol, at time.Time) models.Settlement {
	pnl, pct := lossAmount, lossPercent
	if trend == models.TrendBullish {
		pnl, pct = profitAmount, profitPercent
	}
	return models.Settlement{
		Strategy:    StrategyLabel,
		Stock:       stock,
		Principal:   Principal,
		RealizedPnL: pnl,
		PnLPercent:  pct,
		Trend:       trend,
		TxRef:       "0x" + strings.ReplaceAll(uuid.NewString(), "-", ""),
		SettledAt:   at,
	}
}
