package feeds

import (
	"fmt"

	"YiJinJing/internal/domain/models"
	"YiJinJing/pkg/random"

	"github.com/shopspring/decimal"
)

const (
	NetValueDays    = 30
	netValueBase    = 1.0
	netValueSlope   = 0.008
	netValueNoise   = 0.02
	allocationStock = 70
	cashColor       = "#10b981"
)

// YieldHistory is the fixed recent yields list, newest first.
var YieldHistory = []models.YieldRecord{
	{Date: "10-24", Strategy: "MEHGT Strategy", Amount: decimal.NewFromInt(1240), Rate: decimal.RequireFromString("1.2")},
	{Date: "10-23", Strategy: "Arbitrage", Amount: decimal.NewFromInt(890), Rate: decimal.RequireFromString("0.8")},
	{Date: "10-22", Strategy: "Liquidity", Amount: decimal.NewFromInt(2100), Rate: decimal.RequireFromString("2.1")},
	{Date: "10-21", Strategy: "Rebalance", Amount: decimal.NewFromInt(-120), Rate: decimal.RequireFromString("-0.1")},
	{Date: "10-20", Strategy: "MEHGT Strategy", Amount: decimal.NewFromInt(3400), Rate: decimal.RequireFromString("3.2")},
}

// AssetDetail builds the allocation split, a fresh net value curve and the yield list for stock.
func AssetDetail(rnd random.Source, stock models.StockSymbol) models.AssetDetail {
	cfg, ok := models.Stocks[stock]
	if !ok {
		stock = models.StockCambricon
		cfg = models.Stocks[stock]
	}

	curve := make([]models.NetValuePoint, NetValueDays)
	for i := range curve {
		p := models.NetValuePoint{
			Day:   i,
			Value: netValueBase + float64(i)*netValueSlope + rnd.Float64()*netValueNoise,
		}
		if i%5 == 0 {
			p.Label = fmt.Sprintf("T-%d", NetValueDays-i)
		}
		curve[i] = p
	}

	yields := make([]models.YieldRecord, len(YieldHistory))
	copy(yields, YieldHistory)

	return models.AssetDetail{
		Stock: stock,
		Allocation: []models.AllocationSlice{
			{Name: cfg.Name + " (股票)", Percent: allocationStock, Color: cfg.Color},
			{Name: "现金 (CNY)", Percent: 100 - allocationStock, Color: cashColor},
		},
		NetValue: curve,
		Yields:   yields,
	}
}
