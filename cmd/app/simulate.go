package main

import (
	"fmt"
	"io"
	"strconv"
	"strings"
	"time"

	"YiJinJing/internal/domain/models"
	"YiJinJing/internal/services/signal"
	"YiJinJing/pkg/clock"
	"YiJinJing/pkg/random"

	"github.com/olekukonko/tablewriter"
	"github.com/spf13/cobra"
)

type simOptions struct {
	Ticks     int
	Trend     models.MarketTrend
	FlipEvery int
	Seed      uint64
	Stock     models.StockSymbol
	Interval  time.Duration
}

func newSimulateCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "simulate",
		Short: "Run the signal simulator headless and print the ticks",
		RunE: func(cmd *cobra.Command, args []string) error {
			ticks, _ := cmd.Flags().GetInt("ticks")
			trend, _ := cmd.Flags().GetString("trend")
			flip, _ := cmd.Flags().GetInt("flip-every")
			seed, _ := cmd.Flags().GetUint64("seed")
			stock, _ := cmd.Flags().GetString("stock")

			opts := simOptions{
				Ticks:     ticks,
				Trend:     models.MarketTrend(strings.ToUpper(trend)),
				FlipEvery: flip,
				Seed:      seed,
				Stock:     models.StockSymbol(strings.ToUpper(stock)),
				Interval:  800 * time.Millisecond,
			}
			return runSimulation(cmd.OutOrStdout(), opts)
		},
	}
	cmd.Flags().IntP("ticks", "n", 20, "number of ticks after warm-up")
	cmd.Flags().StringP("trend", "t", string(models.TrendBullish), "starting trend (BULLISH, BEARISH)")
	cmd.Flags().Int("flip-every", 25, "flip the trend every N ticks, 0 never")
	cmd.Flags().Uint64P("seed", "s", 1, "random seed")
	cmd.Flags().String("stock", string(models.StockCambricon), "instrument (CAMBRICON, BYD, ZTE)")
	return cmd
}

func runSimulation(w io.Writer, o simOptions) error {
	if o.Ticks < 1 {
		return fmt.Errorf("ticks must be positive, got %d", o.Ticks)
	}
	if !o.Trend.IsValid() {
		return fmt.Errorf("unknown trend %q", o.Trend)
	}
	if !o.Stock.IsValid() {
		return fmt.Errorf("unknown stock %q", o.Stock)
	}

	clk := clock.NewFake(time.Date(2025, 1, 2, 9, 30, 0, 0, time.UTC))
	sim := signal.NewSimulator(random.NewSeeded(o.Seed), clk, signal.WithInterval(o.Interval))
	warm := sim.Initialize(o.Stock)

	table := tablewriter.NewWriter(w)
	table.SetHeader([]string{"#", "Time", "Trend", "Alpha", "Risk", "CI Low", "CI High", "Signal"})
	table.SetAlignment(tablewriter.ALIGN_RIGHT)

	trend := o.Trend
	var buys, sells int
	for i := 1; i <= o.Ticks; i++ {
		clk.Advance(o.Interval)
		p := sim.Tick(trend)
		switch p.Signal {
		case models.SignalBuy:
			buys++
		case models.SignalSell:
			sells++
		}
		table.Append([]string{
			strconv.Itoa(i),
			p.Time.Format("15:04:05.000"),
			string(trend),
			fmt.Sprintf("%.4f", p.Alpha),
			fmt.Sprintf("%.3f", p.Risk),
			fmt.Sprintf("%.4f", p.Low()),
			fmt.Sprintf("%.4f", p.High()),
			string(p.Signal),
		})
		if o.FlipEvery > 0 && i%o.FlipEvery == 0 {
			trend = trend.Flip()
		}
	}
	table.SetFooter([]string{"", "", "", fmt.Sprintf("start %.4f", warm[len(warm)-1].Alpha), "", "", "",
		fmt.Sprintf("%d buy / %d sell", buys, sells)})
	table.Render()
	return nil
}
