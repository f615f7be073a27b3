package main

import (
	"bytes"
	"strings"
	"testing"
	"time"

	"YiJinJing/internal/domain/models"
)

func TestRunSimulationPrintsTable(t *testing.T) {
	var a, b bytes.Buffer
	opts := simOptions{Ticks: 30, Trend: models.TrendBullish, FlipEvery: 10, Seed: 9, Stock: models.StockBYD, Interval: 800 * time.Millisecond}
	if err := runSimulation(&a, opts); err != nil {
		t.Fatalf("runSimulation: %v", err)
	}
	_ = runSimulation(&b, opts)
	if a.String() != b.String() {
		t.Fatal("same seed produced different output")
	}
	out := a.String()
	if !strings.Contains(out, "BEARISH") || !strings.Contains(out, "BULLISH") {
		t.Fatal("trend never flipped")
	}
	if !strings.Contains(out, "09:30:24.000") {
		t.Fatalf("last tick time missing:\n%s", out)
	}
}

func TestRunSimulationRejectsBadInput(t *testing.T) {
	base := simOptions{Ticks: 5, Trend: models.TrendBullish, Stock: models.StockZTE, Interval: time.Second}
	bad := []simOptions{base, base, base}
	bad[0].Ticks = 0
	bad[1].Trend = "SIDEWAYS"
	bad[2].Stock = "TSLA"
	for i, o := range bad {
		if err := runSimulation(&bytes.Buffer{}, o); err == nil {
			t.Fatalf("case %d accepted", i)
		}
	}
}

func TestRootCommandHasSubcommands(t *testing.T) {
	root := newRootCmd()
	for _, name := range []string{"serve", "simulate"} {
		if c, _, err := root.Find([]string{name}); err != nil || c.Name() != name {
			t.Fatalf("subcommand %s missing", name)
		}
	}
}
