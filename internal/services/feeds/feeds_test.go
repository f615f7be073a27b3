package feeds

import (
	"testing"
	"time"

	"YiJinJing/internal/domain/models"
	"YiJinJing/pkg/clock"
	"YiJinJing/pkg/random"
)

func TestNewsResetSeedsFourItems(t *testing.T) {
	c := clock.NewFake(time.Unix(1_700_000_000, 0))
	n := NewNews(random.NewSeeded(5), c, models.LangEN)

	items := n.Items()
	if len(items) != 4 {
		t.Fatalf("expected 4 seeded items, got %d", len(items))
	}
	for i, it := range items {
		if it.Source != "Reuters" {
			t.Fatalf("item %d source %q", i, it.Source)
		}
		if it.Confidence < 92 || it.Confidence >= 99 {
			t.Fatalf("item %d confidence %v", i, it.Confidence)
		}
		if want := c.Now().Add(-time.Duration(i) * time.Minute); !it.Time.Equal(want) {
			t.Fatalf("item %d time %v, want %v", i, it.Time, want)
		}
	}

	n.Reset(models.LangCN)
	if n.Items()[0].Source != "路透社" {
		t.Fatalf("reset did not switch outlets: %q", n.Items()[0].Source)
	}
}

func TestNewsNextAvoidsRecentAndCaps(t *testing.T) {
	c := clock.NewFake(time.Unix(0, 0))
	n := NewNews(random.NewSeeded(11), c, models.LangCN)
	for i := 0; i < 100; i++ {
		c.Advance(4 * time.Second)
		item := n.Next()
		if item.Confidence < 85 || item.Confidence >= 99 {
			t.Fatalf("confidence %v out of range", item.Confidence)
		}
		if n.Items()[0].ID != item.ID {
			t.Fatal("new item not prepended")
		}
	}
	if len(n.Items()) != NewsCapacity {
		t.Fatalf("stream length %d, want %d", len(n.Items()), NewsCapacity)
	}
}

func TestNewsRedrawsDuplicateHeadline(t *testing.T) {
	c := clock.NewFake(time.Unix(0, 0))
	n := NewNews(random.Fixed(0), c, models.LangEN)
	head := n.Items()[0].Title

	// every draw picks pool[0], which equals the newest seeded title
	item := n.Next()
	if item.Title != head {
		t.Fatalf("redraw limit should give up after five attempts, got %q", item.Title)
	}

	n.rnd = random.NewSequence(0, 0.99)
	item = n.Next()
	if item.Title == head {
		t.Fatal("duplicate of a recent headline was not redrawn")
	}
}

func TestClassifyHeadline(t *testing.T) {
	tests := []struct {
		title string
		want  models.NewsKind
	}{
		{"[Alert] Fed Minutes", models.NewsAlert},
		{"[预警] 美联储", models.NewsAlert},
		{"[Flash] Offshore RMB", models.NewsFlash},
		{"[快讯] 离岸人民币", models.NewsFlash},
		{"[公告] 腾讯控股", models.NewsNotice},
		{"Crude Oil: OPEC+", models.NewsNotice},
	}
	for _, tt := range tests {
		if got := ClassifyHeadline(tt.title); got != tt.want {
			t.Fatalf("ClassifyHeadline(%q) = %q, want %q", tt.title, got, tt.want)
		}
	}
}

func TestConsoleLevelsAndRetention(t *testing.T) {
	c := clock.NewFake(time.Unix(0, 0))
	// template 3 is the risk event
	con := NewConsole(random.Fixed(3.5/11), c, models.LangEN)
	if e := con.Next(); e.Level != models.LogWarning {
		t.Fatalf("risk template level = %s", e.Level)
	}
	con = NewConsole(random.Fixed(3.5/11), c, models.LangCN)
	if e := con.Next(); e.Level != models.LogWarning {
		t.Fatalf("CN risk template level = %s", e.Level)
	}
	con = NewConsole(random.Fixed(0), c, models.LangEN)
	if e := con.Next(); e.Level != models.LogInfo {
		t.Fatalf("plain template level = %s", e.Level)
	}
	if templateLevel("Disk Error on node 3") != models.LogError {
		t.Fatal("error template not classified")
	}

	con = NewConsole(random.NewSeeded(1), c, models.LangEN)
	var last models.LogEntry
	for i := 0; i < 50; i++ {
		last = con.Next()
	}
	entries := con.Entries()
	if len(entries) != ConsoleCapacity {
		t.Fatalf("retained %d lines, want %d", len(entries), ConsoleCapacity)
	}
	if entries[len(entries)-1].ID != last.ID {
		t.Fatal("newest line not last")
	}
}

func TestHeatmapLevels(t *testing.T) {
	h := NewHeatmapGrid(random.NewSeeded(9))
	for i := 0; i < 200; i++ {
		g := h.Step()
		for _, row := range g {
			for _, v := range row {
				if v < 0 || v > 4 {
					t.Fatalf("cell level %d", v)
				}
			}
		}
	}
	for _, tt := range []struct {
		r    float64
		want int
	}{{0.96, 4}, {0.95, 3}, {0.61, 3}, {0.6, 2}, {0.31, 2}, {0.3, 1}, {0, 1}} {
		if got := heatLevel(tt.r); got != tt.want {
			t.Fatalf("heatLevel(%v) = %d, want %d", tt.r, got, tt.want)
		}
	}
}

func TestRadarStaysBounded(t *testing.T) {
	r := NewRadar(random.NewSeeded(4), models.LangEN)
	for i := 0; i < 2000; i++ {
		for _, m := range r.Step() {
			if m.Value < radarTargetMin || m.Value > radarTargetMax {
				t.Fatalf("step %d: %s value %v escaped", i, m.Subject, m.Value)
			}
			if m.FullMark != radarFullMark {
				t.Fatalf("full mark %v", m.FullMark)
			}
		}
	}
	r.SetLanguage(models.LangCN)
	if r.Metrics()[0].Subject != "实体抽取" {
		t.Fatalf("relabel failed: %q", r.Metrics()[0].Subject)
	}
}

func TestStatus(t *testing.T) {
	s := NewStatus(random.NewSeeded(2))
	s.SetOnline(true)
	if s.Telemetry().LatencyMs != 12 {
		t.Fatalf("start-up latency = %d", s.Telemetry().LatencyMs)
	}
	for i := 0; i < 100; i++ {
		if l := s.SampleLatency(); l < 12 || l >= 26 {
			t.Fatalf("latency %d out of range", l)
		}
	}
	s.SetOnline(false)
	if s.Telemetry().LatencyMs != 0 {
		t.Fatal("latency not cleared when offline")
	}
	for i := 1; i <= len(SystemTasks); i++ {
		s.NextTask()
	}
	if s.Telemetry().TaskIndex != 0 {
		t.Fatalf("task rotation did not wrap: %d", s.Telemetry().TaskIndex)
	}

	j := NewStatus(random.Fixed(1))
	if got := j.StepJitter(); got != 25 {
		t.Fatalf("jitter step = %v, want 25", got)
	}
}

func TestComputePortfolio(t *testing.T) {
	p := ComputePortfolio(models.TrendBullish, 0, models.StateIdle)
	if p.PnL.String() != "12400" || p.TotalAssets.String() != "1432992" || p.PnLPercent.String() != "3.8" {
		t.Fatalf("bullish idle portfolio %+v", p)
	}
	if p.StockPct != 20 || p.CashPct != 80 {
		t.Fatalf("idle split %d/%d", p.StockPct, p.CashPct)
	}

	p = ComputePortfolio(models.TrendBearish, 10.5, models.StateHolding)
	if p.PnL.String() != "-2089.5" || p.PnLPercent.String() != "-0.15" {
		t.Fatalf("bearish portfolio %+v", p)
	}
	if p.StockPct != 90 || p.CashPct != 10 {
		t.Fatalf("holding split %d/%d", p.StockPct, p.CashPct)
	}
}

func TestSplash(t *testing.T) {
	tests := []struct {
		elapsed time.Duration
		percent int
		msg     int
		done    bool
	}{
		{0, 0, 0, false},
		{-time.Second, 0, 0, false},
		{49 * time.Millisecond, 0, 0, false},
		{time.Second, 25, 1, false},
		{2 * time.Second, 50, 3, false},
		{3950 * time.Millisecond, 98, 5, false},
		{4 * time.Second, 100, 5, true},
		{time.Minute, 100, 5, true},
	}
	for _, tt := range tests {
		got := Splash(tt.elapsed)
		if got.Percent != tt.percent || got.Message != LoadingMessages[tt.msg] || got.Done != tt.done {
			t.Fatalf("Splash(%v) = %+v", tt.elapsed, got)
		}
	}
}

func TestAssetDetail(t *testing.T) {
	d := AssetDetail(random.Fixed(0.5), models.StockBYD)

	if len(d.Allocation) != 2 || d.Allocation[0].Percent != 70 || d.Allocation[1].Percent != 30 {
		t.Fatalf("allocation %+v", d.Allocation)
	}
	if d.Allocation[0].Color != models.Stocks[models.StockBYD].Color {
		t.Fatalf("stock slice color %s", d.Allocation[0].Color)
	}
	if len(d.NetValue) != NetValueDays {
		t.Fatalf("net value points %d", len(d.NetValue))
	}
	// 1.0 + 0.008*i + 0.5*0.02
	if v := d.NetValue[10].Value; v < 1.0899 || v > 1.0901 {
		t.Fatalf("day 10 value %v", v)
	}
	if d.NetValue[0].Label != "T-30" || d.NetValue[25].Label != "T-5" || d.NetValue[3].Label != "" {
		t.Fatalf("labels %q %q %q", d.NetValue[0].Label, d.NetValue[25].Label, d.NetValue[3].Label)
	}
	if len(d.Yields) != 5 || !d.Yields[3].Amount.IsNegative() {
		t.Fatalf("yields %+v", d.Yields)
	}

	d.Yields[0].Strategy = "changed"
	if YieldHistory[0].Strategy != "MEHGT Strategy" {
		t.Fatal("yield history shared with caller")
	}
}

func TestAssetDetailCurveBounds(t *testing.T) {
	d := AssetDetail(random.NewSeeded(3), "UNKNOWN")
	if d.Stock != models.StockCambricon {
		t.Fatalf("fallback stock %s", d.Stock)
	}
	for i, p := range d.NetValue {
		lo := 1.0 + float64(i)*0.008
		if p.Value < lo || p.Value >= lo+0.02 {
			t.Fatalf("day %d value %v outside [%v, %v)", i, p.Value, lo, lo+0.02)
		}
	}
}
