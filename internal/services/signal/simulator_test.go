package signal

import (
	"math"
	"testing"
	"time"

	"YiJinJing/internal/domain/models"
	"YiJinJing/pkg/clock"
	"YiJinJing/pkg/random"
)

const eps = 1e-9

func newTestSimulator(src random.Source) *Simulator {
	return NewSimulator(src, clock.NewFake(time.Unix(1_700_000_000, 0)))
}

func TestTickBearishExample(t *testing.T) {
	s := newTestSimulator(random.Fixed(0.5))
	s.Restore(0.5, 0)

	p := s.Tick(models.TrendBearish)

	if math.Abs(s.Velocity()-(-0.0125)) > eps {
		t.Fatalf("velocity = %v, want -0.0125", s.Velocity())
	}
	if math.Abs(p.Alpha-0.4875) > eps {
		t.Fatalf("alpha = %v, want 0.4875", p.Alpha)
	}
	if math.Abs(p.Risk-0.125) > eps {
		t.Fatalf("risk = %v, want 0.125", p.Risk)
	}
	if math.Abs(p.Low()-0.4) > eps || math.Abs(p.High()-0.575) > eps {
		t.Fatalf("interval = %v, want [0.4, 0.575]", p.ConfidenceInterval)
	}
	if p.Signal != models.SignalNone {
		t.Fatalf("unexpected signal %q", p.Signal)
	}
}

func TestTickKeepsAlphaAndIntervalInvariants(t *testing.T) {
	for _, seed := range []uint64{1, 7, 99, 2024} {
		s := newTestSimulator(random.NewSeeded(seed))
		s.Initialize(models.StockCambricon)
		trend := models.TrendBullish
		for i := 0; i < 5000; i++ {
			if i%25 == 0 {
				trend = trend.Flip()
			}
			p := s.Tick(trend)
			if p.Alpha < alphaMin || p.Alpha > alphaMax {
				t.Fatalf("seed %d tick %d: alpha %v out of bounds", seed, i, p.Alpha)
			}
			if !(p.Low() <= p.Alpha && p.Alpha <= p.High()) {
				t.Fatalf("seed %d tick %d: alpha %v outside %v", seed, i, p.Alpha, p.ConfidenceInterval)
			}
			if p.High()-p.Low() < 0.05-eps {
				t.Fatalf("seed %d tick %d: spread %v below floor", seed, i, p.High()-p.Low())
			}
			if p.Risk < 0 || p.Risk > 1 {
				t.Fatalf("seed %d tick %d: risk %v out of range", seed, i, p.Risk)
			}
		}
	}
}

func TestTickClampsExtremeVelocity(t *testing.T) {
	s := newTestSimulator(random.Fixed(0.5))
	s.Restore(0.85, 5)
	p := s.Tick(models.TrendBullish)
	if p.Alpha != alphaMax {
		t.Fatalf("alpha = %v, want clamp at %v", p.Alpha, alphaMax)
	}
	if p.Risk != 1 {
		t.Fatalf("risk = %v, want 1", p.Risk)
	}

	s.Restore(0.15, -5)
	p = s.Tick(models.TrendBearish)
	if p.Alpha != alphaMin {
		t.Fatalf("alpha = %v, want clamp at %v", p.Alpha, alphaMin)
	}
}

func TestSignalGating(t *testing.T) {
	tests := []struct {
		name     string
		velocity float64
		draws    []float64
		want     models.Signal
	}{
		// first draw is noise (0.5 = zero), second the coin flip
		{name: "fast rise passes", velocity: 0.1, draws: []float64{0.5, 0.9}, want: models.SignalBuy},
		{name: "fast rise fails coin", velocity: 0.1, draws: []float64{0.5, 0.6}, want: models.SignalNone},
		{name: "fast fall passes", velocity: -0.1, draws: []float64{0.5, 0.95}, want: models.SignalSell},
		{name: "slow move never signals", velocity: 0.01, draws: []float64{0.5, 0.99}, want: models.SignalNone},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s := newTestSimulator(random.NewSequence(tt.draws...))
			// alpha pinned at the trend's gravity so pull is zero
			if tt.velocity > 0 {
				s.Restore(gravityBullish, tt.velocity/velocityDecay)
			} else {
				s.Restore(gravityBearish, tt.velocity/velocityDecay)
			}
			trend := models.TrendBullish
			if tt.velocity < 0 {
				trend = models.TrendBearish
			}
			p := s.Tick(trend)
			if p.Signal != tt.want {
				t.Fatalf("signal = %q, want %q (velocity %v)", p.Signal, tt.want, s.Velocity())
			}
		})
	}
}

func TestInitializeWarmup(t *testing.T) {
	s := newTestSimulator(random.NewSeeded(3))
	s.Restore(0.9, 1)
	pts := s.Initialize(models.StockBYD)
	if len(pts) != WarmupSteps {
		t.Fatalf("expected %d warm-up points, got %d", WarmupSteps, len(pts))
	}
	for i, p := range pts {
		if p.Alpha < warmupMin || p.Alpha > warmupMax {
			t.Fatalf("warm-up point %d alpha %v out of [0.2, 0.8]", i, p.Alpha)
		}
		if p.Risk != warmupRisk {
			t.Fatalf("warm-up point %d risk %v", i, p.Risk)
		}
		if i > 0 && !pts[i-1].Time.Before(p.Time) {
			t.Fatalf("warm-up timestamps not increasing at %d", i)
		}
	}
	if s.Velocity() != 0 {
		t.Fatalf("velocity not reset: %v", s.Velocity())
	}
	if s.Alpha() != pts[len(pts)-1].Alpha {
		t.Fatalf("alpha %v does not continue from warm-up %v", s.Alpha(), pts[len(pts)-1].Alpha)
	}
	if s.Stock() != models.StockBYD {
		t.Fatalf("stock = %q", s.Stock())
	}
}
