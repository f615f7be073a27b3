package signal

import (
	"math"
	"time"

	"YiJinJing/internal/domain/models"
	"YiJinJing/pkg/clock"
	"YiJinJing/pkg/random"
)

const (
	WarmupSteps = 40

	warmupStart = 0.5
	warmupStep  = 0.025
	warmupMin   = 0.2
	warmupMax   = 0.8
	warmupRisk  = 0.2
	warmupCI    = 0.05

	alphaMin = 0.1
	alphaMax = 0.9

	gravityBullish    = 0.75
	gravityBearish    = 0.25
	pullStrength      = 0.05
	volatilityBullish = 0.015
	volatilityBearish = 0.035
	velocityDecay     = 0.8

	signalVelocity = 0.04
	signalPass     = 0.7

	ciFloor  = 0.05
	ciScale  = 3
	riskGain = 10
)

// Simulator evolves a mean-reverting alpha value. Not safe for concurrent use.
type Simulator struct {
	rnd      random.Source
	clk      clock.Clock
	stock    models.StockSymbol
	alpha    float64
	velocity float64
	interval time.Duration
}

// Option configures Simulator.
type Option func(*Simulator)

// WithInterval sets the spacing of warm-up point timestamps.
func WithInterval(d time.Duration) Option {
	return func(s *Simulator) {
		if d > 0 {
			s.interval = d
		}
	}
}

// NewSimulator creates a simulator at alpha 0.5 and zero velocity.
func NewSimulator(rnd random.Source, clk clock.Clock, opts ...Option) *Simulator {
	s := &Simulator{
		rnd:      rnd,
		clk:      clk,
		alpha:    warmupStart,
		interval: 800 * time.Millisecond,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Initialize runs a fresh warm-up walk for stock and returns its points, oldest first.
// The walk does not depend on any previous instrument.
func (s *Simulator) Initialize(stock models.StockSymbol) []models.ChartPoint {
	s.stock = stock
	now := s.clk.Now()
	points := make([]models.ChartPoint, 0, WarmupSteps)
	val := warmupStart
	for i := 0; i < WarmupSteps; i++ {
		val = clamp(val+random.Uniform(s.rnd, -warmupStep, warmupStep), warmupMin, warmupMax)
		points = append(points, models.ChartPoint{
			Time:               now.Add(-time.Duration(WarmupSteps-1-i) * s.interval),
			Alpha:              val,
			Risk:               warmupRisk,
			ConfidenceInterval: [2]float64{val - warmupCI, val + warmupCI},
		})
	}
	s.alpha = val
	s.velocity = 0
	return points
}

// Tick advances the process one step under trend.
func (s *Simulator) Tick(trend models.MarketTrend) models.ChartPoint {
	gravity, vol := gravityBearish, volatilityBearish
	if trend == models.TrendBullish {
		gravity, vol = gravityBullish, volatilityBullish
	}

	pull := (gravity - s.alpha) * pullStrength
	noise := random.Uniform(s.rnd, -vol, vol)
	s.velocity = s.velocity*velocityDecay + pull + noise
	s.alpha = clamp(s.alpha+s.velocity, alphaMin, alphaMax)

	sig := models.SignalNone
	if s.velocity > signalVelocity && s.rnd.Float64() > signalPass {
		sig = models.SignalBuy
	} else if s.velocity < -signalVelocity && s.rnd.Float64() > signalPass {
		sig = models.SignalSell
	}

	speed := math.Abs(s.velocity)
	spread := ciFloor + speed*ciScale
	return models.ChartPoint{
		Time:               s.clk.Now(),
		Alpha:              s.alpha,
		Risk:               math.Min(1, speed*riskGain),
		ConfidenceInterval: [2]float64{s.alpha - spread, s.alpha + spread},
		Signal:             sig,
	}
}

// Stock returns the instrument of the last warm-up.
func (s *Simulator) Stock() models.StockSymbol { return s.stock }

// Alpha returns the current value.
func (s *Simulator) Alpha() float64 { return s.alpha }

// Velocity returns the current velocity.
func (s *Simulator) Velocity() float64 { return s.velocity }

// Restore sets the internal state. Used to replay a known position.
func (s *Simulator) Restore(alpha, velocity float64) {
	s.alpha = clamp(alpha, alphaMin, alphaMax)
	s.velocity = velocity
}

func clamp(v, lo, hi float64) float64 {
	return math.Max(lo, math.Min(hi, v))
}
