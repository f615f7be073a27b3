package feeds

import (
	"math"

	"YiJinJing/internal/domain/models"
	"YiJinJing/pkg/random"
)

const (
	radarFullMark  = 150
	radarNearBy    = 2
	radarTargetMin = 50
	radarTargetMax = 140
	radarSpeedMin  = 0.05
	radarSpeedMax  = 0.10
)

// Radar eases each knowledge-graph metric toward a wandering target.
type Radar struct {
	rnd     random.Source
	metrics []models.RadarMetric
}

func NewRadar(rnd random.Source, lang models.Language) *Radar {
	seeds := pool(radarSeeds, lang)
	r := &Radar{rnd: rnd, metrics: make([]models.RadarMetric, len(seeds))}
	for i, s := range seeds {
		r.metrics[i] = models.RadarMetric{Subject: s.subject, Value: s.value, Target: s.value, FullMark: radarFullMark}
	}
	return r
}

// SetLanguage relabels the axes, keeping values and targets.
func (r *Radar) SetLanguage(lang models.Language) {
	for i, s := range pool(radarSeeds, lang) {
		if i < len(r.metrics) {
			r.metrics[i].Subject = s.subject
		}
	}
}

// Step advances every metric once and returns a copy.
func (r *Radar) Step() []models.RadarMetric {
	for i := range r.metrics {
		m := &r.metrics[i]
		if math.Abs(m.Target-m.Value) < radarNearBy {
			m.Target = random.Uniform(r.rnd, radarTargetMin, radarTargetMax)
		}
		m.Speed = random.Uniform(r.rnd, radarSpeedMin, radarSpeedMax)
		m.Value += (m.Target - m.Value) * m.Speed
	}
	return r.Metrics()
}

func (r *Radar) Metrics() []models.RadarMetric {
	out := make([]models.RadarMetric, len(r.metrics))
	copy(out, r.metrics)
	return out
}
