package feeds

import (
	"strings"

	"YiJinJing/internal/domain/models"
	"YiJinJing/pkg/clock"
	"YiJinJing/pkg/random"

	"github.com/google/uuid"
)

// ConsoleCapacity is how many system log lines are retained.
const ConsoleCapacity = 21

// Console is the system log stream. It keeps running while the system is off.
type Console struct {
	rnd     random.Source
	clk     clock.Clock
	lang    models.Language
	entries []models.LogEntry
}

func NewConsole(rnd random.Source, clk clock.Clock, lang models.Language) *Console {
	return &Console{rnd: rnd, clk: clk, lang: lang}
}

// SetLanguage switches the template pool. Existing lines are kept.
func (c *Console) SetLanguage(lang models.Language) { c.lang = lang }

// Next appends a random template line and returns it.
func (c *Console) Next() models.LogEntry {
	templates := pool(logTemplates, c.lang)
	msg := templates[random.Intn(c.rnd, len(templates))]
	e := models.LogEntry{
		ID:        uuid.NewString(),
		Timestamp: c.clk.Now(),
		Message:   msg,
		Level:     templateLevel(msg),
	}
	c.entries = append(c.entries, e)
	if over := len(c.entries) - ConsoleCapacity; over > 0 {
		c.entries = append(c.entries[:0:0], c.entries[over:]...)
	}
	return e
}

// Entries returns the retained lines oldest first.
func (c *Console) Entries() []models.LogEntry {
	out := make([]models.LogEntry, len(c.entries))
	copy(out, c.entries)
	return out
}

func templateLevel(msg string) models.LogLevel {
	switch {
	case strings.Contains(msg, "Risk"), strings.Contains(msg, "风险"):
		return models.LogWarning
	case strings.Contains(msg, "Error"):
		return models.LogError
	default:
		return models.LogInfo
	}
}
