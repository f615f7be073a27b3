package feeds

import (
	"strings"
	"time"

	"YiJinJing/internal/domain/models"
	"YiJinJing/pkg/clock"
	"YiJinJing/pkg/random"

	"github.com/google/uuid"
)

const (
	NewsCapacity = 15
	newsSeeded   = 4
	newsRecent   = 3
	newsRedraws  = 5
)

// News is the extracted-headline stream. Not safe for concurrent use.
type News struct {
	rnd   random.Source
	clk   clock.Clock
	lang  models.Language
	pool  []string
	items []models.NewsItem
}

// NewNews creates a feed seeded for lang.
func NewNews(rnd random.Source, clk clock.Clock, lang models.Language) *News {
	n := &News{rnd: rnd, clk: clk}
	n.Reset(lang)
	return n
}

// Reset reshuffles the pool for lang and replaces the stream with four items a minute apart.
func (n *News) Reset(lang models.Language) {
	n.lang = lang
	src := pool(newsPools, lang)
	n.pool = make([]string, len(src))
	copy(n.pool, src)
	for i := len(n.pool) - 1; i > 0; i-- {
		j := random.Intn(n.rnd, i+1)
		n.pool[i], n.pool[j] = n.pool[j], n.pool[i]
	}

	now := n.clk.Now()
	n.items = n.items[:0]
	for i := 0; i < newsSeeded; i++ {
		title := n.pool[i%len(n.pool)]
		n.items = append(n.items, models.NewsItem{
			ID:         uuid.NewString(),
			Time:       now.Add(-time.Duration(i) * time.Minute),
			Title:      title,
			Source:     pool(newsOutlets, lang)[0],
			Kind:       ClassifyHeadline(title),
			Confidence: random.Uniform(n.rnd, 92, 99),
		})
	}
}

// Next draws a headline not among the three newest, prepends it and returns it.
func (n *News) Next() models.NewsItem {
	title := n.pool[random.Intn(n.rnd, len(n.pool))]
	for attempt := 0; attempt < newsRedraws && n.recent(title); attempt++ {
		title = n.pool[random.Intn(n.rnd, len(n.pool))]
	}
	outlets := pool(newsOutlets, n.lang)
	item := models.NewsItem{
		ID:         uuid.NewString(),
		Time:       n.clk.Now(),
		Title:      title,
		Source:     outlets[random.Intn(n.rnd, len(outlets))],
		Kind:       ClassifyHeadline(title),
		Confidence: random.Uniform(n.rnd, 85, 99),
	}
	n.items = append([]models.NewsItem{item}, n.items...)
	if len(n.items) > NewsCapacity {
		n.items = n.items[:NewsCapacity]
	}
	return item
}

// Items returns the stream newest first.
func (n *News) Items() []models.NewsItem {
	out := make([]models.NewsItem, len(n.items))
	copy(out, n.items)
	return out
}

// Language returns the pool in use.
func (n *News) Language() models.Language { return n.lang }

func (n *News) recent(title string) bool {
	for i := 0; i < len(n.items) && i < newsRecent; i++ {
		if n.items[i].Title == title {
			return true
		}
	}
	return false
}

// ClassifyHeadline maps a bracketed tag to its kind. Untagged headlines are notices.
func ClassifyHeadline(title string) models.NewsKind {
	start := strings.Index(title, "[")
	end := strings.Index(title, "]")
	if start < 0 || end < start {
		return models.NewsNotice
	}
	tag := strings.ToLower(title[start : end+1])
	switch {
	case strings.Contains(tag, "预警"), strings.Contains(tag, "alert"):
		return models.NewsAlert
	case strings.Contains(tag, "快讯"), strings.Contains(tag, "flash"):
		return models.NewsFlash
	default:
		return models.NewsNotice
	}
}
