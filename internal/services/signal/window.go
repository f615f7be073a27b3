package signal

import (
	"sync"

	"YiJinJing/internal/domain/models"
)

// DefaultWindowSize is the chart retention.
const DefaultWindowSize = 40

// Window is a fixed-capacity FIFO of chart points.
type Window struct {
	mu     sync.RWMutex
	points []models.ChartPoint
	size   int
}

// NewWindow creates a window holding at most size points.
func NewWindow(size int) *Window {
	if size <= 0 {
		size = DefaultWindowSize
	}
	return &Window{points: make([]models.ChartPoint, 0, size), size: size}
}

// Append adds p and evicts the oldest point on overflow.
func (w *Window) Append(p models.ChartPoint) {
	w.mu.Lock()
	defer w.mu.Unlock()
	if len(w.points) == w.size {
		copy(w.points, w.points[1:])
		w.points[len(w.points)-1] = p
		return
	}
	w.points = append(w.points, p)
}

// Reset replaces the content with the newest size points of pts.
func (w *Window) Reset(pts []models.ChartPoint) {
	w.mu.Lock()
	defer w.mu.Unlock()
	if len(pts) > w.size {
		pts = pts[len(pts)-w.size:]
	}
	w.points = w.points[:0]
	w.points = append(w.points, pts...)
}

// Snapshot returns a copy, oldest first.
func (w *Window) Snapshot() []models.ChartPoint {
	w.mu.RLock()
	defer w.mu.RUnlock()
	out := make([]models.ChartPoint, len(w.points))
	copy(out, w.points)
	return out
}

// Last returns the newest n points, oldest first.
func (w *Window) Last(n int) []models.ChartPoint {
	pts := w.Snapshot()
	if n > 0 && n < len(pts) {
		pts = pts[len(pts)-n:]
	}
	return pts
}

// Len returns the number of retained points.
func (w *Window) Len() int {
	w.mu.RLock()
	defer w.mu.RUnlock()
	return len(w.points)
}

// Cap returns the capacity.
func (w *Window) Cap() int { return w.size }
