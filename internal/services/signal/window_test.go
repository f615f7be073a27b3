package signal

import (
	"testing"

	"YiJinJing/internal/domain/models"
)

func point(i int) models.ChartPoint {
	return models.ChartPoint{Alpha: float64(i)}
}

func TestWindowEvictsOldestFirst(t *testing.T) {
	w := NewWindow(DefaultWindowSize)
	for i := 0; i < 40; i++ {
		w.Append(point(i))
	}
	if w.Len() != 40 {
		t.Fatalf("expected 40 points, got %d", w.Len())
	}

	w.Append(point(40))

	pts := w.Snapshot()
	if len(pts) != 40 {
		t.Fatalf("window grew to %d", len(pts))
	}
	if pts[0].Alpha != 1 {
		t.Fatalf("oldest point not evicted, head = %v", pts[0].Alpha)
	}
	for i, p := range pts {
		if p.Alpha != float64(i+1) {
			t.Fatalf("order broken at %d: %v", i, p.Alpha)
		}
	}
}

func TestWindowNeverExceedsCapacity(t *testing.T) {
	w := NewWindow(0)
	if w.Cap() != DefaultWindowSize {
		t.Fatalf("default capacity = %d", w.Cap())
	}
	for i := 0; i < 500; i++ {
		w.Append(point(i))
		if w.Len() > w.Cap() {
			t.Fatalf("len %d exceeds cap after %d appends", w.Len(), i+1)
		}
	}
	last := w.Last(3)
	if len(last) != 3 || last[2].Alpha != 499 || last[0].Alpha != 497 {
		t.Fatalf("unexpected tail %v", last)
	}
}

func TestWindowResetKeepsNewest(t *testing.T) {
	w := NewWindow(3)
	w.Reset([]models.ChartPoint{point(1), point(2), point(3), point(4)})
	pts := w.Snapshot()
	if len(pts) != 3 || pts[0].Alpha != 2 || pts[2].Alpha != 4 {
		t.Fatalf("unexpected reset content %v", pts)
	}

	pts[0].Alpha = 100
	if w.Snapshot()[0].Alpha == 100 {
		t.Fatal("snapshot aliases window storage")
	}
}
