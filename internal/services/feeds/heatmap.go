package feeds

import (
	"YiJinJing/internal/domain/models"
	"YiJinJing/pkg/random"
)

// HeatmapGrid is the strategy backtest heatmap.
type HeatmapGrid struct {
	rnd  random.Source
	grid models.Heatmap
}

func NewHeatmapGrid(rnd random.Source) *HeatmapGrid {
	return &HeatmapGrid{rnd: rnd}
}

// Step repaints one to five random cells and returns the grid.
func (h *HeatmapGrid) Step() models.Heatmap {
	changes := random.Intn(h.rnd, 5) + 1
	cells := models.HeatmapRows * models.HeatmapCols
	for i := 0; i < changes; i++ {
		idx := random.Intn(h.rnd, cells)
		h.grid[idx/models.HeatmapCols][idx%models.HeatmapCols] = heatLevel(h.rnd.Float64())
	}
	return h.grid
}

// Grid returns the current grid.
func (h *HeatmapGrid) Grid() models.Heatmap { return h.grid }

func heatLevel(r float64) int {
	switch {
	case r > 0.95:
		return 4
	case r > 0.6:
		return 3
	case r > 0.3:
		return 2
	default:
		return 1
	}
}
