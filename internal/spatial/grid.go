package spatial

import (
	"context"
	"math"

	"gonum.org/v1/gonum/spatial/r2"

	"github.com/san-kum/nbodysim/internal/compute"
	"github.com/san-kum/nbodysim/internal/dynamo"
)

// Grid is a uniform cell hash over a fixed world rectangle. A body is filed
// under its home cell and, when it lies within margin of a cell border, under
// the neighbouring cell across that border. Bodies outside the world are
// filed under the nearest edge cell.
type Grid struct {
	cellSize float64
	margin   float64
	cols     int
	rows     int

	buckets [][]int32
	touched []int
	phase   [4][]int
}

// NewGrid returns a grid covering [0,width]x[0,height]. margin must be
// smaller than cellSize so a body spans at most a 2x2 block of cells.
func NewGrid(width, height, cellSize, margin float64) (*Grid, error) {
	switch {
	case !(width > 0):
		return nil, dynamo.Invalid("grid width", width)
	case !(height > 0):
		return nil, dynamo.Invalid("grid height", height)
	case !(cellSize > 0):
		return nil, dynamo.Invalid("cell size", cellSize)
	case !(margin >= 0) || margin >= cellSize:
		return nil, dynamo.Invalid("cell margin", margin)
	}
	cols := int(math.Ceil(width / cellSize))
	rows := int(math.Ceil(height / cellSize))
	return &Grid{
		cellSize: cellSize,
		margin:   margin,
		cols:     cols,
		rows:     rows,
		buckets:  make([][]int32, cols*rows),
	}, nil
}

func (g *Grid) Cols() int { return g.cols }
func (g *Grid) Rows() int { return g.rows }

// Cell returns the clamped cell coordinate of p.
func (g *Grid) Cell(p r2.Vec) (cx, cy int) {
	cx = clampInt(int(math.Floor(p.X/g.cellSize)), 0, g.cols-1)
	cy = clampInt(int(math.Floor(p.Y/g.cellSize)), 0, g.rows-1)
	return cx, cy
}

// Bucket returns the indices filed under cell (cx, cy). The slice is owned
// by the grid and valid until the next Clear.
func (g *Grid) Bucket(cx, cy int) []int32 {
	if cx < 0 || cy < 0 || cx >= g.cols || cy >= g.rows {
		return nil
	}
	return g.buckets[cy*g.cols+cx]
}

// Occupied is the number of non-empty buckets.
func (g *Grid) Occupied() int { return len(g.touched) }

// Clear empties every bucket, keeping capacity.
func (g *Grid) Clear() {
	for _, k := range g.touched {
		g.buckets[k] = g.buckets[k][:0]
	}
	g.touched = g.touched[:0]
}

func (g *Grid) Insert(index int32, p r2.Vec) {
	cx, cy := g.Cell(p)
	fx := p.X - float64(cx)*g.cellSize
	fy := p.Y - float64(cy)*g.cellSize

	dx, dy := 0, 0
	if fx < g.margin && cx > 0 {
		dx = -1
	} else if fx > g.cellSize-g.margin && cx < g.cols-1 {
		dx = 1
	}
	if fy < g.margin && cy > 0 {
		dy = -1
	} else if fy > g.cellSize-g.margin && cy < g.rows-1 {
		dy = 1
	}

	g.add(cx, cy, index)
	if dx != 0 {
		g.add(cx+dx, cy, index)
	}
	if dy != 0 {
		g.add(cx, cy+dy, index)
	}
	if dx != 0 && dy != 0 {
		g.add(cx+dx, cy+dy, index)
	}
}

func (g *Grid) add(cx, cy int, index int32) {
	k := cy*g.cols + cx
	if len(g.buckets[k]) == 0 {
		g.touched = append(g.touched, k)
	}
	g.buckets[k] = append(g.buckets[k], index)
}

// Build clears the grid and files every body under its snapshot index.
func (g *Grid) Build(bodies []*dynamo.Body) {
	g.Clear()
	for i, b := range bodies {
		g.Insert(int32(i), b.Position)
	}
}

// ForEachPair calls fn once for every unordered pair sharing a bucket. Two
// bodies that share more than one bucket are visited once per bucket.
func (g *Grid) ForEachPair(fn func(a, b int32)) {
	for _, k := range g.touched {
		pairs(g.buckets[k], fn)
	}
}

// ForEachPairParallel is ForEachPair with buckets fanned out on pool. Buckets
// run in four phases by cell parity; within a phase no two buckets hold the
// same body, so fn may mutate both bodies without locking. Phases are
// separated by a barrier.
func (g *Grid) ForEachPairParallel(ctx context.Context, pool *compute.Pool, fn func(a, b int32)) error {
	for p := range g.phase {
		g.phase[p] = g.phase[p][:0]
	}
	for _, k := range g.touched {
		if len(g.buckets[k]) < 2 {
			continue
		}
		cx, cy := k%g.cols, k/g.cols
		p := (cy&1)<<1 | cx&1
		g.phase[p] = append(g.phase[p], k)
	}

	for _, ks := range g.phase {
		if len(ks) == 0 {
			continue
		}
		err := pool.ForEach(ctx, len(ks), func(_ context.Context, i int) error {
			pairs(g.buckets[ks[i]], fn)
			return nil
		})
		if err != nil {
			return err
		}
	}
	return nil
}

func pairs(bucket []int32, fn func(a, b int32)) {
	for i := 0; i < len(bucket); i++ {
		for j := i + 1; j < len(bucket); j++ {
			fn(bucket[i], bucket[j])
		}
	}
}

func clampInt(v, lo, hi int) int {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
