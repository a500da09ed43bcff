package telemetry

import (
	"math"

	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/spatial/r2"
	"gonum.org/v1/gonum/stat"

	"github.com/san-kum/nbodysim/internal/dynamo"
)

type Summary struct {
	N      int
	Mean   float64
	StdDev float64
	Min    float64
	Max    float64
}

// Summarize describes xs. An empty slice yields a zero Summary; a single
// value has zero deviation.
func Summarize(xs []float64) Summary {
	if len(xs) == 0 {
		return Summary{}
	}
	mean, std := stat.MeanStdDev(xs, nil)
	if len(xs) == 1 || math.IsNaN(std) {
		std = 0
	}
	return Summary{
		N:      len(xs),
		Mean:   mean,
		StdDev: std,
		Min:    floats.Min(xs),
		Max:    floats.Max(xs),
	}
}

// ForceTable lists the net force magnitude of every body, chunk entries per
// row. A non-positive chunk puts everything in one row.
func ForceTable(v dynamo.View, chunk int) [][]float64 {
	n := v.Len()
	if n == 0 {
		return nil
	}
	if chunk <= 0 {
		chunk = n
	}
	rows := make([][]float64, 0, (n+chunk-1)/chunk)
	for start := 0; start < n; start += chunk {
		end := min(start+chunk, n)
		row := make([]float64, 0, end-start)
		for i := start; i < end; i++ {
			b, _ := v.Body(i)
			row = append(row, r2.Norm(b.Force()))
		}
		rows = append(rows, row)
	}
	return rows
}
