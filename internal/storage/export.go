package storage

import (
	"encoding/json"
	"io"
	"math"
	"os"

	"github.com/san-kum/nbodysim/internal/telemetry"
)

type ExportData struct {
	Run     RunMetadata           `json:"run"`
	Steps   int                   `json:"steps"`
	Times   []float64             `json:"times"`
	Columns map[string][]*float64 `json:"columns"`
}

func newExportData(meta RunMetadata, series *telemetry.Series) ExportData {
	meta.Metrics = finiteMetrics(meta.Metrics)
	data := ExportData{Run: meta, Columns: map[string][]*float64{}}
	if series == nil {
		return data
	}
	data.Steps = series.Len()
	data.Times = series.Times
	for i, name := range series.Names {
		data.Columns[name] = nullable(series.Columns[i])
	}
	return data
}

// nullable maps non-finite samples to JSON null.
func nullable(xs []float64) []*float64 {
	out := make([]*float64, len(xs))
	for i := range xs {
		if !math.IsNaN(xs[i]) && !math.IsInf(xs[i], 0) {
			out[i] = &xs[i]
		}
	}
	return out
}

func ExportJSON(w io.Writer, meta RunMetadata, series *telemetry.Series) error {
	encoder := json.NewEncoder(w)
	encoder.SetIndent("", "  ")
	return encoder.Encode(newExportData(meta, series))
}

func ExportJSONFile(path string, meta RunMetadata, series *telemetry.Series) error {
	file, err := os.Create(path)
	if err != nil {
		return err
	}
	defer file.Close()
	return ExportJSON(file, meta, series)
}
