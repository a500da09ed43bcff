package storage

import (
	"encoding/csv"
	"encoding/json"
	"fmt"
	"math"
	"os"
	"path/filepath"
	"slices"
	"strconv"
	"time"

	"github.com/san-kum/nbodysim/internal/telemetry"
)

const (
	metadataFile  = "metadata.json"
	telemetryFile = "telemetry.csv"
)

type Store struct {
	baseDir string
}

func New(baseDir string) *Store {
	return &Store{baseDir: baseDir}
}

func (s *Store) Init() error {
	return os.MkdirAll(s.baseDir, 0755)
}

type RunMetadata struct {
	ID         string             `json:"id"`
	Scenario   string             `json:"scenario"`
	Preset     string             `json:"preset,omitempty"`
	Timestamp  time.Time          `json:"timestamp"`
	Seed       int64              `json:"seed"`
	Frames     int                `json:"frames"`
	UpdateRate float64            `json:"update_rate"`
	SubSteps   int                `json:"sub_steps"`
	Strategy   string             `json:"strategy"`
	Gravity    string             `json:"gravity"`
	Bodies     int                `json:"bodies"`
	Collisions int                `json:"collisions"`
	Track      string             `json:"track,omitempty"`
	Metrics    map[string]float64 `json:"metrics"`
}

// Save writes meta and the telemetry series under a new run directory and
// returns the run id. Non-finite metric values are dropped from the metadata.
func (s *Store) Save(meta RunMetadata, series *telemetry.Series) (string, error) {
	now := time.Now()
	meta.ID = fmt.Sprintf("%s_%d", meta.Scenario, now.UnixNano())
	meta.Timestamp = now
	meta.Metrics = finiteMetrics(meta.Metrics)

	runDir := filepath.Join(s.baseDir, meta.ID)
	if err := os.MkdirAll(runDir, 0755); err != nil {
		return "", err
	}

	metaFile, err := os.Create(filepath.Join(runDir, metadataFile))
	if err != nil {
		return "", err
	}
	defer metaFile.Close()

	enc := json.NewEncoder(metaFile)
	enc.SetIndent("", "  ")
	if err := enc.Encode(meta); err != nil {
		return "", err
	}

	if series == nil {
		return meta.ID, nil
	}
	if err := writeSeries(filepath.Join(runDir, telemetryFile), series); err != nil {
		return "", err
	}
	return meta.ID, nil
}

func writeSeries(path string, series *telemetry.Series) error {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	defer f.Close()

	w := csv.NewWriter(f)
	header := append([]string{"time"}, series.Names...)
	if err := w.Write(header); err != nil {
		return err
	}

	row := make([]string, len(header))
	for i, t := range series.Times {
		row[0] = strconv.FormatFloat(t, 'g', -1, 64)
		for c, col := range series.Columns {
			row[c+1] = strconv.FormatFloat(col[i], 'g', -1, 64)
		}
		if err := w.Write(row); err != nil {
			return err
		}
	}
	w.Flush()
	return w.Error()
}

func finiteMetrics(in map[string]float64) map[string]float64 {
	out := make(map[string]float64, len(in))
	for k, v := range in {
		if !math.IsNaN(v) && !math.IsInf(v, 0) {
			out[k] = v
		}
	}
	return out
}

// List returns every readable run, oldest first.
func (s *Store) List() ([]RunMetadata, error) {
	entries, err := os.ReadDir(s.baseDir)
	if err != nil {
		if os.IsNotExist(err) {
			return []RunMetadata{}, nil
		}
		return nil, err
	}

	runs := make([]RunMetadata, 0)
	for _, entry := range entries {
		if !entry.IsDir() {
			continue
		}
		meta, err := s.Load(entry.Name())
		if err != nil {
			continue
		}
		runs = append(runs, *meta)
	}

	slices.SortFunc(runs, func(a, b RunMetadata) int {
		return a.Timestamp.Compare(b.Timestamp)
	})
	return runs, nil
}

func (s *Store) Load(runID string) (*RunMetadata, error) {
	data, err := os.ReadFile(filepath.Join(s.baseDir, runID, metadataFile))
	if err != nil {
		return nil, err
	}

	var meta RunMetadata
	if err := json.Unmarshal(data, &meta); err != nil {
		return nil, err
	}
	return &meta, nil
}

// LoadSeries reads back the telemetry of a run. Rows with an unparsable
// time are skipped; unparsable values read as NaN.
func (s *Store) LoadSeries(runID string) (*telemetry.Series, error) {
	file, err := os.Open(filepath.Join(s.baseDir, runID, telemetryFile))
	if err != nil {
		return nil, err
	}
	defer file.Close()

	r := csv.NewReader(file)
	r.FieldsPerRecord = -1

	records, err := r.ReadAll()
	if err != nil {
		return nil, err
	}
	if len(records) == 0 || len(records[0]) == 0 {
		return telemetry.NewSeries(), nil
	}

	series := telemetry.NewSeries(records[0][1:]...)
	values := make([]float64, len(series.Names))
	for _, record := range records[1:] {
		if len(record) == 0 {
			continue
		}
		t, err := strconv.ParseFloat(record[0], 64)
		if err != nil {
			continue
		}
		for j := range values {
			values[j] = math.NaN()
			if j+1 < len(record) {
				if v, err := strconv.ParseFloat(record[j+1], 64); err == nil {
					values[j] = v
				}
			}
		}
		if err := series.Append(t, values); err != nil {
			return nil, err
		}
	}
	return series, nil
}
