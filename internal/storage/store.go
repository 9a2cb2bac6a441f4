package storage

import (
	"encoding/csv"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strconv"
	"time"

	"github.com/google/uuid"

	"github.com/san-kum/lagrange/internal/dynamo"
)

const (
	metadataFile = "metadata.json"
	statesFile   = "states.csv"
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

func (s *Store) Dir(runID string) string {
	return filepath.Join(s.baseDir, runID)
}

type RunMetadata struct {
	ID         string             `json:"id"`
	System     string             `json:"system"`
	Timestamp  time.Time          `json:"timestamp"`
	Integrator string             `json:"integrator"`
	Duration   float64            `json:"duration"`
	FPS        float64            `json:"fps"`
	RelTol     float64            `json:"rel_tol"`
	AbsTol     float64            `json:"abs_tol"`
	Initial    []float64          `json:"initial"`
	Params     map[string]float64 `json:"params,omitempty"`
	Samples    int                `json:"samples"`
	Stats      dynamo.Stats       `json:"stats"`
	Metrics    map[string]float64 `json:"metrics"`
}

// Save writes metadata.json and states.csv into a fresh run directory and
// returns the run ID. ID, Timestamp, Samples and Stats are filled in here.
func (s *Store) Save(meta RunMetadata, tr *dynamo.Trajectory) (string, error) {
	if tr == nil || tr.Len() == 0 {
		return "", dynamo.ErrInvalidSamples
	}
	meta.ID = fmt.Sprintf("%s-%s", meta.System, uuid.NewString()[:8])
	meta.Timestamp = time.Now().UTC()
	meta.Samples = tr.Len()
	meta.Stats = tr.Stats()

	runDir := s.Dir(meta.ID)
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

	csvFile, err := os.Create(filepath.Join(runDir, statesFile))
	if err != nil {
		return "", err
	}
	defer csvFile.Close()

	if err := WriteCSV(csvFile, tr); err != nil {
		return "", fmt.Errorf("write states: %w", err)
	}
	return meta.ID, nil
}

// List returns every readable run, oldest first.
func (s *Store) List() ([]RunMetadata, error) {
	entries, err := os.ReadDir(s.baseDir)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, err
	}

	var runs []RunMetadata
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

	sort.Slice(runs, func(i, j int) bool {
		return runs[i].Timestamp.Before(runs[j].Timestamp)
	})
	return runs, nil
}

func (s *Store) Load(runID string) (*RunMetadata, error) {
	data, err := os.ReadFile(filepath.Join(s.Dir(runID), metadataFile))
	if err != nil {
		return nil, err
	}

	var meta RunMetadata
	if err := json.Unmarshal(data, &meta); err != nil {
		return nil, fmt.Errorf("run %s: %w", runID, err)
	}
	return &meta, nil
}

// LoadTrajectory reads states.csv back into a Trajectory carrying the
// stats recorded in the run's metadata.
func (s *Store) LoadTrajectory(runID string) (*dynamo.Trajectory, error) {
	meta, err := s.Load(runID)
	if err != nil {
		return nil, err
	}

	file, err := os.Open(filepath.Join(s.Dir(runID), statesFile))
	if err != nil {
		return nil, err
	}
	defer file.Close()

	r := csv.NewReader(file)
	records, err := r.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("run %s: %w", runID, err)
	}
	if len(records) < 2 {
		return nil, fmt.Errorf("run %s: %w", runID, dynamo.ErrInvalidSamples)
	}

	times := make([]float64, 0, len(records)-1)
	states := make([]dynamo.State, 0, len(records)-1)
	for i, record := range records[1:] {
		row := make([]float64, len(record))
		for j, field := range record {
			v, err := strconv.ParseFloat(field, 64)
			if err != nil {
				return nil, fmt.Errorf("run %s: row %d: %w", runID, i+1, err)
			}
			row[j] = v
		}
		times = append(times, row[0])
		states = append(states, dynamo.State(row[1:]))
	}

	return dynamo.NewTrajectory(times, states, meta.Stats)
}
