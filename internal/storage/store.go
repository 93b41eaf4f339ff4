package storage

import (
	"encoding/csv"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"time"

	"github.com/san-kum/seirsim/internal/models"
	"github.com/san-kum/seirsim/internal/solver"
)

const (
	metadataFile = "metadata.json"
	statesFile   = "states.csv"
)

var stateHeader = []string{"time", "S", "E", "I", "R"}

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
	ID        string             `json:"id"`
	Preset    string             `json:"preset,omitempty"`
	Timestamp time.Time          `json:"timestamp"`
	Duration  int                `json:"duration"`
	Substeps  int                `json:"substeps"`
	S0        float64            `json:"s0"`
	I0        float64            `json:"i0"`
	Params    models.Params      `json:"params"`
	Frozen    bool               `json:"frozen"`
	FrozenAt  float64            `json:"frozen_at,omitempty"`
	Metrics   map[string]float64 `json:"metrics"`
}

// Save writes meta and the reported trajectory under a fresh run directory.
// ID, Timestamp, Frozen, FrozenAt and Metrics are filled from the result.
func (s *Store) Save(meta RunMetadata, result *solver.Result) (string, error) {
	runID, runDir, err := s.newRunDir()
	if err != nil {
		return "", err
	}

	meta.ID = runID
	meta.Timestamp = time.Now()
	meta.Frozen = result.Frozen
	meta.FrozenAt = result.FrozenAt
	meta.Metrics = result.Metrics

	if err := writeMetadata(filepath.Join(runDir, metadataFile), meta); err != nil {
		return "", err
	}
	if err := writeStates(filepath.Join(runDir, statesFile), result); err != nil {
		return "", err
	}

	return runID, nil
}

func (s *Store) newRunDir() (string, string, error) {
	base := fmt.Sprintf("seir_%d", time.Now().UnixNano())
	for i := 0; ; i++ {
		runID := base
		if i > 0 {
			runID = fmt.Sprintf("%s_%d", base, i)
		}
		runDir := filepath.Join(s.baseDir, runID)
		err := os.Mkdir(runDir, 0755)
		if err == nil {
			return runID, runDir, nil
		}
		if !errors.Is(err, os.ErrExist) {
			return "", "", err
		}
	}
}

func writeMetadata(path string, meta RunMetadata) error {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	defer f.Close()

	enc := json.NewEncoder(f)
	enc.SetIndent("", "  ")
	return enc.Encode(meta)
}

func writeStates(path string, result *solver.Result) error {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	defer f.Close()

	w := csv.NewWriter(f)
	if err := w.Write(stateHeader); err != nil {
		return err
	}

	for i, x := range result.States {
		row := make([]string, 0, len(stateHeader))
		row = append(row, strconv.FormatFloat(result.Times[i], 'g', -1, 64))
		for _, val := range x {
			row = append(row, strconv.FormatFloat(val, 'g', -1, 64))
		}
		if err := w.Write(row); err != nil {
			return err
		}
	}

	w.Flush()
	return w.Error()
}

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

	return runs, nil
}

func (s *Store) Load(runID string) (*RunMetadata, error) {
	data, err := os.ReadFile(filepath.Join(s.baseDir, runID, metadataFile))
	if err != nil {
		return nil, err
	}

	var meta RunMetadata
	if err := json.Unmarshal(data, &meta); err != nil {
		return nil, fmt.Errorf("decode metadata for %s: %w", runID, err)
	}

	return &meta, nil
}

func (s *Store) LoadStates(runID string) ([][]float64, []float64, error) {
	file, err := os.Open(filepath.Join(s.baseDir, runID, statesFile))
	if err != nil {
		return nil, nil, err
	}
	defer file.Close()

	r := csv.NewReader(file)
	r.FieldsPerRecord = -1

	records, err := r.ReadAll()
	if err != nil {
		return nil, nil, err
	}

	if len(records) < 2 {
		return [][]float64{}, []float64{}, nil
	}

	times := make([]float64, 0, len(records)-1)
	states := make([][]float64, 0, len(records)-1)

	for i, record := range records[1:] {
		if len(record) != len(stateHeader) {
			return nil, nil, fmt.Errorf("%s line %d: expected %d fields, got %d", statesFile, i+2, len(stateHeader), len(record))
		}

		t, err := strconv.ParseFloat(record[0], 64)
		if err != nil {
			return nil, nil, fmt.Errorf("%s line %d: %w", statesFile, i+2, err)
		}

		state := make([]float64, 0, len(record)-1)
		for _, field := range record[1:] {
			val, err := strconv.ParseFloat(field, 64)
			if err != nil {
				return nil, nil, fmt.Errorf("%s line %d: %w", statesFile, i+2, err)
			}
			state = append(state, val)
		}

		times = append(times, t)
		states = append(states, state)
	}

	return states, times, nil
}
