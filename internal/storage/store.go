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

	"github.com/san-kum/bisect/internal/bisect"
)

const (
	metadataFile = "metadata.json"
	stepsFile    = "steps.csv"
)

var stepsHeader = []string{"iteration", "low", "high", "midpoint", "f_low", "f_high", "f_mid", "error"}

type Store struct {
	baseDir string
}

func New(baseDir string) *Store {
	return &Store{baseDir: baseDir}
}

func (s *Store) Init() error {
	return os.MkdirAll(s.baseDir, 0755)
}

func (s *Store) Dir() string { return s.baseDir }

type RunMetadata struct {
	ID            string             `json:"id"`
	Function      string             `json:"function"`
	Timestamp     time.Time          `json:"timestamp"`
	Low           float64            `json:"low"`
	High          float64            `json:"high"`
	MaxIterations int                `json:"max_iterations"`
	DelaySeconds  float64            `json:"delay_seconds"`
	StepMode      bool               `json:"step_mode"`
	Outcome       string             `json:"outcome"`
	Iterations    int                `json:"iterations"`
	Root          float64            `json:"root"`
	FinalError    float64            `json:"final_error"`
	Metrics       map[string]float64 `json:"metrics,omitempty"`
}

// Run is a finished (or stopped) run ready to be persisted.
type Run struct {
	Function string
	Config   bisect.RunConfig
	Outcome  bisect.State
	Steps    []bisect.StepResult
	Metrics  map[string]float64
}

func (r Run) metadata(id string, ts time.Time) RunMetadata {
	meta := RunMetadata{
		ID:            id,
		Function:      r.Function,
		Timestamp:     ts,
		Low:           r.Config.Low,
		High:          r.Config.High,
		MaxIterations: r.Config.MaxIterations,
		DelaySeconds:  r.Config.Delay.Seconds(),
		StepMode:      r.Config.StepMode,
		Outcome:       r.Outcome.String(),
		Iterations:    len(r.Steps),
		Metrics:       r.Metrics,
	}
	if n := len(r.Steps); n > 0 {
		meta.Root = r.Steps[n-1].Root()
		meta.FinalError = r.Steps[n-1].Error
	}
	return meta
}

func (s *Store) Save(run Run) (string, error) {
	if err := os.MkdirAll(s.baseDir, 0755); err != nil {
		return "", err
	}

	now := time.Now()
	var runID, runDir string
	for n := now.UnixNano(); ; n++ {
		runID = fmt.Sprintf("bisect_%d", n)
		runDir = filepath.Join(s.baseDir, runID)
		err := os.Mkdir(runDir, 0755)
		if err == nil {
			break
		}
		if !os.IsExist(err) {
			return "", err
		}
	}

	metaFile, err := os.Create(filepath.Join(runDir, metadataFile))
	if err != nil {
		return "", err
	}
	defer metaFile.Close()

	enc := json.NewEncoder(metaFile)
	enc.SetIndent("", "  ")
	if err := enc.Encode(run.metadata(runID, now)); err != nil {
		return "", err
	}

	csvFile, err := os.Create(filepath.Join(runDir, stepsFile))
	if err != nil {
		return "", err
	}
	defer csvFile.Close()

	if err := WriteStepsCSV(csvFile, run.Steps); err != nil {
		return "", err
	}
	return runID, nil
}

// List returns stored runs, oldest first. Directories without readable
// metadata are skipped.
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

	sort.Slice(runs, func(i, j int) bool {
		return runs[i].Timestamp.Before(runs[j].Timestamp)
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

// Latest returns the ID of the most recent run.
func (s *Store) Latest() (string, error) {
	runs, err := s.List()
	if err != nil {
		return "", err
	}
	if len(runs) == 0 {
		return "", fmt.Errorf("no runs in %s", s.baseDir)
	}
	return runs[len(runs)-1].ID, nil
}

// StepsPath is the CSV file holding a run's steps.
func (s *Store) StepsPath(runID string) string {
	return filepath.Join(s.baseDir, runID, stepsFile)
}

func (s *Store) LoadSteps(runID string) ([]bisect.StepResult, error) {
	file, err := os.Open(s.StepsPath(runID))
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
	if len(records) < 2 {
		return []bisect.StepResult{}, nil
	}

	steps := make([]bisect.StepResult, 0, len(records)-1)
	for i, record := range records[1:] {
		if len(record) != len(stepsHeader) {
			return nil, fmt.Errorf("%s line %d: expected %d fields, got %d", stepsFile, i+2, len(stepsHeader), len(record))
		}
		step, err := parseStep(record)
		if err != nil {
			return nil, fmt.Errorf("%s line %d: %w", stepsFile, i+2, err)
		}
		steps = append(steps, step)
	}
	return steps, nil
}

func parseStep(record []string) (bisect.StepResult, error) {
	var r bisect.StepResult
	iter, err := strconv.Atoi(record[0])
	if err != nil {
		return r, err
	}
	vals := make([]float64, len(record)-1)
	for j, field := range record[1:] {
		v, err := strconv.ParseFloat(field, 64)
		if err != nil {
			return r, err
		}
		vals[j] = v
	}

	r = bisect.StepResult{
		Iteration: iter,
		Low:       vals[0],
		High:      vals[1],
		Midpoint:  vals[2],
		FLow:      vals[3],
		FHigh:     vals[4],
		FMid:      vals[5],
		Error:     vals[6],
	}
	r.Bisected = bisectedFrom(r)
	return r, nil
}

// bisectedFrom recovers the bracket that was split: the midpoint is always
// one of the new endpoints.
func bisectedFrom(r bisect.StepResult) bisect.Interval {
	w := r.High - r.Low
	if r.Midpoint == r.Low {
		return bisect.Interval{Low: r.Low - w, High: r.High}
	}
	return bisect.Interval{Low: r.Low, High: r.High + w}
}
