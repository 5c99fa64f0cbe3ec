package storage

import (
	"encoding/json"
	"io"
	"os"

	"github.com/san-kum/bisect/internal/bisect"
)

type ExportData struct {
	RunMetadata
	Steps []ExportStep `json:"steps"`
}

type ExportStep struct {
	Iteration int     `json:"iteration"`
	Low       float64 `json:"low"`
	High      float64 `json:"high"`
	Midpoint  float64 `json:"midpoint"`
	FLow      float64 `json:"f_low"`
	FHigh     float64 `json:"f_high"`
	FMid      float64 `json:"f_mid"`
	Error     float64 `json:"error"`
}

func newExportData(meta RunMetadata, steps []bisect.StepResult) ExportData {
	data := ExportData{RunMetadata: meta, Steps: make([]ExportStep, len(steps))}
	for i, s := range steps {
		data.Steps[i] = ExportStep{
			Iteration: s.Iteration,
			Low:       s.Low,
			High:      s.High,
			Midpoint:  s.Midpoint,
			FLow:      s.FLow,
			FHigh:     s.FHigh,
			FMid:      s.FMid,
			Error:     s.Error,
		}
	}
	return data
}

func (s *Store) exportData(runID string) (ExportData, error) {
	meta, err := s.Load(runID)
	if err != nil {
		return ExportData{}, err
	}
	steps, err := s.LoadSteps(runID)
	if err != nil {
		return ExportData{}, err
	}
	return newExportData(*meta, steps), nil
}

// WriteJSON writes a stored run, metadata and steps, as indented JSON.
func (s *Store) WriteJSON(w io.Writer, runID string) error {
	data, err := s.exportData(runID)
	if err != nil {
		return err
	}
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(data)
}

func (s *Store) ExportJSON(path, runID string) error {
	file, err := os.Create(path)
	if err != nil {
		return err
	}
	defer file.Close()
	return s.WriteJSON(file, runID)
}
