package pipeline

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"time"
)

// RunState tracks progress across batch runs. It lets a run scoped to
// "since last run" skip days that already produced insights, and records
// degradations for operator inspection.
type RunState struct {
	StartedAt       time.Time `json:"started_at"`
	FinishedAt      time.Time `json:"finished_at"`
	DaysProcessed   []string  `json:"days_processed"`
	WindowsTraced   int       `json:"windows_traced"`
	ObservationSets int       `json:"observation_sets"`
	DayInsights     int       `json:"day_insights"`
	MetaInsights    int       `json:"meta_insights"`
	Degradations    []string  `json:"degradations"`

	path string // not serialized
}

// LoadState loads the run state from disk, or creates a new one.
func LoadState(path string) (*RunState, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return &RunState{
				StartedAt: time.Now().UTC(),
				path:      path,
			}, nil
		}
		return nil, fmt.Errorf("read state: %w", err)
	}

	var s RunState
	if err := json.Unmarshal(data, &s); err != nil {
		return nil, fmt.Errorf("parse state: %w", err)
	}
	s.path = path
	return &s, nil
}

// Save persists the state to disk.
func (s *RunState) Save() error {
	if err := os.MkdirAll(filepath.Dir(s.path), 0o755); err != nil {
		return fmt.Errorf("mkdir: %w", err)
	}

	data, err := json.MarshalIndent(s, "", "  ")
	if err != nil {
		return fmt.Errorf("marshal state: %w", err)
	}

	return os.WriteFile(s.path, data, 0o644)
}

// IsProcessed returns true if the given day already produced insights.
func (s *RunState) IsProcessed(day string) bool {
	for _, d := range s.DaysProcessed {
		if d == day {
			return true
		}
	}
	return false
}

// MarkProcessed records a day as processed.
func (s *RunState) MarkProcessed(day string) {
	s.DaysProcessed = append(s.DaysProcessed, day)
}

// AddDegradation records a stage that degraded to empty output.
func (s *RunState) AddDegradation(msg string) {
	s.Degradations = append(s.Degradations, msg)
}
