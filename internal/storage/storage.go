package storage

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"contextchef/internal/planner"
)

// PlanArchive provides file-based storage for weekly meal plans, one JSON
// file per user and week. The database holds the working copy; the archive
// keeps a browsable history.
type PlanArchive struct {
	basePath string
}

// NewPlanArchive creates a new PlanArchive and ensures the base directory exists.
func NewPlanArchive(basePath string) (*PlanArchive, error) {
	dir := filepath.Join(basePath, "plans")
	if err := os.MkdirAll(dir, 0755); err != nil {
		return nil, fmt.Errorf("failed to create archive directory %s: %w", dir, err)
	}
	return &PlanArchive{basePath: dir}, nil
}

func (a *PlanArchive) planPath(userID string, weekStart time.Time) string {
	filename := fmt.Sprintf("%s_%s.json", sanitizeUserID(userID), weekStart.Format("2006-01-02"))
	return filepath.Join(a.basePath, filename)
}

// sanitizeUserID makes the user id safe for filenames.
func sanitizeUserID(userID string) string {
	return strings.Map(func(r rune) rune {
		switch {
		case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z', r >= '0' && r <= '9', r == '-':
			return r
		default:
			return '_'
		}
	}, userID)
}

// Save stores a weekly plan, overwriting any existing plan for the same week.
func (a *PlanArchive) Save(userID string, weekStart time.Time, result planner.Result) error {
	data, err := json.MarshalIndent(result, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal plan: %w", err)
	}

	filePath := a.planPath(userID, weekStart)
	if err := os.WriteFile(filePath, data, 0644); err != nil {
		return fmt.Errorf("failed to write plan file: %w", err)
	}
	return nil
}

// Load retrieves the archived plan for a given user and week.
func (a *PlanArchive) Load(userID string, weekStart time.Time) (*planner.Result, error) {
	data, err := os.ReadFile(a.planPath(userID, weekStart))
	if err != nil {
		return nil, fmt.Errorf("failed to read plan file: %w", err)
	}

	var result planner.Result
	if err := json.Unmarshal(data, &result); err != nil {
		return nil, fmt.Errorf("failed to unmarshal plan: %w", err)
	}
	return &result, nil
}

// Exists checks if an archived plan exists for a given user and week.
func (a *PlanArchive) Exists(userID string, weekStart time.Time) bool {
	_, err := os.Stat(a.planPath(userID, weekStart))
	return !os.IsNotExist(err)
}

// ListWeeks returns the archived week-start dates for a user, newest first.
func (a *PlanArchive) ListWeeks(userID string) ([]time.Time, error) {
	pattern := filepath.Join(a.basePath, fmt.Sprintf("%s_*.json", sanitizeUserID(userID)))
	matches, err := filepath.Glob(pattern)
	if err != nil {
		return nil, fmt.Errorf("failed to glob plan files: %w", err)
	}

	var weeks []time.Time
	for _, match := range matches {
		name := strings.TrimSuffix(filepath.Base(match), ".json")
		idx := strings.LastIndex(name, "_")
		if idx < 0 {
			continue
		}
		week, err := time.Parse("2006-01-02", name[idx+1:])
		if err != nil {
			continue
		}
		weeks = append(weeks, week)
	}

	sort.Slice(weeks, func(i, j int) bool { return weeks[i].After(weeks[j]) })
	return weeks, nil
}

// Prune removes archived plans older than the given number of weeks.
func (a *PlanArchive) Prune(userID string, keepWeeks int) error {
	weeks, err := a.ListWeeks(userID)
	if err != nil {
		return err
	}
	if len(weeks) <= keepWeeks {
		return nil
	}

	for _, week := range weeks[keepWeeks:] {
		if err := os.Remove(a.planPath(userID, week)); err != nil {
			return fmt.Errorf("failed to remove stale plan: %w", err)
		}
	}
	return nil
}
