package storage

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"
)

// RunReport records the outcome of one pass over the raffle listing.
type RunReport struct {
	StartedAt    time.Time `json:"started_at"`
	FinishedAt   time.Time `json:"finished_at"`
	EnteredIDs   []string  `json:"entered_ids"`
	FailedID     string    `json:"failed_id,omitempty"`
	TotalEntered int       `json:"total_entered"`
	TotalRaffles int       `json:"total_raffles"`
}

// NewlyEntered is the number of raffles this run entered successfully.
func (r *RunReport) NewlyEntered() int {
	return len(r.EnteredIDs)
}

// Storage persists run reports to a local data directory.
type Storage struct {
	dataDir string
}

// New creates a Storage rooted at dataDir, creating it if needed.
func New(dataDir string) (*Storage, error) {
	// Expand ~ to home directory
	if strings.HasPrefix(dataDir, "~/") {
		home, err := os.UserHomeDir()
		if err != nil {
			return nil, fmt.Errorf("getting home directory: %w", err)
		}
		dataDir = filepath.Join(home, dataDir[2:])
	}

	if err := os.MkdirAll(dataDir, 0755); err != nil {
		return nil, fmt.Errorf("creating data directory: %w", err)
	}

	return &Storage{
		dataDir: dataDir,
	}, nil
}

func (s *Storage) latestPath() string {
	return filepath.Join(s.dataDir, "latest.json")
}

func (s *Storage) reportPath(r *RunReport) string {
	name := fmt.Sprintf("run_%s.json", r.StartedAt.UTC().Format("20060102T150405Z"))
	return filepath.Join(s.dataDir, name)
}

// SaveReport writes a run report to a timestamped file and updates
// latest.json to point at the same content.
func (s *Storage) SaveReport(report *RunReport) error {
	data, err := json.MarshalIndent(report, "", "  ")
	if err != nil {
		return fmt.Errorf("encoding report: %w", err)
	}

	if err := os.WriteFile(s.reportPath(report), data, 0644); err != nil {
		return fmt.Errorf("writing report: %w", err)
	}
	if err := os.WriteFile(s.latestPath(), data, 0644); err != nil {
		return fmt.Errorf("writing latest report: %w", err)
	}
	return nil
}

// LoadLatest reads the most recent run report. A missing file yields a nil
// report and no error, since a first run has nothing to compare against.
func (s *Storage) LoadLatest() (*RunReport, error) {
	data, err := os.ReadFile(s.latestPath())
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("reading latest report: %w", err)
	}

	var report RunReport
	if err := json.Unmarshal(data, &report); err != nil {
		return nil, fmt.Errorf("parsing latest report: %w", err)
	}
	return &report, nil
}
