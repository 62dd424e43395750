// Package export persists AROI validation runs.
//
// A Report captures one batch run: a ULID run identifier, the run timestamp,
// aggregate statistics and the per-relay results. Reports are written as
// timestamped JSON files alongside a latest.json pointer, and can also be
// serialized to a compact MessagePack snapshot for archival.
package export

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"time"

	"github.com/oklog/ulid/v2"

	"github.com/synqronlabs/aroi"
)

// LatestName is the filename of the pointer to the most recent report.
const LatestName = "latest.json"

const filePrefix = "aroi_validation_"

// Report is one persisted validation run.
type Report struct {
	ID        string                  `json:"id"`
	Timestamp time.Time               `json:"timestamp"`
	Summary   aroi.Summary            `json:"statistics"`
	Results   []aroi.ValidationResult `json:"results"`
}

// NewReport creates a Report for the given results, stamped with the current
// time and a fresh ULID.
func NewReport(results []aroi.ValidationResult) *Report {
	return &Report{
		ID:        ulid.Make().String(),
		Timestamp: time.Now().UTC(),
		Summary:   aroi.Summarize(results),
		Results:   results,
	}
}

// WriteJSON writes the report into dir as a timestamped JSON file and
// updates the latest.json pointer. It returns the path of the timestamped
// file. The directory is created if needed.
func (r *Report) WriteJSON(dir string) (string, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return "", fmt.Errorf("export: creating results dir: %w", err)
	}

	data, err := json.MarshalIndent(r, "", "  ")
	if err != nil {
		return "", fmt.Errorf("export: encoding report: %w", err)
	}

	name := filePrefix + r.Timestamp.Format("20060102_150405") + ".json"
	path := filepath.Join(dir, name)
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return "", fmt.Errorf("export: writing report: %w", err)
	}
	if err := os.WriteFile(filepath.Join(dir, LatestName), data, 0o644); err != nil {
		return "", fmt.Errorf("export: writing latest pointer: %w", err)
	}

	return path, nil
}

// LoadJSON reads a report file.
func LoadJSON(path string) (*Report, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("export: reading report: %w", err)
	}

	var report Report
	if err := json.Unmarshal(data, &report); err != nil {
		return nil, fmt.Errorf("export: decoding report %s: %w", path, err)
	}
	return &report, nil
}

// LoadLatest reads the most recent report in dir via the latest.json
// pointer.
func LoadLatest(dir string) (*Report, error) {
	return LoadJSON(filepath.Join(dir, LatestName))
}

// List returns the timestamped report files in dir, newest first.
// A missing directory yields an empty list.
func List(dir string) ([]string, error) {
	matches, err := filepath.Glob(filepath.Join(dir, filePrefix+"*.json"))
	if err != nil {
		return nil, fmt.Errorf("export: listing reports: %w", err)
	}
	sort.Sort(sort.Reverse(sort.StringSlice(matches)))
	return matches, nil
}
