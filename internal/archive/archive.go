// Package archive persists monthly reports as one JSON record per
// (month, year) in a flat directory, and resolves the previous month's
// carry-over from it.
package archive

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/azdkit/hhiwi/internal/model"
	"github.com/azdkit/hhiwi/internal/timecalc"
)

// Key identifies one archived report.
type Key struct {
	Month int
	Year  int
}

// Archive is the in-memory index of all persisted reports, keyed by the
// month and year found inside each record, not by filename.
type Archive map[Key]model.Report

// Load scans dir non-recursively for .json records and deserializes each.
// A missing directory yields an empty archive; an unreadable or malformed
// record is an error naming the offending file.
func Load(dir string) (Archive, error) {
	arch := Archive{}

	files, err := os.ReadDir(dir)
	if os.IsNotExist(err) {
		return arch, nil
	}
	if err != nil {
		return nil, fmt.Errorf("reading archive directory %s: %w", dir, err)
	}

	for _, f := range files {
		if f.IsDir() || !strings.HasSuffix(f.Name(), ".json") {
			continue
		}
		path := filepath.Join(dir, f.Name())
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("reading archive record %s: %w", path, err)
		}
		var report model.Report
		if err := json.Unmarshal(data, &report); err != nil {
			return nil, fmt.Errorf("corrupt archive record %s: %w", path, err)
		}
		arch[Key{Month: report.Month, Year: report.Year}] = report
	}
	return arch, nil
}

// recordPath returns the file path for a report's (year, month) key.
func recordPath(dir string, report model.Report) string {
	return filepath.Join(dir, fmt.Sprintf("%d_%d.json", report.Year, report.Month))
}

// Store writes one record for the report, creating dir if needed. An existing
// record for the same (month, year) is replaced. The write goes through a
// temp file and rename so a crash never leaves a half-written record behind.
// It returns the path written.
func Store(dir string, report model.Report) (string, error) {
	if err := os.MkdirAll(dir, 0o700); err != nil {
		return "", fmt.Errorf("creating archive directory %s: %w", dir, err)
	}

	data, err := json.MarshalIndent(report, "", "  ")
	if err != nil {
		return "", fmt.Errorf("marshalling archive record: %w", err)
	}

	path := recordPath(dir, report)
	tmpPath := path + ".tmp"
	if err := os.WriteFile(tmpPath, data, 0o600); err != nil {
		return "", fmt.Errorf("writing archive temp file: %w", err)
	}
	if err := os.Rename(tmpPath, path); err != nil {
		_ = os.Remove(tmpPath)
		return "", fmt.Errorf("renaming archive temp file: %w", err)
	}
	return path, nil
}

// FindPrevious returns the archived report for the calendar month immediately
// before the target month/year, if one exists.
func (a Archive) FindPrevious(month, year int) (model.Report, bool) {
	prevMonth, prevYear := timecalc.PreviousMonth(month, year)
	report, ok := a[Key{Month: prevMonth, Year: prevYear}]
	return report, ok
}
