package archive_test

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/azdkit/hhiwi/internal/archive"
	"github.com/azdkit/hhiwi/internal/model"
)

func report(t *testing.T, month, year int, carryOver int64) model.Report {
	t.Helper()
	start := time.Date(year, time.Month(month), 5, 9, 0, 0, 0, time.UTC)
	ts, err := model.NewTimeSpan(start, start.Add(3*time.Hour), []string{"work"})
	if err != nil {
		t.Fatalf("NewTimeSpan: %v", err)
	}
	return model.Report{
		Spans:           []model.TimeSpan{ts},
		Name:            "Mustermann, Max",
		PersonnelNumber: "1234567",
		Institute:       "ITI",
		WorkingHours:    40,
		HourlyRate:      12.5,
		CarryOver:       carryOver,
		Month:           month,
		Year:            year,
	}
}

func TestLoadMissingDir(t *testing.T) {
	arch, err := archive.Load(filepath.Join(t.TempDir(), "does-not-exist"))
	if err != nil {
		t.Fatalf("Load on missing dir: %v", err)
	}
	if len(arch) != 0 {
		t.Errorf("archive entries = %d, want 0", len(arch))
	}
}

func TestStoreAndLoad(t *testing.T) {
	dir := t.TempDir()
	r := report(t, 4, 2024, -1800)

	path, err := archive.Store(dir, r)
	if err != nil {
		t.Fatalf("Store: %v", err)
	}
	if want := filepath.Join(dir, "2024_4.json"); path != want {
		t.Errorf("Store path = %q, want %q", path, want)
	}

	arch, err := archive.Load(dir)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	got, ok := arch[archive.Key{Month: 4, Year: 2024}]
	if !ok {
		t.Fatalf("record for 4/2024 not found, keys: %v", arch)
	}
	if got.CarryOver != -1800 || got.Name != r.Name || len(got.Spans) != 1 {
		t.Errorf("loaded record = %+v, want %+v", got, r)
	}
}

func TestStoreOverwritesSameKey(t *testing.T) {
	dir := t.TempDir()
	if _, err := archive.Store(dir, report(t, 4, 2024, 100)); err != nil {
		t.Fatalf("Store: %v", err)
	}
	if _, err := archive.Store(dir, report(t, 4, 2024, 200)); err != nil {
		t.Fatalf("Store (overwrite): %v", err)
	}

	arch, err := archive.Load(dir)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if len(arch) != 1 {
		t.Fatalf("archive entries = %d, want 1", len(arch))
	}
	if got := arch[archive.Key{Month: 4, Year: 2024}].CarryOver; got != 200 {
		t.Errorf("CarryOver after overwrite = %d, want 200", got)
	}
}

func TestLoadCorruptRecord(t *testing.T) {
	dir := t.TempDir()
	bad := filepath.Join(dir, "2024_4.json")
	if err := os.WriteFile(bad, []byte("{not json"), 0o600); err != nil {
		t.Fatalf("WriteFile: %v", err)
	}

	_, err := archive.Load(dir)
	if err == nil {
		t.Fatal("Load on corrupt record: expected error")
	}
	if !strings.Contains(err.Error(), bad) {
		t.Errorf("error %q does not name the offending file %q", err, bad)
	}
}

func TestLoadSkipsNonRecords(t *testing.T) {
	dir := t.TempDir()
	if err := os.WriteFile(filepath.Join(dir, "notes.txt"), []byte("hello"), 0o600); err != nil {
		t.Fatalf("WriteFile: %v", err)
	}
	if err := os.Mkdir(filepath.Join(dir, "sub"), 0o700); err != nil {
		t.Fatalf("Mkdir: %v", err)
	}

	arch, err := archive.Load(dir)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if len(arch) != 0 {
		t.Errorf("archive entries = %d, want 0", len(arch))
	}
}

func TestFindPreviousRoundTrip(t *testing.T) {
	dir := t.TempDir()
	if _, err := archive.Store(dir, report(t, 4, 2024, 5400)); err != nil {
		t.Fatalf("Store: %v", err)
	}

	arch, err := archive.Load(dir)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}

	prev, ok := arch.FindPrevious(5, 2024)
	if !ok {
		t.Fatal("FindPrevious(5, 2024): no record found")
	}
	if prev.CarryOver != 5400 {
		t.Errorf("previous CarryOver = %d, want 5400", prev.CarryOver)
	}

	if _, ok := arch.FindPrevious(4, 2024); ok {
		t.Error("FindPrevious(4, 2024): unexpectedly found a record")
	}
}

func TestFindPreviousYearRollover(t *testing.T) {
	arch := archive.Archive{
		archive.Key{Month: 12, Year: 2023}: report(t, 12, 2023, -600),
	}
	prev, ok := arch.FindPrevious(1, 2024)
	if !ok {
		t.Fatal("FindPrevious(1, 2024): no record found")
	}
	if prev.CarryOver != -600 {
		t.Errorf("previous CarryOver = %d, want -600", prev.CarryOver)
	}
}
