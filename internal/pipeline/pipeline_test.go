package pipeline_test

import (
	"errors"
	"reflect"
	"testing"
	"time"

	"github.com/azdkit/hhiwi/internal/harvest"
	"github.com/azdkit/hhiwi/internal/model"
	"github.com/azdkit/hhiwi/internal/pipeline"
)

func entry(created time.Time, hours float64, task string) harvest.TimeEntry {
	return harvest.TimeEntry{
		CreatedAt: created,
		Hours:     hours,
		Task:      harvest.Task{Name: task},
	}
}

func at(day, hour int) time.Time {
	return time.Date(2024, 4, day, hour, 0, 0, 0, time.UTC)
}

func TestConvert(t *testing.T) {
	res, err := pipeline.Run(
		[]harvest.TimeEntry{entry(at(5, 9), 1.5, "coding")},
		4, 2024, pipeline.Options{ContractedMonthlyHours: 40},
	)
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	if len(res.Spans) != 1 {
		t.Fatalf("spans = %d, want 1", len(res.Spans))
	}
	ts := res.Spans[0]
	if !ts.Start.Equal(at(5, 9)) {
		t.Errorf("Start = %v, want %v", ts.Start, at(5, 9))
	}
	if got := ts.Duration(); got != 90*time.Minute {
		t.Errorf("Duration = %v, want 90m", got)
	}
	if !reflect.DeepEqual(ts.Labels, []string{"coding"}) {
		t.Errorf("Labels = %v, want [coding]", ts.Labels)
	}
}

func TestFilterMonthAndYear(t *testing.T) {
	entries := []harvest.TimeEntry{
		entry(time.Date(2024, 3, 28, 9, 0, 0, 0, time.UTC), 1, "march"),
		entry(at(5, 9), 1, "april"),
		entry(time.Date(2023, 4, 5, 9, 0, 0, 0, time.UTC), 1, "last year"),
		entry(at(12, 9), 1, "april"),
	}
	// Input order must not matter.
	reversed := make([]harvest.TimeEntry, len(entries))
	for i, e := range entries {
		reversed[len(entries)-1-i] = e
	}

	for _, input := range [][]harvest.TimeEntry{entries, reversed} {
		res, err := pipeline.Run(input, 4, 2024, pipeline.Options{ContractedMonthlyHours: 40})
		if err != nil {
			t.Fatalf("Run: %v", err)
		}
		if len(res.Spans) != 2 {
			t.Fatalf("spans = %d, want 2", len(res.Spans))
		}
		for _, ts := range res.Spans {
			if got := ts.Description(); got != "april" {
				t.Errorf("kept span %q, want only april 2024 entries", got)
			}
		}
	}
}

func TestMergeDaily(t *testing.T) {
	entries := []harvest.TimeEntry{
		entry(at(5, 9), 1, "a"),
		entry(at(5, 10), 1, "b"),
		entry(at(5, 11), 1, "c"),
		entry(at(6, 9), 2, "other day"),
	}
	res, err := pipeline.Run(entries, 4, 2024, pipeline.Options{
		MergeDaily:             true,
		ContractedMonthlyHours: 40,
	})
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	if len(res.Spans) != 2 {
		t.Fatalf("spans = %d, want 2 (one per day)", len(res.Spans))
	}

	day5 := res.Spans[0]
	if got := day5.Duration(); got != 3*time.Hour {
		t.Errorf("merged duration = %v, want 3h", got)
	}
	if !day5.Start.Equal(at(5, 9)) {
		t.Errorf("merged start = %v, want %v", day5.Start, at(5, 9))
	}
	if !reflect.DeepEqual(day5.Labels, []string{"a", "b", "c"}) {
		t.Errorf("merged labels = %v, want [a b c]", day5.Labels)
	}

	if got := res.Spans[1].Duration(); got != 2*time.Hour {
		t.Errorf("unmerged other-day duration = %v, want 2h", got)
	}
}

func TestClipOvertime(t *testing.T) {
	// 1h + 1h + 1h10m = 3h plus 600s of excess over a 3h contract.
	entries := []harvest.TimeEntry{
		entry(at(5, 9), 1, "a"),
		entry(at(6, 9), 1, "b"),
		entry(at(7, 9), 600.0/3600.0+1, "c"),
	}
	res, err := pipeline.Run(entries, 4, 2024, pipeline.Options{
		ClipOvertime:           true,
		ContractedMonthlyHours: 3,
	})
	if err != nil {
		t.Fatalf("Run: %v", err)
	}

	wantDurations := []time.Duration{
		time.Hour - 200*time.Second,
		time.Hour - 200*time.Second,
		time.Hour + 400*time.Second,
	}
	for i, ts := range res.Spans {
		if got := ts.Duration(); got != wantDurations[i] {
			t.Errorf("span %d duration = %v, want %v", i, got, wantDurations[i])
		}
		if ts.End.Before(ts.Start) {
			t.Errorf("span %d end %v before start %v", i, ts.End, ts.Start)
		}
	}

	// Clipping does not change the reported balance.
	if res.CarryOverSeconds != -600 {
		t.Errorf("CarryOverSeconds = %d, want -600", res.CarryOverSeconds)
	}
}

func TestClipOvertimeTooShortSpan(t *testing.T) {
	// The flat per-span deduction exceeds the second span's 60s length, which
	// must fail loudly instead of producing a negative span.
	entries := []harvest.TimeEntry{
		entry(at(5, 9), 4, "long"),
		entry(at(6, 9), 60.0/3600.0, "short"),
	}
	_, err := pipeline.Run(entries, 4, 2024, pipeline.Options{
		ClipOvertime:           true,
		ContractedMonthlyHours: 1,
	})
	if !errors.Is(err, model.ErrInvalidInterval) {
		t.Fatalf("Run error = %v, want ErrInvalidInterval", err)
	}
}

func TestLeaveEntersBalanceOnly(t *testing.T) {
	entries := []harvest.TimeEntry{entry(at(5, 9), 6, "a")}
	res, err := pipeline.Run(entries, 4, 2024, pipeline.Options{
		GrantMonthlyLeave:      true,
		MonthlyLeaveHours:      2,
		ContractedMonthlyHours: 3,
	})
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	if res.LeaveHours != 2 {
		t.Errorf("LeaveHours = %v, want 2", res.LeaveHours)
	}
	if len(res.Spans) != 1 {
		t.Errorf("spans = %d, want 1 (leave must not materialize a span)", len(res.Spans))
	}
	// 6h worked - 3h target - 2h leave = 1h over.
	if res.CarryOverSeconds != -3600 {
		t.Errorf("CarryOverSeconds = %d, want -3600", res.CarryOverSeconds)
	}
}

func TestEmptyMonth(t *testing.T) {
	res, err := pipeline.Run(nil, 4, 2024, pipeline.Options{
		ClipOvertime:           true,
		ContractedMonthlyHours: 4,
	})
	if err != nil {
		t.Fatalf("Run on empty month: %v", err)
	}
	if len(res.Spans) != 0 {
		t.Errorf("spans = %d, want 0", len(res.Spans))
	}
	// Fully under target: the whole contract is carried over.
	if res.CarryOverSeconds != 4*3600 {
		t.Errorf("CarryOverSeconds = %d, want %d", res.CarryOverSeconds, 4*3600)
	}
}

func TestSortedChronologically(t *testing.T) {
	entries := []harvest.TimeEntry{
		entry(at(20, 9), 1, "late"),
		entry(at(5, 9), 1, "early"),
		entry(at(12, 9), 1, "middle"),
	}
	res, err := pipeline.Run(entries, 4, 2024, pipeline.Options{ContractedMonthlyHours: 40})
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	for i := 1; i < len(res.Spans); i++ {
		if res.Spans[i].Start.Before(res.Spans[i-1].Start) {
			t.Errorf("spans out of order at %d: %v before %v",
				i, res.Spans[i].Start, res.Spans[i-1].Start)
		}
	}
}

func TestMergeAndClipScenario(t *testing.T) {
	// Two bookings on 2024-04-05 (3h task A, 2h task B) against a 4h contract
	// with daily merge and clipping: one merged 5h span, 3600s excess, clipped
	// to exactly 4h, and a reported balance of -3600s.
	entries := []harvest.TimeEntry{
		entry(at(5, 9), 3, "A"),
		entry(at(5, 13), 2, "B"),
	}
	res, err := pipeline.Run(entries, 4, 2024, pipeline.Options{
		MergeDaily:             true,
		ClipOvertime:           true,
		ContractedMonthlyHours: 4,
	})
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	if len(res.Spans) != 1 {
		t.Fatalf("spans = %d, want 1", len(res.Spans))
	}
	ts := res.Spans[0]
	if got := ts.Duration(); got != 4*time.Hour {
		t.Errorf("clipped duration = %v, want 4h", got)
	}
	if !ts.Start.Equal(at(5, 9)) {
		t.Errorf("Start = %v, want %v", ts.Start, at(5, 9))
	}
	if !reflect.DeepEqual(ts.Labels, []string{"A", "B"}) {
		t.Errorf("Labels = %v, want [A B]", ts.Labels)
	}
	if res.CarryOverSeconds != -3600 {
		t.Errorf("CarryOverSeconds = %d, want -3600", res.CarryOverSeconds)
	}
}
