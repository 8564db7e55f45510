package model

import (
	"encoding/json"
	"errors"
	"fmt"
	"sort"
	"strings"
	"time"
)

// ErrInvalidInterval is returned when an operation would produce a time span
// whose end lies before its start.
var ErrInvalidInterval = errors.New("time span end before start")

// TimeSpan is a single worked period with a start, an end and a set of task
// labels describing what was worked on.
type TimeSpan struct {
	Start  time.Time
	End    time.Time
	Labels []string
}

// NewTimeSpan constructs a TimeSpan. Labels are deduplicated and sorted so the
// slice behaves like a set. Returns ErrInvalidInterval if end < start.
func NewTimeSpan(start, end time.Time, labels []string) (TimeSpan, error) {
	if end.Before(start) {
		return TimeSpan{}, fmt.Errorf("%w: start=%s end=%s",
			ErrInvalidInterval, start.Format(time.RFC3339), end.Format(time.RFC3339))
	}
	return TimeSpan{Start: start, End: end, Labels: normalizeLabels(labels)}, nil
}

// normalizeLabels returns a sorted copy with duplicates and empty strings removed.
func normalizeLabels(labels []string) []string {
	seen := make(map[string]struct{}, len(labels))
	out := make([]string, 0, len(labels))
	for _, l := range labels {
		if l == "" {
			continue
		}
		if _, ok := seen[l]; ok {
			continue
		}
		seen[l] = struct{}{}
		out = append(out, l)
	}
	sort.Strings(out)
	return out
}

// Duration returns End - Start.
func (ts TimeSpan) Duration() time.Duration {
	return ts.End.Sub(ts.Start)
}

// Description joins the label set into a single display string.
func (ts TimeSpan) Description() string {
	return strings.Join(ts.Labels, ", ")
}

// Overlaps reports whether the two spans share any time. The test is
// symmetric: whichever span starts first must end strictly after the other
// one begins.
func (ts TimeSpan) Overlaps(other TimeSpan) bool {
	if ts.Start.Before(other.Start) {
		return ts.End.After(other.Start)
	}
	return other.End.After(ts.Start)
}

// ExtendEnd shifts End by delta (negative delta moves it earlier). Returns
// ErrInvalidInterval without modifying the span if the shift would push End
// before Start.
func (ts *TimeSpan) ExtendEnd(delta time.Duration) error {
	end := ts.End.Add(delta)
	if end.Before(ts.Start) {
		return fmt.Errorf("%w: shifting end by %s leaves only %s of span starting %s",
			ErrInvalidInterval, delta, ts.Duration(), ts.Start.Format(time.RFC3339))
	}
	ts.End = end
	return nil
}

// MergeWith combines two spans into a new one starting at ts.Start with a
// duration equal to the sum of both durations. Any gap between the spans is
// dropped, which is what turns several same-day bookings into one contiguous
// block. The label sets are unioned.
func (ts TimeSpan) MergeWith(other TimeSpan) TimeSpan {
	merged := TimeSpan{
		Start:  ts.Start,
		End:    ts.Start.Add(ts.Duration() + other.Duration()),
		Labels: normalizeLabels(append(append([]string{}, ts.Labels...), other.Labels...)),
	}
	return merged
}

// timeSpanRecord is the persisted form of a TimeSpan.
type timeSpanRecord struct {
	Start          string   `json:"start"`
	End            string   `json:"end"`
	DescriptionSet []string `json:"description_set"`
}

// MarshalJSON encodes the span with ISO-8601 timestamps and the label set as
// a plain list.
func (ts TimeSpan) MarshalJSON() ([]byte, error) {
	return json.Marshal(timeSpanRecord{
		Start:          ts.Start.Format(time.RFC3339),
		End:            ts.End.Format(time.RFC3339),
		DescriptionSet: ts.Labels,
	})
}

// UnmarshalJSON decodes a persisted span and re-validates the interval.
func (ts *TimeSpan) UnmarshalJSON(data []byte) error {
	var rec timeSpanRecord
	if err := json.Unmarshal(data, &rec); err != nil {
		return err
	}
	start, err := time.Parse(time.RFC3339, rec.Start)
	if err != nil {
		return fmt.Errorf("parsing span start %q: %w", rec.Start, err)
	}
	end, err := time.Parse(time.RFC3339, rec.End)
	if err != nil {
		return fmt.Errorf("parsing span end %q: %w", rec.End, err)
	}
	span, err := NewTimeSpan(start, end, rec.DescriptionSet)
	if err != nil {
		return err
	}
	*ts = span
	return nil
}
