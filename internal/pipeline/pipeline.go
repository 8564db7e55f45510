// Package pipeline turns raw Harvest time entries into the ordered,
// rule-processed span list of a monthly report. It is pure: no I/O, no
// globals, everything comes in through the arguments.
package pipeline

import (
	"fmt"
	"sort"
	"time"

	"github.com/azdkit/hhiwi/internal/harvest"
	"github.com/azdkit/hhiwi/internal/model"
)

// Options is the rule configuration for one pipeline run.
type Options struct {
	// MergeDaily consolidates all spans recorded on the same calendar day
	// into a single span before any further processing.
	MergeDaily bool
	// GrantMonthlyLeave injects MonthlyLeaveHours as already-used leave.
	// The leave only enters the balance equation, it is not materialized
	// as a span.
	GrantMonthlyLeave bool
	MonthlyLeaveHours float64
	// ClipOvertime removes an equal share of any excess over the target
	// from every span so the reported total matches the contract.
	ClipOvertime bool
	// ContractedMonthlyHours is the monthly working-time target in hours.
	ContractedMonthlyHours float64
}

// Result is the pipeline output, assembled into a model.Report by the caller.
type Result struct {
	Spans []model.TimeSpan
	// CarryOverSeconds is the month's balance: positive when under target,
	// negative when over. Clipping changes the displayed spans but not this
	// value.
	CarryOverSeconds int64
	// LeaveHours is the leave that entered the balance equation.
	LeaveHours float64
}

// Run executes the aggregation pipeline for the given target month and year:
// convert, filter, optionally merge per day, apply leave, balance against the
// contracted hours, optionally clip overtime, and sort chronologically.
//
// A month without any matching entries yields a valid empty result; clipping
// is skipped in that case. A malformed entry or a span too short to absorb
// its clipping share aborts the run with an error.
func Run(entries []harvest.TimeEntry, month, year int, opts Options) (Result, error) {
	spans := make([]model.TimeSpan, 0, len(entries))
	for _, entry := range entries {
		ts, err := convert(entry)
		if err != nil {
			return Result{}, err
		}
		spans = append(spans, ts)
	}

	spans = filterMonth(spans, month, year)

	if opts.MergeDaily {
		spans = mergeDaily(spans)
	}

	var leave float64
	if opts.GrantMonthlyLeave {
		leave = opts.MonthlyLeaveHours
	}

	var total time.Duration
	for _, ts := range spans {
		total += ts.Duration()
	}
	targetSeconds := int64(opts.ContractedMonthlyHours * 3600)
	leaveSeconds := int64(leave * 3600)
	excessSeconds := int64(total.Seconds()) - targetSeconds - leaveSeconds

	if opts.ClipOvertime && excessSeconds > 0 && len(spans) > 0 {
		share := excessSeconds / int64(len(spans))
		for i := range spans {
			if err := spans[i].ExtendEnd(-time.Duration(share) * time.Second); err != nil {
				return Result{}, fmt.Errorf("clipping %ds of overtime per span: %w", share, err)
			}
		}
	}

	sort.SliceStable(spans, func(i, j int) bool {
		return spans[i].Start.Before(spans[j].Start)
	})

	return Result{
		Spans:            spans,
		CarryOverSeconds: -excessSeconds,
		LeaveHours:       leave,
	}, nil
}

// convert maps one raw entry to a span: the entry's creation time is the
// start, the booked hour count determines the end, and the task name becomes
// the single label.
func convert(entry harvest.TimeEntry) (model.TimeSpan, error) {
	end := entry.CreatedAt.Add(time.Duration(entry.Hours * float64(time.Hour)))
	ts, err := model.NewTimeSpan(entry.CreatedAt, end, []string{entry.Task.Name})
	if err != nil {
		return model.TimeSpan{}, fmt.Errorf("converting entry created %s: %w",
			entry.CreatedAt.Format(time.RFC3339), err)
	}
	return ts, nil
}

// filterMonth keeps only spans whose start falls in the target month and year.
func filterMonth(spans []model.TimeSpan, month, year int) []model.TimeSpan {
	kept := spans[:0]
	for _, ts := range spans {
		if int(ts.Start.Month()) == month && ts.Start.Year() == year {
			kept = append(kept, ts)
		}
	}
	return kept
}

// mergeDaily groups spans by the calendar day of their start and folds each
// group, in start order, into a single span per day.
func mergeDaily(spans []model.TimeSpan) []model.TimeSpan {
	byDay := make(map[int][]model.TimeSpan)
	var days []int
	for _, ts := range spans {
		day := ts.Start.Day()
		if _, ok := byDay[day]; !ok {
			days = append(days, day)
		}
		byDay[day] = append(byDay[day], ts)
	}
	sort.Ints(days)

	merged := make([]model.TimeSpan, 0, len(days))
	for _, day := range days {
		group := byDay[day]
		sort.SliceStable(group, func(i, j int) bool {
			return group[i].Start.Before(group[j].Start)
		})
		acc := group[0]
		for _, ts := range group[1:] {
			acc = acc.MergeWith(ts)
		}
		merged = append(merged, acc)
	}
	return merged
}
