package model

import (
	"encoding/json"
	"time"
)

// Report is the aggregated working-time documentation for one person and one
// calendar month. It is assembled once after the pipeline has run and is not
// modified afterwards.
type Report struct {
	Spans []TimeSpan

	Name            string
	PersonnelNumber string
	Institute       string
	// WorkingHours is the contracted monthly working-time target in hours.
	WorkingHours float64
	HourlyRate   float64
	// Leave is the leave granted (and assumed used) this month, in hours.
	Leave float64
	// CarryOverIn is the balance brought forward from the previous month's
	// report, in seconds.
	CarryOverIn int64
	// CarryOver is this month's computed balance in seconds: positive when
	// under target, negative when over. It is what the following month reads
	// back from the archive.
	CarryOver int64

	Month int
	Year  int
}

// TotalDuration sums the durations of all spans.
func (r Report) TotalDuration() time.Duration {
	var total time.Duration
	for _, ts := range r.Spans {
		total += ts.Duration()
	}
	return total
}

// reportRecord is the archive file schema. One record is written per
// (month, year).
type reportRecord struct {
	Name            string     `json:"name"`
	PersonnelNumber string     `json:"personnel_number"`
	Institute       string     `json:"institute"`
	WorkingHours    float64    `json:"working_hours"`
	HourlyRate      float64    `json:"hourly_rate"`
	Leave           float64    `json:"leave"`
	CarryOver       int64      `json:"carry_over"`
	CarryOverIn     int64      `json:"carry_over_in"`
	Month           int        `json:"month"`
	Year            int        `json:"year"`
	TimeSpans       []TimeSpan `json:"time_spans"`
}

func (r Report) MarshalJSON() ([]byte, error) {
	spans := r.Spans
	if spans == nil {
		spans = []TimeSpan{}
	}
	return json.Marshal(reportRecord{
		Name:            r.Name,
		PersonnelNumber: r.PersonnelNumber,
		Institute:       r.Institute,
		WorkingHours:    r.WorkingHours,
		HourlyRate:      r.HourlyRate,
		Leave:           r.Leave,
		CarryOver:       r.CarryOver,
		CarryOverIn:     r.CarryOverIn,
		Month:           r.Month,
		Year:            r.Year,
		TimeSpans:       spans,
	})
}

func (r *Report) UnmarshalJSON(data []byte) error {
	var rec reportRecord
	if err := json.Unmarshal(data, &rec); err != nil {
		return err
	}
	*r = Report{
		Spans:           rec.TimeSpans,
		Name:            rec.Name,
		PersonnelNumber: rec.PersonnelNumber,
		Institute:       rec.Institute,
		WorkingHours:    rec.WorkingHours,
		HourlyRate:      rec.HourlyRate,
		Leave:           rec.Leave,
		CarryOver:       rec.CarryOver,
		CarryOverIn:     rec.CarryOverIn,
		Month:           rec.Month,
		Year:            rec.Year,
	}
	return nil
}
