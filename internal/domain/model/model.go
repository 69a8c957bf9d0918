// Package model holds the uncertainty-index data shapes shared across the
// loader, the reshaper and the frame builder.
package model

import "time"

// MonthLayout formats the month bucket key, e.g. "2020-01".
const MonthLayout = "2006-01"

// LabelLayout formats the human-readable month label, e.g. "January 2020".
const LabelLayout = "January 2006"

// Cell is one value cell of the wide table. Valid is false for blanks.
type Cell struct {
	Value float64
	Valid bool
}

// Float returns a valid cell holding v.
func Float(v float64) Cell { return Cell{Value: v, Valid: true} }

// Null returns a blank cell.
func Null() Cell { return Cell{} }

// WideRow is one spreadsheet row: a date and one cell per country column.
type WideRow struct {
	Date   time.Time
	Values []Cell
}

// WideTable is the spreadsheet as loaded: one date column and one value
// column per country. Rows keep their source order.
type WideTable struct {
	DateColumn string
	Countries  []string
	Rows       []WideRow
}

// Cells returns the number of value cells, blanks included.
func (t WideTable) Cells() int {
	return len(t.Countries) * len(t.Rows)
}

// Record is a single observation of one country in one month.
type Record struct {
	Date    time.Time `json:"date"`
	Month   string    `json:"month"`
	Country string    `json:"country"`
	Value   float64   `json:"value"`
}

// Dataset is the long-form collection of records, ordered by date.
// It is built once and never mutated afterwards.
type Dataset struct {
	Records   []Record
	Countries []string
}

// Len returns the number of records.
func (d Dataset) Len() int { return len(d.Records) }

// MonthKey truncates t to its year-month bucket.
func MonthKey(t time.Time) string {
	return t.Format(MonthLayout)
}

// MonthLabel renders a month key as "January 2020". Keys that do not parse
// are returned unchanged.
func MonthLabel(month string) string {
	t, err := time.Parse(MonthLayout, month)
	if err != nil {
		return month
	}
	return t.Format(LabelLayout)
}
