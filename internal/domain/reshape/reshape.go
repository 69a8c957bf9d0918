// Package reshape converts the wide spreadsheet table into long-form records
// and derives the month buckets used as animation keys.
package reshape

import (
	"fmt"
	"sort"
	"strings"

	"github.com/okian/wuimap/internal/domain/model"
)

// MonthOrder selects how distinct months are ordered.
type MonthOrder string

const (
	// OrderSorted sorts month keys ascending.
	OrderSorted MonthOrder = "sorted"
	// OrderSource keeps months in the order they first appear in the data.
	OrderSource MonthOrder = "source"
)

// ParseMonthOrder validates a configured month order.
func ParseMonthOrder(s string) (MonthOrder, error) {
	switch MonthOrder(strings.ToLower(strings.TrimSpace(s))) {
	case "", OrderSorted:
		return OrderSorted, nil
	case OrderSource:
		return OrderSource, nil
	default:
		return "", fmt.Errorf("%w: %q", ErrUnknownMonthOrder, s)
	}
}

// Melt turns the wide table into one record per non-blank cell. Records are
// emitted row by row, so the dataset stays ordered by date when the sheet is.
// Blank cells produce no record.
func Melt(t model.WideTable) model.Dataset {
	ds := model.Dataset{
		Records:   make([]model.Record, 0, t.Cells()),
		Countries: append([]string(nil), t.Countries...),
	}
	for _, row := range t.Rows {
		month := model.MonthKey(row.Date)
		for i, cell := range row.Values {
			if !cell.Valid || i >= len(t.Countries) {
				continue
			}
			ds.Records = append(ds.Records, model.Record{
				Date:    row.Date,
				Month:   month,
				Country: t.Countries[i],
				Value:   cell.Value,
			})
		}
	}
	return ds
}

// Months returns the distinct month keys of ds in the requested order.
func Months(ds model.Dataset, order MonthOrder) []string {
	seen := make(map[string]struct{})
	months := make([]string, 0)
	for _, r := range ds.Records {
		if _, ok := seen[r.Month]; ok {
			continue
		}
		seen[r.Month] = struct{}{}
		months = append(months, r.Month)
	}
	if order != OrderSource {
		sort.Strings(months)
	}
	return months
}

// GroupByMonth indexes records by month key. Record order inside each group
// follows the dataset.
func GroupByMonth(ds model.Dataset) map[string][]model.Record {
	groups := make(map[string][]model.Record)
	for _, r := range ds.Records {
		groups[r.Month] = append(groups[r.Month], r)
	}
	return groups
}

// Series returns the records of one country in dataset order.
func Series(ds model.Dataset, country string) []model.Record {
	out := make([]model.Record, 0)
	for _, r := range ds.Records {
		if r.Country == country {
			out = append(out, r)
		}
	}
	return out
}
