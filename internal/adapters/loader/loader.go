// Package loader reads the uncertainty-index workbook into a wide table.
package loader

import (
	"context"
	"fmt"
	"io"
	"math"
	"strconv"
	"strings"
	"time"

	"github.com/xuri/excelize/v2"

	"github.com/okian/wuimap/internal/domain/model"
	"github.com/okian/wuimap/pkg/logger"
)

// Default workbook layout.
const (
	DefaultSheet      = "T1"
	DefaultDateColumn = "date"
)

// blanks are cell texts treated as missing values.
var blanks = map[string]struct{}{
	"":     {},
	"#N/A": {},
	"NA":   {},
	"N/A":  {},
	"NaN":  {},
	"nan":  {},
	"-":    {},
}

// dateLayouts are tried in order for text dates.
var dateLayouts = []string{
	"2006-01-02",
	"2006-01-02 15:04:05",
	"2006-01-02T15:04:05Z07:00",
	"2006-01",
	"1/2/2006",
	"01/02/2006",
	"Jan 2006",
	"January 2006",
}

// Loader reads one sheet of a workbook.
type Loader struct {
	sheet      string
	dateColumn string
	logger     logger.Logger
}

// Option applies a configuration option to the Loader.
type Option func(*Loader)

// WithSheet selects the worksheet.
func WithSheet(sheet string) Option {
	return func(l *Loader) {
		if sheet != "" {
			l.sheet = sheet
		}
	}
}

// WithDateColumn sets the header of the date column.
func WithDateColumn(name string) Option {
	return func(l *Loader) {
		if name != "" {
			l.dateColumn = name
		}
	}
}

// WithLogger sets the logger.
func WithLogger(lg logger.Logger) Option {
	return func(l *Loader) {
		if lg != nil {
			l.logger = lg
		}
	}
}

// New creates a Loader.
func New(opts ...Option) *Loader {
	l := &Loader{
		sheet:      DefaultSheet,
		dateColumn: DefaultDateColumn,
		logger:     logger.Nop(),
	}
	for _, opt := range opts {
		opt(l)
	}
	return l
}

// Load opens the workbook at path and reads the configured sheet.
func (l *Loader) Load(ctx context.Context, path string) (model.WideTable, error) {
	f, err := excelize.OpenFile(path)
	if err != nil {
		return model.WideTable{}, fmt.Errorf("%w: %s: %w", ErrOpenWorkbook, path, err)
	}
	defer func() { _ = f.Close() }()

	l.logger.Debug(ctx, "workbook opened", logger.String("path", path), logger.String("sheet", l.sheet))
	return l.read(ctx, f)
}

// LoadReader reads the configured sheet from an in-memory workbook.
func (l *Loader) LoadReader(ctx context.Context, r io.Reader) (model.WideTable, error) {
	f, err := excelize.OpenReader(r)
	if err != nil {
		return model.WideTable{}, fmt.Errorf("%w: %w", ErrOpenWorkbook, err)
	}
	defer func() { _ = f.Close() }()
	return l.read(ctx, f)
}

func (l *Loader) read(ctx context.Context, f *excelize.File) (model.WideTable, error) {
	if idx, err := f.GetSheetIndex(l.sheet); err != nil || idx < 0 {
		return model.WideTable{}, fmt.Errorf("%w: %q (have %s)", ErrMissingSheet, l.sheet, strings.Join(f.GetSheetList(), ", "))
	}

	// Raw values keep dates as serial numbers instead of locale-formatted text.
	rows, err := f.GetRows(l.sheet, excelize.Options{RawCellValue: true})
	if err != nil {
		return model.WideTable{}, fmt.Errorf("%w: %w", ErrReadSheet, err)
	}
	if len(rows) == 0 {
		return model.WideTable{}, fmt.Errorf("%w: sheet %q is empty", ErrEmptySheet, l.sheet)
	}

	table, err := l.parse(rows)
	if err != nil {
		return model.WideTable{}, err
	}
	l.logger.Info(ctx, "sheet loaded",
		logger.String("sheet", l.sheet),
		logger.Int("rows", len(table.Rows)),
		logger.Int("countries", len(table.Countries)),
	)
	return table, nil
}

func (l *Loader) parse(rows [][]string) (model.WideTable, error) {
	header := rows[0]
	dateIdx := -1
	for i, h := range header {
		if strings.EqualFold(strings.TrimSpace(h), l.dateColumn) {
			dateIdx = i
			break
		}
	}
	if dateIdx < 0 {
		return model.WideTable{}, fmt.Errorf("%w: %q", ErrMissingDateColumn, l.dateColumn)
	}

	table := model.WideTable{DateColumn: header[dateIdx]}
	cols := make([]int, 0, len(header))
	seenCountry := make(map[string]struct{}, len(header))
	for i, h := range header {
		name := strings.TrimSpace(h)
		if i == dateIdx || name == "" {
			continue
		}
		if _, dup := seenCountry[name]; dup {
			return model.WideTable{}, fmt.Errorf("%w: column %q", ErrDuplicateColumn, name)
		}
		seenCountry[name] = struct{}{}
		table.Countries = append(table.Countries, name)
		cols = append(cols, i)
	}

	seenDate := make(map[time.Time]int, len(rows))
	for r := 1; r < len(rows); r++ {
		row := rows[r]
		raw := cell(row, dateIdx)
		if raw == "" && allBlank(row) {
			continue
		}
		cellName, _ := excelize.CoordinatesToCellName(dateIdx+1, r+1)
		date, err := ParseDate(raw)
		if err != nil {
			return model.WideTable{}, fmt.Errorf("%w: %s %q: %w", ErrMalformedDate, cellName, raw, err)
		}
		if prev, dup := seenDate[date]; dup {
			return model.WideTable{}, fmt.Errorf("%w: %s repeats row %d", ErrDuplicateDate, date.Format("2006-01-02"), prev)
		}
		seenDate[date] = r + 1

		values := make([]model.Cell, len(cols))
		for j, c := range cols {
			v, err := ParseValue(cell(row, c))
			if err != nil {
				name, _ := excelize.CoordinatesToCellName(c+1, r+1)
				return model.WideTable{}, fmt.Errorf("%w: %s: %w", ErrMalformedValue, name, err)
			}
			values[j] = v
		}
		table.Rows = append(table.Rows, model.WideRow{Date: date, Values: values})
	}

	if len(table.Rows) == 0 || len(table.Countries) == 0 {
		return model.WideTable{}, fmt.Errorf("%w: sheet has no data rows or no country columns", ErrEmptySheet)
	}
	return table, nil
}

// ParseDate accepts Excel serial numbers, ISO dates, "YYYY-MM", "YYYYmM"
// and a few common text layouts. The result is in UTC.
func ParseDate(raw string) (time.Time, error) {
	s := strings.TrimSpace(raw)
	if s == "" {
		return time.Time{}, ErrBlankDate
	}
	if serial, err := strconv.ParseFloat(s, 64); err == nil && !strings.ContainsAny(s, "-/") {
		t, err := excelize.ExcelDateToTime(serial, false)
		if err != nil {
			return time.Time{}, err
		}
		return t.UTC(), nil
	}
	if t, ok := parseMonthCode(s); ok {
		return t, nil
	}
	for _, layout := range dateLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return t.UTC(), nil
		}
	}
	return time.Time{}, ErrUnknownDateFormat
}

// parseMonthCode handles the "1990m1" style used in macro datasets.
func parseMonthCode(s string) (time.Time, bool) {
	i := strings.IndexAny(s, "mM")
	if i != 4 {
		return time.Time{}, false
	}
	year, err := strconv.Atoi(s[:i])
	if err != nil {
		return time.Time{}, false
	}
	month, err := strconv.Atoi(s[i+1:])
	if err != nil || month < 1 || month > 12 {
		return time.Time{}, false
	}
	return time.Date(year, time.Month(month), 1, 0, 0, 0, 0, time.UTC), true
}

// ParseValue parses one value cell. Blank markers and any spelling of NaN
// yield an invalid cell; infinities are rejected.
func ParseValue(raw string) (model.Cell, error) {
	s := strings.TrimSpace(raw)
	if _, ok := blanks[s]; ok {
		return model.Null(), nil
	}
	v, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return model.Cell{}, fmt.Errorf("not a number: %q", raw)
	}
	switch {
	case math.IsNaN(v):
		return model.Null(), nil
	case math.IsInf(v, 0):
		return model.Cell{}, fmt.Errorf("not finite: %q", raw)
	}
	return model.Float(v), nil
}

func cell(row []string, i int) string {
	if i >= len(row) {
		return ""
	}
	return strings.TrimSpace(row[i])
}

func allBlank(row []string) bool {
	for _, c := range row {
		if strings.TrimSpace(c) != "" {
			return false
		}
	}
	return true
}
