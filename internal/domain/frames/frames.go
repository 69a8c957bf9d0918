// Package frames builds the per-month choropleth snapshots that make up the
// animation, together with the global color scale they share.
package frames

import (
	"fmt"
	"math"

	"github.com/okian/wuimap/internal/domain/model"
	"github.com/okian/wuimap/internal/domain/reshape"
)

// ColorScale holds the color bounds shared by every frame of a run.
type ColorScale struct {
	Min float64 `json:"min"`
	Max float64 `json:"max"`
}

// Clamp maps v into the scale. Values above Max saturate.
func (c ColorScale) Clamp(v float64) float64 {
	return math.Max(c.Min, math.Min(v, c.Max))
}

// Entry is one country's cell in a frame.
type Entry struct {
	Country string  `json:"country"`
	Value   float64 `json:"value"`
	Color   float64 `json:"color"`
	Missing bool    `json:"missing,omitempty"`
}

// Frame is the snapshot of one month.
type Frame struct {
	Month   string  `json:"month"`
	Label   string  `json:"label"`
	Entries []Entry `json:"entries"`
}

// Lookup returns the entry of country, if the frame has one.
func (f Frame) Lookup(country string) (Entry, bool) {
	for _, e := range f.Entries {
		if e.Country == country {
			return e, true
		}
	}
	return Entry{}, false
}

// Sequence is the ordered set of frames plus the state every frame shares.
type Sequence struct {
	Frames  []Frame
	Scale   ColorScale
	Initial int
	Options Options
}

// Len returns the number of frames.
func (s Sequence) Len() int { return len(s.Frames) }

// At returns the frame at index i.
func (s Sequence) At(i int) (Frame, error) {
	if i < 0 || i >= len(s.Frames) {
		return Frame{}, fmt.Errorf("%w: %d of %d", ErrFrameIndex, i, len(s.Frames))
	}
	return s.Frames[i], nil
}

// InitialFrame returns the frame the figure opens on.
func (s Sequence) InitialFrame() Frame {
	return s.Frames[s.Initial]
}

// Scale computes the global color bounds: the smallest observed value and
// the fixed cap.
func Scale(ds model.Dataset, colorCap float64) (ColorScale, error) {
	if ds.Len() == 0 {
		return ColorScale{}, ErrEmptyDataset
	}
	lo := math.Inf(1)
	for _, r := range ds.Records {
		if r.Value < lo {
			lo = r.Value
		}
	}
	if !(colorCap > lo) {
		return ColorScale{}, fmt.Errorf("%w: min %.4g, cap %.4g", ErrInvalidScale, lo, colorCap)
	}
	return ColorScale{Min: lo, Max: colorCap}, nil
}

// Build derives one frame per distinct month of ds. The dataset is not
// modified; the returned sequence owns its slices.
func Build(ds model.Dataset, opts Options) (Sequence, error) {
	if err := opts.validate(); err != nil {
		return Sequence{}, err
	}
	scale, err := Scale(ds, opts.ColorCap)
	if err != nil {
		return Sequence{}, err
	}

	months := reshape.Months(ds, opts.MonthOrder)
	groups := reshape.GroupByMonth(ds)

	seq := Sequence{
		Frames:  make([]Frame, 0, len(months)),
		Scale:   scale,
		Options: opts,
	}
	for _, month := range months {
		seq.Frames = append(seq.Frames, buildFrame(month, groups[month], ds.Countries, scale, opts))
	}
	if opts.InitialFrame == InitialLast {
		seq.Initial = len(seq.Frames) - 1
	}
	return seq, nil
}

func buildFrame(month string, records []model.Record, countries []string, scale ColorScale, opts Options) Frame {
	// Several dates may share a month; the latest one wins per country.
	latest := make(map[string]model.Record, len(records))
	order := make([]string, 0, len(records))
	for _, r := range records {
		prev, ok := latest[r.Country]
		if !ok {
			order = append(order, r.Country)
		}
		if !ok || !r.Date.Before(prev.Date) {
			latest[r.Country] = r
		}
	}

	f := Frame{Month: month, Label: model.MonthLabel(month)}
	if opts.Missing == MissingNeutral {
		neutral := scale.Clamp(opts.NeutralValue)
		f.Entries = make([]Entry, 0, len(countries))
		for _, c := range countries {
			r, ok := latest[c]
			if !ok {
				f.Entries = append(f.Entries, Entry{Country: c, Color: neutral, Missing: true})
				continue
			}
			f.Entries = append(f.Entries, Entry{Country: c, Value: r.Value, Color: scale.Clamp(r.Value)})
		}
		return f
	}

	f.Entries = make([]Entry, 0, len(order))
	for _, c := range order {
		r := latest[c]
		f.Entries = append(f.Entries, Entry{Country: c, Value: r.Value, Color: scale.Clamp(r.Value)})
	}
	return f
}
