// Package chart draws a single country's index history as a PNG line chart.
package chart

import (
	"fmt"
	"image/color"
	"io"
	"strings"

	"gonum.org/v1/plot"
	"gonum.org/v1/plot/plotter"
	"gonum.org/v1/plot/vg"

	"github.com/okian/wuimap/internal/domain/frames"
	"github.com/okian/wuimap/internal/domain/model"
	"github.com/okian/wuimap/internal/domain/reshape"
)

// Size of the rendered image.
const (
	DefaultWidth  = 8 * vg.Inch
	DefaultHeight = 4 * vg.Inch
)

var (
	seriesColor = color.RGBA{R: 0x31, G: 0x36, B: 0x95, A: 0xff}
	capColor    = color.RGBA{R: 0xa5, G: 0x00, B: 0x26, A: 0xff}
)

// Country writes a PNG of the country's values over time to w. The color
// cap of scale is drawn as a dashed line so saturated months stand out.
func Country(w io.Writer, ds model.Dataset, code string, scale frames.ColorScale) (int64, error) {
	code = strings.ToUpper(strings.TrimSpace(code))
	series := reshape.Series(ds, code)
	if len(series) == 0 {
		return 0, fmt.Errorf("%w: %q", ErrUnknownCountry, code)
	}

	p := plot.New()
	p.Title.Text = code
	p.Title.TextStyle.Font.Size = vg.Points(14)
	p.Y.Label.Text = "Uncertainty"
	p.X.Tick.Marker = plot.TimeTicks{Format: model.MonthLayout}

	points := make(plotter.XYs, len(series))
	for i, r := range series {
		points[i].X = float64(r.Date.Unix())
		points[i].Y = r.Value
	}
	line, err := plotter.NewLine(points)
	if err != nil {
		return 0, fmt.Errorf("%w: %w", ErrDraw, err)
	}
	line.Color = seriesColor
	line.Width = vg.Points(1.5)

	capLine := plotter.NewFunction(func(float64) float64 { return scale.Max })
	capLine.Color = capColor
	capLine.Dashes = []vg.Length{vg.Points(5), vg.Points(5)}

	p.Add(plotter.NewGrid(), line, capLine)
	p.Legend.Add("index", line)
	p.Legend.Add(fmt.Sprintf("cap %.2f", scale.Max), capLine)
	p.Legend.Top = true

	if p.Y.Max < scale.Max {
		p.Y.Max = scale.Max * 1.05
	}

	wt, err := p.WriterTo(DefaultWidth, DefaultHeight, "png")
	if err != nil {
		return 0, fmt.Errorf("%w: %w", ErrDraw, err)
	}
	n, err := wt.WriteTo(w)
	if err != nil {
		return n, fmt.Errorf("%w: %w", ErrDraw, err)
	}
	return n, nil
}
