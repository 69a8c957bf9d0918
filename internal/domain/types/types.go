// Package types contains the read shapes shared by the service and the HTTP API.
package types

import (
	"github.com/okian/wuimap/internal/domain/animation"
	"github.com/okian/wuimap/internal/domain/figure"
	"github.com/okian/wuimap/internal/domain/frames"
)

// Frame is one month ready to be drawn with Plotly.react.
type Frame struct {
	Index       int                 `json:"index"`
	Month       string              `json:"month"`
	Label       string              `json:"label"`
	Trace       figure.Trace        `json:"trace"`
	Annotations []figure.Annotation `json:"annotations"`
}

// NewFrame builds the view of frame f at position index.
func NewFrame(index int, f frames.Frame, opts frames.Options, style figure.Style) Frame {
	return Frame{
		Index:       index,
		Month:       f.Month,
		Label:       f.Label,
		Trace:       figure.TraceFor(f),
		Annotations: figure.Annotations(f, opts, style),
	}
}

// Session is a dashboard session with the frame it currently shows.
type Session struct {
	ID    string          `json:"id"`
	State animation.State `json:"state"`
	Frame Frame           `json:"frame"`
}

// Page holds what the dashboard page needs besides the figure.
type Page struct {
	Title          string `json:"title"`
	Footer         string `json:"footer"`
	PlotlyJSURL    string `json:"plotly_js_url"`
	TickIntervalMS int    `json:"tick_interval_ms"`
}
