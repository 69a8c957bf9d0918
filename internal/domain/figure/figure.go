// Package figure composes a frame sequence into a complete animated Plotly
// figure. Compose is pure: every call returns a fresh value.
package figure

import (
	"time"

	"github.com/okian/wuimap/internal/domain/frames"
)

// Style carries the presentation settings that are not part of the frame
// builder options.
type Style struct {
	Title              string
	SourceText         string
	Projection         string
	ColorScale         string
	ReverseScale       bool
	ColorBarTitle      string
	CoastlineColor     string
	FrameDuration      time.Duration
	TransitionDuration time.Duration
	Easing             string
}

// DefaultStyle matches the published animation.
func DefaultStyle() Style {
	return Style{
		Title:              "IMF World Uncertainty Index by Country",
		SourceText:         "Source: https://worlduncertaintyindex.com/",
		Projection:         "natural earth",
		ColorScale:         DefaultColorScale,
		ReverseScale:       true,
		ColorBarTitle:      "Uncertainty",
		CoastlineColor:     "black",
		FrameDuration:      2000 * time.Millisecond,
		TransitionDuration: 1000 * time.Millisecond,
		Easing:             "cubic-in-out",
	}
}

const (
	traceType     = "choropleth"
	locationMode  = "ISO-3"
	colorAxisRef  = "coloraxis"
	geoRef        = "geo"
	paperRef      = "paper"
	sourceY       = -0.2
	hoverTemplate = "<b>%{hovertext}</b><br>Uncertainty: %{customdata:.3f}<extra></extra>"
)

// Compose builds the figure for seq. The base data and the visible label are
// those of the initial frame, and the slider starts on it.
func Compose(seq frames.Sequence, style Style) Figure {
	fig := Figure{
		Frames: make([]Frame, 0, seq.Len()),
	}
	for _, f := range seq.Frames {
		fig.Frames = append(fig.Frames, Frame{
			Name:   f.Month,
			Data:   []Trace{TraceFor(f)},
			Layout: FrameLayout{Annotations: Annotations(f, seq.Options, style)},
		})
	}
	if seq.Len() == 0 {
		fig.Layout = layout(seq, style, nil)
		return fig
	}

	initial := seq.InitialFrame()
	fig.Data = []Trace{TraceFor(initial)}
	fig.Layout = layout(seq, style, Annotations(initial, seq.Options, style))
	return fig
}

// TraceFor converts a frame into a choropleth trace. Colors use the clamped
// value; hover shows the raw value.
func TraceFor(f frames.Frame) Trace {
	t := Trace{
		Type:          traceType,
		Name:          f.Month,
		Locations:     make([]string, 0, len(f.Entries)),
		LocationMode:  locationMode,
		Z:             make([]float64, 0, len(f.Entries)),
		CustomData:    make([]float64, 0, len(f.Entries)),
		HoverText:     make([]string, 0, len(f.Entries)),
		HoverTemplate: hoverTemplate,
		ColorAxis:     colorAxisRef,
		Geo:           geoRef,
	}
	for _, e := range f.Entries {
		t.Locations = append(t.Locations, e.Country)
		t.Z = append(t.Z, e.Color)
		t.CustomData = append(t.CustomData, e.Value)
		t.HoverText = append(t.HoverText, e.Country)
	}
	return t
}

// Annotations returns the overlays shown with frame f: the month label and
// the source attribution.
func Annotations(f frames.Frame, opts frames.Options, style Style) []Annotation {
	out := []Annotation{{
		Text:      f.Label,
		X:         opts.LabelPosition.X,
		Y:         opts.LabelPosition.Y,
		XRef:      paperRef,
		YRef:      paperRef,
		XAnchor:   "center",
		ShowArrow: false,
		Font:      &Font{Size: opts.LabelFontSize},
	}}
	if style.SourceText != "" {
		out = append(out, Annotation{
			Text:      style.SourceText,
			X:         0.5,
			Y:         sourceY,
			XRef:      paperRef,
			YRef:      paperRef,
			ShowArrow: false,
		})
	}
	return out
}

func layout(seq frames.Sequence, style Style, notes []Annotation) Layout {
	stops, err := ColorStops(style.ColorScale)
	if err != nil {
		stops, _ = ColorStops(DefaultColorScale)
	}
	l := Layout{
		Title: Title{Text: style.Title},
		Geo: Geo{
			Projection:     Projection{Type: style.Projection},
			ShowCoastlines: true,
			CoastlineColor: style.CoastlineColor,
		},
		ColorAxis: ColorAxis{
			CMin:         seq.Scale.Min,
			CMax:         seq.Scale.Max,
			ColorScale:   stops,
			ReverseScale: style.ReverseScale,
			ColorBar:     ColorBar{Title: Title{Text: style.ColorBarTitle}},
		},
		Annotations: notes,
	}
	if seq.Len() == 0 {
		return l
	}

	transition := Transition{Duration: ms(style.TransitionDuration), Easing: style.Easing}
	play := AnimationOptions{
		Frame:       FrameTiming{Duration: ms(style.FrameDuration), Redraw: true},
		Transition:  transition,
		FromCurrent: true,
	}
	pause := AnimationOptions{
		Frame:      FrameTiming{Duration: 0, Redraw: false},
		Transition: Transition{Duration: 0},
		Mode:       "immediate",
	}
	l.UpdateMenus = []UpdateMenu{{
		Type:       "buttons",
		Direction:  "left",
		ShowActive: false,
		X:          0.1,
		Y:          0,
		XAnchor:    "right",
		YAnchor:    "top",
		Buttons: []Button{
			{Label: "&#9654;", Method: "animate", Args: []any{nil, play}},
			{Label: "&#9724;", Method: "animate", Args: []any{[]any{nil}, pause}},
		},
	}}

	steps := make([]SliderStep, 0, seq.Len())
	for _, f := range seq.Frames {
		steps = append(steps, SliderStep{
			Label:  f.Month,
			Method: "animate",
			Args: []any{[]string{f.Month}, AnimationOptions{
				Frame:      FrameTiming{Duration: ms(style.FrameDuration), Redraw: true},
				Transition: transition,
				Mode:       "immediate",
			}},
		})
	}
	l.Sliders = []Slider{{
		Active:       seq.Initial,
		X:            0.1,
		Y:            0,
		Len:          0.9,
		XAnchor:      "left",
		YAnchor:      "top",
		CurrentValue: CurrentValue{Prefix: "Month=", Visible: true},
		Transition:   transition,
		Steps:        steps,
	}}
	return l
}

func ms(d time.Duration) int {
	return int(d / time.Millisecond)
}
