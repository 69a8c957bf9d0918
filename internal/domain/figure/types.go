package figure

// The types below mirror the subset of the Plotly figure schema used by the
// animated choropleth. Field names follow Plotly's JSON attribute names.

// Figure is a complete Plotly figure: base traces, layout and frames.
type Figure struct {
	Data   []Trace `json:"data"`
	Layout Layout  `json:"layout"`
	Frames []Frame `json:"frames"`
}

// Trace is a choropleth trace.
type Trace struct {
	Type          string    `json:"type"`
	Name          string    `json:"name,omitempty"`
	Locations     []string  `json:"locations"`
	LocationMode  string    `json:"locationmode"`
	Z             []float64 `json:"z"`
	CustomData    []float64 `json:"customdata,omitempty"`
	HoverText     []string  `json:"hovertext,omitempty"`
	HoverTemplate string    `json:"hovertemplate,omitempty"`
	ColorAxis     string    `json:"coloraxis"`
	Geo           string    `json:"geo"`
}

// Font is a Plotly font spec.
type Font struct {
	Size int `json:"size,omitempty"`
}

// Annotation is a text overlay in paper coordinates.
type Annotation struct {
	Text      string  `json:"text"`
	X         float64 `json:"x"`
	Y         float64 `json:"y"`
	XRef      string  `json:"xref"`
	YRef      string  `json:"yref"`
	XAnchor   string  `json:"xanchor,omitempty"`
	ShowArrow bool    `json:"showarrow"`
	Font      *Font   `json:"font,omitempty"`
}

// Title is a Plotly title.
type Title struct {
	Text string `json:"text"`
}

// Projection is a geo projection.
type Projection struct {
	Type string `json:"type"`
}

// Geo is the geo subplot layout.
type Geo struct {
	Projection     Projection `json:"projection"`
	ShowCoastlines bool       `json:"showcoastlines"`
	CoastlineColor string     `json:"coastlinecolor,omitempty"`
	ShowFrame      bool       `json:"showframe"`
}

// ColorBar is the color axis legend.
type ColorBar struct {
	Title Title `json:"title"`
}

// ColorAxis holds the shared color scale.
type ColorAxis struct {
	CMin         float64  `json:"cmin"`
	CMax         float64  `json:"cmax"`
	ColorScale   [][2]any `json:"colorscale"`
	ReverseScale bool     `json:"reversescale"`
	ColorBar     ColorBar `json:"colorbar"`
}

// FrameTiming is the frame part of animation options.
type FrameTiming struct {
	Duration int  `json:"duration"`
	Redraw   bool `json:"redraw"`
}

// Transition is a Plotly transition.
type Transition struct {
	Duration int    `json:"duration"`
	Easing   string `json:"easing,omitempty"`
}

// AnimationOptions is the second argument of Plotly.animate.
type AnimationOptions struct {
	Frame       FrameTiming `json:"frame"`
	Transition  Transition  `json:"transition"`
	Mode        string      `json:"mode,omitempty"`
	FromCurrent bool        `json:"fromcurrent,omitempty"`
}

// Button is an updatemenu button. Args are passed through to Plotly.
type Button struct {
	Label  string `json:"label"`
	Method string `json:"method"`
	Args   []any  `json:"args"`
}

// UpdateMenu is a row of buttons.
type UpdateMenu struct {
	Type       string   `json:"type"`
	Direction  string   `json:"direction,omitempty"`
	ShowActive bool     `json:"showactive"`
	X          float64  `json:"x"`
	Y          float64  `json:"y"`
	XAnchor    string   `json:"xanchor,omitempty"`
	YAnchor    string   `json:"yanchor,omitempty"`
	Buttons    []Button `json:"buttons"`
}

// SliderStep is one slider stop bound to a frame name.
type SliderStep struct {
	Label  string `json:"label"`
	Method string `json:"method"`
	Args   []any  `json:"args"`
}

// CurrentValue is the slider's value readout.
type CurrentValue struct {
	Prefix  string `json:"prefix"`
	Visible bool   `json:"visible"`
}

// Slider is the frame slider.
type Slider struct {
	Active       int          `json:"active"`
	X            float64      `json:"x"`
	Y            float64      `json:"y"`
	Len          float64      `json:"len"`
	XAnchor      string       `json:"xanchor,omitempty"`
	YAnchor      string       `json:"yanchor,omitempty"`
	CurrentValue CurrentValue `json:"currentvalue"`
	Transition   Transition   `json:"transition"`
	Steps        []SliderStep `json:"steps"`
}

// Layout is the figure layout.
type Layout struct {
	Title       Title        `json:"title"`
	Geo         Geo          `json:"geo"`
	ColorAxis   ColorAxis    `json:"coloraxis"`
	Annotations []Annotation `json:"annotations"`
	Sliders     []Slider     `json:"sliders,omitempty"`
	UpdateMenus []UpdateMenu `json:"updatemenus,omitempty"`
}

// FrameLayout is the per-frame layout patch.
type FrameLayout struct {
	Annotations []Annotation `json:"annotations"`
}

// Frame is one animation frame.
type Frame struct {
	Name   string      `json:"name"`
	Data   []Trace     `json:"data"`
	Layout FrameLayout `json:"layout"`
}
