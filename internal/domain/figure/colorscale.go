package figure

import (
	"fmt"
	"sort"
	"strings"
)

// DefaultColorScale is the palette used when a style names none.
const DefaultColorScale = "RdYlBu"

// reversedSuffix flips a palette, as in "RdYlBu_r".
const reversedSuffix = "_r"

// palettes are ColorBrewer 11-class diverging schemes. Plotly.js only knows a
// handful of named scales, so these are always sent as explicit stops.
var palettes = map[string][]string{
	"rdylbu": {
		"rgb(165,0,38)", "rgb(215,48,39)", "rgb(244,109,67)", "rgb(253,174,97)",
		"rgb(254,224,144)", "rgb(255,255,191)", "rgb(224,243,248)", "rgb(171,217,233)",
		"rgb(116,173,209)", "rgb(69,117,180)", "rgb(49,54,149)",
	},
	"rdbu": {
		"rgb(103,0,31)", "rgb(178,24,43)", "rgb(214,96,77)", "rgb(244,165,130)",
		"rgb(253,219,199)", "rgb(247,247,247)", "rgb(209,229,240)", "rgb(146,197,222)",
		"rgb(67,147,195)", "rgb(33,102,172)", "rgb(5,48,97)",
	},
	"rdylgn": {
		"rgb(165,0,38)", "rgb(215,48,39)", "rgb(244,109,67)", "rgb(253,174,97)",
		"rgb(254,224,139)", "rgb(255,255,191)", "rgb(217,239,139)", "rgb(166,217,106)",
		"rgb(102,189,99)", "rgb(26,152,80)", "rgb(0,104,55)",
	},
	"spectral": {
		"rgb(158,1,66)", "rgb(213,62,79)", "rgb(244,109,67)", "rgb(253,174,97)",
		"rgb(254,224,139)", "rgb(255,255,191)", "rgb(230,245,152)", "rgb(171,221,164)",
		"rgb(102,194,165)", "rgb(50,136,189)", "rgb(94,79,162)",
	},
}

// ColorStops resolves a palette name into evenly spaced [position, color]
// stops. Names are case-insensitive; a "_r" suffix reverses the palette.
func ColorStops(name string) ([][2]any, error) {
	key := strings.ToLower(strings.TrimSpace(name))
	if key == "" {
		key = strings.ToLower(DefaultColorScale)
	}
	reversed := strings.HasSuffix(key, reversedSuffix)
	key = strings.TrimSuffix(key, reversedSuffix)

	colors, ok := palettes[key]
	if !ok {
		return nil, fmt.Errorf("%w: %q (have %s)", ErrUnknownColorScale, name, strings.Join(paletteNames(), ", "))
	}

	n := len(colors)
	stops := make([][2]any, n)
	for i := range colors {
		c := colors[i]
		if reversed {
			c = colors[n-1-i]
		}
		stops[i] = [2]any{float64(i) / float64(n-1), c}
	}
	return stops, nil
}

func paletteNames() []string {
	names := make([]string, 0, len(palettes))
	for k := range palettes {
		names = append(names, k)
	}
	sort.Strings(names)
	return names
}
