package frames

import (
	"fmt"
	"strings"

	"github.com/okian/wuimap/internal/domain/reshape"
)

// InitialFrame selects which month the figure opens on.
type InitialFrame string

const (
	InitialFirst InitialFrame = "first"
	InitialLast  InitialFrame = "last"
)

// MissingPolicy selects how a country without a value in a month renders.
type MissingPolicy string

const (
	// MissingAbsent leaves the country out of the frame ("no data").
	MissingAbsent MissingPolicy = "absent"
	// MissingNeutral includes the country colored with Options.NeutralValue.
	MissingNeutral MissingPolicy = "neutral"
)

// Default option values.
const (
	DefaultColorCap      = 1.3
	DefaultLabelX        = 0.5
	DefaultLabelY        = 0.15
	DefaultLabelFontSize = 36
)

// Position is an overlay position in paper coordinates.
type Position struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
}

// Options is the configuration record for the frame builder.
type Options struct {
	InitialFrame  InitialFrame
	LabelPosition Position
	LabelFontSize int
	ColorCap      float64
	Autoplay      bool
	MonthOrder    reshape.MonthOrder
	Missing       MissingPolicy
	NeutralValue  float64
}

// DefaultOptions returns the options used by the published animation:
// open on the last month, label at (0.5, 0.15), cap at 1.3, no autoplay.
func DefaultOptions() Options {
	return Options{
		InitialFrame:  InitialLast,
		LabelPosition: Position{X: DefaultLabelX, Y: DefaultLabelY},
		LabelFontSize: DefaultLabelFontSize,
		ColorCap:      DefaultColorCap,
		Autoplay:      false,
		MonthOrder:    reshape.OrderSorted,
		Missing:       MissingAbsent,
	}
}

// ParseInitialFrame validates a configured initial frame.
func ParseInitialFrame(s string) (InitialFrame, error) {
	switch InitialFrame(strings.ToLower(strings.TrimSpace(s))) {
	case InitialFirst:
		return InitialFirst, nil
	case "", InitialLast:
		return InitialLast, nil
	default:
		return "", fmt.Errorf("%w: initial frame %q", ErrInvalidOptions, s)
	}
}

// ParseMissingPolicy validates a configured missing-value policy.
func ParseMissingPolicy(s string) (MissingPolicy, error) {
	switch MissingPolicy(strings.ToLower(strings.TrimSpace(s))) {
	case "", MissingAbsent:
		return MissingAbsent, nil
	case MissingNeutral:
		return MissingNeutral, nil
	default:
		return "", fmt.Errorf("%w: missing values %q", ErrInvalidOptions, s)
	}
}

func (o Options) validate() error {
	switch o.InitialFrame {
	case InitialFirst, InitialLast:
	default:
		return fmt.Errorf("%w: initial frame %q", ErrInvalidOptions, o.InitialFrame)
	}
	switch o.Missing {
	case MissingAbsent, MissingNeutral:
	default:
		return fmt.Errorf("%w: missing values %q", ErrInvalidOptions, o.Missing)
	}
	switch o.MonthOrder {
	case reshape.OrderSorted, reshape.OrderSource:
	default:
		return fmt.Errorf("%w: month order %q", ErrInvalidOptions, o.MonthOrder)
	}
	if o.LabelFontSize <= 0 {
		return fmt.Errorf("%w: label font size %d", ErrInvalidOptions, o.LabelFontSize)
	}
	return nil
}
