package chart

import (
	"strings"

	"github.com/wcharczuk/go-chart/v2/drawing"
)

// Theme is the color set injected into every chart
type Theme struct {
	Name       string
	Background drawing.Color
	Text       drawing.Color
	Grid       drawing.Color
	Bar        drawing.Color
	BarStroke  drawing.Color
}

var (
	// Light is used unless the viewer prefers a dark scheme
	Light = Theme{
		Name:       "light",
		Background: drawing.ColorFromHex("ffffff"),
		Text:       drawing.ColorFromHex("344767"),
		Grid:       drawing.ColorFromHex("e9ecef"),
		Bar:        drawing.ColorFromHex("1a73e8"),
		BarStroke:  drawing.ColorFromHex("1662c4"),
	}

	// Dark matches the dashboard's dark sidebar
	Dark = Theme{
		Name:       "dark",
		Background: drawing.ColorFromHex("1a2035"),
		Text:       drawing.ColorFromHex("ffffff"),
		Grid:       drawing.ColorFromHex("3a416f"),
		Bar:        drawing.ColorFromHex("49a3f1"),
		BarStroke:  drawing.ColorFromHex("7cbcf5"),
	}
)

// ParseTheme maps "dark" to Dark and "light" to Light. Anything else yields fallback.
func ParseTheme(name string, fallback Theme) Theme {
	switch strings.ToLower(strings.TrimSpace(name)) {
	case "dark":
		return Dark
	case "light":
		return Light
	default:
		return fallback
	}
}
