package chart

import (
	"fmt"
	"io"

	gochart "github.com/wcharczuk/go-chart/v2"
)

const (
	// DefaultWidth and DefaultHeight size the rendered chart
	DefaultWidth  = 640
	DefaultHeight = 320

	minBarWidth = 8
	maxBarWidth = 60
)

// Bar is one labelled value
type Bar struct {
	Label string
	Value float64
}

// BarOptions configures RenderBar
type BarOptions struct {
	Title  string
	Width  int
	Height int
	Theme  Theme
}

// RenderBar writes a themed PNG bar chart. An empty bar list renders a single
// zero-height placeholder so the widget keeps its shape.
func RenderBar(w io.Writer, bars []Bar, opts BarOptions) error {
	if opts.Width <= 0 {
		opts.Width = DefaultWidth
	}
	if opts.Height <= 0 {
		opts.Height = DefaultHeight
	}
	if opts.Theme.Name == "" {
		opts.Theme = Light
	}
	theme := opts.Theme

	if len(bars) == 0 {
		bars = []Bar{{Label: "-", Value: 0}}
	}

	max := 0.0
	values := make([]gochart.Value, 0, len(bars))
	for _, b := range bars {
		if b.Value > max {
			max = b.Value
		}
		values = append(values, gochart.Value{
			Label: b.Label,
			Value: b.Value,
			Style: gochart.Style{
				FillColor:   theme.Bar,
				StrokeColor: theme.BarStroke,
				StrokeWidth: 1,
			},
		})
	}
	if max <= 0 {
		max = 1
	}

	barWidth := opts.Width / (len(bars) * 2)
	if barWidth < minBarWidth {
		barWidth = minBarWidth
	}
	if barWidth > maxBarWidth {
		barWidth = maxBarWidth
	}

	textStyle := gochart.Style{FontColor: theme.Text, StrokeColor: theme.Grid}
	graph := gochart.BarChart{
		Title:      opts.Title,
		TitleStyle: gochart.Style{FontColor: theme.Text, Hidden: opts.Title == ""},
		Width:      opts.Width,
		Height:     opts.Height,
		BarWidth:   barWidth,
		BarSpacing: barWidth,
		Background: gochart.Style{
			FillColor:   theme.Background,
			StrokeColor: theme.Background,
			Padding:     gochart.Box{Top: 40, Left: 10, Right: 10, Bottom: 10},
		},
		Canvas: gochart.Style{FillColor: theme.Background, StrokeColor: theme.Background},
		XAxis:  textStyle,
		YAxis: gochart.YAxis{
			Style: textStyle,
			Range: &gochart.ContinuousRange{Min: 0, Max: max * 1.1},
			ValueFormatter: func(v interface{}) string {
				if f, ok := v.(float64); ok {
					return fmt.Sprintf("%.0f", f)
				}
				return ""
			},
		},
		Bars: values,
	}

	if err := graph.Render(gochart.PNG, w); err != nil {
		return fmt.Errorf("rendering bar chart: %w", err)
	}
	return nil
}
