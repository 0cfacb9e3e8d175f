// Package chart describes chart requests and the Plotly-compatible figures
// rendered for them.
package chart

import (
	"strings"
)

// Kind is a supported chart type.
type Kind string

const (
	Bar       Kind = "bar"
	Scatter   Kind = "scatter"
	Line      Kind = "line"
	Histogram Kind = "histogram"
	Heatmap   Kind = "heatmap"
	Box       Kind = "box"
)

// ParseKind normalizes a chart type name. Unknown names render as bar charts.
func ParseKind(s string) Kind {
	switch k := Kind(strings.ToLower(strings.TrimSpace(s))); k {
	case Bar, Scatter, Line, Histogram, Heatmap, Box:
		return k
	default:
		return Bar
	}
}

// DefaultTitle is the title used when the request carries none.
func (k Kind) DefaultTitle() string {
	switch k {
	case Scatter:
		return "Scatter Plot"
	case Line:
		return "Line Chart"
	case Histogram:
		return "Histogram"
	case Heatmap:
		return "Correlation Heatmap"
	case Box:
		return "Box Plot"
	default:
		return "Bar Chart"
	}
}

// Request selects the chart kind and the columns it plots.
type Request struct {
	Kind  string `json:"chart_type"`
	X     string `json:"x_column"`
	Y     string `json:"y_column"`
	Color string `json:"color_column"`
	Title string `json:"title"`
}

// Trace is one Plotly data series.
type Trace struct {
	Type        string        `json:"type"`
	Name        string        `json:"name,omitempty"`
	Mode        string        `json:"mode,omitempty"`
	X           []interface{} `json:"x,omitempty"`
	Y           []interface{} `json:"y,omitempty"`
	Z           [][]*float64  `json:"z,omitempty"`
	Colorscale  string        `json:"colorscale,omitempty"`
	Orientation string        `json:"orientation,omitempty"`
}

// Title is a Plotly layout title.
type Title struct {
	Text string `json:"text"`
}

// Axis is a Plotly axis.
type Axis struct {
	Title Title `json:"title"`
}

// Layout is the Plotly figure layout.
type Layout struct {
	Title   Title  `json:"title"`
	XAxis   *Axis  `json:"xaxis,omitempty"`
	YAxis   *Axis  `json:"yaxis,omitempty"`
	BarMode string `json:"barmode,omitempty"`
}

// Figure is a complete Plotly figure.
type Figure struct {
	Data   []Trace `json:"data"`
	Layout Layout  `json:"layout"`
}
