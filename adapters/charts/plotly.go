// Package charts renders chart requests into Plotly figure JSON.
package charts

import (
	"errors"

	"safetyhub/domain/chart"
	"safetyhub/domain/core"
	"safetyhub/domain/table"
	"safetyhub/internal"
	"safetyhub/internal/transform"
	"safetyhub/ports"
)

const heatmapColorscale = "Viridis"

var errNoNumericColumns = errors.New("no numeric columns to correlate")

// PlotlyRenderer builds Plotly figures from tables.
type PlotlyRenderer struct {
	logger *internal.Logger
}

var _ ports.ChartRenderer = (*PlotlyRenderer)(nil)

// NewPlotlyRenderer creates a renderer.
func NewPlotlyRenderer() *PlotlyRenderer {
	return &PlotlyRenderer{logger: internal.DefaultLogger.With("charts")}
}

// Render builds the figure for req. Unknown chart kinds render as bar charts.
func (r *PlotlyRenderer) Render(data *table.Table, req chart.Request) (*chart.Figure, error) {
	kind := chart.ParseKind(req.Kind)
	title := req.Title
	if title == "" {
		title = kind.DefaultTitle()
	}
	if err := validate(kind, req); err != nil {
		return nil, err
	}
	r.logger.Debug("Rendering %s chart over %d rows", kind, data.NumRows())

	var (
		fig *chart.Figure
		err error
	)
	switch kind {
	case chart.Scatter:
		fig, err = scatter(data, req)
	case chart.Line:
		fig, err = xy(data, req, chart.Trace{Type: "scatter", Mode: "lines"})
	case chart.Histogram:
		fig, err = histogram(data, req.X)
	case chart.Heatmap:
		fig, err = heatmap(data)
	case chart.Box:
		fig, err = box(data, req.X)
	default:
		fig, err = xy(data, req, chart.Trace{Type: "bar"})
	}
	if err != nil {
		return nil, err
	}
	fig.Layout.Title = chart.Title{Text: title}
	return fig, nil
}

func validate(kind chart.Kind, req chart.Request) error {
	switch kind {
	case chart.Histogram, chart.Box:
		if req.X == "" {
			return core.NewConfigurationError("x_column", "required for "+string(kind))
		}
	case chart.Heatmap:
	default:
		if req.X == "" || req.Y == "" {
			return core.NewConfigurationError("x_column and y_column", "required for this chart type")
		}
	}
	return nil
}

func column(data *table.Table, name string) ([]interface{}, error) {
	values, ok := data.Column(name)
	if !ok {
		return nil, core.NewColumnNotFoundError(name)
	}
	out := make([]interface{}, len(values))
	for i, v := range values {
		out[i] = v.Interface()
	}
	return out, nil
}

func axes(x, y string) (*chart.Axis, *chart.Axis) {
	return &chart.Axis{Title: chart.Title{Text: x}}, &chart.Axis{Title: chart.Title{Text: y}}
}

func xy(data *table.Table, req chart.Request, trace chart.Trace) (*chart.Figure, error) {
	x, err := column(data, req.X)
	if err != nil {
		return nil, err
	}
	y, err := column(data, req.Y)
	if err != nil {
		return nil, err
	}
	trace.X, trace.Y = x, y
	fig := &chart.Figure{Data: []chart.Trace{trace}}
	fig.Layout.XAxis, fig.Layout.YAxis = axes(req.X, req.Y)
	return fig, nil
}

// scatter splits points into one trace per color value, in first-seen order.
func scatter(data *table.Table, req chart.Request) (*chart.Figure, error) {
	if req.Color == "" {
		return xy(data, req, chart.Trace{Type: "scatter", Mode: "markers"})
	}
	x, err := column(data, req.X)
	if err != nil {
		return nil, err
	}
	y, err := column(data, req.Y)
	if err != nil {
		return nil, err
	}
	colors, ok := data.Column(req.Color)
	if !ok {
		return nil, core.NewColumnNotFoundError(req.Color)
	}

	index := make(map[string]int)
	var traces []chart.Trace
	for i, c := range colors {
		key := c.Text()
		k, seen := index[key]
		if !seen {
			k = len(traces)
			index[key] = k
			traces = append(traces, chart.Trace{Type: "scatter", Mode: "markers", Name: key})
		}
		traces[k].X = append(traces[k].X, x[i])
		traces[k].Y = append(traces[k].Y, y[i])
	}
	fig := &chart.Figure{Data: traces}
	fig.Layout.XAxis, fig.Layout.YAxis = axes(req.X, req.Y)
	return fig, nil
}

func histogram(data *table.Table, name string) (*chart.Figure, error) {
	x, err := column(data, name)
	if err != nil {
		return nil, err
	}
	fig := &chart.Figure{Data: []chart.Trace{{Type: "histogram", X: x}}}
	fig.Layout.XAxis, fig.Layout.YAxis = axes(name, "count")
	return fig, nil
}

func box(data *table.Table, name string) (*chart.Figure, error) {
	y, err := column(data, name)
	if err != nil {
		return nil, err
	}
	fig := &chart.Figure{Data: []chart.Trace{{Type: "box", Name: name, Y: y}}}
	fig.Layout.YAxis = &chart.Axis{Title: chart.Title{Text: name}}
	return fig, nil
}

func heatmap(data *table.Table) (*chart.Figure, error) {
	m := transform.Correlation(data)
	if len(m.Columns) == 0 {
		return nil, core.NewDataError("heatmap", "", errNoNumericColumns)
	}
	labels := make([]interface{}, len(m.Columns))
	for i, c := range m.Columns {
		labels[i] = c
	}
	return &chart.Figure{Data: []chart.Trace{{
		Type:       "heatmap",
		X:          labels,
		Y:          labels,
		Z:          m.Values,
		Colorscale: heatmapColorscale,
	}}}, nil
}
