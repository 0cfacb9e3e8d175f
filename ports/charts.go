package ports

import (
	"safetyhub/domain/chart"
	"safetyhub/domain/table"
)

// ChartRenderer turns a table and a chart request into a figure.
type ChartRenderer interface {
	Render(data *table.Table, req chart.Request) (*chart.Figure, error)
}
