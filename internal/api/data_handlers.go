package api

import (
	"fmt"
	"net/http"
	"strconv"
	"strings"

	"safetyhub/domain/chart"
	"safetyhub/domain/table"
	"safetyhub/internal"
	"safetyhub/internal/transform"
	"safetyhub/ports"

	"github.com/gin-gonic/gin"
)

const defaultCollection = "default_collection"

type processRequest struct {
	Data *table.Table `json:"data"`
	transform.Options
}

type visualizeRequest struct {
	Data *table.Table `json:"data"`
	chart.Request
}

type uploadRequest struct {
	Data           *table.Table `json:"data"`
	CollectionName string       `json:"collection_name"`
}

// DataHandler serves table processing, charts and collection storage.
type DataHandler struct {
	store  ports.DocumentStore
	charts ports.ChartRenderer
	logger *internal.Logger
}

func NewDataHandler(store ports.DocumentStore, charts ports.ChartRenderer, logger *internal.Logger) *DataHandler {
	return &DataHandler{
		store:  store,
		charts: charts,
		logger: logger,
	}
}

// ProcessData applies the requested transforms and returns the table with its statistics.
func (h *DataHandler) ProcessData(c *gin.Context) {
	var req processRequest
	if !bind(c, &req) || !requireData(c, req.Data) {
		return
	}

	result, err := transform.Process(req.Data, req.Options)
	if err != nil {
		fail(c, h.logger, "process_data", err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"status":     "success",
		"data":       result.Data,
		"statistics": result.Statistics,
	})
}

// Visualize renders the requested chart as a Plotly figure.
func (h *DataHandler) Visualize(c *gin.Context) {
	var req visualizeRequest
	if !bind(c, &req) || !requireData(c, req.Data) {
		return
	}

	figure, err := h.charts.Render(req.Data, req.Request)
	if err != nil {
		fail(c, h.logger, "visualize", err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"status":        "success",
		"visualization": figure,
	})
}

// Upload writes the records into a collection with positional ids.
func (h *DataHandler) Upload(c *gin.Context) {
	var req uploadRequest
	if !bind(c, &req) || !requireData(c, req.Data) {
		return
	}
	collection := req.CollectionName
	if collection == "" {
		collection = defaultCollection
	}

	n, err := h.store.BulkUpsert(c.Request.Context(), collection, req.Data)
	if err != nil {
		fail(c, h.logger, "upload", err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"status":  "success",
		"message": fmt.Sprintf("Uploaded %d records to %s", n, collection),
	})
}

// Collection returns the documents of one collection, optionally filtered by
// the field, op and value query parameters.
func (h *DataHandler) Collection(c *gin.Context) {
	name := c.Param("name")

	var keep func(table.Value) bool
	field := c.Query("field")
	if field != "" {
		var err error
		if keep, err = compareWith(c.DefaultQuery("op", "=="), c.Query("value")); err != nil {
			respondError(c, http.StatusBadRequest, err.Error())
			return
		}
	}

	records, err := h.store.Stream(c.Request.Context(), name)
	if err != nil {
		fail(c, h.logger, "collection", err)
		return
	}
	if keep != nil {
		if j, ok := records.ColumnIndex(field); ok {
			records = records.Filter(func(row []table.Value) bool { return keep(row[j]) })
		} else {
			records = table.New(records.ColumnNames()...)
		}
	}

	c.JSON(http.StatusOK, gin.H{
		"status":     "success",
		"collection": name,
		"count":      records.NumRows(),
		"data":       records,
	})
}

// compareWith builds a predicate for a query filter. Numeric query values
// compare numerically; anything else compares as text.
func compareWith(op, raw string) (func(table.Value) bool, error) {
	num, err := strconv.ParseFloat(raw, 64)
	numeric := err == nil
	order := func(v table.Value) (int, bool) {
		if v.IsMissing() || v.IsNumeric() != numeric {
			return 0, false
		}
		if !numeric {
			return strings.Compare(v.Text(), raw), true
		}
		switch f := v.AsFloat64(); {
		case f < num:
			return -1, true
		case f > num:
			return 1, true
		default:
			return 0, true
		}
	}

	var accept func(int) bool
	switch op {
	case "==", "=":
		accept = func(c int) bool { return c == 0 }
	case "!=":
		accept = func(c int) bool { return c != 0 }
	case "<":
		accept = func(c int) bool { return c < 0 }
	case "<=":
		accept = func(c int) bool { return c <= 0 }
	case ">":
		accept = func(c int) bool { return c > 0 }
	case ">=":
		accept = func(c int) bool { return c >= 0 }
	default:
		return nil, fmt.Errorf("unsupported operator %q", op)
	}
	return func(v table.Value) bool {
		c, ok := order(v)
		if !ok {
			return op == "!="
		}
		return accept(c)
	}, nil
}
