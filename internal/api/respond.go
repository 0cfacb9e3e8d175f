package api

import (
	stderrors "errors"
	"io"
	"net/http"

	"safetyhub/domain/table"
	"safetyhub/internal"
	"safetyhub/internal/errors"

	"github.com/gin-gonic/gin"
)

const msgMissingData = "Missing data in request"

func respondError(c *gin.Context, status int, message string) {
	c.JSON(status, gin.H{
		"status":  "error",
		"message": message,
	})
}

// fail maps err onto an HTTP status and writes the error body.
func fail(c *gin.Context, logger *internal.Logger, op string, err error) {
	status := errors.HTTPStatus(err)
	if status >= http.StatusInternalServerError {
		logger.Error("Error in %s: %v", op, err)
	} else {
		logger.Warn("Rejected %s: %v", op, err)
	}
	respondError(c, status, err.Error())
}

// bind decodes the JSON body into req. It writes the error response and
// returns false when the body is unreadable.
func bind(c *gin.Context, req interface{}) bool {
	err := c.ShouldBindJSON(req)
	if err == nil {
		return true
	}
	var tooLarge *http.MaxBytesError
	switch {
	case stderrors.As(err, &tooLarge):
		respondError(c, http.StatusRequestEntityTooLarge, "Request body too large")
	case stderrors.Is(err, io.EOF):
		respondError(c, http.StatusBadRequest, msgMissingData)
	default:
		respondError(c, http.StatusBadRequest, "Invalid JSON: "+err.Error())
	}
	return false
}

// requireData rejects requests without a data field.
func requireData(c *gin.Context, data *table.Table) bool {
	if data == nil {
		respondError(c, http.StatusBadRequest, msgMissingData)
		return false
	}
	return true
}
