package api

import (
	"fmt"
	"net/http"
	"path/filepath"

	"safetyhub/domain/table"
	"safetyhub/internal"
	"safetyhub/internal/ml"

	"github.com/gin-gonic/gin"
)

type trainRequest struct {
	Data         *table.Table `json:"data"`
	TargetColumn string       `json:"target_column"`
	ModelType    string       `json:"model_type"`
	Algorithm    string       `json:"algorithm"`
	SaveModel    bool         `json:"save_model"`
	ModelPath    string       `json:"model_path"`
}

type predictRequest struct {
	Data      *table.Table `json:"data"`
	ModelPath string       `json:"model_path"`
}

// ModelHandler trains, compares and applies models.
type ModelHandler struct {
	modelPath string
	logger    *internal.Logger
}

func NewModelHandler(modelPath string, logger *internal.Logger) *ModelHandler {
	return &ModelHandler{
		modelPath: modelPath,
		logger:    logger,
	}
}

// resolve places a requested model file next to the default model. Only the
// base name of the request is used.
func (h *ModelHandler) resolve(requested string) string {
	if requested == "" {
		return h.modelPath
	}
	return filepath.Join(filepath.Dir(h.modelPath), filepath.Base(requested))
}

// validateTarget checks the target column and writes the error response when it fails.
func validateTarget(c *gin.Context, req *trainRequest) bool {
	if !requireData(c, req.Data) {
		return false
	}
	if req.TargetColumn == "" {
		respondError(c, http.StatusBadRequest, "target_column is required")
		return false
	}
	if !req.Data.HasColumn(req.TargetColumn) {
		respondError(c, http.StatusBadRequest, fmt.Sprintf("Target column %s not found in data", req.TargetColumn))
		return false
	}
	if req.ModelType == "" {
		req.ModelType = string(ml.Regression)
	}
	return true
}

// Train fits a model and optionally saves it.
func (h *ModelHandler) Train(c *gin.Context) {
	var req trainRequest
	if !bind(c, &req) || !validateTarget(c, &req) {
		return
	}
	if req.Algorithm == "" {
		req.Algorithm = ml.RandomForest.String()
	}

	model, err := ml.Select(req.ModelType, req.Algorithm)
	if err != nil {
		fail(c, h.logger, "train_model", err)
		return
	}
	score, err := model.Train(req.Data, req.TargetColumn, ml.DefaultTestFraction)
	if err != nil {
		fail(c, h.logger, "train_model", err)
		return
	}

	if req.SaveModel {
		if err := model.SaveFile(h.resolve(req.ModelPath)); err != nil {
			fail(c, h.logger, "train_model", err)
			return
		}
	}

	c.JSON(http.StatusOK, gin.H{
		"status":     "success",
		"score":      score,
		"model_type": string(model.Type()),
		"algorithm":  model.Algorithm().String(),
	})
}

// Compare scores every candidate algorithm on one split.
func (h *ModelHandler) Compare(c *gin.Context) {
	var req trainRequest
	if !bind(c, &req) || !validateTarget(c, &req) {
		return
	}

	comparison, err := ml.Compare(req.Data, req.TargetColumn, req.ModelType)
	if err != nil {
		fail(c, h.logger, "compare_models", err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"status":     "success",
		"comparison": comparison,
	})
}

// Predict loads a saved model and predicts every row of data.
func (h *ModelHandler) Predict(c *gin.Context) {
	var req predictRequest
	if !bind(c, &req) || !requireData(c, req.Data) {
		return
	}

	model, err := ml.LoadFile(h.resolve(req.ModelPath))
	if err != nil {
		fail(c, h.logger, "predict", err)
		return
	}
	predictions, err := model.Predict(req.Data)
	if err != nil {
		fail(c, h.logger, "predict", err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"status":      "success",
		"predictions": predictions,
	})
}
