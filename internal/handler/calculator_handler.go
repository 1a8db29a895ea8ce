package handler

import (
	"context"
	"math"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/noah-isme/grade-calculator-api/internal/dto"
	"github.com/noah-isme/grade-calculator-api/internal/grading"
	"github.com/noah-isme/grade-calculator-api/internal/middleware"
	"github.com/noah-isme/grade-calculator-api/internal/service"
	appErrors "github.com/noah-isme/grade-calculator-api/pkg/errors"
	"github.com/noah-isme/grade-calculator-api/pkg/response"
)

type calculatorService interface {
	Calculate(ctx context.Context, req dto.CalculateRequest) (*dto.CalculationResult, bool, error)
	PeriodGrade(ctx context.Context, req dto.PeriodPayload) (*dto.PeriodResult, error)
	FinalGrade(ctx context.Context, req dto.FinalGradeRequest) (*dto.FinalGradeResult, error)
	PointsNeeded(ctx context.Context, req dto.PointsNeededRequest) (*grading.Projection, error)
	ValidateField(ctx context.Context, req dto.ValidateFieldRequest) (*dto.ValidateFieldResult, error)
	Describe(finalGrade float64) dto.GradeSummary
}

type gradeSheetExporter interface {
	Render(ctx context.Context, result *dto.CalculationResult, format string) (*service.ExportedFile, error)
}

// CalculatorHandler exposes the grade calculator endpoints.
type CalculatorHandler struct {
	calculator calculatorService
	exporter   gradeSheetExporter
}

// NewCalculatorHandler constructs the handler. A nil exporter disables exports.
func NewCalculatorHandler(calculator calculatorService, exporter gradeSheetExporter) *CalculatorHandler {
	return &CalculatorHandler{calculator: calculator, exporter: exporter}
}

// Calculate godoc
// @Summary Calculate period grades, final grade, GPE and points needed
// @Tags Calculator
// @Accept json
// @Produce json
// @Param payload body dto.CalculateRequest true "Both grading periods"
// @Success 200 {object} response.Envelope
// @Failure 400 {object} response.Envelope
// @Router /calculator/calculate [post]
func (h *CalculatorHandler) Calculate(c *gin.Context) {
	var req dto.CalculateRequest
	if !bindJSON(c, &req) {
		return
	}
	result, cacheHit, err := h.calculator.Calculate(c.Request.Context(), req)
	if err != nil {
		response.Error(c, err)
		return
	}
	middleware.SetCacheHit(c, cacheHit)
	response.JSON(c, http.StatusOK, result, middleware.ExtractMeta(c))
}

// Period godoc
// @Summary Calculate a single period grade
// @Tags Calculator
// @Accept json
// @Produce json
// @Param payload body dto.PeriodPayload true "Period fields"
// @Success 200 {object} response.Envelope
// @Failure 400 {object} response.Envelope
// @Router /calculator/period [post]
func (h *CalculatorHandler) Period(c *gin.Context) {
	var req dto.PeriodPayload
	if !bindJSON(c, &req) {
		return
	}
	result, err := h.calculator.PeriodGrade(c.Request.Context(), req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, result)
}

// Final godoc
// @Summary Combine midterm and finals grades
// @Tags Calculator
// @Accept json
// @Produce json
// @Param payload body dto.FinalGradeRequest true "Period grades"
// @Success 200 {object} response.Envelope
// @Router /calculator/final [post]
func (h *CalculatorHandler) Final(c *gin.Context) {
	var req dto.FinalGradeRequest
	if !bindJSON(c, &req) {
		return
	}
	result, err := h.calculator.FinalGrade(c.Request.Context(), req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, result)
}

// PointsNeeded godoc
// @Summary Score still needed in the pending period
// @Tags Calculator
// @Accept json
// @Produce json
// @Param payload body dto.PointsNeededRequest true "Period grades and optional target"
// @Success 200 {object} response.Envelope
// @Router /calculator/points-needed [post]
func (h *CalculatorHandler) PointsNeeded(c *gin.Context) {
	var req dto.PointsNeededRequest
	if !bindJSON(c, &req) {
		return
	}
	result, err := h.calculator.PointsNeeded(c.Request.Context(), req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, result)
}

// Validate godoc
// @Summary Validate a single form field
// @Tags Calculator
// @Accept json
// @Produce json
// @Param payload body dto.ValidateFieldRequest true "Field, value and max"
// @Success 200 {object} response.Envelope
// @Router /calculator/validate [post]
func (h *CalculatorHandler) Validate(c *gin.Context) {
	var req dto.ValidateFieldRequest
	if !bindJSON(c, &req) {
		return
	}
	result, err := h.calculator.ValidateField(c.Request.Context(), req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, result)
}

// GPE godoc
// @Summary Grade point equivalent, colour band and display string of a grade
// @Tags Calculator
// @Produce json
// @Param grade query number true "Final grade"
// @Success 200 {object} response.Envelope
// @Router /calculator/gpe [get]
func (h *CalculatorHandler) GPE(c *gin.Context) {
	raw := strings.TrimSpace(c.Query("grade"))
	if raw == "" {
		response.Error(c, appErrors.Clone(appErrors.ErrValidation, "grade is required"))
		return
	}
	grade, err := strconv.ParseFloat(raw, 64)
	if err != nil || math.IsNaN(grade) || math.IsInf(grade, 0) {
		response.Error(c, appErrors.Clone(appErrors.ErrValidation, "grade must be a number"))
		return
	}
	response.JSON(c, http.StatusOK, h.calculator.Describe(grade))
}

// Export godoc
// @Summary Download a grade sheet for a full calculation
// @Tags Calculator
// @Accept json
// @Produce text/csv
// @Produce application/pdf
// @Param format query string false "csv (default) or pdf"
// @Param payload body dto.CalculateRequest true "Both grading periods"
// @Success 200 {file} file
// @Router /calculator/export [post]
func (h *CalculatorHandler) Export(c *gin.Context) {
	if h.exporter == nil {
		response.Error(c, appErrors.Clone(appErrors.ErrFeatureDisabled, "exports are disabled"))
		return
	}
	var req dto.CalculateRequest
	if !bindJSON(c, &req) {
		return
	}
	ctx, cancel := context.WithTimeout(c.Request.Context(), 10*time.Second)
	defer cancel()
	result, _, err := h.calculator.Calculate(ctx, req)
	if err != nil {
		response.Error(c, err)
		return
	}
	file, err := h.exporter.Render(ctx, result, c.Query("format"))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Attachment(c, file.Filename, file.ContentType, file.Payload)
}

func bindJSON(c *gin.Context, dest interface{}) bool {
	if err := c.ShouldBindJSON(dest); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid payload"))
		return false
	}
	return true
}
