package service

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"

	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"

	"github.com/noah-isme/grade-calculator-api/internal/dto"
	"github.com/noah-isme/grade-calculator-api/internal/grading"
	appErrors "github.com/noah-isme/grade-calculator-api/pkg/errors"
)

const calculationCacheKey = "calc:"

// CalculatorService runs the grading engine for the HTTP layer.
type CalculatorService struct {
	validator *validator.Validate
	logger    *zap.Logger
	cache     *CacheService
	metrics   *MetricsService
	target    float64
}

// NewCalculatorService constructs CalculatorService. A non-positive target falls
// back to grading.DefaultTarget.
func NewCalculatorService(validate *validator.Validate, logger *zap.Logger, cache *CacheService, metrics *MetricsService, target float64) *CalculatorService {
	if validate == nil {
		validate = validator.New()
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	if target <= 0 {
		target = grading.DefaultTarget
	}
	_ = validate.RegisterValidation("field_kind", func(fl validator.FieldLevel) bool {
		return grading.FieldKind(fl.Field().String()).Valid()
	})
	return &CalculatorService{
		validator: validate,
		logger:    logger,
		cache:     cache,
		metrics:   metrics,
		target:    target,
	}
}

// Calculate recomputes both periods, the final grade and the projection. Nothing is
// computed while any field of either period is invalid. The bool reports whether the
// result came from the cache.
func (s *CalculatorService) Calculate(ctx context.Context, req dto.CalculateRequest) (*dto.CalculationResult, bool, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, false, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid calculation payload")
	}
	midterm, finals := req.Midterm.Input(), req.Finals.Input()

	details := make(map[string]string)
	s.collectFieldErrors(details, "midterm.", grading.ValidatePeriod(midterm))
	s.collectFieldErrors(details, "finals.", grading.ValidatePeriod(finals))
	if len(details) > 0 {
		return nil, false, appErrors.WithDetails(appErrors.ErrValidation, "one or more fields are invalid", details)
	}

	target := s.targetOr(req.Target)
	key, err := cacheKey(req, target)
	if err != nil {
		s.logger.Warn("calculation cache key failed", zap.Error(err))
	}
	if key != "" {
		var cached dto.CalculationResult
		if s.cache.Lookup(ctx, key, &cached) {
			return &cached, true, nil
		}
	}

	midtermGrade, finalsGrade := midterm.Grade(), finals.Grade()
	finalGrade := grading.FinalGrade(midtermGrade, finalsGrade)
	result := &dto.CalculationResult{
		Midterm:      periodResult(midterm, midtermGrade),
		Finals:       periodResult(finals, finalsGrade),
		Final:        s.Describe(finalGrade),
		Target:       target,
		Status:       grading.Status(finalGrade, target),
		PointsNeeded: grading.PointsNeeded(midtermGrade, finalsGrade, target),
	}

	s.metrics.RecordCalculation(result.Final.GPE)
	s.logger.Debug("grade calculated",
		zap.Float64("midterm", midtermGrade),
		zap.Float64("finals", finalsGrade),
		zap.Float64("final", finalGrade),
		zap.String("gpe", result.Final.GPE),
	)

	if key != "" {
		s.cache.Store(ctx, key, result)
	}
	return result, false, nil
}

// PeriodGrade computes a single period.
func (s *CalculatorService) PeriodGrade(_ context.Context, req dto.PeriodPayload) (*dto.PeriodResult, error) {
	in := req.Input()
	details := make(map[string]string)
	s.collectFieldErrors(details, "", grading.ValidatePeriod(in))
	if len(details) > 0 {
		return nil, appErrors.WithDetails(appErrors.ErrValidation, "one or more fields are invalid", details)
	}
	result := periodResult(in, in.Grade())
	return &result, nil
}

// FinalGrade combines two period grades and describes the result.
func (s *CalculatorService) FinalGrade(_ context.Context, req dto.FinalGradeRequest) (*dto.FinalGradeResult, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "midterm and finals grades must be between 0 and 100")
	}
	target := s.targetOr(req.Target)
	finalGrade := grading.FinalGrade(*req.Midterm, *req.Finals)
	return &dto.FinalGradeResult{
		GradeSummary: s.Describe(finalGrade),
		Target:       target,
		Status:       grading.Status(finalGrade, target),
	}, nil
}

// PointsNeeded projects the score still needed in a pending period.
func (s *CalculatorService) PointsNeeded(_ context.Context, req dto.PointsNeededRequest) (*grading.Projection, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "midterm and finals grades must be between 0 and 100")
	}
	projection := grading.PointsNeeded(*req.Midterm, *req.Finals, s.targetOr(req.Target))
	return &projection, nil
}

// ValidateField classifies a single form value.
func (s *CalculatorService) ValidateField(_ context.Context, req dto.ValidateFieldRequest) (*dto.ValidateFieldResult, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "unknown field")
	}
	max := grading.DefaultMaxScore
	if req.Max != nil {
		max = grading.BoundFor(req.Max)
	}
	fieldErr := grading.Validate(req.Value.Ptr(), req.Field, max)
	if fieldErr != nil {
		s.metrics.RecordFieldError(string(fieldErr.Kind))
	}
	return &dto.ValidateFieldResult{Field: req.Field, Valid: fieldErr == nil, Error: fieldErr}, nil
}

// Describe renders the display values of a final grade.
func (s *CalculatorService) Describe(finalGrade float64) dto.GradeSummary {
	return dto.GradeSummary{
		FinalGrade: finalGrade,
		Rounded:    grading.Round(finalGrade),
		Formatted:  grading.FormatFinalGrade(finalGrade),
		GPE:        grading.GPE(finalGrade),
		Color:      grading.Color(finalGrade),
	}
}

func (s *CalculatorService) targetOr(target *float64) float64 {
	if target == nil || *target <= 0 {
		return s.target
	}
	return *target
}

func (s *CalculatorService) collectFieldErrors(dst map[string]string, prefix string, errs map[string]*grading.FieldError) {
	for key, fieldErr := range errs {
		dst[prefix+key] = fieldErr.Message
		s.metrics.RecordFieldError(string(fieldErr.Kind))
	}
}

func periodResult(in grading.PeriodInput, grade float64) dto.PeriodResult {
	return dto.PeriodResult{
		Grade:      grade,
		Rounded:    grading.Round(grade),
		Color:      grading.Color(grade),
		Completion: in.Completion(),
	}
}

func cacheKey(req dto.CalculateRequest, target float64) (string, error) {
	payload, err := json.Marshal(struct {
		Midterm dto.PeriodPayload `json:"m"`
		Finals  dto.PeriodPayload `json:"f"`
		Target  float64           `json:"t"`
	}{req.Midterm, req.Finals, target})
	if err != nil {
		return "", err
	}
	sum := sha256.Sum256(payload)
	return calculationCacheKey + hex.EncodeToString(sum[:]), nil
}
