package handler

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/noah-isme/grade-calculator-api/internal/dto"
	"github.com/noah-isme/grade-calculator-api/internal/grading"
	"github.com/noah-isme/grade-calculator-api/internal/middleware"
	"github.com/noah-isme/grade-calculator-api/internal/service"
	appErrors "github.com/noah-isme/grade-calculator-api/pkg/errors"
)

type fakeCalculatorSrv struct {
	result   *dto.CalculationResult
	hit      bool
	err      error
	calls    int
	lastReq  dto.CalculateRequest
	describe float64
}

func (f *fakeCalculatorSrv) Calculate(_ context.Context, req dto.CalculateRequest) (*dto.CalculationResult, bool, error) {
	f.calls++
	f.lastReq = req
	return f.result, f.hit, f.err
}

func (f *fakeCalculatorSrv) PeriodGrade(context.Context, dto.PeriodPayload) (*dto.PeriodResult, error) {
	return &dto.PeriodResult{Grade: 88, Rounded: 88, Color: grading.ColorGood}, f.err
}

func (f *fakeCalculatorSrv) FinalGrade(context.Context, dto.FinalGradeRequest) (*dto.FinalGradeResult, error) {
	return &dto.FinalGradeResult{}, f.err
}

func (f *fakeCalculatorSrv) PointsNeeded(context.Context, dto.PointsNeededRequest) (*grading.Projection, error) {
	return &grading.Projection{IsPossible: true}, f.err
}

func (f *fakeCalculatorSrv) ValidateField(context.Context, dto.ValidateFieldRequest) (*dto.ValidateFieldResult, error) {
	return &dto.ValidateFieldResult{Valid: true}, f.err
}

func (f *fakeCalculatorSrv) Describe(finalGrade float64) dto.GradeSummary {
	f.describe = finalGrade
	return dto.GradeSummary{FinalGrade: finalGrade, GPE: grading.GPE(finalGrade)}
}

type fakeExporter struct {
	file   *service.ExportedFile
	err    error
	format string
}

func (f *fakeExporter) Render(_ context.Context, _ *dto.CalculationResult, format string) (*service.ExportedFile, error) {
	f.format = format
	return f.file, f.err
}

type responseEnvelope struct {
	Data  map[string]interface{} `json:"data"`
	Error *appErrors.Error       `json:"error"`
	Meta  map[string]interface{} `json:"meta"`
}

func newJSONContext(t *testing.T, method, target, body string) (*gin.Context, *httptest.ResponseRecorder) {
	t.Helper()
	gin.SetMode(gin.TestMode)
	rec := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(rec)
	c.Request = httptest.NewRequest(method, target, bytes.NewBufferString(body))
	c.Request.Header.Set("Content-Type", "application/json")
	return c, rec
}

func decodeEnvelope(t *testing.T, rec *httptest.ResponseRecorder) responseEnvelope {
	t.Helper()
	var envelope responseEnvelope
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &envelope))
	return envelope
}

func TestCalculatorHandlerCalculateSuccess(t *testing.T) {
	srv := &fakeCalculatorSrv{
		result: &dto.CalculationResult{Target: 75, Final: dto.GradeSummary{GPE: "1.00"}},
		hit:    true,
	}
	handler := NewCalculatorHandler(srv, nil)
	c, rec := newJSONContext(t, http.MethodPost, "/calculator/calculate",
		`{"midterm":{"quizScores":[90,"85"],"examScore":""},"target":80}`)

	handler.Calculate(c)

	require.Equal(t, http.StatusOK, rec.Code)
	envelope := decodeEnvelope(t, rec)
	assert.Equal(t, true, envelope.Meta["cache_hit"])
	assert.Equal(t, 75.0, envelope.Data["target"])
	require.NotNil(t, srv.lastReq.Midterm.QuizScores[1].Ptr())
	assert.Equal(t, 85.0, *srv.lastReq.Midterm.QuizScores[1].Ptr())
	assert.Nil(t, srv.lastReq.Midterm.ExamScore.Ptr())
	require.NotNil(t, srv.lastReq.Target)
	assert.Equal(t, 80.0, *srv.lastReq.Target)
}

func TestCalculatorHandlerCalculateMalformedBody(t *testing.T) {
	srv := &fakeCalculatorSrv{}
	handler := NewCalculatorHandler(srv, nil)
	c, rec := newJSONContext(t, http.MethodPost, "/calculator/calculate", `{"midterm":`)

	handler.Calculate(c)

	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Zero(t, srv.calls)
}

func TestCalculatorHandlerCalculateValidationDetails(t *testing.T) {
	srv := &fakeCalculatorSrv{err: appErrors.WithDetails(appErrors.ErrValidation, "one or more fields are invalid",
		map[string]string{"midterm.examScore": "Cannot be negative"})}
	handler := NewCalculatorHandler(srv, nil)
	c, rec := newJSONContext(t, http.MethodPost, "/calculator/calculate", `{}`)

	handler.Calculate(c)

	require.Equal(t, http.StatusBadRequest, rec.Code)
	envelope := decodeEnvelope(t, rec)
	require.NotNil(t, envelope.Error)
	assert.Equal(t, "VALIDATION_ERROR", envelope.Error.Code)
	assert.Equal(t, "Cannot be negative", envelope.Error.Details["midterm.examScore"])
}

func TestCalculatorHandlerGPE(t *testing.T) {
	srv := &fakeCalculatorSrv{}
	handler := NewCalculatorHandler(srv, nil)

	c, rec := newJSONContext(t, http.MethodGet, "/calculator/gpe?grade=86.6", "")
	handler.GPE(c)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, 86.6, srv.describe)
	assert.Equal(t, "2.00", decodeEnvelope(t, rec).Data["gpe"])

	c, rec = newJSONContext(t, http.MethodGet, "/calculator/gpe?grade=1e19", "")
	handler.GPE(c)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "1.00", decodeEnvelope(t, rec).Data["gpe"])

	for _, target := range []string{"/calculator/gpe", "/calculator/gpe?grade=abc", "/calculator/gpe?grade=NaN"} {
		c, rec = newJSONContext(t, http.MethodGet, target, "")
		handler.GPE(c)
		assert.Equal(t, http.StatusBadRequest, rec.Code, target)
	}
}

func TestCalculatorHandlerSimpleEndpoints(t *testing.T) {
	handler := NewCalculatorHandler(&fakeCalculatorSrv{}, nil)
	cases := []struct {
		name string
		call func(*gin.Context)
		body string
	}{
		{"period", handler.Period, `{"examScore":80}`},
		{"final", handler.Final, `{"midterm":80,"finals":70}`},
		{"points needed", handler.PointsNeeded, `{"midterm":80,"finals":0}`},
		{"validate", handler.Validate, `{"field":"examScore","value":"12"}`},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			c, rec := newJSONContext(t, http.MethodPost, "/", tc.body)
			tc.call(c)
			assert.Equal(t, http.StatusOK, rec.Code)
		})
	}
}

func TestCalculatorHandlerServiceErrors(t *testing.T) {
	handler := NewCalculatorHandler(&fakeCalculatorSrv{err: errors.New("boom")}, nil)
	c, rec := newJSONContext(t, http.MethodPost, "/", `{"midterm":80,"finals":70}`)

	handler.Final(c)

	assert.Equal(t, http.StatusInternalServerError, rec.Code)
}

func TestCalculatorHandlerExportDisabled(t *testing.T) {
	srv := &fakeCalculatorSrv{}
	handler := NewCalculatorHandler(srv, nil)
	c, rec := newJSONContext(t, http.MethodPost, "/calculator/export", `{}`)

	handler.Export(c)

	assert.Equal(t, http.StatusNotFound, rec.Code)
	assert.Zero(t, srv.calls)
}

func TestCalculatorHandlerExportAttachment(t *testing.T) {
	srv := &fakeCalculatorSrv{result: &dto.CalculationResult{}}
	exporter := &fakeExporter{file: &service.ExportedFile{
		Filename:    "grade-sheet-abcd1234.pdf",
		ContentType: "application/pdf",
		Payload:     []byte("%PDF-1.3"),
	}}
	handler := NewCalculatorHandler(srv, exporter)
	c, rec := newJSONContext(t, http.MethodPost, "/calculator/export?format=pdf", `{}`)

	handler.Export(c)

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "pdf", exporter.format)
	assert.Equal(t, "application/pdf", rec.Header().Get("Content-Type"))
	assert.Contains(t, rec.Header().Get("Content-Disposition"), "grade-sheet-abcd1234.pdf")
	assert.Equal(t, "%PDF-1.3", rec.Body.String())
}

func TestCalculatorHandlerExportUnsupportedFormat(t *testing.T) {
	srv := &fakeCalculatorSrv{result: &dto.CalculationResult{}}
	exporter := &fakeExporter{err: appErrors.ErrUnsupportedFormat}
	handler := NewCalculatorHandler(srv, exporter)
	c, rec := newJSONContext(t, http.MethodPost, "/calculator/export?format=xlsx", `{}`)

	handler.Export(c)

	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, "UNSUPPORTED_FORMAT", decodeEnvelope(t, rec).Error.Code)
}

func TestCalculatorRoutesEndToEnd(t *testing.T) {
	gin.SetMode(gin.TestMode)
	metrics := service.NewMetricsService()
	calculator := service.NewCalculatorService(nil, zap.NewNop(), nil, metrics, grading.DefaultTarget)
	handler := NewCalculatorHandler(calculator, service.NewExportService(nil, nil, metrics))

	router := gin.New()
	router.Use(middleware.WithResponseMeta())
	router.POST("/calculator/calculate", handler.Calculate)
	router.POST("/calculator/export", handler.Export)

	body := `{"midterm":{"quizScores":[80,80],"quizMaxScores":[100,100],"examScore":80,"examMaxScore":100,"attendance":10,"problemSet":10}}`

	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/calculator/calculate", bytes.NewBufferString(body)))
	require.Equal(t, http.StatusOK, rec.Code)
	envelope := decodeEnvelope(t, rec)
	midterm := envelope.Data["midterm"].(map[string]interface{})
	assert.InDelta(t, 92.0, midterm["grade"], 1e-9)
	assert.Equal(t, false, envelope.Meta["cache_hit"])

	rec = httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/calculator/export", bytes.NewBufferString(body)))
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "text/csv", rec.Header().Get("Content-Type"))
	assert.Contains(t, rec.Body.String(), "Midterm (Quiz 1-2),92.00,92,complete")

	rec = httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/calculator/calculate",
		bytes.NewBufferString(`{"finals":{"quizScores":["abc"]}}`)))
	require.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, "Must be a number", decodeEnvelope(t, rec).Error.Details["finals.quizScores0"])
}
