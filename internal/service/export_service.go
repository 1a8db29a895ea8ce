package service

import (
	"context"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/noah-isme/grade-calculator-api/internal/dto"
	"github.com/noah-isme/grade-calculator-api/internal/grading"
	"github.com/noah-isme/grade-calculator-api/pkg/export"
	appErrors "github.com/noah-isme/grade-calculator-api/pkg/errors"
)

// Supported grade sheet formats.
const (
	ExportFormatCSV = "csv"
	ExportFormatPDF = "pdf"
)

type sheetRenderer interface {
	Render(sheet export.Sheet) ([]byte, error)
}

// ExportedFile is a rendered grade sheet.
type ExportedFile struct {
	Filename    string
	ContentType string
	Payload     []byte
}

// ExportService renders calculation results into downloadable grade sheets.
type ExportService struct {
	csv     sheetRenderer
	pdf     sheetRenderer
	metrics *MetricsService
	now     func() time.Time
}

// NewExportService constructs ExportService.
func NewExportService(csvRenderer, pdfRenderer sheetRenderer, metrics *MetricsService) *ExportService {
	if csvRenderer == nil {
		csvRenderer = export.NewCSVExporter()
	}
	if pdfRenderer == nil {
		pdfRenderer = export.NewPDFExporter()
	}
	return &ExportService{csv: csvRenderer, pdf: pdfRenderer, metrics: metrics, now: time.Now}
}

// Render produces the grade sheet for result in the requested format.
func (s *ExportService) Render(_ context.Context, result *dto.CalculationResult, format string) (*ExportedFile, error) {
	format = strings.ToLower(strings.TrimSpace(format))
	var (
		renderer    sheetRenderer
		contentType string
	)
	switch format {
	case "", ExportFormatCSV:
		format, renderer, contentType = ExportFormatCSV, s.csv, "text/csv"
	case ExportFormatPDF:
		renderer, contentType = s.pdf, "application/pdf"
	default:
		return nil, appErrors.Clone(appErrors.ErrUnsupportedFormat, fmt.Sprintf("format %q is not supported", format))
	}

	docID := uuid.NewString()
	payload, err := renderer.Render(BuildGradeSheet(result, docID, s.now().UTC()))
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to render grade sheet")
	}
	s.metrics.RecordExport(format)
	return &ExportedFile{
		Filename:    fmt.Sprintf("grade-sheet-%s.%s", docID[:8], format),
		ContentType: contentType,
		Payload:     payload,
	}, nil
}

// BuildGradeSheet lays out a calculation as a table of periods followed by the final
// grade, with the pass status and projection as notes.
func BuildGradeSheet(result *dto.CalculationResult, docID string, generatedAt time.Time) export.Sheet {
	headers := []string{"Component", "Grade", "Rounded", "Standing"}
	rows := []map[string]string{
		periodRow("Midterm (Quiz 1-2)", result.Midterm),
		periodRow("Finals (Quiz 3-4)", result.Finals),
		{
			"Component": "Final Grade",
			"Grade":     result.Final.Formatted,
			"Rounded":   strconv.Itoa(result.Final.Rounded),
			"Standing":  "GPE " + result.Final.GPE,
		},
	}

	notes := []string{fmt.Sprintf("Passing grade: %s", formatGrade(result.Target))}
	if result.Status.Passing {
		notes = append(notes, "Status: passing")
	} else {
		notes = append(notes, fmt.Sprintf("Status: %d point(s) short of passing", result.Status.Shortfall))
	}
	projection := result.PointsNeeded
	switch {
	case projection.MidtermNeeded != nil && projection.FinalsNeeded != nil:
		notes = append(notes, fmt.Sprintf("Needed in each period: %d", roundGrade(*projection.FinalsNeeded)))
	case projection.MidtermNeeded != nil:
		notes = append(notes, fmt.Sprintf("Midterm score needed: %d", roundGrade(*projection.MidtermNeeded)))
	case projection.FinalsNeeded != nil:
		notes = append(notes, fmt.Sprintf("Finals score needed: %d", roundGrade(*projection.FinalsNeeded)))
	case !projection.IsPossible && (result.Midterm.Grade == 0 || result.Finals.Grade == 0):
		notes = append(notes, "Passing is no longer reachable in the remaining period")
	}
	notes = append(notes, fmt.Sprintf("Document %s generated %s", docID, generatedAt.Format(time.RFC3339)))

	return export.Sheet{
		Title: "Grade Summary",
		Notes: notes,
		Table: export.Dataset{Headers: headers, Rows: rows},
	}
}

func periodRow(label string, period dto.PeriodResult) map[string]string {
	return map[string]string{
		"Component": label,
		"Grade":     formatGrade(period.Grade),
		"Rounded":   strconv.Itoa(period.Rounded),
		"Standing":  strings.ReplaceAll(string(period.Completion), "_", " "),
	}
}

func formatGrade(v float64) string {
	return strconv.FormatFloat(v, 'f', 2, 64)
}

// roundGrade floors negative projections at zero; the target is already secured.
func roundGrade(v float64) int {
	if v < 0 {
		return 0
	}
	return grading.Round(v)
}
