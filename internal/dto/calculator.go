package dto

import (
	"bytes"
	"encoding/json"
	"math"
	"strconv"
	"strings"

	"github.com/noah-isme/grade-calculator-api/internal/grading"
)

// FormValue is a numeric form entry. JSON numbers and numeric strings are accepted,
// null and "" mean not entered, and anything else decodes to NaN so validation
// reports it as NotANumber instead of rejecting the whole payload.
type FormValue struct {
	v *float64
}

// Num builds an entered form value.
func Num(v float64) FormValue {
	return FormValue{v: &v}
}

// Ptr returns the entered value or nil.
func (f FormValue) Ptr() *float64 {
	return f.v
}

// UnmarshalJSON implements json.Unmarshaler.
func (f *FormValue) UnmarshalJSON(b []byte) error {
	raw := bytes.TrimSpace(b)
	if bytes.Equal(raw, []byte("null")) {
		f.v = nil
		return nil
	}
	text := string(raw)
	if len(raw) > 0 && raw[0] == '"' {
		var s string
		if err := json.Unmarshal(raw, &s); err != nil {
			return err
		}
		text = strings.TrimSpace(s)
		if text == "" {
			f.v = nil
			return nil
		}
	}
	parsed, err := strconv.ParseFloat(text, 64)
	if err != nil {
		parsed = math.NaN()
	}
	f.v = &parsed
	return nil
}

// MarshalJSON implements json.Marshaler.
func (f FormValue) MarshalJSON() ([]byte, error) {
	if f.v == nil {
		return []byte("null"), nil
	}
	if math.IsNaN(*f.v) || math.IsInf(*f.v, 0) {
		return json.Marshal(strconv.FormatFloat(*f.v, 'f', -1, 64))
	}
	return json.Marshal(*f.v)
}

// PeriodPayload carries the raw form fields of one grading period.
type PeriodPayload struct {
	QuizScores    [grading.QuizzesPerPeriod]FormValue `json:"quizScores"`
	QuizMaxScores [grading.QuizzesPerPeriod]FormValue `json:"quizMaxScores"`
	ExamScore     FormValue                           `json:"examScore"`
	ExamMaxScore  FormValue                           `json:"examMaxScore"`
	Attendance    FormValue                           `json:"attendance"`
	ProblemSet    FormValue                           `json:"problemSet"`
}

// Input converts the payload into engine input.
func (p PeriodPayload) Input() grading.PeriodInput {
	in := grading.PeriodInput{
		ExamScore:    p.ExamScore.Ptr(),
		ExamMaxScore: p.ExamMaxScore.Ptr(),
		Attendance:   p.Attendance.Ptr(),
		ProblemSet:   p.ProblemSet.Ptr(),
	}
	for i := range p.QuizScores {
		in.QuizScores[i] = p.QuizScores[i].Ptr()
		in.QuizMaxScores[i] = p.QuizMaxScores[i].Ptr()
	}
	return in
}

// CalculateRequest captures POST /calculator/calculate payload.
type CalculateRequest struct {
	Midterm PeriodPayload `json:"midterm"`
	Finals  PeriodPayload `json:"finals"`
	Target  *float64      `json:"target,omitempty" validate:"omitempty,gt=0,lte=100"`
}

// FinalGradeRequest combines two already computed period grades, each in [0, 100].
type FinalGradeRequest struct {
	Midterm *float64 `json:"midterm" validate:"required,gte=0,lte=100"`
	Finals  *float64 `json:"finals" validate:"required,gte=0,lte=100"`
	Target  *float64 `json:"target,omitempty" validate:"omitempty,gt=0,lte=100"`
}

// PointsNeededRequest asks for the score still needed in a pending period.
type PointsNeededRequest struct {
	Midterm *float64 `json:"midterm" validate:"required,gte=0,lte=100"`
	Finals  *float64 `json:"finals" validate:"required,gte=0,lte=100"`
	Target  *float64 `json:"target,omitempty" validate:"omitempty,gt=0,lte=100"`
}

// ValidateFieldRequest checks a single form field.
type ValidateFieldRequest struct {
	Field grading.FieldKind `json:"field" validate:"required,field_kind"`
	Value FormValue         `json:"value"`
	Max   *float64          `json:"max,omitempty"`
}

// ValidateFieldResult reports the outcome of ValidateFieldRequest.
type ValidateFieldResult struct {
	Field grading.FieldKind   `json:"field"`
	Valid bool                `json:"valid"`
	Error *grading.FieldError `json:"error,omitempty"`
}

// PeriodResult describes one computed period. Grade is 0 while Completion is
// not_started, even when attendance or problem set are filled in.
type PeriodResult struct {
	Grade      float64            `json:"grade"`
	Rounded    int                `json:"rounded"`
	Color      grading.ColorTag   `json:"color"`
	Completion grading.Completion `json:"completion"`
}

// GradeSummary is the display form of a final grade.
type GradeSummary struct {
	FinalGrade float64          `json:"finalGrade"`
	Rounded    int              `json:"rounded"`
	Formatted  string           `json:"formatted"`
	GPE        string           `json:"gpe"`
	Color      grading.ColorTag `json:"color"`
}

// FinalGradeResult is returned by POST /calculator/final.
type FinalGradeResult struct {
	GradeSummary
	Target float64            `json:"target"`
	Status grading.PassStatus `json:"status"`
}

// CalculationResult is the full recomputation of both periods.
type CalculationResult struct {
	Midterm      PeriodResult       `json:"midterm"`
	Finals       PeriodResult       `json:"finals"`
	Final        GradeSummary       `json:"final"`
	Target       float64            `json:"target"`
	Status       grading.PassStatus `json:"status"`
	PointsNeeded grading.Projection `json:"pointsNeeded"`
}
