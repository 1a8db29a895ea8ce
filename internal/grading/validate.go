package grading

import (
	"fmt"
	"math"
	"strconv"
)

// FieldKind identifies the input a value was entered into.
type FieldKind string

const (
	FieldQuizScore    FieldKind = "quizScores"
	FieldQuizMaxScore FieldKind = "quizMaxScores"
	FieldExamScore    FieldKind = "examScore"
	FieldExamMaxScore FieldKind = "examMaxScore"
	FieldAttendance   FieldKind = "attendance"
	FieldProblemSet   FieldKind = "problemSet"
)

// Valid reports whether k is a known field kind.
func (k FieldKind) Valid() bool {
	switch k {
	case FieldQuizScore, FieldQuizMaxScore, FieldExamScore, FieldExamMaxScore, FieldAttendance, FieldProblemSet:
		return true
	}
	return false
}

// fixedScale reports whether the field is always bounded by ComponentScale.
func (k FieldKind) fixedScale() bool {
	return k == FieldAttendance || k == FieldProblemSet
}

// ErrorKind classifies a rejected field value.
type ErrorKind string

const (
	ErrNotANumber ErrorKind = "NotANumber"
	ErrNegative   ErrorKind = "Negative"
	ErrExceedsMax ErrorKind = "ExceedsMax"
)

// FieldError describes why a single field was rejected.
type FieldError struct {
	Kind    ErrorKind `json:"kind"`
	Message string    `json:"message"`
}

func (e *FieldError) Error() string {
	return e.Message
}

// Validate classifies a single field value. A nil value has not been entered yet
// and is always valid. Attendance and problem set are bounded by ComponentScale
// whatever max is passed; every other field is bounded by max.
func Validate(value *float64, kind FieldKind, max float64) *FieldError {
	if value == nil {
		return nil
	}
	v := *value
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return &FieldError{Kind: ErrNotANumber, Message: "Must be a number"}
	}
	if v < 0 {
		return &FieldError{Kind: ErrNegative, Message: "Cannot be negative"}
	}
	limit := max
	if kind.fixedScale() {
		limit = ComponentScale
	}
	if v > limit {
		return &FieldError{Kind: ErrExceedsMax, Message: fmt.Sprintf("Maximum is %s", strconv.FormatFloat(limit, 'f', -1, 64))}
	}
	return nil
}

// BoundFor returns the upper bound to validate a score against given its entered
// maximum. Absent or zero maxima fall back to DefaultMaxScore.
func BoundFor(max *float64) float64 {
	if max == nil || *max == 0 {
		return DefaultMaxScore
	}
	return *max
}
