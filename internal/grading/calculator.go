package grading

import (
	"fmt"
	"math"
)

// Curve applied to a raw percentage before weighting: ((pct * CurveFactor) + CurveBase) * weight.
const (
	CurveFactor = 0.5
	CurveBase   = 50.0
)

// Component weights of a period grade.
const (
	WeightQuiz       = 0.35
	WeightExam       = 0.45
	WeightAttendance = 0.10
	WeightProblemSet = 0.10
)

// Period weights of the final grade.
const (
	WeightMidterm = 0.30
	WeightFinals  = 0.70
)

const (
	// DefaultTarget is the passing final grade.
	DefaultTarget = 75.0
	// DefaultMaxScore is assumed for quiz and exam maxima that were not entered.
	DefaultMaxScore = 100.0
	// ComponentScale is the fixed maximum of attendance and problem set.
	ComponentScale = 10.0
	// MaxPeriodGrade caps a reachable period score in projections.
	MaxPeriodGrade = 100.0
)

// AdjustedQuiz averages the quiz percentages and applies the quiz curve.
// Empty input or any zero maximum yields 0.
func AdjustedQuiz(scores, maxScores []float64) float64 {
	if len(scores) == 0 || len(maxScores) == 0 || len(maxScores) < len(scores) {
		return 0
	}
	for _, max := range maxScores {
		if max == 0 {
			return 0
		}
	}

	sum := 0.0
	for i, score := range scores {
		sum += percentage(score, maxScores[i])
	}
	average := sum / float64(len(scores))
	return curve(average, WeightQuiz)
}

// AdjustedExam converts the exam score to a percentage and applies the exam curve.
func AdjustedExam(score, maxScore float64) float64 {
	if maxScore == 0 {
		return 0
	}
	return curve(percentage(score, maxScore), WeightExam)
}

// PeriodGrade sums the four weighted components of a grading period. No clamping
// is applied; out of range inputs are the validator's concern.
func PeriodGrade(quizScores, quizMaxScores []float64, examScore, examMaxScore, attendance, problemSet float64) float64 {
	quiz := AdjustedQuiz(quizScores, quizMaxScores)
	exam := AdjustedExam(examScore, examMaxScore)
	attendancePct := attendance / ComponentScale * 100
	problemSetPct := problemSet / ComponentScale * 100
	return quiz + exam + attendancePct*WeightAttendance + problemSetPct*WeightProblemSet
}

// FinalGrade combines the midterm and finals period grades.
func FinalGrade(midterm, finals float64) float64 {
	return midterm*WeightMidterm + finals*WeightFinals
}

// Round rounds to the nearest integer, halves away from zero. Values outside the
// int range saturate and NaN rounds to 0.
func Round(v float64) int {
	r := math.Round(v)
	switch {
	case math.IsNaN(r):
		return 0
	case r >= math.MaxInt:
		return math.MaxInt
	case r <= math.MinInt:
		return math.MinInt
	}
	return int(r)
}

// FormatFinalGrade renders "<rounded> (<two decimals>)".
func FormatFinalGrade(finalGrade float64) string {
	return fmt.Sprintf("%d (%.2f)", Round(finalGrade), finalGrade)
}

func percentage(score, max float64) float64 {
	return score / max * 100
}

func curve(pct, weight float64) float64 {
	return (pct*CurveFactor + CurveBase) * weight
}
