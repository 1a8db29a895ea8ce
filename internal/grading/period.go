package grading

import "fmt"

// QuizzesPerPeriod is the number of quiz slots in a grading period.
const QuizzesPerPeriod = 2

// Completion describes how much of a period has been entered.
type Completion string

const (
	NotStarted Completion = "not_started"
	InProgress Completion = "in_progress"
	Complete   Completion = "complete"
)

// PeriodInput holds the raw entries of one grading period. Nil means not entered.
type PeriodInput struct {
	QuizScores    [QuizzesPerPeriod]*float64
	QuizMaxScores [QuizzesPerPeriod]*float64
	ExamScore     *float64
	ExamMaxScore  *float64
	Attendance    *float64
	ProblemSet    *float64
}

// ValidatePeriod validates every field of the period and returns the failures keyed
// by form field ("quizScores0", "examScore", ...). An empty map means the period may
// be computed.
func ValidatePeriod(in PeriodInput) map[string]*FieldError {
	errs := make(map[string]*FieldError)
	put := func(key string, err *FieldError) {
		if err != nil {
			errs[key] = err
		}
	}
	for i := 0; i < QuizzesPerPeriod; i++ {
		put(fmt.Sprintf("%s%d", FieldQuizScore, i), Validate(in.QuizScores[i], FieldQuizScore, BoundFor(in.QuizMaxScores[i])))
		put(fmt.Sprintf("%s%d", FieldQuizMaxScore, i), Validate(in.QuizMaxScores[i], FieldQuizMaxScore, DefaultMaxScore))
	}
	put(string(FieldExamScore), Validate(in.ExamScore, FieldExamScore, BoundFor(in.ExamMaxScore)))
	put(string(FieldExamMaxScore), Validate(in.ExamMaxScore, FieldExamMaxScore, DefaultMaxScore))
	put(string(FieldAttendance), Validate(in.Attendance, FieldAttendance, ComponentScale))
	put(string(FieldProblemSet), Validate(in.ProblemSet, FieldProblemSet, ComponentScale))
	return errs
}

// Completion reports whether any or all of the scored fields have been entered.
// Attendance and problem set are prefilled by the form and do not count.
func (in PeriodInput) Completion() Completion {
	entered, total := 0, QuizzesPerPeriod+1
	for _, score := range in.QuizScores {
		if score != nil {
			entered++
		}
	}
	if in.ExamScore != nil {
		entered++
	}
	switch entered {
	case 0:
		return NotStarted
	case total:
		return Complete
	default:
		return InProgress
	}
}

// Normalized is a period with form defaults applied, ready for PeriodGrade.
type Normalized struct {
	QuizScores    []float64
	QuizMaxScores []float64
	ExamScore     float64
	ExamMaxScore  float64
	Attendance    float64
	ProblemSet    float64
}

// Normalize applies the form defaults. Only quizzes with an entered score are kept,
// missing maxima become DefaultMaxScore, and missing attendance or problem set count
// as full marks. A missing exam contributes nothing.
func (in PeriodInput) Normalize() Normalized {
	out := Normalized{
		ExamMaxScore: valueOr(in.ExamMaxScore, DefaultMaxScore),
		Attendance:   valueOr(in.Attendance, ComponentScale),
		ProblemSet:   valueOr(in.ProblemSet, ComponentScale),
	}
	for i := 0; i < QuizzesPerPeriod; i++ {
		if in.QuizScores[i] == nil {
			continue
		}
		out.QuizScores = append(out.QuizScores, *in.QuizScores[i])
		out.QuizMaxScores = append(out.QuizMaxScores, valueOr(in.QuizMaxScores[i], DefaultMaxScore))
	}
	if in.ExamScore != nil {
		out.ExamScore = *in.ExamScore
	} else {
		out.ExamMaxScore = 0
	}
	return out
}

// Grade computes the period grade. A period starts with its first quiz or exam
// score; attendance or problem set alone never start it. A period that has not
// started is pending and reports 0 so that PointsNeeded projects it.
func (in PeriodInput) Grade() float64 {
	if in.Completion() == NotStarted {
		return 0
	}
	n := in.Normalize()
	return PeriodGrade(n.QuizScores, n.QuizMaxScores, n.ExamScore, n.ExamMaxScore, n.Attendance, n.ProblemSet)
}

func valueOr(v *float64, fallback float64) float64 {
	if v == nil {
		return fallback
	}
	return *v
}
