package grading

import "math"

// ColorTag classifies a final grade for display.
type ColorTag string

const (
	ColorFail      ColorTag = "fail"
	ColorWarn      ColorTag = "warn"
	ColorGood      ColorTag = "good"
	ColorExcellent ColorTag = "excellent"
)

// GPEFailing is reported for any rounded grade below PassingGrade.
const GPEFailing = "5.00"

// PassingGrade is the lowest rounded grade with a passing equivalent.
const PassingGrade = 75

type gpeStep struct {
	min float64
	gpe string
}

// gpeLadder is ordered high to low; the first step whose min is reached wins.
var gpeLadder = []gpeStep{
	{min: 99, gpe: "1.00"},
	{min: 96, gpe: "1.25"},
	{min: 93, gpe: "1.50"},
	{min: 90, gpe: "1.75"},
	{min: 87, gpe: "2.00"},
	{min: 84, gpe: "2.25"},
	{min: 81, gpe: "2.50"},
	{min: 78, gpe: "2.75"},
	{min: PassingGrade, gpe: "3.00"},
}

// Lower bounds of the colour bands.
const (
	warnFrom      = PassingGrade
	goodFrom      = 80
	excellentFrom = 90
)

// GPE maps a final grade to its grade point equivalent. It is defined for every
// float64; NaN is failing.
func GPE(finalGrade float64) string {
	rounded := math.Round(finalGrade)
	if math.IsNaN(rounded) || rounded < PassingGrade {
		return GPEFailing
	}
	for _, step := range gpeLadder {
		if rounded >= step.min {
			return step.gpe
		}
	}
	return GPEFailing
}

// Color maps a final grade to its display band.
func Color(finalGrade float64) ColorTag {
	rounded := math.Round(finalGrade)
	switch {
	case math.IsNaN(rounded), rounded < warnFrom:
		return ColorFail
	case rounded < goodFrom:
		return ColorWarn
	case rounded < excellentFrom:
		return ColorGood
	default:
		return ColorExcellent
	}
}

// PassStatus reports whether a final grade reaches the target and, if not, by how
// many whole points it falls short.
type PassStatus struct {
	Passing   bool `json:"passing"`
	Shortfall int  `json:"shortfall,omitempty"`
}

// Status compares finalGrade against target without rounding.
func Status(finalGrade, target float64) PassStatus {
	if finalGrade >= target {
		return PassStatus{Passing: true}
	}
	return PassStatus{Shortfall: int(math.Ceil(target - finalGrade))}
}
