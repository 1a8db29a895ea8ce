package grading

// Projection is the advisory result of PointsNeeded. A nil needed value means no
// projection applies to that period, or that the required score is unreachable.
type Projection struct {
	MidtermNeeded *float64 `json:"midtermNeeded"`
	FinalsNeeded  *float64 `json:"finalsNeeded"`
	IsPossible    bool     `json:"isPossible"`
}

// PointsNeeded solves FinalGrade for whichever period is still pending. A period
// grade of exactly zero is treated as not yet taken, so a real zero cannot be told
// apart from an empty period.
func PointsNeeded(midterm, finals, target float64) Projection {
	switch {
	case midterm > 0 && finals == 0:
		needed := (target - midterm*WeightMidterm) / WeightFinals
		if needed > MaxPeriodGrade {
			return Projection{}
		}
		return Projection{FinalsNeeded: &needed, IsPossible: true}
	case midterm == 0 && finals > 0:
		needed := (target - finals*WeightFinals) / WeightMidterm
		if needed > MaxPeriodGrade {
			return Projection{}
		}
		return Projection{MidtermNeeded: &needed, IsPossible: true}
	case midterm > 0 && finals > 0:
		return Projection{IsPossible: FinalGrade(midterm, finals) >= target}
	}

	// Neither period started: equal scores x in both give a final grade of x.
	midtermNeeded, finalsNeeded := target, target
	return Projection{MidtermNeeded: &midtermNeeded, FinalsNeeded: &finalsNeeded, IsPossible: true}
}
