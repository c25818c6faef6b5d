package geo

import (
	"fmt"
	"math"
)

// ClearanceEvaluation is the outcome of a point-vs-feature clearance
// check. Distance and threshold are in feet, distance rounded to one
// decimal as reported to drivers.
type ClearanceEvaluation struct {
	DistanceFt  float64
	ThresholdFt float64
	ClearanceFt float64
	Blocked     bool
	Reason      string
}

// EvaluateClearance checks whether a measured distance satisfies a
// minimum clearance threshold. Profile exemptions are the caller's
// concern; this check is profile-agnostic.
func EvaluateClearance(feature string, distanceFt, thresholdFt float64) ClearanceEvaluation {
	distanceFt = roundFt(distanceFt)
	ev := ClearanceEvaluation{
		DistanceFt:  distanceFt,
		ThresholdFt: thresholdFt,
		ClearanceFt: roundFt(distanceFt - thresholdFt),
		Blocked:     distanceFt < thresholdFt,
	}
	if ev.Blocked {
		ev.Reason = fmt.Sprintf("Too close to %s: %.1f ft (minimum %.0f ft).", feature, distanceFt, thresholdFt)
	} else {
		ev.Reason = fmt.Sprintf("%s clearance ok: %.1f ft from nearest %s.", title(feature), distanceFt, feature)
	}
	return ev
}

func roundFt(v float64) float64 {
	return math.Round(v*10) / 10
}

func title(s string) string {
	if s == "" {
		return s
	}
	b := []byte(s)
	if b[0] >= 'a' && b[0] <= 'z' {
		b[0] -= 'a' - 'A'
	}
	return string(b)
}
