package pipeline

import (
	"fmt"
	"math"

	"ckd-screening-server/internal/inference"
)

// User-facing result strings. Fixed: downstream consumers and the
// persisted rows key off these exact values.
const (
	ResultDisease = "Kidney Disease Detected"
	ResultNormal  = "No Kidney Disease"
)

// probabilitySumTolerance bounds how far p0+p1 may drift from 1 before the
// pair is considered malformed.
const probabilitySumTolerance = 1e-6

// Formatted is the user-facing rendering of one classifier output: a
// result string plus the two class probabilities as percentages rounded
// to two decimals.
type Formatted struct {
	Result     string
	ProbCKD    float64
	ProbNormal float64
}

// Format converts a raw (label, probability pair) into its user-facing
// form under the given label policy. Pure: the same input always yields
// the same output.
func Format(policy inference.LabelPolicy, label int, proba [2]float64) (Formatted, error) {
	if label != 0 && label != 1 {
		return Formatted{}, fmt.Errorf("label must be 0 or 1, got %d", label)
	}
	for _, p := range proba {
		if p < 0 || p > 1 || math.IsNaN(p) {
			return Formatted{}, fmt.Errorf("probability %v outside [0,1]", p)
		}
	}
	if math.Abs(proba[0]+proba[1]-1.0) > probabilitySumTolerance {
		return Formatted{}, fmt.Errorf("probabilities sum to %v, expected 1", proba[0]+proba[1])
	}

	disease := policy.DiseaseLabel()
	result := ResultNormal
	if label == disease {
		result = ResultDisease
	}

	return Formatted{
		Result:     result,
		ProbCKD:    roundPercent(proba[disease]),
		ProbNormal: roundPercent(proba[1-disease]),
	}, nil
}

func roundPercent(p float64) float64 {
	return math.Round(p*10000) / 100
}
