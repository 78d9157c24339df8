package models

// Factor keys reported by the analysis service, in display order.
const (
	FactorGaze         = "gaze"
	FactorStraightness = "straightness"
	FactorAxis         = "axis"
	FactorArm          = "arm"
	FactorRebound      = "rebound"
)

// FactorKeys is the fixed set of known factors. Anything else in a payload is ignored.
var FactorKeys = []string{FactorGaze, FactorStraightness, FactorAxis, FactorArm, FactorRebound}

// AnalysisFactors holds the per-factor sub-scores, each an integer in [0,100]
type AnalysisFactors struct {
	Gaze         int `json:"gaze"`
	Straightness int `json:"straightness"`
	Axis         int `json:"axis"`
	Arm          int `json:"arm"`
	Rebound      int `json:"rebound"`
}

// Get returns the score for a known factor key, or 0 for an unknown one.
func (f AnalysisFactors) Get(key string) int {
	switch key {
	case FactorGaze:
		return f.Gaze
	case FactorStraightness:
		return f.Straightness
	case FactorAxis:
		return f.Axis
	case FactorArm:
		return f.Arm
	case FactorRebound:
		return f.Rebound
	}
	return 0
}

// Set stores the score for a known factor key. Unknown keys are ignored.
func (f *AnalysisFactors) Set(key string, score int) {
	switch key {
	case FactorGaze:
		f.Gaze = score
	case FactorStraightness:
		f.Straightness = score
	case FactorAxis:
		f.Axis = score
	case FactorArm:
		f.Arm = score
	case FactorRebound:
		f.Rebound = score
	}
}

// AnalysisResult is the normalized assessment of one trick image.
// It is only ever built by the normalizer and is treated as immutable.
type AnalysisResult struct {
	SuccessRate int             `json:"success_rate"`
	Confidence  int             `json:"confidence"`
	Factors     AnalysisFactors `json:"factors"`
	Advice      string          `json:"advice"`

	// Verdict is the service's own label for the attempt (payload "result").
	Verdict string `json:"verdict,omitempty"`
	// Joints are the flattened pose landmarks the service detected.
	Joints []float64 `json:"joints,omitempty"`
}

// Payload is the loosely-typed JSON object returned by the analysis service.
type Payload map[string]any
