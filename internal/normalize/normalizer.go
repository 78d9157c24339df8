package normalize

import (
	"encoding/json"
	"math"

	"go-trick-analyzer/pkg/models"
)

// DefaultConfidence is used when the payload carries no numeric confidence.
const DefaultConfidence = 95

// Normalize maps a raw service payload to an AnalysisResult. It is total:
// every input, including nil, yields a result whose scores are integers in
// [0,100]. It never mutates the payload.
func Normalize(payload models.Payload) models.AnalysisResult {
	result := models.AnalysisResult{
		SuccessRate: 0,
		Confidence:  DefaultConfidence,
	}

	if score, ok := number(payload["score"]); ok {
		result.SuccessRate = toPercent(score * 100)
	}

	if confidence, ok := number(payload["confidence"]); ok {
		result.Confidence = toPercent(confidence)
	}

	if factors, ok := payload["factors"].(map[string]any); ok {
		for _, key := range models.FactorKeys {
			if v, ok := number(factors[key]); ok {
				result.Factors.Set(key, toPercent(v))
			}
		}
	}

	if advice, ok := payload["advice"].(string); ok {
		result.Advice = advice
	}

	if verdict, ok := payload["result"].(string); ok {
		result.Verdict = verdict
	}

	if joints, ok := payload["joints"].([]any); ok {
		result.Joints = make([]float64, 0, len(joints))
		for _, j := range joints {
			if v, ok := number(j); ok {
				result.Joints = append(result.Joints, v)
			}
		}
	}

	return result
}

// toPercent rounds half up (floor of v+0.5) and clamps to [0,100].
func toPercent(v float64) int {
	if math.IsNaN(v) {
		return 0
	}
	r := math.Floor(v + 0.5)
	switch {
	case r < 0:
		return 0
	case r > 100:
		return 100
	}
	return int(r)
}

// number accepts the numeric shapes a JSON decoder can produce. Strings,
// booleans and null are not numbers.
func number(v any) (float64, bool) {
	switch n := v.(type) {
	case float64:
		return n, !math.IsNaN(n)
	case float32:
		return float64(n), !math.IsNaN(float64(n))
	case int:
		return float64(n), true
	case int64:
		return float64(n), true
	case json.Number:
		f, err := n.Float64()
		return f, err == nil && !math.IsNaN(f)
	}
	return 0, false
}
