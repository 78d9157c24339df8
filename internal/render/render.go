// Package render turns normalized results into what a view displays.
package render

import (
	"strings"

	"go-trick-analyzer/pkg/models"
)

// MaxAdviceLines is how many advice lines a view shows.
const MaxAdviceLines = 3

// factorLabels maps factor keys to their display labels
var factorLabels = map[string]string{
	models.FactorGaze:         "Gaze",
	models.FactorStraightness: "Straightness",
	models.FactorAxis:         "Axis",
	models.FactorArm:          "Arm swing",
	models.FactorRebound:      "Rebound",
}

// FactorLabel returns the display label for a factor key.
func FactorLabel(key string) string {
	if label, ok := factorLabels[key]; ok {
		return label
	}
	return key
}

// DisplayAdvice returns at most the first MaxAdviceLines lines of advice.
// The stored advice is never modified.
func DisplayAdvice(advice string) string {
	if advice == "" {
		return ""
	}
	lines := strings.SplitN(advice, "\n", MaxAdviceLines+1)
	if len(lines) > MaxAdviceLines {
		lines = lines[:MaxAdviceLines]
	}
	return strings.Join(lines, "\n")
}

// Factors lists the factor scores in display order.
func Factors(f models.AnalysisFactors) []models.FactorScore {
	scores := make([]models.FactorScore, 0, len(models.FactorKeys))
	for _, key := range models.FactorKeys {
		scores = append(scores, models.FactorScore{
			Key:   key,
			Label: FactorLabel(key),
			Score: f.Get(key),
		})
	}
	return scores
}

// Result builds the view of an analysis result.
func Result(r models.AnalysisResult) *models.ResultView {
	return &models.ResultView{
		SuccessRate: r.SuccessRate,
		Confidence:  r.Confidence,
		Advice:      DisplayAdvice(r.Advice),
		FullAdvice:  r.Advice,
		Factors:     Factors(r.Factors),
		Verdict:     r.Verdict,
	}
}
