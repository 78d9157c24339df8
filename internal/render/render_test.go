package render

import (
	"testing"

	"go-trick-analyzer/pkg/models"
)

func TestDisplayAdvice(t *testing.T) {
	tests := []struct {
		name   string
		advice string
		want   string
	}{
		{"empty", "", ""},
		{"single line", "keep going", "keep going"},
		{"exactly three", "a\nb\nc", "a\nb\nc"},
		{"truncated", "a\nb\nc\nd", "a\nb\nc"},
		{"many lines", "1\n2\n3\n4\n5\n6", "1\n2\n3"},
		{"blank lines count", "a\n\nb\nc", "a\n\nb"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := DisplayAdvice(tt.advice); got != tt.want {
				t.Errorf("DisplayAdvice(%q) = %q, want %q", tt.advice, got, tt.want)
			}
		})
	}
}

func TestResult(t *testing.T) {
	result := models.AnalysisResult{
		SuccessRate: 88,
		Confidence:  91,
		Factors:     models.AnalysisFactors{Gaze: 80, Straightness: 70, Axis: 90, Arm: 60, Rebound: 50},
		Advice:      "a\nb\nc\nd",
		Verdict:     "success",
	}

	view := Result(result)
	if view.Advice != "a\nb\nc" {
		t.Errorf("Expected truncated advice, got %q", view.Advice)
	}
	if view.FullAdvice != "a\nb\nc\nd" {
		t.Errorf("Expected full advice to be kept, got %q", view.FullAdvice)
	}
	if view.SuccessRate != 88 || view.Confidence != 91 || view.Verdict != "success" {
		t.Errorf("Unexpected view: %+v", view)
	}

	if len(view.Factors) != len(models.FactorKeys) {
		t.Fatalf("Expected %d factors, got %d", len(models.FactorKeys), len(view.Factors))
	}
	wantScores := []int{80, 70, 90, 60, 50}
	for i, f := range view.Factors {
		if f.Key != models.FactorKeys[i] {
			t.Errorf("Factor %d: expected key %s, got %s", i, models.FactorKeys[i], f.Key)
		}
		if f.Score != wantScores[i] {
			t.Errorf("Factor %s: expected %d, got %d", f.Key, wantScores[i], f.Score)
		}
		if f.Label == "" {
			t.Errorf("Factor %s has no label", f.Key)
		}
	}
}

func TestFactorLabel_Unknown(t *testing.T) {
	if got := FactorLabel("spin"); got != "spin" {
		t.Errorf("Expected unknown key to label itself, got %q", got)
	}
}
