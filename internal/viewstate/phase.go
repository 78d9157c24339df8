package viewstate

import "go-trick-analyzer/pkg/models"

// Phase is the single active view phase. It is always derived from the
// orchestrator's data and never stored.
type Phase int

const (
	NoImage Phase = iota
	ImageReady
	Analyzing
	ResultShown
	ErrorShown
)

func (p Phase) String() string {
	switch p {
	case NoImage:
		return "no_image"
	case ImageReady:
		return "image_ready"
	case Analyzing:
		return "analyzing"
	case ResultShown:
		return "result_shown"
	case ErrorShown:
		return "error_shown"
	}
	return "unknown"
}

// outcome is the settled result of the latest analysis attempt: either a
// normalized result or a user-facing error, never both.
type outcome interface {
	isOutcome()
}

type resultOutcome struct {
	result models.AnalysisResult
}

type errorOutcome struct {
	message string
}

func (resultOutcome) isOutcome() {}
func (errorOutcome) isOutcome()  {}

// derivePhase computes the phase from the underlying data.
func derivePhase(hasImage, analyzing bool, out outcome) Phase {
	switch {
	case analyzing:
		return Analyzing
	case !hasImage:
		return NoImage
	}
	switch out.(type) {
	case resultOutcome:
		return ResultShown
	case errorOutcome:
		return ErrorShown
	}
	return ImageReady
}
