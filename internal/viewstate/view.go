package viewstate

import (
	"go-trick-analyzer/internal/render"
	"go-trick-analyzer/pkg/models"
)

// View is an immutable snapshot of the orchestrator. Result is set only in
// ResultShown and Error only in ErrorShown.
type View struct {
	Phase  Phase
	Status string
	// Notice holds the message of the latest rejected upload. It does not
	// affect the phase.
	Notice string
	Image  *models.ImageView
	Result *models.AnalysisResult
	Error  string
}

// CanAnalyze reports whether the analyze trigger is live.
func (v View) CanAnalyze() bool {
	return v.Phase == ImageReady || v.Phase == ResultShown || v.Phase == ErrorShown
}

// Response converts the view to its JSON form.
func (v View) Response() models.StateResponse {
	resp := models.StateResponse{
		Phase:      v.Phase.String(),
		Status:     v.Status,
		Notice:     v.Notice,
		Error:      v.Error,
		Image:      v.Image,
		CanAnalyze: v.CanAnalyze(),
	}
	if v.Result != nil {
		resp.Result = render.Result(*v.Result)
	}
	return resp
}
