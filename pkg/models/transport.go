package models

// CandidateFile is a file offered for upload, before validation
type CandidateFile struct {
	Name        string
	ContentType string
	Data        []byte
}

// ErrorResponse represents an error response
type ErrorResponse struct {
	Error   string `json:"error"`
	Message string `json:"message,omitempty"`
}

// ImageView describes the live image for a client
type ImageView struct {
	Ref    string `json:"ref"`
	Local  bool   `json:"local"`
	Remote string `json:"remote_url,omitempty"`
}

// ResultView is an AnalysisResult as a view renders it: advice is cut to the
// displayable lines and factors are listed in display order.
type ResultView struct {
	SuccessRate int           `json:"success_rate"`
	Confidence  int           `json:"confidence"`
	Advice      string        `json:"advice"`
	FullAdvice  string        `json:"full_advice"`
	Factors     []FactorScore `json:"factors"`
	Verdict     string        `json:"verdict,omitempty"`
}

// FactorScore is one labelled factor row
type FactorScore struct {
	Key   string `json:"key"`
	Label string `json:"label"`
	Score int    `json:"score"`
}

// StateResponse is the JSON body returned by the local HTTP surface
type StateResponse struct {
	Phase      string      `json:"phase"`
	Status     string      `json:"status,omitempty"`
	Notice     string      `json:"notice,omitempty"`
	Error      string      `json:"error,omitempty"`
	Image      *ImageView  `json:"image,omitempty"`
	Result     *ResultView `json:"result,omitempty"`
	CanAnalyze bool        `json:"can_analyze"`
}
