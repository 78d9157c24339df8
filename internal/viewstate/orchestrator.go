// Package viewstate composes validation, upload state, the analysis client
// and the normalizer into the view's state machine.
package viewstate

import (
	"context"
	"fmt"
	"sync"
	"time"

	apperrors "go-trick-analyzer/internal/errors"
	"go-trick-analyzer/internal/logger"
	"go-trick-analyzer/internal/normalize"
	"go-trick-analyzer/internal/observer"
	"go-trick-analyzer/internal/predict"
	"go-trick-analyzer/internal/preview"
	"go-trick-analyzer/internal/storage"
	"go-trick-analyzer/internal/upload"
	"go-trick-analyzer/pkg/models"

	"github.com/sirupsen/logrus"
)

var (
	// ErrNoImage is returned by Analyze and ImageBytes when nothing is uploaded.
	ErrNoImage = apperrors.NewNotFoundError("No image uploaded", upload.ErrNoImage)
	// ErrAnalysisInFlight is returned by Analyze while a request is pending.
	ErrAnalysisInFlight = apperrors.NewConflictError("Analysis already in progress")
	// ErrSuperseded is returned by Analyze when the image it analyzed was
	// replaced or cleared before the response arrived.
	ErrSuperseded = apperrors.NewConflictError("Analysis superseded by a newer image")
)

// Validator decides whether a candidate file may be uploaded.
type Validator interface {
	Validate(file models.CandidateFile) error
}

// Orchestrator owns the view state. All methods are safe for concurrent
// use; the lock is not held while the analysis request is on the wire.
// Observers are notified under the lock and must not call back into the
// orchestrator.
type Orchestrator struct {
	mu sync.Mutex

	validator Validator
	previews  *preview.Store
	uploads   *upload.State
	analyzer  predict.Analyzer
	fetcher   storage.ImageFetcher
	events    observer.Subject

	analyzing  bool
	generation uint64
	cancel     context.CancelFunc
	outcome    outcome
	notice     string
}

// Option configures an Orchestrator
type Option func(*Orchestrator)

// WithImageFetcher sets how remote-backed images are read back for re-analysis.
func WithImageFetcher(f storage.ImageFetcher) Option {
	return func(o *Orchestrator) {
		o.fetcher = f
	}
}

// WithEvents sets the publisher that receives transition events.
func WithEvents(s observer.Subject) Option {
	return func(o *Orchestrator) {
		o.events = s
	}
}

// New creates an orchestrator in the NoImage phase.
func New(validator Validator, previews *preview.Store, analyzer predict.Analyzer, opts ...Option) *Orchestrator {
	o := &Orchestrator{
		validator: validator,
		previews:  previews,
		uploads:   upload.NewState(),
		analyzer:  analyzer,
	}
	for _, opt := range opts {
		opt(o)
	}
	return o
}

// Upload validates file and, if it is acceptable, makes it the live image.
// A rejected file leaves the current image, result and error as they were
// and only records a notice.
func (o *Orchestrator) Upload(file models.CandidateFile) (View, error) {
	o.mu.Lock()
	defer o.mu.Unlock()

	if err := o.validator.Validate(file); err != nil {
		o.notice = apperrors.UserMessage(err)
		o.publish(observer.ImageRejected, "", 0, o.notice)
		return o.view(), err
	}

	o.abortInFlight()
	handle := o.previews.Allocate(file.Data)
	o.uploads.SetAccepted(handle)
	o.outcome = nil
	o.notice = ""

	o.publish(observer.ImageAccepted, handle.Ref(), 0, "")
	return o.view(), nil
}

// Analyze sends the live image to the analysis service and settles the view
// into ResultShown or ErrorShown. The returned error is the failure the
// view now shows, or one of ErrNoImage, ErrAnalysisInFlight, ErrSuperseded.
// Once sent, the request ignores cancellation of ctx; only a new upload or
// Clear aborts it.
func (o *Orchestrator) Analyze(ctx context.Context) (View, error) {
	o.mu.Lock()
	img := o.uploads.Image()
	if img == nil {
		defer o.mu.Unlock()
		return o.view(), ErrNoImage
	}
	if o.analyzing {
		defer o.mu.Unlock()
		return o.view(), ErrAnalysisInFlight
	}

	data, local, err := o.uploads.LocalBytes()
	if err != nil {
		defer o.mu.Unlock()
		return o.view(), apperrors.NewInternalError("Failed to read image", err)
	}
	remoteURL := img.RemoteURL()

	o.outcome = nil
	o.notice = ""
	o.uploads.ClearStatus()
	o.analyzing = true
	o.generation++
	gen := o.generation
	reqCtx, cancel := context.WithCancel(context.WithoutCancel(ctx))
	o.cancel = cancel
	o.publish(observer.AnalysisStarted, img.Ref(), 0, "")
	o.mu.Unlock()

	start := time.Now()
	pred, err := o.send(reqCtx, data, local, remoteURL)
	cancel()
	elapsed := time.Since(start)

	o.mu.Lock()
	defer o.mu.Unlock()

	if gen != o.generation {
		o.publish(observer.AnalysisDiscarded, "", elapsed, "")
		return o.view(), ErrSuperseded
	}
	o.analyzing = false
	o.cancel = nil

	if err != nil {
		o.outcome = errorOutcome{message: apperrors.UserMessage(err)}
		o.publish(observer.AnalysisFailed, "", elapsed, err.Error())
		return o.view(), err
	}

	if pred.ImageURL != "" {
		if err := o.uploads.ReplaceWithRemote(pred.ImageURL); err == nil {
			o.publish(observer.ImageReplaced, pred.ImageURL, 0, "")
		}
	}
	o.outcome = resultOutcome{result: normalize.Normalize(pred.Payload)}
	o.publish(observer.AnalysisCompleted, "", elapsed, "")
	return o.view(), nil
}

// send reads the image bytes if needed and performs the request. It runs
// without the lock.
func (o *Orchestrator) send(ctx context.Context, data []byte, local bool, remoteURL string) (*predict.Prediction, error) {
	if !local {
		if o.fetcher == nil {
			return nil, apperrors.NewTransportError(fmt.Errorf("no fetcher configured for %s", remoteURL))
		}
		fetched, err := o.fetcher.FetchImage(ctx, remoteURL)
		if err != nil {
			logger.WithFields(logrus.Fields{
				"image_url": remoteURL,
				"error":     err.Error(),
			}).Warn("Failed to fetch remote image for analysis")
			return nil, apperrors.NewTransportError(err)
		}
		data = fetched
	}
	return o.analyzer.Analyze(ctx, data)
}

// Clear cancels any pending request and returns to NoImage.
func (o *Orchestrator) Clear() View {
	o.mu.Lock()
	defer o.mu.Unlock()

	o.abortInFlight()
	o.uploads.Clear()
	o.outcome = nil
	o.notice = ""
	o.publish(observer.Cleared, "", 0, "")
	return o.view()
}

// View returns a snapshot of the current state.
func (o *Orchestrator) View() View {
	o.mu.Lock()
	defer o.mu.Unlock()
	return o.view()
}

// ImageBytes returns the bytes of a locally-backed live image, or the URL of
// a remote-backed one.
func (o *Orchestrator) ImageBytes(ctx context.Context) ([]byte, string, error) {
	o.mu.Lock()
	defer o.mu.Unlock()

	img := o.uploads.Image()
	if img == nil {
		return nil, "", ErrNoImage
	}
	data, local, err := o.uploads.LocalBytes()
	if err != nil {
		return nil, "", apperrors.NewInternalError("Failed to read image", err)
	}
	if !local {
		return nil, img.RemoteURL(), nil
	}
	out := make([]byte, len(data))
	copy(out, data)
	return out, "", nil
}

// abortInFlight cancels the pending request, if any. Its response will be
// discarded because the generation no longer matches.
func (o *Orchestrator) abortInFlight() {
	if !o.analyzing {
		return
	}
	o.cancel()
	o.cancel = nil
	o.analyzing = false
	o.generation++
}

func (o *Orchestrator) view() View {
	img := o.uploads.Image()
	v := View{
		Phase:  derivePhase(img != nil, o.analyzing, o.outcome),
		Notice: o.notice,
	}
	if img == nil {
		return v
	}

	v.Status = o.uploads.Status()
	v.Image = &models.ImageView{
		Ref:    img.Ref(),
		Local:  img.IsLocal(),
		Remote: img.RemoteURL(),
	}
	switch out := o.outcome.(type) {
	case resultOutcome:
		if v.Phase == ResultShown {
			result := out.result
			v.Result = &result
		}
	case errorOutcome:
		if v.Phase == ErrorShown {
			v.Error = out.message
		}
	}
	return v
}

func (o *Orchestrator) publish(t observer.EventType, ref string, elapsed time.Duration, msg string) {
	if o.events == nil {
		return
	}
	o.events.NotifyObservers(context.Background(), observer.ViewEvent{
		EventType:      t,
		Phase:          derivePhase(o.uploads.Image() != nil, o.analyzing, o.outcome).String(),
		ImageRef:       ref,
		ProcessingTime: elapsed,
		ErrorMessage:   msg,
	})
}
