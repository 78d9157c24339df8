package observer

import (
	"context"
	"sync"
	"time"

	"github.com/sirupsen/logrus"
)

// ViewEvent represents a transition of the view state
type ViewEvent struct {
	EventType      EventType              `json:"event_type"`
	Timestamp      time.Time              `json:"timestamp"`
	Phase          string                 `json:"phase"`
	ImageRef       string                 `json:"image_ref,omitempty"`
	ProcessingTime time.Duration          `json:"processing_time,omitempty"`
	ErrorMessage   string                 `json:"error_message,omitempty"`
	Metadata       map[string]interface{} `json:"metadata,omitempty"`
}

// EventType represents the type of view event
type EventType string

const (
	// ImageAccepted when a file passes validation and becomes the live image
	ImageAccepted EventType = "image_accepted"
	// ImageRejected when a file fails validation
	ImageRejected EventType = "image_rejected"
	// ImageReplaced when the live image moves to its remote URL
	ImageReplaced EventType = "image_replaced"
	// AnalysisStarted when a request is sent
	AnalysisStarted EventType = "analysis_started"
	// AnalysisCompleted when a result is shown
	AnalysisCompleted EventType = "analysis_completed"
	// AnalysisFailed when an error is shown
	AnalysisFailed EventType = "analysis_failed"
	// AnalysisDiscarded when a response arrives for an image that is no longer live
	AnalysisDiscarded EventType = "analysis_discarded"
	// Cleared when the user returns to the empty state
	Cleared EventType = "cleared"
)

// Observer defines the interface for event observers
type Observer interface {
	OnEvent(ctx context.Context, event ViewEvent)
	GetObserverName() string
}

// Subject defines the interface for event publishers
type Subject interface {
	Subscribe(observer Observer)
	Unsubscribe(observer Observer)
	NotifyObservers(ctx context.Context, event ViewEvent)
}

// LoggingObserver logs view events
type LoggingObserver struct {
	logger *logrus.Logger
}

// NewLoggingObserver creates a new logging observer
func NewLoggingObserver(logger *logrus.Logger) Observer {
	return &LoggingObserver{
		logger: logger,
	}
}

// OnEvent handles view events by logging them
func (o *LoggingObserver) OnEvent(ctx context.Context, event ViewEvent) {
	fields := logrus.Fields{
		"event_type": event.EventType,
		"phase":      event.Phase,
	}
	if event.ImageRef != "" {
		fields["image_ref"] = event.ImageRef
	}
	if event.ProcessingTime > 0 {
		fields["processing_time_ms"] = event.ProcessingTime.Milliseconds()
	}
	if event.ErrorMessage != "" {
		fields["error"] = event.ErrorMessage
	}
	for k, v := range event.Metadata {
		fields[k] = v
	}

	entry := o.logger.WithFields(fields)
	switch event.EventType {
	case ImageAccepted:
		entry.Info("Image accepted")
	case ImageRejected:
		entry.Warn("Image rejected")
	case ImageReplaced:
		entry.Debug("Image moved to remote storage")
	case AnalysisStarted:
		entry.Info("Trick analysis started")
	case AnalysisCompleted:
		entry.Info("Trick analysis completed")
	case AnalysisFailed:
		entry.Error("Trick analysis failed")
	case AnalysisDiscarded:
		entry.Warn("Stale analysis response discarded")
	default:
		entry.Debug("View event occurred")
	}
}

// GetObserverName returns the observer name
func (o *LoggingObserver) GetObserverName() string {
	return "logging_observer"
}

// MetricsObserver collects counters from view events
type MetricsObserver struct {
	mu                  sync.RWMutex
	uploads             int64
	rejectedUploads     int64
	totalAnalyses       int64
	successfulAnalyses  int64
	failedAnalyses      int64
	discardedAnalyses   int64
	totalProcessingTime time.Duration
}

// NewMetricsObserver creates a new metrics observer
func NewMetricsObserver() *MetricsObserver {
	return &MetricsObserver{}
}

// OnEvent handles view events by collecting metrics
func (o *MetricsObserver) OnEvent(ctx context.Context, event ViewEvent) {
	o.mu.Lock()
	defer o.mu.Unlock()

	switch event.EventType {
	case ImageAccepted:
		o.uploads++
	case ImageRejected:
		o.rejectedUploads++
	case AnalysisStarted:
		o.totalAnalyses++
	case AnalysisCompleted:
		o.successfulAnalyses++
		o.totalProcessingTime += event.ProcessingTime
	case AnalysisFailed:
		o.failedAnalyses++
	case AnalysisDiscarded:
		o.discardedAnalyses++
	}
}

// GetObserverName returns the observer name
func (o *MetricsObserver) GetObserverName() string {
	return "metrics_observer"
}

// GetMetrics returns current metrics
func (o *MetricsObserver) GetMetrics() map[string]interface{} {
	o.mu.RLock()
	defer o.mu.RUnlock()

	avgProcessingTime := time.Duration(0)
	if o.successfulAnalyses > 0 {
		avgProcessingTime = o.totalProcessingTime / time.Duration(o.successfulAnalyses)
	}

	return map[string]interface{}{
		"uploads":               o.uploads,
		"rejected_uploads":      o.rejectedUploads,
		"total_analyses":        o.totalAnalyses,
		"successful_analyses":   o.successfulAnalyses,
		"failed_analyses":       o.failedAnalyses,
		"discarded_analyses":    o.discardedAnalyses,
		"total_processing_time": o.totalProcessingTime,
		"avg_processing_time":   avgProcessingTime,
	}
}

// EventPublisher implements the Subject interface
type EventPublisher struct {
	mu        sync.RWMutex
	observers []Observer
}

// NewEventPublisher creates a new event publisher
func NewEventPublisher() *EventPublisher {
	return &EventPublisher{
		observers: make([]Observer, 0),
	}
}

// Subscribe adds an observer
func (p *EventPublisher) Subscribe(observer Observer) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.observers = append(p.observers, observer)
}

// Unsubscribe removes an observer
func (p *EventPublisher) Unsubscribe(observer Observer) {
	p.mu.Lock()
	defer p.mu.Unlock()

	for i, obs := range p.observers {
		if obs.GetObserverName() == observer.GetObserverName() {
			p.observers = append(p.observers[:i], p.observers[i+1:]...)
			break
		}
	}
}

// NotifyObservers delivers event to every observer in subscription order.
// Events are delivered on the caller's goroutine so observers see
// transitions in the order they happened.
func (p *EventPublisher) NotifyObservers(ctx context.Context, event ViewEvent) {
	if event.Timestamp.IsZero() {
		event.Timestamp = time.Now()
	}

	p.mu.RLock()
	observers := make([]Observer, len(p.observers))
	copy(observers, p.observers)
	p.mu.RUnlock()

	for _, observer := range observers {
		notify(ctx, observer, event)
	}
}

func notify(ctx context.Context, obs Observer, event ViewEvent) {
	defer func() {
		if r := recover(); r != nil {
			// Log panic but don't crash the application
			logrus.WithField("observer", obs.GetObserverName()).
				WithField("panic", r).
				Error("Observer panicked while handling event")
		}
	}()
	obs.OnEvent(ctx, event)
}
