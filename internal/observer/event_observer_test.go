package observer

import (
	"bytes"
	"context"
	"strings"
	"testing"
	"time"

	"github.com/sirupsen/logrus"
)

type recordingObserver struct {
	name   string
	events []EventType
}

func (r *recordingObserver) OnEvent(ctx context.Context, event ViewEvent) {
	r.events = append(r.events, event.EventType)
}

func (r *recordingObserver) GetObserverName() string {
	return r.name
}

type panickingObserver struct{}

func (panickingObserver) OnEvent(ctx context.Context, event ViewEvent) {
	panic("boom")
}

func (panickingObserver) GetObserverName() string {
	return "panicking"
}

func TestEventPublisher_OrderAndUnsubscribe(t *testing.T) {
	publisher := NewEventPublisher()
	rec := &recordingObserver{name: "rec"}

	publisher.Subscribe(panickingObserver{})
	publisher.Subscribe(rec)

	ctx := context.Background()
	publisher.NotifyObservers(ctx, ViewEvent{EventType: ImageAccepted})
	publisher.NotifyObservers(ctx, ViewEvent{EventType: AnalysisStarted})

	publisher.Unsubscribe(rec)
	publisher.NotifyObservers(ctx, ViewEvent{EventType: AnalysisCompleted})

	if len(rec.events) != 2 || rec.events[0] != ImageAccepted || rec.events[1] != AnalysisStarted {
		t.Errorf("Unexpected events: %v", rec.events)
	}
}

func TestMetricsObserver(t *testing.T) {
	metrics := NewMetricsObserver()
	ctx := context.Background()

	events := []ViewEvent{
		{EventType: ImageAccepted},
		{EventType: ImageRejected},
		{EventType: AnalysisStarted},
		{EventType: AnalysisCompleted, ProcessingTime: 200 * time.Millisecond},
		{EventType: AnalysisStarted},
		{EventType: AnalysisCompleted, ProcessingTime: 400 * time.Millisecond},
		{EventType: AnalysisStarted},
		{EventType: AnalysisFailed},
		{EventType: AnalysisDiscarded},
	}
	for _, e := range events {
		metrics.OnEvent(ctx, e)
	}

	got := metrics.GetMetrics()
	expected := map[string]int64{
		"uploads":             1,
		"rejected_uploads":    1,
		"total_analyses":      3,
		"successful_analyses": 2,
		"failed_analyses":     1,
		"discarded_analyses":  1,
	}
	for key, want := range expected {
		if got[key] != want {
			t.Errorf("Expected %s=%d, got %v", key, want, got[key])
		}
	}
	if got["avg_processing_time"] != 300*time.Millisecond {
		t.Errorf("Expected avg 300ms, got %v", got["avg_processing_time"])
	}
}

func TestLoggingObserver(t *testing.T) {
	var buf bytes.Buffer
	logger := logrus.New()
	logger.SetOutput(&buf)
	logger.SetFormatter(&logrus.JSONFormatter{})

	obs := NewLoggingObserver(logger)
	obs.OnEvent(context.Background(), ViewEvent{
		EventType:    AnalysisFailed,
		Phase:        "error_shown",
		ErrorMessage: "blurry image",
	})

	out := buf.String()
	for _, want := range []string{`"event_type":"analysis_failed"`, `"error":"blurry image"`, `"level":"error"`} {
		if !strings.Contains(out, want) {
			t.Errorf("Expected log output to contain %s, got %s", want, out)
		}
	}
}
