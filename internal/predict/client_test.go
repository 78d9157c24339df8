package predict

import (
	"context"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	apperrors "go-trick-analyzer/internal/errors"
)

var testPNG = []byte{0x89, 0x50, 0x4E, 0x47, 0x0D, 0x0A, 0x1A, 0x0A}

func TestClient_RequestShape(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost {
			t.Errorf("Expected POST, got %s", r.Method)
		}
		if r.URL.Path != "/predict" {
			t.Errorf("Expected /predict, got %s", r.URL.Path)
		}
		if err := r.ParseMultipartForm(1 << 20); err != nil {
			t.Errorf("Expected multipart body: %v", err)
			return
		}
		if len(r.MultipartForm.Value) != 0 {
			t.Errorf("Expected no extra fields, got %v", r.MultipartForm.Value)
		}
		if len(r.MultipartForm.File) != 1 {
			t.Errorf("Expected exactly one file field, got %d", len(r.MultipartForm.File))
		}
		file, header, err := r.FormFile("image")
		if err != nil {
			t.Errorf("Expected field 'image': %v", err)
			return
		}
		defer file.Close()
		if header.Filename != "image.png" {
			t.Errorf("Expected filename image.png, got %s", header.Filename)
		}
		data, _ := io.ReadAll(file)
		if string(data) != string(testPNG) {
			t.Errorf("Uploaded bytes differ")
		}
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"success":true,"score":0.5}`))
	}))
	defer server.Close()

	client := NewClient(server.URL+"/predict", 5*time.Second)
	prediction, err := client.Analyze(context.Background(), testPNG)
	if err != nil {
		t.Fatalf("Expected success, got %v", err)
	}
	if prediction.Payload["score"] != 0.5 {
		t.Errorf("Expected score 0.5 in payload, got %v", prediction.Payload["score"])
	}
}

func TestClient_Classification(t *testing.T) {
	tests := []struct {
		name         string
		status       int
		body         string
		expectType   apperrors.ErrorType
		expectMsg    string
		expectURL    string
		expectAccept bool
	}{
		{
			name:         "accepted",
			status:       200,
			body:         `{"success":true,"score":0.873}`,
			expectAccept: true,
		},
		{
			name:         "accepted with image url",
			status:       200,
			body:         `{"success":true,"score":0.1,"image_url":"https://cdn.example.com/x.png"}`,
			expectAccept: true,
			expectURL:    "https://cdn.example.com/x.png",
		},
		{
			name:         "truthy success with error status does not swap image",
			status:       500,
			body:         `{"success":true,"image_url":"https://cdn.example.com/x.png"}`,
			expectAccept: true,
			expectURL:    "",
		},
		{
			name:         "truthy non-boolean success",
			status:       200,
			body:         `{"success":1}`,
			expectAccept: true,
		},
		{
			name:       "rejected with message",
			status:     200,
			body:       `{"success":false,"error":"blurry image"}`,
			expectType: apperrors.ErrorTypeRejected,
			expectMsg:  "blurry image",
		},
		{
			name:       "rejected without message",
			status:     200,
			body:       `{"success":false}`,
			expectType: apperrors.ErrorTypeRejected,
			expectMsg:  apperrors.MsgAnalysisFailed,
		},
		{
			name:       "server error with json body is rejected",
			status:     500,
			body:       `{"error":"inference crashed"}`,
			expectType: apperrors.ErrorTypeRejected,
			expectMsg:  "inference crashed",
		},
		{
			name:       "missing file 400",
			status:     400,
			body:       `{"error":"image file required"}`,
			expectType: apperrors.ErrorTypeRejected,
			expectMsg:  "image file required",
		},
		{
			name:       "html body is a transport error",
			status:     502,
			body:       `<html>Bad Gateway</html>`,
			expectType: apperrors.ErrorTypeTransport,
			expectMsg:  apperrors.MsgAnalysisError,
		},
		{
			name:       "json array is a transport error",
			status:     200,
			body:       `[1,2,3]`,
			expectType: apperrors.ErrorTypeTransport,
			expectMsg:  apperrors.MsgAnalysisError,
		},
		{
			name:       "json null is a transport error",
			status:     200,
			body:       `null`,
			expectType: apperrors.ErrorTypeTransport,
			expectMsg:  apperrors.MsgAnalysisError,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(tt.status)
				w.Write([]byte(tt.body))
			}))
			defer server.Close()

			client := NewClient(server.URL+"/predict", 5*time.Second)
			prediction, err := client.Analyze(context.Background(), testPNG)

			if tt.expectAccept {
				if err != nil {
					t.Fatalf("Expected acceptance, got error: %v", err)
				}
				if prediction.ImageURL != tt.expectURL {
					t.Errorf("Expected image url %q, got %q", tt.expectURL, prediction.ImageURL)
				}
				if prediction.StatusCode != tt.status {
					t.Errorf("Expected status %d, got %d", tt.status, prediction.StatusCode)
				}
				return
			}

			if err == nil {
				t.Fatal("Expected an error, got none")
			}
			if !apperrors.IsType(err, tt.expectType) {
				t.Errorf("Expected error type %s, got %v", tt.expectType, err)
			}
			if apperrors.UserMessage(err) != tt.expectMsg {
				t.Errorf("Expected message %q, got %q", tt.expectMsg, apperrors.UserMessage(err))
			}
		})
	}
}

func TestClient_NetworkError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	url := server.URL
	server.Close()

	client := NewClient(url+"/predict", 2*time.Second)
	_, err := client.Analyze(context.Background(), testPNG)

	if !apperrors.IsType(err, apperrors.ErrorTypeTransport) {
		t.Errorf("Expected transport error, got %v", err)
	}
}

func TestClient_NoRetry(t *testing.T) {
	requests := 0
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		requests++
		w.WriteHeader(http.StatusServiceUnavailable)
		w.Write([]byte("unavailable"))
	}))
	defer server.Close()

	client := NewClient(server.URL+"/predict", 2*time.Second)
	if _, err := client.Analyze(context.Background(), testPNG); err == nil {
		t.Fatal("Expected error")
	}
	if requests != 1 {
		t.Errorf("Expected exactly 1 request, got %d", requests)
	}
}

func TestClient_Timeout(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		time.Sleep(300 * time.Millisecond)
		w.Write([]byte(`{"success":true}`))
	}))
	defer server.Close()

	client := NewClient(server.URL+"/predict", 50*time.Millisecond)
	_, err := client.Analyze(context.Background(), testPNG)

	if !apperrors.IsType(err, apperrors.ErrorTypeTimeout) {
		t.Errorf("Expected timeout error, got %v", err)
	}
	if apperrors.UserMessage(err) != apperrors.MsgAnalysisError {
		t.Errorf("Expected generic message, got %q", apperrors.UserMessage(err))
	}
}

func TestClient_Cancelled(t *testing.T) {
	release := make(chan struct{})
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		io.Copy(io.Discard, r.Body)
		select {
		case <-r.Context().Done():
		case <-release:
		}
	}))
	defer server.Close()
	defer close(release)

	ctx, cancel := context.WithCancel(context.Background())
	go func() {
		time.Sleep(20 * time.Millisecond)
		cancel()
	}()

	client := NewClient(server.URL+"/predict", 5*time.Second)
	_, err := client.Analyze(ctx, testPNG)
	if err == nil || !strings.Contains(err.Error(), "canceled") {
		t.Errorf("Expected cancellation error, got %v", err)
	}
}

func TestTruthy(t *testing.T) {
	tests := []struct {
		value    any
		expected bool
	}{
		{true, true},
		{false, false},
		{nil, false},
		{0.0, false},
		{2.0, true},
		{"", false},
		{"yes", true},
		{map[string]any{}, true},
		{[]any{}, true},
	}

	for _, tt := range tests {
		if got := truthy(tt.value); got != tt.expected {
			t.Errorf("truthy(%#v) = %v, expected %v", tt.value, got, tt.expected)
		}
	}
}

func TestClient_MinInterval(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"success":true}`))
	}))
	defer server.Close()

	client := NewClient(server.URL+"/predict", 2*time.Second, WithMinInterval(200*time.Millisecond))

	start := time.Now()
	for i := 0; i < 2; i++ {
		if _, err := client.Analyze(context.Background(), testPNG); err != nil {
			t.Fatalf("Unexpected error: %v", err)
		}
	}

	if elapsed := time.Since(start); elapsed < 150*time.Millisecond {
		t.Errorf("Expected second request to be paced, took %v", elapsed)
	}
}
