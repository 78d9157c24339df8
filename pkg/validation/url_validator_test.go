package validation

import (
	"testing"

	apperrors "go-trick-analyzer/internal/errors"
)

func TestValidateEndpoint(t *testing.T) {
	validator := NewURLValidator()

	tests := []struct {
		name     string
		endpoint string
		valid    bool
	}{
		{"default", "http://localhost:5000", true},
		{"https with path", "https://analysis.example.com/v1", true},
		{"ip address", "http://192.168.1.1:5000", true},
		{"upper case scheme", "HTTP://localhost:5000", true},
		{"empty", "", false},
		{"whitespace", "   ", false},
		{"relative", "/predict", false},
		{"ftp", "ftp://example.com", false},
		{"no host", "http://", false},
		{"query", "http://localhost:5000?x=1", false},
		{"fragment", "http://localhost:5000#top", false},
		{"malformed", "http://[::1", false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := validator.ValidateEndpoint(tt.endpoint)
			if tt.valid && err != nil {
				t.Errorf("Expected %q to be valid, got %v", tt.endpoint, err)
			}
			if !tt.valid {
				if err == nil {
					t.Errorf("Expected %q to be rejected", tt.endpoint)
				} else if !apperrors.IsType(err, apperrors.ErrorTypeValidation) {
					t.Errorf("Expected validation error, got %v", err)
				}
			}
		})
	}
}

func TestJoinPath(t *testing.T) {
	tests := []struct {
		endpoint, path, want string
	}{
		{"http://localhost:5000", "/predict", "http://localhost:5000/predict"},
		{"http://localhost:5000/", "/predict", "http://localhost:5000/predict"},
		{"http://localhost:5000/", "predict", "http://localhost:5000/predict"},
		{"https://api.example.com/v1", "/predict", "https://api.example.com/v1/predict"},
	}

	for _, tt := range tests {
		if got := JoinPath(tt.endpoint, tt.path); got != tt.want {
			t.Errorf("JoinPath(%q, %q) = %q, want %q", tt.endpoint, tt.path, got, tt.want)
		}
	}
}
