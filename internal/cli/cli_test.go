package cli

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"go-trick-analyzer/pkg/models"
)

// execute runs the root command in an isolated directory against a fake
// analysis service answering body.
func execute(t *testing.T, body string, args ...string) (string, error) {
	t.Helper()

	service := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/predict" {
			w.WriteHeader(http.StatusNotFound)
			return
		}
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(body))
	}))
	t.Cleanup(service.Close)

	t.Setenv("ANALYSIS_ENDPOINT", service.URL)
	t.Setenv("STORAGE_TYPE", "http")
	t.Setenv("LOG_LEVEL", "error")
	testChdir(t, t.TempDir())

	var out bytes.Buffer
	cmd := NewRootCommand("1.2.3", "abc123", "2026-01-01")
	cmd.SetOut(&out)
	cmd.SetErr(&out)
	cmd.SetArgs(args)
	err := cmd.Execute()
	return out.String(), err
}

func writeFile(t *testing.T, name string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	if err := os.WriteFile(path, []byte("\x89PNG\r\n\x1a\nfake"), 0o600); err != nil {
		t.Fatalf("Failed to write %s: %v", name, err)
	}
	return path
}

func TestVersionCommand(t *testing.T) {
	out, err := execute(t, `{}`, "version")
	if err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}
	if !strings.Contains(out, "trick-analyzer 1.2.3 (abc123) built on 2026-01-01") {
		t.Errorf("Unexpected version output: %s", out)
	}
}

func TestOutputFormatSuggestion(t *testing.T) {
	_, err := execute(t, `{}`, "analyze", "-o", "jsno", "x.png")
	if err == nil || !strings.Contains(err.Error(), `did you mean "json"`) {
		t.Errorf("Expected suggestion, got %v", err)
	}
}

func TestAnalyzeCommand_JSON(t *testing.T) {
	path := writeFile(t, "kickflip.png")
	out, err := execute(t,
		`{"success":true,"score":0.873,"confidence":88,"factors":{"gaze":80},"advice":"a\nb\nc\nd","result":"success"}`,
		"analyze", "-o", "json", path)
	if err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}

	var resp models.StateResponse
	if err := json.Unmarshal([]byte(out), &resp); err != nil {
		t.Fatalf("Failed to decode output %q: %v", out, err)
	}
	if resp.Phase != "result_shown" || resp.Result == nil {
		t.Fatalf("Expected result, got %+v", resp)
	}
	if resp.Result.SuccessRate != 87 || resp.Result.Advice != "a\nb\nc" || resp.Result.Verdict != "success" {
		t.Errorf("Unexpected result: %+v", resp.Result)
	}
}

func TestAnalyzeCommand_Text(t *testing.T) {
	path := writeFile(t, "kickflip.png")
	out, err := execute(t,
		`{"success":true,"score":0.5,"factors":{"rebound":42},"advice":"bend your knees"}`,
		"analyze", path)
	if err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}
	for _, want := range []string{"Success rate: 50%", "Confidence:   95%", "Rebound", "42", "bend your knees"} {
		if !strings.Contains(out, want) {
			t.Errorf("Expected %q in output:\n%s", want, out)
		}
	}
}

func TestAnalyzeCommand_Failures(t *testing.T) {
	tests := []struct {
		name string
		file string
		body string
		want string
	}{
		{"rejected by service", "kickflip.png", `{"success":false,"error":"blurry image"}`, "Error: blurry image"},
		{"generic rejection", "kickflip.png", `{"success":false}`, "Error: Analysis failed"},
		{"malformed response", "kickflip.png", `not json`, "Error: An error occurred during analysis"},
		{"not a png", "kickflip.jpg", `{"success":true}`, "Only PNG (.png) images can be uploaded"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			out, err := execute(t, tt.body, "analyze", writeFile(t, tt.file))
			if err == nil {
				t.Error("Expected command to fail")
			}
			if !strings.Contains(out, tt.want) {
				t.Errorf("Expected %q in output:\n%s", tt.want, out)
			}
		})
	}
}

func TestAnalyzeCommand_MissingFile(t *testing.T) {
	if _, err := execute(t, `{}`, "analyze", "/does/not/exist.png"); err == nil {
		t.Error("Expected error for missing file")
	}
}

// testChdir mirrors testing.T.Chdir (Go 1.24+) for older toolchains.
func testChdir(t *testing.T, dir string) {
	t.Helper()
	oldwd, err := os.Getwd()
	if err != nil {
		t.Fatal(err)
	}
	if err := os.Chdir(dir); err != nil {
		t.Fatal(err)
	}
	t.Cleanup(func() {
		if err := os.Chdir(oldwd); err != nil {
			t.Fatalf("restoring working directory: %v", err)
		}
	})
}
