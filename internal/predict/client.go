package predict

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"net/textproto"
	"time"

	apperrors "go-trick-analyzer/internal/errors"
	"go-trick-analyzer/internal/logger"
	"go-trick-analyzer/pkg/models"

	"github.com/sirupsen/logrus"
	"golang.org/x/time/rate"
)

const (
	// FieldName and FileName are fixed by the service contract.
	FieldName = "image"
	FileName  = "image.png"

	maxResponseBytes = 4 << 20
)

// Analyzer sends one image to the remote analysis service.
type Analyzer interface {
	Analyze(ctx context.Context, png []byte) (*Prediction, error)
}

// Prediction is an accepted analysis: the raw payload for the normalizer and
// the durable image URL, set only when the response status was 2xx.
type Prediction struct {
	Payload    models.Payload
	ImageURL   string
	StatusCode int
}

// Client is the HTTP implementation of Analyzer. It performs exactly one
// attempt per call.
type Client struct {
	endpoint string
	client   *http.Client
	limiter  *rate.Limiter
}

// Option configures a Client
type Option func(*Client)

// WithHTTPClient replaces the underlying HTTP client
func WithHTTPClient(c *http.Client) Option {
	return func(cl *Client) {
		cl.client = c
	}
}

// WithMinInterval paces outbound requests. Zero disables pacing.
func WithMinInterval(d time.Duration) Option {
	return func(cl *Client) {
		if d > 0 {
			cl.limiter = rate.NewLimiter(rate.Every(d), 1)
		}
	}
}

// NewClient creates a client posting to endpoint (the full /predict URL).
func NewClient(endpoint string, timeout time.Duration, opts ...Option) *Client {
	transport := &http.Transport{
		MaxIdleConns:          4,
		MaxIdleConnsPerHost:   1,
		IdleConnTimeout:       30 * time.Second,
		TLSHandshakeTimeout:   10 * time.Second,
		ExpectContinueTimeout: 1 * time.Second,
	}

	c := &Client{
		endpoint: endpoint,
		client: &http.Client{
			Transport: transport,
			Timeout:   timeout,
		},
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Endpoint returns the URL requests are posted to
func (c *Client) Endpoint() string {
	return c.endpoint
}

// Analyze posts png as a single multipart field and classifies the answer:
// transport or decode failures are transport errors, a falsy "success" is a
// rejected error, anything else is a Prediction.
func (c *Client) Analyze(ctx context.Context, png []byte) (*Prediction, error) {
	start := time.Now()

	if c.limiter != nil {
		if err := c.limiter.Wait(ctx); err != nil {
			return nil, classifyTransport(err)
		}
	}

	body, contentType, err := encodeImage(png)
	if err != nil {
		return nil, apperrors.NewInternalError("failed to encode request body", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.endpoint, body)
	if err != nil {
		return nil, apperrors.NewTransportError(fmt.Errorf("invalid endpoint: %w", err))
	}
	req.Header.Set("Content-Type", contentType)
	req.Header.Set("Accept", "application/json")
	req.Header.Set("User-Agent", "Go-Trick-Analyzer/1.0")

	logger.WithFields(logrus.Fields{
		"endpoint": c.endpoint,
		"bytes":    len(png),
	}).Debug("Sending analysis request")

	resp, err := c.client.Do(req)
	if err != nil {
		return nil, classifyTransport(err)
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(io.LimitReader(resp.Body, maxResponseBytes))
	if err != nil {
		return nil, classifyTransport(fmt.Errorf("failed to read response: %w", err))
	}

	payload, err := decodePayload(raw)
	if err != nil {
		return nil, apperrors.NewTransportError(fmt.Errorf("status %d: %w", resp.StatusCode, err))
	}

	fields := logrus.Fields{
		"status_code":        resp.StatusCode,
		"processing_time_ms": time.Since(start).Milliseconds(),
	}

	if !truthy(payload["success"]) {
		msg, _ := payload["error"].(string)
		logger.WithFields(fields).WithField("error", msg).Info("Analysis rejected by service")
		return nil, apperrors.NewRejectedError(msg)
	}

	prediction := &Prediction{Payload: payload, StatusCode: resp.StatusCode}
	if u, ok := payload["image_url"].(string); ok && statusOK(resp.StatusCode) {
		prediction.ImageURL = u
	}

	logger.WithFields(fields).Info("Analysis accepted by service")
	return prediction, nil
}

func encodeImage(png []byte) (io.Reader, string, error) {
	var buf bytes.Buffer
	w := multipart.NewWriter(&buf)

	h := make(textproto.MIMEHeader)
	h.Set("Content-Disposition", fmt.Sprintf(`form-data; name="%s"; filename="%s"`, FieldName, FileName))
	h.Set("Content-Type", "image/png")

	part, err := w.CreatePart(h)
	if err != nil {
		return nil, "", err
	}
	if _, err := part.Write(png); err != nil {
		return nil, "", err
	}
	if err := w.Close(); err != nil {
		return nil, "", err
	}
	return &buf, w.FormDataContentType(), nil
}

// decodePayload requires a JSON object; null, arrays and scalars are malformed.
func decodePayload(raw []byte) (models.Payload, error) {
	var v any
	if err := json.Unmarshal(raw, &v); err != nil {
		return nil, fmt.Errorf("malformed response body: %w", err)
	}
	obj, ok := v.(map[string]any)
	if !ok {
		return nil, fmt.Errorf("malformed response body: expected JSON object, got %T", v)
	}
	return models.Payload(obj), nil
}

func statusOK(code int) bool {
	return code >= 200 && code < 300
}

func classifyTransport(err error) *apperrors.AppError {
	if errors.Is(err, context.DeadlineExceeded) {
		return apperrors.NewTimeoutError(err)
	}
	var netErr interface{ Timeout() bool }
	if errors.As(err, &netErr) && netErr.Timeout() {
		return apperrors.NewTimeoutError(err)
	}
	return apperrors.NewTransportError(err)
}

// truthy treats true, non-zero numbers, non-empty strings, objects and
// arrays as success.
func truthy(v any) bool {
	switch b := v.(type) {
	case bool:
		return b
	case float64:
		return b != 0
	case string:
		return b != ""
	case nil:
		return false
	}
	return true
}
