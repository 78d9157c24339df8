package transport

import (
	"context"
	"errors"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"time"

	"go-trick-analyzer/internal/config"
	apperrors "go-trick-analyzer/internal/errors"
	"go-trick-analyzer/internal/logger"
	"go-trick-analyzer/internal/predict"
	"go-trick-analyzer/internal/viewstate"
	"go-trick-analyzer/pkg/models"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"
)

// Version is reported by the health check
var Version = "dev"

// ViewState is the orchestrator as seen by the HTTP surface
type ViewState interface {
	Upload(file models.CandidateFile) (viewstate.View, error)
	Analyze(ctx context.Context) (viewstate.View, error)
	Clear() viewstate.View
	View() viewstate.View
	ImageBytes(ctx context.Context) ([]byte, string, error)
}

// multipartOverhead is allowed on top of the image limit for boundaries and
// part headers.
const multipartOverhead = 64 << 10

// MetricsSource exposes collected counters
type MetricsSource interface {
	GetMetrics() map[string]interface{}
}

func NewHandler(state ViewState, metrics MetricsSource, cfg *config.Config) http.Handler {
	r := gin.Default()

	// Add middleware
	r.Use(
		requestSizeLimiter(cfg.MaxUploadSize+multipartOverhead),
		errorHandler(),
	)

	// Configure routes
	r.GET("/health", healthCheck)

	api := r.Group("/api")
	api.POST("/upload", uploadImage(state, cfg.MaxUploadSize))
	api.POST("/analyze", analyzeImage(state))
	api.POST("/clear", clearImage(state))
	api.GET("/state", getState(state))
	api.GET("/image", getImage(state))
	if metrics != nil {
		api.GET("/metrics", getMetrics(metrics))
	}

	return r
}

func uploadImage(state ViewState, maxImageSize int64) gin.HandlerFunc {
	return func(c *gin.Context) {
		fh, err := c.FormFile(predict.FieldName)
		if err != nil {
			var maxErr *http.MaxBytesError
			if errors.As(err, &maxErr) {
				respondError(c, http.StatusRequestEntityTooLarge, "image too large", err)
				return
			}
			respondError(c, http.StatusBadRequest, fmt.Sprintf("missing %q file field", predict.FieldName), err)
			return
		}

		file, err := readCandidate(fh)
		if err != nil {
			respondError(c, http.StatusBadRequest, "failed to read upload", err)
			return
		}
		if int64(len(file.Data)) > maxImageSize {
			respondError(c, http.StatusRequestEntityTooLarge, "image too large",
				fmt.Errorf("image is %d bytes, limit is %d", len(file.Data), maxImageSize))
			return
		}

		view, err := state.Upload(file)
		if err != nil {
			logger.WithError(err).WithFields(logrus.Fields{
				"filename":     file.Name,
				"content_type": file.ContentType,
				"ip":           c.ClientIP(),
			}).Warn("Upload rejected")
			c.JSON(apperrors.GetStatusCode(err), view.Response())
			return
		}

		logger.WithFields(logrus.Fields{
			"filename": file.Name,
			"bytes":    len(file.Data),
		}).Info("Image uploaded")
		c.JSON(http.StatusOK, view.Response())
	}
}

func readCandidate(fh *multipart.FileHeader) (models.CandidateFile, error) {
	f, err := fh.Open()
	if err != nil {
		return models.CandidateFile{}, err
	}
	defer f.Close()

	data, err := io.ReadAll(f)
	if err != nil {
		return models.CandidateFile{}, err
	}
	return models.CandidateFile{
		Name:        fh.Filename,
		ContentType: fh.Header.Get("Content-Type"),
		Data:        data,
	}, nil
}

func analyzeImage(state ViewState) gin.HandlerFunc {
	return func(c *gin.Context) {
		startTime := time.Now()

		view, err := state.Analyze(c.Request.Context())
		switch {
		case err == nil:
		case apperrors.IsType(err, apperrors.ErrorTypeRejected), apperrors.IsTransport(err):
			// The failure is part of the view
			c.JSON(apperrors.GetStatusCode(err), view.Response())
			return
		default:
			respondError(c, apperrors.GetStatusCode(err), apperrors.UserMessage(err), err)
			return
		}

		logger.WithFields(logrus.Fields{
			"processing_time_ms": time.Since(startTime).Milliseconds(),
			"success_rate":       view.Result.SuccessRate,
			"confidence":         view.Result.Confidence,
		}).Info("Trick analysis completed successfully")
		c.JSON(http.StatusOK, view.Response())
	}
}

func clearImage(state ViewState) gin.HandlerFunc {
	return func(c *gin.Context) {
		c.JSON(http.StatusOK, state.Clear().Response())
	}
}

func getState(state ViewState) gin.HandlerFunc {
	return func(c *gin.Context) {
		c.JSON(http.StatusOK, state.View().Response())
	}
}

func getImage(state ViewState) gin.HandlerFunc {
	return func(c *gin.Context) {
		data, remoteURL, err := state.ImageBytes(c.Request.Context())
		if err != nil {
			respondError(c, apperrors.GetStatusCode(err), apperrors.UserMessage(err), err)
			return
		}
		if remoteURL != "" {
			c.Redirect(http.StatusFound, remoteURL)
			return
		}
		c.Data(http.StatusOK, "image/png", data)
	}
}

func getMetrics(metrics MetricsSource) gin.HandlerFunc {
	return func(c *gin.Context) {
		c.JSON(http.StatusOK, metrics.GetMetrics())
	}
}

func healthCheck(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"status":  "available",
		"version": Version,
		"time":    time.Now().UTC().Format(time.RFC3339),
	})
}

// Middleware and helper functions
func requestSizeLimiter(maxBytes int64) gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Request.Body = http.MaxBytesReader(c.Writer, c.Request.Body, maxBytes)
		c.Next()
	}
}

func errorHandler() gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Next()

		if len(c.Errors) > 0 {
			err := c.Errors.Last()
			respondError(c, determineStatusCode(err.Err), "request processing failed", err)
		}
	}
}

func determineStatusCode(err error) int {
	// Check if it's a custom app error first
	var appErr *apperrors.AppError
	if errors.As(err, &appErr) {
		return appErr.StatusCode
	}

	// Fallback to context-based errors
	switch {
	case errors.Is(err, context.DeadlineExceeded):
		return http.StatusGatewayTimeout
	case errors.Is(err, context.Canceled):
		return http.StatusRequestTimeout
	default:
		return http.StatusInternalServerError
	}
}

func respondError(c *gin.Context, code int, message string, err error) {
	// Log the error with context
	logger.WithError(err).WithFields(logrus.Fields{
		"status_code": code,
		"message":     message,
		"path":        c.Request.URL.Path,
		"method":      c.Request.Method,
		"ip":          c.ClientIP(),
	}).Error("Request failed")

	c.AbortWithStatusJSON(code, models.ErrorResponse{
		Error:   http.StatusText(code),
		Message: message,
	})
}
