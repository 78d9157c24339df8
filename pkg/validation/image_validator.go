package validation

import (
	"fmt"
	"strings"

	apperrors "go-trick-analyzer/internal/errors"
	"go-trick-analyzer/pkg/models"
)

// PNGContentType is the only MIME type accepted for upload
const PNGContentType = "image/png"

// ImageValidator gates which files may be uploaded. It only looks at the
// declared name and type, never at pixel content.
type ImageValidator struct {
	allowedSuffixes []string
	allowedTypes    []string
}

// NewImageValidator creates a validator that accepts PNG files only
func NewImageValidator() *ImageValidator {
	return &ImageValidator{
		allowedSuffixes: []string{".png"},
		allowedTypes:    []string{PNGContentType},
	}
}

// Validate returns nil when both the name suffix (case-insensitive) and the
// declared content type are acceptable, and an unsupported-format
// validation error otherwise.
func (v *ImageValidator) Validate(file models.CandidateFile) error {
	if !v.isSuffixAllowed(file.Name) || !v.isTypeAllowed(file.ContentType) {
		return apperrors.NewUnsupportedFormatError(
			fmt.Sprintf("name=%q content_type=%q", file.Name, file.ContentType))
	}
	return nil
}

func (v *ImageValidator) isSuffixAllowed(name string) bool {
	lower := strings.ToLower(name)
	for _, suffix := range v.allowedSuffixes {
		if strings.HasSuffix(lower, suffix) {
			return true
		}
	}
	return false
}

// isTypeAllowed compares exactly; "image/PNG" or "image/png; x=y" are rejected.
func (v *ImageValidator) isTypeAllowed(contentType string) bool {
	for _, allowed := range v.allowedTypes {
		if contentType == allowed {
			return true
		}
	}
	return false
}
