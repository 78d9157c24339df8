package upload

import (
	"fmt"
	"mime"
	"os"
	"path/filepath"

	"go-trick-analyzer/pkg/models"
)

// LoadCandidate reads a file from disk the way a file picker offers it: the
// base name as the declared name and the content type implied by its
// extension. Nothing is validated here.
func LoadCandidate(path string) (models.CandidateFile, error) {
	data, err := os.ReadFile(filepath.Clean(path))
	if err != nil {
		return models.CandidateFile{}, fmt.Errorf("failed to read %s: %w", path, err)
	}
	return models.CandidateFile{
		Name:        filepath.Base(path),
		ContentType: mime.TypeByExtension(filepath.Ext(path)),
		Data:        data,
	}, nil
}
