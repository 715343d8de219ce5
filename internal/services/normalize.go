package services

import (
	"strings"

	"github.com/wonder-codes/echo-repo/internal/apperr"
	"github.com/wonder-codes/echo-repo/internal/models"
)

// NormalizedInput is the single blob a generation request documents.
type NormalizedInput struct {
	// Code is the caller's inline code, empty when NeedsFetch is set.
	Code                string
	RepositoryReference string
	NeedsFetch          bool
}

// NormalizeInput reduces the two request shapes to one. A non-empty
// repository reference takes precedence and inline code is then ignored.
func NormalizeInput(code, repositoryReference string) (NormalizedInput, error) {
	ref := strings.TrimSpace(repositoryReference)
	if ref != "" {
		return NormalizedInput{RepositoryReference: ref, NeedsFetch: true}, nil
	}
	if strings.TrimSpace(code) == "" {
		return NormalizedInput{}, apperr.New(apperr.ErrInvalidInput, "no code or repository reference provided")
	}
	return NormalizedInput{Code: code}, nil
}

// ReadmeTitle derives a record title from the repository reference.
func ReadmeTitle(repositoryReference string) string {
	ref := strings.TrimRight(strings.TrimSpace(repositoryReference), "/")
	if ref == "" {
		return models.DefaultReadmeTitle
	}
	if i := strings.LastIndex(ref, "/"); i >= 0 {
		ref = ref[i+1:]
	}
	if ref == "" {
		return models.DefaultReadmeTitle
	}
	return ref
}
