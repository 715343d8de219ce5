package services

import (
	"fmt"
	"strings"

	"github.com/wonder-codes/echo-repo/internal/apperr"
)

// NoRelevantFilesSentinel is documented in place of repository content when
// the top level holds no recognized source file. It is not an error.
const NoRelevantFilesSentinel = "No relevant code files found."

const defaultRepoHost = "github.com"

// DefaultSourceExtensions is the allow-list used when none is configured.
var DefaultSourceExtensions = []string{".js", ".ts", ".py", ".json", ".go"}

// RepoReference identifies a remote repository.
type RepoReference struct {
	Host  string
	Owner string
	Repo  string
}

func (r RepoReference) CloneURL() string {
	return fmt.Sprintf("https://%s/%s/%s.git", r.Host, r.Owner, r.Repo)
}

// ParseRepoReference accepts https://<host>/<owner>/<repo> (http too). A
// reference without a scheme is read as a path on github.com, optionally
// starting with a host name. Fewer than two path segments is an
// ErrInvalidRepositoryReference.
func ParseRepoReference(raw string) (RepoReference, error) {
	s := strings.TrimSpace(raw)
	if i := strings.IndexAny(s, "?#"); i >= 0 {
		s = s[:i]
	}

	host := defaultRepoHost
	path := s
	if scheme, rest, ok := strings.Cut(s, "://"); ok {
		switch strings.ToLower(scheme) {
		case "http", "https":
		default:
			return RepoReference{}, invalidReference(raw)
		}
		host, path, _ = strings.Cut(rest, "/")
		if host == "" {
			return RepoReference{}, invalidReference(raw)
		}
	}

	var segments []string
	for _, seg := range strings.Split(path, "/") {
		if seg != "" {
			segments = append(segments, seg)
		}
	}
	if !strings.Contains(s, "://") && len(segments) >= 3 && strings.Contains(segments[0], ".") {
		host, segments = segments[0], segments[1:]
	}
	if len(segments) < 2 {
		return RepoReference{}, invalidReference(raw)
	}

	repo := strings.TrimSuffix(segments[1], ".git")
	if repo == "" {
		return RepoReference{}, invalidReference(raw)
	}
	return RepoReference{Host: host, Owner: segments[0], Repo: repo}, nil
}

func invalidReference(raw string) error {
	return apperr.New(apperr.ErrInvalidRepositoryReference,
		fmt.Sprintf("%q is not of the form https://<host>/<owner>/<repo>", raw))
}

// repoEntry is one item of a repository's top-level listing.
type repoEntry struct {
	Name   string
	Path   string
	IsFile bool
}

func hasSourceExtension(name string, extensions []string) bool {
	for _, ext := range extensions {
		if strings.HasSuffix(name, ext) {
			return true
		}
	}
	return false
}

// collectTopLevel concatenates the recognized files of a listing, in listing
// order, reading them one at a time. Subdirectories are not descended into.
func collectTopLevel(entries []repoEntry, extensions []string, read func(path string) (string, error)) (string, error) {
	if len(extensions) == 0 {
		extensions = DefaultSourceExtensions
	}

	var b strings.Builder
	for _, entry := range entries {
		if !entry.IsFile || !hasSourceExtension(entry.Name, extensions) {
			continue
		}
		content, err := read(entry.Path)
		if err != nil {
			return "", apperr.Wrap(apperr.ErrUpstreamFetchFailed, err)
		}
		writeSourceFile(&b, entry.Path, content)
	}

	if b.Len() == 0 {
		return NoRelevantFilesSentinel, nil
	}
	return b.String(), nil
}

func writeSourceFile(b *strings.Builder, path, content string) {
	fmt.Fprintf(b, "\n--- File: %s ---\n%s\n", path, content)
}
