package bloomdict

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
)

// ArtifactPrefix marks a dictionary source as a named remote artifact
// reference of the form "hf://organization/repository/path/to/file".
const ArtifactPrefix = "hf://"

// Source supplies the byte stream of one dictionary snapshot. The Set is
// agnostic to which variant produced the bytes.
type Source interface {
	// Open returns the snapshot byte stream. The caller closes it.
	Open() (io.ReadCloser, error)
	// Ref returns the configured reference, for diagnostics.
	Ref() string
}

// Fetcher resolves a named remote artifact to a local snapshot file.
// Retries and downloads are the fetcher's concern; the core only consumes
// the resolved path.
type Fetcher interface {
	// Fetch returns the local path of the artifact file in repo.
	Fetch(repo, file string) (string, error)
}

// FileSource reads a snapshot from the local filesystem.
type FileSource struct {
	Path string
}

func (s FileSource) Open() (io.ReadCloser, error) {
	f, err := os.Open(s.Path)
	if err != nil {
		return nil, fmt.Errorf("cannot open dictionary snapshot %s: %w", s.Path, err)
	}
	return f, nil
}

func (s FileSource) Ref() string { return s.Path }

// ArtifactSource reads a snapshot resolved through a Fetcher.
type ArtifactSource struct {
	Repo    string
	File    string
	Fetcher Fetcher
}

func (s ArtifactSource) Open() (io.ReadCloser, error) {
	if s.Fetcher == nil {
		return nil, fmt.Errorf("no artifact fetcher configured for %s", s.Ref())
	}
	local, err := s.Fetcher.Fetch(s.Repo, s.File)
	if err != nil {
		return nil, fmt.Errorf("cannot resolve artifact %s: %w", s.Ref(), err)
	}
	f, err := os.Open(local)
	if err != nil {
		return nil, fmt.Errorf("cannot open fetched artifact %s (local %s): %w", s.Ref(), local, err)
	}
	return f, nil
}

func (s ArtifactSource) Ref() string { return ArtifactPrefix + s.Repo + "/" + s.File }

// ParseSource turns a configured reference into a Source. References with
// the hf:// prefix become ArtifactSources bound to fetcher; everything else
// is a local file path.
func ParseSource(ref string, fetcher Fetcher) (Source, error) {
	if !strings.HasPrefix(ref, ArtifactPrefix) {
		return FileSource{Path: ref}, nil
	}
	repo, file, err := SplitArtifactRef(ref)
	if err != nil {
		return nil, err
	}
	return ArtifactSource{Repo: repo, File: file, Fetcher: fetcher}, nil
}

// SplitArtifactRef splits "hf://org/repo/path/to/file" into its repository
// id ("org/repo") and file path components.
func SplitArtifactRef(ref string) (repo, file string, err error) {
	if !strings.HasPrefix(ref, ArtifactPrefix) {
		return "", "", fmt.Errorf("%w: %q lacks the %s prefix", ErrArtifactRef, ref, ArtifactPrefix)
	}
	parts := strings.SplitN(ref[len(ArtifactPrefix):], "/", 3)
	if len(parts) < 3 || parts[0] == "" || parts[1] == "" || parts[2] == "" {
		return "", "", fmt.Errorf("%w: %q must be %sorganization/repository/filename", ErrArtifactRef, ref, ArtifactPrefix)
	}
	return parts[0] + "/" + parts[1], parts[2], nil
}

// CacheFetcher resolves artifacts against a local cache directory laid out
// as <dir>/<organization>/<repository>/<file>. Populating the cache is the
// job of an external download mechanism.
type CacheFetcher struct {
	Dir string
}

// CacheDirEnv names the environment variable pointing at the artifact cache.
const CacheDirEnv = "OCRQA_ARTIFACT_CACHE"

// NewCacheFetcherFromEnv returns a CacheFetcher rooted at $OCRQA_ARTIFACT_CACHE,
// or nil when the variable is unset.
func NewCacheFetcherFromEnv() Fetcher {
	dir := os.Getenv(CacheDirEnv)
	if dir == "" {
		return nil
	}
	return CacheFetcher{Dir: dir}
}

func (c CacheFetcher) Fetch(repo, file string) (string, error) {
	p := filepath.Join(c.Dir, filepath.FromSlash(repo), filepath.FromSlash(file))
	if _, err := os.Stat(p); err != nil {
		return "", fmt.Errorf("artifact %s/%s not in cache %s: %w", repo, file, c.Dir, err)
	}
	return p, nil
}
