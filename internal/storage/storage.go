// Package storage handles the byte-stream edges of a scoring run: input and
// output streams with transparent gzip, idempotency stamps for sharded
// orchestration, and an advisory lock so concurrent shard processes never
// interleave writes to one output file.
package storage

import (
	"compress/gzip"
	"context"
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	"github.com/gofrs/flock"
)

// ObjectStore is the remote bulk-storage client consumed by deployment
// glue around this tool: existence checks for idempotent skips, uploads
// after a run. Implementations live outside this repository.
type ObjectStore interface {
	Exists(ctx context.Context, ref string) (bool, error)
	Upload(ctx context.Context, localPath, ref string) error
}

// OpenInput opens a record stream for reading. An empty path or "-" means
// stdin; a .gz suffix enables transparent decompression.
func OpenInput(path string) (io.ReadCloser, error) {
	if path == "" || path == "-" {
		return io.NopCloser(os.Stdin), nil
	}
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("cannot open input %s: %w", path, err)
	}
	if !strings.HasSuffix(path, ".gz") {
		return f, nil
	}
	zr, err := gzip.NewReader(f)
	if err != nil {
		_ = f.Close()
		return nil, fmt.Errorf("cannot read gzip input %s: %w", path, err)
	}
	return &readCloser{Reader: zr, closers: []io.Closer{zr, f}}, nil
}

// CreateOutput opens a record stream for writing. An empty path or "-"
// means stdout; a .gz suffix enables transparent compression.
func CreateOutput(path string) (io.WriteCloser, error) {
	if path == "" || path == "-" {
		return nopWriteCloser{os.Stdout}, nil
	}
	f, err := os.Create(path)
	if err != nil {
		return nil, fmt.Errorf("cannot create output %s: %w", path, err)
	}
	if !strings.HasSuffix(path, ".gz") {
		return f, nil
	}
	zw := gzip.NewWriter(f)
	return &writeCloser{Writer: zw, closers: []io.Closer{zw, f}}, nil
}

type readCloser struct {
	io.Reader
	closers []io.Closer
}

func (c *readCloser) Close() error { return closeAll(c.closers) }

type writeCloser struct {
	io.Writer
	closers []io.Closer
}

func (c *writeCloser) Close() error { return closeAll(c.closers) }

type nopWriteCloser struct{ io.Writer }

func (nopWriteCloser) Close() error { return nil }

func closeAll(closers []io.Closer) error {
	var first error
	for _, c := range closers {
		if err := c.Close(); err != nil && first == nil {
			first = err
		}
	}
	return first
}

// Exists reports whether a local output file is already present, the stamp
// check behind skip-if-output-exists.
func Exists(path string) bool {
	if path == "" || path == "-" {
		return false
	}
	st, err := os.Stat(path)
	return err == nil && st.Mode().IsRegular()
}

// KeepTimestampOnly truncates path to zero bytes while preserving its
// modification time. After an upload the local copy only has to witness
// that the work happened, not hold the data again.
func KeepTimestampOnly(path string) error {
	st, err := os.Stat(path)
	if err != nil {
		return fmt.Errorf("cannot stat output %s: %w", path, err)
	}
	if err := os.Truncate(path, 0); err != nil {
		return fmt.Errorf("cannot truncate output %s: %w", path, err)
	}
	if err := os.Chtimes(path, st.ModTime(), st.ModTime()); err != nil {
		return fmt.Errorf("cannot restore timestamp of %s: %w", path, err)
	}
	return nil
}

// AcquireLock obtains an advisory lock next to the output file. The release
// function is safe to call even when acquisition failed.
func AcquireLock(outputPath string, timeout time.Duration) (func(), error) {
	lockPath := outputPath + ".lock"
	l := flock.New(lockPath)
	deadline := time.Now().Add(timeout)
	for {
		locked, err := l.TryLock()
		if err != nil {
			return func() {}, fmt.Errorf("cannot acquire output lock %s: %w", lockPath, err)
		}
		if locked {
			return func() { _ = l.Unlock() }, nil
		}
		if time.Now().After(deadline) {
			return func() {}, fmt.Errorf("another process holds the output lock %s", lockPath)
		}
		time.Sleep(200 * time.Millisecond)
	}
}
