package storage

import (
	"io"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"
)

func TestInputOutputRoundtrip(t *testing.T) {
	dir := t.TempDir()
	for _, name := range []string{"plain.jsonl", "packed.jsonl.gz"} {
		t.Run(name, func(t *testing.T) {
			path := filepath.Join(dir, name)

			w, err := CreateOutput(path)
			if err != nil {
				t.Fatalf("CreateOutput: %v", err)
			}
			if _, err := io.WriteString(w, "hello\nworld\n"); err != nil {
				t.Fatal(err)
			}
			if err := w.Close(); err != nil {
				t.Fatal(err)
			}

			r, err := OpenInput(path)
			if err != nil {
				t.Fatalf("OpenInput: %v", err)
			}
			defer r.Close()
			got, err := io.ReadAll(r)
			if err != nil {
				t.Fatal(err)
			}
			if string(got) != "hello\nworld\n" {
				t.Fatalf("roundtrip mismatch: %q", got)
			}
		})
	}
}

func TestGzipOutputIsCompressed(t *testing.T) {
	path := filepath.Join(t.TempDir(), "out.jsonl.gz")
	w, err := CreateOutput(path)
	if err != nil {
		t.Fatal(err)
	}
	if _, err := io.WriteString(w, strings.Repeat("abcdef\n", 100)); err != nil {
		t.Fatal(err)
	}
	if err := w.Close(); err != nil {
		t.Fatal(err)
	}

	raw, err := os.ReadFile(path)
	if err != nil {
		t.Fatal(err)
	}
	if len(raw) < 2 || raw[0] != 0x1f || raw[1] != 0x8b {
		t.Fatal("output is not gzip-framed")
	}
}

func TestOpenInputMissing(t *testing.T) {
	if _, err := OpenInput(filepath.Join(t.TempDir(), "absent.jsonl")); err == nil {
		t.Fatal("OpenInput should fail for a missing file")
	}
}

func TestExists(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "done.jsonl")
	if Exists(path) {
		t.Fatal("absent file reported as existing")
	}
	if err := os.WriteFile(path, []byte("x"), 0o644); err != nil {
		t.Fatal(err)
	}
	if !Exists(path) {
		t.Fatal("present file reported as absent")
	}
	if Exists("") || Exists("-") {
		t.Fatal("stream sinks can never pre-exist")
	}
}

func TestKeepTimestampOnly(t *testing.T) {
	path := filepath.Join(t.TempDir(), "out.jsonl")
	if err := os.WriteFile(path, []byte("payload"), 0o644); err != nil {
		t.Fatal(err)
	}
	mtime := time.Date(2026, 2, 3, 4, 5, 6, 0, time.UTC)
	if err := os.Chtimes(path, mtime, mtime); err != nil {
		t.Fatal(err)
	}

	if err := KeepTimestampOnly(path); err != nil {
		t.Fatalf("KeepTimestampOnly: %v", err)
	}
	st, err := os.Stat(path)
	if err != nil {
		t.Fatal(err)
	}
	if st.Size() != 0 {
		t.Fatalf("file not truncated: %d bytes", st.Size())
	}
	if !st.ModTime().Equal(mtime) {
		t.Fatalf("mtime not preserved: %v", st.ModTime())
	}
}

func TestAcquireLock(t *testing.T) {
	path := filepath.Join(t.TempDir(), "out.jsonl")

	release, err := AcquireLock(path, time.Second)
	if err != nil {
		t.Fatalf("AcquireLock: %v", err)
	}
	release()

	// Reacquirable after release.
	release, err = AcquireLock(path, time.Second)
	if err != nil {
		t.Fatalf("AcquireLock after release: %v", err)
	}
	release()
}
