// Package bloomdict loads and queries the per-language Bloom dictionaries
// that OCR quality scoring runs against.
//
// A dictionary snapshot is a single file: one JSON header line describing
// the artifact (magic, version, language, entry count, target false-positive
// rate) followed by the binary Bloom filter encoding. Dictionaries are
// immutable after load; scoring must never alter the shared lexicon mid-run.
package bloomdict

import (
	"bufio"
	"encoding/json"
	"fmt"
	"io"
	"sort"

	"github.com/willf/bloom"
)

const (
	snapshotMagic   = "ocrqa-bloom"
	snapshotVersion = 1

	// DefaultFPRate is the target false-positive rate for built dictionaries.
	DefaultFPRate = 1e-5
)

// header is the JSON line at the start of every snapshot file.
type header struct {
	Magic    string  `json:"magic"`
	Version  int     `json:"version"`
	Language string  `json:"language"`
	Entries  uint    `json:"entries"`
	FPRate   float64 `json:"fp_rate"`
}

// Dictionary is an immutable, language-tagged approximate-membership
// structure over a lexicon of subtoken strings. Lookups have no false
// negatives and a false-positive rate bounded by FPRate.
type Dictionary struct {
	language string
	source   string
	entries  uint
	fpRate   float64
	filter   *bloom.BloomFilter
}

// New builds an in-memory dictionary from a set of subtoken entries.
// Duplicate entries are collapsed. Used by `ocrqa build` and by tests.
func New(language string, entries []string, fpRate float64) *Dictionary {
	if fpRate <= 0 || fpRate >= 1 {
		fpRate = DefaultFPRate
	}
	distinct := make(map[string]struct{}, len(entries))
	for _, e := range entries {
		distinct[e] = struct{}{}
	}
	n := uint(len(distinct))
	if n == 0 {
		n = 1 // bloom.NewWithEstimates needs a positive capacity
	}
	f := bloom.NewWithEstimates(n, fpRate)
	// Insert in sorted order so identical entry sets yield identical snapshots.
	sorted := make([]string, 0, len(distinct))
	for e := range distinct {
		sorted = append(sorted, e)
	}
	sort.Strings(sorted)
	for _, e := range sorted {
		f.AddString(e)
	}
	return &Dictionary{
		language: language,
		entries:  uint(len(distinct)),
		fpRate:   fpRate,
		filter:   f,
	}
}

// Contains reports whether subtoken was possibly inserted at build time.
// False means definitely absent.
func (d *Dictionary) Contains(subtoken string) bool {
	return d.filter.TestString(subtoken)
}

// Language returns the language code the dictionary is tagged with.
func (d *Dictionary) Language() string { return d.language }

// Source returns the reference the dictionary was loaded from, if any.
func (d *Dictionary) Source() string { return d.source }

// Entries returns the number of distinct subtokens inserted at build time.
func (d *Dictionary) Entries() uint { return d.entries }

// FPRate returns the target false-positive rate recorded in the snapshot.
func (d *Dictionary) FPRate() float64 { return d.fpRate }

// Bits returns the size of the underlying bit array.
func (d *Dictionary) Bits() uint { return d.filter.Cap() }

// Hashes returns the number of hash functions used per lookup.
func (d *Dictionary) Hashes() uint { return d.filter.K() }

// WriteSnapshot serializes d in the snapshot format readable by Read.
func WriteSnapshot(w io.Writer, d *Dictionary) error {
	h := header{
		Magic:    snapshotMagic,
		Version:  snapshotVersion,
		Language: d.language,
		Entries:  d.entries,
		FPRate:   d.fpRate,
	}
	hb, err := json.Marshal(h)
	if err != nil {
		return fmt.Errorf("cannot encode snapshot header: %w", err)
	}
	if _, err := w.Write(append(hb, '\n')); err != nil {
		return fmt.Errorf("cannot write snapshot header: %w", err)
	}
	if _, err := d.filter.WriteTo(w); err != nil {
		return fmt.Errorf("cannot write bloom filter: %w", err)
	}
	return nil
}

// Read deserializes a dictionary snapshot. language is the code the caller
// paired with this source; a snapshot tagged with a different language is
// rejected. source is recorded for diagnostics only.
func Read(r io.Reader, language, source string) (*Dictionary, error) {
	br := bufio.NewReader(r)
	headerLine, err := br.ReadBytes('\n')
	if err != nil {
		return nil, fmt.Errorf("%w: cannot read snapshot header from %s: %v", ErrSnapshot, source, err)
	}
	var h header
	if err := json.Unmarshal(headerLine, &h); err != nil {
		return nil, fmt.Errorf("%w: invalid snapshot header in %s: %v", ErrSnapshot, source, err)
	}
	if h.Magic != snapshotMagic {
		return nil, fmt.Errorf("%w: %s is not a bloom dictionary snapshot (magic %q)", ErrSnapshot, source, h.Magic)
	}
	if h.Version != snapshotVersion {
		return nil, fmt.Errorf("%w: unsupported snapshot version %d in %s", ErrSnapshot, h.Version, source)
	}
	if language != "" && h.Language != "" && h.Language != language {
		return nil, fmt.Errorf("%w: snapshot %s is tagged %q, configured for %q", ErrSnapshot, source, h.Language, language)
	}
	if language == "" {
		language = h.Language
	}

	f := &bloom.BloomFilter{}
	if _, err := f.ReadFrom(br); err != nil {
		return nil, fmt.Errorf("%w: cannot read bloom filter from %s: %v", ErrSnapshot, source, err)
	}
	return &Dictionary{
		language: language,
		source:   source,
		entries:  h.Entries,
		fpRate:   h.FPRate,
		filter:   f,
	}, nil
}
