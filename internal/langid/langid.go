// Package langid resolves the scoring language of a content record, either
// from the record's own language field or from a side file of
// language-identification results.
package langid

import (
	"bufio"
	"encoding/json"
	"fmt"
	"io"
)

// indexEntry is one line of a language-identification JSONL file.
type indexEntry struct {
	ID       string `json:"id"`
	Language string `json:"lg"`
}

// Index maps content-item ids to identified language codes. Loaded once,
// read-only afterwards.
type Index map[string]string

// ReadIndex parses a language-identification JSONL stream. Lines whose
// language is empty (identification failed upstream) are skipped; a line
// that is not valid JSON makes the whole load fail, since a partially read
// index would silently misroute records.
func ReadIndex(r io.Reader) (Index, error) {
	idx := make(Index)
	scanner := bufio.NewScanner(r)
	scanner.Buffer(make([]byte, 0, 64*1024), 16*1024*1024)
	lineNo := 0
	for scanner.Scan() {
		lineNo++
		line := scanner.Bytes()
		if len(line) == 0 {
			continue
		}
		var e indexEntry
		if err := json.Unmarshal(line, &e); err != nil {
			return nil, fmt.Errorf("malformed language identification entry on line %d: %w", lineNo, err)
		}
		if e.ID == "" || e.Language == "" {
			continue
		}
		idx[e.ID] = e.Language
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("cannot read language identification data: %w", err)
	}
	return idx, nil
}

// Resolver determines the scoring language for a record. Precedence: the
// record's declared language, then the index lookup, then unresolved.
type Resolver struct {
	index Index
}

// NewResolver returns a Resolver backed by index, which may be nil.
func NewResolver(index Index) *Resolver {
	return &Resolver{index: index}
}

// Resolve returns the language code for a record and whether one was found.
func (r *Resolver) Resolve(id, declared string) (string, bool) {
	if declared != "" {
		return declared, true
	}
	if r.index != nil {
		if lang, ok := r.index[id]; ok {
			return lang, true
		}
	}
	return "", false
}
