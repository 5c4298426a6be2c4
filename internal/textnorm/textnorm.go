// Package textnorm turns raw document text into the normalized subtoken
// sequence that Bloom dictionaries are built over and queried with.
//
// The segmentation rule is fixed and language-independent: text is
// lower-cased, Unicode-normalized, and split into maximal runs of
// letters-and-digits or of other non-separator symbols. Whitespace and
// punctuation act as separators and never appear in subtokens. Any drift
// between this rule and the rule used at dictionary-build time silently
// inflates the unknown rate, so both `ocrqa build` and `ocrqa score` go
// through this package.
package textnorm

import (
	"fmt"
	"strings"
	"unicode"
	"unicode/utf8"

	"golang.org/x/text/unicode/norm"
)

// DefaultForm is the normalization applied when none is configured.
const DefaultForm = norm.NFKC

// ParseForm maps a Unicode normalization form name to its x/text form.
// The empty string selects DefaultForm.
func ParseForm(name string) (norm.Form, error) {
	switch strings.ToUpper(strings.TrimSpace(name)) {
	case "":
		return DefaultForm, nil
	case "NFC":
		return norm.NFC, nil
	case "NFD":
		return norm.NFD, nil
	case "NFKC":
		return norm.NFKC, nil
	case "NFKD":
		return norm.NFKD, nil
	default:
		return 0, fmt.Errorf("unknown unicode normalization form %q (want NFC, NFD, NFKC or NFKD)", name)
	}
}

// FormName returns the canonical name of a form, for logging and output.
func FormName(f norm.Form) string {
	switch f {
	case norm.NFC:
		return "NFC"
	case norm.NFD:
		return "NFD"
	case norm.NFKC:
		return "NFKC"
	case norm.NFKD:
		return "NFKD"
	default:
		return fmt.Sprintf("norm.Form(%d)", int(f))
	}
}

// Subtokenizer produces normalized subtokens from raw text.
// It is stateless after construction and safe for concurrent use.
type Subtokenizer struct {
	form      norm.Form
	minLength int // minimum subtoken length in runes
}

// New returns a Subtokenizer for the given normalization form.
// minLength must be at least 1.
func New(form norm.Form, minLength int) (*Subtokenizer, error) {
	if minLength < 1 {
		return nil, fmt.Errorf("minimum subtoken length must be at least 1, got %d", minLength)
	}
	return &Subtokenizer{form: form, minLength: minLength}, nil
}

// Form returns the configured normalization form.
func (s *Subtokenizer) Form() norm.Form { return s.form }

// rune classes during segmentation
const (
	classSeparator = iota // whitespace and punctuation: never part of a subtoken
	classWord             // letters and digits
	classSymbol           // everything else (currency signs, math symbols, ...)
)

func runeClass(r rune) int {
	switch {
	case unicode.IsSpace(r) || unicode.IsPunct(r):
		return classSeparator
	case unicode.IsLetter(r) || unicode.IsDigit(r):
		return classWord
	default:
		return classSymbol
	}
}

// Subtokens lower-cases and normalizes raw and splits it into the ordered
// subtoken sequence. Empty subtokens and subtokens shorter than the
// configured minimum are discarded. The returned slice is never nil.
func (s *Subtokenizer) Subtokens(raw string) []string {
	text := s.form.String(strings.ToLower(raw))

	out := []string{}
	var b strings.Builder
	current := classSeparator

	flush := func() {
		if b.Len() == 0 {
			return
		}
		tok := b.String()
		b.Reset()
		if utf8.RuneCountInString(tok) >= s.minLength {
			out = append(out, tok)
		}
	}

	for _, r := range text {
		c := runeClass(r)
		if c != current {
			flush()
			current = c
		}
		if c != classSeparator {
			b.WriteRune(r)
		}
	}
	flush()
	return out
}

// Types returns the distinct subtoken values of seq in first-seen order.
func Types(seq []string) []string {
	out := make([]string, 0, len(seq))
	seen := make(map[string]struct{}, len(seq))
	for _, tok := range seq {
		if _, ok := seen[tok]; ok {
			continue
		}
		seen[tok] = struct{}{}
		out = append(out, tok)
	}
	return out
}

// IsSingleLetter reports whether tok is exactly one alphabetic rune.
func IsSingleLetter(tok string) bool {
	r, size := utf8.DecodeRuneInString(tok)
	return size == len(tok) && unicode.IsLetter(r)
}

// IsSingleRune reports whether tok is exactly one rune.
func IsSingleRune(tok string) bool {
	_, size := utf8.DecodeRuneInString(tok)
	return size == len(tok) && size > 0
}
