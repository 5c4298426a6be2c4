// Package scoring implements the OCR quality scoring methods. Each method is
// a pure function over a subtoken sequence and a Bloom dictionary; all
// methods are lower-is-better (0 = every subtoken known to the lexicon).
package scoring

import (
	"fmt"
	"sort"
	"strings"

	"github.com/pagesmith/ocrqa-cli/internal/bloomdict"
	"github.com/pagesmith/ocrqa-cli/internal/textnorm"
)

// Method names accepted on the command surface.
const (
	MethodUnknownTypeRatio = "unk_type_ratio"
	MethodUnknownRatio     = "unk_ratio"
	MethodSingleCharCost   = "slc"
)

// DefaultMethod is used when no methods are requested.
const DefaultMethod = MethodUnknownTypeRatio

// Costs weights unknown single-character subtokens in the slc method.
// Single stray characters are far more often OCR noise than genuine rare
// words, so they count less than a full unknown token.
type Costs struct {
	SingleLetter float64 // unknown subtoken that is one alphabetic rune
	SingleSymbol float64 // unknown subtoken that is one non-alphabetic rune
}

// DefaultCosts returns the standard cost weights.
func DefaultCosts() Costs {
	return Costs{SingleLetter: 0.7, SingleSymbol: 0.3}
}

// Func scores a subtoken sequence against a dictionary. The boolean is
// false when no score can be computed (empty sequence or nil dictionary).
type Func func(seq []string, dict *bloomdict.Dictionary, costs Costs) (float64, bool)

var registry = map[string]Func{
	MethodUnknownTypeRatio: UnknownTypeRatio,
	MethodUnknownRatio:     UnknownRatio,
	MethodSingleCharCost:   SingleCharCost,
}

// Lookup returns the scoring function registered under name.
func Lookup(name string) (Func, bool) {
	f, ok := registry[name]
	return f, ok
}

// Names returns the registered method names, sorted.
func Names() []string {
	out := make([]string, 0, len(registry))
	for name := range registry {
		out = append(out, name)
	}
	sort.Strings(out)
	return out
}

// Validate checks that every requested method name is registered.
func Validate(methods []string) error {
	for _, m := range methods {
		if _, ok := registry[m]; !ok {
			return fmt.Errorf("unknown scoring method %q (available: %s)", m, strings.Join(Names(), ", "))
		}
	}
	return nil
}

// UnknownTypeRatio is the fraction of distinct subtoken types absent from
// the dictionary. Type-based measurement is insensitive to repeated
// boilerplate and isolates vocabulary-level OCR corruption.
func UnknownTypeRatio(seq []string, dict *bloomdict.Dictionary, _ Costs) (float64, bool) {
	if dict == nil {
		return 0, false
	}
	types := textnorm.Types(seq)
	if len(types) == 0 {
		return 0, false
	}
	unknown := 0
	for _, tok := range types {
		if !dict.Contains(tok) {
			unknown++
		}
	}
	return float64(unknown) / float64(len(types)), true
}

// UnknownRatio is the fraction of subtoken occurrences absent from the
// dictionary. Unlike UnknownTypeRatio it penalizes recurring corrupted
// tokens.
func UnknownRatio(seq []string, dict *bloomdict.Dictionary, _ Costs) (float64, bool) {
	if dict == nil || len(seq) == 0 {
		return 0, false
	}
	unknown := 0
	for _, tok := range seq {
		if !dict.Contains(tok) {
			unknown++
		}
	}
	return float64(unknown) / float64(len(seq)), true
}

// SingleCharCost weights each unknown occurrence by how likely it is to be
// OCR noise: a lone letter costs Costs.SingleLetter, a lone symbol or digit
// costs Costs.SingleSymbol, and any multi-character unknown carries a full
// unit cost. The sum is normalized by the total occurrence count.
func SingleCharCost(seq []string, dict *bloomdict.Dictionary, costs Costs) (float64, bool) {
	if dict == nil || len(seq) == 0 {
		return 0, false
	}
	total := 0.0
	for _, tok := range seq {
		if dict.Contains(tok) {
			continue
		}
		switch {
		case textnorm.IsSingleLetter(tok):
			total += costs.SingleLetter
		case textnorm.IsSingleRune(tok):
			total += costs.SingleSymbol
		default:
			total += 1.0
		}
	}
	return total / float64(len(seq)), true
}
