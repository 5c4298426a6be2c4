// Package config holds the run configuration of a scoring invocation:
// defaults, the optional YAML run profile, and the validation that turns a
// bad configuration into a failure before any record is read.
package config

import (
	"fmt"
	"os"

	"golang.org/x/text/language"
	"gopkg.in/yaml.v3"

	"github.com/pagesmith/ocrqa-cli/internal/scoring"
	"github.com/pagesmith/ocrqa-cli/internal/textnorm"
)

// Run is one scoring invocation, as assembled from defaults, an optional
// profile file, and command-line flags (flags win).
type Run struct {
	Input  string `yaml:"input,omitempty"`
	Output string `yaml:"output,omitempty"`

	Languages    []string `yaml:"languages"`
	Dictionaries []string `yaml:"dictionaries"`

	Methods  []string `yaml:"methods,omitempty"`
	KeepBest bool     `yaml:"keep_best,omitempty"`

	Normalization     string  `yaml:"normalization,omitempty"`
	SingleLetterCost  float64 `yaml:"single_letter_cost"`
	SingleSymbolCost  float64 `yaml:"single_symbol_cost"`
	MinSubtokens      int     `yaml:"min_subtokens,omitempty"`
	MinSubtokenLength int     `yaml:"min_subtoken_length,omitempty"`

	LanguageIDPath string `yaml:"lid,omitempty"`

	SkipIfOutputExists bool `yaml:"skip_if_output_exists,omitempty"`
	KeepTimestampOnly  bool `yaml:"keep_timestamp_only,omitempty"`
	LockOutput         bool `yaml:"lock_output,omitempty"`

	GitVersion string `yaml:"git_version,omitempty"`
	Timestamp  string `yaml:"timestamp,omitempty"`

	LogLevel string `yaml:"log_level,omitempty"`
	LogFile  string `yaml:"log_file,omitempty"`
	Quiet    bool   `yaml:"quiet,omitempty"`
	Verbose  bool   `yaml:"verbose,omitempty"`
}

// Default returns the Run every invocation starts from.
func Default() Run {
	costs := scoring.DefaultCosts()
	return Run{
		Methods:           []string{scoring.DefaultMethod},
		Normalization:     "NFKC",
		SingleLetterCost:  costs.SingleLetter,
		SingleSymbolCost:  costs.SingleSymbol,
		MinSubtokenLength: 1,
		LogLevel:          "info",
	}
}

// LoadProfile reads a YAML run profile and overlays it on base.
func LoadProfile(path string, base Run) (Run, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return base, fmt.Errorf("cannot read run profile %s: %w", path, err)
	}
	run := base
	if err := yaml.Unmarshal(data, &run); err != nil {
		return base, fmt.Errorf("invalid YAML in run profile %s: %w", path, err)
	}
	return run, nil
}

// Validate reports the first configuration error, before any dictionary is
// loaded or record read.
func (r *Run) Validate() error {
	if len(r.Languages) == 0 {
		return fmt.Errorf("no languages configured")
	}
	if len(r.Languages) != len(r.Dictionaries) {
		return fmt.Errorf("%d languages paired with %d dictionaries; the lists must match positionally",
			len(r.Languages), len(r.Dictionaries))
	}
	for _, code := range r.Languages {
		if _, err := language.Parse(code); err != nil {
			return fmt.Errorf("invalid language code %q: %w", code, err)
		}
	}
	if len(r.Methods) == 0 {
		return fmt.Errorf("no scoring methods configured")
	}
	if err := scoring.Validate(r.Methods); err != nil {
		return err
	}
	if _, err := textnorm.ParseForm(r.Normalization); err != nil {
		return err
	}
	if r.SingleLetterCost < 0 || r.SingleSymbolCost < 0 {
		return fmt.Errorf("cost weights must be non-negative (single_letter_cost=%g, single_symbol_cost=%g)",
			r.SingleLetterCost, r.SingleSymbolCost)
	}
	if r.MinSubtokenLength < 1 {
		return fmt.Errorf("min_subtoken_length must be at least 1, got %d", r.MinSubtokenLength)
	}
	if r.MinSubtokens < 0 {
		return fmt.Errorf("min_subtokens must not be negative, got %d", r.MinSubtokens)
	}
	return nil
}
