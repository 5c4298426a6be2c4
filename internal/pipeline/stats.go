package pipeline

import (
	"log/slog"
	"sort"
)

// Stats aggregates the outcome of one run. Per-record issues never abort
// the pipeline, so the counters are how skipped work stays visible.
type Stats struct {
	Read    int // input lines seen
	Emitted int // records written (after keep-best reduction)
	Skipped int // malformed lines, dropped
	Scored  int // records that received at least one score
	Ignored int // pass-through records emitted without scores

	Unresolved  int            // no declared language, no identification entry
	MissingDict int            // resolved language without a loaded dictionary
	TooShort    int            // below the minimum subtoken count
	PerLanguage map[string]int // scored records per language

	BestDropped int // keep-best candidates discarded

	primarySum   float64
	primaryCount int
}

func newStats() *Stats {
	return &Stats{PerLanguage: make(map[string]int)}
}

func (s *Stats) observePrimary(score float64) {
	s.primarySum += score
	s.primaryCount++
}

// MeanPrimary returns the mean primary-method score across scored records.
func (s *Stats) MeanPrimary() (float64, bool) {
	if s.primaryCount == 0 {
		return 0, false
	}
	return s.primarySum / float64(s.primaryCount), true
}

// LogSummary writes the end-of-run statistics.
func (s *Stats) LogSummary(log *slog.Logger) {
	log.Info("run finished",
		"read", s.Read,
		"emitted", s.Emitted,
		"scored", s.Scored,
		"skipped", s.Skipped,
		"passthrough", s.Ignored,
		"unresolved_language", s.Unresolved,
		"missing_dictionary", s.MissingDict,
		"too_short", s.TooShort,
		"keep_best_dropped", s.BestDropped,
	)
	if mean, ok := s.MeanPrimary(); ok {
		log.Info("mean primary score", "mean", roundScore(mean), "records", s.primaryCount)
	} else {
		log.Info("no records scored")
	}

	langs := make([]string, 0, len(s.PerLanguage))
	for lang := range s.PerLanguage {
		langs = append(langs, lang)
	}
	sort.Strings(langs)
	for _, lang := range langs {
		log.Info("scored records per language", "language", lang, "records", s.PerLanguage[lang])
	}
}
