// Package pipeline streams content records through language resolution,
// subtokenization and scoring, one record at a time.
//
// Per record: Read → Resolve-Language → Normalize/Tokenize → Score →
// Optional-Best-Selection → Emit. Malformed lines are skipped and logged;
// records whose language cannot be served pass through unscored. No state
// is shared between records beyond the read-only dictionary set and, when
// keep-best is enabled, the bounded buffer of the current candidate group.
package pipeline

import (
	"bufio"
	"fmt"
	"io"
	"log/slog"

	"github.com/pagesmith/ocrqa-cli/internal/bloomdict"
	"github.com/pagesmith/ocrqa-cli/internal/langid"
	"github.com/pagesmith/ocrqa-cli/internal/scoring"
	"github.com/pagesmith/ocrqa-cli/internal/textnorm"
)

// maxLineBytes bounds one input line. Newspaper pages run long but not
// past this.
const maxLineBytes = 64 * 1024 * 1024

// Options tunes one run of the pipeline.
type Options struct {
	Methods      []string // requested methods, first is primary
	Costs        scoring.Costs
	KeepBest     bool
	MinSubtokens int // 0 disables the threshold
	Verbose      bool

	// Provenance annotations; empty values are omitted from output.
	Timestamp  string
	GitVersion string
}

type boundMethod struct {
	name  string
	score scoring.Func
}

// Pipeline scores a stream of newline-delimited JSON content records.
type Pipeline struct {
	dicts    *bloomdict.Set
	resolver *langid.Resolver
	tok      *textnorm.Subtokenizer
	methods  []boundMethod
	opts     Options
	log      *slog.Logger
}

// New wires a pipeline. The method list must already be validated; an
// unknown name here is a programming error and is still rejected.
func New(dicts *bloomdict.Set, resolver *langid.Resolver, tok *textnorm.Subtokenizer, opts Options, log *slog.Logger) (*Pipeline, error) {
	if len(opts.Methods) == 0 {
		return nil, fmt.Errorf("no scoring methods requested")
	}
	methods := make([]boundMethod, 0, len(opts.Methods))
	for _, name := range opts.Methods {
		f, ok := scoring.Lookup(name)
		if !ok {
			return nil, fmt.Errorf("unknown scoring method %q", name)
		}
		methods = append(methods, boundMethod{name: name, score: f})
	}
	if log == nil {
		log = slog.Default()
	}
	return &Pipeline{
		dicts:    dicts,
		resolver: resolver,
		tok:      tok,
		methods:  methods,
		opts:     opts,
		log:      log,
	}, nil
}

// Run processes all records from r and writes output records to w.
// Only stream-level failures return an error; per-record problems are
// contained, counted and logged.
func (p *Pipeline) Run(r io.Reader, w io.Writer) (*Stats, error) {
	stats := newStats()
	out := bufio.NewWriter(w)
	emit := func(line []byte) error {
		if _, err := out.Write(line); err != nil {
			return fmt.Errorf("cannot write output record: %w", err)
		}
		if err := out.WriteByte('\n'); err != nil {
			return fmt.Errorf("cannot write output record: %w", err)
		}
		stats.Emitted++
		return nil
	}

	group := newBestGroup(stats, emit)

	scanner := bufio.NewScanner(r)
	scanner.Buffer(make([]byte, 0, 64*1024), maxLineBytes)
	for scanner.Scan() {
		line := scanner.Bytes()
		if len(line) == 0 {
			continue
		}
		stats.Read++

		rec, err := parseRecord(line)
		if err != nil {
			stats.Skipped++
			p.log.Warn("skipping malformed input line", "line", stats.Read, "error", err)
			continue
		}
		if !rec.hasText {
			stats.Skipped++
			p.log.Warn("skipping record without text field", "line", stats.Read, "id", rec.id)
			continue
		}

		scored, primary := p.process(rec, stats)

		outLine, err := rec.marshal()
		if err != nil {
			stats.Skipped++
			p.log.Warn("skipping record that cannot be serialized", "id", rec.id, "error", err)
			continue
		}

		if p.opts.KeepBest && scored {
			if err := group.add(rec.id, outLine, primary); err != nil {
				return stats, err
			}
			continue
		}
		// Unscored records never compete; an open group stays open only
		// across candidates of the same content item.
		if err := group.flushIfOther(rec.id); err != nil {
			return stats, err
		}
		if err := emit(outLine); err != nil {
			return stats, err
		}
	}
	if err := scanner.Err(); err != nil {
		return stats, fmt.Errorf("cannot read input: %w", err)
	}
	if err := group.flush(); err != nil {
		return stats, err
	}
	if err := out.Flush(); err != nil {
		return stats, fmt.Errorf("cannot flush output: %w", err)
	}
	return stats, nil
}

// process annotates rec with scores where possible. It returns whether the
// record was scored and, if so, its primary-method score.
func (p *Pipeline) process(rec *record, stats *Stats) (bool, float64) {
	lang, ok := p.resolver.Resolve(rec.id, rec.declared)
	if !ok {
		stats.Ignored++
		stats.Unresolved++
		p.log.Debug("language unresolved, passing through unscored", "id", rec.id)
		return false, 0
	}
	dict, ok := p.dicts.Resolve(lang)
	if !ok {
		stats.Ignored++
		stats.MissingDict++
		p.log.Debug("no dictionary for language, passing through unscored", "id", rec.id, "language", lang)
		return false, 0
	}

	seq := p.tok.Subtokens(rec.text)
	if len(seq) == 0 || len(seq) < p.opts.MinSubtokens {
		stats.Ignored++
		stats.TooShort++
		p.log.Debug("too few subtokens, passing through unscored", "id", rec.id, "subtokens", len(seq))
		return false, 0
	}

	primary := 0.0
	for i, m := range p.methods {
		value, ok := m.score(seq, dict, p.opts.Costs)
		if !ok {
			continue
		}
		rec.setScore(m.name, value)
		if i == 0 {
			primary = value
			rec.setPrimary(value)
			stats.observePrimary(value)
		}
	}

	rec.obj[fieldLanguage] = lang
	rec.obj[fieldSubtokenCount] = len(seq)
	rec.obj[fieldCharRatio] = charRatio(len(seq), rec.text)
	if p.opts.Timestamp != "" {
		rec.obj[fieldTimestamp] = p.opts.Timestamp
	}
	if p.opts.GitVersion != "" {
		rec.obj[fieldGitVersion] = p.opts.GitVersion
	}
	if p.opts.Verbose {
		rec.obj[fieldUnknownFreq] = unknownFreq(seq, dict.Contains)
	}

	stats.Scored++
	stats.PerLanguage[lang]++
	return true, primary
}
