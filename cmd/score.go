package cmd

import (
	"fmt"
	"os"
	"time"

	"github.com/google/uuid"
	"github.com/spf13/cobra"

	"github.com/pagesmith/ocrqa-cli/internal/bloomdict"
	"github.com/pagesmith/ocrqa-cli/internal/config"
	"github.com/pagesmith/ocrqa-cli/internal/langid"
	"github.com/pagesmith/ocrqa-cli/internal/logging"
	"github.com/pagesmith/ocrqa-cli/internal/pipeline"
	"github.com/pagesmith/ocrqa-cli/internal/scoring"
	"github.com/pagesmith/ocrqa-cli/internal/storage"
	"github.com/pagesmith/ocrqa-cli/internal/textnorm"
)

// lockTimeout bounds the wait for a concurrently held output lock.
const lockTimeout = 30 * time.Second

// scoreFlags holds flag values for the `ocrqa score` command.
type scoreFlags struct {
	profile string
	run     config.Run
}

var scoreOpts scoreFlags

var scoreCmd = &cobra.Command{
	Use:   "score",
	Short: "Score OCR quality of JSONL content records",
	Long: `Score reads newline-delimited JSON records, resolves each record's
language, splits its text into normalized subtokens and checks them against
the Bloom dictionary of that language. Every requested method attaches one
ocrqa_<method> field to the output record; records whose language cannot be
served pass through unchanged.`,
	Args: cobra.NoArgs,
	RunE: runScore,
}

func init() {
	f := scoreCmd.Flags()
	r := &scoreOpts.run

	f.StringVar(&scoreOpts.profile, "config", "", "YAML run profile; flags override its values")
	f.StringVarP(&r.Input, "input", "i", "", "input JSONL file (default: stdin, .gz transparent)")
	f.StringVarP(&r.Output, "output", "o", "", "output JSONL file (default: stdout, .gz transparent)")
	f.StringSliceVarP(&r.Languages, "languages", "l", nil, "language codes, paired positionally with --dicts")
	f.StringSliceVarP(&r.Dictionaries, "dicts", "b", nil, "dictionary snapshots: local paths or hf://org/repo/file refs")
	f.StringSliceVarP(&r.Methods, "methods", "m", nil, "scoring methods in order; the first is primary (default: unk_type_ratio)")
	f.BoolVar(&r.KeepBest, "keep-best", false, "keep only the best-scoring candidate per content item, by the first method")
	f.StringVarP(&r.Normalization, "normalization", "u", "", "unicode normalization form: NFC, NFD, NFKC or NFKD (default: NFKC)")
	f.Float64VarP(&r.SingleLetterCost, "single-letter-cost", "C", 0, "slc cost of an unknown single letter (default: 0.7)")
	f.Float64VarP(&r.SingleSymbolCost, "single-symbol-cost", "S", 0, "slc cost of an unknown single symbol (default: 0.3)")
	f.IntVar(&r.MinSubtokens, "min-subtokens", 0, "pass records with fewer subtokens through unscored (0: disabled)")
	f.IntVar(&r.MinSubtokenLength, "min-subtoken-length", 0, "minimum subtoken length in runes (default: 1)")
	f.StringVar(&r.LanguageIDPath, "lid", "", "language identification JSONL used when a record has no lg field")
	f.BoolVar(&r.SkipIfOutputExists, "skip-if-output-exists", false, "exit with status 3 when the output file already exists")
	f.BoolVar(&r.KeepTimestampOnly, "keep-timestamp-only", false, "truncate the local output after the run, keeping only its timestamp")
	f.BoolVar(&r.LockOutput, "lock-output", false, "hold an advisory lock on the output file during the run")
	f.StringVar(&r.GitVersion, "git-version", "", "provenance tag for output records (default: GIT_VERSION env)")
	f.StringVar(&r.Timestamp, "timestamp", "", "provenance timestamp for output records (omitted when empty)")
	f.StringVar(&r.LogLevel, "log-level", "", "log level: debug, info, warning, error (default: info)")
	f.StringVar(&r.LogFile, "log-file", "", "write log lines to this file instead of stderr")
	f.BoolVarP(&r.Quiet, "quiet", "q", false, "only log errors")
	f.BoolVarP(&r.Verbose, "verbose-output", "v", false, "attach unknown-subtoken frequencies to scored records")

	rootCmd.AddCommand(scoreCmd)
}

func runScore(cmd *cobra.Command, _ []string) error {
	// Deployment glue (artifact cache, credentials, GIT_VERSION) may live in
	// a local .env; real environment variables win.
	if err := config.ApplyDotEnv(""); err != nil {
		return err
	}

	run, err := assembleRun(cmd)
	if err != nil {
		return err
	}
	if err := run.Validate(); err != nil {
		return fmt.Errorf("invalid configuration: %w", err)
	}

	log, logCloser, err := logging.New(logging.Options{Level: run.LogLevel, File: run.LogFile, Quiet: run.Quiet})
	if err != nil {
		return err
	}
	if logCloser != nil {
		defer logCloser.Close()
	}

	if run.SkipIfOutputExists && storage.Exists(run.Output) {
		log.Warn("output exists, skipping run", "output", run.Output)
		return fmt.Errorf("%w: %s", errOutputExists, run.Output)
	}
	if run.LockOutput && run.Output != "" && run.Output != "-" {
		release, err := storage.AcquireLock(run.Output, lockTimeout)
		if err != nil {
			return err
		}
		defer release()
	}

	runID := uuid.NewString()
	log.Info("starting scoring run",
		"run_id", runID,
		"languages", run.Languages,
		"methods", run.Methods,
		"normalization", run.Normalization,
		"keep_best", run.KeepBest,
	)

	dicts, err := bloomdict.NewSet(run.Languages, run.Dictionaries, bloomdict.NewCacheFetcherFromEnv())
	if err != nil {
		return fmt.Errorf("cannot load dictionaries: %w", err)
	}
	for _, lang := range dicts.Languages() {
		d, _ := dicts.Resolve(lang)
		log.Debug("dictionary loaded", "language", lang, "source", d.Source(), "entries", d.Entries(), "fp_rate", d.FPRate())
	}

	var index langid.Index
	if run.LanguageIDPath != "" {
		rc, err := storage.OpenInput(run.LanguageIDPath)
		if err != nil {
			return err
		}
		index, err = langid.ReadIndex(rc)
		rc.Close()
		if err != nil {
			return fmt.Errorf("cannot load language identification file %s: %w", run.LanguageIDPath, err)
		}
		log.Debug("language identification loaded", "path", run.LanguageIDPath, "entries", len(index))
	}

	form, err := textnorm.ParseForm(run.Normalization)
	if err != nil {
		return err
	}
	tok, err := textnorm.New(form, run.MinSubtokenLength)
	if err != nil {
		return err
	}

	gitVersion := run.GitVersion
	if gitVersion == "" {
		gitVersion = os.Getenv("GIT_VERSION")
	}

	p, err := pipeline.New(dicts, langid.NewResolver(index), tok, pipeline.Options{
		Methods:      run.Methods,
		Costs:        scoring.Costs{SingleLetter: run.SingleLetterCost, SingleSymbol: run.SingleSymbolCost},
		KeepBest:     run.KeepBest,
		MinSubtokens: run.MinSubtokens,
		Verbose:      run.Verbose,
		Timestamp:    run.Timestamp,
		GitVersion:   gitVersion,
	}, log)
	if err != nil {
		return err
	}

	in, err := storage.OpenInput(run.Input)
	if err != nil {
		return err
	}
	defer in.Close()
	out, err := storage.CreateOutput(run.Output)
	if err != nil {
		return err
	}

	stats, runErr := p.Run(in, out)
	if closeErr := out.Close(); closeErr != nil && runErr == nil {
		runErr = closeErr
	}
	if runErr != nil {
		return runErr
	}
	stats.LogSummary(log)

	if run.KeepTimestampOnly && run.Output != "" && run.Output != "-" {
		if err := storage.KeepTimestampOnly(run.Output); err != nil {
			return err
		}
		log.Info("kept timestamp only", "output", run.Output)
	}
	return nil
}

// assembleRun layers defaults, the optional profile file and explicitly set
// flags, in that order.
func assembleRun(cmd *cobra.Command) (config.Run, error) {
	run := config.Default()
	if scoreOpts.profile != "" {
		var err error
		run, err = config.LoadProfile(scoreOpts.profile, run)
		if err != nil {
			return run, err
		}
	}
	overlayScoreFlags(cmd, &run)
	return run, nil
}

// overlayScoreFlags copies every flag the user explicitly set onto run, so
// profile values survive unless overridden on the command line.
func overlayScoreFlags(cmd *cobra.Command, run *config.Run) {
	set := &scoreOpts.run
	f := cmd.Flags()
	if f.Changed("input") {
		run.Input = set.Input
	}
	if f.Changed("output") {
		run.Output = set.Output
	}
	if f.Changed("languages") {
		run.Languages = set.Languages
	}
	if f.Changed("dicts") {
		run.Dictionaries = set.Dictionaries
	}
	if f.Changed("methods") {
		run.Methods = set.Methods
	}
	if f.Changed("keep-best") {
		run.KeepBest = set.KeepBest
	}
	if f.Changed("normalization") {
		run.Normalization = set.Normalization
	}
	if f.Changed("single-letter-cost") {
		run.SingleLetterCost = set.SingleLetterCost
	}
	if f.Changed("single-symbol-cost") {
		run.SingleSymbolCost = set.SingleSymbolCost
	}
	if f.Changed("min-subtokens") {
		run.MinSubtokens = set.MinSubtokens
	}
	if f.Changed("min-subtoken-length") {
		run.MinSubtokenLength = set.MinSubtokenLength
	}
	if f.Changed("lid") {
		run.LanguageIDPath = set.LanguageIDPath
	}
	if f.Changed("skip-if-output-exists") {
		run.SkipIfOutputExists = set.SkipIfOutputExists
	}
	if f.Changed("keep-timestamp-only") {
		run.KeepTimestampOnly = set.KeepTimestampOnly
	}
	if f.Changed("lock-output") {
		run.LockOutput = set.LockOutput
	}
	if f.Changed("git-version") {
		run.GitVersion = set.GitVersion
	}
	if f.Changed("timestamp") {
		run.Timestamp = set.Timestamp
	}
	if f.Changed("log-level") {
		run.LogLevel = set.LogLevel
	}
	if f.Changed("log-file") {
		run.LogFile = set.LogFile
	}
	if f.Changed("quiet") {
		run.Quiet = set.Quiet
	}
	if f.Changed("verbose-output") {
		run.Verbose = set.Verbose
	}
}
