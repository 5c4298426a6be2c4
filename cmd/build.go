package cmd

import (
	"bufio"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/pagesmith/ocrqa-cli/internal/bloomdict"
	"github.com/pagesmith/ocrqa-cli/internal/storage"
	"github.com/pagesmith/ocrqa-cli/internal/textnorm"
)

// buildFlags holds flag values for the `ocrqa build` command.
type buildFlags struct {
	language          string
	input             string
	output            string
	fpRate            float64
	normalization     string
	minSubtokenLength int
}

var buildOpts buildFlags

var buildCmd = &cobra.Command{
	Use:   "build",
	Short: "Build a Bloom dictionary snapshot from a wordlist or corpus",
	Long: `Build reads text (one word or one line of running text per line),
splits it with the same normalization and segmentation used at scoring time,
and writes a dictionary snapshot over the distinct subtokens. Scoring a text
with a dictionary built under a different normalization silently inflates
the unknown rate, which is why both sides share one rule.`,
	Args: cobra.NoArgs,
	RunE: runBuild,
}

func init() {
	f := buildCmd.Flags()
	f.StringVarP(&buildOpts.language, "lang", "l", "", "language code the dictionary is tagged with (required)")
	f.StringVarP(&buildOpts.input, "input", "i", "", "wordlist or corpus file (default: stdin, .gz transparent)")
	f.StringVarP(&buildOpts.output, "output", "o", "", "snapshot file to write (required)")
	f.Float64Var(&buildOpts.fpRate, "fp-rate", bloomdict.DefaultFPRate, "target false-positive rate")
	f.StringVarP(&buildOpts.normalization, "normalization", "u", "", "unicode normalization form (default: NFKC)")
	f.IntVar(&buildOpts.minSubtokenLength, "min-subtoken-length", 1, "minimum subtoken length in runes")
	_ = buildCmd.MarkFlagRequired("lang")
	_ = buildCmd.MarkFlagRequired("output")

	rootCmd.AddCommand(buildCmd)
}

func runBuild(_ *cobra.Command, _ []string) error {
	form, err := textnorm.ParseForm(buildOpts.normalization)
	if err != nil {
		return err
	}
	tok, err := textnorm.New(form, buildOpts.minSubtokenLength)
	if err != nil {
		return err
	}

	in, err := storage.OpenInput(buildOpts.input)
	if err != nil {
		return err
	}
	defer in.Close()

	var entries []string
	scanner := bufio.NewScanner(in)
	scanner.Buffer(make([]byte, 0, 64*1024), 16*1024*1024)
	lines := 0
	for scanner.Scan() {
		lines++
		entries = append(entries, tok.Subtokens(scanner.Text())...)
	}
	if err := scanner.Err(); err != nil {
		return fmt.Errorf("cannot read input: %w", err)
	}

	dict := bloomdict.New(buildOpts.language, entries, buildOpts.fpRate)
	if dict.Entries() == 0 {
		return fmt.Errorf("input yielded no subtokens, refusing to write an empty dictionary")
	}

	out, err := storage.CreateOutput(buildOpts.output)
	if err != nil {
		return err
	}
	if err := bloomdict.WriteSnapshot(out, dict); err != nil {
		_ = out.Close()
		return err
	}
	if err := out.Close(); err != nil {
		return err
	}

	printOK(fmt.Sprintf("wrote %s: language %s, %d entries from %d lines (fp rate %g, %d bits, %d hashes)",
		buildOpts.output, dict.Language(), dict.Entries(), lines, dict.FPRate(), dict.Bits(), dict.Hashes()))
	return nil
}
