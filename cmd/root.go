package cmd

import (
	"errors"
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

// errOutputExists signals that the configured output already exists and the
// run was skipped. It maps to a dedicated exit code so orchestration can
// tell "already done" from failure.
var errOutputExists = errors.New("output already exists")

// ExitOutputExists is the process exit code for an idempotent skip.
const ExitOutputExists = 3

var rootCmd = &cobra.Command{
	Use:          "ocrqa",
	Short:        "OCR quality scoring for digitized text corpora",
	SilenceUsage: true, // don't print usage on operational errors
	Long: `ocrqa scores the lexical plausibility of OCR-transcribed text against
per-language Bloom dictionaries, reading and writing newline-delimited JSON
records. Lower scores mean fewer unknown subtokens, i.e. better OCR.`,
}

// Execute is called by main.go.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		if errors.Is(err, errOutputExists) {
			os.Exit(ExitOutputExists)
		}
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
