package cmd

import (
	"fmt"
	"os"
)

// ── Unified output helpers ────────────────────────────────────────────────────
// Human-facing status lines share one icon vocabulary. They go to stderr so
// stdout stays reserved for the record stream.
//
// Icon semantics:
//   ✓  success
//   ✗  error / failure
//   ○  skipped / not applicable
//   ~  neutral info

// printOK prints a success line.
func printOK(msg string) {
	fmt.Fprintf(os.Stderr, "  ✓  %s\n", msg)
}

// printErr prints an error line.
func printErr(msg string) {
	fmt.Fprintf(os.Stderr, "  ✗  %s\n", msg)
}

// printSkip prints a skipped / not-applicable line.
func printSkip(msg string) {
	fmt.Fprintf(os.Stderr, "  ○  %s\n", msg)
}

// printInfo prints a neutral informational line.
func printInfo(msg string) {
	fmt.Fprintf(os.Stderr, "  ~  %s\n", msg)
}
