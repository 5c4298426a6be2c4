package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/pagesmith/ocrqa-cli/internal/bloomdict"
)

var dictsCmd = &cobra.Command{
	Use:   "dicts <snapshot>...",
	Short: "Inspect Bloom dictionary snapshots",
	Args:  cobra.MinimumNArgs(1),
	RunE:  runDicts,
}

func init() {
	rootCmd.AddCommand(dictsCmd)
}

func runDicts(cmd *cobra.Command, args []string) error {
	fetcher := bloomdict.NewCacheFetcherFromEnv()

	rows := make([][]string, 0, len(args))
	failed := 0
	for _, ref := range args {
		src, err := bloomdict.ParseSource(ref, fetcher)
		if err != nil {
			printErr(fmt.Sprintf("%s: %v", ref, err))
			failed++
			continue
		}
		rc, err := src.Open()
		if err != nil {
			printErr(err.Error())
			failed++
			continue
		}
		d, err := bloomdict.Read(rc, "", src.Ref())
		rc.Close()
		if err != nil {
			printErr(err.Error())
			failed++
			continue
		}
		rows = append(rows, []string{
			d.Language(),
			d.Source(),
			fmt.Sprintf("%d", d.Entries()),
			fmt.Sprintf("%d", d.Bits()),
			fmt.Sprintf("%d", d.Hashes()),
			fmt.Sprintf("%g", d.FPRate()),
		})
	}

	if len(rows) > 0 {
		fmt.Fprintln(cmd.OutOrStdout(), renderTable(
			[]string{"Language", "Source", "Entries", "Bits", "Hashes", "FP rate"},
			rows,
			[]columnAlignment{alignLeft, alignLeft, alignRight, alignRight, alignRight, alignRight},
		))
	}
	if failed > 0 {
		return fmt.Errorf("%d of %d snapshots could not be read", failed, len(args))
	}
	return nil
}
