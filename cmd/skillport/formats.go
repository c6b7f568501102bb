package main

import (
	"fmt"
	"os"
	"strings"
	"text/tabwriter"

	"github.com/jingkaihe/skillport/pkg/parsers"
	"github.com/jingkaihe/skillport/pkg/quality"
	"github.com/jingkaihe/skillport/pkg/types/skill"
	"github.com/spf13/cobra"
)

var formatsCmd = &cobra.Command{
	Use:   "formats",
	Short: "List supported source formats",
	Long: `List the supported source formats, the file names detected as each format
and, with --limitations, what each format cannot express.`,
	Run: func(cmd *cobra.Command, _ []string) {
		showLimitations, _ := cmd.Flags().GetBool("limitations")

		w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
		fmt.Fprintln(w, "KEY\tNAME\tFILES")
		fmt.Fprintln(w, "---\t----\t-----")
		for _, f := range skill.Formats {
			fmt.Fprintf(w, "%s\t%s\t%s\n", f, f.DisplayName(), strings.Join(parsers.FilePatterns(f), ", "))
		}
		w.Flush()

		if !showLimitations {
			return
		}
		for _, f := range skill.Formats {
			fmt.Printf("\n%s cannot express:\n", f.DisplayName())
			for _, l := range quality.Limitations(f) {
				fmt.Printf("  - %s\n", l)
			}
		}
	},
}

func init() {
	formatsCmd.Flags().Bool("limitations", false, "Show what each format cannot express")
}
