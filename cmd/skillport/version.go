package main

import (
	"fmt"

	"github.com/jingkaihe/skillport/pkg/version"
	"github.com/spf13/cobra"
)

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print the version information",
	Long:  `Print the version information of skillport in JSON format.`,
	Run: func(cmd *cobra.Command, _ []string) {
		json, err := version.Get().JSON()
		if err != nil {
			exitWithError(cmd.Context(), err, "failed to format version info")
		}
		fmt.Println(json)
	},
}
