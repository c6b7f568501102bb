package main

import (
	"fmt"

	"github.com/jingkaihe/skillport/pkg/manifest"
	"github.com/spf13/cobra"
)

var schemaCmd = &cobra.Command{
	Use:   "schema",
	Short: "Print the JSON schema of skill.yaml",
	Run: func(cmd *cobra.Command, _ []string) {
		out, err := manifest.SchemaJSON()
		if err != nil {
			exitWithError(cmd.Context(), err, "failed to generate schema")
		}
		fmt.Println(string(out))
	},
}
