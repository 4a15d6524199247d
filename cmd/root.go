package cmd

import (
	"os"

	"github.com/spf13/cobra"
)

var cfgPath string

// Execute runs the newschat CLI.
func Execute() {
	root := &cobra.Command{
		Use:   "newschat",
		Short: "Retrieval-augmented chat over a news-article corpus",
	}
	root.PersistentFlags().StringVarP(&cfgPath, "config", "c", "", "config file (default searches ./config and .)")
	root.AddCommand(serveCMD(), ingestCMD())
	if err := root.Execute(); err != nil {
		os.Exit(1)
	}
}
