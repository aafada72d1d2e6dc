package cli

import (
	"github.com/spf13/cobra"
)

var rootCmd = &cobra.Command{
	Use:   "junomem",
	Short: "Tiered memory service for the Juno dictation assistant",
	Long:  "Junomem keeps Juno's contextual memory: a bounded, tiered store of recent commands, clipboard and highlight snapshots, and usage history, surfaced to the AI command processor by relevance.",
}

func Execute() error {
	return rootCmd.Execute()
}

func init() {
	rootCmd.AddCommand(versionCmd)
	rootCmd.AddCommand(serveCmd)
	rootCmd.AddCommand(rememberCmd)
	rootCmd.AddCommand(recallCmd)
	rootCmd.AddCommand(statsCmd)
	rootCmd.AddCommand(usageCmd)
}
