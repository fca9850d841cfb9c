package main

import (
	"github.com/spf13/cobra"

	"github.com/driftstream/driftstream-cli/internal/interactive"
	"github.com/driftstream/driftstream-cli/internal/tui"
)

// interactiveCmd represents the interactive command
var interactiveCmd = &cobra.Command{
	Use:     "interactive",
	Aliases: []string{"shell"},
	Short:   "Start interactive mode",
	Long:    `Start a shell with history and tab completion over all CLI commands.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		return interactive.StartInteractiveMode(rootCmd)
	},
}

// consoleCmd represents the console command
var consoleCmd = &cobra.Command{
	Use:   "console",
	Short: "Start the full-screen console",
	Long:  `Start the full-screen console for browsing sources, destinations and jobs and creating jobs through the guided flow.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		return tui.Run(getServices(), getDraftStore())
	},
}
