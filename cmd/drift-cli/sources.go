package main

import (
	"os"

	"github.com/spf13/cobra"

	"github.com/driftstream/driftstream-cli/internal/sources"
)

// sourcesCmd represents the sources command
var sourcesCmd = &cobra.Command{
	Use:   "sources",
	Short: "Manage sources",
	Long:  `Commands for managing source connectors including listing, adding, testing, and stream discovery.`,
}

// listSourcesCmd represents the list command
var listSourcesCmd = &cobra.Command{
	Use:   "list",
	Short: "List all sources",
	Long:  `Display a formatted list of all sources with their connector type and associated jobs.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		return sources.ListSources(cmd.Context(), getServices().Sources)
	},
}

// showSourceCmd represents the show command
var showSourceCmd = &cobra.Command{
	Use:   "show [source-name]",
	Short: "Show source details",
	Long:  `Display detailed information about a specific source, including its configuration and associated jobs.`,
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return sources.ShowSource(cmd.Context(), getServices().Sources, args[0])
	},
}

// addSourceCmd represents the add command
var addSourceCmd = &cobra.Command{
	Use:     "add",
	Aliases: []string{"create"},
	Short:   "Add a new source",
	Long: `Add a new source. The connector's configuration form is filled interactively and the connection ` +
		`is tested before the source is created. Fields can be provided as --field=value arguments.`,
	DisableFlagParsing: true,
	RunE: func(cmd *cobra.Command, args []string) error {
		return sources.AddSource(cmd.Context(), getServices().Sources, args)
	},
}

// modifySourceCmd represents the modify command
var modifySourceCmd = &cobra.Command{
	Use:                "modify [source-name]",
	Aliases:            []string{"update"},
	Short:              "Modify an existing source",
	Long:               `Modify a source's name, version, or configuration. The connection is re-tested before saving.`,
	Args:               cobra.MinimumNArgs(1),
	DisableFlagParsing: true,
	RunE: func(cmd *cobra.Command, args []string) error {
		return sources.ModifySource(cmd.Context(), getServices().Sources, args[0], args[1:])
	},
}

// deleteSourceCmd represents the delete command
var deleteSourceCmd = &cobra.Command{
	Use:   "delete [source-name]",
	Short: "Delete a source",
	Long:  `Delete a source. When jobs depend on the source they are listed and the delete must be confirmed.`,
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		force, _ := cmd.Flags().GetBool("force")
		return sources.DeleteSource(cmd.Context(), getServices().Sources, args[0], force, os.Stdin)
	},
}

// testSourceCmd represents the test command
var testSourceCmd = &cobra.Command{
	Use:   "test [source-name]",
	Short: "Test a source connection",
	Long:  `Re-run the connection test of an existing source.`,
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return sources.TestSource(cmd.Context(), getServices().Sources, args[0])
	},
}

// sourceVersionsCmd represents the versions command
var sourceVersionsCmd = &cobra.Command{
	Use:   "versions [connector-type]",
	Short: "List connector versions",
	Long:  `List the available versions of a source connector.`,
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return sources.ShowVersions(cmd.Context(), getServices().Sources, args[0])
	},
}

// sourceSpecCmd represents the spec command
var sourceSpecCmd = &cobra.Command{
	Use:   "spec [connector-type]",
	Short: "Show a connector's configuration form",
	Long:  `Display the configuration fields of a source connector, with types, defaults and required flags.`,
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		version, _ := cmd.Flags().GetString("version")
		return sources.ShowSpec(cmd.Context(), getServices().Sources, args[0], version)
	},
}

// sourceStreamsCmd represents the streams command
var sourceStreamsCmd = &cobra.Command{
	Use:   "streams [source-name]",
	Short: "Discover a source's streams",
	Long:  `Discover and display the streams of a source, grouped by namespace.`,
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return sources.ShowStreams(cmd.Context(), getServices().Sources, args[0])
	},
}

func init() {
	deleteSourceCmd.Flags().Bool("force", false, "Delete without confirmation")
	sourceSpecCmd.Flags().String("version", "latest", "Connector version")

	sourcesCmd.AddCommand(listSourcesCmd)
	sourcesCmd.AddCommand(showSourceCmd)
	sourcesCmd.AddCommand(addSourceCmd)
	sourcesCmd.AddCommand(modifySourceCmd)
	sourcesCmd.AddCommand(deleteSourceCmd)
	sourcesCmd.AddCommand(testSourceCmd)
	sourcesCmd.AddCommand(sourceVersionsCmd)
	sourcesCmd.AddCommand(sourceSpecCmd)
	sourcesCmd.AddCommand(sourceStreamsCmd)
}
