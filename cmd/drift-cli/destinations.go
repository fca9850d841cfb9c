package main

import (
	"os"

	"github.com/spf13/cobra"

	"github.com/driftstream/driftstream-cli/internal/destinations"
)

// destinationsCmd represents the destinations command
var destinationsCmd = &cobra.Command{
	Use:   "destinations",
	Short: "Manage destinations",
	Long:  `Commands for managing destination connectors including listing, adding, testing, and deleting.`,
}

// listDestinationsCmd represents the list command
var listDestinationsCmd = &cobra.Command{
	Use:   "list",
	Short: "List all destinations",
	Long:  `Display a formatted list of all destinations with their connector type and associated jobs.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		return destinations.ListDestinations(cmd.Context(), getServices().Destinations)
	},
}

// showDestinationCmd represents the show command
var showDestinationCmd = &cobra.Command{
	Use:   "show [destination-name]",
	Short: "Show destination details",
	Long:  `Display detailed information about a specific destination, including its configuration and associated jobs.`,
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return destinations.ShowDestination(cmd.Context(), getServices().Destinations, args[0])
	},
}

// addDestinationCmd represents the add command
var addDestinationCmd = &cobra.Command{
	Use:     "add",
	Aliases: []string{"create"},
	Short:   "Add a new destination",
	Long: `Add a new destination. The connector's configuration form is filled interactively and the ` +
		`connection is tested before the destination is created.`,
	DisableFlagParsing: true,
	RunE: func(cmd *cobra.Command, args []string) error {
		return destinations.AddDestination(cmd.Context(), getServices().Destinations, args)
	},
}

// modifyDestinationCmd represents the modify command
var modifyDestinationCmd = &cobra.Command{
	Use:                "modify [destination-name]",
	Aliases:            []string{"update"},
	Short:              "Modify an existing destination",
	Long:               `Modify a destination's name, version, or configuration. The connection is re-tested before saving.`,
	Args:               cobra.MinimumNArgs(1),
	DisableFlagParsing: true,
	RunE: func(cmd *cobra.Command, args []string) error {
		return destinations.ModifyDestination(cmd.Context(), getServices().Destinations, args[0], args[1:])
	},
}

// deleteDestinationCmd represents the delete command
var deleteDestinationCmd = &cobra.Command{
	Use:   "delete [destination-name]",
	Short: "Delete a destination",
	Long:  `Delete a destination. When jobs depend on it they are listed and the delete must be confirmed.`,
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		force, _ := cmd.Flags().GetBool("force")
		return destinations.DeleteDestination(cmd.Context(), getServices().Destinations, args[0], force, os.Stdin)
	},
}

// testDestinationCmd represents the test command
var testDestinationCmd = &cobra.Command{
	Use:   "test [destination-name]",
	Short: "Test a destination connection",
	Long:  `Re-run the connection test of an existing destination.`,
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return destinations.TestDestination(cmd.Context(), getServices().Destinations, args[0])
	},
}

// destinationVersionsCmd represents the versions command
var destinationVersionsCmd = &cobra.Command{
	Use:   "versions [connector-type]",
	Short: "List connector versions",
	Long:  `List the available versions of a destination connector.`,
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return destinations.ShowVersions(cmd.Context(), getServices().Destinations, args[0])
	},
}

// destinationSpecCmd represents the spec command
var destinationSpecCmd = &cobra.Command{
	Use:   "spec [connector-type]",
	Short: "Show a connector's configuration form",
	Long:  `Display the configuration fields of a destination connector, with types, defaults and required flags.`,
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		version, _ := cmd.Flags().GetString("version")
		return destinations.ShowSpec(cmd.Context(), getServices().Destinations, args[0], version)
	},
}

func init() {
	deleteDestinationCmd.Flags().Bool("force", false, "Delete without confirmation")
	destinationSpecCmd.Flags().String("version", "latest", "Connector version")

	destinationsCmd.AddCommand(listDestinationsCmd)
	destinationsCmd.AddCommand(showDestinationCmd)
	destinationsCmd.AddCommand(addDestinationCmd)
	destinationsCmd.AddCommand(modifyDestinationCmd)
	destinationsCmd.AddCommand(deleteDestinationCmd)
	destinationsCmd.AddCommand(testDestinationCmd)
	destinationsCmd.AddCommand(destinationVersionsCmd)
	destinationsCmd.AddCommand(destinationSpecCmd)
}
