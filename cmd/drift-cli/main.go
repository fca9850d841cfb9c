package main

import (
	"fmt"
	"os"
	"runtime"

	"github.com/spf13/cobra"

	"github.com/driftstream/driftstream-cli/internal/api"
	"github.com/driftstream/driftstream-cli/internal/config"
	"github.com/driftstream/driftstream-cli/internal/drafts"
	"github.com/driftstream/driftstream-cli/internal/logging"
	"github.com/driftstream/driftstream-cli/internal/mock"
)

var (
	configFile string
	verbose    bool
	version    = "0.1.0"
	// Build information, stamped by the linker.
	Version   = "dev"
	GitCommit = "unknown"
	BuildTime = "unknown"
)

// printVersionInfo displays detailed version information
func printVersionInfo() {
	fmt.Printf("DriftStream CLI v%s (build %s)\n", version, Version)
	fmt.Printf("Built: %s, from commit: %s\n", BuildTime, GitCommit)
	fmt.Printf("Go version: %s\n", runtime.Version())
	fmt.Printf("OS/Arch: %s/%s\n", runtime.GOOS, runtime.GOARCH)
}

// rootCmd represents the base command when called without any subcommands
var rootCmd = &cobra.Command{
	Use:   "drift-cli",
	Short: "DriftStream Command Line Interface",
	Long: "A CLI for configuring DriftStream replication: sources, destinations, stream selection " +
		"and replication jobs.",
	RunE: func(cmd *cobra.Command, args []string) error {
		if cmd.Flags().Lookup("version") != nil && cmd.Flags().Lookup("version").Changed {
			printVersionInfo()
			return nil
		}
		return cmd.Help()
	},
}

// getServices returns the backend services, or the in-memory mock set when
// mock mode is configured.
func getServices() *api.Services {
	if config.GetConfig().Mock {
		return mock.SharedServices()
	}
	return api.NewRESTServices()
}

func getDraftStore() *drafts.Store {
	return drafts.NewStore(drafts.DefaultPath())
}

// Execute adds all child commands to the root command and sets flags appropriately.
func Execute() {
	err := rootCmd.Execute()
	if err != nil {
		os.Exit(1)
	}
}

func init() {
	rootCmd.PersistentFlags().StringVar(&configFile, "config", config.DefaultConfigPath(), "Path to config file")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "Enable debug logging")

	rootCmd.Flags().Bool("version", false, "Show version information and exit")

	cobra.OnInitialize(func() {
		logging.Init(verbose)
		if err := config.Init(configFile); err != nil {
			fmt.Printf("Error initializing config: %v\n", err)
			os.Exit(1)
		}
	})

	setupCommands()
	setupCompletion()
}

func main() {
	defer logging.Sync()
	Execute()
}
