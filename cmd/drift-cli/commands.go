package main

import (
	"os"

	"github.com/spf13/cobra"
)

// setupCommands initializes all commands and their relationships
func setupCommands() {
	// Add auth commands
	rootCmd.AddCommand(authCmd)

	// Add sources commands
	rootCmd.AddCommand(sourcesCmd)

	// Add destinations commands
	rootCmd.AddCommand(destinationsCmd)

	// Add jobs commands
	rootCmd.AddCommand(jobsCmd)

	// Add interactive shell
	rootCmd.AddCommand(interactiveCmd)

	// Add full-screen console
	rootCmd.AddCommand(consoleCmd)
}

// setupCompletion adds shell completion support
func setupCompletion() {
	rootCmd.AddCommand(completionCmd)
	setupCustomCompletions()
}

// completionCmd represents the completion command
var completionCmd = &cobra.Command{
	Use:   "completion [bash|zsh|fish|powershell]",
	Short: "Generate completion script",
	Long: `To load completions:

Bash:
  $ source <(drift-cli completion bash)

  # To load completions for each session, execute once:
  # Linux:
  $ drift-cli completion bash > /etc/bash_completion.d/drift-cli
  # macOS:
  $ drift-cli completion bash > /usr/local/etc/bash_completion.d/drift-cli

Zsh:
  $ source <(drift-cli completion zsh)

  # To load completions for each session, execute once:
  $ drift-cli completion zsh > "${fpath[1]}/_drift-cli"

Fish:
  $ drift-cli completion fish | source

  # To load completions for each session, execute once:
  $ drift-cli completion fish > ~/.config/fish/completions/drift-cli.fish

PowerShell:
  PS> drift-cli completion powershell | Out-String | Invoke-Expression
`,
	DisableFlagsInUseLine: true,
	ValidArgs:             []string{"bash", "zsh", "fish", "powershell"},
	Args:                  cobra.MatchAll(cobra.ExactArgs(1), cobra.OnlyValidArgs),
	Run: func(cmd *cobra.Command, args []string) {
		switch args[0] {
		case "bash":
			cmd.Root().GenBashCompletion(os.Stdout)
		case "zsh":
			cmd.Root().GenZshCompletion(os.Stdout)
		case "fish":
			cmd.Root().GenFishCompletion(os.Stdout, true)
		case "powershell":
			cmd.Root().GenPowerShellCompletion(os.Stdout)
		}
	},
}
