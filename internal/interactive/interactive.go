// Package interactive runs the CLI as a readline shell with history and
// tab completion over the command tree.
package interactive

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/chzyer/readline"
	"github.com/spf13/cobra"
	"github.com/spf13/pflag"

	"github.com/driftstream/driftstream-cli/internal/config"
)

// StartInteractiveMode starts the interactive REPL mode
func StartInteractiveMode(rootCmd *cobra.Command) error {
	completer := buildCompleter(rootCmd)

	rl, err := readline.NewEx(&readline.Config{
		Prompt:          getPromptString(),
		HistoryFile:     getHistoryFile(),
		AutoComplete:    completer,
		InterruptPrompt: "^C",
		EOFPrompt:       "exit",
	})
	if err != nil {
		return fmt.Errorf("failed to initialize interactive mode: %v", err)
	}
	defer rl.Close()

	fmt.Println("Welcome to the DriftStream console!")
	fmt.Println("Type 'help' for available commands, 'exit' or 'quit' to exit.")
	fmt.Println()

	for {
		// The session can change between commands, refresh the prompt.
		rl.SetPrompt(getPromptString())

		line, err := rl.Readline()
		if err != nil {
			if err == readline.ErrInterrupt {
				if len(line) == 0 {
					fmt.Println("Type 'exit' or 'quit' to exit")
					continue
				}
				continue
			} else if err == io.EOF {
				fmt.Println("exit")
				break
			}
			return err
		}

		line = strings.TrimSpace(line)
		if line == "" {
			continue
		}

		if handleSpecialCommand(line) {
			continue
		}

		if line == "exit" || line == "quit" {
			fmt.Println("Goodbye!")
			break
		}

		if err := parseAndExecuteCommand(line, rootCmd); err != nil {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		}
	}

	return nil
}

// getPromptString generates the prompt from the current session.
func getPromptString() string {
	username, err := config.GetUsername()
	if err != nil || username == "" {
		return "drift (not logged in)> "
	}
	return fmt.Sprintf("drift (%s)> ", username)
}

// getHistoryFile returns the path to the history file
func getHistoryFile() string {
	homeDir, err := os.UserHomeDir()
	if err != nil {
		return ""
	}
	return filepath.Join(homeDir, ".driftstream", "cli_history")
}

// handleSpecialCommand handles built-in special commands
// Returns true if the command was handled
func handleSpecialCommand(line string) bool {
	switch line {
	case "clear":
		fmt.Print("\033[H\033[2J")
		return true
	}
	return false
}

// parseAndExecuteCommand parses a command line and executes it through Cobra
func parseAndExecuteCommand(line string, rootCmd *cobra.Command) error {
	args, err := parseCommandLine(line)
	if err != nil {
		return fmt.Errorf("failed to parse command: %v", err)
	}

	if len(args) == 0 {
		return nil
	}

	// Flag state persists across Execute calls; reset it so one command's
	// flags do not leak into the next.
	cmdCopy := cloneCommand(rootCmd)
	cmdCopy.SetArgs(args)

	return cmdCopy.Execute()
}

// cloneCommand creates a fresh instance of the command for execution
func cloneCommand(cmd *cobra.Command) *cobra.Command {
	cmd.Flags().VisitAll(func(flag *pflag.Flag) {
		flag.Changed = false
	})
	cmd.PersistentFlags().VisitAll(func(flag *pflag.Flag) {
		flag.Changed = false
	})

	for _, subCmd := range cmd.Commands() {
		resetCommandFlags(subCmd)
	}

	return cmd
}

// resetCommandFlags recursively resets flags for a command and its subcommands
func resetCommandFlags(cmd *cobra.Command) {
	cmd.Flags().VisitAll(func(flag *pflag.Flag) {
		flag.Changed = false
	})
	cmd.PersistentFlags().VisitAll(func(flag *pflag.Flag) {
		flag.Changed = false
	})

	for _, subCmd := range cmd.Commands() {
		resetCommandFlags(subCmd)
	}
}

// parseCommandLine parses a command line into arguments, respecting quotes
func parseCommandLine(line string) ([]string, error) {
	var args []string
	var current strings.Builder
	inQuote := false
	quoteChar := rune(0)

	for i, ch := range line {
		switch {
		case (ch == '"' || ch == '\'') && !inQuote:
			inQuote = true
			quoteChar = ch
		case ch == quoteChar && inQuote:
			inQuote = false
			quoteChar = 0
		case ch == ' ' && !inQuote:
			if current.Len() > 0 {
				args = append(args, current.String())
				current.Reset()
			}
		case ch == '\\' && i+1 < len(line):
			next := rune(line[i+1])
			if next == '"' || next == '\'' || next == '\\' {
				current.WriteRune(next)
				continue
			}
			current.WriteRune(ch)
		default:
			current.WriteRune(ch)
		}
	}

	if current.Len() > 0 {
		args = append(args, current.String())
	}

	if inQuote {
		return nil, fmt.Errorf("unterminated quote")
	}

	return args, nil
}

// buildCompleter creates a readline completer from the Cobra command tree
func buildCompleter(rootCmd *cobra.Command) *readline.PrefixCompleter {
	items := buildCompletionItems(rootCmd)
	return readline.NewPrefixCompleter(items...)
}

// buildCompletionItems recursively builds completion items from Cobra commands
func buildCompletionItems(cmd *cobra.Command) []readline.PrefixCompleterInterface {
	var items []readline.PrefixCompleterInterface

	for _, subCmd := range cmd.Commands() {
		if subCmd.Hidden {
			continue
		}

		subItems := buildCompletionItems(subCmd)

		items = append(items, readline.PcItem(subCmd.Name(), subItems...))

		for _, alias := range subCmd.Aliases {
			items = append(items, readline.PcItem(alias, subItems...))
		}
	}

	cmd.Flags().VisitAll(func(flag *pflag.Flag) {
		if !flag.Hidden {
			items = append(items, readline.PcItem("--"+flag.Name))
		}
	})

	cmd.PersistentFlags().VisitAll(func(flag *pflag.Flag) {
		if !flag.Hidden {
			items = append(items, readline.PcItem("--"+flag.Name))
		}
	})

	return items
}
