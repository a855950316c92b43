// Package cli provides the command-line interface for qsolog.
package cli

import (
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"

	"github.com/ccollicutt/qsolog/internal/cli/commands"
	"github.com/ccollicutt/qsolog/internal/cli/plugins"
)

// Execute runs the root command with the process arguments and returns
// the exit code.
func Execute() int {
	return Run(os.Args[1:], os.Stdout, os.Stderr)
}

// Run executes qsolog with args and returns the exit code: 0 on success,
// 2 on a configuration, input or output error. Unknown commands are
// dispatched to qsolog-<command> plugins when one is installed.
func Run(args []string, stdout, stderr io.Writer) int {
	rootCmd := NewRootCommand()
	rootCmd.SetArgs(args)
	rootCmd.SetOut(stdout)
	rootCmd.SetErr(stderr)
	commands.ExitCode = 0

	// Check if the first argument might be a plugin command
	potentialCommand := ""
	if len(args) > 0 && len(args[0]) > 0 && args[0][0] != '-' {
		potentialCommand = args[0]
	}

	if potentialCommand != "" && !isBuiltinCommand(rootCmd, potentialCommand) {
		// Try to find and execute a plugin
		if pluginPath, err := plugins.FindPlugin(potentialCommand); err == nil {
			return plugins.Execute(pluginPath, args[1:])
		}
		// Plugin not found - will fall through to Cobra which will show error
	}

	if err := rootCmd.Execute(); err != nil {
		if potentialCommand != "" && !isBuiltinCommand(rootCmd, potentialCommand) {
			// Show helpful plugin error message
			_, _ = fmt.Fprintln(stderr, plugins.FormatNotFoundError(potentialCommand))
			return 2
		}
		// Print error to stderr (SilenceErrors prevents Cobra from doing this)
		_, _ = fmt.Fprintf(stderr, "Error: %v\n", err)
		return 2
	}
	return commands.ExitCode
}

// isBuiltinCommand checks if a command name is a built-in cobra command.
func isBuiltinCommand(rootCmd *cobra.Command, name string) bool {
	for _, cmd := range rootCmd.Commands() {
		if cmd.Name() == name || cmd.HasAlias(name) {
			return true
		}
	}
	// Also check for special commands like help and completion
	return name == "help" || name == "completion"
}

// NewRootCommand creates the root cobra command.
func NewRootCommand() *cobra.Command {
	rootCmd := &cobra.Command{
		Use:   "qsolog",
		Short: "Reconstruct QSOs from WSJT-X logs and export ADIF",
		Long: `qsolog reads a WSJT-X ALL.TXT contact log, reconstructs each two-party
exchange (QSO) from the stream of Tx/Rx lines and writes the completed
ones as ADIF records.

It tracks:
  - Who the other station is (the call sign that is not yours)
  - Signal reports sent and received
  - The correspondent's grid locator
  - Sign-off markers (73, RR73) that complete an exchange

PLUGINS:
  qsolog supports plugins for extended functionality. Plugins are standalone
  binaries named qsolog-<command> that are automatically discovered and invoked.

  Plugin locations (searched in order):
    1. $QSOLOG_PLUGIN_DIR, when set
    2. Same directory as the qsolog binary
    3. ~/.qsolog/plugins/
    4. Anywhere in PATH`,
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	// Add subcommands
	rootCmd.AddCommand(commands.NewConvertCommand())
	rootCmd.AddCommand(commands.NewInspectCommand())
	rootCmd.AddCommand(commands.NewValidateCommand())
	rootCmd.AddCommand(commands.NewVersionCommand())

	return rootCmd
}
