package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

func main() {
	root := buildRoot()
	if err := root.Execute(); err != nil {
		_, _ = fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

// buildRoot creates the root command and wires the subcommands.
func buildRoot() *cobra.Command {
	globalFlags := &GlobalFlags{}
	runFlags := &RunFlags{}

	root := createRootCommand(globalFlags)
	root.AddCommand(
		createDispatchCommand(globalFlags),
		createRunCommand(runFlags),
		createServeCommand(globalFlags),
	)
	return root
}

// createRootCommand creates the root command with minimal persistent flags
func createRootCommand(flags *GlobalFlags) *cobra.Command {
	root := &cobra.Command{
		Use:   "hookrelay",
		Short: "Session-end hook dispatcher",
		Long: `Hookrelay receives a session-end hook event on stdin, validates it,
and launches a detached extraction task chain in the background.

Examples:
  hookrelay dispatch < event.json           # one event on stdin
  hookrelay dispatch --config=hookrelay.toml
  hookrelay serve --config=hookrelay.toml   # HTTP ingress daemon`,
		SilenceUsage: true,
	}

	root.PersistentFlags().StringVar(&flags.ConfigPath, "config", "", "path to TOML config file (optional)")

	return root
}
