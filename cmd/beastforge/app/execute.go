package app

import (
	"context"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/beastforge/beastforge/pkg/errors"
)

// Execute runs the CLI with the given arguments.
func (a *App) Execute(ctx context.Context, args []string) error {
	rootCmd := a.createRootCommand()
	rootCmd.SetArgs(args)
	return rootCmd.ExecuteContext(ctx)
}

// createRootCommand builds the root cobra command with all subcommands.
func (a *App) createRootCommand() *cobra.Command {
	rootCmd := &cobra.Command{
		Use:   "beastforge",
		Short: "Convert monster records into Obsidian statblock notes",
		Long: `beastforge converts a database of Pathfinder monster records into
markdown documents for the Obsidian fantasy-statblocks plugin.

Each record in the database becomes one note with a YAML statblock
front-matter block followed by description and source link sections.`,
		Version:       a.version,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRun: func(cmd *cobra.Command, _ []string) {
			a.applyGlobalFlags(cmd)
		},
	}

	// Global flags
	rootCmd.PersistentFlags().BoolP("verbose", "v", false, "Enable verbose output")
	rootCmd.PersistentFlags().BoolP("quiet", "q", false, "Suppress non-error output")
	rootCmd.PersistentFlags().Bool("no-color", false, "Disable colored output")
	rootCmd.PersistentFlags().String("log-level", "", "Log level (trace, debug, info, warn, error)")

	rootCmd.SetVersionTemplate(fmt.Sprintf("beastforge %s (commit %s, built %s)\n", a.version, a.commit, a.date))

	rootCmd.AddCommand(a.createConvertCommand())
	rootCmd.AddCommand(a.createInspectCommand())
	rootCmd.AddCommand(a.createVersionCommand())

	return rootCmd
}

// applyGlobalFlags folds persistent flag values into the configuration and
// reconfigures the logger accordingly.
func (a *App) applyGlobalFlags(cmd *cobra.Command) {
	if cmd.Flags().Changed("verbose") {
		a.config.Verbose = mustGetBool(cmd, "verbose")
	}
	if cmd.Flags().Changed("quiet") {
		a.config.Quiet = mustGetBool(cmd, "quiet")
	}
	if cmd.Flags().Changed("no-color") {
		a.config.NoColor = mustGetBool(cmd, "no-color")
	}
	if cmd.Flags().Changed("log-level") {
		a.config.LogLevel = mustGetString(cmd, "log-level")
	}

	logger := NewLogger(a.config)
	a.logger = &logger
}

// ExitOnError prints the error and exits with an appropriate status code.
func ExitOnError(err error) {
	if err == nil {
		return
	}

	fmt.Fprintf(os.Stderr, "Error: %v\n", err)

	if errors.IsNotFound(err) {
		os.Exit(2)
	}
	os.Exit(1)
}

// mustGetBool retrieves a boolean flag value, panicking on programmer error.
func mustGetBool(cmd *cobra.Command, name string) bool {
	value, err := cmd.Flags().GetBool(name)
	if err != nil {
		panic(fmt.Sprintf("flag %q: %v", name, err))
	}
	return value
}

// mustGetString retrieves a string flag value, panicking on programmer error.
func mustGetString(cmd *cobra.Command, name string) string {
	value, err := cmd.Flags().GetString(name)
	if err != nil {
		panic(fmt.Sprintf("flag %q: %v", name, err))
	}
	return value
}
