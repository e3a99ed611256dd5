package app

import (
	"fmt"
	"os"
	"strconv"

	"github.com/spf13/cobra"

	"github.com/beastforge/beastforge/internal/tools/statblock"
	"github.com/beastforge/beastforge/pkg/bestiary"
	"github.com/beastforge/beastforge/pkg/logging"
)

// createConvertCommand builds the convert subcommand.
func (a *App) createConvertCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "convert",
		Short: "Convert the monster database into statblock notes",
		Long: `Convert reads data.json from the input folder and writes one markdown
document per record into the output folder. Existing documents are never
overwritten; conflicting records are skipped and reported.`,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return a.runConvert(cmd)
		},
	}

	cmd.Flags().StringP("input", "i", "", "Input folder containing data.json (default \"data\")")
	cmd.Flags().StringP("output", "o", "", "Output folder for generated documents (default \"bestiary\")")
	cmd.Flags().BoolP("clean", "c", false, "Remove existing .md files from the output folder first")
	cmd.Flags().Bool("strict-quoting", false, "Emit strictly valid YAML double-quoted scalars")
	cmd.Flags().Bool("report-keys", false, "Report unconsumed record fields and source names after the run")
	cmd.Flags().StringP("test-doc", "m", "", "Also write a minimal test document referencing the named monster")

	return cmd
}

func (a *App) runConvert(cmd *cobra.Command) error {
	config := a.config
	if cmd.Flags().Changed("input") {
		config.InputFolder = mustGetString(cmd, "input")
	}
	if cmd.Flags().Changed("output") {
		config.OutputFolder = mustGetString(cmd, "output")
	}
	if cmd.Flags().Changed("clean") {
		config.Clean = mustGetBool(cmd, "clean")
	}
	if cmd.Flags().Changed("strict-quoting") {
		config.StrictQuoting = mustGetBool(cmd, "strict-quoting")
	}
	if cmd.Flags().Changed("report-keys") {
		config.ReportKeys = mustGetBool(cmd, "report-keys")
	}
	if cmd.Flags().Changed("test-doc") {
		config.TestDoc = mustGetString(cmd, "test-doc")
	}

	ctx := logging.WithLogger(cmd.Context(), a.logger)
	log := a.logger

	dataPath := config.DataPath()
	log.Info().Str("database", dataPath).Msg("Loading monster database")

	corpus, err := bestiary.Load(dataPath)
	if err != nil {
		return err
	}
	log.Info().Int("records", corpus.Len()).Msg("Database loaded")

	generator := statblock.New(
		statblock.WithOutputDir(config.OutputFolder),
		statblock.WithClean(config.Clean),
		statblock.WithQuoting(quotingMode(config)),
	)

	summary, err := generator.Convert(ctx, corpus)
	if err != nil {
		return err
	}

	log.Info().
		Int("total", summary.Total).
		Int("written", summary.Written).
		Int("skipped", summary.Skipped).
		Int("failed", summary.Failed).
		Msg("Conversion complete")

	if config.ReportKeys {
		for _, name := range summary.Sources {
			log.Info().Str("source", name).Msg("Source observed")
		}
		for _, key := range summary.UnknownKeys {
			log.Warn().Str("field", key).Msg("Unconsumed record field")
		}
	}

	if config.TestDoc != "" {
		path, err := generator.WriteTestDoc(config.TestDoc)
		if err != nil {
			return err
		}
		log.Info().Str("path", path).Msg("Wrote test document")
	}

	return nil
}

// createInspectCommand builds the inspect subcommand.
func (a *App) createInspectCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "inspect <key-or-index>",
		Short: "Render a single record to stdout",
		Long: `Inspect renders one record as a statblock document and prints it to
standard output instead of writing a file. The argument is either a record
key (an Archives of Nethys URL) or a zero-based index into the database.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return a.runInspect(cmd, args[0])
		},
	}

	cmd.Flags().StringP("input", "i", "", "Input folder containing data.json (default \"data\")")
	cmd.Flags().Bool("strict-quoting", false, "Emit strictly valid YAML double-quoted scalars")

	return cmd
}

func (a *App) runInspect(cmd *cobra.Command, arg string) error {
	config := a.config
	if cmd.Flags().Changed("input") {
		config.InputFolder = mustGetString(cmd, "input")
	}
	if cmd.Flags().Changed("strict-quoting") {
		config.StrictQuoting = mustGetBool(cmd, "strict-quoting")
	}

	corpus, err := bestiary.Load(config.DataPath())
	if err != nil {
		return err
	}

	var entry bestiary.Entry
	if index, convErr := strconv.Atoi(arg); convErr == nil {
		entry, err = corpus.At(index)
	} else {
		entry, err = corpus.Get(arg)
	}
	if err != nil {
		return err
	}

	generator := statblock.New(statblock.WithQuoting(quotingMode(config)))
	return generator.WriteOne(os.Stdout, entry)
}

// createVersionCommand builds the version subcommand.
func (a *App) createVersionCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Show version information",
		Run: func(cmd *cobra.Command, _ []string) {
			fmt.Fprintf(cmd.OutOrStdout(), "beastforge %s\n  commit: %s\n  built:  %s\n", a.version, a.commit, a.date)
		},
	}
}

// quotingMode maps configuration onto the renderer's quoting mode.
func quotingMode(config *Config) statblock.Quoting {
	if config.StrictQuoting {
		return statblock.QuotingStrict
	}
	return statblock.QuotingCompat
}
