package main

import (
	"context"
	"io"

	"github.com/spf13/cobra"

	"dmml/internal/config"
	"dmml/internal/datasource/httpds"
	"dmml/internal/logging"
	"dmml/internal/report"
	"dmml/internal/validate"
)

type validateFlags struct {
	name    string
	summary bool
}

func (f *validateFlags) register(cmd *cobra.Command) {
	cmd.Flags().StringVar(&f.name, "name", "", "dataset name used in the report (default from config or file name)")
	cmd.Flags().BoolVar(&f.summary, "summary", true, "print the report as a table")
}

func newValidateCmd(g *globalFlags) *cobra.Command {
	f := &validateFlags{}
	cmd := &cobra.Command{
		Use:   "validate [file-or-url]",
		Short: "Run the quality checks over a dataset file",
		Long: `Load a CSV dataset and write its quality report.

The input defaults to dataset.path from the config. An http(s) URL is
downloaded with retries.

Examples:
  dmml validate
  dmml validate 3.Rawdata/huggingface/hf_churn.csv --name hf_churn`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig(g, cmd.ErrOrStderr())
			if err != nil {
				return err
			}
			input := cfg.Dataset.Path
			if len(args) == 1 {
				input = args[0]
			}
			if err := bootstrapDirs(cfg.Paths); err != nil {
				return err
			}
			log, err := newLogger(cfg, logging.StageValidation)
			if err != nil {
				return err
			}
			defer log.Close()
			defer setupMetrics(cfg, log)(log)

			return runValidate(cmd.Context(), cfg, log, input, f, cmd.OutOrStdout())
		},
	}
	f.register(cmd)
	return cmd
}

// runValidate runs one validation pass and optionally prints the summary.
func runValidate(ctx context.Context, cfg *config.Config, log *logging.Logger, input string, f *validateFlags, out io.Writer) error {
	store, err := openStore(ctx, cfg)
	if err != nil {
		return err
	}
	if store != nil {
		defer store.Close()
	}

	name := f.name
	if name == "" && input == cfg.Dataset.Path {
		name = cfg.Dataset.DisplayName()
	}
	runner := &validate.Runner{
		Log:             log,
		Job:             cfg.Job,
		Parser:          cfg.Dataset.Parser.LoaderOptions(),
		Checks:          cfg.Checks.QualityOptions(),
		Parallel:        cfg.Checks.Parallel,
		ReportDir:       cfg.Paths.ReportDir,
		Store:           store,
		StoreBatchSize:  cfg.Storage.BatchSize,
		AutoCreateTable: cfg.Storage.AutoCreateTable,
		HTTP:            httpds.NewClient(httpds.Config{MaxRetries: cfg.Ingest.HuggingFace.MaxRetries}),
	}
	res, err := runner.Run(ctx, input, name)
	if err != nil {
		return err
	}
	if f.summary {
		return report.Render(out, res.Report)
	}
	return nil
}
