package main

import (
	"errors"
	"os"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"dmml/internal/logging"
)

func newRunCmd(g *globalFlags) *cobra.Command {
	f := &validateFlags{}
	cmd := &cobra.Command{
		Use:   "run",
		Short: "Ingest, then validate dataset.path",
		Long: `Run the ingestion stage and then validate dataset.path.

Ingestion failures are logged; validation still runs when the dataset file
already exists from an earlier download.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := loadConfig(g, cmd.ErrOrStderr())
			if err != nil {
				return err
			}
			if err := bootstrapDirs(cfg.Paths); err != nil {
				return err
			}

			ilog, err := newLogger(cfg, logging.StageIngestion)
			if err != nil {
				return err
			}
			flushMetrics := setupMetrics(cfg, ilog)

			_, ingestErr := runIngest(cmd.Context(), cfg, ilog)

			vlog, err := newLogger(cfg, logging.StageValidation)
			if err != nil {
				flushMetrics(ilog)
				_ = ilog.Close()
				return err
			}
			_ = ilog.Close()
			defer vlog.Close()
			defer flushMetrics(vlog)

			input := cfg.Dataset.Path
			if _, statErr := os.Stat(input); statErr != nil {
				vlog.Error("Dataset file missing after ingestion", logging.Op("load"), zap.String("path", input), zap.Error(statErr))
				return errors.Join(ingestErr, statErr)
			}
			if ingestErr != nil {
				vlog.Warn("Ingestion failed; validating the existing dataset file", zap.String("path", input), zap.Error(ingestErr))
			}
			return runValidate(cmd.Context(), cfg, vlog, input, f, cmd.OutOrStdout())
		},
	}
	f.register(cmd)
	return cmd
}
