package main

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"dmml/internal/config"
	"dmml/internal/datasource/httpds"
	"dmml/internal/ingest"
	"dmml/internal/logging"
)

func newIngestCmd(g *globalFlags) *cobra.Command {
	var sources []string
	cmd := &cobra.Command{
		Use:   "ingest",
		Short: "Download the dataset from the configured sources",
		Long: `Download the dataset from Kaggle (through the kaggle CLI) and from the
Hugging Face Hub into <raw_dir>/kaggle and <raw_dir>/huggingface.

A failing source is logged and the others still run; the command fails if
any source failed.

Examples:
  # Both sources
  dmml ingest

  # Hugging Face only, with a token for gated datasets
  HF_TOKEN=hf_xxx dmml ingest --source huggingface`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := loadConfig(g, cmd.ErrOrStderr())
			if err != nil {
				return err
			}
			if len(sources) > 0 {
				cfg.Ingest.Sources = sources
			}
			if err := bootstrapDirs(cfg.Paths); err != nil {
				return err
			}
			log, err := newLogger(cfg, logging.StageIngestion)
			if err != nil {
				return err
			}
			defer log.Close()
			defer setupMetrics(cfg, log)(log)

			_, err = runIngest(cmd.Context(), cfg, log)
			return err
		},
	}
	cmd.Flags().StringSliceVar(&sources, "source", nil, "sources to fetch: kaggle, huggingface (default from config)")
	return cmd
}

// runIngest fetches every configured source.
func runIngest(ctx context.Context, cfg *config.Config, log *logging.Logger) ([]ingest.Result, error) {
	targets, err := ingestTargets(cfg)
	if err != nil {
		return nil, err
	}
	stage := &ingest.Stage{Log: log, Job: cfg.Job, Parser: cfg.Dataset.Parser.LoaderOptions()}
	return stage.Run(ctx, targets)
}

func ingestTargets(cfg *config.Config) ([]ingest.Target, error) {
	in := cfg.Ingest
	targets := make([]ingest.Target, 0, len(in.Sources))
	for _, name := range in.Sources {
		switch name {
		case config.SourceKaggle:
			targets = append(targets, ingest.Target{
				Source: ingest.Kaggle{
					Binary:  in.Kaggle.Binary,
					File:    in.Kaggle.File,
					Timeout: in.Kaggle.Timeout,
				},
				Dataset: in.Kaggle.Dataset,
				Dir:     cfg.Paths.KaggleDir(),
			})
		case config.SourceHuggingFace:
			client := httpds.NewClient(httpds.Config{
				Timeout:    in.HuggingFace.Timeout,
				MaxRetries: in.HuggingFace.MaxRetries,
			})
			targets = append(targets, ingest.Target{
				Source: ingest.HuggingFace{
					Client:  client,
					BaseURL: in.HuggingFace.BaseURL,
					File:    in.HuggingFace.File,
					Output:  in.HuggingFace.Output,
					Token:   in.HuggingFace.Token,
				},
				Dataset: in.HuggingFace.Dataset,
				Dir:     cfg.Paths.HuggingFaceDir(),
			})
		default:
			return nil, fmt.Errorf("unknown ingest source %q", name)
		}
	}
	return targets, nil
}
