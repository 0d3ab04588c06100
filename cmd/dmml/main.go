// Command dmml downloads the Telco customer churn dataset and produces a
// data-quality report for it.
package main

import (
	"os"

	"github.com/spf13/cobra"

	// register all report store backends with the storage factory.
	_ "dmml/internal/storage/all"
)

var version = "dev"

func main() {
	if err := newRootCmd().Execute(); err != nil {
		os.Exit(1)
	}
}

// globalFlags are the persistent flags shared by every subcommand. Empty
// values leave the configuration untouched.
type globalFlags struct {
	configPath     string
	metricsBackend string
	pushgatewayURL string
	logLevel       string
	quiet          bool
}

func newRootCmd() *cobra.Command {
	g := &globalFlags{}
	root := &cobra.Command{
		Use:   "dmml",
		Short: "Ingest the churn dataset and report on its data quality",
		Long: `dmml fetches a tabular customer dataset from Kaggle and the Hugging Face Hub
and runs a data-quality pass over it: missing values, duplicate rows, inferred
column types, negative numeric values and z-score anomalies.

Each run writes <dataset>_quality_report_<timestamp>.csv to the report
directory and a timestamped log file to the log directory.

Examples:
  # Download both sources, then validate the Kaggle file
  dmml run

  # Validate a local file with a custom config
  dmml validate --config dmml.yaml data/churn.csv

  # Check a config file without running anything
  dmml config check --config dmml.yaml`,
		Version:       version,
		SilenceUsage:  true,
		SilenceErrors: false,
	}

	pf := root.PersistentFlags()
	pf.StringVarP(&g.configPath, "config", "c", "", "YAML or JSON config file (defaults apply when empty)")
	pf.StringVar(&g.metricsBackend, "metrics-backend", "", "metrics backend: none, prometheus or datadog (overrides env "+envMetricsBackend+")")
	pf.StringVar(&g.pushgatewayURL, "pushgateway-url", "", "Pushgateway base URL (overrides env "+envPushgatewayURL+")")
	pf.StringVar(&g.logLevel, "log-level", "", "log level: debug, info, warn, error")
	pf.BoolVarP(&g.quiet, "quiet", "q", false, "log to the log file only")

	root.AddCommand(
		newIngestCmd(g),
		newValidateCmd(g),
		newRunCmd(g),
		newConfigCmd(g),
	)
	return root
}
