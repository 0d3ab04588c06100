package main

import (
	"bytes"
	"context"
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"dmml/internal/config"
)

const churnCSV = `customerID,gender,tenure,MonthlyCharges,Churn
7590-VHVEG,Female,1,29.85,No
5575-GNVDE,Male,34,56.95,No
3668-QPYBK,Male,2,53.85,Yes
`

type workspace struct {
	root    string
	config  string
	dataset string
	db      string
}

// newWorkspace writes a config whose directories all live under a temp dir.
// The kaggle binary does not exist, so ingestion always fails.
func newWorkspace(t *testing.T, extra string) workspace {
	t.Helper()
	for _, k := range []string{config.EnvMetricsBackend, config.EnvPushgatewayURL, config.EnvDatadogAddr, config.EnvStorageDSN, config.EnvHFToken} {
		t.Setenv(k, "")
	}
	root := t.TempDir()
	w := workspace{
		root:    root,
		config:  filepath.Join(root, "dmml.yaml"),
		dataset: filepath.Join(root, "raw", "kaggle", "WA_Fn-UseC_-Telco-Customer-Churn.csv"),
		db:      filepath.Join(root, "quality.db"),
	}
	cfg := fmt.Sprintf(`job: test
paths:
  log_dir: %[1]s/log
  raw_dir: %[1]s/raw
  report_dir: %[1]s/reports
dataset:
  path: %[2]s
ingest:
  sources: [kaggle]
  kaggle:
    binary: %[1]s/no-such-kaggle
storage:
  kind: sqlite
  dsn: %[3]s
  table: quality_report
  auto_create_table: true
logging:
  quiet: true
%[4]s`, root, w.dataset, w.db, extra)
	require.NoError(t, os.WriteFile(w.config, []byte(cfg), 0o644))
	return w
}

func (w workspace) writeDataset(t *testing.T) {
	t.Helper()
	require.NoError(t, os.MkdirAll(filepath.Dir(w.dataset), 0o755))
	require.NoError(t, os.WriteFile(w.dataset, []byte(churnCSV), 0o644))
}

func execute(t *testing.T, args ...string) (string, string, error) {
	t.Helper()
	cmd := newRootCmd()
	var out, errOut bytes.Buffer
	cmd.SetOut(&out)
	cmd.SetErr(&errOut)
	cmd.SetArgs(args)
	err := cmd.ExecuteContext(context.Background())
	return out.String(), errOut.String(), err
}

func glob(t *testing.T, pattern string) []string {
	t.Helper()
	m, err := filepath.Glob(pattern)
	require.NoError(t, err)
	return m
}

func TestRootCmd_Subcommands(t *testing.T) {
	names := map[string]bool{}
	for _, c := range newRootCmd().Commands() {
		names[c.Name()] = true
	}
	for _, want := range []string{"ingest", "validate", "run", "config"} {
		assert.True(t, names[want], want)
	}
}

func TestConfigCheck(t *testing.T) {
	w := newWorkspace(t, "")
	out, _, err := execute(t, "config", "check", "--config", w.config)
	require.NoError(t, err)
	assert.Contains(t, out, "configuration is valid")

	bad := newWorkspace(t, "checks:\n  z_threshold: -1\n")
	out, _, err = execute(t, "config", "check", "--config", bad.config)
	require.Error(t, err)
	assert.Contains(t, out, "checks.z_threshold")

	_, _, err = execute(t, "config", "check", "--config", filepath.Join(w.root, "missing.yaml"))
	assert.ErrorContains(t, err, "config file not found")
}

func TestConfigShow_HidesToken(t *testing.T) {
	w := newWorkspace(t, "")
	t.Setenv(config.EnvHFToken, "hf_secret")
	out, _, err := execute(t, "config", "show", "--config", w.config, "--log-level", "debug")
	require.NoError(t, err)
	assert.Contains(t, out, "level: debug")
	assert.NotContains(t, out, "hf_secret")
}

func TestValidate_WritesReportAndStore(t *testing.T) {
	w := newWorkspace(t, "")
	w.writeDataset(t)

	out, _, err := execute(t, "validate", "--config", w.config)
	require.NoError(t, err)
	assert.Contains(t, out, "Missing Values")
	assert.Contains(t, out, "Duplicate Rows")

	reports := glob(t, filepath.Join(w.root, "reports", "WA_Fn-UseC_-Telco-Customer-Churn_quality_report_*.csv"))
	require.Len(t, reports, 1)
	body, err := os.ReadFile(reports[0])
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(string(body), "Check,Column,Details\n"))

	logs := glob(t, filepath.Join(w.root, "log", "validation_*.log"))
	require.Len(t, logs, 1)
	logBody, err := os.ReadFile(logs[0])
	require.NoError(t, err)
	assert.Contains(t, string(logBody), " - INFO - Dataset Shape: (3, 5)")

	db, err := sql.Open("sqlite", w.db)
	require.NoError(t, err)
	defer db.Close()
	var n int
	require.NoError(t, db.QueryRow(`SELECT COUNT(*) FROM quality_report`).Scan(&n))
	assert.Positive(t, n)
}

func TestValidate_ExplicitInputAndName(t *testing.T) {
	w := newWorkspace(t, "")
	other := filepath.Join(w.root, "hf_churn.csv")
	require.NoError(t, os.WriteFile(other, []byte(churnCSV), 0o644))

	_, _, err := execute(t, "validate", "--config", w.config, "--summary=false", "--name", "hf", other)
	require.NoError(t, err)
	assert.Len(t, glob(t, filepath.Join(w.root, "reports", "hf_quality_report_*.csv")), 1)
}

func TestValidate_LoadErrorFails(t *testing.T) {
	w := newWorkspace(t, "")
	require.NoError(t, os.MkdirAll(filepath.Dir(w.dataset), 0o755))
	require.NoError(t, os.WriteFile(w.dataset, []byte("a,b\n1\n"), 0o644))

	_, _, err := execute(t, "validate", "--config", w.config)
	require.Error(t, err)
	assert.Empty(t, glob(t, filepath.Join(w.root, "reports", "*.csv")))
}

func TestRun_ContinuesWithExistingDataset(t *testing.T) {
	w := newWorkspace(t, "")
	w.writeDataset(t)

	_, _, err := execute(t, "run", "--config", w.config, "--summary=false")
	require.NoError(t, err)

	ingestLogs := glob(t, filepath.Join(w.root, "log", "ingestion_*.log"))
	require.Len(t, ingestLogs, 1)
	body, err := os.ReadFile(ingestLogs[0])
	require.NoError(t, err)
	assert.Contains(t, string(body), "Starting kaggle ingestion for blastchar/telco-customer-churn")
	assert.Contains(t, string(body), " - ERROR - kaggle ingestion failed")

	assert.Len(t, glob(t, filepath.Join(w.root, "reports", "*.csv")), 1)
}

func TestRun_MetricsFlushFailureReachesValidationLog(t *testing.T) {
	w := newWorkspace(t, `metrics:
  backend: prometheus
  pushgateway_url: http://127.0.0.1:1
`)
	w.writeDataset(t)

	_, _, err := execute(t, "run", "--config", w.config, "--summary=false")
	require.NoError(t, err)

	logs := glob(t, filepath.Join(w.root, "log", "validation_*.log"))
	require.Len(t, logs, 1)
	body, err := os.ReadFile(logs[0])
	require.NoError(t, err)
	assert.Contains(t, string(body), " - WARN - metrics flush failed")
}

func TestRun_FailsWithoutDataset(t *testing.T) {
	w := newWorkspace(t, "")
	_, _, err := execute(t, "run", "--config", w.config)
	require.Error(t, err)
	assert.ErrorIs(t, err, os.ErrNotExist)
}

func TestIngest_ReportsFailure(t *testing.T) {
	w := newWorkspace(t, "")
	_, _, err := execute(t, "ingest", "--config", w.config)
	require.Error(t, err)
	assert.DirExists(t, filepath.Join(w.root, "raw", "huggingface"))
}

func TestIngestTargets(t *testing.T) {
	cfg := config.Default()
	targets, err := ingestTargets(cfg)
	require.NoError(t, err)
	require.Len(t, targets, 2)
	assert.Equal(t, "kaggle", targets[0].Source.Name())
	assert.Equal(t, filepath.Join("3.Rawdata", "kaggle"), targets[0].Dir)
	assert.Equal(t, "huggingface", targets[1].Source.Name())
	assert.Equal(t, config.DefaultHFDataset, targets[1].Dataset)

	cfg.Ingest.Sources = []string{"ftp"}
	_, err = ingestTargets(cfg)
	assert.Error(t, err)
}
