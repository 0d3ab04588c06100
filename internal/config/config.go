// Package config defines the run configuration of the dmml tool: where raw
// data and artifacts live, how the dataset is parsed, which checks run, and
// where reports and metrics go.
//
// Files are YAML (JSON is accepted too, being a YAML subset). Every field has
// a default, so an empty or missing file yields a working configuration for
// the Telco churn dataset:
//
//	job: telco-churn
//	paths:   { log_dir: metadata/log, raw_dir: 3.Rawdata, report_dir: metadata/reports }
//	dataset: { path: 3.Rawdata/kaggle/WA_Fn-UseC_-Telco-Customer-Churn.csv }
//	checks:  { parallel: true, z_threshold: 3 }
//	storage: { kind: sqlite, dsn: "file:metadata/quality.db", table: quality_report }
package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"gopkg.in/yaml.v3"

	pcsv "dmml/internal/parser/csv"
	"dmml/internal/quality"
)

// Default dataset identifiers and file names of the Telco churn sources.
const (
	DefaultKaggleDataset = "blastchar/telco-customer-churn"
	DefaultKaggleFile    = "WA_Fn-UseC_-Telco-Customer-Churn.csv"
	DefaultHFDataset     = "aai510-group1/telco-customer-churn"
	DefaultHFBaseURL     = "https://huggingface.co"
	DefaultHFOutput      = "hf_churn.csv"
)

// Source kinds accepted in ingest.sources.
const (
	SourceKaggle      = "kaggle"
	SourceHuggingFace = "huggingface"
)

// Config is the top-level object decoded from a config file.
type Config struct {
	// Job labels metrics and identifies runs.
	Job string `yaml:"job" json:"job"`

	Paths   Paths   `yaml:"paths" json:"paths"`
	Dataset Dataset `yaml:"dataset" json:"dataset"`
	Ingest  Ingest  `yaml:"ingest" json:"ingest"`
	Checks  Checks  `yaml:"checks" json:"checks"`
	Storage Storage `yaml:"storage" json:"storage"`
	Metrics Metrics `yaml:"metrics" json:"metrics"`
	Logging Logging `yaml:"logging" json:"logging"`
}

// Paths are the directories the tool reads from and writes to.
type Paths struct {
	LogDir    string `yaml:"log_dir" json:"log_dir"`
	RawDir    string `yaml:"raw_dir" json:"raw_dir"`
	ReportDir string `yaml:"report_dir" json:"report_dir"`
}

// KaggleDir is where the Kaggle source unpacks its files.
func (p Paths) KaggleDir() string { return filepath.Join(p.RawDir, SourceKaggle) }

// HuggingFaceDir is where the Hugging Face source writes its file.
func (p Paths) HuggingFaceDir() string { return filepath.Join(p.RawDir, SourceHuggingFace) }

// Dataset selects the table file validated by the validate stage.
type Dataset struct {
	// Name overrides the dataset name in reports. Empty derives it from Path.
	Name string `yaml:"name" json:"name"`
	// Path is the CSV file to validate.
	Path   string `yaml:"path" json:"path"`
	Parser Parser `yaml:"parser" json:"parser"`
}

// DisplayName returns the dataset name used in reports and logs.
func (d Dataset) DisplayName() string {
	if d.Name != "" {
		return d.Name
	}
	return pcsv.TableName(d.Path)
}

// Parser mirrors the CSV loader options.
type Parser struct {
	Comma     string `yaml:"comma" json:"comma"`
	TrimSpace bool   `yaml:"trim_space" json:"trim_space"`
	// NullValues replaces the default null sentinels when set.
	NullValues       []string          `yaml:"null_values" json:"null_values"`
	HeaderMap        map[string]string `yaml:"header_map" json:"header_map"`
	NormalizeHeaders bool              `yaml:"normalize_headers" json:"normalize_headers"`
}

// LoaderOptions converts the parser section into loader options.
func (p Parser) LoaderOptions() pcsv.Options {
	var comma rune
	if r := []rune(p.Comma); len(r) > 0 {
		comma = r[0]
	}
	return pcsv.Options{
		Comma:            comma,
		TrimSpace:        p.TrimSpace,
		NullValues:       p.NullValues,
		HeaderMap:        p.HeaderMap,
		NormalizeHeaders: p.NormalizeHeaders,
	}
}

// Ingest configures the download stage.
type Ingest struct {
	// Sources lists the enabled sources in run order.
	Sources     []string    `yaml:"sources" json:"sources"`
	Kaggle      Kaggle      `yaml:"kaggle" json:"kaggle"`
	HuggingFace HuggingFace `yaml:"huggingface" json:"huggingface"`
}

// Kaggle configures the Kaggle CLI source.
type Kaggle struct {
	Dataset string `yaml:"dataset" json:"dataset"`
	// Binary is the CLI executable, looked up in PATH when not absolute.
	Binary string `yaml:"binary" json:"binary"`
	// File is the CSV picked from the unpacked archive. Empty picks the
	// first CSV file.
	File    string        `yaml:"file" json:"file"`
	Timeout time.Duration `yaml:"timeout" json:"timeout"`
}

// HuggingFace configures the Hugging Face Hub source.
type HuggingFace struct {
	Dataset string `yaml:"dataset" json:"dataset"`
	BaseURL string `yaml:"base_url" json:"base_url"`
	// File is the repository file to download. Empty picks the first CSV
	// with "train" in its path.
	File   string `yaml:"file" json:"file"`
	Output string `yaml:"output" json:"output"`
	// Token is read from HF_TOKEN only; it is never written to files.
	Token      string        `yaml:"-" json:"-"`
	Timeout    time.Duration `yaml:"timeout" json:"timeout"`
	MaxRetries int           `yaml:"max_retries" json:"max_retries"`
}

// Checks tunes the quality checks.
type Checks struct {
	Parallel   bool    `yaml:"parallel" json:"parallel"`
	ZThreshold float64 `yaml:"z_threshold" json:"z_threshold"`
	// NullEqualsNull controls whether null cells match when detecting
	// duplicate rows. Unset means true.
	NullEqualsNull *bool `yaml:"null_equals_null" json:"null_equals_null"`
}

// QualityOptions converts the checks section into check options.
func (c Checks) QualityOptions() quality.Options {
	opt := quality.DefaultOptions()
	if c.ZThreshold > 0 {
		opt.ZThreshold = c.ZThreshold
	}
	if c.NullEqualsNull != nil {
		opt.NullEqualsNull = *c.NullEqualsNull
	}
	return opt
}

// Storage selects an optional database receiving report rows in addition to
// the CSV file. An empty Kind (or "none") disables it.
type Storage struct {
	Kind            string  `yaml:"kind" json:"kind"`
	DSN             string  `yaml:"dsn" json:"dsn"`
	Table           string  `yaml:"table" json:"table"`
	AutoCreateTable bool    `yaml:"auto_create_table" json:"auto_create_table"`
	BatchSize       int     `yaml:"batch_size" json:"batch_size"`
	Options         Options `yaml:"options" json:"options"`
}

// Enabled reports whether a store is configured.
func (s Storage) Enabled() bool { return s.Kind != "" && s.Kind != "none" }

// Metrics selects the metrics backend: "none", "prometheus" or "datadog".
type Metrics struct {
	Backend        string `yaml:"backend" json:"backend"`
	PushgatewayURL string `yaml:"pushgateway_url" json:"pushgateway_url"`
	DatadogAddr    string `yaml:"datadog_addr" json:"datadog_addr"`
}

// Logging configures the per-run logger.
type Logging struct {
	Level string `yaml:"level" json:"level"`
	Quiet bool   `yaml:"quiet" json:"quiet"`
}

// Default returns the configuration used when no file is given.
func Default() *Config {
	paths := Paths{
		LogDir:    filepath.Join("metadata", "log"),
		RawDir:    "3.Rawdata",
		ReportDir: filepath.Join("metadata", "reports"),
	}
	return &Config{
		Job:   "telco-churn",
		Paths: paths,
		Dataset: Dataset{
			Path: filepath.Join(paths.KaggleDir(), DefaultKaggleFile),
		},
		Ingest: Ingest{
			Sources: []string{SourceKaggle, SourceHuggingFace},
			Kaggle: Kaggle{
				Dataset: DefaultKaggleDataset,
				Binary:  "kaggle",
				File:    DefaultKaggleFile,
				Timeout: 10 * time.Minute,
			},
			HuggingFace: HuggingFace{
				Dataset:    DefaultHFDataset,
				BaseURL:    DefaultHFBaseURL,
				Output:     DefaultHFOutput,
				Timeout:    5 * time.Minute,
				MaxRetries: 3,
			},
		},
		Checks: Checks{
			Parallel:   true,
			ZThreshold: quality.DefaultZThreshold,
		},
		Storage: Storage{
			BatchSize: 500,
			Options:   Options{},
		},
		Metrics: Metrics{
			Backend:     "none",
			DatadogAddr: "127.0.0.1:8125",
		},
		Logging: Logging{Level: "info"},
	}
}

// Load reads the file at path over the defaults. An empty path returns the
// defaults.
func Load(path string) (*Config, error) {
	cfg := Default()
	if path == "" {
		return cfg, nil
	}
	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, fmt.Errorf("config file not found: %w", err)
		}
		return nil, fmt.Errorf("read config file: %w", err)
	}
	if err := Decode(data, cfg); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Decode unmarshals data over cfg.
func Decode(data []byte, cfg *Config) error {
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return fmt.Errorf("parse config: %w", err)
	}
	if cfg.Storage.Options == nil {
		cfg.Storage.Options = Options{}
	}
	return nil
}

// Environment variables read by ApplyEnv.
const (
	EnvMetricsBackend = "DMML_METRICS_BACKEND"
	EnvPushgatewayURL = "DMML_PUSHGATEWAY_URL"
	EnvDatadogAddr    = "DMML_DATADOG_ADDR"
	EnvStorageDSN     = "DMML_STORAGE_DSN"
	EnvHFToken        = "HF_TOKEN"
)

// ApplyEnv overrides fields from the environment. getenv is usually
// os.Getenv; empty values leave fields untouched.
func (c *Config) ApplyEnv(getenv func(string) string) {
	set := func(dst *string, key string) {
		if v := getenv(key); v != "" {
			*dst = v
		}
	}
	set(&c.Metrics.Backend, EnvMetricsBackend)
	set(&c.Metrics.PushgatewayURL, EnvPushgatewayURL)
	set(&c.Metrics.DatadogAddr, EnvDatadogAddr)
	set(&c.Storage.DSN, EnvStorageDSN)
	set(&c.Ingest.HuggingFace.Token, EnvHFToken)
}
