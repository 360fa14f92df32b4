// Package config loads and provides the application configuration from the
// embedded YAML file, a .env file, and environment variable overrides.
package config

import (
	"fmt"

	"github.com/mitchellh/mapstructure"

	"github.com/tigerroll/stockpost/internal/store"
)

// EmbeddedConfig contains the raw bytes of the embedded configuration file.
type EmbeddedConfig []byte

// Config is the root configuration.
type Config struct {
	Stockpost StockpostConfig `yaml:"stockpost"`
}

// StockpostConfig groups all application settings.
type StockpostConfig struct {
	Pipeline   PipelineConfig         `yaml:"pipeline"`
	IO         IOConfig               `yaml:"io"`
	Weighting  WeightingConfig        `yaml:"weighting"`
	System     SystemConfig           `yaml:"system"`
	Metrics    MetricsConfig          `yaml:"metrics"`
	Audit      AuditConfig            `yaml:"audit"`
	Datasource map[string]interface{} `yaml:"datasource"`
}

// PipelineConfig controls failure handling and scenario selection.
type PipelineConfig struct {
	// AcceptableFailureRate is the failure-rate ceiling per upgrade; above it
	// the run aborts.
	AcceptableFailureRate float64 `yaml:"acceptableFailureRate"`
	// DropFailedRuns removes baseline-failed and own-failed buildings from
	// each upgrade. Buildings failed in every scenario are always removed.
	DropFailedRuns bool    `yaml:"dropFailedRuns"`
	SkipUpgradeIDs []int64 `yaml:"skipUpgradeIds"`
}

// IOConfig locates the raw inputs and the export target.
type IOConfig struct {
	ResultsDir      string `yaml:"resultsDir"`
	SamplePath      string `yaml:"samplePath"`
	ReferencePath   string `yaml:"referencePath"`
	OutputDir       string `yaml:"outputDir"`
	CompressionType string `yaml:"compressionType"`
}

// WeightingConfig controls the scaling-weight stage.
type WeightingConfig struct {
	MaxScaleFactor          float64 `yaml:"maxScaleFactor"`
	RemoveNonSimulatedTypes bool    `yaml:"removeNonSimulatedTypes"`
	EnergyUnits             string  `yaml:"energyUnits"`
	GHGUnits                string  `yaml:"ghgUnits"`
}

// SystemConfig holds system-wide settings.
type SystemConfig struct {
	Logging LoggingConfig `yaml:"logging"`
}

// LoggingConfig holds logging settings.
type LoggingConfig struct {
	Level string `yaml:"level"`
}

// MetricsConfig toggles the Prometheus recorder.
type MetricsConfig struct {
	Enabled bool `yaml:"enabled"`
}

// AuditConfig toggles the relational audit store.
type AuditConfig struct {
	Enabled bool `yaml:"enabled"`
}

// NewConfig returns a Config populated with defaults. Values present in the
// YAML file or environment overwrite these.
func NewConfig() *Config {
	return &Config{
		Stockpost: StockpostConfig{
			Pipeline: PipelineConfig{
				AcceptableFailureRate: 0.01,
				DropFailedRuns:        true,
			},
			IO: IOConfig{
				ResultsDir:      "data/results",
				SamplePath:      "data/sample.csv",
				ReferencePath:   "data/reference.csv",
				OutputDir:       "output",
				CompressionType: "SNAPPY",
			},
			Weighting: WeightingConfig{
				MaxScaleFactor:          15,
				RemoveNonSimulatedTypes: true,
				EnergyUnits:             "tbtu",
				GHGUnits:                "co2e_mmt",
			},
			System: SystemConfig{
				Logging: LoggingConfig{Level: "info"},
			},
		},
	}
}

// DatasourceConfig decodes the free-form datasource block into the store's
// typed configuration. Returns an error when the audit store is enabled but
// the block is missing or malformed.
func (c *Config) DatasourceConfig() (store.DatabaseConfig, error) {
	var dbCfg store.DatabaseConfig
	if len(c.Stockpost.Datasource) == 0 {
		return dbCfg, fmt.Errorf("audit store is enabled but no datasource block is configured")
	}
	if err := mapstructure.Decode(c.Stockpost.Datasource, &dbCfg); err != nil {
		return dbCfg, fmt.Errorf("failed to decode datasource config: %w", err)
	}
	return dbCfg, nil
}
