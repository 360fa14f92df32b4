package config_test

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/tigerroll/stockpost/internal/config"
)

func TestLoadConfig_DefaultsSurviveEmptyYAML(t *testing.T) {
	cfg, err := config.LoadConfig("", config.EmbeddedConfig("stockpost: {}\n"))
	assert.NoError(t, err)

	assert.Equal(t, 0.01, cfg.Stockpost.Pipeline.AcceptableFailureRate)
	assert.True(t, cfg.Stockpost.Pipeline.DropFailedRuns)
	assert.Equal(t, 15.0, cfg.Stockpost.Weighting.MaxScaleFactor)
	assert.Equal(t, "tbtu", cfg.Stockpost.Weighting.EnergyUnits)
	assert.Equal(t, "SNAPPY", cfg.Stockpost.IO.CompressionType)
	assert.Equal(t, "info", cfg.Stockpost.System.Logging.Level)
}

func TestLoadConfig_YAMLOverridesDefaults(t *testing.T) {
	yamlContent := `
stockpost:
  pipeline:
    acceptableFailureRate: 0.05
    skipUpgradeIds: [3, 7]
  io:
    outputDir: /tmp/out
`
	cfg, err := config.LoadConfig("", config.EmbeddedConfig(yamlContent))
	assert.NoError(t, err)

	assert.Equal(t, 0.05, cfg.Stockpost.Pipeline.AcceptableFailureRate)
	assert.Equal(t, []int64{3, 7}, cfg.Stockpost.Pipeline.SkipUpgradeIDs)
	assert.Equal(t, "/tmp/out", cfg.Stockpost.IO.OutputDir)
	// Untouched sections keep their defaults.
	assert.Equal(t, "tbtu", cfg.Stockpost.Weighting.EnergyUnits)
}

func TestLoadConfig_EnvOverridesYAML(t *testing.T) {
	t.Setenv("STOCKPOST_PIPELINE_ACCEPTABLEFAILURERATE", "0.2")
	t.Setenv("STOCKPOST_PIPELINE_SKIPUPGRADEIDS", "1, 2, 3")
	t.Setenv("STOCKPOST_WEIGHTING_REMOVENONSIMULATEDTYPES", "false")

	cfg, err := config.LoadConfig("", config.EmbeddedConfig("stockpost:\n  pipeline:\n    acceptableFailureRate: 0.05\n"))
	assert.NoError(t, err)

	assert.Equal(t, 0.2, cfg.Stockpost.Pipeline.AcceptableFailureRate)
	assert.Equal(t, []int64{1, 2, 3}, cfg.Stockpost.Pipeline.SkipUpgradeIDs)
	assert.False(t, cfg.Stockpost.Weighting.RemoveNonSimulatedTypes)
}

func TestLoadConfig_PlaceholderExpansion(t *testing.T) {
	t.Setenv("TEST_RESULTS_DIR", "/data/run42")

	cfg, err := config.LoadConfig("", config.EmbeddedConfig("stockpost:\n  io:\n    resultsDir: ${TEST_RESULTS_DIR}\n"))
	assert.NoError(t, err)
	assert.Equal(t, "/data/run42", cfg.Stockpost.IO.ResultsDir)
}

func TestLoadConfig_MalformedYAMLIsError(t *testing.T) {
	_, err := config.LoadConfig("", config.EmbeddedConfig("stockpost: [not: a map\n"))
	assert.Error(t, err)
}

func TestDatasourceConfig(t *testing.T) {
	yamlContent := `
stockpost:
  datasource:
    type: postgres
    host: db.internal
    port: 5432
    user: stockpost
    database: audit
`
	cfg, err := config.LoadConfig("", config.EmbeddedConfig(yamlContent))
	assert.NoError(t, err)

	dbCfg, err := cfg.DatasourceConfig()
	assert.NoError(t, err)
	assert.Equal(t, "postgres", dbCfg.Type)
	assert.Equal(t, "db.internal", dbCfg.Host)
	assert.Equal(t, 5432, dbCfg.Port)
	assert.Equal(t, "audit", dbCfg.Database)
}

func TestDatasourceConfig_MissingBlockIsError(t *testing.T) {
	cfg, err := config.LoadConfig("", config.EmbeddedConfig("stockpost: {}\n"))
	assert.NoError(t, err)

	_, err = cfg.DatasourceConfig()
	assert.Error(t, err)
}
