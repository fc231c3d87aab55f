// Package config_test tests the config package.
package config_test

import (
	"os"
	"path/filepath"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gopkg.in/yaml.v3"

	"github.com/your-org/rule-search/internal/config"
)

// Helper function to create a dummy config file with specific content
func createDummyConfigFile(t *testing.T, path, content string) {
	t.Helper()
	err := os.WriteFile(path, []byte(content), 0644)
	require.NoError(t, err)
}

func TestLoadConfig_Defaults(t *testing.T) {
	configPath := filepath.Join(t.TempDir(), "config.yaml")
	createDummyConfigFile(t, configPath, `ticker: AAPL`)

	cfg, err := config.LoadConfig(configPath)
	require.NoError(t, err)

	assert.Equal(t, "AAPL", cfg.Ticker)
	assert.Equal(t, config.SourceCSV, cfg.Data.Source)
	assert.Equal(t, 300, cfg.Search.PopulationSize)
	assert.Equal(t, 0.05, cfg.Search.BitFlipProb)
	assert.Equal(t, int64(1337), cfg.Search.Seed)
	assert.Nil(t, cfg.Search.TargetFitness)
	assert.Equal(t, 0.0025, cfg.Costs.TransactionRate)
	assert.Equal(t, 100, cfg.CrossValidation.Simulations)
	assert.Equal(t, "price_to_book", cfg.Picker.Metric)
	assert.Empty(t, cfg.Rules)
}

func TestLoadConfig_File(t *testing.T) {
	configPath := filepath.Join(t.TempDir(), "config.yaml")
	createDummyConfigFile(t, configPath, `
log_level: debug
ticker: MSFT
data:
  source: postgres
  from: 2015-01-01
  to: 2019-12-31
direction: short
costs:
  transaction_rate: 0.001
  holding_fee_rate: 0.02
rules:
  - name: sma
  - name: chandelier
    always_active: "false"
  - name: rsi
    always_active: 1
search:
  population_size: 50
  generations: 4
  target_fitness: 12.5
cross_validation:
  simulations: 10
  time_steps: 30
output:
  hall_of_fame_csv: out/hof.csv
metrics:
  addr: ":9090"
`)

	cfg, err := config.LoadConfig(configPath)
	require.NoError(t, err)

	assert.Equal(t, "debug", cfg.LogLevel)
	assert.Equal(t, config.SourcePostgres, cfg.Data.Source)
	assert.Equal(t, "short", cfg.Direction)
	assert.Equal(t, 0.02, cfg.Costs.HoldingFeeRate)
	require.Len(t, cfg.Rules, 3)
	assert.Nil(t, cfg.Rules[0].AlwaysActive)
	require.NotNil(t, cfg.Rules[1].AlwaysActive)
	assert.False(t, bool(*cfg.Rules[1].AlwaysActive))
	assert.True(t, bool(*cfg.Rules[2].AlwaysActive))
	assert.Equal(t, 50, cfg.Search.PopulationSize)
	assert.Equal(t, 0.5, cfg.Search.CrossoverProb, "unset keys keep their defaults")
	require.NotNil(t, cfg.Search.TargetFitness)
	assert.Equal(t, 12.5, *cfg.Search.TargetFitness)
	assert.Equal(t, "out/hof.csv", cfg.Output.HallOfFameCSV)
	assert.Equal(t, ":9090", cfg.Metrics.Addr)

	from, to, err := cfg.Data.Range()
	require.NoError(t, err)
	assert.Equal(t, 2015, from.Year())
	assert.Equal(t, 2019, to.Year())
}

// TestLoadConfig_EnvVarOverride tests if environment variables correctly override yaml values.
func TestLoadConfig_EnvVarOverride(t *testing.T) {
	tmpDir := t.TempDir()
	configPath := filepath.Join(tmpDir, "config.yaml")

	createDummyConfigFile(t, configPath, `
ticker: AAPL
log_level: "info"
database:
  host: "localhost"
  user: "user_from_file"`)

	t.Setenv("LOG_LEVEL", "debug")
	t.Setenv("DB_HOST", "db.from.env")
	t.Setenv("DB_USER", "user_from_env")
	t.Setenv("PRICE_CSV_DIR", "/srv/prices")
	t.Setenv("DB_PASSWORD", "")

	cfg, err := config.LoadConfig(configPath)
	require.NoError(t, err)

	assert.Equal(t, "debug", cfg.LogLevel, "LOG_LEVEL should be overridden by env var")
	assert.Equal(t, "db.from.env", cfg.Database.Host, "DB_HOST should be overridden by env var")
	assert.Equal(t, "user_from_env", cfg.Database.User, "DB_USER should be overridden by env var")
	assert.Equal(t, "/srv/prices", cfg.Data.CSVDir)
	assert.Equal(t, "", cfg.Database.Password, "DB_PASSWORD should be empty as it was not in file or env")
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*config.Config)
	}{
		{"missing ticker", func(c *config.Config) { c.Ticker = "" }},
		{"unknown source", func(c *config.Config) { c.Data.Source = "s3" }},
		{"bad date", func(c *config.Config) { c.Data.From = "01/02/2015" }},
		{"reversed range", func(c *config.Config) { c.Data.From, c.Data.To = "2020-01-01", "2019-01-01" }},
		{"direction", func(c *config.Config) { c.Direction = "sideways" }},
		{"negative costs", func(c *config.Config) { c.Costs.TransactionRate = -1 }},
		{"unnamed rule", func(c *config.Config) { c.Rules = []config.RuleConfig{{}} }},
		{"no simulations", func(c *config.Config) { c.CrossValidation.Simulations = 0 }},
		{"no picker metric", func(c *config.Config) { c.Picker.Metric = "" }},
		{"negative picker top", func(c *config.Config) { c.Picker.Top = -1 }},
		{"short synthetic history", func(c *config.Config) {
			c.Data.Source = config.SourceMemory
			c.Data.Synthetic.Days = 1
		}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := config.Default()
			cfg.Ticker = "AAPL"
			require.NoError(t, cfg.Validate())
			tt.mutate(cfg)
			assert.ErrorIs(t, cfg.Validate(), config.ErrInvalidConfig)
		})
	}
}

func TestDatabaseURL(t *testing.T) {
	db := config.DatabaseConfig{Host: "db", Port: "5432", User: "bot", Password: "p@ss", Name: "prices", SSLMode: "disable"}
	assert.Equal(t, "postgres://bot:p%40ss@db:5432/prices?sslmode=disable", db.URL("postgres"))
	assert.Equal(t, "pgx5://bot:p%40ss@db:5432/prices?sslmode=disable", db.URL("pgx5"))
}

// TestConfigReloading checks that readers see a reloaded configuration.
func TestConfigReloading(t *testing.T) {
	configPath := filepath.Join(t.TempDir(), "config.yaml")
	createDummyConfigFile(t, configPath, "ticker: AAPL\n")
	_, err := config.ReloadConfig(configPath)
	require.NoError(t, err)
	require.Equal(t, "AAPL", config.GetConfig().Ticker)

	var wg sync.WaitGroup
	wg.Add(1)
	go func() {
		defer wg.Done()
		createDummyConfigFile(t, configPath, "ticker: MSFT\n")
		_, err := config.ReloadConfig(configPath)
		assert.NoError(t, err)
	}()
	for i := 0; i < 100; i++ {
		_ = config.GetConfig().Ticker
	}
	wg.Wait()

	assert.Equal(t, "MSFT", config.GetConfig().Ticker)
}

func TestLoadConfig_Overrides(t *testing.T) {
	configPath := filepath.Join(t.TempDir(), "config.yaml")
	createDummyConfigFile(t, configPath, "direction: long\n")

	_, err := config.LoadConfig(configPath)
	assert.ErrorIs(t, err, config.ErrInvalidConfig)

	cfg, err := config.LoadConfig(configPath, config.WithTicker("SPY"))
	require.NoError(t, err)
	assert.Equal(t, "SPY", cfg.Ticker)

	createDummyConfigFile(t, configPath, "ticker: AAPL\n")
	cfg, err = config.LoadConfig(configPath, config.WithTicker(""))
	require.NoError(t, err)
	assert.Equal(t, "AAPL", cfg.Ticker, "an empty override keeps the file value")
}

func TestReloadConfig_KeepsCurrentOnError(t *testing.T) {
	configPath := filepath.Join(t.TempDir(), "config.yaml")
	createDummyConfigFile(t, configPath, "ticker: AAPL\nlog_level: info\n")
	_, err := config.ReloadConfig(configPath)
	require.NoError(t, err)

	createDummyConfigFile(t, configPath, "ticker: AAPL\ndirection: sideways\n")
	_, err = config.ReloadConfig(configPath)
	assert.ErrorIs(t, err, config.ErrInvalidConfig)
	assert.Equal(t, "info", config.GetConfig().LogLevel)

	createDummyConfigFile(t, configPath, "log_level: debug\n")
	cfg, err := config.ReloadConfig(configPath, config.WithTicker("QQQ"))
	require.NoError(t, err)
	assert.Same(t, cfg, config.GetConfig())
	assert.Equal(t, "QQQ", config.GetConfig().Ticker)
}

func TestFlexBool(t *testing.T) {
	tests := []struct {
		in      string
		want    bool
		wantErr bool
	}{
		{"true", true, false},
		{`"false"`, false, false},
		{`"1"`, true, false},
		{"0", false, false},
		{"2.5", true, false},
		{"yes", true, false},
		{`"Off"`, false, false},
		{`"maybe"`, false, true},
		{"[1]", false, true},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			var v struct {
				B config.FlexBool `yaml:"b"`
			}
			err := yaml.Unmarshal([]byte("b: "+tt.in), &v)
			if tt.wantErr {
				assert.ErrorContains(t, err, "invalid rule switch")
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, bool(v.B))
		})
	}
}
