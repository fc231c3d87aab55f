// Package config handles application configuration.
package config

import (
	"errors"
	"fmt"
	"net/url"
	"os"
	"strings"
	"sync"
	"time"

	"gopkg.in/yaml.v3"
)

// Data sources understood by the optimizer.
const (
	SourceCSV      = "csv"
	SourcePostgres = "postgres"
	SourceMemory   = "memory"
)

// ErrInvalidConfig wraps every validation failure.
var ErrInvalidConfig = errors.New("invalid configuration")

// Config defines the structure for all application configuration.
type Config struct {
	LogLevel        string                `yaml:"log_level"`
	Ticker          string                `yaml:"ticker"`
	Data            DataConfig            `yaml:"data"`
	Database        DatabaseConfig        `yaml:"database"`
	Costs           CostsConfig           `yaml:"costs"`
	Direction       string                `yaml:"direction"`
	Rules           []RuleConfig          `yaml:"rules"`
	Search          SearchConfig          `yaml:"search"`
	CrossValidation CrossValidationConfig `yaml:"cross_validation"`
	Picker          PickerConfig          `yaml:"picker"`
	Output          OutputConfig          `yaml:"output"`
	Metrics         MetricsConfig         `yaml:"metrics"`
}

// DataConfig selects where closing prices come from.
type DataConfig struct {
	Source string `yaml:"source"`
	CSVDir string `yaml:"csv_dir"`
	// From and To are inclusive dates in YYYY-MM-DD form; empty is unbounded.
	From string `yaml:"from"`
	To   string `yaml:"to"`
	// Synthetic configures the generated history used by the memory source.
	Synthetic SyntheticConfig `yaml:"synthetic"`
}

// SyntheticConfig describes a generated daily price history.
type SyntheticConfig struct {
	Days  int     `yaml:"days"`
	Price float64 `yaml:"price"`
	Drift float64 `yaml:"drift"`
	Sigma float64 `yaml:"sigma"`
	Seed  int64   `yaml:"seed"`
}

// DatabaseConfig holds the PostgreSQL connection settings.
type DatabaseConfig struct {
	Host     string `yaml:"host"`
	Port     string `yaml:"port"`
	User     string `yaml:"user"`
	Password string `yaml:"password"`
	Name     string `yaml:"name"`
	SSLMode  string `yaml:"sslmode"`
}

// CostsConfig holds the proportional trading costs.
type CostsConfig struct {
	TransactionRate float64 `yaml:"transaction_rate"`
	HoldingFeeRate  float64 `yaml:"holding_fee_rate"`
}

// RuleConfig enables one trading rule. AlwaysActive overrides the rule's
// registered policy when set.
type RuleConfig struct {
	Name         string    `yaml:"name"`
	AlwaysActive *FlexBool `yaml:"always_active"`
}

// SearchConfig holds the genetic search parameters.
type SearchConfig struct {
	PopulationSize int      `yaml:"population_size"`
	Generations    int      `yaml:"generations"`
	CrossoverProb  float64  `yaml:"crossover_prob"`
	MutationProb   float64  `yaml:"mutation_prob"`
	BitFlipProb    float64  `yaml:"bit_flip_prob"`
	TournamentSize int      `yaml:"tournament_size"`
	HallOfFameSize int      `yaml:"hall_of_fame_size"`
	Seed           int64    `yaml:"seed"`
	Workers        int      `yaml:"workers"`
	TargetFitness  *float64 `yaml:"target_fitness"`
}

// CrossValidationConfig sizes the Monte Carlo validation.
type CrossValidationConfig struct {
	Simulations int   `yaml:"simulations"`
	TimeSteps   int   `yaml:"time_steps"`
	Seed        int64 `yaml:"seed"`
}

// PickerConfig configures ticker ranking by company metadata.
type PickerConfig struct {
	Metric string `yaml:"metric"`
	// Tickers to rank; empty ranks every ticker the data source lists.
	Tickers []string `yaml:"tickers"`
	// Top limits the ranking to the best Top tickers; 0 keeps all.
	Top     int `yaml:"top"`
	Workers int `yaml:"workers"`
}

// OutputConfig lists optional CSV outputs. Empty paths are skipped.
type OutputConfig struct {
	HallOfFameCSV string `yaml:"hall_of_fame_csv"`
	StatsCSV      string `yaml:"stats_csv"`
	ScoresCSV     string `yaml:"scores_csv"`
	PicksCSV      string `yaml:"picks_csv"`
}

// MetricsConfig enables the Prometheus endpoint when Addr is set.
type MetricsConfig struct {
	Addr string `yaml:"addr"`
}

// Default returns a configuration with every default applied.
func Default() *Config {
	return &Config{
		LogLevel: "info",
		Data: DataConfig{
			Source: SourceCSV,
			CSVDir: "data",
			Synthetic: SyntheticConfig{
				Days:  1000,
				Price: 100,
				Drift: 0.0003,
				Sigma: 0.012,
				Seed:  7,
			},
		},
		Database: DatabaseConfig{
			Host:    "localhost",
			Port:    "5432",
			User:    "postgres",
			Name:    "prices",
			SSLMode: "disable",
		},
		Costs:     CostsConfig{TransactionRate: 0.0025},
		Direction: "long",
		Search: SearchConfig{
			PopulationSize: 300,
			Generations:    15,
			CrossoverProb:  0.5,
			MutationProb:   0.2,
			BitFlipProb:    0.05,
			TournamentSize: 3,
			HallOfFameSize: 5,
			Seed:           1337,
		},
		CrossValidation: CrossValidationConfig{
			Simulations: 100,
			TimeSteps:   250,
			Seed:        42,
		},
		Picker: PickerConfig{Metric: "price_to_book"},
	}
}

// Override adjusts a loaded configuration before it is validated, e.g. from
// command line flags.
type Override func(*Config)

// WithTicker sets the ticker unless ticker is empty.
func WithTicker(ticker string) Override {
	return func(c *Config) {
		if ticker != "" {
			c.Ticker = ticker
		}
	}
}

// LoadConfig loads configuration from the specified YAML file path
// and environment variables, then applies overrides in order.
func LoadConfig(configPath string, overrides ...Override) (*Config, error) {
	cfg := Default()

	file, err := os.ReadFile(configPath)
	if err != nil {
		return nil, err
	}
	if err := yaml.Unmarshal(file, cfg); err != nil {
		return nil, fmt.Errorf("parse %s: %w", configPath, err)
	}

	applyEnv(cfg)
	for _, o := range overrides {
		o(cfg)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func applyEnv(cfg *Config) {
	if logLevel := os.Getenv("LOG_LEVEL"); logLevel != "" {
		cfg.LogLevel = logLevel
	}
	if dbHost := os.Getenv("DB_HOST"); dbHost != "" {
		cfg.Database.Host = dbHost
	}
	if dbPort := os.Getenv("DB_PORT"); dbPort != "" {
		cfg.Database.Port = dbPort
	}
	if dbUser := os.Getenv("DB_USER"); dbUser != "" {
		cfg.Database.User = dbUser
	}
	if dbPassword := os.Getenv("DB_PASSWORD"); dbPassword != "" {
		cfg.Database.Password = dbPassword
	}
	if dbName := os.Getenv("DB_NAME"); dbName != "" {
		cfg.Database.Name = dbName
	}
	if dir := os.Getenv("PRICE_CSV_DIR"); dir != "" {
		cfg.Data.CSVDir = dir
	}
}

// Validate checks the values the rest of the program relies on.
func (c *Config) Validate() error {
	var errs []error
	if strings.TrimSpace(c.Ticker) == "" {
		errs = append(errs, errors.New("ticker is required"))
	}
	switch c.Data.Source {
	case SourceCSV, SourcePostgres, SourceMemory:
	default:
		errs = append(errs, fmt.Errorf("unknown data source %q", c.Data.Source))
	}
	if c.Data.Source == SourceMemory && (c.Data.Synthetic.Days < 2 || c.Data.Synthetic.Price <= 0) {
		errs = append(errs, errors.New("synthetic history needs at least 2 days and a positive price"))
	}
	if _, _, err := c.Data.Range(); err != nil {
		errs = append(errs, err)
	}
	switch strings.ToLower(c.Direction) {
	case "", "long", "short":
	default:
		errs = append(errs, fmt.Errorf("unknown direction %q", c.Direction))
	}
	if c.Costs.TransactionRate < 0 || c.Costs.HoldingFeeRate < 0 {
		errs = append(errs, errors.New("cost rates must not be negative"))
	}
	for i, r := range c.Rules {
		if strings.TrimSpace(r.Name) == "" {
			errs = append(errs, fmt.Errorf("rules[%d] has no name", i))
		}
	}
	if c.CrossValidation.Simulations < 1 || c.CrossValidation.TimeSteps < 1 {
		errs = append(errs, errors.New("cross validation needs positive simulations and time steps"))
	}
	if strings.TrimSpace(c.Picker.Metric) == "" || c.Picker.Top < 0 {
		errs = append(errs, errors.New("picker needs a metric and a non-negative top"))
	}
	if len(errs) > 0 {
		return fmt.Errorf("%w: %w", ErrInvalidConfig, errors.Join(errs...))
	}
	return nil
}

// Range parses From and To. A zero time means unbounded.
func (d DataConfig) Range() (from, to time.Time, err error) {
	if d.From != "" {
		if from, err = time.Parse(time.DateOnly, d.From); err != nil {
			return from, to, fmt.Errorf("data.from: %w", err)
		}
	}
	if d.To != "" {
		if to, err = time.Parse(time.DateOnly, d.To); err != nil {
			return from, to, fmt.Errorf("data.to: %w", err)
		}
	}
	if !from.IsZero() && !to.IsZero() && to.Before(from) {
		return from, to, fmt.Errorf("data.to %s is before data.from %s", d.To, d.From)
	}
	return from, to, nil
}

// URL returns the connection URL with the given scheme, e.g. "postgres" for
// pgx or "pgx5" for migrations.
func (d DatabaseConfig) URL(scheme string) string {
	u := url.URL{
		Scheme: scheme,
		User:   url.UserPassword(d.User, d.Password),
		Host:   d.Host + ":" + d.Port,
		Path:   "/" + d.Name,
	}
	if d.SSLMode != "" {
		u.RawQuery = url.Values{"sslmode": {d.SSLMode}}.Encode()
	}
	return u.String()
}

var (
	current *Config
	mu      sync.RWMutex
)

// ReloadConfig loads path and makes it the current configuration. The
// current configuration is left unchanged when loading fails.
func ReloadConfig(path string, overrides ...Override) (*Config, error) {
	cfg, err := LoadConfig(path, overrides...)
	if err != nil {
		return nil, err
	}
	SetConfig(cfg)
	return cfg, nil
}

// SetConfig replaces the current configuration.
func SetConfig(cfg *Config) {
	mu.Lock()
	defer mu.Unlock()
	current = cfg
}

// GetConfig returns the current configuration, or nil before one is set.
func GetConfig() *Config {
	mu.RLock()
	defer mu.RUnlock()
	return current
}
