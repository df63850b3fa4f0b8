package config

import (
	"encoding/json"
	"fmt"
	"math"
	"os"
	"strconv"
	"strings"

	"github.com/rustyeddy/tradebook/market"
	"github.com/rustyeddy/tradebook/risk"
	"gopkg.in/yaml.v3"
)

// Config is the complete tradebook configuration.
type Config struct {
	Account     AccountConfig     `json:"account" yaml:"account"`
	Strategy    StrategyConfig    `json:"strategy" yaml:"strategy"`
	Calendar    CalendarConfig    `json:"calendar" yaml:"calendar"`
	Reconstruct ReconstructConfig `json:"reconstruct" yaml:"reconstruct"`
	Input       InputConfig       `json:"input" yaml:"input"`
	Journal     JournalConfig     `json:"journal" yaml:"journal"`
	Watch       WatchConfig       `json:"watch" yaml:"watch"`
}

// AccountConfig contains account parameters
type AccountConfig struct {
	Currency       string  `json:"currency" yaml:"currency"`
	StartingEquity float64 `json:"starting_equity" yaml:"starting_equity"`
}

// StrategyConfig holds the restart throttle parameters
type StrategyConfig struct {
	HighModeRiskPct float64 `json:"high_mode_risk_pct" yaml:"high_mode_risk_pct"`
	LowModeRiskPct  float64 `json:"low_mode_risk_pct" yaml:"low_mode_risk_pct"`
	WinsToRecover   int     `json:"wins_to_recover" yaml:"wins_to_recover"`
	LossesToDrop    int     `json:"losses_to_drop" yaml:"losses_to_drop"`

	// DailyLock sizes all trades of a day with the day-start directive.
	DailyLock bool `json:"daily_lock" yaml:"daily_lock"`
}

// Risk returns the throttle parameters as a value for the risk package.
func (s StrategyConfig) Risk() risk.StrategyConfig {
	return risk.StrategyConfig{
		HighModeRiskPct: s.HighModeRiskPct,
		LowModeRiskPct:  s.LowModeRiskPct,
		WinsToRecover:   s.WinsToRecover,
		LossesToDrop:    s.LossesToDrop,
	}
}

type CalendarConfig struct {
	Timezone string `json:"timezone" yaml:"timezone"`
}

// Market returns the trading calendar.
func (c CalendarConfig) Market() (market.Calendar, error) {
	return market.NewCalendar(c.Timezone)
}

type ReconstructConfig struct {
	AllowShort bool `json:"allow_short" yaml:"allow_short"`
}

// InputConfig names the normalized fill and pending-order files
type InputConfig struct {
	FillsFile  string `json:"fills_file" yaml:"fills_file"`
	OrdersFile string `json:"orders_file,omitempty" yaml:"orders_file,omitempty"`
}

// JournalConfig contains journaling parameters
type JournalConfig struct {
	Type       string `json:"type" yaml:"type"` // "csv" or "sqlite"
	TradesFile string `json:"trades_file,omitempty" yaml:"trades_file,omitempty"`
	DailyFile  string `json:"daily_file,omitempty" yaml:"daily_file,omitempty"`
	DBPath     string `json:"db_path,omitempty" yaml:"db_path,omitempty"`
}

type WatchConfig struct {
	Schedule string `json:"schedule" yaml:"schedule"` // standard 5-field cron
}

// LoadFromFile loads configuration from a file (YAML or JSON), applies
// environment overrides and validates the result.
func LoadFromFile(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read config file: %w", err)
	}

	cfg := Default()

	// Try YAML first, fall back to JSON
	err = yaml.Unmarshal(data, cfg)
	if err != nil {
		err = json.Unmarshal(data, cfg)
		if err != nil {
			return nil, fmt.Errorf("parse config (tried YAML and JSON): %w", err)
		}
	}

	if err := cfg.ApplyEnv(); err != nil {
		return nil, err
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}

	return cfg, nil
}

// ApplyEnv overrides file values with TRADEBOOK_* environment variables.
func (c *Config) ApplyEnv() error {
	if v := os.Getenv("TRADEBOOK_STARTING_EQUITY"); v != "" {
		eq, err := strconv.ParseFloat(v, 64)
		if err != nil {
			return fmt.Errorf("TRADEBOOK_STARTING_EQUITY: %w", err)
		}
		c.Account.StartingEquity = eq
	}
	if v := os.Getenv("TRADEBOOK_FILLS"); v != "" {
		c.Input.FillsFile = v
	}
	if v := os.Getenv("TRADEBOOK_ORDERS"); v != "" {
		c.Input.OrdersFile = v
	}
	if v := os.Getenv("TRADEBOOK_DB"); v != "" {
		c.Journal.Type = "sqlite"
		c.Journal.DBPath = v
	}
	if v := os.Getenv("TRADEBOOK_TIMEZONE"); v != "" {
		c.Calendar.Timezone = v
	}
	if v := os.Getenv("TRADEBOOK_SCHEDULE"); v != "" {
		c.Watch.Schedule = v
	}
	return nil
}

// SaveToFile saves configuration to a file (JSON or YAML based on extension)
func (c *Config) SaveToFile(path string) error {
	var data []byte
	var err error

	if strings.HasSuffix(path, ".yaml") || strings.HasSuffix(path, ".yml") {
		data, err = yaml.Marshal(c)
	} else {
		data, err = json.MarshalIndent(c, "", "  ")
	}

	if err != nil {
		return fmt.Errorf("marshal config: %w", err)
	}

	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("write config file: %w", err)
	}

	return nil
}

// Validate checks if the configuration is valid
func (c *Config) Validate() error {
	if c.Account.Currency == "" {
		return fmt.Errorf("account.currency is required")
	}
	if eq := c.Account.StartingEquity; !(eq > 0) || math.IsInf(eq, 0) {
		return fmt.Errorf("account.starting_equity must be positive")
	}
	s := c.Strategy
	if !(s.HighModeRiskPct > 0 && s.HighModeRiskPct <= 1) {
		return fmt.Errorf("strategy.high_mode_risk_pct must be between 0 and 1")
	}
	if !(s.LowModeRiskPct > 0 && s.LowModeRiskPct <= 1) {
		return fmt.Errorf("strategy.low_mode_risk_pct must be between 0 and 1")
	}
	if s.LowModeRiskPct > s.HighModeRiskPct {
		return fmt.Errorf("strategy.low_mode_risk_pct must not exceed high_mode_risk_pct")
	}
	if s.WinsToRecover < 1 {
		return fmt.Errorf("strategy.wins_to_recover must be at least 1")
	}
	if s.LossesToDrop < 1 {
		return fmt.Errorf("strategy.losses_to_drop must be at least 1")
	}
	if _, err := c.Calendar.Market(); err != nil {
		return fmt.Errorf("calendar.timezone: %w", err)
	}
	if c.Journal.Type != "csv" && c.Journal.Type != "sqlite" {
		return fmt.Errorf("journal.type must be 'csv' or 'sqlite'")
	}
	if c.Journal.Type == "csv" && (c.Journal.TradesFile == "" || c.Journal.DailyFile == "") {
		return fmt.Errorf("journal trades_file and daily_file required for CSV type")
	}
	if c.Journal.Type == "sqlite" && c.Journal.DBPath == "" {
		return fmt.Errorf("journal db_path required for SQLite type")
	}
	return nil
}

// Default returns a configuration with sensible defaults
func Default() *Config {
	r := risk.DefaultStrategy()
	return &Config{
		Account: AccountConfig{
			Currency:       "USD",
			StartingEquity: 10000,
		},
		Strategy: StrategyConfig{
			HighModeRiskPct: r.HighModeRiskPct,
			LowModeRiskPct:  r.LowModeRiskPct,
			WinsToRecover:   r.WinsToRecover,
			LossesToDrop:    r.LossesToDrop,
		},
		Calendar: CalendarConfig{
			Timezone: market.DefaultTimezone,
		},
		Input: InputConfig{
			FillsFile: "./fills.csv",
		},
		Journal: JournalConfig{
			Type:   "sqlite",
			DBPath: "./tradebook.db",
		},
		Watch: WatchConfig{
			Schedule: "*/5 9-16 * * 1-5",
		},
	}
}
