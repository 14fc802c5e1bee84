package application

import (
	"errors"
	"os"
	"strconv"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

// Thresholds defines per-status row counts that trigger a review alert.
// A zero value disables the check.
type Thresholds struct {
	NeedsReview   int `yaml:"needs_review"`
	AboveExpected int `yaml:"above_expected"`
}

// Config defines scheduled sync and alerting.
type Config struct {
	Schedule ScheduleConfig `yaml:"schedule"`
	Alerts   AlertConfig    `yaml:"alerts"`
}

// ScheduleConfig defines the sync interval and window.
type ScheduleConfig struct {
	Every        time.Duration `yaml:"every"`
	LookbackDays int           `yaml:"lookback_days"`
	Shops        []int64       `yaml:"shops"`
}

// AlertConfig defines the alert sink and thresholds.
type AlertConfig struct {
	WebhookURL    string               `yaml:"webhook_url"`
	PublicBaseURL string               `yaml:"public_base_url"`
	Defaults      Thresholds           `yaml:"defaults"`
	Shops         map[int64]Thresholds `yaml:"shops"`
}

// DefaultConfig returns the built-in schedule and thresholds.
func DefaultConfig() Config {
	return Config{
		Schedule: ScheduleConfig{
			Every:        time.Hour,
			LookbackDays: 7,
		},
		Alerts: AlertConfig{
			Defaults: Thresholds{NeedsReview: 1, AboveExpected: 1},
		},
	}
}

// LoadConfig loads config from yaml (RECON_CONFIG) and env.
func LoadConfig() (Config, error) {
	cfg := DefaultConfig()
	if path := os.Getenv("RECON_CONFIG"); path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return cfg, err
		}
		if err := yaml.Unmarshal(data, &cfg); err != nil {
			return cfg, err
		}
	}
	return applyEnv(cfg)
}

// ParseConfig decodes yaml on top of the defaults.
func ParseConfig(data []byte) (Config, error) {
	cfg := DefaultConfig()
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return cfg, err
	}
	return cfg, cfg.validate()
}

func applyEnv(cfg Config) (Config, error) {
	if value := os.Getenv("RECON_SYNC_EVERY"); value != "" {
		every, err := time.ParseDuration(value)
		if err != nil {
			return cfg, err
		}
		cfg.Schedule.Every = every
	}
	if value := os.Getenv("RECON_LOOKBACK_DAYS"); value != "" {
		days, err := strconv.Atoi(value)
		if err != nil {
			return cfg, err
		}
		cfg.Schedule.LookbackDays = days
	}
	if len(cfg.Schedule.Shops) == 0 {
		shops, err := splitShopIDs(os.Getenv("RECON_SHOPS"))
		if err != nil {
			return cfg, err
		}
		cfg.Schedule.Shops = shops
	}
	if cfg.Alerts.WebhookURL == "" {
		cfg.Alerts.WebhookURL = os.Getenv("RECON_WEBHOOK_URL")
	}
	if cfg.Alerts.PublicBaseURL == "" {
		cfg.Alerts.PublicBaseURL = getenvDefault("RECON_PUBLIC_BASE_URL", "http://localhost:8080")
	}
	return cfg, cfg.validate()
}

func (c Config) validate() error {
	if c.Schedule.Every <= 0 {
		return errors.New("recon config: schedule.every must be positive")
	}
	if c.Schedule.LookbackDays <= 0 {
		return errors.New("recon config: schedule.lookback_days must be positive")
	}
	for _, shopID := range c.Schedule.Shops {
		if shopID <= 0 {
			return errors.New("recon config: schedule.shops must be positive ids")
		}
	}
	return nil
}

// ThresholdsForShop returns thresholds for a shop.
func (c Config) ThresholdsForShop(shopID int64) Thresholds {
	if c.Alerts.Shops != nil {
		if override, ok := c.Alerts.Shops[shopID]; ok {
			return mergeThresholds(c.Alerts.Defaults, override)
		}
	}
	return c.Alerts.Defaults
}

func mergeThresholds(base, override Thresholds) Thresholds {
	if override.NeedsReview != 0 {
		base.NeedsReview = override.NeedsReview
	}
	if override.AboveExpected != 0 {
		base.AboveExpected = override.AboveExpected
	}
	return base
}

func getenvDefault(key, fallback string) string {
	value := os.Getenv(key)
	if value == "" {
		return fallback
	}
	return value
}

func splitShopIDs(value string) ([]int64, error) {
	if strings.TrimSpace(value) == "" {
		return nil, nil
	}
	var result []int64
	for _, part := range strings.Split(value, ",") {
		part = strings.TrimSpace(part)
		if part == "" {
			continue
		}
		id, err := strconv.ParseInt(part, 10, 64)
		if err != nil {
			return nil, err
		}
		result = append(result, id)
	}
	return result, nil
}
