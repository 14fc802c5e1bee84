package application

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const sampleConfig = `
schedule:
  every: 30m
  lookback_days: 3
  shops: [11, 22]
alerts:
  webhook_url: http://hooks.local/recon
  defaults:
    needs_review: 2
  shops:
    22:
      above_expected: 5
`

func TestParseConfig(t *testing.T) {
	cfg, err := ParseConfig([]byte(sampleConfig))
	require.NoError(t, err)

	assert.Equal(t, 30*time.Minute, cfg.Schedule.Every)
	assert.Equal(t, 3, cfg.Schedule.LookbackDays)
	assert.Equal(t, []int64{11, 22}, cfg.Schedule.Shops)
	assert.Equal(t, "http://hooks.local/recon", cfg.Alerts.WebhookURL)

	assert.Equal(t, Thresholds{NeedsReview: 2, AboveExpected: 1}, cfg.ThresholdsForShop(11))
	assert.Equal(t, Thresholds{NeedsReview: 2, AboveExpected: 5}, cfg.ThresholdsForShop(22))
}

func TestParseConfig_Invalid(t *testing.T) {
	_, err := ParseConfig([]byte("schedule:\n  lookback_days: 0\n"))
	assert.Error(t, err)

	_, err = ParseConfig([]byte("schedule:\n  shops: [-1]\n"))
	assert.Error(t, err)

	_, err = ParseConfig([]byte("schedule: ["))
	assert.Error(t, err)
}

func TestLoadConfig_FileAndEnv(t *testing.T) {
	path := filepath.Join(t.TempDir(), "recon.yaml")
	require.NoError(t, os.WriteFile(path, []byte("schedule:\n  lookback_days: 5\n"), 0o600))
	t.Setenv("RECON_CONFIG", path)
	t.Setenv("RECON_SYNC_EVERY", "15m")
	t.Setenv("RECON_SHOPS", "7, 8")
	t.Setenv("RECON_WEBHOOK_URL", "http://hooks.local/env")
	t.Setenv("RECON_LOOKBACK_DAYS", "")
	t.Setenv("RECON_PUBLIC_BASE_URL", "")

	cfg, err := LoadConfig()
	require.NoError(t, err)
	assert.Equal(t, 15*time.Minute, cfg.Schedule.Every)
	assert.Equal(t, 5, cfg.Schedule.LookbackDays)
	assert.Equal(t, []int64{7, 8}, cfg.Schedule.Shops)
	assert.Equal(t, "http://hooks.local/env", cfg.Alerts.WebhookURL)
	assert.Equal(t, "http://localhost:8080", cfg.Alerts.PublicBaseURL)
}

func TestLoadConfig_BadShopList(t *testing.T) {
	t.Setenv("RECON_CONFIG", "")
	t.Setenv("RECON_SYNC_EVERY", "")
	t.Setenv("RECON_LOOKBACK_DAYS", "")
	t.Setenv("RECON_SHOPS", "7,x")

	_, err := LoadConfig()
	assert.Error(t, err)
}
