package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const minimalYAML = `
environment: test
market_data:
  api_key: k
  max_workers: 12
currency:
  target: usd
`

func TestParseAppliesDefaults(t *testing.T) {
	c, err := Parse([]byte(minimalYAML))
	require.NoError(t, err)

	assert.Equal(t, MaxFetchWorkers, c.MarketData.MaxWorkers)
	assert.Equal(t, "USD", c.Currency.Target)
	assert.Equal(t, 15*time.Second, c.MarketData.FetchTimeout)
	assert.Equal(t, "1y", c.MarketData.DefaultPeriod)
	assert.Equal(t, 8080, c.Server.Port)
	assert.Equal(t, "monexa.ticker-snapshots", c.Kafka.Topic)
	assert.Equal(t, 10*time.Minute, c.Server.RateLimit.Idle)
	assert.Equal(t, time.Minute, c.Server.RateLimit.PruneInterval)
	assert.False(t, c.KafkaEnabled())
	assert.False(t, c.AdviceEnabled())
}

func TestParseValidation(t *testing.T) {
	tests := []struct {
		name string
		yaml string
		want string
	}{
		{"missing environment", "market_data:\n  api_key: k\n", "environment is required"},
		{"missing api key", "environment: test\n", "market_data.api_key is required"},
		{"bad currency", "environment: test\nmarket_data:\n  api_key: k\ncurrency:\n  target: RUPEE\n", "currency.target"},
		{"bad static rate", "environment: test\nmarket_data:\n  api_key: k\ncurrency:\n  static_rates:\n    USD:INR: -1\n", "static_rates"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Parse([]byte(tt.yaml))
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.want)
		})
	}
}

func TestLoadWithEnvOverrides(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte("environment: test\n"), 0o600))

	t.Setenv("EODHD_API_KEY", "eod")
	t.Setenv("GOOGLE_API_KEY", "google")
	t.Setenv("GEMINI_API_KEY", "gemini")
	t.Setenv("KAFKA_BROKERS", "a:9092,b:9092")
	t.Setenv("REDIS_ADDR", "redis:6379")

	c, err := LoadWithEnv(path)
	require.NoError(t, err)

	assert.Equal(t, "eod", c.MarketData.APIKey)
	assert.Equal(t, "gemini", c.Advice.APIKey)
	assert.Equal(t, []string{"a:9092", "b:9092"}, c.Kafka.Brokers)
	assert.True(t, c.Cache.Redis.Enabled)
	assert.True(t, c.KafkaEnabled())
}
