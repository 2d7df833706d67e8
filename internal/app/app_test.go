package app

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Avishkar2004/8byte/internal/models"
)

func writeTestConfig(t *testing.T, apiKey string) string {
	t.Helper()
	dir := t.TempDir()

	holdingsPath := filepath.Join(dir, "holdings.json")
	require.NoError(t, os.WriteFile(holdingsPath, []byte(`[
		{"symbol": "AAPL.US", "company_name": "Apple Inc", "purchase_price": 150, "share_count": 100},
		{"symbol": "MSFT.US", "company_name": "Microsoft Corporation", "purchase_price": 320, "share_count": 50}
	]`), 0o644))

	configPath := filepath.Join(dir, "8byte.toml")
	require.NoError(t, os.WriteFile(configPath, []byte(`
[holdings]
path = "`+holdingsPath+`"

[clients.eodhd]
api_key = "`+apiKey+`"

[aggregator]
stagger_delay = "1ms"
pass_timeout = "2s"

[logging]
level = "error"
`), 0o644))

	return configPath
}

func TestNewAppWiring(t *testing.T) {
	a, err := NewApp(writeTestConfig(t, "some-key"))
	require.NoError(t, err)
	defer a.Close()

	assert.NotNil(t, a.Cache)
	assert.NotNil(t, a.Limiter)
	assert.NotNil(t, a.Source)
	assert.NotNil(t, a.Fetcher)
	assert.NotNil(t, a.Aggregator)
	assert.NotNil(t, a.Holdings)
	assert.Nil(t, a.LastPass(), "no snapshot before the first pass")
}

func TestNewAppWithoutAPIKeyIsDegraded(t *testing.T) {
	a, err := NewApp(writeTestConfig(t, ""))
	require.NoError(t, err)
	defer a.Close()

	assert.Nil(t, a.Source, "no key means no source, never fabricated data")

	// A pass still completes: every instrument comes back, marked stale
	result, err := a.RefreshNow(context.Background())
	require.NoError(t, err)
	require.Len(t, result.Rows, 2)
	for _, row := range result.Rows {
		assert.Equal(t, models.StateFailed, row.State)
		assert.Contains(t, row.Error, "unavailable")
		assert.Nil(t, row.PresentValue)
	}

	assert.Same(t, result, a.LastPass(), "snapshot holds the latest pass")
}

func TestRefreshNowFailsWithoutHoldingsFile(t *testing.T) {
	configPath := writeTestConfig(t, "")
	a, err := NewApp(configPath)
	require.NoError(t, err)
	defer a.Close()

	require.NoError(t, os.Remove(a.Config.Holdings.Path))

	_, err = a.RefreshNow(context.Background())
	assert.Error(t, err)
}
