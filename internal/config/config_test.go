package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewConfigMissingFileUsesDefaults(t *testing.T) {
	c, err := NewConfig(filepath.Join(t.TempDir(), "does-not-exist.yaml"))
	require.NoError(t, err)

	assert.Equal(t, "https://rocket-league.com/login", c.Site.LoginURL)
	assert.Equal(t, "https://rocket-league.com/trades/%s", c.Site.TradesURL)
	assert.Equal(t, "stdout", c.Output.Type)
	assert.Equal(t, "en_US", c.Locale)
	assert.Equal(t, 1920, c.Browser.Width)
	assert.False(t, c.Browser.ShowBrowser)
	assert.Zero(t, c.Browser.NavigationTimeout)
}

func TestNewConfigFromFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "tradebump.yaml")
	content := `
site:
  trades_url: "https://example.com/u/%s/trades"
  listing_selector: ".trade"
browser:
  show_browser: true
  navigation_timeout: 45s
output:
  type: file
  file: reports.jsonl
locale: de_DE
`
	require.NoError(t, os.WriteFile(path, []byte(content), 0644))

	c, err := NewConfig(path)
	require.NoError(t, err)

	assert.Equal(t, "https://example.com/u/%s/trades", c.Site.TradesURL)
	assert.Equal(t, ".trade", c.Site.ListingSelector)
	// not set in the file, so the default applies
	assert.Equal(t, ".rlg-trade__action.--edit", c.Site.EditSelector)
	assert.True(t, c.Browser.ShowBrowser)
	assert.Equal(t, 45*time.Second, c.Browser.NavigationTimeout)
	assert.Equal(t, "file", c.Output.Type)
	assert.Equal(t, "reports.jsonl", c.Output.File)
	assert.Equal(t, "de_DE", c.Locale)
}

func TestNewConfigEnvOverride(t *testing.T) {
	t.Setenv("TRADEBUMP_OUTPUT", "api")
	t.Setenv("TRADEBUMP_OUTPUT_URI", "http://localhost:8080/reports")

	c, err := NewConfig(filepath.Join(t.TempDir(), "none.yaml"))
	require.NoError(t, err)
	assert.Equal(t, "api", c.Output.Type)
	assert.Equal(t, "http://localhost:8080/reports", c.Output.Uri)
}

func TestNewConfigInvalidTradesURL(t *testing.T) {
	path := filepath.Join(t.TempDir(), "tradebump.yaml")
	require.NoError(t, os.WriteFile(path, []byte("site:\n  trades_url: \"https://example.com/trades\"\n"), 0644))

	_, err := NewConfig(path)
	assert.ErrorContains(t, err, "trades_url")
}
