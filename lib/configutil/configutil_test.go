package configutil

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"
)

type testConfig struct {
	BaseUrl  string `json:"base_url"`
	MaxPages int    `json:"max_pages"`
}

func TestReadConfig(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "scraper.json5")

	err := os.WriteFile(path, []byte(`{
		// site under scrape
		base_url: "https://books.example",
		max_pages: 5,
	}`), 0o644)
	require.NoError(t, err)

	config, err := ReadConfig[testConfig](path)
	require.NoError(t, err)
	require.Equal(t, "https://books.example", config.BaseUrl)
	require.Equal(t, 5, config.MaxPages)
}

func TestReadConfigLocalOverride(t *testing.T) {
	dir := t.TempDir()

	err := os.WriteFile(
		filepath.Join(dir, "scraper.json5"),
		[]byte(`{base_url: "https://books.example", max_pages: 5}`),
		0o644,
	)
	require.NoError(t, err)
	err = os.WriteFile(
		filepath.Join(dir, "scraper.local.json5"),
		[]byte(`{base_url: "http://localhost:8080"}`),
		0o644,
	)
	require.NoError(t, err)

	config, err := ReadConfig[testConfig](filepath.Join(dir, "scraper.json5"))
	require.NoError(t, err)
	require.Equal(t, "http://localhost:8080", config.BaseUrl)
	require.Equal(t, 5, config.MaxPages)
}

func TestReadConfigMissing(t *testing.T) {
	dir := t.TempDir()

	_, err := ReadConfig[testConfig](filepath.Join(dir, "nonexistent.json5"))
	require.ErrorIs(t, err, os.ErrNotExist)
}
