package configutil

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"
)

type testConfig struct {
	City     string `json:"city"`
	MaxPages int    `json:"max_pages"`
	Verbose  bool   `json:"verbose"`
}

func writeFile(t *testing.T, path, contents string) {
	t.Helper()
	err := os.WriteFile(path, []byte(contents), 0600)
	require.NoError(t, err)
}

func TestReadConfigLocalOverride(t *testing.T) {
	dir := t.TempDir()
	name := filepath.Join(dir, "scraper.json5")
	writeFile(t, name, `{
		// comments are allowed
		city: "Edmonton",
		max_pages: 5,
	}`)
	writeFile(t, filepath.Join(dir, "scraper.local.json5"), `{ max_pages: 9 }`)

	cfg, err := ReadConfig[testConfig](name)
	require.NoError(t, err)
	require.Equal(t, testConfig{City: "Edmonton", MaxPages: 9}, cfg)
}

func TestReadConfigMissing(t *testing.T) {
	_, err := ReadConfig[testConfig](filepath.Join(t.TempDir(), "nope.json5"))
	require.ErrorIs(t, err, os.ErrNotExist)
}

func TestReadWithDefaults(t *testing.T) {
	dir := t.TempDir()
	defaults := testConfig{City: "Toronto", MaxPages: 25}

	cfg, err := ReadWithDefaults(filepath.Join(dir, "missing.json5"), defaults)
	require.NoError(t, err)
	require.Equal(t, defaults, cfg)

	name := filepath.Join(dir, "partial.json5")
	writeFile(t, name, `{ city: "Calgary" }`)
	cfg, err = ReadWithDefaults(name, defaults)
	require.NoError(t, err)
	require.Equal(t, testConfig{City: "Calgary", MaxPages: 25}, cfg)
}

func TestReadConfigInvalid(t *testing.T) {
	name := filepath.Join(t.TempDir(), "broken.json5")
	writeFile(t, name, `{ city: `)
	_, err := ReadConfig[testConfig](name)
	require.Error(t, err)
	require.NotErrorIs(t, err, os.ErrNotExist)
}

func TestLocalPath(t *testing.T) {
	require.Equal(t, "a/b/ubereats.local.json5", LocalPath("a/b/ubereats.json5"))
}
