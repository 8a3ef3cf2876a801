package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeAssets(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "assets.yaml")
	require.NoError(t, os.WriteFile(path, []byte(body), 0o600))
	return path
}

func TestLoadAssetsConfig(t *testing.T) {
	path := writeAssets(t, `
assets:
  - symbol: " pepe "
    type: Crypto
    coingecko_id: pepe
  - symbol: asml
    name: ASML Holding
    type: stock
`)

	cfg, err := LoadAssetsConfig(path)
	require.NoError(t, err)
	require.Len(t, cfg.Assets, 2)

	assert.Equal(t, AssetListing{Symbol: "PEPE", Name: "PEPE", Type: "crypto", CoinGeckoID: "pepe"}, cfg.Assets[0])
	assert.Equal(t, "ASML Holding", cfg.Assets[1].Name)
}

func TestLoadAssetsConfig_Invalid(t *testing.T) {
	cases := map[string]string{
		"missing symbol":    "assets:\n  - type: stock\n",
		"bad type":          "assets:\n  - symbol: X\n    type: bond\n",
		"crypto without id": "assets:\n  - symbol: PEPE\n    type: crypto\n",
		"duplicate":         "assets:\n  - symbol: ab\n    type: stock\n  - symbol: AB\n    type: stock\n",
		"not yaml":          "assets: [",
	}
	for name, body := range cases {
		t.Run(name, func(t *testing.T) {
			_, err := LoadAssetsConfig(writeAssets(t, body))
			assert.Error(t, err)
		})
	}
}

func TestLoadAssetsConfig_MissingFile(t *testing.T) {
	_, err := LoadAssetsConfig(filepath.Join(t.TempDir(), "nope.yaml"))
	assert.Error(t, err)
}
