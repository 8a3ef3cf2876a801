package config

import (
	"fmt"
	"os"
	"strings"

	"gopkg.in/yaml.v3"
)

// AssetListing is one catalog entry declared in the assets file
type AssetListing struct {
	Symbol      string `yaml:"symbol"`
	Name        string `yaml:"name"`
	Type        string `yaml:"type"`
	CoinGeckoID string `yaml:"coingecko_id"`
}

// AssetsConfig holds listings that extend or override the built-in catalog
type AssetsConfig struct {
	Assets []AssetListing `yaml:"assets"`
}

// LoadAssetsConfig loads catalog listings from a YAML file
func LoadAssetsConfig(path string) (*AssetsConfig, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read assets file: %w", err)
	}

	var config AssetsConfig
	if err := yaml.Unmarshal(data, &config); err != nil {
		return nil, fmt.Errorf("failed to parse assets file: %w", err)
	}

	for i := range config.Assets {
		a := &config.Assets[i]
		a.Symbol = strings.ToUpper(strings.TrimSpace(a.Symbol))
		a.Type = strings.ToLower(strings.TrimSpace(a.Type))
		a.CoinGeckoID = strings.TrimSpace(a.CoinGeckoID)
		if a.Name == "" {
			a.Name = a.Symbol
		}
	}

	if err := config.Validate(); err != nil {
		return nil, err
	}
	return &config, nil
}

// Validate validates the assets configuration
func (c *AssetsConfig) Validate() error {
	seen := make(map[string]bool, len(c.Assets))
	for i, a := range c.Assets {
		if a.Symbol == "" {
			return fmt.Errorf("asset %d: symbol is required", i)
		}
		switch a.Type {
		case "crypto":
			if a.CoinGeckoID == "" {
				return fmt.Errorf("coingecko_id is required for crypto asset %s", a.Symbol)
			}
		case "stock", "equity":
		default:
			return fmt.Errorf("asset %s: type must be crypto or stock, got %q", a.Symbol, a.Type)
		}
		if seen[a.Symbol] {
			return fmt.Errorf("duplicate asset symbol %s", a.Symbol)
		}
		seen[a.Symbol] = true
	}
	return nil
}
