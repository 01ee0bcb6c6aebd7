package config

import (
	"fmt"
	"os"
	"strings"

	"floatwatch/internal/domain"

	"gopkg.in/yaml.v3"
)

// WatchItem is one entry of the watchlist file.
type WatchItem struct {
	Name     string          `yaml:"name"`
	Wear     domain.WearKey  `yaml:"wear"`
	Category domain.Category `yaml:"category"`
}

type watchlistFile struct {
	Items []WatchItem `yaml:"items"`
}

// LoadWatchlist parses a YAML watchlist. Entries without a name are skipped;
// an unknown wear or category is an error.
func LoadWatchlist(path string) ([]WatchItem, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read watchlist: %w", err)
	}

	var file watchlistFile
	if err := yaml.Unmarshal(raw, &file); err != nil {
		return nil, fmt.Errorf("parse watchlist %s: %w", path, err)
	}

	items := make([]WatchItem, 0, len(file.Items))
	for i, it := range file.Items {
		it.Name = strings.TrimSpace(it.Name)
		if it.Name == "" {
			continue
		}
		wear, err := domain.ParseWear(string(it.Wear))
		if err != nil {
			return nil, fmt.Errorf("watchlist item %d: %w", i, err)
		}
		category, err := domain.ParseCategory(string(it.Category))
		if err != nil {
			return nil, fmt.Errorf("watchlist item %d: %w", i, err)
		}
		it.Wear, it.Category = wear, category
		items = append(items, it)
	}
	return items, nil
}
