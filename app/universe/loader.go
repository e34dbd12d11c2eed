package universe

import (
	"fmt"
	"log/slog"
	"os"

	"gopkg.in/yaml.v3"
)

// LoadConfig reads the universe configuration file. A missing file is
// not an error: the built-in index and feed defaults apply.
func LoadConfig(path string) (*Config, error) {
	config := &Config{}

	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			slog.Debug("Universe config not found, using defaults", "path", path)
			config.Indices = DefaultIndices
			return config, nil
		}
		return nil, fmt.Errorf("failed to read universe config: %w", err)
	}

	if err := yaml.Unmarshal(data, config); err != nil {
		return nil, fmt.Errorf("failed to parse universe config: %w", err)
	}

	if len(config.Indices) == 0 {
		config.Indices = DefaultIndices
	}

	slog.Debug("Universe configuration loaded", "path", path, "indices", len(config.Indices), "rss_feeds", len(config.RSSFeeds))
	return config, nil
}
