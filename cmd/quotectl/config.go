package main

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/spf13/viper"

	"github.com/jsamuelsen/quotebook/internal/domain"
)

const (
	configFileName = "config"
	configFileType = "yaml"
	configFileExt  = "config.yaml"

	cfgKeyDataDir        = "data_dir"
	cfgKeyDriver         = "storage.driver"
	cfgKeyCollection     = "storage.collection"
	cfgKeySeed           = "seed_examples"
	cfgKeyLogLevel       = "log.level"
	cfgKeyLogFormat      = "log.format"
	cfgKeyLibraryURL     = "library.base_url"
	cfgKeyLibraryName    = "library.name"
	cfgKeyLibraryTimeout = "library.timeout"
	cfgKeyLibraryRetries = "library.retries"
)

// defaultConfigYAML is written to config.yaml on first run.
const defaultConfigYAML = `# quotectl configuration

# Where the collection lives (overridden by --data-dir).
# data_dir:

storage:
  driver: json            # json or sqlite
  collection: stellar_quotes_v1

# Add the two example quotes to an empty collection.
seed_examples: true

log:
  level: warn
  format: pretty

# Remote quote library used by "quotectl fetch".
library:
  # base_url: https://quotes.example.com
  name: quote-library
  timeout: 10s
  retries: 3
`

// loadConfig reads config.yaml from configDir, creating the directory and
// a default file on first run.
func loadConfig(configDir string) (*viper.Viper, error) {
	if err := os.MkdirAll(configDir, 0o755); err != nil {
		return nil, fmt.Errorf("creating config dir: %w", err)
	}

	if err := ensureDefaultConfigFile(configDir); err != nil {
		return nil, fmt.Errorf("writing default config: %w", err)
	}

	v := viper.New()
	v.SetDefault(cfgKeyDriver, "json")
	v.SetDefault(cfgKeyCollection, domain.StorageKey)
	v.SetDefault(cfgKeySeed, true)
	v.SetDefault(cfgKeyLogLevel, "warn")
	v.SetDefault(cfgKeyLogFormat, "pretty")
	v.SetDefault(cfgKeyLibraryName, "quote-library")
	v.SetDefault(cfgKeyLibraryTimeout, 10*time.Second)
	v.SetDefault(cfgKeyLibraryRetries, 3)

	v.SetConfigName(configFileName)
	v.SetConfigType(configFileType)
	v.AddConfigPath(configDir)

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if errors.As(err, &notFound) {
			return v, nil
		}

		return nil, fmt.Errorf("reading config: %w", err)
	}

	return v, nil
}

func ensureDefaultConfigFile(configDir string) error {
	path := filepath.Join(configDir, configFileExt)

	_, err := os.Stat(path)
	if err == nil || !errors.Is(err, os.ErrNotExist) {
		return err
	}

	return os.WriteFile(path, []byte(defaultConfigYAML), 0o644)
}
