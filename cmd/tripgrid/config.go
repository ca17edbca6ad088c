package main

import (
	"errors"
	"fmt"
	"os"

	"github.com/spf13/viper"
	"gopkg.in/yaml.v3"

	"github.com/mesh-intelligence/tripgrid/internal/paths"
	"github.com/mesh-intelligence/tripgrid/pkg/types"
)

const (
	configFileName = "config"
	configFileType = "yaml"
	envPrefix      = "TRIPGRID"

	cfgKeyBackend     = "backend"
	cfgKeyDataDir     = "data_dir"
	cfgKeySyncURL     = "sync_url"
	cfgKeyConcurrency = "concurrency"
	cfgKeyResetPolicy = "reset_policy"
	cfgKeySeedCatalog = "seed_catalog"
	cfgKeyLogLevel    = "log_level"
	cfgKeyListen      = "listen"

	defaultListen = ":8420"
)

// envKeys are the config keys TRIPGRID_<KEY> overrides. data_dir is
// resolved by paths.ResolveDataDir, where the file wins over the
// environment.
var envKeys = []string{
	cfgKeyBackend,
	cfgKeySyncURL,
	cfgKeyConcurrency,
	cfgKeyResetPolicy,
	cfgKeySeedCatalog,
	cfgKeyLogLevel,
	cfgKeyListen,
}

// configFile is the structure written to config.yaml on first run.
type configFile struct {
	Backend     string `yaml:"backend"`
	DataDir     string `yaml:"data_dir,omitempty"`
	SyncURL     string `yaml:"sync_url,omitempty"`
	Concurrency string `yaml:"concurrency"`
	ResetPolicy string `yaml:"reset_policy"`
	SeedCatalog bool   `yaml:"seed_catalog"`
}

const configHeader = `# tripgrid configuration
#
# sync_url:     ws://host:8420/sync enables replication (tripgrid sync)
# concurrency:  last_write_wins | versioned
# reset_policy: guard | discard
`

func defaultConfigFile() configFile {
	return configFile{
		Backend:     types.BackendSQLite,
		Concurrency: types.ConcurrencyLastWriteWins,
		ResetPolicy: types.ResetGuard,
	}
}

// loadConfig reads config.yaml from configDir, creating the directory and a
// default file on first run.
func loadConfig(configDir string) (*viper.Viper, error) {
	if err := os.MkdirAll(configDir, 0o755); err != nil {
		return nil, fmt.Errorf("create config dir: %w", err)
	}
	if err := writeConfigIfMissing(paths.ConfigFile(configDir), defaultConfigFile()); err != nil {
		return nil, fmt.Errorf("write default config: %w", err)
	}

	v := viper.New()
	v.SetDefault(cfgKeyBackend, types.BackendSQLite)
	v.SetDefault(cfgKeyConcurrency, types.ConcurrencyLastWriteWins)
	v.SetDefault(cfgKeyResetPolicy, types.ResetGuard)
	v.SetDefault(cfgKeyListen, defaultListen)
	v.SetEnvPrefix(envPrefix)
	for _, k := range envKeys {
		if err := v.BindEnv(k); err != nil {
			return nil, fmt.Errorf("bind env %s: %w", k, err)
		}
	}
	v.SetConfigName(configFileName)
	v.SetConfigType(configFileType)
	v.AddConfigPath(configDir)

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if errors.As(err, &notFound) {
			return v, nil
		}
		return nil, fmt.Errorf("read config: %w", err)
	}
	return v, nil
}

// writeConfigIfMissing creates config.yaml with cfg. An existing file is
// left alone.
func writeConfigIfMissing(path string, cfg configFile) error {
	if _, err := os.Stat(path); err == nil {
		return nil
	} else if !os.IsNotExist(err) {
		return fmt.Errorf("stat config file: %w", err)
	}

	data, err := yaml.Marshal(&cfg)
	if err != nil {
		return fmt.Errorf("marshal config: %w", err)
	}
	return os.WriteFile(path, append([]byte(configHeader), data...), 0o644)
}

// storeConfig builds the store configuration from v and the resolved data
// directory.
func storeConfig(v *viper.Viper, dataDir string) types.Config {
	return types.Config{
		Backend:     v.GetString(cfgKeyBackend),
		DataDir:     dataDir,
		SyncURL:     v.GetString(cfgKeySyncURL),
		Concurrency: v.GetString(cfgKeyConcurrency),
		ResetPolicy: v.GetString(cfgKeyResetPolicy),
		SeedCatalog: v.GetBool(cfgKeySeedCatalog),
	}
}
