// Config loading for the routeticker CLI.
package main

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/viper"

	"github.com/mrdunk/routeticker/internal/paths"
	"github.com/mrdunk/routeticker/pkg/types"
)

const (
	configFileName = "config"
	configFileType = "yaml"
	configFileExt  = "config.yaml"

	cfgKeyBackend   = "backend"
	cfgKeyDataDir   = "data_dir"
	cfgKeyMaxGroups = "max_groups"
	cfgKeyUserID    = "user.id"
	cfgKeyUserEmail = "user.email"
	cfgKeyAdmin     = "admin"
)

// defaultConfigYAML is written to config.yaml on first run.
const defaultConfigYAML = `# Routeticker CLI configuration

# Store backend: memory, sqlite, or badger
backend: sqlite

# Data directory (optional; overridable by --data-dir flag)
# data_dir:

# Atomic-group ceiling (optional; 0 means the backend default)
# max_groups: 0

# Acting user; attribute edits are attributed to this identity
# user:
#   id:
#   email:

# Whether the acting user may bootstrap the tree root
# admin: false
`

// loadConfig reads config.yaml from the resolved config directory, creating
// the directory and a default file on first run, then folds in the flag
// overrides. A missing config.yaml is not an error.
func loadConfig() (types.Config, error) {
	configDir, err := paths.ResolveConfigDir(flagConfigDir)
	if err != nil {
		return types.Config{}, fmt.Errorf("resolve config dir: %w", err)
	}
	if err := os.MkdirAll(configDir, 0o755); err != nil {
		return types.Config{}, fmt.Errorf("create config dir: %w", err)
	}
	if err := ensureDefaultConfigFile(configDir); err != nil {
		return types.Config{}, fmt.Errorf("ensure default config: %w", err)
	}

	v := viper.New()
	v.SetDefault(cfgKeyBackend, types.BackendSQLite)
	v.SetConfigName(configFileName)
	v.SetConfigType(configFileType)
	v.AddConfigPath(configDir)
	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return types.Config{}, fmt.Errorf("read config: %w", err)
		}
	}

	cfg := types.Config{
		Backend:   v.GetString(cfgKeyBackend),
		MaxGroups: v.GetInt(cfgKeyMaxGroups),
		User: types.UserRef{
			ID:    v.GetString(cfgKeyUserID),
			Email: v.GetString(cfgKeyUserEmail),
		},
		Admin: v.GetBool(cfgKeyAdmin),
	}
	if flagBackend != "" {
		cfg.Backend = flagBackend
	}
	if flagUser != "" {
		cfg.User.ID = flagUser
	}
	if flagEmail != "" {
		cfg.User.Email = flagEmail
	}
	if flagAdmin {
		cfg.Admin = true
	}

	cfg.DataDir, err = resolveDataDir(v.GetString(cfgKeyDataDir))
	if err != nil {
		return types.Config{}, fmt.Errorf("resolve data dir: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return types.Config{}, fmt.Errorf("invalid config: %w", err)
	}
	return cfg, nil
}

// ensureDefaultConfigFile creates a default config.yaml if the file does
// not exist in the config directory.
func ensureDefaultConfigFile(configDir string) error {
	path := filepath.Join(configDir, configFileExt)
	_, err := os.Stat(path)
	if err == nil {
		return nil
	}
	if !os.IsNotExist(err) {
		return fmt.Errorf("stat config file: %w", err)
	}
	return os.WriteFile(path, []byte(defaultConfigYAML), 0o644)
}
