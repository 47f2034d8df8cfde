package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

// EnvPrefix prefixes every environment override, e.g. OJ_API_URL.
const EnvPrefix = "OJ"

// keys lists every config key so environment overrides reach Unmarshal.
var keys = map[string]any{
	"mode":                   "",
	"api_url":                "",
	"proxy_target":           "",
	"web_url":                "",
	"open_browser":           true,
	"storage.driver":         "",
	"storage.path":           "",
	"storage.redis_addr":     "",
	"storage.redis_password": "",
	"storage.redis_db":       0,
	"log.level":              "",
	"log.dev":                false,
	"metrics.textfile":       "",
}

// NewViper returns a Viper reading configFile, or ojcli.yaml from the
// current directory or ~/.ojcli when configFile is empty, with OJ_*
// environment overrides.
func NewViper(configFile string) *viper.Viper {
	v := viper.New()
	if configFile != "" {
		v.SetConfigFile(configFile)
	} else if found := findConfigFile(); found != "" {
		v.SetConfigFile(found)
	} else {
		// ReadInConfig then returns ConfigFileNotFoundError.
		v.SetConfigName("ojcli")
		v.SetConfigType("yaml")
	}

	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_", "-", "_"))
	v.AutomaticEnv()

	for k, def := range keys {
		v.SetDefault(k, def)
	}
	return v
}

func findConfigFile() string {
	home, _ := os.UserHomeDir()
	return findConfigFileInPaths([]string{".", filepath.Join(home, ".ojcli")})
}

// findConfigFileInPaths returns the first ojcli.yaml or ojcli.yml found in paths.
func findConfigFileInPaths(paths []string) string {
	for _, dir := range paths {
		for _, ext := range []string{".yaml", ".yml"} {
			path := filepath.Join(dir, "ojcli"+ext)
			if _, err := os.Stat(path); err == nil {
				return path
			}
		}
	}
	return ""
}

// LoadDotEnv loads KEY=VALUE pairs from files into the environment without
// overriding variables that are already set. Missing files are skipped.
func LoadDotEnv(files ...string) error {
	if len(files) == 0 {
		files = []string{".env"}
	}
	for _, f := range files {
		if err := godotenv.Load(f); err != nil {
			if errors.Is(err, fs.ErrNotExist) {
				continue
			}
			return fmt.Errorf("load %s: %w", f, err)
		}
	}
	return nil
}

// Load reads the configuration file, applies environment overrides, sets
// defaults and validates the result.
func Load(v *viper.Viper) (*Config, error) {
	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return nil, fmt.Errorf("failed to read config file: %w", err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	cfg.SetDefaults()

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("config validation failed: %w", err)
	}
	return &cfg, nil
}
