// Package config resolves runtime configuration from defaults, an
// optional .orbitrc file and ORBIT_* environment variables, in that
// precedence order.
package config

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/viper"
)

type Config struct {
	// SQLitePath is the store file; ignored when DSN is set.
	SQLitePath string `mapstructure:"sqlitePath"`
	// DSN selects Postgres instead of the SQLite file.
	DSN string `mapstructure:"dsn"`

	ContentDir    string `mapstructure:"contentDir"`
	AttachmentDir string `mapstructure:"attachmentDir"`

	// LogMode is "dev" or "prod".
	LogMode string `mapstructure:"logMode"`
}

// Load reads the configuration. An explicit configFile must exist; an
// empty argument falls back to .orbitrc.yaml/.orbitrc.yml in the
// working directory and silently proceeds on defaults when neither is
// present.
func Load(configFile string) (*Config, error) {
	v := viper.New()

	home, _ := os.UserHomeDir()
	base := filepath.Join(home, ".orbit-assess")
	v.SetDefault("sqlitePath", filepath.Join(base, "orbit.db"))
	v.SetDefault("dsn", "")
	v.SetDefault("contentDir", "content")
	v.SetDefault("attachmentDir", filepath.Join(base, "attachments"))
	v.SetDefault("logMode", "prod")

	if configFile != "" {
		v.SetConfigFile(configFile)
		if err := v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("read config %s: %w", configFile, err)
		}
	} else {
		for _, path := range []string{".orbitrc.yaml", ".orbitrc.yml"} {
			v.SetConfigFile(path)
			if err := v.ReadInConfig(); err == nil {
				break
			}
		}
	}

	v.SetEnvPrefix("ORBIT")
	v.AutomaticEnv()

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("unmarshal config: %w", err)
	}
	if err := validate(&cfg); err != nil {
		return nil, err
	}
	return &cfg, nil
}

func validate(cfg *Config) error {
	if cfg.LogMode != "dev" && cfg.LogMode != "prod" {
		return fmt.Errorf("logMode must be dev or prod, got %q", cfg.LogMode)
	}
	if cfg.DSN == "" && cfg.SQLitePath == "" {
		return fmt.Errorf("either sqlitePath or dsn must be set")
	}
	return nil
}
