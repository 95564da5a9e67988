package config

import (
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

// configName is the config file name without extension.
const configName = ".bookreport"

const configType = "yaml"

// envPrefix is the environment variable prefix, e.g. BOOKREPORT_STORE_DRIVER.
const envPrefix = "BOOKREPORT"

// dotenvFiles are loaded in order; variables already set are never overridden.
var dotenvFiles = []string{".env.local", ".env"}

// Load reads configuration from file, env vars and defaults. If configPath
// is non-empty it is used as the explicit config file; otherwise
// .bookreport.yaml is searched in CWD and $HOME. A missing config file is
// not an error.
func Load(configPath string) (*Config, error) {
	loadDotenv()

	v := viper.New()
	applyDefaults(v)

	v.SetConfigType(configType)
	v.SetEnvPrefix(envPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if configPath != "" {
		v.SetConfigFile(configPath)
	} else {
		v.SetConfigName(configName)
		v.AddConfigPath(".")
		if home, err := os.UserHomeDir(); err == nil {
			v.AddConfigPath(home)
		}
	}

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return nil, fmt.Errorf("read config: %w", err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("unmarshal config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("validate config: %w", err)
	}
	return &cfg, nil
}

func loadDotenv() {
	for _, f := range dotenvFiles {
		if _, err := os.Stat(f); err == nil {
			_ = godotenv.Load(f)
		}
	}
}

func applyDefaults(v *viper.Viper) {
	v.SetDefault("store.driver", DefaultDriver)
	v.SetDefault("store.uri", DefaultURI)
	v.SetDefault("store.database", DefaultDatabase)
	v.SetDefault("store.collection", DefaultCollection)
	v.SetDefault("store.connect_timeout", DefaultConnectTimeout)

	v.SetDefault("embedded.data_file", DefaultDataFile)
	v.SetDefault("embedded.save_interval", 0)
	v.SetDefault("embedded.max_documents", 0)

	v.SetDefault("http.addr", DefaultHTTPAddr)

	v.SetDefault("log.level", DefaultLogLevel)
	v.SetDefault("log.format", DefaultLogFormat)

	v.SetDefault("report.color", true)
}
