// Package config loads bookreport settings from defaults, an optional YAML
// file, .env files and BOOKREPORT_ environment variables.
package config

import (
	"errors"
	"fmt"
	"time"
)

// Store drivers
const (
	DriverMongo    = "mongo"
	DriverEmbedded = "embedded"
)

// Config is the top-level configuration. Field tags use mapstructure for
// viper unmarshalling.
type Config struct {
	Store    StoreConfig    `mapstructure:"store"`
	Embedded EmbeddedConfig `mapstructure:"embedded"`
	HTTP     HTTPConfig     `mapstructure:"http"`
	Log      LogConfig      `mapstructure:"log"`
	Report   ReportConfig   `mapstructure:"report"`
}

// StoreConfig selects the document store and the collection to report on
type StoreConfig struct {
	Driver         string        `mapstructure:"driver"`
	URI            string        `mapstructure:"uri"`
	Database       string        `mapstructure:"database"`
	Collection     string        `mapstructure:"collection"`
	ConnectTimeout time.Duration `mapstructure:"connect_timeout"`
}

// EmbeddedConfig holds settings of the in-process store
type EmbeddedConfig struct {
	DataFile     string        `mapstructure:"data_file"`
	SaveInterval time.Duration `mapstructure:"save_interval"`
	MaxDocuments int           `mapstructure:"max_documents"`
}

type HTTPConfig struct {
	Addr string `mapstructure:"addr"`
}

type LogConfig struct {
	Level  string `mapstructure:"level"`
	Format string `mapstructure:"format"`
}

type ReportConfig struct {
	Color bool `mapstructure:"color"`
}

// Defaults
const (
	DefaultDriver         = DriverMongo
	DefaultURI            = "mongodb://localhost:27017"
	DefaultDatabase       = "plp_bookstore"
	DefaultCollection     = "books"
	DefaultConnectTimeout = 10 * time.Second
	DefaultDataFile       = "bookstore.godb"
	DefaultHTTPAddr       = ":8080"
	DefaultLogLevel       = "info"
	DefaultLogFormat      = "console"
)

var (
	ErrUnknownDriver   = errors.New("unknown store driver")
	ErrEmptyName       = errors.New("database and collection names are required")
	ErrInvalidDuration = errors.New("durations cannot be negative")
	ErrInvalidLog      = errors.New("invalid log settings")
)

// Validate checks the configuration for values no component can work with
func (c *Config) Validate() error {
	switch c.Store.Driver {
	case DriverMongo:
		if c.Store.URI == "" {
			return fmt.Errorf("store.uri is required for the %s driver", DriverMongo)
		}
	case DriverEmbedded:
	default:
		return fmt.Errorf("%w: %q", ErrUnknownDriver, c.Store.Driver)
	}

	if c.Store.Database == "" || c.Store.Collection == "" {
		return ErrEmptyName
	}
	if c.Store.ConnectTimeout < 0 || c.Embedded.SaveInterval < 0 {
		return ErrInvalidDuration
	}
	if c.Embedded.MaxDocuments < 0 {
		return fmt.Errorf("embedded.max_documents cannot be negative")
	}

	switch c.Log.Level {
	case "debug", "info", "warn", "error":
	default:
		return fmt.Errorf("%w: level %q", ErrInvalidLog, c.Log.Level)
	}
	switch c.Log.Format {
	case "json", "console":
	default:
		return fmt.Errorf("%w: format %q", ErrInvalidLog, c.Log.Format)
	}
	return nil
}
