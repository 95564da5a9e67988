package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// inTempDir runs the test from an empty directory so no stray config or
// .env file is picked up
func inTempDir(t *testing.T) string {
	t.Helper()
	dir := t.TempDir()
	t.Chdir(dir)
	t.Setenv("HOME", dir)
	return dir
}

func TestLoad_Defaults(t *testing.T) {
	inTempDir(t)

	cfg, err := Load("")
	require.NoError(t, err)

	assert.Equal(t, DriverMongo, cfg.Store.Driver)
	assert.Equal(t, DefaultURI, cfg.Store.URI)
	assert.Equal(t, "plp_bookstore", cfg.Store.Database)
	assert.Equal(t, "books", cfg.Store.Collection)
	assert.Equal(t, 10*time.Second, cfg.Store.ConnectTimeout)
	assert.Equal(t, DefaultDataFile, cfg.Embedded.DataFile)
	assert.Equal(t, ":8080", cfg.HTTP.Addr)
	assert.Equal(t, "info", cfg.Log.Level)
	assert.True(t, cfg.Report.Color)
}

func TestLoad_File(t *testing.T) {
	dir := inTempDir(t)
	path := filepath.Join(dir, "custom.yaml")
	require.NoError(t, os.WriteFile(path, []byte(`
store:
  driver: embedded
  collection: novels
embedded:
  data_file: /tmp/novels.godb
  save_interval: 30s
log:
  level: debug
  format: json
`), 0644))

	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, DriverEmbedded, cfg.Store.Driver)
	assert.Equal(t, "novels", cfg.Store.Collection)
	assert.Equal(t, "plp_bookstore", cfg.Store.Database, "unset keys keep their default")
	assert.Equal(t, "/tmp/novels.godb", cfg.Embedded.DataFile)
	assert.Equal(t, 30*time.Second, cfg.Embedded.SaveInterval)
	assert.Equal(t, "json", cfg.Log.Format)
}

func TestLoad_SearchesWorkingDirectory(t *testing.T) {
	dir := inTempDir(t)
	require.NoError(t, os.WriteFile(filepath.Join(dir, ".bookreport.yaml"), []byte("store:\n  database: library\n"), 0644))

	cfg, err := Load("")
	require.NoError(t, err)
	assert.Equal(t, "library", cfg.Store.Database)
}

func TestLoad_EnvOverridesFile(t *testing.T) {
	dir := inTempDir(t)
	require.NoError(t, os.WriteFile(filepath.Join(dir, ".bookreport.yaml"), []byte("store:\n  database: library\n"), 0644))
	t.Setenv("BOOKREPORT_STORE_DATABASE", "archive")
	t.Setenv("BOOKREPORT_STORE_DRIVER", "embedded")

	cfg, err := Load("")
	require.NoError(t, err)
	assert.Equal(t, "archive", cfg.Store.Database)
	assert.Equal(t, DriverEmbedded, cfg.Store.Driver)
}

func TestLoad_Dotenv(t *testing.T) {
	dir := inTempDir(t)
	require.NoError(t, os.WriteFile(filepath.Join(dir, ".env"), []byte("BOOKREPORT_STORE_COLLECTION=from_dotenv\n"), 0644))
	// godotenv writes to the process environment; make sure it is restored
	t.Setenv("BOOKREPORT_STORE_COLLECTION", "")
	os.Unsetenv("BOOKREPORT_STORE_COLLECTION")

	cfg, err := Load("")
	require.NoError(t, err)
	assert.Equal(t, "from_dotenv", cfg.Store.Collection)
}

func TestLoad_InvalidFile(t *testing.T) {
	dir := inTempDir(t)
	path := filepath.Join(dir, "broken.yaml")
	require.NoError(t, os.WriteFile(path, []byte("store: [unclosed"), 0644))

	_, err := Load(path)
	assert.Error(t, err)
}

func TestLoad_InvalidDriver(t *testing.T) {
	inTempDir(t)
	t.Setenv("BOOKREPORT_STORE_DRIVER", "postgres")

	_, err := Load("")
	assert.ErrorIs(t, err, ErrUnknownDriver)
}

func TestConfig_Validate(t *testing.T) {
	valid := func() Config {
		return Config{
			Store: StoreConfig{Driver: DriverEmbedded, Database: "db", Collection: "books"},
			Log:   LogConfig{Level: "info", Format: "console"},
		}
	}

	tests := []struct {
		name    string
		mutate  func(*Config)
		wantErr error
	}{
		{"valid", func(*Config) {}, nil},
		{"unknown driver", func(c *Config) { c.Store.Driver = "sqlite" }, ErrUnknownDriver},
		{"empty collection", func(c *Config) { c.Store.Collection = "" }, ErrEmptyName},
		{"empty database", func(c *Config) { c.Store.Database = "" }, ErrEmptyName},
		{"negative timeout", func(c *Config) { c.Store.ConnectTimeout = -time.Second }, ErrInvalidDuration},
		{"bad level", func(c *Config) { c.Log.Level = "loud" }, ErrInvalidLog},
		{"bad format", func(c *Config) { c.Log.Format = "xml" }, ErrInvalidLog},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := valid()
			tt.mutate(&cfg)
			err := cfg.Validate()
			if tt.wantErr == nil {
				assert.NoError(t, err)
			} else {
				assert.ErrorIs(t, err, tt.wantErr)
			}
		})
	}

	mongo := valid()
	mongo.Store.Driver = DriverMongo
	assert.Error(t, mongo.Validate(), "mongo needs a URI")
}
