// Package config loads the workbook-loader configuration.
//
// Values are resolved, highest precedence first, from bound command-line
// flags, WORKBOOK_* environment variables (a .env file in the working
// directory is loaded first), the YAML config file and the defaults below.
// The config file defaults to $HOME/.workbook-loader.yaml and is optional.
package config

import (
	"errors"
	"fmt"
	"io/fs"
	"path/filepath"
	"slices"
	"strings"
	"time"

	"github.com/hashicorp/go-multierror"
	"github.com/joho/godotenv"
	"github.com/mitchellh/go-homedir"
	"github.com/spf13/viper"

	"workbook-loader/internal/logging"
	"workbook-loader/internal/schema"
	"workbook-loader/internal/store"
)

const (
	// EnvPrefix prefixes every environment variable, e.g. WORKBOOK_API_URL.
	EnvPrefix = "WORKBOOK"
	// FileName is the config file name in the home directory, without extension.
	FileName = ".workbook-loader"
)

// Keys.
const (
	KeyAPIURL        = "api.url"
	KeyAPIToken      = "api.token"
	KeyAPITimeout    = "api.timeout"
	KeyGroup         = "group"
	KeyEntity        = "entity"
	KeySchemaFile    = "schema.file"
	KeyStoreDriver   = "store.driver"
	KeyStoreDSN      = "store.dsn"
	KeySaveChunkSize = "save.chunk_size"
	KeySaveYield     = "save.yield"
	KeyLogLevel      = "log.level"
	KeyLogFormat     = "log.format"
)

// Config is the resolved configuration.
type Config struct {
	API    API    `mapstructure:"api"`
	Group  string `mapstructure:"group"`
	Entity string `mapstructure:"entity"`
	Schema Schema `mapstructure:"schema"`
	Store  Store  `mapstructure:"store"`
	Save   Save   `mapstructure:"save"`
	Log    Log    `mapstructure:"log"`
}

// API configures the backend client.
type API struct {
	URL     string        `mapstructure:"url"`
	Token   string        `mapstructure:"token"`
	Timeout time.Duration `mapstructure:"timeout"`
}

// Schema points at a schema override.
type Schema struct {
	File string `mapstructure:"file"`
}

// Store selects the session store.
type Store struct {
	Driver string `mapstructure:"driver"`
	DSN    string `mapstructure:"dsn"`
}

// Save tunes the batch submission.
type Save struct {
	ChunkSize int           `mapstructure:"chunk_size"`
	Yield     time.Duration `mapstructure:"yield"`
}

// Log configures the logger.
type Log struct {
	Level  string `mapstructure:"level"`
	Format string `mapstructure:"format"`
}

// SetDefaults registers the default of every key on v.
func SetDefaults(v *viper.Viper, home string) {
	v.SetDefault(KeyAPIURL, "http://localhost:8080")
	v.SetDefault(KeyAPIToken, "")
	v.SetDefault(KeyAPITimeout, 30*time.Second)
	v.SetDefault(KeyGroup, "")
	v.SetDefault(KeyEntity, "")
	v.SetDefault(KeySchemaFile, "")
	v.SetDefault(KeyStoreDriver, store.DriverSQLite)
	v.SetDefault(KeyStoreDSN, filepath.Join(home, FileName, "session.db"))
	v.SetDefault(KeySaveChunkSize, 5)
	v.SetDefault(KeySaveYield, time.Duration(0))
	v.SetDefault(KeyLogLevel, "info")
	v.SetDefault(KeyLogFormat, logging.FormatText)
}

// Load resolves the configuration on v. file overrides the default config
// file location; an explicitly named file must exist.
func Load(v *viper.Viper, file string) (Config, error) {
	if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return Config{}, fmt.Errorf("failed to load .env: %w", err)
	}

	home, err := homedir.Dir()
	if err != nil {
		return Config{}, fmt.Errorf("failed to find home directory: %w", err)
	}

	SetDefaults(v, home)

	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if file != "" {
		path, err := homedir.Expand(file)
		if err != nil {
			return Config{}, err
		}

		v.SetConfigFile(path)
	} else {
		v.AddConfigPath(home)
		v.SetConfigName(FileName)
		v.SetConfigType("yaml")
	}

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if file != "" || !errors.As(err, &notFound) {
			return Config{}, fmt.Errorf("failed to read config file: %w", err)
		}
	}

	var c Config
	if err := v.Unmarshal(&c); err != nil {
		return Config{}, fmt.Errorf("failed to decode config: %w", err)
	}

	if c.Store.DSN, err = homedir.Expand(c.Store.DSN); err != nil {
		return Config{}, err
	}

	if c.Schema.File, err = homedir.Expand(c.Schema.File); err != nil {
		return Config{}, err
	}

	return c, c.Validate()
}

// Validate reports every invalid value.
func (c Config) Validate() error {
	var result *multierror.Error

	if c.API.URL == "" {
		result = multierror.Append(result, fmt.Errorf("%s is required", KeyAPIURL))
	}

	if c.Entity != "" && c.Entity != schema.MaterialSample && c.Entity != schema.Metadata {
		result = multierror.Append(result, fmt.Errorf("%s must be %q or %q, got %q",
			KeyEntity, schema.MaterialSample, schema.Metadata, c.Entity))
	}

	drivers := []string{store.DriverMemory, store.DriverFile, store.DriverSQLite, store.DriverPostgres}
	if !slices.Contains(drivers, strings.ToLower(c.Store.Driver)) {
		result = multierror.Append(result, fmt.Errorf("%s must be one of %s, got %q",
			KeyStoreDriver, strings.Join(drivers, ", "), c.Store.Driver))
	}

	if c.Save.ChunkSize <= 0 {
		result = multierror.Append(result, fmt.Errorf("%s must be positive, got %d", KeySaveChunkSize, c.Save.ChunkSize))
	}

	if c.Save.Yield < 0 {
		result = multierror.Append(result, fmt.Errorf("%s must not be negative", KeySaveYield))
	}

	return result.ErrorOrNil()
}
