// Package config defines the data structures related to configuration and
// includes functions for loading and checking the config.
package config

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"strings"
	"time"

	"github.com/iwvelando/mortgage-calculator/pkg/constants"
	"github.com/iwvelando/mortgage-calculator/pkg/format"
	"github.com/iwvelando/mortgage-calculator/pkg/mortgage"
	"github.com/iwvelando/mortgage-calculator/pkg/validation"
	"github.com/spf13/viper"
	"gopkg.in/yaml.v3"
)

// Configuration holds all configuration for mortgage-calculator.
type Configuration struct {
	Logging  LoggingConfig     `yaml:"logging,omitempty"`
	Output   OutputConfig      `yaml:"output,omitempty"`
	Scenario mortgage.Scenario `yaml:"scenario"`
	Server   ServerConfig      `yaml:"server,omitempty"`
	Cache    CacheConfig       `yaml:"cache,omitempty"`
}

// LoggingConfig holds logging configuration options
type LoggingConfig struct {
	Level      string `yaml:"level,omitempty"`      // debug, info, warn, error
	Format     string `yaml:"format,omitempty"`     // json, console
	OutputFile string `yaml:"outputFile,omitempty"` // optional file output
}

// OutputConfig holds output format configuration options
type OutputConfig struct {
	Format   string `yaml:"format,omitempty"`   // pretty, csv, json
	Locale   string `yaml:"locale,omitempty"`   // e.g. de-DE, en-US
	Currency string `yaml:"currency,omitempty"` // ISO 4217 code
}

// ServerConfig holds the HTTP server options.
type ServerConfig struct {
	Address     string `yaml:"address,omitempty"`
	MaxBodySize string `yaml:"maxBodySize,omitempty"` // e.g. 64K, 1M
}

// CacheConfig selects where computed results are memoised.
type CacheConfig struct {
	Backend      string        `yaml:"backend,omitempty"` // none, memory, redis
	RedisAddress string        `yaml:"redisAddress,omitempty"`
	RedisDB      int           `yaml:"redisDB,omitempty"`
	TTL          time.Duration `yaml:"ttl,omitempty"`
	KeyPrefix    string        `yaml:"keyPrefix,omitempty"`
}

func newViper() *viper.Viper {
	v := viper.New()
	v.SetConfigType("yml")
	v.SetEnvPrefix(constants.DefaultEnvironmentPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	defaults := mortgage.DefaultScenario()
	v.SetDefault("logging.level", "")
	v.SetDefault("logging.format", "")
	v.SetDefault("logging.outputFile", "")
	v.SetDefault("output.format", constants.OutputFormatPretty)
	v.SetDefault("output.locale", constants.DefaultLocale)
	v.SetDefault("output.currency", constants.DefaultCurrencyCode)
	v.SetDefault("scenario.price", defaults.Price)
	v.SetDefault("scenario.equity", defaults.Equity)
	v.SetDefault("scenario.transferTax", defaults.TransferTax)
	v.SetDefault("scenario.notaryFee", defaults.NotaryFee)
	v.SetDefault("scenario.brokerFee", defaults.BrokerFee)
	v.SetDefault("scenario.interestRate", defaults.InterestRate)
	v.SetDefault("scenario.repaymentRate", defaults.RepaymentRate)
	v.SetDefault("scenario.termYears", defaults.TermYears)
	v.SetDefault("server.address", constants.DefaultServerAddress)
	v.SetDefault("server.maxBodySize", fmt.Sprintf("%d", constants.DefaultMaxBodySizeBytes))
	v.SetDefault("cache.backend", constants.CacheBackendNone)
	v.SetDefault("cache.redisAddress", constants.DefaultRedisAddress)
	v.SetDefault("cache.redisDB", 0)
	v.SetDefault("cache.ttl", "1h")
	v.SetDefault("cache.keyPrefix", constants.DefaultCacheKeyPrefix)
	return v
}

func decode(v *viper.Viper) (*Configuration, error) {
	var configuration Configuration
	if err := v.Unmarshal(&configuration); err != nil {
		return nil, fmt.Errorf("unable to decode into struct, %w", err)
	}
	return &configuration, nil
}

// Default returns the configuration used when no file is given, including
// overrides from MORTGAGE_* environment variables.
func Default() *Configuration {
	conf, err := decode(newViper())
	if err != nil {
		// Defaults always decode; only a malformed environment override lands here.
		return &Configuration{Scenario: mortgage.DefaultScenario()}
	}
	return conf
}

// LoadConfiguration takes a file path as input and loads the YAML-formatted
// configuration there.
func LoadConfiguration(configPath string) (*Configuration, error) {
	v := newViper()
	v.SetConfigFile(configPath)
	if err := v.ReadInConfig(); err != nil {
		return nil, fmt.Errorf("error reading config file, %w", err)
	}
	return decode(v)
}

// LoadConfigurationFromReader loads YAML-formatted configuration from r.
func LoadConfigurationFromReader(r io.Reader) (*Configuration, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, fmt.Errorf("error reading config data, %w", err)
	}
	v := newViper()
	if len(bytes.TrimSpace(data)) > 0 {
		if err := v.ReadConfig(bytes.NewReader(data)); err != nil {
			return nil, fmt.Errorf("error reading config data, %w", err)
		}
	}
	return decode(v)
}

// LoadConfigurationOrDefault loads the file at configPath, falling back to
// Default when the file does not exist.
func LoadConfigurationOrDefault(configPath string) (*Configuration, error) {
	if configPath == "" {
		return Default(), nil
	}
	if _, err := os.Stat(configPath); err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return Default(), nil
		}
		return nil, fmt.Errorf("failed to stat config file: %w", err)
	}
	return LoadConfiguration(configPath)
}

// Check returns an error for settings that make the program unusable.
func (conf *Configuration) Check() error {
	if err := validation.ValidateOutputFormat(conf.Output.Format); err != nil {
		return err
	}
	if _, err := format.NewFormatter(conf.Output.Locale, conf.Output.Currency); err != nil {
		return err
	}
	switch conf.Cache.Backend {
	case "", constants.CacheBackendNone, constants.CacheBackendMemory, constants.CacheBackendRedis:
	default:
		return fmt.Errorf("unsupported cache backend %q", conf.Cache.Backend)
	}
	if _, err := ParseSize(conf.Server.MaxBodySize); err != nil {
		return err
	}
	return nil
}

// ValidateConfiguration checks the configured default scenario and returns
// advisory warnings.
func (conf *Configuration) ValidateConfiguration() []string {
	errs := validation.ValidateScenario(conf.Scenario)
	warnings := make([]string, 0, len(errs))
	for _, field := range errs.Fields() {
		warnings = append(warnings, fmt.Sprintf("scenario.%s: %s", field, errs[field]))
	}
	return warnings
}

// Formatter returns the currency formatter for the configured locale.
func (conf *Configuration) Formatter() (*format.Formatter, error) {
	return format.NewFormatter(conf.Output.Locale, conf.Output.Currency)
}

// MaxBodySizeBytes returns the configured request body limit in bytes.
func (conf *Configuration) MaxBodySizeBytes() int64 {
	size, err := ParseSize(conf.Server.MaxBodySize)
	if err != nil || size <= 0 {
		return constants.DefaultMaxBodySizeBytes
	}
	return size
}

// YAML renders the effective configuration.
func (conf *Configuration) YAML() ([]byte, error) {
	data, err := yaml.Marshal(conf)
	if err != nil {
		return nil, fmt.Errorf("failed to encode configuration: %w", err)
	}
	return data, nil
}
