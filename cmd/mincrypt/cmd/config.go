package cmd

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/sirupsen/logrus"
	"gopkg.in/yaml.v3"

	"github.com/OhanaFS/mincrypt"
	"github.com/OhanaFS/mincrypt/header"
)

// DefaultConfigName is looked up in the home directory when no -config flag
// is given.
const DefaultConfigName = ".mincrypt.yaml"

// ErrInvalidConfig is a parameter error, so it maps to the parameter exit code.
var ErrInvalidConfig = fmt.Errorf("%w: invalid config", mincrypt.ErrParameter)

// Config holds the settings shared by the subcommands. Flags override it.
type Config struct {
	Salt       string `yaml:"salt"`
	Multiplier int    `yaml:"multiplier"`
	Encoding   string `yaml:"encoding"`
	SimpleMode bool   `yaml:"simple_mode"`
	PublicKey  string `yaml:"public_key"`
	PrivateKey string `yaml:"private_key"`
	LogLevel   string `yaml:"log_level"`
}

// DefaultConfig returns the settings used when no config file exists.
func DefaultConfig() *Config {
	return &Config{
		Multiplier: -1,
		Encoding:   header.Binary.String(),
		LogLevel:   logrus.InfoLevel.String(),
	}
}

// DefaultConfigPath returns ~/.mincrypt.yaml, or "" if there is no home
// directory.
func DefaultConfigPath() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return ""
	}
	return filepath.Join(home, DefaultConfigName)
}

// LoadConfig reads the YAML file at path over the defaults. A missing file
// is only an error when required is set.
func LoadConfig(path string, required bool) (*Config, error) {
	cfg := DefaultConfig()
	if path == "" {
		return cfg, nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) && !required {
			return cfg, nil
		}
		return nil, err
	}
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("%w: %s: %v", ErrInvalidConfig, path, err)
	}
	return cfg, cfg.Validate()
}

// EncodingType returns the configured chunk encoding.
func (c *Config) EncodingType() (header.Encoding, error) {
	switch c.Encoding {
	case "", header.Binary.String():
		return mincrypt.Binary, nil
	case header.Base64.String():
		return mincrypt.Base64, nil
	}
	return 0, fmt.Errorf("%w: unknown encoding %q", ErrInvalidConfig, c.Encoding)
}

// Level returns the configured log level.
func (c *Config) Level() (logrus.Level, error) {
	if c.LogLevel == "" {
		return logrus.InfoLevel, nil
	}
	level, err := logrus.ParseLevel(c.LogLevel)
	if err != nil {
		return 0, fmt.Errorf("%w: %v", ErrInvalidConfig, err)
	}
	return level, nil
}

// Validate checks the config for values the library would reject later.
func (c *Config) Validate() error {
	enc, err := c.EncodingType()
	if err != nil {
		return err
	}
	if c.Multiplier == 0 {
		return fmt.Errorf("%w: multiplier must not be 0", ErrInvalidConfig)
	}
	if c.SimpleMode && enc != mincrypt.Binary {
		return fmt.Errorf("%w: simple_mode requires binary encoding", ErrInvalidConfig)
	}
	_, err = c.Level()
	return err
}
