package logger

import (
	"fmt"
	"slices"
)

// Config contains logging configuration.
type Config struct {
	Level     string     `yaml:"level" mapstructure:"level"`
	Format    string     `yaml:"format" mapstructure:"format"`
	Output    string     `yaml:"output" mapstructure:"output"`
	NoColor   bool       `yaml:"no_color" mapstructure:"no_color"`
	Timestamp bool       `yaml:"timestamp" mapstructure:"timestamp"`
	Caller    bool       `yaml:"caller" mapstructure:"caller"`
	File      FileConfig `yaml:"file" mapstructure:"file"`
}

// FileConfig controls the rotating log file used when Output is "file".
type FileConfig struct {
	Path       string `yaml:"path" mapstructure:"path"`
	MaxSize    int    `yaml:"max_size" mapstructure:"max_size"`       // megabytes
	MaxBackups int    `yaml:"max_backups" mapstructure:"max_backups"` // number of backups
	MaxAge     int    `yaml:"max_age" mapstructure:"max_age"`         // days
	Compress   bool   `yaml:"compress" mapstructure:"compress"`
	LocalTime  bool   `yaml:"local_time" mapstructure:"local_time"`
}

// ApplyDefaults applies default values to logging configuration.
func (c *Config) ApplyDefaults() {
	if c.Level == "" {
		c.Level = "info"
	}
	if c.Format == "" {
		c.Format = FormatConsole
	}
	if c.Output == "" {
		c.Output = "stdout"
	}
	if c.File.Path == "" {
		c.File.Path = "logs/voxscribe.log"
	}
	if c.File.MaxSize == 0 {
		c.File.MaxSize = 100
	}
	if c.File.MaxBackups == 0 {
		c.File.MaxBackups = 3
	}
	if c.File.MaxAge == 0 {
		c.File.MaxAge = 28
	}
	c.Timestamp = true
}

// Validate validates logging configuration.
func (c *Config) Validate() error {
	validLevels := []string{"trace", "debug", "info", "warn", "error", "fatal"}
	if !slices.Contains(validLevels, c.Level) {
		return fmt.Errorf("logging.level must be one of %v (got: %s)", validLevels, c.Level)
	}
	validFormats := []string{FormatJSON, FormatConsole, FormatPretty}
	if !slices.Contains(validFormats, c.Format) {
		return fmt.Errorf("logging.format must be one of %v (got: %s)", validFormats, c.Format)
	}
	validOutputs := []string{"stdout", "stderr", "file"}
	if !slices.Contains(validOutputs, c.Output) {
		return fmt.Errorf("logging.output must be one of %v (got: %s)", validOutputs, c.Output)
	}
	return nil
}
