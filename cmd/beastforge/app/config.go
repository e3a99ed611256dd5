package app

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

// Config holds all application configuration.
type Config struct {
	// CLI settings
	Verbose bool `mapstructure:"verbose"`
	Quiet   bool `mapstructure:"quiet"`
	NoColor bool `mapstructure:"no_color"`

	// Conversion settings
	InputFolder   string `mapstructure:"input_folder"`
	OutputFolder  string `mapstructure:"output_folder"`
	Clean         bool   `mapstructure:"clean"`
	StrictQuoting bool   `mapstructure:"strict_quoting"`
	ReportKeys    bool   `mapstructure:"report_keys"`
	TestDoc       string `mapstructure:"test_doc"`

	// Logging settings
	LogLevel  string `mapstructure:"log_level"`
	LogFormat string `mapstructure:"log_format"`
	LogOutput string `mapstructure:"log_output"`

	// ConfigFile path if explicitly set
	ConfigFile string `mapstructure:"-"`
}

// LoadConfig loads configuration from environment variables and config files.
// Precedence (highest to lowest): environment variables, config file, defaults.
func LoadConfig() (*Config, error) {
	// Load .env file if present, ignore errors since it's optional
	_ = godotenv.Load()

	v := viper.New()

	// Set defaults
	v.SetDefault("verbose", false)
	v.SetDefault("quiet", false)
	v.SetDefault("no_color", false)
	v.SetDefault("input_folder", "data")
	v.SetDefault("output_folder", "bestiary")
	v.SetDefault("clean", false)
	v.SetDefault("strict_quoting", false)
	v.SetDefault("report_keys", false)
	v.SetDefault("test_doc", "")
	v.SetDefault("log_level", "")
	v.SetDefault("log_format", "console")
	v.SetDefault("log_output", "stderr")

	// Environment variables
	v.SetEnvPrefix("BEASTFORGE")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	// Config file locations
	if configFile := os.Getenv("BEASTFORGE_CONFIG"); configFile != "" {
		v.SetConfigFile(configFile)
	} else {
		v.SetConfigName(".beastforge")
		v.SetConfigType("yaml")
		if home, err := os.UserHomeDir(); err == nil {
			v.AddConfigPath(home)
		}
		v.AddConfigPath(".")
	}

	// Read config file if it exists
	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) && !os.IsNotExist(err) {
			return nil, fmt.Errorf("reading config file: %w", err)
		}
	}

	var config Config
	if err := v.Unmarshal(&config); err != nil {
		return nil, fmt.Errorf("unmarshaling config: %w", err)
	}
	config.ConfigFile = v.ConfigFileUsed()

	return &config, nil
}

// DataPath returns the path to the monster database inside the input folder.
func (c *Config) DataPath() string {
	return filepath.Join(c.InputFolder, "data.json")
}
