// Package config defines the data structures related to configuration and
// includes functions for loading, normalizing and validating it.
package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"github.com/iwvelando/corporate-valuation/pkg/constants"
	"github.com/iwvelando/corporate-valuation/pkg/validation"
	"github.com/joho/godotenv"
	"github.com/spf13/viper"
	"gopkg.in/yaml.v3"
)

// Configuration holds all configuration for a valuation run.
type Configuration struct {
	Logging  LoggingConfig      `yaml:"logging,omitempty" mapstructure:"logging"`
	Output   OutputConfig       `yaml:"output,omitempty" mapstructure:"output"`
	DCF      []DCFScenario      `yaml:"dcf,omitempty" mapstructure:"dcf"`
	Extended []ExtendedScenario `yaml:"extended,omitempty" mapstructure:"extended"`
	LBO      []LBOScenario      `yaml:"lbo,omitempty" mapstructure:"lbo"`
}

// LoggingConfig holds logging configuration options
type LoggingConfig struct {
	Level      string `yaml:"level,omitempty" mapstructure:"level"`           // debug, info, warn, error
	Format     string `yaml:"format,omitempty" mapstructure:"format"`         // json, console
	OutputFile string `yaml:"outputFile,omitempty" mapstructure:"outputFile"` // optional file output
}

// OutputConfig holds output format configuration options
type OutputConfig struct {
	Format string `yaml:"format,omitempty" mapstructure:"format"` // pretty, csv, json
}

// envKeys are bound explicitly so that overrides apply even when the key is
// absent from the file.
var envKeys = []string{
	"logging.level",
	"logging.format",
	"logging.outputFile",
	"output.format",
}

// LoadConfiguration takes a file path as input and loads the YAML-formatted
// configuration there. A .env file next to the configuration is loaded
// first; variables already present in the environment win.
func LoadConfiguration(configPath string) (*Configuration, error) {
	if err := loadDotEnv(filepath.Join(filepath.Dir(configPath), constants.DotEnvFile)); err != nil {
		return nil, err
	}

	v := viper.New()
	v.SetConfigFile(configPath)
	v.SetConfigType("yml")
	v.SetEnvPrefix(constants.EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()
	for _, key := range envKeys {
		if err := v.BindEnv(key); err != nil {
			return nil, fmt.Errorf("error binding environment for %s, %s", key, err)
		}
	}

	if err := v.ReadInConfig(); err != nil {
		return nil, fmt.Errorf("error reading config file, %s", err)
	}

	var configuration Configuration
	if err := v.Unmarshal(&configuration); err != nil {
		return nil, fmt.Errorf("unable to decode into struct, %s", err)
	}

	if err := configuration.Normalize(); err != nil {
		return nil, err
	}

	return &configuration, nil
}

func loadDotEnv(path string) error {
	if _, err := os.Stat(path); err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil
		}
		return fmt.Errorf("error checking env file %s, %s", path, err)
	}
	if err := godotenv.Load(path); err != nil {
		return fmt.Errorf("error loading env file %s, %s", path, err)
	}
	return nil
}

// Normalize applies defaults and canonical names to every scenario and
// sensitivity directive.
func (c *Configuration) Normalize() error {
	if c.Output.Format == "" {
		c.Output.Format = constants.OutputFormatPretty
	}
	for i := range c.Extended {
		if err := c.Extended[i].Normalize(); err != nil {
			return fmt.Errorf("extended scenario %q: %w", c.Extended[i].Name, err)
		}
	}
	return nil
}

// Validate returns the first hard error in the configuration.
func (c *Configuration) Validate() error {
	if err := validation.ValidateOutputFormat(c.Output.Format); err != nil {
		return err
	}
	seen := make(map[string]string)
	check := func(kind, name string) error {
		if strings.TrimSpace(name) == "" {
			return fmt.Errorf("%s scenario requires a name", kind)
		}
		if prev, ok := seen[name]; ok {
			return fmt.Errorf("scenario name %q is used by both a %s and a %s scenario", name, prev, kind)
		}
		seen[name] = kind
		return nil
	}

	for _, s := range c.DCF {
		if err := check(KindDCF, s.Name); err != nil {
			return err
		}
		if err := s.Assumptions.Validate(); err != nil {
			return fmt.Errorf("dcf scenario %q: %w", s.Name, err)
		}
	}
	for i := range c.Extended {
		s := &c.Extended[i]
		if err := check(KindExtended, s.Name); err != nil {
			return err
		}
		if err := s.Validate(); err != nil {
			return fmt.Errorf("extended scenario %q: %w", s.Name, err)
		}
	}
	for _, s := range c.LBO {
		if err := check(KindLBO, s.Name); err != nil {
			return err
		}
		if err := s.Assumptions.Validate(); err != nil {
			return fmt.Errorf("lbo scenario %q: %w", s.Name, err)
		}
	}
	return nil
}

// ValidateConfiguration performs general validation of the configuration and returns warnings
func (c *Configuration) ValidateConfiguration() []string {
	var scenarios []validation.ScenarioConfig
	for _, s := range c.DCF {
		scenarios = append(scenarios, s.validationView())
	}
	for _, s := range c.Extended {
		scenarios = append(scenarios, s.validationView())
	}
	for _, s := range c.LBO {
		scenarios = append(scenarios, s.validationView())
	}

	validator := validation.ConfigValidator{Scenarios: scenarios}
	return validator.ValidateAll()
}

// HasActiveScenarios reports whether any scenario is marked active.
func (c *Configuration) HasActiveScenarios() bool {
	for _, s := range c.DCF {
		if s.Active {
			return true
		}
	}
	for _, s := range c.Extended {
		if s.Active {
			return true
		}
	}
	for _, s := range c.LBO {
		if s.Active {
			return true
		}
	}
	return false
}

// ExportYAML renders the normalized configuration back to YAML.
func (c *Configuration) ExportYAML() ([]byte, error) {
	out, err := yaml.Marshal(c)
	if err != nil {
		return nil, fmt.Errorf("unable to encode configuration, %w", err)
	}
	return out, nil
}
