package config

import (
	"bytes"
	_ "embed"
	"fmt"
	"os"

	yaml "gopkg.in/yaml.v3"

	"github.com/rupor-github/gencfg"
)

//go:embed config.yaml.tmpl
var ConfigTmpl []byte

type (
	// ContainersConfig describes how name of container stylesheet is derived
	// from name of base stylesheet.
	ContainersConfig struct {
		// base names which always produce Name in the same directory
		Defaults []string `yaml:"defaults" validate:"dive,required,endswith=.css"`
		Name     string   `yaml:"name" validate:"required,endswith=.css"`
		Suffix   string   `yaml:"suffix" validate:"required"`
		Template string   `yaml:"template"`
	}

	ExtractConfig struct {
		Input         string           `yaml:"input" validate:"required"`
		Output        string           `yaml:"output" validate:"required"`
		InvalidSuffix string           `yaml:"invalid_suffix" validate:"required"`
		Containers    ContainersConfig `yaml:"containers"`
	}

	ColorsConfig struct {
		Enable bool `yaml:"enable"`
	}

	UnicodeConfig struct {
		Dir        string   `yaml:"dir" sanitize:"path_clean"`
		Extensions []string `yaml:"extensions" validate:"min=1,dive,required,startswith=."`
		// code points to escape, hexadecimal
		Escape []string `yaml:"escape" validate:"min=1,dive,hexadecimal"`
	}

	Config struct {
		Version   int            `yaml:"version" validate:"eq=1"`
		Extract   ExtractConfig  `yaml:"extract"`
		Colors    ColorsConfig   `yaml:"colors"`
		Unicode   UnicodeConfig  `yaml:"unicode"`
		Logging   LoggingConfig  `yaml:"logging"`
		Reporting ReporterConfig `yaml:"reporting"`
	}
)

func unmarshalConfig(data []byte, cfg *Config, process bool) (*Config, error) {
	// We want to use only fields we defined so we cannot use yaml.Unmarshal
	// directly here
	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)
	if err := dec.Decode(cfg); err != nil {
		return nil, fmt.Errorf("failed to decode configuration data: %w", err)
	}
	if process {
		// sanitize and validate what has been loaded
		if err := gencfg.Sanitize(cfg); err != nil {
			return nil, err
		}
		if err := gencfg.Validate(cfg); err != nil {
			return nil, err
		}
	}
	return cfg, nil
}

// LoadConfiguration reads the configuration from the file at the given path,
// superimposes its values on top of expanded configuration template to provide
// sane defaults and performs validation.
func LoadConfiguration(path string, options ...func(*gencfg.ProcessingOptions)) (*Config, error) {
	haveFile := len(path) > 0

	data, err := gencfg.Process(ConfigTmpl, options...)
	if err != nil {
		return nil, fmt.Errorf("failed to process configuration template: %w", err)
	}
	cfg, err := unmarshalConfig(data, &Config{}, !haveFile)
	if err != nil {
		return nil, fmt.Errorf("failed to process configuration template: %w", err)
	}
	if !haveFile {
		return cfg, nil
	}

	// overwrite cfg values with values from the file
	data, err = os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}
	cfg, err = unmarshalConfig(data, cfg, haveFile)
	if err != nil {
		return nil, fmt.Errorf("failed to process configuration file: %w", err)
	}
	return cfg, nil
}

// Prepare generates configuration file from template and returns it as a byte
// slice.
func Prepare() ([]byte, error) {
	return gencfg.Process(ConfigTmpl)
}

func Dump(cfg *Config) ([]byte, error) {
	data, err := yaml.Marshal(*cfg)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal config to yaml: %v", err)
	}
	return data, nil
}
