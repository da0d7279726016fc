package config

import (
	"fmt"
	"os"
	"path/filepath"
	"regexp"

	"gopkg.in/yaml.v3"
)

// Config represents the complete configuration for cafkit
type Config struct {
	// Schema is the default type registry file used by from-json.
	Schema      string          `yaml:"schema"`
	AssetsRoot  string          `yaml:"assets_root"`
	RecoverFill bool            `yaml:"recover_fill"`
	JSON        JSONConfig      `yaml:"json"`
	Format      FormatConfig    `yaml:"format"`
	Schemas     []SchemaMapping `yaml:"schemas"`
	Dev         DevConfig       `yaml:"dev"`
}

// JSONConfig controls JSON output
type JSONConfig struct {
	// Indent is the number of spaces per level; 0 prints compact JSON.
	Indent int `yaml:"indent"`
}

// FormatConfig controls the fmt command
type FormatConfig struct {
	Canonical bool `yaml:"canonical"`
}

// SchemaMapping selects a registry file for documents whose path matches
// Pattern. The first matching mapping wins over the default Schema.
type SchemaMapping struct {
	Pattern string `yaml:"pattern"`
	Schema  string `yaml:"schema"`

	// compiled regex (not serialized)
	regex *regexp.Regexp
}

// DevConfig contains development/debug options
type DevConfig struct {
	Debug   bool `yaml:"debug"`
	Verbose bool `yaml:"verbose"`
}

// NewConfig creates a new Config with default values
func NewConfig() *Config {
	return &Config{
		AssetsRoot:  ".",
		RecoverFill: true,
		JSON: JSONConfig{
			Indent: 2,
		},
		Format: FormatConfig{
			Canonical: false,
		},
		Schemas: []SchemaMapping{},
	}
}

// LoadConfig loads configuration from a YAML file
func LoadConfig(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	cfg := NewConfig()
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config file: %w", err)
	}
	if cfg.JSON.Indent < 0 {
		return nil, fmt.Errorf("invalid json.indent %d: must not be negative", cfg.JSON.Indent)
	}

	if err := cfg.compilePatterns(); err != nil {
		return nil, fmt.Errorf("failed to compile patterns: %w", err)
	}

	// Relative paths in the file are relative to the file itself.
	dir := filepath.Dir(path)
	cfg.Schema = resolvePath(dir, cfg.Schema)
	cfg.AssetsRoot = resolvePath(dir, cfg.AssetsRoot)
	for i := range cfg.Schemas {
		cfg.Schemas[i].Schema = resolvePath(dir, cfg.Schemas[i].Schema)
	}

	return cfg, nil
}

func resolvePath(dir, p string) string {
	if p == "" || filepath.IsAbs(p) {
		return p
	}
	return filepath.Join(dir, p)
}

// FindConfigFile searches for a config file in current directory and parents
func FindConfigFile() string {
	configNames := []string{".cafkit.yml", ".cafkit.yaml", "cafkit.yml", "cafkit.yaml"}

	currentDir, err := os.Getwd()
	if err != nil {
		return ""
	}

	for {
		for _, name := range configNames {
			configPath := filepath.Join(currentDir, name)
			if _, err := os.Stat(configPath); err == nil {
				return configPath
			}
		}

		parentDir := filepath.Dir(currentDir)
		if parentDir == currentDir {
			break
		}
		currentDir = parentDir
	}

	return ""
}

func (c *Config) compilePatterns() error {
	for i := range c.Schemas {
		mapping := &c.Schemas[i]
		regex, err := regexp.Compile(mapping.Pattern)
		if err != nil {
			return fmt.Errorf("invalid schema mapping pattern '%s': %w", mapping.Pattern, err)
		}
		mapping.regex = regex
	}
	return nil
}

// Matches checks if this mapping applies to the given document path
func (m *SchemaMapping) Matches(path string) bool {
	if m.regex == nil {
		regex, err := regexp.Compile(m.Pattern)
		if err != nil {
			return false
		}
		m.regex = regex
	}
	return m.regex.MatchString(filepath.ToSlash(path))
}

// SchemaFor returns the registry file for a document path: the first
// matching mapping, or the default Schema.
func (c *Config) SchemaFor(path string) string {
	for i := range c.Schemas {
		if c.Schemas[i].Matches(path) {
			return c.Schemas[i].Schema
		}
	}
	return c.Schema
}

// MergeConfigs merges CLI overrides into a base config.
// Non-empty values from override take precedence over base values.
func MergeConfigs(base, override *Config) *Config {
	merged := *base

	if override.Schema != "" {
		merged.Schema = override.Schema
	}
	if override.AssetsRoot != "" {
		merged.AssetsRoot = override.AssetsRoot
	}
	if override.JSON.Indent != 0 {
		merged.JSON.Indent = override.JSON.Indent
	}
	if len(override.Schemas) > 0 {
		merged.Schemas = append(append([]SchemaMapping{}, override.Schemas...), base.Schemas...)
	}

	// Booleans can only be switched on by an override.
	merged.Format.Canonical = base.Format.Canonical || override.Format.Canonical
	merged.Dev.Debug = base.Dev.Debug || override.Dev.Debug
	merged.Dev.Verbose = base.Dev.Verbose || override.Dev.Verbose

	return &merged
}

// CLIOverrides are the flag values that take precedence over the config
// file. Zero values mean "not set".
type CLIOverrides struct {
	Schema     string
	AssetsRoot string
	Canonical  bool
	Debug      bool
}

// LoadConfigWithCLI loads config with CLI argument precedence
func LoadConfigWithCLI(configPath string, cli CLIOverrides) (*Config, error) {
	cfg := NewConfig()

	if configPath != "" {
		fileConfig, err := LoadConfig(configPath)
		if err != nil {
			return nil, err
		}
		cfg = fileConfig
	}

	return MergeConfigs(cfg, &Config{
		Schema:     cli.Schema,
		AssetsRoot: cli.AssetsRoot,
		Format:     FormatConfig{Canonical: cli.Canonical},
		Dev:        DevConfig{Debug: cli.Debug},
	}), nil
}
