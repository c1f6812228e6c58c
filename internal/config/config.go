package config

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/ludo-technologies/refit/domain"
	"github.com/spf13/viper"
)

// ScanConfig controls which staged files the engine picks up.
type ScanConfig struct {
	// IncludePatterns are glob patterns a staged file's name must match.
	IncludePatterns []string `json:"includePatterns" mapstructure:"includePatterns" yaml:"includePatterns"`

	// ExcludePatterns are glob patterns (or path substrings) that drop a
	// staged file even if it matched an include pattern.
	ExcludePatterns []string `json:"excludePatterns" mapstructure:"excludePatterns" yaml:"excludePatterns"`

	// Recursive is accepted in the config file but no command reads it:
	// the staging directory is always read one level deep, and
	// `integrate --from` recurses only when its --recursive flag is set.
	Recursive bool `json:"recursive" mapstructure:"recursive" yaml:"recursive"`
}

// Config is refit's full external configuration surface: the engine's
// IntegrationConfig (source/target directories, merge policy, build
// gate, state store) plus the staging-directory scan options that
// decide which files the engine even considers.
type Config struct {
	Integration domain.IntegrationConfig `json:"integration" mapstructure:"integration" yaml:"integration"`
	Scan        ScanConfig               `json:"scan" mapstructure:"scan" yaml:"scan"`
}

// DefaultConfig returns the conservative defaults a fresh `refit init`
// run or an unconfigured invocation falls back to.
func DefaultConfig() *Config {
	return &Config{
		Integration: *domain.DefaultIntegrationConfig(),
		Scan: ScanConfig{
			IncludePatterns: []string{"**/*.ts", "**/*.tsx", "**/*.js", "**/*.jsx"},
			ExcludePatterns: []string{
				"node_modules",
				"dist",
				"build",
				".git",
				"*.min.js",
				"*.d.ts",
			},
			Recursive: true,
		},
	}
}

// LoadConfig loads configuration from file or returns default config
func LoadConfig(configPath string) (*Config, error) {
	return LoadConfigWithTarget(configPath, "")
}

// discoverConfigFile finds the appropriate config file path
// Single responsibility: configuration file discovery only
func discoverConfigFile(targetPath string) string {
	return findDefaultConfig(targetPath)
}

// loadConfigFromFile reads and parses a configuration file
// Single responsibility: file loading and parsing only
func loadConfigFromFile(configPath string) (*Config, error) {
	if configPath == "" {
		return DefaultConfig(), nil
	}

	// Create a new viper instance to avoid race conditions
	v := viper.New()
	config := DefaultConfig()
	v.SetConfigFile(configPath)

	// Read config file
	if err := v.ReadInConfig(); err != nil {
		return nil, fmt.Errorf("failed to read config file %s: %w", configPath, err)
	}

	// Unmarshal into config struct
	if err := v.Unmarshal(config); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	// Validate configuration
	if err := config.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	return config, nil
}

// LoadConfigWithTarget loads configuration with target path context
// Orchestrates discovery and loading but delegates specific concerns
func LoadConfigWithTarget(configPath string, targetPath string) (*Config, error) {
	// If no config path specified, discover one
	if configPath == "" {
		configPath = discoverConfigFile(targetPath)
	}

	// Load the configuration from the determined path
	return loadConfigFromFile(configPath)
}

// searchConfigInDirectory searches for configuration files in a specific directory
func searchConfigInDirectory(dir string, candidates []string) string {
	for _, candidate := range candidates {
		path := filepath.Join(dir, candidate)
		if _, err := os.Stat(path); err == nil {
			return path
		}
	}
	return ""
}

// findDefaultConfig looks for default configuration files in common locations
// targetPath is the path being analyzed (the staging directory)
func findDefaultConfig(targetPath string) string {
	candidates := []string{
		"refit.config.json",
		"refit.yaml",
		"refit.yml",
		".refit.json",
		".refit.yaml",
	}

	// If targetPath is provided, search from there upward
	if targetPath != "" {
		// Convert to absolute path
		absPath, err := filepath.Abs(targetPath)
		if err == nil {
			// If it's a file, start from its directory
			info, err := os.Stat(absPath)
			if err == nil && !info.IsDir() {
				absPath = filepath.Dir(absPath)
			}

			// Search from target directory up to root with robust termination
			// Handle Windows edge cases: volume roots (C:\), UNC paths (\\server\share), long paths
			volume := filepath.VolumeName(absPath)
			for dir := absPath; ; dir = filepath.Dir(dir) {
				if config := searchConfigInDirectory(dir, candidates); config != "" {
					return config
				}

				// Robust termination conditions for cross-platform compatibility
				parent := filepath.Dir(dir)
				if parent == dir || // Unix-style root reached (/), Windows UNC root (\\server)
					dir == volume || // Windows volume root reached (C:\)
					(volume != "" && dir == volume+string(filepath.Separator)) { // Alternative volume root format
					break
				}
			}
		}
	}

	// Fallback to current directory
	if config := searchConfigInDirectory(".", candidates); config != "" {
		return config
	}

	// Check XDG config directory (Linux/Mac standard)
	if xdgConfig := os.Getenv("XDG_CONFIG_HOME"); xdgConfig != "" {
		if config := searchConfigInDirectory(filepath.Join(xdgConfig, "refit"), candidates); config != "" {
			return config
		}
	}

	// Check ~/.config/refit/ (XDG default)
	if home, err := os.UserHomeDir(); err == nil {
		configDir := filepath.Join(home, ".config", "refit")
		if config := searchConfigInDirectory(configDir, candidates); config != "" {
			return config
		}

		// Check home directory (backward compatibility)
		if config := searchConfigInDirectory(home, candidates); config != "" {
			return config
		}
	}

	// Check REFIT_CONFIG environment variable as fallback
	if envConfig := os.Getenv("REFIT_CONFIG"); envConfig != "" {
		if _, err := os.Stat(envConfig); err == nil {
			return envConfig
		}
	}

	return ""
}

// Validate validates the configuration values
func (c *Config) Validate() error {
	if c.Integration.SourceDirectory == "" {
		return fmt.Errorf("integration.sourceDirectory must not be empty")
	}
	if c.Integration.TargetDirectory == "" {
		return fmt.Errorf("integration.targetDirectory must not be empty")
	}
	if c.Integration.SourceDirectory == c.Integration.TargetDirectory {
		return fmt.Errorf("integration.sourceDirectory and targetDirectory must differ, both are %q", c.Integration.SourceDirectory)
	}

	if c.Integration.VerifyAfterEach {
		if c.Integration.BuildGate.Command == "" {
			return fmt.Errorf("integration.buildGate.command must not be empty when verifyAfterEach is true")
		}
	}

	if c.Integration.StateStore.Path == "" {
		return fmt.Errorf("integration.stateStore.path must not be empty")
	}

	if len(c.Scan.IncludePatterns) == 0 {
		return fmt.Errorf("scan.includePatterns cannot be empty")
	}

	return nil
}

// SaveConfig saves configuration to a YAML file
func SaveConfig(config *Config, path string) error {
	// Create a new viper instance to avoid race conditions
	v := viper.New()
	v.SetConfigFile(path)
	v.SetConfigType("yaml")

	v.Set("integration", config.Integration)
	v.Set("scan", config.Scan)

	return v.WriteConfig()
}
