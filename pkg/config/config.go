/*
Package config manages TOML config for wordrank services.
*/
package config

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/bastiangx/wordrank/internal/utils"
	"github.com/bastiangx/wordrank/pkg/dictionary"
	"github.com/bastiangx/wordrank/pkg/suggest"
	"github.com/charmbracelet/log"
)

// AppName names the config directory.
const AppName = "wordrank"

// Config holds the entire config structure
type Config struct {
	Index  IndexConfig  `toml:"index"`
	Server ServerConfig `toml:"server"`
	Dict   DictConfig   `toml:"dict"`
	Bench  BenchConfig  `toml:"bench"`
	CLI    CliConfig    `toml:"cli"`
}

// IndexConfig selects the ranking policy. It is read once, at index construction.
type IndexConfig struct {
	Policy string `toml:"policy"`
}

// ServerConfig has server related options.
type ServerConfig struct {
	MaxLimit     int  `toml:"max_limit"`
	MinPrefix    int  `toml:"min_prefix"`
	MaxPrefix    int  `toml:"max_prefix"`
	EnableFilter bool `toml:"enable_filter"`
	LearnUnknown bool `toml:"learn_unknown"`
}

// DictConfig holds dictionary options.
type DictConfig struct {
	Path     string `toml:"path"`
	Encoding string `toml:"encoding"`
	MaxWords int    `toml:"max_words"`
}

// BenchConfig holds experiment options.
type BenchConfig struct {
	OutputDir    string   `toml:"output_dir"`
	Datasets     []string `toml:"datasets"`
	MemoryMaxExp int      `toml:"memory_max_exp"`
	TypingMaxExp int      `toml:"typing_max_exp"`
	TimeBatches  int      `toml:"time_batches"`
}

// CliConfig holds cli interface options.
type CliConfig struct {
	DefaultLimit    int  `toml:"default_limit"`
	DefaultMinLen   int  `toml:"default_min_len"`
	DefaultMaxLen   int  `toml:"default_max_len"`
	DefaultNoFilter bool `toml:"default_no_filter"`
}

// DefaultConfig returns a Config with default values.
func DefaultConfig() *Config {
	return &Config{
		Index: IndexConfig{
			Policy: suggest.PolicyFrequency,
		},
		Server: ServerConfig{
			MaxLimit:     64,
			MinPrefix:    1,
			MaxPrefix:    60,
			EnableFilter: true,
			LearnUnknown: false,
		},
		Dict: DictConfig{
			Path:     "data/words.txt",
			Encoding: dictionary.EncodingUTF8,
			MaxWords: 0,
		},
		Bench: BenchConfig{
			OutputDir: "out",
			Datasets: []string{
				"data/wikipedia.txt",
				"data/random.txt",
				"data/random_with_distribution.txt",
			},
			MemoryMaxExp: 17,
			TypingMaxExp: 21,
			TimeBatches:  16,
		},
		CLI: CliConfig{
			DefaultLimit:    8,
			DefaultMinLen:   1,
			DefaultMaxLen:   24,
			DefaultNoFilter: false,
		},
	}
}

// Validate rejects values no component can work with.
func (c *Config) Validate() error {
	if _, err := suggest.ParsePolicy(c.Index.Policy); err != nil {
		return fmt.Errorf("index.policy: %w", err)
	}
	if !dictionary.ValidEncoding(c.Dict.Encoding) {
		return fmt.Errorf("dict.encoding: %w: %q", dictionary.ErrUnknownEncoding, c.Dict.Encoding)
	}
	if c.Dict.MaxWords < 0 {
		return fmt.Errorf("dict.max_words must not be negative: %d", c.Dict.MaxWords)
	}
	if c.Server.MaxLimit < 1 {
		return fmt.Errorf("server.max_limit must be positive: %d", c.Server.MaxLimit)
	}
	if c.Server.MinPrefix < 0 || c.Server.MaxPrefix < c.Server.MinPrefix {
		return fmt.Errorf("server prefix bounds invalid: min=%d max=%d", c.Server.MinPrefix, c.Server.MaxPrefix)
	}
	if c.Bench.TimeBatches < 1 {
		return fmt.Errorf("bench.time_batches must be positive: %d", c.Bench.TimeBatches)
	}
	if c.Bench.MemoryMaxExp < 0 || c.Bench.MemoryMaxExp > 62 || c.Bench.TypingMaxExp < 0 || c.Bench.TypingMaxExp > 62 {
		return fmt.Errorf("bench checkpoint exponents out of range: memory=%d typing=%d",
			c.Bench.MemoryMaxExp, c.Bench.TypingMaxExp)
	}
	return nil
}

// GetConfigDir returns the config directory with fallback priority:
// 1. ~/.config/
// 2. ~/Library/Application Support/ (macOS)
// 3. Current executable dir
func GetConfigDir() (string, error) {
	homeDir, err := os.UserHomeDir()
	if err != nil {
		log.Errorf("Failed to get home directory: %v", err)
		return utils.GetExecutableDir()
	}
	primaryPath := filepath.Join(homeDir, ".config", AppName)
	if result := utils.CheckDirStatus(primaryPath); result.Writable {
		return primaryPath, nil
	}
	macOSPath := filepath.Join(homeDir, "Library", "Application Support", AppName)
	if result := utils.CheckDirStatus(macOSPath); result.Writable {
		return macOSPath, nil
	}
	execDir, err := utils.GetExecutableDir()
	if err != nil {
		log.Errorf("Failed to get executable directory: %v", err)
		return "", err
	}
	return execDir, nil
}

// GetDefaultConfigPath returns the default path for config.toml
func GetDefaultConfigPath() (string, error) {
	configDir, err := GetConfigDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(configDir, "config.toml"), nil
}

// LoadConfigWithPriority loads config with priority:
// 1. Custom path from --config flag
// 2. Default path: [UserConfigDir]/wordrank/config.toml
// 3. Builtin defaults
func LoadConfigWithPriority(customConfigPath string) (*Config, string, error) {
	if customConfigPath != "" {
		if _, statErr := os.Stat(customConfigPath); statErr == nil {
			config, err := LoadConfig(customConfigPath)
			if err != nil {
				log.Warnf("Failed to load custom config from %s: %v. Trying default path...", customConfigPath, err)
			} else {
				log.Debugf("Loaded config from custom path: %s", customConfigPath)
				return config, customConfigPath, nil
			}
		} else {
			log.Warnf("Custom config file not found at %s: %v. Trying default path...", customConfigPath, statErr)
		}
	}
	defaultPath, err := GetDefaultConfigPath()
	if err != nil {
		log.Warnf("Failed to determine default config path: %v. Using built-in defaults...", err)
		return DefaultConfig(), "", nil
	}

	config, err := InitConfig(defaultPath)
	if err != nil {
		log.Warnf("Failed to load/create config at default path %s: %v. Using builtin defaults...", defaultPath, err)
		return DefaultConfig(), "", nil
	}
	log.Debugf("Loaded config from default path: %s", defaultPath)
	return config, defaultPath, nil
}

// InitConfig loads config from file or creates default if missing
func InitConfig(configPath string) (*Config, error) {
	configDir := filepath.Dir(configPath)

	if err := utils.EnsureDir(configDir); err != nil {
		log.Warnf("Failed to create config directory %s: %v. Using built-in defaults...", configDir, err)
		return DefaultConfig(), nil
	}

	if !utils.FileExists(configPath) {
		config := DefaultConfig()
		if err := SaveConfig(config, configPath); err != nil {
			log.Warnf("Failed to create default config file at %s: %v. Using built-in defaults...", configPath, err)
			return DefaultConfig(), nil
		}
		log.Debugf("Created default config file at: %s", configPath)
		return config, nil
	}

	config, err := LoadConfig(configPath)
	if err != nil {
		log.Warnf("Failed to load config from %s: %v. Using built-in defaults...", configPath, err)
		return DefaultConfig(), nil
	}
	return config, nil
}

// LoadConfig loads from a TOML file. Values that fail validation are an error.
func LoadConfig(configPath string) (*Config, error) {
	config := DefaultConfig()

	if err := utils.LoadTOMLFile(configPath, config); err != nil {
		config, err = tryPartialParse(configPath)
		if err != nil {
			return nil, err
		}
	}
	if err := config.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config %s: %w", configPath, err)
	}
	return config, nil
}

// tryPartialParse keeps whatever sections of a broken file still decode
func tryPartialParse(configPath string) (*Config, error) {
	config := DefaultConfig()

	tempConfig, err := utils.ParseTOMLWithRecovery(configPath)
	if err != nil {
		log.Warnf("Could not parse any valid configuration from %s: %v. Using all defaults.", configPath, err)
		return config, nil
	}

	if section, ok := utils.ExtractSection(tempConfig, "index"); ok {
		if val, ok := utils.ExtractString(section, "policy"); ok {
			config.Index.Policy = val
		}
	}
	if section, ok := utils.ExtractSection(tempConfig, "server"); ok {
		extractServerConfig(section, &config.Server)
	}
	if section, ok := utils.ExtractSection(tempConfig, "dict"); ok {
		extractDictConfig(section, &config.Dict)
	}
	if section, ok := utils.ExtractSection(tempConfig, "bench"); ok {
		extractBenchConfig(section, &config.Bench)
	}
	if section, ok := utils.ExtractSection(tempConfig, "cli"); ok {
		extractCliConfig(section, &config.CLI)
	}
	return config, nil
}

func extractServerConfig(data map[string]any, server *ServerConfig) {
	if val, ok := utils.ExtractInt64(data, "max_limit"); ok {
		server.MaxLimit = val
	}
	if val, ok := utils.ExtractInt64(data, "min_prefix"); ok {
		server.MinPrefix = val
	}
	if val, ok := utils.ExtractInt64(data, "max_prefix"); ok {
		server.MaxPrefix = val
	}
	if val, ok := utils.ExtractBool(data, "enable_filter"); ok {
		server.EnableFilter = val
	}
	if val, ok := utils.ExtractBool(data, "learn_unknown"); ok {
		server.LearnUnknown = val
	}
}

func extractDictConfig(data map[string]any, dict *DictConfig) {
	if val, ok := utils.ExtractString(data, "path"); ok {
		dict.Path = val
	}
	if val, ok := utils.ExtractString(data, "encoding"); ok {
		dict.Encoding = val
	}
	if val, ok := utils.ExtractInt64(data, "max_words"); ok {
		dict.MaxWords = val
	}
}

func extractBenchConfig(data map[string]any, bench *BenchConfig) {
	if val, ok := utils.ExtractString(data, "output_dir"); ok {
		bench.OutputDir = val
	}
	if val, ok := utils.ExtractStrings(data, "datasets"); ok {
		bench.Datasets = val
	}
	if val, ok := utils.ExtractInt64(data, "memory_max_exp"); ok {
		bench.MemoryMaxExp = val
	}
	if val, ok := utils.ExtractInt64(data, "typing_max_exp"); ok {
		bench.TypingMaxExp = val
	}
	if val, ok := utils.ExtractInt64(data, "time_batches"); ok {
		bench.TimeBatches = val
	}
}

func extractCliConfig(data map[string]any, cli *CliConfig) {
	if val, ok := utils.ExtractInt64(data, "default_limit"); ok {
		cli.DefaultLimit = val
	}
	if val, ok := utils.ExtractInt64(data, "default_min_len"); ok {
		cli.DefaultMinLen = val
	}
	if val, ok := utils.ExtractInt64(data, "default_max_len"); ok {
		cli.DefaultMaxLen = val
	}
	if val, ok := utils.ExtractBool(data, "default_no_filter"); ok {
		cli.DefaultNoFilter = val
	}
}

// SaveConfig saves into a TOML file
func SaveConfig(config *Config, configPath string) error {
	return utils.SaveTOMLFile(config, configPath)
}
