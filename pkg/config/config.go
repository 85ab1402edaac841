/*
Package config manages TOML config for SwipeServe services.
*/
package config

import (
	"os"
	"path/filepath"
	"time"

	"github.com/bastiangx/swipeserve/internal/utils"
	"github.com/charmbracelet/log"
)

// Config holds the entire config structure
type Config struct {
	Server      ServerConfig      `toml:"server"`
	Dict        DictConfig        `toml:"dict"`
	Swipe       SwipeConfig       `toml:"swipe"`
	Predict     PredictConfig     `toml:"predict"`
	Autocorrect AutocorrectConfig `toml:"autocorrect"`
	Remote      RemoteConfig      `toml:"remote"`
	CLI         CliConfig         `toml:"cli"`
}

// ServerConfig has server related options.
type ServerConfig struct {
	MaxLimit     int  `toml:"max_limit"`
	MinPrefix    int  `toml:"min_prefix"`
	MaxPrefix    int  `toml:"max_prefix"`
	EnableFilter bool `toml:"enable_filter"`
}

// DictConfig holds dictionary options.
type DictConfig struct {
	MaxWords        int    `toml:"max_words"`
	DataDir         string `toml:"data_dir"`
	WordList        string `toml:"word_list"`
	DefaultLanguage string `toml:"default_language"`
	UseBuiltin      bool   `toml:"use_builtin"`
}

// SwipeConfig holds keyboard geometry and path filtering options.
type SwipeConfig struct {
	Width             float64 `toml:"width"`
	Height            float64 `toml:"height"`
	CellSize          float64 `toml:"cell_size"`
	MinPathLength     int     `toml:"min_path_length"`
	MaxPathPoints     int     `toml:"max_path_points"`
	VelocityThreshold float64 `toml:"velocity_threshold"`
}

// PredictConfig holds options for the prediction orchestrator.
type PredictConfig struct {
	TimeoutMs    int `toml:"timeout_ms"`
	DefaultLimit int `toml:"default_limit"`
}

// AutocorrectConfig holds the correction engine limits.
type AutocorrectConfig struct {
	CacheSize          int     `toml:"cache_size"`
	MaxSuggestions     int     `toml:"max_suggestions"`
	MaxCandidates      int     `toml:"max_candidates"`
	FuzzyScale         float64 `toml:"fuzzy_scale"`
	LearnedCapacity    int     `toml:"learned_capacity"`
	AutoApplyThreshold float64 `toml:"auto_apply_threshold"`
}

// RemoteConfig holds the remote prediction source options.
// The API key itself is never stored; APIKeyEnv names the variable holding it.
type RemoteConfig struct {
	Enabled   bool   `toml:"enabled"`
	Model     string `toml:"model"`
	BaseURL   string `toml:"base_url"`
	APIKeyEnv string `toml:"api_key_env"`
	MaxWords  int    `toml:"max_words"`
}

// CliConfig holds cli interface options.
type CliConfig struct {
	DefaultLimit    int    `toml:"default_limit"`
	DefaultLanguage string `toml:"default_language"`
	ShowReasons     bool   `toml:"show_reasons"`
}

// Timeout returns the remote prediction timeout.
func (p PredictConfig) Timeout() time.Duration {
	return time.Duration(p.TimeoutMs) * time.Millisecond
}

// APIKey reads the remote API key from the configured environment variable.
func (r RemoteConfig) APIKey() string {
	if r.APIKeyEnv == "" {
		return ""
	}
	return os.Getenv(r.APIKeyEnv)
}

// GetConfigDir returns the config directory with fallback priority:
// 1. ~/.config/
// 2. ~/Library/Application Support/ (macOS)
// 3. Current executable dir
// 4. builtin defaults
func GetConfigDir() (string, error) {
	homeDir, err := os.UserHomeDir()
	if err != nil {
		log.Errorf("Failed to get home directory: %v", err)
		execDir, execErr := utils.GetExecutableDir()
		if execErr != nil {
			return "", execErr
		}
		return execDir, nil
	}
	primaryPath := filepath.Join(homeDir, ".config", "swipeserve")
	if utils.WritableDir(primaryPath) {
		return primaryPath, nil
	}
	// Not conventional, fallback from ~/.config if not writable
	macOSPath := filepath.Join(homeDir, "Library", "Application Support", "swipeserve")
	if utils.WritableDir(macOSPath) {
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
// 2. Default path: [UserConfigDir]/swipeserve/config.toml
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

// DefaultConfig returns a Config with default values.
func DefaultConfig() *Config {
	return &Config{
		Server: ServerConfig{
			MaxLimit:     64,
			MinPrefix:    2,
			MaxPrefix:    60,
			EnableFilter: true,
		},
		Dict: DictConfig{
			MaxWords:        50000,
			DataDir:         "data",
			DefaultLanguage: "en",
			UseBuiltin:      true,
		},
		Swipe: SwipeConfig{
			Width:             1080,
			Height:            720,
			CellSize:          64,
			MinPathLength:     3,
			MaxPathPoints:     500,
			VelocityThreshold: 5.0,
		},
		Predict: PredictConfig{
			TimeoutMs:    1000,
			DefaultLimit: 5,
		},
		Autocorrect: AutocorrectConfig{
			CacheSize:          100,
			MaxSuggestions:     5,
			MaxCandidates:      500,
			FuzzyScale:         0.85,
			LearnedCapacity:    5000,
			AutoApplyThreshold: 0.8,
		},
		Remote: RemoteConfig{
			Enabled:   false,
			Model:     "gpt-4o-mini",
			APIKeyEnv: "OPENAI_API_KEY",
			MaxWords:  5,
		},
		CLI: CliConfig{
			DefaultLimit:    10,
			DefaultLanguage: "en",
			ShowReasons:     true,
		},
	}
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

// LoadConfig loads from a TOML file
func LoadConfig(configPath string) (*Config, error) {
	config := DefaultConfig()

	if err := utils.LoadTOMLFile(configPath, config); err != nil {
		return tryPartialParse(configPath)
	}
	return config, nil
}

// tryPartialParse recovers every section whose values have the right types
func tryPartialParse(configPath string) (*Config, error) {
	config := DefaultConfig()

	tempConfig, err := utils.ParseTOMLWithRecovery(configPath)
	if err != nil {
		log.Warnf("Could not parse any valid configuration from %s: %v. Using all defaults.", configPath, err)
		return config, nil
	}

	if section, ok := utils.ExtractSection(tempConfig, "server"); ok {
		extractServerConfig(section, &config.Server)
	}
	if section, ok := utils.ExtractSection(tempConfig, "dict"); ok {
		extractDictConfig(section, &config.Dict)
	}
	if section, ok := utils.ExtractSection(tempConfig, "swipe"); ok {
		extractSwipeConfig(section, &config.Swipe)
	}
	if section, ok := utils.ExtractSection(tempConfig, "predict"); ok {
		extractPredictConfig(section, &config.Predict)
	}
	if section, ok := utils.ExtractSection(tempConfig, "autocorrect"); ok {
		extractAutocorrectConfig(section, &config.Autocorrect)
	}
	if section, ok := utils.ExtractSection(tempConfig, "remote"); ok {
		extractRemoteConfig(section, &config.Remote)
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
}

func extractDictConfig(data map[string]any, dict *DictConfig) {
	if val, ok := utils.ExtractInt64(data, "max_words"); ok {
		dict.MaxWords = val
	}
	if val, ok := utils.ExtractString(data, "data_dir"); ok {
		dict.DataDir = val
	}
	if val, ok := utils.ExtractString(data, "word_list"); ok {
		dict.WordList = val
	}
	if val, ok := utils.ExtractString(data, "default_language"); ok {
		dict.DefaultLanguage = val
	}
	if val, ok := utils.ExtractBool(data, "use_builtin"); ok {
		dict.UseBuiltin = val
	}
}

func extractSwipeConfig(data map[string]any, swipe *SwipeConfig) {
	if val, ok := utils.ExtractFloat64(data, "width"); ok {
		swipe.Width = val
	}
	if val, ok := utils.ExtractFloat64(data, "height"); ok {
		swipe.Height = val
	}
	if val, ok := utils.ExtractFloat64(data, "cell_size"); ok {
		swipe.CellSize = val
	}
	if val, ok := utils.ExtractInt64(data, "min_path_length"); ok {
		swipe.MinPathLength = val
	}
	if val, ok := utils.ExtractInt64(data, "max_path_points"); ok {
		swipe.MaxPathPoints = val
	}
	if val, ok := utils.ExtractFloat64(data, "velocity_threshold"); ok {
		swipe.VelocityThreshold = val
	}
}

func extractPredictConfig(data map[string]any, predict *PredictConfig) {
	if val, ok := utils.ExtractInt64(data, "timeout_ms"); ok {
		predict.TimeoutMs = val
	}
	if val, ok := utils.ExtractInt64(data, "default_limit"); ok {
		predict.DefaultLimit = val
	}
}

func extractAutocorrectConfig(data map[string]any, ac *AutocorrectConfig) {
	if val, ok := utils.ExtractInt64(data, "cache_size"); ok {
		ac.CacheSize = val
	}
	if val, ok := utils.ExtractInt64(data, "max_suggestions"); ok {
		ac.MaxSuggestions = val
	}
	if val, ok := utils.ExtractInt64(data, "max_candidates"); ok {
		ac.MaxCandidates = val
	}
	if val, ok := utils.ExtractFloat64(data, "fuzzy_scale"); ok {
		ac.FuzzyScale = val
	}
	if val, ok := utils.ExtractInt64(data, "learned_capacity"); ok {
		ac.LearnedCapacity = val
	}
	if val, ok := utils.ExtractFloat64(data, "auto_apply_threshold"); ok {
		ac.AutoApplyThreshold = val
	}
}

func extractRemoteConfig(data map[string]any, remote *RemoteConfig) {
	if val, ok := utils.ExtractBool(data, "enabled"); ok {
		remote.Enabled = val
	}
	if val, ok := utils.ExtractString(data, "model"); ok {
		remote.Model = val
	}
	if val, ok := utils.ExtractString(data, "base_url"); ok {
		remote.BaseURL = val
	}
	if val, ok := utils.ExtractString(data, "api_key_env"); ok {
		remote.APIKeyEnv = val
	}
	if val, ok := utils.ExtractInt64(data, "max_words"); ok {
		remote.MaxWords = val
	}
}

func extractCliConfig(data map[string]any, cli *CliConfig) {
	if val, ok := utils.ExtractInt64(data, "default_limit"); ok {
		cli.DefaultLimit = val
	}
	if val, ok := utils.ExtractString(data, "default_language"); ok {
		cli.DefaultLanguage = val
	}
	if val, ok := utils.ExtractBool(data, "show_reasons"); ok {
		cli.ShowReasons = val
	}
}

// RebuildConfigFile force creates a new config.toml at default
func RebuildConfigFile() error {
	defaultPath, err := GetDefaultConfigPath()
	if err != nil {
		return err
	}
	if err := utils.EnsureDir(filepath.Dir(defaultPath)); err != nil {
		return err
	}
	return utils.SaveTOMLFile(DefaultConfig(), defaultPath)
}

// GetActiveConfigPath returns the absolute path of loaded config file
func GetActiveConfigPath(configPath string) string {
	if configPath == "" {
		if defaultPath, err := GetDefaultConfigPath(); err == nil {
			return defaultPath
		}
		return "unknown"
	}
	return utils.GetAbsolutePath(configPath)
}

// SaveConfig saves into a TOML file
func SaveConfig(config *Config, configPath string) error {
	return utils.SaveTOMLFile(config, configPath)
}

// Update changes the server limits and saves to file
func (c *Config) Update(configPath string, maxLimit, minPrefix, maxPrefix *int, enableFilter *bool) error {
	server := &c.Server
	if maxLimit != nil {
		server.MaxLimit = *maxLimit
	}
	if minPrefix != nil {
		server.MinPrefix = *minPrefix
	}
	if maxPrefix != nil {
		server.MaxPrefix = *maxPrefix
	}
	if enableFilter != nil {
		server.EnableFilter = *enableFilter
	}
	return SaveConfig(c, configPath)
}
