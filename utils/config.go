package utils

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"sync"

	"gopkg.in/yaml.v3"
)

// Config represents the main application configuration
type Config struct {
	Server   ServerConfig   `yaml:"server" json:"server"`
	Paths    PathsConfig    `yaml:"paths" json:"paths"`
	Training TrainingConfig `yaml:"training" json:"training"`
	Retrain  RetrainConfig  `yaml:"retrain" json:"retrain"`
	Logging  LoggingConfig  `yaml:"logging" json:"logging"`
	Security SecurityConfig `yaml:"security" json:"security"`
}

// ServerConfig holds server-related configuration
type ServerConfig struct {
	Host         string `yaml:"host" json:"host"`
	Port         int    `yaml:"port" json:"port"`
	ReadTimeout  int    `yaml:"read_timeout" json:"read_timeout"`   // seconds
	WriteTimeout int    `yaml:"write_timeout" json:"write_timeout"` // seconds
	EnableCORS   bool   `yaml:"enable_cors" json:"enable_cors"`
}

// PathsConfig holds the data and artifact directory layout
type PathsConfig struct {
	RawData      string `yaml:"raw_data" json:"raw_data"`           // raw input CSV
	ProcessedDir string `yaml:"processed_dir" json:"processed_dir"` // split CSVs
	ModelDir     string `yaml:"model_dir" json:"model_dir"`         // model artifacts
	HistoryDB    string `yaml:"history_db" json:"history_db"`       // training run history (sqlite)
}

// TrainingConfig holds pipeline defaults for preprocessing and training
type TrainingConfig struct {
	RandomSeed    int64   `yaml:"random_seed" json:"random_seed"`
	TrainSize     float64 `yaml:"train_size" json:"train_size"`
	ValSize       float64 `yaml:"val_size" json:"val_size"`
	TestSize      float64 `yaml:"test_size" json:"test_size"`
	OutlierMethod string  `yaml:"outlier_method" json:"outlier_method"` // "cap" or "remove"
	Tune          bool    `yaml:"tune" json:"tune"`
	TuneIter      int     `yaml:"tune_iter" json:"tune_iter"`
	Oversample    bool    `yaml:"oversample" json:"oversample"`
	Stacking      bool    `yaml:"stacking" json:"stacking"`
}

// RetrainConfig controls the scheduled retraining job
type RetrainConfig struct {
	Enabled  bool   `yaml:"enabled" json:"enabled"`
	CronExpr string `yaml:"cron_expr" json:"cron_expr"`
}

// LoggingConfig holds logging-related configuration
type LoggingConfig struct {
	Level    string `yaml:"level" json:"level"`   // debug, info, warn, error
	Format   string `yaml:"format" json:"format"` // json, text
	Output   string `yaml:"output" json:"output"` // stdout, file, both
	FilePath string `yaml:"file_path" json:"file_path"`
}

// SecurityConfig holds security-related configuration
type SecurityConfig struct {
	EnableAuth     bool     `yaml:"enable_auth" json:"enable_auth"`
	JWTSecret      string   `yaml:"jwt_secret" json:"jwt_secret"`
	TokenExpiry    int      `yaml:"token_expiry" json:"token_expiry"` // hours
	AllowedOrigins []string `yaml:"allowed_origins" json:"allowed_origins"`
}

// ConfigManager manages application configuration
type ConfigManager struct {
	config     *Config
	configPath string
	mutex      sync.RWMutex
}

// NewConfigManager creates a new configuration manager
func NewConfigManager() *ConfigManager {
	return &ConfigManager{
		config: getDefaultConfig(),
	}
}

// LoadFromFile loads configuration from a YAML or JSON file
func (cm *ConfigManager) LoadFromFile(configPath string) error {
	cm.mutex.Lock()
	defer cm.mutex.Unlock()

	data, err := os.ReadFile(configPath)
	if err != nil {
		return fmt.Errorf("failed to read config file: %w", err)
	}

	var newConfig Config
	ext := filepath.Ext(configPath)

	switch strings.ToLower(ext) {
	case ".yaml", ".yml":
		if err := yaml.Unmarshal(data, &newConfig); err != nil {
			return fmt.Errorf("failed to parse YAML config: %w", err)
		}
	case ".json":
		if err := json.Unmarshal(data, &newConfig); err != nil {
			return fmt.Errorf("failed to parse JSON config: %w", err)
		}
	default:
		return fmt.Errorf("unsupported config file format: %s", ext)
	}

	merged := cm.mergeWithDefaults(&newConfig)
	if err := cm.validateConfig(merged); err != nil {
		return fmt.Errorf("invalid configuration: %w", err)
	}

	cm.config = merged
	cm.configPath = configPath
	return nil
}

// LoadFromEnvironment overrides configuration from environment variables
func (cm *ConfigManager) LoadFromEnvironment() error {
	cm.mutex.Lock()
	defer cm.mutex.Unlock()

	if host := os.Getenv("MAIZE_HOST"); host != "" {
		cm.config.Server.Host = host
	}
	if port := os.Getenv("MAIZE_PORT"); port != "" {
		if p, err := strconv.Atoi(port); err == nil {
			cm.config.Server.Port = p
		}
	}
	if logLevel := os.Getenv("MAIZE_LOG_LEVEL"); logLevel != "" {
		cm.config.Logging.Level = logLevel
	}
	if modelDir := os.Getenv("MAIZE_MODEL_DIR"); modelDir != "" {
		cm.config.Paths.ModelDir = modelDir
	}
	if jwtSecret := os.Getenv("MAIZE_JWT_SECRET"); jwtSecret != "" {
		cm.config.Security.JWTSecret = jwtSecret
	}
	return nil
}

// GetConfig returns a copy of the current configuration
func (cm *ConfigManager) GetConfig() *Config {
	cm.mutex.RLock()
	defer cm.mutex.RUnlock()

	configCopy := *cm.config
	return &configCopy
}

// GetConfigPath returns the current configuration file path
func (cm *ConfigManager) GetConfigPath() string {
	cm.mutex.RLock()
	defer cm.mutex.RUnlock()
	return cm.configPath
}

// getDefaultConfig returns the default configuration
func getDefaultConfig() *Config {
	return &Config{
		Server: ServerConfig{
			Host:         "0.0.0.0",
			Port:         8080,
			ReadTimeout:  30,
			WriteTimeout: 30,
			EnableCORS:   true,
		},
		Paths: PathsConfig{
			RawData:      "./data/raw/maize_dataset.csv",
			ProcessedDir: "./data/processed",
			ModelDir:     "./models/trained",
			HistoryDB:    "./models/trained/runs.db",
		},
		Training: TrainingConfig{
			RandomSeed:    42,
			TrainSize:     0.60,
			ValSize:       0.20,
			TestSize:      0.20,
			OutlierMethod: "cap",
			Tune:          false,
			TuneIter:      10,
			Oversample:    true,
			Stacking:      false,
		},
		Retrain: RetrainConfig{
			Enabled:  false,
			CronExpr: "0 2 * * 0", // weekly, Sunday 02:00
		},
		Logging: LoggingConfig{
			Level:    "info",
			Format:   "text",
			Output:   "stdout",
			FilePath: "./logs/maizeyield.log",
		},
		Security: SecurityConfig{
			EnableAuth:     false,
			JWTSecret:      "change-me-in-production",
			TokenExpiry:    24,
			AllowedOrigins: []string{"*"},
		},
	}
}

// mergeWithDefaults merges user config with defaults
func (cm *ConfigManager) mergeWithDefaults(userConfig *Config) *Config {
	merged := *getDefaultConfig()

	if userConfig.Server.Host != "" {
		merged.Server.Host = userConfig.Server.Host
	}
	if userConfig.Server.Port != 0 {
		merged.Server.Port = userConfig.Server.Port
	}
	if userConfig.Server.ReadTimeout != 0 {
		merged.Server.ReadTimeout = userConfig.Server.ReadTimeout
	}
	if userConfig.Server.WriteTimeout != 0 {
		merged.Server.WriteTimeout = userConfig.Server.WriteTimeout
	}
	merged.Server.EnableCORS = userConfig.Server.EnableCORS

	if userConfig.Paths.RawData != "" {
		merged.Paths.RawData = userConfig.Paths.RawData
	}
	if userConfig.Paths.ProcessedDir != "" {
		merged.Paths.ProcessedDir = userConfig.Paths.ProcessedDir
	}
	if userConfig.Paths.ModelDir != "" {
		merged.Paths.ModelDir = userConfig.Paths.ModelDir
	}
	if userConfig.Paths.HistoryDB != "" {
		merged.Paths.HistoryDB = userConfig.Paths.HistoryDB
	}

	if userConfig.Training.RandomSeed != 0 {
		merged.Training.RandomSeed = userConfig.Training.RandomSeed
	}
	if userConfig.Training.TrainSize != 0 {
		merged.Training.TrainSize = userConfig.Training.TrainSize
	}
	if userConfig.Training.ValSize != 0 {
		merged.Training.ValSize = userConfig.Training.ValSize
	}
	if userConfig.Training.TestSize != 0 {
		merged.Training.TestSize = userConfig.Training.TestSize
	}
	if userConfig.Training.OutlierMethod != "" {
		merged.Training.OutlierMethod = userConfig.Training.OutlierMethod
	}
	merged.Training.Tune = userConfig.Training.Tune
	if userConfig.Training.TuneIter != 0 {
		merged.Training.TuneIter = userConfig.Training.TuneIter
	}
	merged.Training.Oversample = userConfig.Training.Oversample
	merged.Training.Stacking = userConfig.Training.Stacking

	merged.Retrain.Enabled = userConfig.Retrain.Enabled
	if userConfig.Retrain.CronExpr != "" {
		merged.Retrain.CronExpr = userConfig.Retrain.CronExpr
	}

	if userConfig.Logging.Level != "" {
		merged.Logging.Level = userConfig.Logging.Level
	}
	if userConfig.Logging.Format != "" {
		merged.Logging.Format = userConfig.Logging.Format
	}
	if userConfig.Logging.Output != "" {
		merged.Logging.Output = userConfig.Logging.Output
	}
	if userConfig.Logging.FilePath != "" {
		merged.Logging.FilePath = userConfig.Logging.FilePath
	}

	merged.Security.EnableAuth = userConfig.Security.EnableAuth
	if userConfig.Security.JWTSecret != "" {
		merged.Security.JWTSecret = userConfig.Security.JWTSecret
	}
	if userConfig.Security.TokenExpiry != 0 {
		merged.Security.TokenExpiry = userConfig.Security.TokenExpiry
	}
	if len(userConfig.Security.AllowedOrigins) > 0 {
		merged.Security.AllowedOrigins = userConfig.Security.AllowedOrigins
	}

	return &merged
}

// validateConfig validates the configuration
func (cm *ConfigManager) validateConfig(config *Config) error {
	if config.Server.Port < 1 || config.Server.Port > 65535 {
		return fmt.Errorf("invalid server port: %d", config.Server.Port)
	}

	validLevels := []string{"debug", "info", "warn", "error"}
	if !contains(validLevels, config.Logging.Level) {
		return fmt.Errorf("invalid log level: %s", config.Logging.Level)
	}

	validFormats := []string{"json", "text"}
	if !contains(validFormats, config.Logging.Format) {
		return fmt.Errorf("invalid log format: %s", config.Logging.Format)
	}

	validOutputs := []string{"stdout", "file", "both"}
	if !contains(validOutputs, config.Logging.Output) {
		return fmt.Errorf("invalid log output: %s", config.Logging.Output)
	}

	if config.Training.OutlierMethod != "cap" && config.Training.OutlierMethod != "remove" {
		return fmt.Errorf("invalid outlier method: %s", config.Training.OutlierMethod)
	}

	sum := config.Training.TrainSize + config.Training.ValSize + config.Training.TestSize
	if sum < 0.999 || sum > 1.001 {
		return fmt.Errorf("split sizes must sum to 1.0, got %.4f", sum)
	}

	return nil
}

// contains checks if a slice contains a string
func contains(slice []string, item string) bool {
	for _, s := range slice {
		if s == item {
			return true
		}
	}
	return false
}

// Global configuration manager instance
var globalConfigManager *ConfigManager
var configOnce sync.Once

// GetConfigManager returns the global configuration manager instance
func GetConfigManager() *ConfigManager {
	configOnce.Do(func() {
		globalConfigManager = NewConfigManager()
	})
	return globalConfigManager
}

// LoadGlobalConfig loads configuration from default locations
func LoadGlobalConfig() error {
	cm := GetConfigManager()

	configPaths := []string{
		"./config.yaml",
		"./config.yml",
		"./config.json",
		"/etc/maizeyield/config.yaml",
	}

	for _, path := range configPaths {
		if _, err := os.Stat(path); err == nil {
			if err := cm.LoadFromFile(path); err == nil {
				break
			}
		}
	}

	return cm.LoadFromEnvironment()
}
