// internal/common/config/loader.go
package config

import (
	"fmt"
	"math"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

// Load reads configs/config.yaml, merges config.<APP_ENVIRONMENT>.yaml on top
// and applies environment overrides and defaults.
func Load() (*Config, error) {
	loadEnvFile()

	v := newViper()
	v.SetConfigName("config")
	v.AddConfigPath("./configs")
	v.AddConfigPath("../../configs")
	v.AddConfigPath(".")

	env := os.Getenv("APP_ENVIRONMENT")
	if env == "" {
		env = "development"
	}

	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, fmt.Errorf("error reading base config: %w", err)
		}
	}

	v.SetConfigName(fmt.Sprintf("config.%s", env))
	_ = v.MergeInConfig() // ignore error if not found

	return finish(v)
}

// LoadFromFile loads configuration from a specific file path
func LoadFromFile(path string) (*Config, error) {
	loadEnvFile()

	v := newViper()
	v.SetConfigFile(path)

	if err := v.ReadInConfig(); err != nil {
		return nil, fmt.Errorf("failed to read config file %s: %w", path, err)
	}

	return finish(v)
}

// keyDelimiter keeps dotted task types such as page.process as single keys.
const keyDelimiter = "::"

func newViper() *viper.Viper {
	v := viper.NewWithOptions(viper.KeyDelimiter(keyDelimiter))
	v.SetConfigType("yaml")
	// Enable ENV override like CAMUNDA_BROKER_ADDRESS
	v.SetEnvKeyReplacer(strings.NewReplacer(keyDelimiter, "_", ".", "_", "-", "_"))
	v.AutomaticEnv()
	return v
}

func finish(v *viper.Viper) (*Config, error) {
	expandEnvVars(v)

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	applyDefaults(&cfg)
	overrideEmptyConfig(&cfg)

	if err := validateConfig(&cfg); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	return &cfg, nil
}

// loadEnvFile loads the first .env found walking up from the working directory.
func loadEnvFile() {
	possiblePaths := []string{
		".env",
		"../.env",
		"../../.env",
		"../../../.env",
	}

	if rootDir := findProjectRoot(); rootDir != "" {
		possiblePaths = append(possiblePaths, filepath.Join(rootDir, ".env"))
	}

	for _, path := range possiblePaths {
		if _, err := os.Stat(path); err == nil {
			if err := godotenv.Load(path); err == nil {
				fmt.Fprintf(os.Stderr, "loaded .env from: %s\n", path)
				return
			}
		}
	}
}

// Find project root by looking for go.mod
func findProjectRoot() string {
	dir, err := os.Getwd()
	if err != nil {
		return ""
	}

	for {
		if _, err := os.Stat(filepath.Join(dir, "go.mod")); err == nil {
			return dir
		}

		parent := filepath.Dir(dir)
		if parent == dir {
			break
		}
		dir = parent
	}

	return ""
}

func expandEnvVars(v *viper.Viper) {
	for _, key := range v.AllKeys() {
		strVal, ok := v.Get(key).(string)
		if !ok {
			continue
		}
		if strings.Contains(strVal, "${") || (strings.HasPrefix(strVal, "$") && len(strVal) > 1) {
			expanded := os.ExpandEnv(strVal)
			if expanded != strVal {
				v.Set(key, expanded)
			}
		}
	}
}

var providerKeyEnv = map[string]string{
	"openai":    "OPENAI_API_KEY",
	"anthropic": "ANTHROPIC_API_KEY",
	"genai":     "GENAI_API_KEY",
}

// Direct override if secrets are still empty after expansion
func overrideEmptyConfig(cfg *Config) {
	for i := range cfg.Providers {
		p := &cfg.Providers[i]
		// list entries are not reached by expandEnvVars
		p.APIKey = os.ExpandEnv(p.APIKey)
		p.BaseURL = os.ExpandEnv(p.BaseURL)
		if p.APIKey != "" {
			continue
		}
		if name, ok := providerKeyEnv[p.Type]; ok {
			if val := os.Getenv(name); val != "" {
				p.APIKey = val
			}
		}
	}

	if cfg.Redis.Password == "" {
		if val := os.Getenv("REDIS_PASSWORD"); val != "" {
			cfg.Redis.Password = val
		}
	}
}

// applyDefaults sets default values for optional configuration fields
func applyDefaults(cfg *Config) {
	if cfg.App.Name == "" {
		cfg.App.Name = "pagegen-workers"
	}

	// Camunda defaults
	if cfg.Camunda.MaxJobsActive == 0 {
		cfg.Camunda.MaxJobsActive = 10
	}
	if cfg.Camunda.Timeout == 0 {
		cfg.Camunda.Timeout = 30000
	}
	if cfg.Camunda.RequestTimeout == 0 {
		cfg.Camunda.RequestTimeout = 30000
	}

	// Logging defaults
	if cfg.Logging.Level == "" {
		cfg.Logging.Level = "info"
	}
	if cfg.Logging.Format == "" {
		cfg.Logging.Format = "json"
	}
	if cfg.Logging.Output == "" {
		cfg.Logging.Output = "stdout"
	}

	if cfg.Server.Port == 0 {
		cfg.Server.Port = 8080
	}

	for key, worker := range cfg.Workers {
		if worker.MaxJobsActive == 0 {
			worker.MaxJobsActive = 5
		}
		if worker.Timeout == 0 {
			worker.Timeout = 30000
		}
		if worker.MaxRetries == 0 {
			worker.MaxRetries = 3
		}
		cfg.Workers[key] = worker
	}

	if cfg.Catalog.DefaultNamespace == "" {
		cfg.Catalog.DefaultNamespace = "auth"
	}

	w := &cfg.Matching.Weights
	if *w == (MatchingWeights{}) {
		*w = MatchingWeights{StyleExact: 0.25, StyleGroup: 0.15, Features: 0.30, Theme: 0.20, Complexity: 0.15, SingleForm: 0.10}
	}
	t := &cfg.Matching.Thresholds
	if *t == (MatchingThresholds{}) {
		*t = MatchingThresholds{Exact: 0.7, ExactComplex: 0.8, Partial: 0.4, PartialSimple: 0.5}
	}
	if cfg.Matching.EnhancementThreshold == 0 {
		cfg.Matching.EnhancementThreshold = 0.7
	}

	if cfg.Orchestrator.MaxAttempts == 0 {
		cfg.Orchestrator.MaxAttempts = 2
	}
	if cfg.Orchestrator.RetryDelay == 0 {
		cfg.Orchestrator.RetryDelay = 500
	}
	if cfg.Orchestrator.ExcerptChars == 0 {
		cfg.Orchestrator.ExcerptChars = 4000
	}
	if cfg.Orchestrator.MinHTMLLength == 0 {
		cfg.Orchestrator.MinHTMLLength = 200
	}

	for i := range cfg.Providers {
		p := &cfg.Providers[i]
		if p.Name == "" {
			p.Name = p.Type
		}
		if p.MaxTokens == 0 {
			p.MaxTokens = 4096
		}
		if p.RateLimit == 0 {
			p.RateLimit = 10
		}
		if p.Timeout == 0 {
			p.Timeout = 60000
		}
	}

	if cfg.RateLimit.Backend == "" {
		cfg.RateLimit.Backend = "memory"
	}
	if cfg.RateLimit.Window == 0 {
		cfg.RateLimit.Window = 60000
	}
	if cfg.RateLimit.KeyPrefix == "" {
		cfg.RateLimit.KeyPrefix = "pagegen:ratelimit"
	}

	if cfg.Artifacts.Dir == "" {
		cfg.Artifacts.Dir = "generated"
	}
}

// validateConfig validates critical configuration fields
func validateConfig(cfg *Config) error {
	w := cfg.Matching.Weights
	sum := w.StyleExact + w.Features + w.Theme + w.Complexity + w.SingleForm
	if math.Abs(sum-1) > 1e-6 {
		return fmt.Errorf("matching.weights must sum to 1 (style_exact, features, theme, complexity, single_form), got %.4f", sum)
	}

	t := cfg.Matching.Thresholds
	for name, val := range map[string]float64{
		"matching.thresholds.exact":          t.Exact,
		"matching.thresholds.exact_complex":  t.ExactComplex,
		"matching.thresholds.partial":        t.Partial,
		"matching.thresholds.partial_simple": t.PartialSimple,
		"matching.enhancement_threshold":     cfg.Matching.EnhancementThreshold,
	} {
		if val < 0 || val > 1 {
			return fmt.Errorf("%s must be within [0,1], got %v", name, val)
		}
	}

	seen := make(map[string]bool, len(cfg.Providers))
	for _, p := range cfg.Providers {
		if _, ok := providerKeyEnv[p.Type]; !ok {
			return fmt.Errorf("providers.%s: unknown type %q", p.Name, p.Type)
		}
		if seen[p.Name] {
			return fmt.Errorf("providers: duplicate name %q", p.Name)
		}
		seen[p.Name] = true
	}

	switch cfg.RateLimit.Backend {
	case "memory":
	case "redis":
		if cfg.Redis.Address == "" {
			return fmt.Errorf("redis.address is required for the redis rate limit backend")
		}
	default:
		return fmt.Errorf("ratelimit.backend must be memory or redis, got %q", cfg.RateLimit.Backend)
	}

	return nil
}

// ValidateForWorkers checks the settings only the Zeebe worker process needs.
func ValidateForWorkers(cfg *Config) error {
	if cfg.Camunda.BrokerAddress == "" {
		return fmt.Errorf("camunda.broker_address is required")
	}
	return nil
}

// GetDuration converts milliseconds from config to time.Duration
func GetDuration(milliseconds int) time.Duration {
	return time.Duration(milliseconds) * time.Millisecond
}

// GetWorkerConfig retrieves worker-specific configuration with fallback to defaults
func GetWorkerConfig(cfg *Config, workerName string) WorkerConfig {
	if worker, exists := cfg.Workers[workerName]; exists {
		return worker
	}

	return WorkerConfig{
		Enabled:       true,
		MaxJobsActive: 5,
		Timeout:       30000,
		MaxRetries:    3,
	}
}

// IsWorkerEnabled checks if a specific worker is enabled
func IsWorkerEnabled(cfg *Config, workerName string) bool {
	if worker, exists := cfg.Workers[workerName]; exists {
		return worker.Enabled
	}
	return true
}
