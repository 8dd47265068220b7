// internal/common/config/config.go
package config

// Config is the main application configuration struct.
type Config struct {
	App          AppConfig               `mapstructure:"app"`
	Camunda      CamundaConfig           `mapstructure:"camunda"`
	Redis        RedisConfig             `mapstructure:"redis"`
	Workers      map[string]WorkerConfig `mapstructure:"workers"`
	Logging      LoggingConfig           `mapstructure:"logging"`
	Server       ServerConfig            `mapstructure:"server"`
	Catalog      CatalogConfig           `mapstructure:"catalog"`
	Analyzer     AnalyzerConfig          `mapstructure:"analyzer"`
	Matching     MatchingConfig          `mapstructure:"matching"`
	Orchestrator OrchestratorConfig      `mapstructure:"orchestrator"`
	Providers    []ProviderConfig        `mapstructure:"providers"`
	RateLimit    RateLimitConfig         `mapstructure:"ratelimit"`
	Artifacts    ArtifactsConfig         `mapstructure:"artifacts"`
}

// --- Core App/Infrastructure Config ---
type AppConfig struct {
	Name        string `mapstructure:"name"`
	Version     string `mapstructure:"version"`
	Environment string `mapstructure:"environment"`
}

type CamundaConfig struct {
	BrokerAddress  string `mapstructure:"broker_address"`
	UseTLS         bool   `mapstructure:"use_tls"`
	MaxJobsActive  int    `mapstructure:"max_jobs_active"`
	Timeout        int    `mapstructure:"timeout"`         // milliseconds
	RequestTimeout int    `mapstructure:"request_timeout"` // milliseconds
}

type RedisConfig struct {
	Address  string `mapstructure:"address"`
	Password string `mapstructure:"password"`
	DB       int    `mapstructure:"db"`
	PoolSize int    `mapstructure:"pool_size"`
}

// WorkerConfig holds the core settings applicable to every worker.
type WorkerConfig struct {
	Enabled       bool `mapstructure:"enabled"`
	MaxJobsActive int  `mapstructure:"max_jobs_active"`
	Timeout       int  `mapstructure:"timeout"`     // milliseconds
	MaxRetries    int  `mapstructure:"max_retries"` // For error handling
}

// LoggingConfig holds logging settings.
type LoggingConfig struct {
	Level  string `mapstructure:"level"`
	Format string `mapstructure:"format"`
	Output string `mapstructure:"output"`
}

type ServerConfig struct {
	Port int `mapstructure:"port"`
}

// --- Page Generation Configuration ---

// NamespaceConfig points at one template corpus and its markup directory.
type NamespaceConfig struct {
	CorpusPath   string `mapstructure:"corpus_path"`
	TemplatesDir string `mapstructure:"templates_dir"`
}

type CatalogConfig struct {
	DefaultNamespace string                     `mapstructure:"default_namespace"`
	Namespaces       map[string]NamespaceConfig `mapstructure:"namespaces"`
}

// AnalyzerConfig selects the keyword table and the optional lexicon.
// An empty lexicon path keeps the plain keyword strategy.
type AnalyzerConfig struct {
	KeywordsPath string `mapstructure:"keywords_path"`
	LexiconPath  string `mapstructure:"lexicon_path"`
}

type MatchingWeights struct {
	StyleExact float64 `mapstructure:"style_exact"`
	StyleGroup float64 `mapstructure:"style_group"`
	Features   float64 `mapstructure:"features"`
	Theme      float64 `mapstructure:"theme"`
	Complexity float64 `mapstructure:"complexity"`
	SingleForm float64 `mapstructure:"single_form"`
}

type MatchingThresholds struct {
	Exact         float64 `mapstructure:"exact"`
	ExactComplex  float64 `mapstructure:"exact_complex"`
	Partial       float64 `mapstructure:"partial"`
	PartialSimple float64 `mapstructure:"partial_simple"`
}

type MatchingConfig struct {
	Weights              MatchingWeights    `mapstructure:"weights"`
	Thresholds           MatchingThresholds `mapstructure:"thresholds"`
	EnhancementThreshold float64            `mapstructure:"enhancement_threshold"`
}

type OrchestratorConfig struct {
	MaxAttempts   int  `mapstructure:"max_attempts"`
	RetryDelay    int  `mapstructure:"retry_delay"` // milliseconds
	ExcerptChars  int  `mapstructure:"excerpt_chars"`
	MinHTMLLength int  `mapstructure:"min_html_length"`
	SelfTest      bool `mapstructure:"self_test"`
}

// ProviderConfig describes one slot of the ordered provider chain.
// Type is one of openai, anthropic or genai.
type ProviderConfig struct {
	Name      string `mapstructure:"name"`
	Type      string `mapstructure:"type"`
	Enabled   bool   `mapstructure:"enabled"`
	Model     string `mapstructure:"model"`
	BaseURL   string `mapstructure:"base_url"`
	APIKey    string `mapstructure:"api_key"`
	MaxTokens int    `mapstructure:"max_tokens"`
	RateLimit int    `mapstructure:"rate_limit"` // calls per window
	Timeout   int    `mapstructure:"timeout"`    // milliseconds
}

type RateLimitConfig struct {
	Backend   string `mapstructure:"backend"` // memory or redis
	Window    int    `mapstructure:"window"`  // milliseconds
	KeyPrefix string `mapstructure:"key_prefix"`
}

type ArtifactsConfig struct {
	Enabled bool   `mapstructure:"enabled"`
	Dir     string `mapstructure:"dir"`
}

// Provider returns the provider config with the given name.
func (c *Config) Provider(name string) (ProviderConfig, bool) {
	for _, p := range c.Providers {
		if p.Name == name {
			return p, true
		}
	}
	return ProviderConfig{}, false
}
