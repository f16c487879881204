package config

import (
	"strings"

	"github.com/rotisserie/eris"
	"github.com/spf13/viper"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// Config holds the full application configuration.
type Config struct {
	Reference ReferenceConfig `yaml:"reference" mapstructure:"reference"`
	Matching  MatchingConfig  `yaml:"matching" mapstructure:"matching"`
	Anthropic AnthropicConfig `yaml:"anthropic" mapstructure:"anthropic"`
	Quota     QuotaConfig     `yaml:"quota" mapstructure:"quota"`
	OCR       OCRConfig       `yaml:"ocr" mapstructure:"ocr"`
	Pipeline  PipelineConfig  `yaml:"pipeline" mapstructure:"pipeline"`
	Server    ServerConfig    `yaml:"server" mapstructure:"server"`
	Log       LogConfig       `yaml:"log" mapstructure:"log"`
}

// ReferenceConfig configures the reference data sources.
type ReferenceConfig struct {
	Driver        string `yaml:"driver" mapstructure:"driver"` // csv, xlsx, sqlite, postgres
	Path          string `yaml:"path" mapstructure:"path"`     // file path or DSN
	Table         string `yaml:"table" mapstructure:"table"`   // sqlite/postgres table name
	ProvidersPath string `yaml:"providers_path" mapstructure:"providers_path"`
	AliasesPath   string `yaml:"aliases_path" mapstructure:"aliases_path"`   // franchise alias table (YAML), optional
	SuppressPath  string `yaml:"suppress_path" mapstructure:"suppress_path"` // known non-destination addresses (YAML), optional
	CSVDelimiter  string `yaml:"csv_delimiter" mapstructure:"csv_delimiter"`
}

// MatchingConfig holds the resolver tuning parameters. These were implicit
// constants in earlier iterations of the matcher; they are explicit and
// documented here so they can be recalibrated against labeled invoices
// without touching the algorithm.
type MatchingConfig struct {
	// NameThreshold is the minimum name similarity for a stage-1 candidate.
	NameThreshold float64 `yaml:"name_threshold" mapstructure:"name_threshold"`
	// NameWeight and AddressWeight combine scores during address
	// disambiguation. Address is weighted higher because that stage only
	// runs when names alone could not discriminate.
	NameWeight    float64 `yaml:"name_weight" mapstructure:"name_weight"`
	AddressWeight float64 `yaml:"address_weight" mapstructure:"address_weight"`
	// TieEpsilon: combined scores within this distance are a tie and are
	// reported as ambiguous instead of auto-resolved.
	TieEpsilon float64 `yaml:"tie_epsilon" mapstructure:"tie_epsilon"`
	// PostalMargin is the minimum name-score lead over the runner-up
	// required to pick a winner among same-postal-code candidates.
	PostalMargin float64 `yaml:"postal_margin" mapstructure:"postal_margin"`
	// ProviderThreshold is the minimum containment score for provider
	// alias resolution; below it the provider is reported as unknown.
	ProviderThreshold float64 `yaml:"provider_threshold" mapstructure:"provider_threshold"`
}

// AnthropicConfig holds extraction API settings.
type AnthropicConfig struct {
	Key       string `yaml:"key" mapstructure:"key"`
	Model     string `yaml:"model" mapstructure:"model"`
	MaxTokens int64  `yaml:"max_tokens" mapstructure:"max_tokens"`
}

// QuotaConfig bounds extraction API usage.
type QuotaConfig struct {
	MaxPerMinute int `yaml:"max_per_minute" mapstructure:"max_per_minute"`
	MaxPerDay    int `yaml:"max_per_day" mapstructure:"max_per_day"`
}

// OCRConfig configures PDF text extraction.
type OCRConfig struct {
	PdfToTextPath string `yaml:"pdftotext_path" mapstructure:"pdftotext_path"`
}

// PipelineConfig configures the batch rename pipeline.
type PipelineConfig struct {
	MaxConcurrent int    `yaml:"max_concurrent" mapstructure:"max_concurrent"`
	ReportPath    string `yaml:"report_path" mapstructure:"report_path"`
}

// ServerConfig configures the resolve HTTP endpoint.
type ServerConfig struct {
	Port int `yaml:"port" mapstructure:"port"`
}

// LogConfig configures the zap logger.
type LogConfig struct {
	Level  string `yaml:"level" mapstructure:"level"`
	Format string `yaml:"format" mapstructure:"format"` // json or console
}

// Load reads configuration from config.yaml and FACTURE_* environment
// variables, applying defaults for every tunable.
func Load() (*Config, error) {
	v := viper.New()

	// Config file
	v.SetConfigName("config")
	v.SetConfigType("yaml")
	v.AddConfigPath(".")

	// Environment
	v.SetEnvPrefix("FACTURE")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	// Defaults
	v.SetDefault("reference.driver", "csv")
	v.SetDefault("reference.path", "Restaurants.csv")
	v.SetDefault("reference.table", "locations")
	v.SetDefault("reference.providers_path", "Prestataires.csv")
	v.SetDefault("reference.aliases_path", "")
	v.SetDefault("reference.suppress_path", "")
	v.SetDefault("reference.csv_delimiter", ";")
	v.SetDefault("matching.name_threshold", 0.85)
	v.SetDefault("matching.name_weight", 0.4)
	v.SetDefault("matching.address_weight", 0.6)
	v.SetDefault("matching.tie_epsilon", 0.01)
	v.SetDefault("matching.postal_margin", 0.15)
	v.SetDefault("matching.provider_threshold", 0.6)
	// An empty default still registers the key so the FACTURE_ANTHROPIC_KEY
	// environment variable survives Unmarshal.
	v.SetDefault("anthropic.key", "")
	v.SetDefault("anthropic.model", "claude-haiku-4-5-20251001")
	v.SetDefault("anthropic.max_tokens", 1024)
	v.SetDefault("quota.max_per_minute", 15)
	v.SetDefault("quota.max_per_day", 1500)
	v.SetDefault("ocr.pdftotext_path", "pdftotext")
	v.SetDefault("pipeline.max_concurrent", 4)
	v.SetDefault("pipeline.report_path", "")
	v.SetDefault("server.port", 8080)
	v.SetDefault("log.level", "info")
	v.SetDefault("log.format", "json")

	// Read config file (optional)
	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, eris.Wrap(err, "config: read file")
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, eris.Wrap(err, "config: unmarshal")
	}

	return &cfg, nil
}

// InitLogger initializes the global zap logger.
func InitLogger(cfg LogConfig) error {
	var zapCfg zap.Config
	if cfg.Format == "console" {
		zapCfg = zap.NewDevelopmentConfig()
	} else {
		zapCfg = zap.NewProductionConfig()
	}

	level, err := zapcore.ParseLevel(cfg.Level)
	if err != nil {
		return eris.Wrap(err, "config: parse log level")
	}
	zapCfg.Level.SetLevel(level)

	logger, err := zapCfg.Build()
	if err != nil {
		return eris.Wrap(err, "config: build logger")
	}
	zap.ReplaceGlobals(logger)

	return nil
}
