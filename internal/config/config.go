package config

import (
	"time"

	"github.com/spf13/viper"
)

type Config struct {
	Env             string        `mapstructure:"ENV"`
	Port            string        `mapstructure:"PORT"`
	DatabaseURL     string        `mapstructure:"DATABASE_URL"`
	AdminKey        string        `mapstructure:"ADMIN_KEY"`
	CORSAllowed     string        `mapstructure:"CORS_ALLOWED_ORIGINS"`
	LogLevel        string        `mapstructure:"LOG_LEVEL"`
	MaxUploadSizeMB int64         `mapstructure:"MAX_UPLOAD_MB"`
	BatchTimeout    time.Duration `mapstructure:"BATCH_TIMEOUT"`

	AIProvider      string `mapstructure:"AI_PROVIDER"`
	OpenAIAPIKey    string `mapstructure:"OPENAI_API_KEY"`
	OpenAIModel     string `mapstructure:"OPENAI_MODEL"`
	AnthropicAPIKey string `mapstructure:"ANTHROPIC_API_KEY"`
	AnthropicModel  string `mapstructure:"ANTHROPIC_MODEL"`

	AIWorkers          int `mapstructure:"AI_WORKERS"`
	AIRetries          int `mapstructure:"AI_RETRIES"`
	TopAspects         int `mapstructure:"TOP_ASPECTS"`
	MaxRecommendations int `mapstructure:"MAX_RECOMMENDATIONS"`
	NegativeSample     int `mapstructure:"NEGATIVE_SAMPLE"`
	MaxComments        int `mapstructure:"MAX_COMMENTS"`

	CommentSourceURL string        `mapstructure:"COMMENT_SOURCE_URL"`
	RedisURL         string        `mapstructure:"REDIS_URL"`
	CacheTTL         time.Duration `mapstructure:"CACHE_TTL"`
	RunRetention     time.Duration `mapstructure:"RUN_RETENTION"`
}

func Load() (Config, error) {
	v := viper.New()
	v.SetConfigFile(".env")
	v.SetConfigType("env")
	v.AutomaticEnv()
	_ = v.ReadInConfig()

	v.SetDefault("ENV", "dev")
	v.SetDefault("PORT", "8080")
	v.SetDefault("LOG_LEVEL", "info")
	v.SetDefault("CORS_ALLOWED_ORIGINS", "*")
	v.SetDefault("MAX_UPLOAD_MB", 20)
	v.SetDefault("BATCH_TIMEOUT", "2m")
	v.SetDefault("AI_PROVIDER", "mock")
	v.SetDefault("AI_WORKERS", 5)
	v.SetDefault("AI_RETRIES", 3)
	v.SetDefault("TOP_ASPECTS", 10)
	v.SetDefault("MAX_RECOMMENDATIONS", 5)
	v.SetDefault("NEGATIVE_SAMPLE", 5)
	v.SetDefault("MAX_COMMENTS", 100)
	v.SetDefault("CACHE_TTL", "24h")
	v.SetDefault("RUN_RETENTION", "720h")

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return Config{}, err
	}
	return cfg, nil
}
