package config

import (
	"time"

	"github.com/caarlos0/env/v11"
)

const (
	BackendHTTP   = "http"
	BackendOpenAI = "openai"
)

type Config struct {
	Server      ServerConfig
	Predictor   PredictorConfig
	OpenAI      OpenAIConfig
	RedisConfig RedisConfig
	Form        FormConfig
	CacheEnable bool `env:"CACHE_ENABLE"`
}

type RedisConfig struct {
	Addr     string        `env:"REDIS_ADDR" envDefault:"redis:6379"`
	Password string        `env:"REDIS_PASSWORD"`
	DB       int           `env:"REDIS_DB" envDefault:"0"`
	TTL      time.Duration `env:"REDIS_TTL" envDefault:"10m"`
}

type ServerConfig struct {
	Port            string        `env:"SERVER_PORT" envDefault:"8080"`
	Timeout         time.Duration `env:"SERVER_TIMEOUT" envDefault:"2m"`
	ShutdownTimeout time.Duration `env:"SERVER_SHUTDOWN_TIMEOUT" envDefault:"10s"`
	ThrottleLimit   int           `env:"SERVER_THROTTLE_LIMIT" envDefault:"50"`
}

// PredictorConfig selects and configures the outbound classifier.
// Timeout of zero means the outbound call is never cut short.
type PredictorConfig struct {
	Backend       string        `env:"PREDICTOR_BACKEND" envDefault:"http"`
	Endpoint      string        `env:"PREDICT_ENDPOINT" envDefault:"http://localhost:5000/predict"`
	Timeout       time.Duration `env:"PREDICT_TIMEOUT" envDefault:"0s"`
	MaxImageBytes int64         `env:"MAX_IMAGE_BYTES" envDefault:"10485760"`
}

type OpenAIConfig struct {
	APIKey  string   `env:"OPENAI_API_KEY"`
	BaseURL string   `env:"OPENAI_BASE_URL" envDefault:"http://localhost:8000/v1"`
	Model   string   `env:"OPENAI_MODEL" envDefault:"default"`
	Labels  []string `env:"OPENAI_LABELS" envSeparator:","`
}

type FormConfig struct {
	SessionTTL   time.Duration `env:"SESSION_TTL" envDefault:"30m"`
	CookieName   string        `env:"SESSION_COOKIE" envDefault:"sportsclass_session"`
	RefreshEvery time.Duration `env:"FORM_REFRESH" envDefault:"1s"`
}

func Load() (*Config, error) {
	cfg := &Config{}
	if err := env.Parse(cfg); err != nil {
		return nil, err
	}
	return cfg, nil
}
