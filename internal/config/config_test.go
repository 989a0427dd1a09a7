package config

import (
	"testing"
	"time"
)

func TestLoadDefaults(t *testing.T) {
	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}

	if cfg.Predictor.Endpoint != "http://localhost:5000/predict" {
		t.Errorf("unexpected endpoint %q", cfg.Predictor.Endpoint)
	}
	if cfg.Predictor.Backend != BackendHTTP {
		t.Errorf("expected http backend, got %q", cfg.Predictor.Backend)
	}
	if cfg.Predictor.Timeout != 0 {
		t.Errorf("expected no outbound timeout, got %v", cfg.Predictor.Timeout)
	}
	if cfg.Predictor.MaxImageBytes != 10<<20 {
		t.Errorf("expected 10 MiB limit, got %d", cfg.Predictor.MaxImageBytes)
	}
	if cfg.Server.Port != "8080" {
		t.Errorf("expected port 8080, got %q", cfg.Server.Port)
	}
	if cfg.Form.SessionTTL != 30*time.Minute {
		t.Errorf("expected 30m session ttl, got %v", cfg.Form.SessionTTL)
	}
}

func TestLoadFromEnv(t *testing.T) {
	t.Setenv("PREDICT_ENDPOINT", "http://classifier:5000/predict")
	t.Setenv("PREDICTOR_BACKEND", BackendOpenAI)
	t.Setenv("OPENAI_LABELS", "soccer,tennis,rugby")
	t.Setenv("CACHE_ENABLE", "true")
	t.Setenv("REDIS_TTL", "1h")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}

	if cfg.Predictor.Endpoint != "http://classifier:5000/predict" {
		t.Errorf("unexpected endpoint %q", cfg.Predictor.Endpoint)
	}
	if cfg.Predictor.Backend != BackendOpenAI {
		t.Errorf("unexpected backend %q", cfg.Predictor.Backend)
	}
	if len(cfg.OpenAI.Labels) != 3 || cfg.OpenAI.Labels[1] != "tennis" {
		t.Errorf("unexpected labels %v", cfg.OpenAI.Labels)
	}
	if !cfg.CacheEnable {
		t.Error("expected cache to be enabled")
	}
	if cfg.RedisConfig.TTL != time.Hour {
		t.Errorf("expected 1h ttl, got %v", cfg.RedisConfig.TTL)
	}
}

func TestLoadInvalidDuration(t *testing.T) {
	t.Setenv("PREDICT_TIMEOUT", "soon")

	if _, err := Load(); err == nil {
		t.Fatal("expected error for invalid duration")
	}
}
