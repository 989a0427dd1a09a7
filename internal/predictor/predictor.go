// Package predictor holds the outbound classifiers that turn a base64 image
// into a single class label.
package predictor

import (
	"context"
	"fmt"
	"net/http"

	"github.com/kdduha/sportsclass/internal/config"
	"github.com/openai/openai-go/v3"
	"github.com/openai/openai-go/v3/option"
)

type Predictor interface {
	Name() string
	Predict(ctx context.Context, imageB64 string) (string, error)
}

// New builds the predictor selected by cfg.Predictor.Backend.
func New(cfg *config.Config) (Predictor, error) {
	httpClient := &http.Client{Timeout: cfg.Predictor.Timeout}

	switch cfg.Predictor.Backend {
	case config.BackendHTTP, "":
		return NewHTTP(cfg.Predictor.Endpoint, httpClient), nil
	case config.BackendOpenAI:
		return NewOpenAI(
			openai.NewClient(
				option.WithAPIKey(cfg.OpenAI.APIKey),
				option.WithBaseURL(cfg.OpenAI.BaseURL),
				option.WithHTTPClient(httpClient),
			), cfg.OpenAI), nil
	default:
		return nil, fmt.Errorf("unsupported predictor backend {%s}", cfg.Predictor.Backend)
	}
}
