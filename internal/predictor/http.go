package predictor

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"

	"github.com/bytedance/sonic"
	"github.com/kdduha/sportsclass/internal/models"
)

var ErrEmptyClass = errors.New("prediction response has no class")

// HTTP posts base64 images to a prediction endpoint.
type HTTP struct {
	endpoint string
	client   *http.Client
}

func NewHTTP(endpoint string, client *http.Client) *HTTP {
	if client == nil {
		client = http.DefaultClient
	}
	return &HTTP{
		endpoint: endpoint,
		client:   client,
	}
}

func (p *HTTP) Name() string { return "http" }

func (p *HTTP) Predict(ctx context.Context, imageB64 string) (string, error) {
	body, err := sonic.Marshal(models.PredictRequest{Image: imageB64})
	if err != nil {
		return "", fmt.Errorf("marshal req: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, p.endpoint, bytes.NewReader(body))
	if err != nil {
		return "", err
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := p.client.Do(req)
	if err != nil {
		return "", fmt.Errorf("predict request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		b, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return "", fmt.Errorf("bad status %d: %s",
			resp.StatusCode,
			strings.TrimSpace(string(b)),
		)
	}

	var out models.PredictResponse
	if err := sonic.ConfigDefault.NewDecoder(resp.Body).Decode(&out); err != nil {
		return "", fmt.Errorf("decode response: %w", err)
	}
	if out.Class == "" {
		return "", ErrEmptyClass
	}
	return out.Class, nil
}
