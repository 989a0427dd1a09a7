package predictor

import (
	"context"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/bytedance/sonic"
	"github.com/kdduha/sportsclass/internal/config"
	"github.com/kdduha/sportsclass/internal/models"
	"github.com/openai/openai-go/v3"
	"github.com/openai/openai-go/v3/option"
)

const pngB64 = "iVBORw0KGgoAAAAN"

func TestHTTPPredict(t *testing.T) {
	var got models.PredictRequest
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost {
			t.Errorf("expected POST, got %s", r.Method)
		}
		if ct := r.Header.Get("Content-Type"); ct != "application/json" {
			t.Errorf("unexpected content type %q", ct)
		}
		if err := sonic.ConfigDefault.NewDecoder(r.Body).Decode(&got); err != nil {
			t.Errorf("decode body: %v", err)
		}
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"class":"soccer"}`))
	}))
	defer srv.Close()

	p := NewHTTP(srv.URL+"/predict", srv.Client())
	class, err := p.Predict(context.Background(), pngB64)
	if err != nil {
		t.Fatalf("Predict failed: %v", err)
	}
	if class != "soccer" {
		t.Errorf("expected soccer, got %q", class)
	}
	if got.Image != pngB64 {
		t.Errorf("endpoint received %q", got.Image)
	}
}

func TestHTTPPredictErrors(t *testing.T) {
	tests := []struct {
		name    string
		status  int
		body    string
		wantErr error
	}{
		{name: "server error", status: http.StatusInternalServerError, body: "boom"},
		{name: "bad json", status: http.StatusOK, body: "<html>"},
		{name: "missing class", status: http.StatusOK, body: `{"label":"soccer"}`, wantErr: ErrEmptyClass},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(tt.status)
				io.WriteString(w, tt.body)
			}))
			defer srv.Close()

			_, err := NewHTTP(srv.URL, srv.Client()).Predict(context.Background(), pngB64)
			if err == nil {
				t.Fatal("expected error, got nil")
			}
			if tt.wantErr != nil && !errors.Is(err, tt.wantErr) {
				t.Errorf("expected %v, got %v", tt.wantErr, err)
			}
		})
	}
}

func TestOpenAIPredict(t *testing.T) {
	var body string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if !strings.HasSuffix(r.URL.Path, "/chat/completions") {
			t.Errorf("unexpected path %s", r.URL.Path)
		}
		b, _ := io.ReadAll(r.Body)
		body = string(b)
		w.Header().Set("Content-Type", "application/json")
		io.WriteString(w, `{
			"id": "chatcmpl-1",
			"object": "chat.completion",
			"created": 0,
			"model": "vision",
			"choices": [{"index": 0, "finish_reason": "stop",
				"message": {"role": "assistant", "content": " Soccer.\n"}}]
		}`)
	}))
	defer srv.Close()

	client := openai.NewClient(
		option.WithAPIKey("test"),
		option.WithBaseURL(srv.URL+"/v1/"),
		option.WithMaxRetries(0),
	)
	p := NewOpenAI(client, config.OpenAIConfig{Model: "vision", Labels: []string{"soccer", "tennis"}})

	class, err := p.Predict(context.Background(), pngB64)
	if err != nil {
		t.Fatalf("Predict failed: %v", err)
	}
	if class != "soccer" {
		t.Errorf("expected soccer, got %q", class)
	}
	if !strings.Contains(body, "data:image/png;base64,"+pngB64) {
		t.Errorf("request does not carry the image data url: %s", body)
	}
	if !strings.Contains(body, "soccer, tennis") {
		t.Errorf("request does not carry the label list: %s", body)
	}
}

func TestOpenAIPredictInvalidBase64(t *testing.T) {
	p := NewOpenAI(openai.NewClient(option.WithAPIKey("test")), config.OpenAIConfig{Model: "vision"})

	if _, err := p.Predict(context.Background(), "%%%"); err == nil {
		t.Fatal("expected error for invalid base64")
	}
}

func TestNormalizeLabel(t *testing.T) {
	tests := map[string]string{
		"Soccer":               "soccer",
		"  Ice Hockey.  ":      "ice hockey",
		"\"rugby\"":            "rugby",
		"tennis\nbecause ball": "tennis",
		"":                     "",
	}
	for in, want := range tests {
		if got := normalizeLabel(in); got != want {
			t.Errorf("normalizeLabel(%q) = %q, want %q", in, got, want)
		}
	}
}

func TestNew(t *testing.T) {
	cfg := &config.Config{}
	cfg.Predictor.Backend = config.BackendHTTP
	cfg.Predictor.Endpoint = "http://localhost:5000/predict"

	p, err := New(cfg)
	if err != nil {
		t.Fatalf("New failed: %v", err)
	}
	if p.Name() != "http" {
		t.Errorf("expected http predictor, got %s", p.Name())
	}

	cfg.Predictor.Backend = config.BackendOpenAI
	if p, err = New(cfg); err != nil || p.Name() != "openai" {
		t.Errorf("expected openai predictor, got %v, %v", p, err)
	}

	cfg.Predictor.Backend = "tflite"
	if _, err := New(cfg); err == nil {
		t.Error("expected error for unknown backend")
	}
}
