package predictor

import (
	"context"
	"encoding/base64"
	"fmt"
	"strings"

	"github.com/kdduha/sportsclass/internal/config"
	"github.com/kdduha/sportsclass/internal/source"
	"github.com/openai/openai-go/v3"
	"github.com/openai/openai-go/v3/shared"
)

const (
	systemPromptClassify = `
You are an image classifier for sports photos.
Answer with the name of the sport only: one lowercase label, no punctuation, no explanation.`

	labelsPromptTemplate = "Choose exactly one label from this list: %s"
)

// OpenAI classifies images with an OpenAI-compatible vision model.
type OpenAI struct {
	client    openai.Client
	modelName string
	labels    []string
}

func NewOpenAI(client openai.Client, cfg config.OpenAIConfig) *OpenAI {
	return &OpenAI{
		client:    client,
		modelName: cfg.Model,
		labels:    cfg.Labels,
	}
}

func (p *OpenAI) Name() string { return "openai" }

func (p *OpenAI) Predict(ctx context.Context, imageB64 string) (string, error) {
	params, err := p.buildReq(imageB64)
	if err != nil {
		return "", fmt.Errorf("failed to build request: %w", err)
	}

	resp, err := p.client.Chat.Completions.New(ctx, *params)
	if err != nil {
		return "", fmt.Errorf("OpenAI client error: %w", err)
	}
	if len(resp.Choices) == 0 {
		return "", ErrEmptyClass
	}

	class := normalizeLabel(resp.Choices[0].Message.Content)
	if class == "" {
		return "", ErrEmptyClass
	}
	return class, nil
}

func (p *OpenAI) buildReq(imageB64 string) (*openai.ChatCompletionNewParams, error) {
	raw, err := base64.StdEncoding.DecodeString(imageB64)
	if err != nil {
		return nil, fmt.Errorf("failed to decode base64: %w", err)
	}
	imageData := fmt.Sprintf("data:%s;base64,%s", source.ContentType(raw), imageB64)

	parts := []openai.ChatCompletionContentPartUnionParam{
		openai.ImageContentPart(openai.ChatCompletionContentPartImageImageURLParam{
			URL: imageData,
		}),
	}
	if len(p.labels) > 0 {
		parts = append([]openai.ChatCompletionContentPartUnionParam{
			openai.TextContentPart(fmt.Sprintf(labelsPromptTemplate, strings.Join(p.labels, ", "))),
		}, parts...)
	}

	return &openai.ChatCompletionNewParams{
		Model: shared.ChatModel(p.modelName),
		Messages: []openai.ChatCompletionMessageParamUnion{
			openai.SystemMessage(systemPromptClassify),
			openai.UserMessage(parts),
		},
		Temperature: openai.Float(0),
	}, nil
}

func normalizeLabel(s string) string {
	s = strings.TrimSpace(s)
	if i := strings.IndexByte(s, '\n'); i >= 0 {
		s = s[:i]
	}
	s = strings.Trim(s, " .!\"'`")
	return strings.ToLower(s)
}
