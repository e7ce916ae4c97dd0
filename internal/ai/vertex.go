package ai

import (
	"context"
	"strings"

	"google.golang.org/genai"
)

type vertexConfig struct {
	Project  string `json:"project"`
	Location string `json:"location"`
}

type vertexProvider struct {
	project  string
	location string
}

func (p *vertexProvider) Name() string {
	return "vertex"
}

func (p *vertexProvider) client(ctx context.Context) (*genai.Client, error) {
	if p.project == "" {
		return nil, ErrUnavailable
	}
	return genai.NewClient(ctx, &genai.ClientConfig{
		Project:  p.project,
		Location: p.location,
		Backend:  genai.BackendVertexAI,
	})
}

func (p *vertexProvider) Generate(ctx context.Context, model string, prompt string) (string, error) {
	client, err := p.client(ctx)
	if err != nil {
		return "", err
	}
	resp, err := client.Models.GenerateContent(
		ctx,
		model,
		[]*genai.Content{{Parts: []*genai.Part{{Text: prompt}}}},
		nil,
	)
	if err != nil {
		return "", err
	}
	return flattenGenerated(resp), nil
}

func (p *vertexProvider) Embed(ctx context.Context, model string, text string, taskType string) ([]float32, error) {
	client, err := p.client(ctx)
	if err != nil {
		return nil, err
	}
	var config *genai.EmbedContentConfig
	if taskType != "" {
		config = &genai.EmbedContentConfig{TaskType: taskType}
	}
	resp, err := client.Models.EmbedContent(
		ctx,
		model,
		[]*genai.Content{{Parts: []*genai.Part{{Text: text}}}},
		config,
	)
	if err != nil {
		return nil, err
	}
	if len(resp.Embeddings) == 0 {
		return nil, nil
	}
	return resp.Embeddings[0].Values, nil
}

// flattenGenerated normalizes a generation response to plain text. The
// convenience accessor only covers the first candidate, so when it comes back
// blank we walk every candidate and concatenate its text parts.
func flattenGenerated(resp *genai.GenerateContentResponse) string {
	if resp == nil {
		return ""
	}
	if len(resp.Candidates) > 0 && resp.Candidates[0] != nil {
		if text := strings.TrimSpace(resp.Text()); text != "" {
			return text
		}
	}
	var sb strings.Builder
	for _, candidate := range resp.Candidates {
		if candidate == nil || candidate.Content == nil {
			continue
		}
		for _, part := range candidate.Content.Parts {
			if part == nil {
				continue
			}
			sb.WriteString(part.Text)
		}
	}
	return strings.TrimSpace(sb.String())
}

func createVertexFactory(args interface{}) (IProvider, error) {
	cfg := &vertexConfig{}
	if err := decodeConfig(args, cfg); err != nil {
		return nil, err
	}
	return &vertexProvider{
		project:  strings.TrimSpace(cfg.Project),
		location: strings.TrimSpace(cfg.Location),
	}, nil
}

func init() {
	Register("vertex", createVertexFactory)
}
