package service

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/hypermemo/hypermemo/internal/ai"
	"github.com/hypermemo/hypermemo/internal/model"
)

// stubProvider counts gateway calls and returns canned results.
type stubProvider struct {
	generateCalls int
	embedCalls    int
	generateQueue []string
	embedFunc     func(text string) []float32
	lastPrompt    string
}

func (p *stubProvider) Name() string {
	return "stub"
}

func (p *stubProvider) Generate(ctx context.Context, model string, prompt string) (string, error) {
	p.generateCalls++
	p.lastPrompt = prompt
	if len(p.generateQueue) == 0 {
		return "", nil
	}
	out := p.generateQueue[0]
	p.generateQueue = p.generateQueue[1:]
	return out, nil
}

func (p *stubProvider) Embed(ctx context.Context, model string, text string, taskType string) ([]float32, error) {
	p.embedCalls++
	if p.embedFunc == nil {
		return []float32{1}, nil
	}
	return p.embedFunc(text), nil
}

func newTestEnricher(provider *stubProvider) *Enricher {
	return NewEnricher(ai.NewManager(provider, ai.ManagerConfig{
		GenerateModel: "gen-model",
		EmbedModel:    "embed-model",
	}))
}

func TestEnrichFillsMissingFields(t *testing.T) {
	provider := &stubProvider{
		generateQueue: []string{"a generated summary", "Tech, AI, tools"},
	}
	enricher := newTestEnricher(provider)
	bm := &model.Bookmark{
		Title:      "A page",
		URL:        "http://example.com",
		RawContent: "full scraped text",
	}

	require.NoError(t, enricher.Enrich(context.Background(), bm))
	require.Equal(t, "a generated summary", bm.Summary)
	require.Equal(t, []string{"tech", "ai", "tools"}, bm.Tags)
	require.NotEmpty(t, bm.Embedding)
	require.Equal(t, 2, provider.generateCalls)
	require.Equal(t, 1, provider.embedCalls)
}

func TestEnrichPreservesCallerValues(t *testing.T) {
	provider := &stubProvider{}
	enricher := newTestEnricher(provider)
	bm := &model.Bookmark{
		Title:      "A page",
		URL:        "http://example.com",
		Summary:    "caller summary",
		Tags:       []string{"caller-tag"},
		RawContent: "full scraped text",
	}

	require.NoError(t, enricher.Enrich(context.Background(), bm))
	require.Equal(t, "caller summary", bm.Summary)
	require.Equal(t, []string{"caller-tag"}, bm.Tags)
	require.Zero(t, provider.generateCalls)
	require.Equal(t, 1, provider.embedCalls)
}

func TestEnrichNoRawContentSkipsGeneration(t *testing.T) {
	provider := &stubProvider{}
	enricher := newTestEnricher(provider)
	bm := &model.Bookmark{Title: "A", URL: "http://x"}

	require.NoError(t, enricher.Enrich(context.Background(), bm))
	require.Equal(t, "", bm.Summary)
	require.Empty(t, bm.Tags)
	require.Zero(t, provider.generateCalls)
	// Title is non-blank, so the embedding is still computed from it.
	require.Equal(t, 1, provider.embedCalls)
}

func TestEnrichAllBlankYieldsEmptyEmbedding(t *testing.T) {
	provider := &stubProvider{}
	enricher := newTestEnricher(provider)
	bm := &model.Bookmark{Title: "   ", URL: " "}

	require.NoError(t, enricher.Enrich(context.Background(), bm))
	require.Empty(t, bm.Embedding)
	require.Zero(t, provider.embedCalls)
}

func TestEnrichRecomputesEmbeddingDeterministically(t *testing.T) {
	provider := &stubProvider{
		embedFunc: func(text string) []float32 {
			return []float32{float32(len(text))}
		},
	}
	enricher := newTestEnricher(provider)
	bm := &model.Bookmark{
		Title:   "A page",
		URL:     "http://example.com",
		Summary: "s",
		Tags:    []string{"t"},
		Note:    "n",
	}

	require.NoError(t, enricher.Enrich(context.Background(), bm))
	first := append([]float32(nil), bm.Embedding...)
	require.NoError(t, enricher.Enrich(context.Background(), bm))
	require.Equal(t, first, bm.Embedding)
	require.Equal(t, 2, provider.embedCalls)
	require.Zero(t, provider.generateCalls)
}

func TestEmbeddingSourceJoinsNonEmptyParts(t *testing.T) {
	bm := &model.Bookmark{
		Title:      "title",
		Summary:    "",
		Note:       "note",
		RawContent: "content",
	}
	require.Equal(t, "title\nnote\ncontent", embeddingSource(bm))
}
