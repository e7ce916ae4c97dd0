package service

import (
	"context"
	"strings"

	"github.com/hypermemo/hypermemo/internal/ai"
	"github.com/hypermemo/hypermemo/internal/model"
)

// Enricher fills in the derived fields of a bookmark draft: summary, tags and
// embedding. Values supplied by the caller are never overwritten.
type Enricher struct {
	ai *ai.Manager
}

func NewEnricher(manager *ai.Manager) *Enricher {
	return &Enricher{ai: manager}
}

// Enrich mutates bm in place. Summary and tags are generated only when absent
// and raw content exists; the embedding is always recomputed from the final
// field values so it reflects generated text as well as caller input.
func (e *Enricher) Enrich(ctx context.Context, bm *model.Bookmark) error {
	if bm.Summary == "" && bm.RawContent != "" {
		summary, err := e.ai.Summarize(ctx, bm.Title, bm.URL, bm.RawContent)
		if err != nil {
			return err
		}
		bm.Summary = summary
	}
	if len(bm.Tags) == 0 && bm.RawContent != "" {
		tags, err := e.ai.SuggestTags(ctx, bm.Title, bm.RawContent)
		if err != nil {
			return err
		}
		bm.Tags = tags
	}
	embedding, err := e.ai.EmbedDocument(ctx, embeddingSource(bm))
	if err != nil {
		return err
	}
	bm.Embedding = embedding
	return nil
}

func embeddingSource(bm *model.Bookmark) string {
	parts := make([]string, 0, 4)
	for _, part := range []string{bm.Title, bm.Summary, bm.Note, bm.RawContent} {
		if strings.TrimSpace(part) == "" {
			continue
		}
		parts = append(parts, part)
	}
	return strings.Join(parts, "\n")
}
