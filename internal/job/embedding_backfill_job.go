package job

import (
	"context"

	"github.com/hypermemo/hypermemo/internal/service"
)

type EmbeddingBackfillJob struct {
	backfill *service.EmbeddingBackfill
}

func NewEmbeddingBackfillJob(backfill *service.EmbeddingBackfill) *EmbeddingBackfillJob {
	return &EmbeddingBackfillJob{backfill: backfill}
}

func (j *EmbeddingBackfillJob) Name() string {
	return "embedding_backfill"
}

func (j *EmbeddingBackfillJob) Run(ctx context.Context) error {
	if j.backfill == nil {
		return nil
	}
	return j.backfill.Run(ctx)
}
