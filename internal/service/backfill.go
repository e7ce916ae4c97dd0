package service

import (
	"context"
	"time"

	"github.com/xxxsen/common/logutil"
	"go.uber.org/zap"

	"github.com/hypermemo/hypermemo/internal/ai"
	"github.com/hypermemo/hypermemo/internal/model"
	"github.com/hypermemo/hypermemo/internal/repo"
)

type BackfillStore interface {
	ListMissingEmbedding(ctx context.Context, limit int) ([]repo.OwnedBookmark, error)
	Update(ctx context.Context, userID string, bm *model.Bookmark) error
}

// EmbeddingBackfill re-embeds bookmarks persisted without a vector, e.g.
// those saved while the embedding provider was failing.
type EmbeddingBackfill struct {
	store BackfillStore
	ai    *ai.Manager
	batch int
	now   func() time.Time
}

func NewEmbeddingBackfill(store BackfillStore, manager *ai.Manager, batch int) *EmbeddingBackfill {
	return &EmbeddingBackfill{
		store: store,
		ai:    manager,
		batch: batch,
		now:   time.Now,
	}
}

func (s *EmbeddingBackfill) Run(ctx context.Context) error {
	items, err := s.store.ListMissingEmbedding(ctx, s.batch)
	if err != nil {
		return err
	}
	for _, item := range items {
		logger := logutil.GetLogger(ctx).With(
			zap.String("user_id", item.UserID),
			zap.String("bookmark_id", item.Bookmark.ID),
		)
		embedding, err := s.ai.EmbedDocument(ctx, embeddingSource(&item.Bookmark))
		if err != nil {
			logger.Warn("backfill embedding failed", zap.Error(err))
			continue
		}
		if len(embedding) == 0 {
			// All text fields blank; nothing to embed.
			continue
		}
		bm := item.Bookmark
		bm.Embedding = embedding
		bm.UpdatedAt = s.now().UnixMilli()
		if err := s.store.Update(ctx, item.UserID, &bm); err != nil {
			logger.Warn("backfill update failed", zap.Error(err))
			continue
		}
		logger.Info("embedding backfilled", zap.Int("dims", len(embedding)))
	}
	return nil
}
