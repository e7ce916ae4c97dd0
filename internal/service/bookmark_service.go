package service

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/hypermemo/hypermemo/internal/model"
	appErr "github.com/hypermemo/hypermemo/internal/pkg/errors"
)

type BookmarkStore interface {
	Insert(ctx context.Context, userID string, bm *model.Bookmark) error
	Update(ctx context.Context, userID string, bm *model.Bookmark) error
	GetByID(ctx context.Context, userID, id string) (*model.Bookmark, error)
	ListByUser(ctx context.Context, userID string, limit uint) ([]model.Bookmark, error)
}

type BookmarkService struct {
	store    BookmarkStore
	enricher *Enricher
	now      func() time.Time
}

func NewBookmarkService(store BookmarkStore, enricher *Enricher) *BookmarkService {
	return &BookmarkService{
		store:    store,
		enricher: enricher,
		now:      time.Now,
	}
}

// BookmarkSaveInput carries one write request. Nil fields were absent from the
// payload and leave the stored value untouched.
type BookmarkSaveInput struct {
	ID         string
	Title      *string
	URL        *string
	Summary    *string
	Note       *string
	RawContent *string
	Tags       *[]string
}

// Save upserts a bookmark: merge onto the existing record when the id is
// known, enrich synchronously, then persist. Concurrent writes to the same id
// race with last-write-wins semantics.
func (s *BookmarkService) Save(ctx context.Context, userID string, input BookmarkSaveInput) (*model.Bookmark, error) {
	var bm *model.Bookmark
	id := strings.TrimSpace(input.ID)
	if id != "" {
		existing, err := s.store.GetByID(ctx, userID, id)
		if err != nil && !appErr.IsNotFound(err) {
			return nil, err
		}
		bm = existing
	}
	creating := bm == nil
	if creating {
		if id == "" {
			id = newID()
		}
		bm = &model.Bookmark{ID: id, Tags: []string{}}
	}
	applyInput(bm, input)
	if bm.Title == "" || bm.URL == "" {
		return nil, fmt.Errorf("%w: title and url are required", appErr.ErrInvalid)
	}
	if err := s.enricher.Enrich(ctx, bm); err != nil {
		return nil, err
	}
	now := s.now().UnixMilli()
	bm.UpdatedAt = now
	if creating {
		bm.CreatedAt = now
		if err := s.store.Insert(ctx, userID, bm); err != nil {
			return nil, err
		}
		return bm, nil
	}
	if err := s.store.Update(ctx, userID, bm); err != nil {
		return nil, err
	}
	return bm, nil
}

func (s *BookmarkService) Get(ctx context.Context, userID, id string) (*model.Bookmark, error) {
	return s.store.GetByID(ctx, userID, id)
}

func (s *BookmarkService) List(ctx context.Context, userID string, limit uint) ([]model.Bookmark, error) {
	return s.store.ListByUser(ctx, userID, limit)
}

func applyInput(bm *model.Bookmark, input BookmarkSaveInput) {
	if input.Title != nil {
		bm.Title = strings.TrimSpace(*input.Title)
	}
	if input.URL != nil {
		bm.URL = strings.TrimSpace(*input.URL)
	}
	if input.Summary != nil {
		bm.Summary = strings.TrimSpace(*input.Summary)
	}
	if input.Note != nil {
		bm.Note = strings.TrimSpace(*input.Note)
	}
	if input.RawContent != nil {
		bm.RawContent = strings.TrimSpace(*input.RawContent)
	}
	if input.Tags != nil {
		bm.Tags = normalizeTags(*input.Tags)
	}
}

const maxBookmarkTags = 5

// normalizeTags trims, lowercases, drops empties and caps the list the same
// way generated tags are parsed.
func normalizeTags(raw []string) []string {
	tags := make([]string, 0, len(raw))
	for _, tag := range raw {
		normalized := strings.ToLower(strings.TrimSpace(tag))
		if normalized == "" {
			continue
		}
		tags = append(tags, normalized)
		if len(tags) >= maxBookmarkTags {
			break
		}
	}
	return tags
}
