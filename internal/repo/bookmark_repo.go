package repo

import (
	"context"
	"database/sql"
	"encoding/json"

	"github.com/didi/gendry/builder"
	"github.com/pgvector/pgvector-go"

	"github.com/hypermemo/hypermemo/internal/model"
	"github.com/hypermemo/hypermemo/internal/pkg/dbutil"
	appErr "github.com/hypermemo/hypermemo/internal/pkg/errors"
)

const DefaultListLimit = 100

var bookmarkColumns = []string{"id", "title", "url", "summary", "note", "raw_content", "tags", "embedding", "created_at", "updated_at"}

type BookmarkRepo struct {
	db *sql.DB
}

func NewBookmarkRepo(db *sql.DB) *BookmarkRepo {
	return &BookmarkRepo{db: db}
}

func (r *BookmarkRepo) Insert(ctx context.Context, userID string, bm *model.Bookmark) error {
	tags, err := json.Marshal(bm.Tags)
	if err != nil {
		return err
	}
	data := map[string]interface{}{
		"id":          bm.ID,
		"user_id":     userID,
		"title":       bm.Title,
		"url":         bm.URL,
		"summary":     bm.Summary,
		"note":        bm.Note,
		"raw_content": bm.RawContent,
		"tags":        string(tags),
		"embedding":   embeddingValue(bm.Embedding),
		"created_at":  bm.CreatedAt,
		"updated_at":  bm.UpdatedAt,
	}
	sqlStr, args, err := builder.BuildInsert("bookmarks", []map[string]interface{}{data})
	if err != nil {
		return err
	}
	sqlStr, args = dbutil.Finalize(sqlStr, args)
	_, err = r.db.ExecContext(ctx, sqlStr, args...)
	if dbutil.IsConflict(err) {
		return appErr.ErrInvalid
	}
	return err
}

func (r *BookmarkRepo) Update(ctx context.Context, userID string, bm *model.Bookmark) error {
	tags, err := json.Marshal(bm.Tags)
	if err != nil {
		return err
	}
	where := map[string]interface{}{
		"id":      bm.ID,
		"user_id": userID,
	}
	update := map[string]interface{}{
		"title":       bm.Title,
		"url":         bm.URL,
		"summary":     bm.Summary,
		"note":        bm.Note,
		"raw_content": bm.RawContent,
		"tags":        string(tags),
		"embedding":   embeddingValue(bm.Embedding),
		"updated_at":  bm.UpdatedAt,
	}
	sqlStr, args, err := builder.BuildUpdate("bookmarks", where, update)
	if err != nil {
		return err
	}
	sqlStr, args = dbutil.Finalize(sqlStr, args)
	result, err := r.db.ExecContext(ctx, sqlStr, args...)
	if err != nil {
		return err
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return err
	}
	if affected == 0 {
		return appErr.ErrNotFound
	}
	return nil
}

func (r *BookmarkRepo) GetByID(ctx context.Context, userID, id string) (*model.Bookmark, error) {
	where := map[string]interface{}{
		"id":      id,
		"user_id": userID,
	}
	sqlStr, args, err := builder.BuildSelect("bookmarks", where, bookmarkColumns)
	if err != nil {
		return nil, err
	}
	sqlStr, args = dbutil.Finalize(sqlStr, args)
	rows, err := r.db.QueryContext(ctx, sqlStr, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	if !rows.Next() {
		return nil, appErr.ErrNotFound
	}
	return scanBookmark(rows)
}

// ListByUser returns the owner's most recently created bookmarks.
func (r *BookmarkRepo) ListByUser(ctx context.Context, userID string, limit uint) ([]model.Bookmark, error) {
	if limit == 0 {
		limit = DefaultListLimit
	}
	where := map[string]interface{}{
		"user_id":  userID,
		"_orderby": "created_at desc",
		"_limit":   []uint{0, limit},
	}
	sqlStr, args, err := builder.BuildSelect("bookmarks", where, bookmarkColumns)
	if err != nil {
		return nil, err
	}
	sqlStr, args = dbutil.Finalize(sqlStr, args)
	return r.queryBookmarks(ctx, sqlStr, args...)
}

// ListEmbedded returns the owner's bookmarks whose embedding column is not
// null. Rows with an empty stored vector still pass this filter; callers must
// re-check emptiness themselves.
func (r *BookmarkRepo) ListEmbedded(ctx context.Context, userID string) ([]model.Bookmark, error) {
	const query = `
		SELECT id, title, url, summary, note, raw_content, tags, embedding, created_at, updated_at
		FROM bookmarks
		WHERE user_id = $1 AND embedding IS NOT NULL
	`
	return r.queryBookmarks(ctx, query, userID)
}

// OwnedBookmark carries the owner alongside the record for cross-user scans.
type OwnedBookmark struct {
	UserID   string
	Bookmark model.Bookmark
}

// ListMissingEmbedding returns bookmarks saved without a vector, for the
// backfill job.
func (r *BookmarkRepo) ListMissingEmbedding(ctx context.Context, limit int) ([]OwnedBookmark, error) {
	const query = `
		SELECT user_id, id, title, url, summary, note, raw_content, tags, embedding, created_at, updated_at
		FROM bookmarks
		WHERE embedding IS NULL
		ORDER BY updated_at ASC
		LIMIT $1
	`
	rows, err := r.db.QueryContext(ctx, query, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var results []OwnedBookmark
	for rows.Next() {
		var userID string
		var bm model.Bookmark
		var tags []byte
		var embedding sql.NullString
		if err := rows.Scan(&userID, &bm.ID, &bm.Title, &bm.URL, &bm.Summary, &bm.Note, &bm.RawContent, &tags, &embedding, &bm.CreatedAt, &bm.UpdatedAt); err != nil {
			return nil, err
		}
		if err := decodeRow(&bm, tags, embedding); err != nil {
			return nil, err
		}
		results = append(results, OwnedBookmark{UserID: userID, Bookmark: bm})
	}
	return results, rows.Err()
}

func (r *BookmarkRepo) queryBookmarks(ctx context.Context, query string, args ...interface{}) ([]model.Bookmark, error) {
	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var results []model.Bookmark
	for rows.Next() {
		bm, err := scanBookmark(rows)
		if err != nil {
			return nil, err
		}
		results = append(results, *bm)
	}
	return results, rows.Err()
}

func scanBookmark(rows *sql.Rows) (*model.Bookmark, error) {
	var bm model.Bookmark
	var tags []byte
	var embedding sql.NullString
	if err := rows.Scan(&bm.ID, &bm.Title, &bm.URL, &bm.Summary, &bm.Note, &bm.RawContent, &tags, &embedding, &bm.CreatedAt, &bm.UpdatedAt); err != nil {
		return nil, err
	}
	if err := decodeRow(&bm, tags, embedding); err != nil {
		return nil, err
	}
	return &bm, nil
}

func decodeRow(bm *model.Bookmark, tags []byte, embedding sql.NullString) error {
	if len(tags) > 0 {
		if err := json.Unmarshal(tags, &bm.Tags); err != nil {
			return err
		}
	}
	if embedding.Valid {
		var vec pgvector.Vector
		if err := vec.Scan(embedding.String); err != nil {
			return err
		}
		bm.Embedding = vec.Slice()
	}
	return nil
}

func embeddingValue(values []float32) interface{} {
	if len(values) == 0 {
		return nil
	}
	return pgvector.NewVector(values)
}
