package service

import (
	"context"
	"math"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/hypermemo/hypermemo/internal/ai"
	"github.com/hypermemo/hypermemo/internal/model"
	appErr "github.com/hypermemo/hypermemo/internal/pkg/errors"
)

type fakeRagStore struct {
	bookmarks []model.Bookmark
	calls     int
}

func (s *fakeRagStore) ListEmbedded(ctx context.Context, userID string) ([]model.Bookmark, error) {
	s.calls++
	return s.bookmarks, nil
}

func newTestRagService(store RagStore, provider *stubProvider) *RagService {
	return NewRagService(store, ai.NewManager(provider, ai.ManagerConfig{
		GenerateModel: "gen-model",
		EmbedModel:    "embed-model",
	}))
}

// unitVec builds a vector whose cosine against [1, 0] equals score.
func unitVec(score float64) []float32 {
	return []float32{float32(score), float32(math.Sqrt(1 - score*score))}
}

func questionProvider(answer string) *stubProvider {
	return &stubProvider{
		generateQueue: []string{answer},
		embedFunc:     func(string) []float32 { return []float32{1, 0} },
	}
}

func TestAskRejectsShortQuestion(t *testing.T) {
	store := &fakeRagStore{}
	provider := &stubProvider{}
	svc := newTestRagService(store, provider)

	_, err := svc.Ask(context.Background(), "user-1", " hi ")
	require.ErrorIs(t, err, appErr.ErrInvalid)
	require.Zero(t, provider.embedCalls)
	require.Zero(t, store.calls)
}

func TestAskExcludesZeroAndNegativeScores(t *testing.T) {
	store := &fakeRagStore{bookmarks: []model.Bookmark{
		{ID: "a", Title: "A", Embedding: unitVec(0.9)},
		{ID: "b", Title: "B", Embedding: unitVec(0)},
		{ID: "c", Title: "C", Embedding: unitVec(-0.2)},
	}}
	svc := newTestRagService(store, questionProvider("the answer"))

	result, err := svc.Ask(context.Background(), "user-1", "what is A?")
	require.NoError(t, err)
	require.Len(t, result.Matches, 1)
	require.Equal(t, "a", result.Matches[0].Bookmark.ID)
	require.InDelta(t, 0.9, result.Matches[0].Score, 1e-6)
	require.Equal(t, "the answer", result.Answer)
}

func TestAskRanksTopFiveDescending(t *testing.T) {
	scores := []float64{0.3, 0.8, 0.5, 0.9, 0.4, 0.7}
	var bookmarks []model.Bookmark
	for _, score := range scores {
		bookmarks = append(bookmarks, model.Bookmark{Title: "t", Embedding: unitVec(score)})
	}
	store := &fakeRagStore{bookmarks: bookmarks}
	svc := newTestRagService(store, questionProvider("answer"))

	result, err := svc.Ask(context.Background(), "user-1", "rank them")
	require.NoError(t, err)
	require.Len(t, result.Matches, 5)
	for i := 1; i < len(result.Matches); i++ {
		require.Greater(t, result.Matches[i-1].Score, result.Matches[i].Score)
	}
	require.InDelta(t, 0.9, result.Matches[0].Score, 1e-6)
	require.InDelta(t, 0.4, result.Matches[4].Score, 1e-6)
}

func TestAskSkipsEmptyEmbeddings(t *testing.T) {
	store := &fakeRagStore{bookmarks: []model.Bookmark{
		{ID: "empty", Embedding: nil},
		{ID: "scored", Title: "S", Embedding: unitVec(0.5)},
	}}
	svc := newTestRagService(store, questionProvider("answer"))

	result, err := svc.Ask(context.Background(), "user-1", "anything here")
	require.NoError(t, err)
	require.Len(t, result.Matches, 1)
	require.Equal(t, "scored", result.Matches[0].Bookmark.ID)
}

func TestAskPromptCarriesQuestionAndSources(t *testing.T) {
	store := &fakeRagStore{bookmarks: []model.Bookmark{
		{Title: "Go Generics", Summary: "about type parameters", Embedding: unitVec(0.8)},
	}}
	provider := questionProvider("answer")
	svc := newTestRagService(store, provider)

	_, err := svc.Ask(context.Background(), "user-1", "how do generics work?")
	require.NoError(t, err)
	require.Contains(t, provider.lastPrompt, "using ONLY the provided sources")
	require.Contains(t, provider.lastPrompt, "Question: how do generics work?")
	require.Contains(t, provider.lastPrompt, "[1] Go Generics — about type parameters")
}

func TestBuildSourcesText(t *testing.T) {
	matches := []Match{
		{Bookmark: model.Bookmark{Title: "First", Summary: "s1"}},
		{Bookmark: model.Bookmark{Title: "", Summary: "s2"}},
	}
	text := buildSourcesText(matches)
	lines := strings.Split(text, "\n")
	require.Equal(t, []string{
		"[1] First — s1",
		"[2] Untitled — s2",
	}, lines)
}
