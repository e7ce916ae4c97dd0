package service

import (
	"context"
	"fmt"
	"sort"
	"strings"

	"github.com/hypermemo/hypermemo/internal/ai"
	"github.com/hypermemo/hypermemo/internal/model"
	appErr "github.com/hypermemo/hypermemo/internal/pkg/errors"
	"github.com/hypermemo/hypermemo/internal/vector"
)

const (
	minQuestionChars = 3
	topMatches       = 5
)

type RagStore interface {
	ListEmbedded(ctx context.Context, userID string) ([]model.Bookmark, error)
}

type Match struct {
	Bookmark model.Bookmark `json:"bookmark"`
	Score    float64        `json:"score"`
}

type Answer struct {
	Answer  string  `json:"answer"`
	Matches []Match `json:"matches"`
}

// RagService answers questions from the owner's bookmark collection: embed
// the question, score every embedded bookmark, and ask the generator to
// answer from the top matches only.
type RagService struct {
	store RagStore
	ai    *ai.Manager
}

func NewRagService(store RagStore, manager *ai.Manager) *RagService {
	return &RagService{store: store, ai: manager}
}

func (s *RagService) Ask(ctx context.Context, userID, question string) (*Answer, error) {
	question = strings.TrimSpace(question)
	if len([]rune(question)) < minQuestionChars {
		return nil, fmt.Errorf("%w: question is too short", appErr.ErrInvalid)
	}
	queryVec, err := s.ai.EmbedQuery(ctx, question)
	if err != nil {
		return nil, err
	}
	bookmarks, err := s.store.ListEmbedded(ctx, userID)
	if err != nil {
		return nil, err
	}
	matches := make([]Match, 0, len(bookmarks))
	for _, bm := range bookmarks {
		// The storage filter only excludes nulls; empty vectors still get here.
		if len(bm.Embedding) == 0 {
			continue
		}
		score := vector.Cosine(queryVec, bm.Embedding)
		if score <= 0 {
			continue
		}
		matches = append(matches, Match{Bookmark: bm, Score: score})
	}
	sort.SliceStable(matches, func(i, j int) bool {
		return matches[i].Score > matches[j].Score
	})
	if len(matches) > topMatches {
		matches = matches[:topMatches]
	}
	answer, err := s.ai.Generate(ctx, answerPrompt(question, matches))
	if err != nil {
		return nil, err
	}
	return &Answer{Answer: answer, Matches: matches}, nil
}

func answerPrompt(question string, matches []Match) string {
	return strings.Join([]string{
		"You are HyperMemo. Answer the question using ONLY the provided sources. Cite sources with [S#].",
		"Question: " + question,
		"Sources:",
		buildSourcesText(matches),
	}, "\n")
}

func buildSourcesText(matches []Match) string {
	lines := make([]string, 0, len(matches))
	for i, match := range matches {
		title := match.Bookmark.Title
		if title == "" {
			title = "Untitled"
		}
		lines = append(lines, fmt.Sprintf("[%d] %s — %s", i+1, title, match.Bookmark.Summary))
	}
	return strings.Join(lines, "\n")
}
