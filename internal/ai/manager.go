package ai

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/hashicorp/golang-lru/v2/expirable"
)

const (
	// Prompt input caps, to bound generation cost per call.
	summaryContentLimit = 8000
	tagsContentLimit    = 4000

	maxTags = 5

	taskTypeDocument = "RETRIEVAL_DOCUMENT"
	taskTypeQuery    = "RETRIEVAL_QUERY"
)

type ManagerConfig struct {
	GenerateModel string
	EmbedModel    string
	Timeout       int // seconds, 0 disables the deadline
}

// Manager wraps the configured provider with the fixed prompt templates and a
// short-lived cache for generated text. Embeddings are never cached here.
type Manager struct {
	provider IProvider
	cfg      ManagerConfig
	cache    *expirable.LRU[string, string]
}

func NewManager(provider IProvider, cfg ManagerConfig) *Manager {
	return &Manager{
		provider: provider,
		cfg:      cfg,
		cache:    expirable.NewLRU[string, string](10000, nil, 2*time.Hour),
	}
}

// Generate returns the provider's trimmed plain-text reply. An empty reply is
// a valid result, not an error.
func (m *Manager) Generate(ctx context.Context, prompt string) (string, error) {
	if m.cfg.Timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, time.Duration(m.cfg.Timeout)*time.Second)
		defer cancel()
	}
	text, err := m.provider.Generate(ctx, m.cfg.GenerateModel, prompt)
	if err != nil {
		return "", fmt.Errorf("generate: %w", err)
	}
	return strings.TrimSpace(text), nil
}

// Embed maps text to a vector. Blank input short-circuits to an empty vector
// without touching the provider.
func (m *Manager) Embed(ctx context.Context, text string, taskType string) ([]float32, error) {
	trimmed := strings.TrimSpace(text)
	if trimmed == "" {
		return nil, nil
	}
	if m.cfg.Timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, time.Duration(m.cfg.Timeout)*time.Second)
		defer cancel()
	}
	values, err := m.provider.Embed(ctx, m.cfg.EmbedModel, trimmed, taskType)
	if err != nil {
		return nil, fmt.Errorf("embed: %w", err)
	}
	return values, nil
}

// EmbedDocument embeds stored bookmark text.
func (m *Manager) EmbedDocument(ctx context.Context, text string) ([]float32, error) {
	return m.Embed(ctx, text, taskTypeDocument)
}

// EmbedQuery embeds a user question.
func (m *Manager) EmbedQuery(ctx context.Context, text string) ([]float32, error) {
	return m.Embed(ctx, text, taskTypeQuery)
}

// Summarize produces a short abstract of a captured page.
func (m *Manager) Summarize(ctx context.Context, title, url, content string) (string, error) {
	prompt := summaryPrompt(title, url, content)
	cacheKey := m.cacheKey("summary", prompt)
	if cached, ok := m.cache.Get(cacheKey); ok {
		return cached, nil
	}
	text, err := m.Generate(ctx, prompt)
	if err != nil {
		return "", err
	}
	m.cache.Add(cacheKey, text)
	return text, nil
}

// SuggestTags asks for up to five single-word tags for a captured page.
func (m *Manager) SuggestTags(ctx context.Context, title, content string) ([]string, error) {
	prompt := tagsPrompt(title, content)
	cacheKey := m.cacheKey("tags", prompt)
	if cached, ok := m.cache.Get(cacheKey); ok {
		var tags []string
		if err := json.Unmarshal([]byte(cached), &tags); err == nil {
			return tags, nil
		}
	}
	text, err := m.Generate(ctx, prompt)
	if err != nil {
		return nil, err
	}
	tags := ParseTags(text)
	if data, err := json.Marshal(tags); err == nil {
		m.cache.Add(cacheKey, string(data))
	}
	return tags, nil
}

func (m *Manager) cacheKey(feature, text string) string {
	hash := sha256.Sum256([]byte(text))
	return feature + ":" + hex.EncodeToString(hash[:])
}

func summaryPrompt(title, url, content string) string {
	parts := []string{"You are HyperMemo, a concise research assistant."}
	if title != "" {
		parts = append(parts, "Title: "+title)
	}
	if url != "" {
		parts = append(parts, "URL: "+url)
	}
	parts = append(parts, "Content:", truncate(content, summaryContentLimit))
	return strings.Join(parts, "\n")
}

func tagsPrompt(title, content string) string {
	return strings.Join([]string{
		"Suggest up to 5 concise tags (single words) describing the following page. Return comma-separated words only.",
		"Title: " + title,
		"Content:",
		truncate(content, tagsContentLimit),
	}, "\n")
}

// ParseTags splits comma-separated model output into at most five trimmed
// lowercase tags, dropping empties.
func ParseTags(raw string) []string {
	tags := make([]string, 0, maxTags)
	for _, part := range strings.Split(raw, ",") {
		tag := strings.ToLower(strings.TrimSpace(part))
		if tag == "" {
			continue
		}
		tags = append(tags, tag)
		if len(tags) >= maxTags {
			break
		}
	}
	return tags
}

func truncate(s string, limit int) string {
	if len(s) <= limit {
		return s
	}
	return s[:limit]
}
