package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/hypermemo/hypermemo/internal/ai"
	"github.com/hypermemo/hypermemo/internal/pkg/response"
)

// AIHandler exposes the generation gateway for ad-hoc summary and tag
// suggestions, without persisting anything.
type AIHandler struct {
	ai *ai.Manager
}

func NewAIHandler(manager *ai.Manager) *AIHandler {
	return &AIHandler{ai: manager}
}

type aiSummaryRequest struct {
	Title   string `json:"title"`
	URL     string `json:"url"`
	Content string `json:"content"`
}

type aiTagsRequest struct {
	Title   string `json:"title"`
	Content string `json:"content"`
}

func (h *AIHandler) Summary(c *gin.Context) {
	var req aiSummaryRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, http.StatusBadRequest, "invalid", "invalid request")
		return
	}
	summary, err := h.ai.Summarize(c.Request.Context(), req.Title, req.URL, req.Content)
	if err != nil {
		handleError(c, err)
		return
	}
	response.Success(c, gin.H{"summary": summary})
}

func (h *AIHandler) Tags(c *gin.Context) {
	var req aiTagsRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, http.StatusBadRequest, "invalid", "invalid request")
		return
	}
	tags, err := h.ai.SuggestTags(c.Request.Context(), req.Title, req.Content)
	if err != nil {
		handleError(c, err)
		return
	}
	response.Success(c, gin.H{"tags": tags})
}
