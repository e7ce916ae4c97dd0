package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/hypermemo/hypermemo/internal/pkg/response"
	"github.com/hypermemo/hypermemo/internal/service"
)

type AskHandler struct {
	rag *service.RagService
}

func NewAskHandler(rag *service.RagService) *AskHandler {
	return &AskHandler{rag: rag}
}

type askRequest struct {
	Question string `json:"question"`
}

func (h *AskHandler) Ask(c *gin.Context) {
	var req askRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, http.StatusBadRequest, "invalid", "invalid request")
		return
	}
	result, err := h.rag.Ask(c.Request.Context(), getUserID(c), req.Question)
	if err != nil {
		handleError(c, err)
		return
	}
	response.Success(c, result)
}
