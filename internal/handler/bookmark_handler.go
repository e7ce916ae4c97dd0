package handler

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/hypermemo/hypermemo/internal/pkg/response"
	"github.com/hypermemo/hypermemo/internal/service"
)

type BookmarkHandler struct {
	bookmarks *service.BookmarkService
}

func NewBookmarkHandler(bookmarks *service.BookmarkService) *BookmarkHandler {
	return &BookmarkHandler{bookmarks: bookmarks}
}

// bookmarkRequest uses pointers so absent fields can be told apart from empty
// ones; absent fields keep their stored value on update.
type bookmarkRequest struct {
	ID         string    `json:"id"`
	Title      *string   `json:"title"`
	URL        *string   `json:"url"`
	Summary    *string   `json:"summary"`
	Note       *string   `json:"note"`
	RawContent *string   `json:"rawContent"`
	Tags       *[]string `json:"tags"`
}

func (h *BookmarkHandler) Save(c *gin.Context) {
	var req bookmarkRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, http.StatusBadRequest, "invalid", "invalid request")
		return
	}
	if id := c.Param("id"); id != "" {
		req.ID = id
	}
	bm, err := h.bookmarks.Save(c.Request.Context(), getUserID(c), service.BookmarkSaveInput{
		ID:         req.ID,
		Title:      req.Title,
		URL:        req.URL,
		Summary:    req.Summary,
		Note:       req.Note,
		RawContent: req.RawContent,
		Tags:       req.Tags,
	})
	if err != nil {
		handleError(c, err)
		return
	}
	response.Success(c, bm)
}

func (h *BookmarkHandler) List(c *gin.Context) {
	limit := uint(0)
	if value := c.Query("limit"); value != "" {
		if parsed, err := strconv.Atoi(value); err == nil && parsed > 0 {
			limit = uint(parsed)
		}
	}
	bookmarks, err := h.bookmarks.List(c.Request.Context(), getUserID(c), limit)
	if err != nil {
		handleError(c, err)
		return
	}
	response.Success(c, bookmarks)
}

func (h *BookmarkHandler) Get(c *gin.Context) {
	bm, err := h.bookmarks.Get(c.Request.Context(), getUserID(c), c.Param("id"))
	if err != nil {
		handleError(c, err)
		return
	}
	response.Success(c, bm)
}
