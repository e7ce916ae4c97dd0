package handler

import (
	"time"

	"github.com/gin-gonic/gin"

	"github.com/hypermemo/hypermemo/internal/middleware"
)

type RouterDeps struct {
	Bookmarks *BookmarkHandler
	AI        *AIHandler
	Ask       *AskHandler
	Auth      middleware.AuthConfig
	AskWindow time.Duration
}

func RegisterRoutes(api *gin.RouterGroup, deps RouterDeps) {
	authGroup := api.Group("")
	authGroup.Use(middleware.Auth(deps.Auth))

	authGroup.GET("/bookmarks", deps.Bookmarks.List)
	authGroup.POST("/bookmarks", deps.Bookmarks.Save)
	authGroup.GET("/bookmarks/:id", deps.Bookmarks.Get)
	authGroup.PUT("/bookmarks/:id", deps.Bookmarks.Save)

	authGroup.POST("/ai/summary", deps.AI.Summary)
	authGroup.POST("/ai/tags", deps.AI.Tags)

	authGroup.POST("/ask", middleware.RateLimit(deps.AskWindow), deps.Ask.Ask)
}
