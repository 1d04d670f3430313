package handlers

import (
	articleRepo "medibook/database/repository/article"

	"github.com/gin-gonic/gin"
)

// ArticleHandler exposes the public article surface.
type ArticleHandler struct {
	Articles articleRepo.ArticleRepository
}

func NewArticleHandler(repo articleRepo.ArticleRepository) *ArticleHandler {
	return &ArticleHandler{Articles: repo}
}

// List returns all published articles.
func (h *ArticleHandler) List(c *gin.Context) {
	articles, err := h.Articles.ListPublished(c.Request.Context())
	if err != nil {
		respondError(c, err)
		return
	}
	respondOK(c, gin.H{"articles": articles})
}

// Get returns a single article. Unpublished articles are not served here.
func (h *ArticleHandler) Get(c *gin.Context) {
	article, err := h.Articles.GetByID(c.Request.Context(), c.Param("id"))
	if err != nil {
		respondError(c, err)
		return
	}
	if !article.Published {
		respondError(c, articleRepo.ErrNotFound)
		return
	}
	respondOK(c, gin.H{"article": article})
}
