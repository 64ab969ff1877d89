package main

import (
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/jackc/pgx/v5"
)

// listArticles returns articles newest first, optionally filtered by title
// and category. GET /api/articles?search=&category= (public).
func (h *Handler) listArticles(c *gin.Context) {
	articles, err := queryMany[article](h.db, c,
		`SELECT * FROM articles
		 WHERE (@search = '' OR title ILIKE '%' || @search || '%')
		   AND (@category = '' OR category = @category)
		 ORDER BY date DESC, id DESC`,
		pgx.NamedArgs{
			"search":   strings.TrimSpace(c.Query("search")),
			"category": strings.TrimSpace(c.Query("category")),
		})
	if err != nil {
		apiError(c, http.StatusInternalServerError, "failed to fetch articles")
		return
	}
	if articles == nil {
		articles = []article{}
	}
	c.JSON(http.StatusOK, articles)
}

// getArticle returns one article. GET /api/articles/:id (public).
func (h *Handler) getArticle(c *gin.Context) {
	id, ok := pathID(c, "id")
	if !ok {
		return
	}
	a, err := queryOne[article](h.db, c,
		"SELECT * FROM articles WHERE id = @id",
		pgx.NamedArgs{"id": id})
	if err != nil {
		notFoundOr500(c, err, "article")
		return
	}
	c.JSON(http.StatusOK, a)
}

// articleArgs normalizes the body. Category defaults to "porady" and date to today.
func articleArgs(c *gin.Context, body articleRequest) (pgx.NamedArgs, bool) {
	date := strings.TrimSpace(body.Date)
	if date == "" {
		date = time.Now().Format("2006-01-02")
	}
	if _, ok := parseDate(c, "date", date); !ok {
		return nil, false
	}
	category := body.Category
	if category == "" {
		category = "porady"
	}
	return pgx.NamedArgs{
		"title":    strings.TrimSpace(body.Title),
		"category": category,
		"label":    strings.TrimSpace(body.Label),
		"image":    body.Image,
		"excerpt":  strings.TrimSpace(body.Excerpt),
		"content":  body.Content,
		"date":     date,
	}, true
}

// createArticle inserts an article authored by the caller.
// POST /api/articles (admin).
func (h *Handler) createArticle(c *gin.Context) {
	var body articleRequest
	if err := c.ShouldBindJSON(&body); err != nil {
		bindError(c, err)
		return
	}
	args, ok := articleArgs(c, body)
	if !ok {
		return
	}
	args["authorID"] = c.GetInt("user_id")

	a, err := queryOne[article](h.db, c,
		`INSERT INTO articles (author_id, title, category, label, image, excerpt, content, date)
		 VALUES (@authorID, @title, @category, @label, @image, @excerpt, @content, @date)
		 RETURNING *`, args)
	if err != nil {
		apiError(c, http.StatusInternalServerError, "failed to create article")
		return
	}
	c.JSON(http.StatusCreated, a)
}

// updateArticle replaces an article. PUT /api/articles/:id (admin).
func (h *Handler) updateArticle(c *gin.Context) {
	id, ok := pathID(c, "id")
	if !ok {
		return
	}
	var body articleRequest
	if err := c.ShouldBindJSON(&body); err != nil {
		bindError(c, err)
		return
	}
	args, ok := articleArgs(c, body)
	if !ok {
		return
	}
	args["id"] = id

	a, err := queryOne[article](h.db, c,
		`UPDATE articles SET
			title = @title, category = @category, label = @label, image = @image,
			excerpt = @excerpt, content = @content, date = @date,
			updated_at = now()
		 WHERE id = @id
		 RETURNING *`, args)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			apiError(c, http.StatusNotFound, "article not found")
		} else {
			apiError(c, http.StatusInternalServerError, "failed to update article")
		}
		return
	}
	c.JSON(http.StatusOK, a)
}

// deleteArticle removes an article. DELETE /api/articles/:id (admin).
func (h *Handler) deleteArticle(c *gin.Context) {
	id, ok := pathID(c, "id")
	if !ok {
		return
	}
	result, err := h.db.Exec(c, "DELETE FROM articles WHERE id = @id", pgx.NamedArgs{"id": id})
	if err != nil {
		apiError(c, http.StatusInternalServerError, "failed to delete article")
		return
	}
	if result.RowsAffected() == 0 {
		apiError(c, http.StatusNotFound, "article not found")
		return
	}
	c.Status(http.StatusNoContent)
}
