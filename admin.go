package main

import (
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/jackc/pgx/v5"
)

// recentLimit is how many articles and recipes the dashboard lists.
const recentLimit = 5

// listUsers returns every user newest first, optionally filtered by name or
// email. GET /api/admin/users?search= (admin).
func (h *Handler) listUsers(c *gin.Context) {
	users, err := queryMany[user](h.db, c,
		`SELECT * FROM users
		 WHERE @search = ''
		    OR email ILIKE '%' || @search || '%'
		    OR (first_name || ' ' || last_name) ILIKE '%' || @search || '%'
		 ORDER BY created_at DESC, id DESC`,
		pgx.NamedArgs{"search": strings.TrimSpace(c.Query("search"))})
	if err != nil {
		apiError(c, http.StatusInternalServerError, "failed to fetch users")
		return
	}
	if users == nil {
		users = []user{}
	}
	c.JSON(http.StatusOK, users)
}

// deleteUser removes a user and, by cascade, their profile, diary and weight
// log. Their recipes and articles stay with no author.
// DELETE /api/admin/users/:id (admin). Admins cannot delete themselves.
func (h *Handler) deleteUser(c *gin.Context) {
	id, ok := pathID(c, "id")
	if !ok {
		return
	}
	if id == c.GetInt("user_id") {
		apiError(c, http.StatusBadRequest, "cannot delete your own account")
		return
	}
	result, err := h.db.Exec(c, "DELETE FROM users WHERE id = @id", pgx.NamedArgs{"id": id})
	if err != nil {
		apiError(c, http.StatusInternalServerError, "failed to delete user")
		return
	}
	if result.RowsAffected() == 0 {
		apiError(c, http.StatusNotFound, "user not found")
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "user deleted"})
}

// getAdminStats returns row counts for the dashboard tiles.
// GET /api/admin/stats (admin).
func (h *Handler) getAdminStats(c *gin.Context) {
	stats, err := queryOne[adminStats](h.db, c,
		`SELECT
			(SELECT COUNT(*) FROM users)    AS users,
			(SELECT COUNT(*) FROM recipes)  AS recipes,
			(SELECT COUNT(*) FROM articles) AS articles,
			(SELECT COUNT(*) FROM products) AS products`, nil)
	if err != nil {
		apiError(c, http.StatusInternalServerError, "failed to fetch stats")
		return
	}
	c.JSON(http.StatusOK, stats)
}

// parseMonth reads ?month=&year= into the first day of that month. month is
// zero-based (0 = January), the way the admin client sends it. Writes a 400
// naming the param on failure.
func parseMonth(c *gin.Context) (time.Time, bool) {
	now := time.Now()
	month, year := int(now.Month())-1, now.Year()

	if raw := c.Query("month"); raw != "" {
		m, err := strconv.Atoi(raw)
		if err != nil || m < 0 || m > 11 {
			apiError(c, http.StatusBadRequest, "invalid month, expected 0-11")
			return time.Time{}, false
		}
		month = m
	}
	if raw := c.Query("year"); raw != "" {
		y, err := strconv.Atoi(raw)
		if err != nil || y < 2000 || y > 9999 {
			apiError(c, http.StatusBadRequest, "invalid year")
			return time.Time{}, false
		}
		year = y
	}
	return time.Date(year, time.Month(month+1), 1, 0, 0, 0, 0, time.UTC), true
}

// getMonthlyStats returns, for every day of the month, how many users,
// recipes and articles were created. Days with no activity are zeros.
// GET /api/admin/stats/monthly?month=0-11&year=YYYY (admin).
func (h *Handler) getMonthlyStats(c *gin.Context) {
	start, ok := parseMonth(c)
	if !ok {
		return
	}

	days, err := queryMany[dayActivity](h.db, c,
		`WITH days AS (
			SELECT d::date AS date
			FROM generate_series(@start::date, (@start::date + INTERVAL '1 month' - INTERVAL '1 day'), INTERVAL '1 day') AS d
		)
		SELECT
			EXTRACT(DAY FROM days.date)::int AS day,
			(SELECT COUNT(*) FROM users    WHERE created_at::date = days.date)::int AS users,
			(SELECT COUNT(*) FROM recipes  WHERE created_at::date = days.date)::int AS recipes,
			(SELECT COUNT(*) FROM articles WHERE created_at::date = days.date)::int AS articles
		FROM days
		ORDER BY days.date`,
		pgx.NamedArgs{"start": start.Format("2006-01-02")})
	if err != nil {
		apiError(c, http.StatusInternalServerError, "failed to fetch monthly stats")
		return
	}
	if days == nil {
		days = []dayActivity{}
	}
	c.JSON(http.StatusOK, days)
}

// getDashboardRecent returns the newest articles and recipes.
// GET /api/admin/dashboard/recent (admin).
func (h *Handler) getDashboardRecent(c *gin.Context) {
	args := pgx.NamedArgs{"limit": recentLimit}
	articles, err := queryMany[article](h.db, c,
		"SELECT * FROM articles ORDER BY created_at DESC, id DESC LIMIT @limit", args)
	if err != nil {
		apiError(c, http.StatusInternalServerError, "failed to fetch recent articles")
		return
	}
	recipes, err := queryMany[recipe](h.db, c,
		"SELECT * FROM recipes ORDER BY created_at DESC, id DESC LIMIT @limit", args)
	if err != nil {
		apiError(c, http.StatusInternalServerError, "failed to fetch recent recipes")
		return
	}
	if articles == nil {
		articles = []article{}
	}
	if recipes == nil {
		recipes = []recipe{}
	}
	c.JSON(http.StatusOK, dashboardRecent{Articles: articles, Recipes: recipes})
}

// updateProfile changes the caller's name and image; absent fields are kept.
// PUT /api/admin/profile (admin).
func (h *Handler) updateProfile(c *gin.Context) {
	var body profileRequest
	if err := c.ShouldBindJSON(&body); err != nil {
		bindError(c, err)
		return
	}
	trim := func(s *string) *string {
		if s == nil {
			return nil
		}
		t := strings.TrimSpace(*s)
		return &t
	}

	u, err := queryOne[user](h.db, c,
		`UPDATE users SET
			first_name = COALESCE(@firstName, first_name),
			last_name  = COALESCE(@lastName, last_name),
			image      = COALESCE(@image, image)
		 WHERE id = @userID
		 RETURNING *`,
		pgx.NamedArgs{
			"userID":    c.GetInt("user_id"),
			"firstName": trim(body.FirstName),
			"lastName":  trim(body.LastName),
			"image":     body.Image,
		})
	if err != nil {
		notFoundOr500(c, err, "user")
		return
	}
	resp, err := h.userWithBMIData(c, u)
	if err != nil {
		apiError(c, http.StatusInternalServerError, "failed to load profile")
		return
	}
	c.JSON(http.StatusOK, resp)
}
