package main

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
)

// testContext returns a gin context for calling a handler directly, with the
// caller authenticated as userID.
func testContext(method, target string, userID int) (*gin.Context, *httptest.ResponseRecorder) {
	gin.SetMode(gin.TestMode)
	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	c.Request = httptest.NewRequest(method, target, nil)
	c.Set("user_id", userID)
	c.Set("role", "admin")
	return c, w
}

/* ─── Monthly stats ───────────────────────────────────────────────────── */

// TestParseMonth verifies the zero-based month the admin client sends maps to
// the first day of the calendar month.
func TestParseMonth(t *testing.T) {
	cases := []struct {
		query string
		want  time.Time
	}{
		{"?month=0&year=2026", time.Date(2026, time.January, 1, 0, 0, 0, 0, time.UTC)},
		{"?month=11&year=2025", time.Date(2025, time.December, 1, 0, 0, 0, 0, time.UTC)},
		{"?month=1&year=2024", time.Date(2024, time.February, 1, 0, 0, 0, 0, time.UTC)},
	}
	for _, tc := range cases {
		c, _ := testContext("GET", "/api/admin/stats/monthly"+tc.query, 1)
		got, ok := parseMonth(c)
		if !ok || !got.Equal(tc.want) {
			t.Errorf("%s: got %v %v, want %v", tc.query, got, ok, tc.want)
		}
	}
}

// TestParseMonth_DefaultsToCurrentMonth verifies missing params mean now.
func TestParseMonth_DefaultsToCurrentMonth(t *testing.T) {
	c, _ := testContext("GET", "/api/admin/stats/monthly", 1)
	got, ok := parseMonth(c)
	now := time.Now()
	if !ok || got.Year() != now.Year() || got.Month() != now.Month() || got.Day() != 1 {
		t.Errorf("got %v %v, want first of %s %d", got, ok, now.Month(), now.Year())
	}
}

func TestParseMonth_Invalid(t *testing.T) {
	for _, q := range []string{"?month=12", "?month=-1", "?month=jan", "?year=99", "?year=abc"} {
		c, w := testContext("GET", "/api/admin/stats/monthly"+q, 1)
		if _, ok := parseMonth(c); ok {
			t.Errorf("%s accepted", q)
			continue
		}
		if w.Code != http.StatusBadRequest {
			t.Errorf("%s: status = %d, want 400", q, w.Code)
		}
	}
}

/* ─── Users ───────────────────────────────────────────────────────────── */

// TestDeleteUser_Self verifies an admin cannot delete their own account.
func TestDeleteUser_Self(t *testing.T) {
	c, w := testContext("DELETE", "/api/admin/users/7", 7)
	c.Params = gin.Params{{Key: "id", Value: "7"}}

	(&Handler{}).deleteUser(c)

	if w.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d: %s", w.Code, w.Body.String())
	}
	if got := decode[errorBody](t, w).Error; got != "cannot delete your own account" {
		t.Errorf("error = %q", got)
	}
}

func TestDeleteUser_InvalidID(t *testing.T) {
	c, w := testContext("DELETE", "/api/admin/users/abc", 7)
	c.Params = gin.Params{{Key: "id", Value: "abc"}}

	(&Handler{}).deleteUser(c)

	if w.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d: %s", w.Code, w.Body.String())
	}
}

/* ─── Articles ────────────────────────────────────────────────────────── */

// TestArticleArgs_Defaults verifies category and date defaults and trimming.
func TestArticleArgs_Defaults(t *testing.T) {
	c, _ := testContext("POST", "/api/articles", 1)

	args, ok := articleArgs(c, articleRequest{Title: "  Protein basics  "})
	if !ok {
		t.Fatal("expected args")
	}
	if args["title"] != "Protein basics" || args["category"] != "porady" {
		t.Errorf("args = %v", args)
	}
	if args["date"] != time.Now().Format("2006-01-02") {
		t.Errorf("date = %v, want today", args["date"])
	}
}

func TestArticleArgs_InvalidDate(t *testing.T) {
	c, w := testContext("POST", "/api/articles", 1)

	if _, ok := articleArgs(c, articleRequest{Title: "x", Date: "17/10/2026"}); ok {
		t.Fatal("expected invalid date to be rejected")
	}
	if w.Code != http.StatusBadRequest {
		t.Errorf("status = %d, want 400", w.Code)
	}
}

// TestArticleRoutes_WriteNeedsAuth verifies article writes and admin routes need a login.
func TestArticleRoutes_WriteNeedsAuth(t *testing.T) {
	router := setupCalcTest()

	w := doJSON(router, "POST", "/api/articles", `{"title":"x"}`)
	if w.Code != http.StatusUnauthorized {
		t.Errorf("create without auth: got %d, want 401", w.Code)
	}
	w = doJSON(router, "GET", "/api/admin/users", "")
	if w.Code != http.StatusUnauthorized {
		t.Errorf("admin users without auth: got %d, want 401", w.Code)
	}
}
