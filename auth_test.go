package main

import (
	"net/http"
	"net/url"
	"strings"
	"testing"

	"github.com/google/uuid"
)

/* ─── Reset tokens ────────────────────────────────────────────────────── */

// TestResetToken_RoundTrip verifies the emailed token splits back into its
// row id and secret.
func TestResetToken_RoundTrip(t *testing.T) {
	id := uuid.New()
	secret := uuid.NewString()

	gotID, gotSecret, ok := splitResetToken(resetToken(id, secret))
	if !ok || gotID != id || gotSecret != secret {
		t.Errorf("split = %v %q %v, want %v %q true", gotID, gotSecret, ok, id, secret)
	}
}

// TestSplitResetToken_Malformed verifies tokens without both halves or with a
// non-UUID id are rejected.
func TestSplitResetToken_Malformed(t *testing.T) {
	for _, token := range []string{
		"",
		"garbage",
		uuid.NewString(),
		uuid.NewString() + ".",
		"not-a-uuid.secret",
	} {
		if _, _, ok := splitResetToken(token); ok {
			t.Errorf("splitResetToken(%q) accepted", token)
		}
	}
}

// TestResetLink verifies the link opens the front-end reset page with the
// token as a query parameter.
func TestResetLink(t *testing.T) {
	token := resetToken(uuid.New(), "s3cret")
	link := resetLink("https://diet.example", token)

	u, err := url.Parse(link)
	if err != nil {
		t.Fatalf("parse %q: %v", link, err)
	}
	if u.Host != "diet.example" || u.Query().Get("page") != "reset-password" || u.Query().Get("token") != token {
		t.Errorf("link = %q", link)
	}
}

// TestResetEmailBody verifies the name and link are HTML-escaped.
func TestResetEmailBody(t *testing.T) {
	body := resetEmailBody("<Ann>", "https://diet.example/?a=1&b=2")
	if strings.Contains(body, "<Ann>") || !strings.Contains(body, "&lt;Ann&gt;") {
		t.Errorf("name not escaped: %s", body)
	}
	if !strings.Contains(body, "a=1&amp;b=2") {
		t.Errorf("link not escaped: %s", body)
	}
	if !strings.Contains(resetEmailBody("", "x"), "Hi there") {
		t.Errorf("missing name should fall back to a greeting")
	}
}

/* ─── Handlers (validation only, no database) ─────────────────────────── */

func TestResetPassword_Validation(t *testing.T) {
	router := setupCalcTest()

	cases := []struct {
		name      string
		path      string
		body      string
		wantError string
	}{
		{"malformed token", "/api/auth/reset-password", `{"token":"garbage","password":"secret1"}`, "invalid or expired reset token"},
		{"admin alias", "/api/auth/reset-password-admin", `{"token":"garbage","password":"secret1"}`, "invalid or expired reset token"},
		{"short password", "/api/auth/reset-password", `{"token":"x.y","password":"abc"}`, "password must be at least 6 characters"},
		{"missing token", "/api/auth/reset-password", `{"password":"secret1"}`, "token is required"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			w := doJSON(router, "POST", tc.path, tc.body)
			if w.Code != http.StatusBadRequest {
				t.Fatalf("expected 400, got %d: %s", w.Code, w.Body.String())
			}
			if got := decode[errorBody](t, w).Error; got != tc.wantError {
				t.Errorf("error = %q, want %q", got, tc.wantError)
			}
		})
	}
}

func TestForgotPassword_InvalidEmail(t *testing.T) {
	router := setupCalcTest()

	w := doJSON(router, "POST", "/api/auth/forgot-password", `{"email":"not-an-email"}`)

	if w.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d: %s", w.Code, w.Body.String())
	}
	if got := decode[errorBody](t, w); got.Field != "email" {
		t.Errorf("field = %q, want email", got.Field)
	}
}

func TestLoginAdmin_Validation(t *testing.T) {
	router := setupCalcTest()

	w := doJSON(router, "POST", "/api/auth/login-admin", `{"email":"admin@example.com"}`)

	if w.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d: %s", w.Code, w.Body.String())
	}
	if got := decode[errorBody](t, w).Error; got != "password is required" {
		t.Errorf("error = %q, want password is required", got)
	}
}
