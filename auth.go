package main

import (
	"errors"
	"log"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"golang.org/x/crypto/bcrypt"
)

// dummyHash is a pre-computed bcrypt hash used when a login email isn't found.
// Running bcrypt against it (instead of returning early) keeps response time
// constant, preventing timing-based account enumeration.
var dummyHash, _ = bcrypt.GenerateFromPassword([]byte("dummy"), bcrypt.DefaultCost)

// resetTokenTTL is how long a password reset link stays valid.
const resetTokenTTL = time.Hour

// authenticate checks email/password, writing a 401 on failure.
func (h *Handler) authenticate(c *gin.Context) (user, bool) {
	var body loginRequest
	if err := c.ShouldBindJSON(&body); err != nil {
		bindError(c, err)
		return user{}, false
	}

	u, lookupErr := queryOne[user](h.db, c,
		"SELECT * FROM users WHERE email = @email",
		pgx.NamedArgs{"email": strings.ToLower(strings.TrimSpace(body.Email))})

	hashToCheck := string(dummyHash)
	if lookupErr == nil {
		hashToCheck = u.Password
	}
	compareErr := bcrypt.CompareHashAndPassword([]byte(hashToCheck), []byte(body.Password))

	if lookupErr != nil || compareErr != nil {
		apiError(c, http.StatusUnauthorized, "invalid credentials")
		return user{}, false
	}
	return u, true
}

// login verifies email/password and returns the user's auth token.
// POST /api/auth/login (public).
func (h *Handler) login(c *gin.Context) {
	u, ok := h.authenticate(c)
	if !ok {
		return
	}
	resp, err := h.userWithBMIData(c, u)
	if err != nil {
		apiError(c, http.StatusInternalServerError, "failed to load profile")
		return
	}
	c.JSON(http.StatusOK, gin.H{"token": u.AuthToken, "user": resp})
}

// loginAdmin is login for the admin panel: valid credentials of a non-admin
// get 403. POST /api/auth/login-admin (public).
func (h *Handler) loginAdmin(c *gin.Context) {
	u, ok := h.authenticate(c)
	if !ok {
		return
	}
	if u.Role != "admin" {
		apiError(c, http.StatusForbidden, "admin access required")
		return
	}
	c.JSON(http.StatusOK, gin.H{"token": u.AuthToken, "user": userResponse{user: u}})
}

// register creates a user with a hashed password and a fresh auth token.
// POST /api/auth/register (public). Returns 409 if the email is taken.
func (h *Handler) register(c *gin.Context) {
	var body registerRequest
	if err := c.ShouldBindJSON(&body); err != nil {
		bindError(c, err)
		return
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(body.Password), bcrypt.DefaultCost)
	if err != nil {
		log.Printf("[register] hash error: %v", err)
		apiError(c, http.StatusInternalServerError, "failed to create user")
		return
	}

	u, err := queryOne[user](h.db, c,
		`INSERT INTO users (email, first_name, last_name, password, auth_token)
		 VALUES (@email, @firstName, @lastName, @password, @authToken)
		 RETURNING *`,
		pgx.NamedArgs{
			"email":     strings.ToLower(strings.TrimSpace(body.Email)),
			"firstName": strings.TrimSpace(body.FirstName),
			"lastName":  strings.TrimSpace(body.LastName),
			"password":  string(hash),
			"authToken": uuid.New().String(),
		})
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == "23505" {
			apiError(c, http.StatusConflict, "email already registered")
			return
		}
		apiError(c, http.StatusInternalServerError, "failed to create user")
		return
	}

	c.JSON(http.StatusCreated, gin.H{"token": u.AuthToken, "user": userResponse{user: u}})
}

// verify returns the authenticated user with their bmiData.
// GET /api/auth/verify.
func (h *Handler) verify(c *gin.Context) {
	u, err := queryOne[user](h.db, c,
		"SELECT * FROM users WHERE id = @userID",
		pgx.NamedArgs{"userID": c.GetInt("user_id")})
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

// changePassword replaces the password after checking the current one.
// POST /api/user/change-password.
func (h *Handler) changePassword(c *gin.Context) {
	userID := c.GetInt("user_id")

	var body changePasswordRequest
	if err := c.ShouldBindJSON(&body); err != nil {
		bindError(c, err)
		return
	}

	var current string
	if err := h.db.QueryRow(c, "SELECT password FROM users WHERE id = $1", userID).Scan(&current); err != nil {
		notFoundOr500(c, err, "user")
		return
	}
	if bcrypt.CompareHashAndPassword([]byte(current), []byte(body.CurrentPassword)) != nil {
		apiError(c, http.StatusUnauthorized, "current password is incorrect")
		return
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(body.NewPassword), bcrypt.DefaultCost)
	if err != nil {
		log.Printf("[changePassword] hash error: %v", err)
		apiError(c, http.StatusInternalServerError, "failed to update password")
		return
	}
	if _, err := h.db.Exec(c,
		"UPDATE users SET password = @password WHERE id = @userID",
		pgx.NamedArgs{"password": string(hash), "userID": userID}); err != nil {
		apiError(c, http.StatusInternalServerError, "failed to update password")
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "password updated"})
}

/* ─── Password reset ──────────────────────────────────────────────────── */

// resetToken joins the reset row id and its secret into the token sent by email.
func resetToken(id uuid.UUID, secret string) string {
	return id.String() + "." + secret
}

// splitResetToken is the inverse of resetToken.
func splitResetToken(token string) (uuid.UUID, string, bool) {
	rawID, secret, ok := strings.Cut(strings.TrimSpace(token), ".")
	if !ok || secret == "" {
		return uuid.Nil, "", false
	}
	id, err := uuid.Parse(rawID)
	if err != nil {
		return uuid.Nil, "", false
	}
	return id, secret, true
}

// resetLink is the front-end URL that opens the reset form for token.
func resetLink(appURL, token string) string {
	return appURL + "/?page=reset-password&token=" + url.QueryEscape(token)
}

// forgotPassword emails a one-hour reset link. The response is the same
// whether or not the email is registered. Earlier unused links for the
// user are revoked.
// POST /api/auth/forgot-password (public).
func (h *Handler) forgotPassword(c *gin.Context) {
	var body forgotPasswordRequest
	if err := c.ShouldBindJSON(&body); err != nil {
		bindError(c, err)
		return
	}
	sent := gin.H{"message": "if the email is registered, a reset link has been sent"}

	u, err := queryOne[user](h.db, c,
		"SELECT * FROM users WHERE email = @email",
		pgx.NamedArgs{"email": strings.ToLower(strings.TrimSpace(body.Email))})
	if errors.Is(err, pgx.ErrNoRows) {
		c.JSON(http.StatusOK, sent)
		return
	}
	if err != nil {
		apiError(c, http.StatusInternalServerError, "failed to request password reset")
		return
	}

	id, secret := uuid.New(), uuid.NewString()
	hash, err := bcrypt.GenerateFromPassword([]byte(secret), bcrypt.DefaultCost)
	if err != nil {
		log.Printf("[forgotPassword] hash error: %v", err)
		apiError(c, http.StatusInternalServerError, "failed to request password reset")
		return
	}

	err = pgx.BeginFunc(c, h.db, func(tx pgx.Tx) error {
		if _, err := tx.Exec(c,
			"DELETE FROM password_resets WHERE user_id = @userID AND used_at IS NULL",
			pgx.NamedArgs{"userID": u.ID}); err != nil {
			return err
		}
		_, err := tx.Exec(c,
			`INSERT INTO password_resets (id, user_id, secret_hash, expires_at)
			 VALUES (@id, @userID, @secretHash, @expiresAt)`,
			pgx.NamedArgs{
				"id":         id,
				"userID":     u.ID,
				"secretHash": string(hash),
				"expiresAt":  time.Now().Add(resetTokenTTL),
			})
		return err
	})
	if err != nil {
		log.Printf("[forgotPassword] store reset for user %d: %v", u.ID, err)
		apiError(c, http.StatusInternalServerError, "failed to request password reset")
		return
	}

	link := resetLink(h.appURL, resetToken(id, secret))
	if err := h.mail.Send(u.Email, "Reset your password", resetEmailBody(u.FirstName, link)); err != nil {
		log.Printf("[forgotPassword] send to user %d: %v", u.ID, err)
	}
	c.JSON(http.StatusOK, sent)
}

// resetPassword sets a new password from a reset token, marks the token used
// and rotates the auth token so existing sessions are signed out.
// POST /api/auth/reset-password (public).
func (h *Handler) resetPassword(c *gin.Context) {
	var body resetPasswordRequest
	if err := c.ShouldBindJSON(&body); err != nil {
		bindError(c, err)
		return
	}
	const invalid = "invalid or expired reset token"

	id, secret, ok := splitResetToken(body.Token)
	if !ok {
		apiError(c, http.StatusBadRequest, invalid)
		return
	}
	reset, err := queryOne[passwordReset](h.db, c,
		"SELECT * FROM password_resets WHERE id = @id",
		pgx.NamedArgs{"id": id})
	if errors.Is(err, pgx.ErrNoRows) {
		apiError(c, http.StatusBadRequest, invalid)
		return
	}
	if err != nil {
		apiError(c, http.StatusInternalServerError, "failed to reset password")
		return
	}
	if reset.UsedAt != nil || time.Now().After(reset.ExpiresAt) ||
		bcrypt.CompareHashAndPassword([]byte(reset.SecretHash), []byte(secret)) != nil {
		apiError(c, http.StatusBadRequest, invalid)
		return
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(body.Password), bcrypt.DefaultCost)
	if err != nil {
		log.Printf("[resetPassword] hash error: %v", err)
		apiError(c, http.StatusInternalServerError, "failed to reset password")
		return
	}

	err = pgx.BeginFunc(c, h.db, func(tx pgx.Tx) error {
		// used_at IS NULL guards against two concurrent resets with one token.
		tag, err := tx.Exec(c,
			"UPDATE password_resets SET used_at = now() WHERE id = @id AND used_at IS NULL",
			pgx.NamedArgs{"id": id})
		if err != nil {
			return err
		}
		if tag.RowsAffected() == 0 {
			return pgx.ErrNoRows
		}
		_, err = tx.Exec(c,
			"UPDATE users SET password = @password, auth_token = @authToken WHERE id = @userID",
			pgx.NamedArgs{"password": string(hash), "authToken": uuid.NewString(), "userID": reset.UserID})
		return err
	})
	if errors.Is(err, pgx.ErrNoRows) {
		apiError(c, http.StatusBadRequest, invalid)
		return
	}
	if err != nil {
		log.Printf("[resetPassword] user %d: %v", reset.UserID, err)
		apiError(c, http.StatusInternalServerError, "failed to reset password")
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "password updated"})
}

// authMiddleware validates the Bearer token and sets user_id and role on the context.
func (h *Handler) authMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		header := c.GetHeader("Authorization")
		if !strings.HasPrefix(header, "Bearer ") {
			apiError(c, http.StatusUnauthorized, "missing or invalid authorization header")
			c.Abort()
			return
		}
		token := strings.TrimPrefix(header, "Bearer ")

		var userID int
		var role string
		err := h.db.QueryRow(c, "SELECT id, role FROM users WHERE auth_token = $1", token).Scan(&userID, &role)
		if err != nil {
			apiError(c, http.StatusUnauthorized, "invalid token")
			c.Abort()
			return
		}

		c.Set("user_id", userID)
		c.Set("role", role)
		c.Next()
	}
}

// requireAdmin rejects non-admin users with 403. Must run after authMiddleware.
func requireAdmin() gin.HandlerFunc {
	return func(c *gin.Context) {
		if c.GetString("role") != "admin" {
			apiError(c, http.StatusForbidden, "admin access required")
			c.Abort()
			return
		}
		c.Next()
	}
}
