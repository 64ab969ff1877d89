package main

import (
	"context"
	"errors"
	"fmt"
	"log"
	"net/http"
	"os"
	"reflect"
	"strconv"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/gin-gonic/gin/binding"
	"github.com/go-playground/validator/v10"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"lg/diet-tracker-api/nutrition"
)

// Handler holds shared dependencies (db pool, config) for all route handlers.
type Handler struct {
	db     *pgxpool.Pool
	split  nutrition.MacroSplit // macro split used for every computed target
	mail   mailer
	appURL string // base of links sent by email
}

/* ─── Database helpers ────────────────────────────────────────────────── */

// queryOne runs a query and scans the first row into T using RowToStructByName.
// Logs query and scan errors for debugging (e.g. struct/column mismatches).
func queryOne[T any](pool *pgxpool.Pool, c *gin.Context, sql string, args pgx.NamedArgs) (T, error) {
	rows, err := pool.Query(c, sql, args)
	if err != nil {
		log.Printf("[queryOne] Query error: %v", err)
		var zero T
		return zero, err
	}
	result, err := pgx.CollectOneRow(rows, pgx.RowToStructByName[T])
	if err != nil && !errors.Is(err, pgx.ErrNoRows) {
		log.Printf("[queryOne] Scan error: %v", err)
	}
	return result, err
}

// queryMany runs a query and scans all rows into []T using RowToStructByName.
func queryMany[T any](pool *pgxpool.Pool, c *gin.Context, sql string, args pgx.NamedArgs) ([]T, error) {
	rows, err := pool.Query(c, sql, args)
	if err != nil {
		log.Printf("[queryMany] Query error: %v", err)
		return nil, err
	}
	results, err := pgx.CollectRows(rows, pgx.RowToStructByName[T])
	if err != nil {
		log.Printf("[queryMany] Scan error: %v", err)
	}
	return results, err
}

/* ─── Responses ───────────────────────────────────────────────────────── */

// apiError returns a consistent JSON error response: {"error": "message"}.
func apiError(c *gin.Context, status int, message string) {
	c.JSON(status, gin.H{"error": message})
}

// notFoundOr500 maps pgx.ErrNoRows to 404 and anything else to 500.
func notFoundOr500(c *gin.Context, err error, what string) {
	if errors.Is(err, pgx.ErrNoRows) {
		apiError(c, http.StatusNotFound, what+" not found")
		return
	}
	apiError(c, http.StatusInternalServerError, "failed to fetch "+what)
}

// bindError renders a ShouldBindJSON failure. Validator failures name the
// first offending field by its JSON name; anything else is a malformed body.
func bindError(c *gin.Context, err error) {
	var verrs validator.ValidationErrors
	if errors.As(err, &verrs) && len(verrs) > 0 {
		fe := verrs[0]
		c.JSON(http.StatusBadRequest, gin.H{"error": fieldErrorMessage(fe), "field": fe.Field()})
		return
	}
	apiError(c, http.StatusBadRequest, "invalid request body")
}

func fieldErrorMessage(fe validator.FieldError) string {
	switch fe.Tag() {
	case "required":
		return fe.Field() + " is required"
	case "email":
		return fe.Field() + " must be a valid email address"
	case "min":
		return fmt.Sprintf("%s must be at least %s characters", fe.Field(), fe.Param())
	case "max":
		return fmt.Sprintf("%s must be at most %s characters", fe.Field(), fe.Param())
	case "oneof":
		return fmt.Sprintf("%s must be one of: %s", fe.Field(), strings.ReplaceAll(fe.Param(), " ", ", "))
	case "gt":
		return fmt.Sprintf("%s must be greater than %s", fe.Field(), fe.Param())
	case "lte":
		return fmt.Sprintf("%s must be at most %s", fe.Field(), fe.Param())
	}
	return fe.Field() + " is invalid"
}

// constraintError renders a unique violation (23505) as 409 with conflict and
// a foreign-key violation (23503) as 404 with missing. Reports whether it
// wrote a response.
func constraintError(c *gin.Context, err error, conflict, missing string) bool {
	var pgErr *pgconn.PgError
	if !errors.As(err, &pgErr) {
		return false
	}
	switch pgErr.Code {
	case "23505":
		apiError(c, http.StatusConflict, conflict)
	case "23503":
		apiError(c, http.StatusNotFound, missing)
	default:
		return false
	}
	return true
}

// validationError renders a domain validation failure as 400 with the field name.
func validationError(c *gin.Context, err error) {
	var ve *nutrition.ValidationError
	if errors.As(err, &ve) {
		c.JSON(http.StatusBadRequest, gin.H{"error": ve.Error(), "field": ve.Field})
		return
	}
	apiError(c, http.StatusBadRequest, err.Error())
}

// registerValidatorTagNames makes gin's validator report JSON field names
// ("firstName") instead of Go field names ("FirstName").
func registerValidatorTagNames() {
	v, ok := binding.Validator.Engine().(*validator.Validate)
	if !ok {
		return
	}
	v.RegisterTagNameFunc(func(f reflect.StructField) string {
		name, _, _ := strings.Cut(f.Tag.Get("json"), ",")
		if name == "" || name == "-" {
			return f.Name
		}
		return name
	})
}

/* ─── Request helpers ─────────────────────────────────────────────────── */

// pathID parses a positive integer path parameter, writing a 400 on failure.
func pathID(c *gin.Context, name string) (int, bool) {
	id, err := strconv.Atoi(c.Param(name))
	if err != nil || id <= 0 {
		apiError(c, http.StatusBadRequest, "invalid "+name)
		return 0, false
	}
	return id, true
}

// parseDate validates a YYYY-MM-DD value, writing a 400 naming the param on failure.
func parseDate(c *gin.Context, name, value string) (time.Time, bool) {
	t, err := time.Parse("2006-01-02", value)
	if err != nil {
		apiError(c, http.StatusBadRequest, "invalid "+name+", expected YYYY-MM-DD")
		return time.Time{}, false
	}
	return t, true
}

/* ─── Server setup ────────────────────────────────────────────────────── */

// getDBPool creates a connection pool. We use a pool (not a single conn) because
// Neon closes idle connections after ~5 minutes.
func getDBPool(dbURL string) *pgxpool.Pool {
	config, err := pgxpool.ParseConfig(dbURL)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Unable to parse DB URL: %v\n", err)
		os.Exit(1)
	}
	// Use simple query protocol to avoid "cached plan must not change result type"
	// errors from Neon's server-side prepared statement cache after schema changes.
	config.ConnConfig.DefaultQueryExecMode = pgx.QueryExecModeSimpleProtocol
	config.ConnConfig.RuntimeParams["application_name"] = "diet-tracker-api"
	pool, err := pgxpool.NewWithConfig(context.Background(), config)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Unable to connect to database: %v\n", err)
		os.Exit(1)
	}
	fmt.Println("DB pool ready!")
	return pool
}

// newRouter builds the gin engine with every route registered.
func newRouter(h *Handler) *gin.Engine {
	registerValidatorTagNames()
	router := gin.Default()
	router.SetTrustedProxies(nil)
	h.registerRoutes(router)
	return router
}

// registerRoutes registers all API routes on the router.
func (h *Handler) registerRoutes(router *gin.Engine) {
	// Public routes
	router.GET("/api/health", h.health)
	router.POST("/api/auth/login", h.login)
	router.POST("/api/auth/register", h.register)
	router.POST("/api/auth/login-admin", h.loginAdmin)
	router.POST("/api/auth/forgot-password", h.forgotPassword)
	router.POST("/api/auth/reset-password", h.resetPassword)
	// The admin panel posts to its own reset endpoints; the flow is the same.
	router.POST("/api/auth/forgot-password-admin", h.forgotPassword)
	router.POST("/api/auth/reset-password-admin", h.resetPassword)
	router.GET("/api/articles", h.listArticles)
	router.GET("/api/articles/:id", h.getArticle)

	// Stateless calculators; nothing is read or written.
	calc := router.Group("/api/calc")
	calc.POST("/body-metrics", h.calcBodyMetrics)
	calc.POST("/scale", h.calcScale)
	calc.POST("/recipe-totals", h.calcRecipeTotals)
	calc.POST("/daily-totals", h.calcDailyTotals)
	calc.POST("/progress", h.calcProgress)

	// Authenticated routes
	api := router.Group("/api", h.authMiddleware())
	api.GET("/auth/verify", h.verify)
	api.GET("/user/bmi-data", h.getBMIData)
	api.POST("/user/bmi-data", h.saveBMIData)
	api.POST("/user/change-password", h.changePassword)

	api.GET("/products", h.listProducts)
	api.GET("/products/:id", h.getProduct)
	api.POST("/products", requireAdmin(), h.createProduct)
	api.PUT("/products/:id", requireAdmin(), h.updateProduct)
	api.DELETE("/products/:id", requireAdmin(), h.deleteProduct)

	api.GET("/recipes", h.listRecipes)
	api.GET("/recipes/search/:query", h.searchRecipes)
	api.GET("/recipes/:id", h.getRecipe)
	api.POST("/recipes", h.createRecipe)
	api.PUT("/recipes/:id", h.updateRecipe)
	api.DELETE("/recipes/:id", h.deleteRecipe)

	api.GET("/diary/stats", h.getDiaryStats)
	api.GET("/diary/earliest-date", h.getEarliestDiaryDate)
	api.GET("/diary/:date", h.getDiaryDay)
	api.GET("/diary/:date/summary", h.getDiarySummary)
	api.POST("/diary", h.createDiaryEntry)
	api.PUT("/diary/:id", h.updateDiaryEntry)
	api.DELETE("/diary/:id", h.deleteDiaryEntry)

	api.POST("/articles", requireAdmin(), h.createArticle)
	api.PUT("/articles/:id", requireAdmin(), h.updateArticle)
	api.DELETE("/articles/:id", requireAdmin(), h.deleteArticle)

	admin := api.Group("/admin", requireAdmin())
	admin.GET("/users", h.listUsers)
	admin.DELETE("/users/:id", h.deleteUser)
	admin.GET("/stats", h.getAdminStats)
	admin.GET("/stats/monthly", h.getMonthlyStats)
	admin.GET("/dashboard/recent", h.getDashboardRecent)
	admin.PUT("/profile", h.updateProfile)

	api.GET("/weight-log", h.getWeightLog)
	api.POST("/weight-log", h.upsertWeightEntry)
	api.PUT("/weight-log/:id", h.updateWeightEntry)
	api.DELETE("/weight-log/:id", h.deleteWeightEntry)
}

// health pings the database. GET /api/health (public).
func (h *Handler) health(c *gin.Context) {
	ctx, cancel := context.WithTimeout(c, 2*time.Second)
	defer cancel()
	if err := h.db.Ping(ctx); err != nil {
		log.Printf("[health] ping failed: %v", err)
		c.JSON(http.StatusServiceUnavailable, gin.H{"status": "unavailable"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}
