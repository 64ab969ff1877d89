package main

import (
	"encoding/json"
	"errors"
	"log"
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/jackc/pgx/v5"

	"lg/diet-tracker-api/nutrition"
)

// diaryStats aggregates a date range. Only days with entries count.
type diaryStats struct {
	DaysTracked  int     `json:"daysTracked"`
	DaysOnTarget int     `json:"daysOnTarget"`
	AvgCalories  float64 `json:"avgCalories"`
	AvgProtein   float64 `json:"avgProtein"`
	AvgCarbs     float64 `json:"avgCarbs"`
	AvgFat       float64 `json:"avgFat"`
}

type diaryStatsResponse struct {
	Days  []daySummary `json:"days"`
	Stats diaryStats   `json:"stats"`
}

// loadDay returns the user's entries for date (in creation order) and the
// day's totals compared with their targets.
func (h *Handler) loadDay(c *gin.Context, userID int, date string) ([]diaryEntry, daySummary, error) {
	entries, err := queryMany[diaryEntry](h.db, c,
		`SELECT * FROM diary_entries
		 WHERE user_id = @userID AND date = @date
		 ORDER BY created_at, id`,
		pgx.NamedArgs{"userID": userID, "date": date})
	if err != nil {
		return nil, daySummary{}, err
	}
	if entries == nil {
		entries = []diaryEntry{}
	}

	targets, err := h.targetsFor(c, userID)
	if err != nil {
		return nil, daySummary{}, err
	}

	day := make([]nutrition.DiaryEntry, len(entries))
	for i, e := range entries {
		day[i] = e.entry()
	}
	totals := nutrition.ComputeDailyTotals(day)
	return entries, daySummary{
		Date:     date,
		Totals:   totals,
		Targets:  targets,
		Progress: nutrition.ComputeProgress(totals, targets),
	}, nil
}

// getDiaryDay returns a day's entries grouped by meal with totals and progress.
// GET /api/diary/:date.
func (h *Handler) getDiaryDay(c *gin.Context) {
	date := c.Param("date")
	if _, ok := parseDate(c, "date", date); !ok {
		return
	}

	entries, summary, err := h.loadDay(c, c.GetInt("user_id"), date)
	if err != nil {
		apiError(c, http.StatusInternalServerError, "failed to fetch diary")
		return
	}

	day := make([]nutrition.DiaryEntry, len(entries))
	meals := make(map[nutrition.MealType][]diaryEntry, len(nutrition.MealTypes))
	for _, m := range nutrition.MealTypes {
		meals[m] = []diaryEntry{}
	}
	for i, e := range entries {
		day[i] = e.entry()
		m, ok := nutrition.ParseMealType(string(e.MealType))
		if !ok {
			m = nutrition.Snack
		}
		meals[m] = append(meals[m], e)
	}

	c.JSON(http.StatusOK, dayDiary{
		daySummary: summary,
		Entries:    entries,
		Meals:      meals,
		MealTotals: nutrition.MealTotals(day),
	})
}

// getDiarySummary returns just the totals and progress for a day.
// GET /api/diary/:date/summary.
func (h *Handler) getDiarySummary(c *gin.Context) {
	date := c.Param("date")
	if _, ok := parseDate(c, "date", date); !ok {
		return
	}
	_, summary, err := h.loadDay(c, c.GetInt("user_id"), date)
	if err != nil {
		apiError(c, http.StatusInternalServerError, "failed to fetch diary")
		return
	}
	c.JSON(http.StatusOK, summary)
}

// getDiaryStats returns per-day totals and averages for a date range.
// GET /api/diary/stats?start=YYYY-MM-DD&end=YYYY-MM-DD. Both params required.
// Only days with entries are returned.
func (h *Handler) getDiaryStats(c *gin.Context) {
	userID := c.GetInt("user_id")
	start, end := c.Query("start"), c.Query("end")
	if start == "" || end == "" {
		apiError(c, http.StatusBadRequest, "start and end query params are required")
		return
	}
	if _, ok := parseDate(c, "start", start); !ok {
		return
	}
	if _, ok := parseDate(c, "end", end); !ok {
		return
	}
	if start > end {
		apiError(c, http.StatusBadRequest, "start must not be after end")
		return
	}

	targets, err := h.targetsFor(c, userID)
	if err != nil {
		apiError(c, http.StatusInternalServerError, "failed to fetch profile")
		return
	}

	rows, err := queryMany[dayTotalsDBRow](h.db, c,
		`SELECT
			date,
			COUNT(*)                   AS entries,
			COALESCE(SUM(calories), 0) AS calories,
			COALESCE(SUM(protein),  0) AS protein,
			COALESCE(SUM(carbs),    0) AS carbs,
			COALESCE(SUM(fat),      0) AS fat
		 FROM diary_entries
		 WHERE user_id = @userID AND date >= @start AND date <= @end
		 GROUP BY date
		 ORDER BY date ASC`,
		pgx.NamedArgs{"userID": userID, "start": start, "end": end})
	if err != nil {
		apiError(c, http.StatusInternalServerError, "failed to fetch diary stats")
		return
	}

	resp := diaryStatsResponse{Days: make([]daySummary, 0, len(rows))}
	for _, row := range rows {
		totals := nutrition.NutrientValues{Calories: row.Calories, Protein: row.Protein, Carbs: row.Carbs, Fat: row.Fat}
		progress := nutrition.ComputeProgress(totals, targets)
		resp.Days = append(resp.Days, daySummary{
			Date:     row.Date.Format("2006-01-02"),
			Totals:   totals,
			Targets:  targets,
			Progress: progress,
		})
		resp.Stats.DaysTracked++
		if !progress.Calories.Over {
			resp.Stats.DaysOnTarget++
		}
		resp.Stats.AvgCalories += totals.Calories
		resp.Stats.AvgProtein += totals.Protein
		resp.Stats.AvgCarbs += totals.Carbs
		resp.Stats.AvgFat += totals.Fat
	}
	if n := float64(resp.Stats.DaysTracked); n > 0 {
		resp.Stats.AvgCalories /= n
		resp.Stats.AvgProtein /= n
		resp.Stats.AvgCarbs /= n
		resp.Stats.AvgFat /= n
	}

	c.JSON(http.StatusOK, resp)
}

// diaryEntryArgs validates and normalizes an entry body. Recipe entries
// without ingredients copy the recipe's per-serving values; ingredients that
// reference products are rescaled from the current product baseline. Recipe
// entries with ingredients store totals rebuilt from them; custom entries
// keep the values the user entered.
func (h *Handler) diaryEntryArgs(c *gin.Context, body diaryEntryRequest) (pgx.NamedArgs, bool) {
	e := body.DiaryEntry
	e.Name = strings.TrimSpace(e.Name)

	if e.Date == "" {
		e.Date = time.Now().Format("2006-01-02")
	}
	if _, ok := parseDate(c, "date", e.Date); !ok {
		return nil, false
	}

	meal, ok := nutrition.ParseMealType(string(e.MealType))
	if e.MealType == "" {
		meal, ok = nutrition.Snack, true
	}
	if !ok {
		c.JSON(http.StatusBadRequest, gin.H{
			"error": "mealType must be one of: breakfast, brunch, lunch, dinner, snack",
			"field": "mealType",
		})
		return nil, false
	}
	e.MealType = meal

	switch e.Type {
	case "":
		e.Type = nutrition.EntryCustom
	case nutrition.EntryCustom, nutrition.EntryRecipe:
	default:
		c.JSON(http.StatusBadRequest, gin.H{"error": "type must be one of: recipe, custom", "field": "type"})
		return nil, false
	}

	image := body.Image
	if e.Type == nutrition.EntryRecipe && e.RecipeID != nil && len(e.Ingredients) == 0 {
		r, err := queryOne[recipe](h.db, c,
			"SELECT * FROM recipes WHERE id = @id",
			pgx.NamedArgs{"id": *e.RecipeID})
		if err != nil {
			notFoundOr500(c, err, "recipe")
			return nil, false
		}
		if e.Name == "" {
			e.Name = r.Name
		}
		if image == "" {
			image = r.Image
		}
		e.Calories = nutrition.Number(r.Calories)
		e.Protein = nutrition.Number(r.Protein)
		e.Carbs = nutrition.Number(r.Carbs)
		e.Fat = nutrition.Number(r.Fat)
	}
	if e.Name == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "name is required", "field": "name"})
		return nil, false
	}

	if len(e.Ingredients) > 0 {
		lookup, err := h.productBaselines(c, e.Ingredients)
		if err != nil {
			apiError(c, http.StatusInternalServerError, "failed to resolve ingredients")
			return nil, false
		}
		var issues []nutrition.Issue
		e.Ingredients, issues = nutrition.ResolveIngredients(e.Ingredients, lookup)
		for _, issue := range issues {
			log.Printf("[diaryEntryArgs] entry %q: %s", e.Name, issue)
		}
	}
	e = e.Normalized()

	ings := e.Ingredients
	if ings == nil {
		ings = []nutrition.Ingredient{}
	}
	ingredientsJSON, err := json.Marshal(ings)
	if err != nil {
		apiError(c, http.StatusInternalServerError, "failed to encode ingredients")
		return nil, false
	}

	return pgx.NamedArgs{
		"date":        e.Date,
		"name":        e.Name,
		"mealType":    string(e.MealType),
		"type":        string(e.Type),
		"recipeID":    e.RecipeID,
		"ingredients": string(ingredientsJSON),
		"image":       image,
		"calories":    e.Calories.Float(),
		"protein":     e.Protein.Float(),
		"carbs":       e.Carbs.Float(),
		"fat":         e.Fat.Float(),
	}, true
}

// createDiaryEntry logs a meal. POST /api/diary. Defaults date to today
// and mealType to snack.
func (h *Handler) createDiaryEntry(c *gin.Context) {
	var body diaryEntryRequest
	if err := c.ShouldBindJSON(&body); err != nil {
		bindError(c, err)
		return
	}
	args, ok := h.diaryEntryArgs(c, body)
	if !ok {
		return
	}
	args["userID"] = c.GetInt("user_id")

	entry, err := queryOne[diaryEntry](h.db, c,
		`INSERT INTO diary_entries (user_id, date, name, meal_type, type, recipe_id, ingredients, image,
			calories, protein, carbs, fat)
		 VALUES (@userID, @date, @name, @mealType, @type, @recipeID, @ingredients::jsonb, @image,
			@calories, @protein, @carbs, @fat)
		 RETURNING *`, args)
	if err != nil {
		if !constraintError(c, err, "entry already exists", "recipe not found") {
			apiError(c, http.StatusInternalServerError, "failed to create entry")
		}
		return
	}
	c.JSON(http.StatusCreated, entry)
}

// updateDiaryEntry replaces an entry. PUT /api/diary/:id. Recipe entries
// with ingredients have their totals rebuilt from them.
func (h *Handler) updateDiaryEntry(c *gin.Context) {
	id, ok := pathID(c, "id")
	if !ok {
		return
	}
	var body diaryEntryRequest
	if err := c.ShouldBindJSON(&body); err != nil {
		bindError(c, err)
		return
	}
	args, ok := h.diaryEntryArgs(c, body)
	if !ok {
		return
	}
	args["id"] = id
	args["userID"] = c.GetInt("user_id")

	entry, err := queryOne[diaryEntry](h.db, c,
		`UPDATE diary_entries SET
			date = @date, name = @name, meal_type = @mealType, type = @type,
			recipe_id = @recipeID, ingredients = @ingredients::jsonb, image = @image,
			calories = @calories, protein = @protein, carbs = @carbs, fat = @fat,
			updated_at = now()
		 WHERE id = @id AND user_id = @userID
		 RETURNING *`, args)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			apiError(c, http.StatusNotFound, "entry not found")
		} else if !constraintError(c, err, "entry already exists", "recipe not found") {
			apiError(c, http.StatusInternalServerError, "failed to update entry")
		}
		return
	}
	c.JSON(http.StatusOK, entry)
}

// deleteDiaryEntry removes an entry. Returns 204 on success.
// DELETE /api/diary/:id.
func (h *Handler) deleteDiaryEntry(c *gin.Context) {
	id, ok := pathID(c, "id")
	if !ok {
		return
	}
	result, err := h.db.Exec(c,
		"DELETE FROM diary_entries WHERE id = @id AND user_id = @userID",
		pgx.NamedArgs{"id": id, "userID": c.GetInt("user_id")})
	if err != nil {
		apiError(c, http.StatusInternalServerError, "failed to delete entry")
		return
	}
	if result.RowsAffected() == 0 {
		apiError(c, http.StatusNotFound, "entry not found")
		return
	}
	c.Status(http.StatusNoContent)
}

// getEarliestDiaryDate returns the first date the user logged anything.
// GET /api/diary/earliest-date. Used by the front-end for the "All Time" stats range.
// Returns { "date": "YYYY-MM-DD" } or { "date": null } if no entries exist.
func (h *Handler) getEarliestDiaryDate(c *gin.Context) {
	// MIN over no rows is NULL, so scan into *string.
	var date *string
	err := h.db.QueryRow(c,
		`SELECT TO_CHAR(MIN(date), 'YYYY-MM-DD') FROM diary_entries WHERE user_id = @userID`,
		pgx.NamedArgs{"userID": c.GetInt("user_id")}).Scan(&date)
	if err != nil {
		log.Printf("[getEarliestDiaryDate] %v", err)
		apiError(c, http.StatusInternalServerError, "failed to fetch earliest date")
		return
	}
	c.JSON(http.StatusOK, gin.H{"date": date})
}
