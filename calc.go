package main

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"lg/diet-tracker-api/nutrition"
)

// Stateless calculator endpoints. They take everything they need in the
// request body and never touch the database.

type bodyMetricsRequest struct {
	nutrition.BodyProfile
	MacroSplit *nutrition.MacroSplit `json:"macroSplit"`
}

type scaleRequest struct {
	Baseline nutrition.NutrientBaseline `json:"baseline"`
	Amount   nutrition.Number           `json:"amount"`
}

type recipeTotalsRequest struct {
	Ingredients []nutrition.Ingredient `json:"ingredients"`
	Servings    nutrition.Number       `json:"servings"`
}

type recipeTotalsResponse struct {
	nutrition.RecipeTotals
	Ingredients []nutrition.Ingredient `json:"ingredients"`
	Issues      []nutrition.Issue      `json:"issues"`
}

type dailyTotalsRequest struct {
	Entries []nutrition.DiaryEntry      `json:"entries"`
	Targets *nutrition.NutritionTargets `json:"targets"`
}

type dailyTotalsResponse struct {
	Totals     nutrition.NutrientValues                        `json:"totals"`
	MealTotals map[nutrition.MealType]nutrition.NutrientValues `json:"mealTotals"`
	Progress   *nutrition.ProgressView                         `json:"progress,omitempty"`
}

type progressRequest struct {
	Daily   nutrition.NutrientValues   `json:"daily"`
	Targets nutrition.NutritionTargets `json:"targets"`
}

// calcBodyMetrics computes BMI, BMR, TDEE and macro targets for a profile.
// POST /api/calc/body-metrics. macroSplit is optional; the server split is
// used when it's omitted.
func (h *Handler) calcBodyMetrics(c *gin.Context) {
	var body bodyMetricsRequest
	if err := c.ShouldBindJSON(&body); err != nil {
		bindError(c, err)
		return
	}
	if s, ok := nutrition.ParseSex(string(body.Sex)); ok {
		body.Sex = s
	}
	if l, ok := nutrition.ParseActivityLevel(string(body.ActivityLevel)); ok {
		body.ActivityLevel = l
	}

	split := h.split
	if body.MacroSplit != nil {
		split = *body.MacroSplit
	}
	targets, err := nutrition.ComputeBodyMetricsWithSplit(body.BodyProfile, split)
	if err != nil {
		validationError(c, err)
		return
	}
	c.JSON(http.StatusOK, targets)
}

// calcScale scales a per-100 baseline to an amount.
// POST /api/calc/scale.
func (h *Handler) calcScale(c *gin.Context) {
	var body scaleRequest
	if err := c.ShouldBindJSON(&body); err != nil {
		bindError(c, err)
		return
	}
	c.JSON(http.StatusOK, nutrition.ScaleIngredient(body.Baseline, body.Amount.Float()))
}

// calcRecipeTotals rescales baseline-backed ingredients and divides the sum
// by servings. POST /api/calc/recipe-totals.
func (h *Handler) calcRecipeTotals(c *gin.Context) {
	var body recipeTotalsRequest
	if err := c.ShouldBindJSON(&body); err != nil {
		bindError(c, err)
		return
	}

	ings, issues := nutrition.ResolveIngredients(body.Ingredients, nil)
	totals := nutrition.ComputeRecipeTotals(ings, int(body.Servings.Float()))
	if issue, ok := totals.Issue(); ok {
		issues = append(issues, issue)
	}
	if issues == nil {
		issues = []nutrition.Issue{}
	}
	c.JSON(http.StatusOK, recipeTotalsResponse{RecipeTotals: totals, Ingredients: ings, Issues: issues})
}

// calcDailyTotals sums a day's entries overall and per meal, and compares
// them with targets when given. POST /api/calc/daily-totals.
func (h *Handler) calcDailyTotals(c *gin.Context) {
	var body dailyTotalsRequest
	if err := c.ShouldBindJSON(&body); err != nil {
		bindError(c, err)
		return
	}

	resp := dailyTotalsResponse{
		Totals:     nutrition.ComputeDailyTotals(body.Entries),
		MealTotals: nutrition.MealTotals(body.Entries),
	}
	if body.Targets != nil {
		p := nutrition.ComputeProgress(resp.Totals, *body.Targets)
		resp.Progress = &p
	}
	c.JSON(http.StatusOK, resp)
}

// calcProgress compares daily totals with targets.
// POST /api/calc/progress.
func (h *Handler) calcProgress(c *gin.Context) {
	var body progressRequest
	if err := c.ShouldBindJSON(&body); err != nil {
		bindError(c, err)
		return
	}
	c.JSON(http.StatusOK, nutrition.ComputeProgress(body.Daily, body.Targets))
}
