package main

import (
	"encoding/json"
	"errors"
	"log"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/jackc/pgx/v5"

	"lg/diet-tracker-api/nutrition"
)

// recipeResponse is a saved recipe plus any non-fatal issues found while
// computing its totals.
type recipeResponse struct {
	recipe
	Issues []nutrition.Issue `json:"issues,omitempty"`
}

// listRecipes returns all recipes, newest first, optionally filtered by tag.
// GET /api/recipes?tag=.
func (h *Handler) listRecipes(c *gin.Context) {
	recipes, err := queryMany[recipe](h.db, c,
		`SELECT * FROM recipes
		 WHERE (@tag = '' OR @tag = ANY(tags))
		 ORDER BY created_at DESC`,
		pgx.NamedArgs{"tag": strings.TrimSpace(c.Query("tag"))})
	if err != nil {
		apiError(c, http.StatusInternalServerError, "failed to fetch recipes")
		return
	}
	if recipes == nil {
		recipes = []recipe{}
	}
	c.JSON(http.StatusOK, recipes)
}

// searchRecipes matches the query against name and description.
// GET /api/recipes/search/:query?tag=.
func (h *Handler) searchRecipes(c *gin.Context) {
	recipes, err := queryMany[recipe](h.db, c,
		`SELECT * FROM recipes
		 WHERE (name ILIKE '%' || @query || '%' OR description ILIKE '%' || @query || '%')
		   AND (@tag = '' OR @tag = ANY(tags))
		 ORDER BY name`,
		pgx.NamedArgs{
			"query": strings.TrimSpace(c.Param("query")),
			"tag":   strings.TrimSpace(c.Query("tag")),
		})
	if err != nil {
		apiError(c, http.StatusInternalServerError, "failed to search recipes")
		return
	}
	if recipes == nil {
		recipes = []recipe{}
	}
	c.JSON(http.StatusOK, recipes)
}

// getRecipe returns one recipe. GET /api/recipes/:id.
func (h *Handler) getRecipe(c *gin.Context) {
	id, ok := pathID(c, "id")
	if !ok {
		return
	}
	r, err := queryOne[recipe](h.db, c,
		"SELECT * FROM recipes WHERE id = @id",
		pgx.NamedArgs{"id": id})
	if err != nil {
		notFoundOr500(c, err, "recipe")
		return
	}
	c.JSON(http.StatusOK, r)
}

// recipeArgs resolves the body's ingredients against products, recomputes
// per-serving totals and returns the insert/update args. Issues are logged
// and returned; they never fail the request.
func (h *Handler) recipeArgs(c *gin.Context, body recipeRequest) (pgx.NamedArgs, []nutrition.Issue, error) {
	lookup, err := h.productBaselines(c, body.Ingredients)
	if err != nil {
		return nil, nil, err
	}
	ings, issues := nutrition.ResolveIngredients(body.Ingredients, lookup)
	rec, totals := nutrition.Recipe{
		Name:        body.Name,
		Servings:    int(body.Servings.Float()),
		Ingredients: ings,
	}.Recomputed()
	if issue, ok := totals.Issue(); ok {
		issues = append(issues, issue)
	}
	for _, issue := range issues {
		log.Printf("[recipeArgs] recipe %q: %s", rec.Name, issue)
	}

	if rec.Ingredients == nil {
		rec.Ingredients = []nutrition.Ingredient{}
	}
	ingredientsJSON, err := json.Marshal(rec.Ingredients)
	if err != nil {
		return nil, nil, err
	}
	difficulty := body.Difficulty
	if difficulty == "" {
		difficulty = "medium"
	}

	return pgx.NamedArgs{
		"name":         strings.TrimSpace(body.Name),
		"description":  body.Description,
		"image":        body.Image,
		"ingredients":  string(ingredientsJSON),
		"instructions": nonNilStrings(body.Instructions),
		"servings":     rec.Servings,
		"prepTime":     int(body.PrepTime.Float()),
		"cookTime":     int(body.CookTime.Float()),
		"category":     nonNilStrings(body.Category),
		"difficulty":   difficulty,
		"tags":         nonNilStrings(body.Tags),
		"calories":     rec.PerServing.Calories,
		"protein":      rec.PerServing.Protein,
		"carbs":        rec.PerServing.Carbs,
		"fat":          rec.PerServing.Fat,
	}, issues, nil
}

// createRecipe stores a recipe authored by the caller.
// POST /api/recipes. Client-sent per-serving totals are ignored.
func (h *Handler) createRecipe(c *gin.Context) {
	var body recipeRequest
	if err := c.ShouldBindJSON(&body); err != nil {
		bindError(c, err)
		return
	}
	args, issues, err := h.recipeArgs(c, body)
	if err != nil {
		apiError(c, http.StatusInternalServerError, "failed to resolve ingredients")
		return
	}
	args["authorID"] = c.GetInt("user_id")

	r, err := queryOne[recipe](h.db, c,
		`INSERT INTO recipes (author_id, name, description, image, ingredients, instructions,
			servings, prep_time, cook_time, category, difficulty, tags, calories, protein, carbs, fat)
		 VALUES (@authorID, @name, @description, @image, @ingredients::jsonb, @instructions,
			@servings, @prepTime, @cookTime, @category, @difficulty, @tags, @calories, @protein, @carbs, @fat)
		 RETURNING *`, args)
	if err != nil {
		apiError(c, http.StatusInternalServerError, "failed to create recipe")
		return
	}
	c.JSON(http.StatusCreated, recipeResponse{recipe: r, Issues: issues})
}

// updateRecipe replaces a recipe and recomputes its totals.
// PUT /api/recipes/:id. Only the author or an admin may edit.
func (h *Handler) updateRecipe(c *gin.Context) {
	id, ok := pathID(c, "id")
	if !ok {
		return
	}
	var body recipeRequest
	if err := c.ShouldBindJSON(&body); err != nil {
		bindError(c, err)
		return
	}
	if !h.canEditRecipe(c, id) {
		return
	}
	args, issues, err := h.recipeArgs(c, body)
	if err != nil {
		apiError(c, http.StatusInternalServerError, "failed to resolve ingredients")
		return
	}
	args["id"] = id

	r, err := queryOne[recipe](h.db, c,
		`UPDATE recipes SET
			name = @name, description = @description, image = @image,
			ingredients = @ingredients::jsonb, instructions = @instructions,
			servings = @servings, prep_time = @prepTime, cook_time = @cookTime,
			category = @category, difficulty = @difficulty, tags = @tags,
			calories = @calories, protein = @protein, carbs = @carbs, fat = @fat,
			updated_at = now()
		 WHERE id = @id
		 RETURNING *`, args)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			apiError(c, http.StatusNotFound, "recipe not found")
		} else {
			apiError(c, http.StatusInternalServerError, "failed to update recipe")
		}
		return
	}
	c.JSON(http.StatusOK, recipeResponse{recipe: r, Issues: issues})
}

// deleteRecipe removes a recipe. DELETE /api/recipes/:id. Diary entries made
// from it keep their copied values.
func (h *Handler) deleteRecipe(c *gin.Context) {
	id, ok := pathID(c, "id")
	if !ok {
		return
	}
	if !h.canEditRecipe(c, id) {
		return
	}
	if _, err := h.db.Exec(c, "DELETE FROM recipes WHERE id = @id", pgx.NamedArgs{"id": id}); err != nil {
		apiError(c, http.StatusInternalServerError, "failed to delete recipe")
		return
	}
	c.Status(http.StatusNoContent)
}

// canEditRecipe writes 404/403 and returns false unless the caller authored
// the recipe or is an admin.
func (h *Handler) canEditRecipe(c *gin.Context, id int) bool {
	var authorID *int
	err := h.db.QueryRow(c, "SELECT author_id FROM recipes WHERE id = $1", id).Scan(&authorID)
	if err != nil {
		notFoundOr500(c, err, "recipe")
		return false
	}
	if c.GetString("role") == "admin" {
		return true
	}
	if authorID == nil || *authorID != c.GetInt("user_id") {
		apiError(c, http.StatusForbidden, "only the author can modify this recipe")
		return false
	}
	return true
}

func nonNilStrings(s []string) []string {
	if s == nil {
		return []string{}
	}
	return s
}
