package main

import (
	"errors"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/jackc/pgx/v5"

	"lg/diet-tracker-api/nutrition"
)

// listProducts returns products, optionally filtered by name and category.
// GET /api/products?search=&category=. Returns an empty array (not null) if none match.
func (h *Handler) listProducts(c *gin.Context) {
	products, err := queryMany[product](h.db, c,
		`SELECT * FROM products
		 WHERE (@search = '' OR name ILIKE '%' || @search || '%')
		   AND (@category = '' OR category = @category)
		 ORDER BY name`,
		pgx.NamedArgs{
			"search":   strings.TrimSpace(c.Query("search")),
			"category": strings.TrimSpace(c.Query("category")),
		})
	if err != nil {
		apiError(c, http.StatusInternalServerError, "failed to fetch products")
		return
	}
	if products == nil {
		products = []product{}
	}
	c.JSON(http.StatusOK, products)
}

// getProduct returns one product. GET /api/products/:id.
func (h *Handler) getProduct(c *gin.Context) {
	id, ok := pathID(c, "id")
	if !ok {
		return
	}
	p, err := queryOne[product](h.db, c,
		"SELECT * FROM products WHERE id = @id",
		pgx.NamedArgs{"id": id})
	if err != nil {
		notFoundOr500(c, err, "product")
		return
	}
	c.JSON(http.StatusOK, p)
}

// productArgs validates the body and returns the normalized insert/update args.
func productArgs(c *gin.Context, body productRequest) (pgx.NamedArgs, bool) {
	if _, ok := nutrition.ParseUnit(string(body.Unit)); !ok {
		c.JSON(http.StatusBadRequest, gin.H{"error": "unit must be one of: g, ml, piece", "field": "unit"})
		return nil, false
	}
	b := body.NutrientBaseline.Normalized()
	return pgx.NamedArgs{
		"name":     strings.TrimSpace(body.Name),
		"category": strings.TrimSpace(body.Category),
		"unit":     string(b.Unit),
		"image":    body.Image,
		"calories": b.Calories.Float(),
		"protein":  b.Protein.Float(),
		"carbs":    b.Carbs.Float(),
		"fat":      b.Fat.Float(),
	}, true
}

// createProduct inserts a product. Nutrients are per 100 units and are
// stored as whole kcal and macros to 0.1 g.
// POST /api/products (admin).
func (h *Handler) createProduct(c *gin.Context) {
	var body productRequest
	if err := c.ShouldBindJSON(&body); err != nil {
		bindError(c, err)
		return
	}
	args, ok := productArgs(c, body)
	if !ok {
		return
	}

	p, err := queryOne[product](h.db, c,
		`INSERT INTO products (name, category, unit, image, calories, protein, carbs, fat)
		 VALUES (@name, @category, @unit, @image, @calories, @protein, @carbs, @fat)
		 RETURNING *`, args)
	if err != nil {
		apiError(c, http.StatusInternalServerError, "failed to create product")
		return
	}
	c.JSON(http.StatusCreated, p)
}

// updateProduct replaces a product. Recipes and diary entries keep the
// values they were saved with until they are next edited.
// PUT /api/products/:id (admin).
func (h *Handler) updateProduct(c *gin.Context) {
	id, ok := pathID(c, "id")
	if !ok {
		return
	}
	var body productRequest
	if err := c.ShouldBindJSON(&body); err != nil {
		bindError(c, err)
		return
	}
	args, ok := productArgs(c, body)
	if !ok {
		return
	}
	args["id"] = id

	p, err := queryOne[product](h.db, c,
		`UPDATE products SET
			name = @name, category = @category, unit = @unit, image = @image,
			calories = @calories, protein = @protein, carbs = @carbs, fat = @fat,
			updated_at = now()
		 WHERE id = @id
		 RETURNING *`, args)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			apiError(c, http.StatusNotFound, "product not found")
		} else {
			apiError(c, http.StatusInternalServerError, "failed to update product")
		}
		return
	}
	c.JSON(http.StatusOK, p)
}

// deleteProduct removes a product. DELETE /api/products/:id (admin).
// Ingredients that referenced it are reported as missing_baseline on their
// recipe's next save.
func (h *Handler) deleteProduct(c *gin.Context) {
	id, ok := pathID(c, "id")
	if !ok {
		return
	}
	result, err := h.db.Exec(c, "DELETE FROM products WHERE id = @id", pgx.NamedArgs{"id": id})
	if err != nil {
		apiError(c, http.StatusInternalServerError, "failed to delete product")
		return
	}
	if result.RowsAffected() == 0 {
		apiError(c, http.StatusNotFound, "product not found")
		return
	}
	c.Status(http.StatusNoContent)
}

// productBaselines loads the baselines for the given product IDs in one
// query and returns a lookup over them.
func (h *Handler) productBaselines(c *gin.Context, ings []nutrition.Ingredient) (nutrition.BaselineLookup, error) {
	var ids []int
	for _, ing := range ings {
		if ing.ProductID != nil {
			ids = append(ids, *ing.ProductID)
		}
	}
	found := make(map[int]nutrition.NutrientBaseline, len(ids))
	if len(ids) > 0 {
		products, err := queryMany[product](h.db, c,
			"SELECT * FROM products WHERE id = ANY(@ids)",
			pgx.NamedArgs{"ids": ids})
		if err != nil {
			return nil, err
		}
		for _, p := range products {
			found[p.ID] = p.baseline()
		}
	}
	return func(id int) (nutrition.NutrientBaseline, bool) {
		b, ok := found[id]
		return b, ok
	}, nil
}
