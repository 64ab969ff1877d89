package main

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/jackc/pgx/v5"

	"lg/diet-tracker-api/nutrition"
)

// getWeightLog returns weight entries for the authenticated user within [start, end].
// GET /api/weight-log?start=YYYY-MM-DD&end=YYYY-MM-DD. Both params required.
// Returns an empty array (not null) if no entries exist in the range.
func (h *Handler) getWeightLog(c *gin.Context) {
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

	entries, err := queryMany[weightEntry](h.db, c,
		`SELECT * FROM weight_log
		 WHERE user_id = @userID AND date >= @start AND date <= @end
		 ORDER BY date ASC`,
		pgx.NamedArgs{"userID": userID, "start": start, "end": end})
	if err != nil {
		apiError(c, http.StatusInternalServerError, "failed to fetch weight log")
		return
	}
	// Ensure empty array (not null) in JSON
	if entries == nil {
		entries = []weightEntry{}
	}

	c.JSON(http.StatusOK, entries)
}

// upsertWeightEntry creates or updates the weight entry for the given date.
// POST /api/weight-log. Body: { "date": "YYYY-MM-DD", "weight": 80.5 } (kg).
// The UNIQUE(user_id, date) constraint means posting the same date updates in place.
func (h *Handler) upsertWeightEntry(c *gin.Context) {
	userID := c.GetInt("user_id")

	var body weightEntryRequest
	if err := c.ShouldBindJSON(&body); err != nil {
		bindError(c, err)
		return
	}
	if _, ok := parseDate(c, "date", body.Date); !ok {
		return
	}
	if body.WeightKG < nutrition.MinWeightKG || body.WeightKG > nutrition.MaxWeightKG {
		c.JSON(http.StatusBadRequest, gin.H{
			"error": "weight must be between 30 and 300 kg",
			"field": "weight",
		})
		return
	}

	entry, err := queryOne[weightEntry](h.db, c,
		`INSERT INTO weight_log (user_id, date, weight_kg)
		 VALUES (@userID, @date, @weightKG)
		 ON CONFLICT (user_id, date) DO UPDATE SET weight_kg = EXCLUDED.weight_kg
		 RETURNING *`,
		pgx.NamedArgs{"userID": userID, "date": body.Date, "weightKG": body.WeightKG})
	if err != nil {
		apiError(c, http.StatusInternalServerError, "failed to upsert weight entry")
		return
	}

	c.JSON(http.StatusCreated, entry)
}

// deleteWeightEntry removes a weight log entry by ID.
// DELETE /api/weight-log/:id. Returns 204 on success, 404 if not found.
// Ownership is enforced by requiring both id and user_id to match.
func (h *Handler) deleteWeightEntry(c *gin.Context) {
	userID := c.GetInt("user_id")
	id, ok := pathID(c, "id")
	if !ok {
		return
	}

	result, err := h.db.Exec(c,
		"DELETE FROM weight_log WHERE id = @id AND user_id = @userID",
		pgx.NamedArgs{"id": id, "userID": userID})
	if err != nil {
		apiError(c, http.StatusInternalServerError, "failed to delete weight entry")
		return
	}
	if result.RowsAffected() == 0 {
		apiError(c, http.StatusNotFound, "weight entry not found")
		return
	}

	c.Status(http.StatusNoContent)
}

// updateWeightEntry partially updates an existing weight entry.
// PUT /api/weight-log/:id. Body: { "date"?, "weight"? }.
// Uses COALESCE so omitted fields keep their current values.
func (h *Handler) updateWeightEntry(c *gin.Context) {
	userID := c.GetInt("user_id")
	id, ok := pathID(c, "id")
	if !ok {
		return
	}

	var body struct {
		Date     *string  `json:"date"`
		WeightKG *float64 `json:"weight"`
	}
	if err := c.ShouldBindJSON(&body); err != nil {
		bindError(c, err)
		return
	}
	if body.Date != nil {
		if _, ok := parseDate(c, "date", *body.Date); !ok {
			return
		}
	}
	if body.WeightKG != nil && (*body.WeightKG < nutrition.MinWeightKG || *body.WeightKG > nutrition.MaxWeightKG) {
		c.JSON(http.StatusBadRequest, gin.H{"error": "weight must be between 30 and 300 kg", "field": "weight"})
		return
	}

	entry, err := queryOne[weightEntry](h.db, c,
		`UPDATE weight_log SET
			date      = COALESCE(@date, date),
			weight_kg = COALESCE(@weightKG, weight_kg)
		 WHERE id = @id AND user_id = @userID
		 RETURNING *`,
		pgx.NamedArgs{"id": id, "userID": userID, "date": body.Date, "weightKG": body.WeightKG})
	if err != nil {
		// Distinguish a missing row or a date clash from a real DB failure.
		if errors.Is(err, pgx.ErrNoRows) {
			apiError(c, http.StatusNotFound, "weight entry not found")
		} else if !constraintError(c, err, "a weight entry already exists for that date", "weight entry not found") {
			apiError(c, http.StatusInternalServerError, "failed to update weight entry")
		}
		return
	}

	c.JSON(http.StatusOK, entry)
}
