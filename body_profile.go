package main

import (
	"errors"
	"log"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/jackc/pgx/v5"

	"lg/diet-tracker-api/nutrition"
)

// loadBodyProfile returns the stored profile, or nil if the user hasn't
// completed onboarding yet.
func (h *Handler) loadBodyProfile(c *gin.Context, userID int) (*bodyProfile, error) {
	p, err := queryOne[bodyProfile](h.db, c,
		"SELECT * FROM body_profiles WHERE user_id = @userID",
		pgx.NamedArgs{"userID": userID})
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &p, nil
}

// bmiDataFor computes targets from a stored profile.
func (h *Handler) bmiDataFor(p bodyProfile) (*bmiData, error) {
	profile := p.profile()
	targets, err := nutrition.ComputeBodyMetricsWithSplit(profile, h.split)
	if err != nil {
		return nil, err
	}
	return &bmiData{
		BodyProfile:      profile,
		NutritionTargets: targets,
		InitialWeight:    p.InitialWeightKG,
		WeightDiff:       nutrition.WeightChange(p.InitialWeightKG, p.WeightKG),
	}, nil
}

// userWithBMIData attaches the computed bmiData to u. A stored profile that
// no longer validates (e.g. ranges tightened since it was saved) is reported
// as incomplete rather than failing the request.
func (h *Handler) userWithBMIData(c *gin.Context, u user) (userResponse, error) {
	resp := userResponse{user: u}
	p, err := h.loadBodyProfile(c, u.ID)
	if err != nil || p == nil {
		return resp, err
	}
	data, err := h.bmiDataFor(*p)
	if err != nil {
		log.Printf("[userWithBMIData] stored profile for user %d is invalid: %v", u.ID, err)
		return resp, nil
	}
	resp.BMIData = data
	resp.ProfileComplete = true
	return resp, nil
}

// targetsFor returns the user's computed targets, or FallbackTargets when
// there is no usable profile.
func (h *Handler) targetsFor(c *gin.Context, userID int) (nutrition.NutritionTargets, error) {
	p, err := h.loadBodyProfile(c, userID)
	if err != nil {
		return nutrition.NutritionTargets{}, err
	}
	if p == nil {
		return nutrition.FallbackTargets, nil
	}
	data, err := h.bmiDataFor(*p)
	if err != nil {
		log.Printf("[targetsFor] stored profile for user %d is invalid: %v", userID, err)
		return nutrition.FallbackTargets, nil
	}
	return data.NutritionTargets, nil
}

// getBMIData returns the stored profile with computed targets.
// GET /api/user/bmi-data. {"bmiData": null} before onboarding.
func (h *Handler) getBMIData(c *gin.Context) {
	userID := c.GetInt("user_id")

	p, err := h.loadBodyProfile(c, userID)
	if err != nil {
		apiError(c, http.StatusInternalServerError, "failed to fetch profile")
		return
	}
	if p == nil {
		c.JSON(http.StatusOK, gin.H{"bmiData": nil})
		return
	}
	data, err := h.bmiDataFor(*p)
	if err != nil {
		validationError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"bmiData": data})
}

// saveBMIData validates and stores the body profile, appends today's weight
// to the weight log, and returns the user with recomputed targets.
// POST /api/user/bmi-data. The first save fixes initial_weight_kg.
func (h *Handler) saveBMIData(c *gin.Context) {
	userID := c.GetInt("user_id")

	var body bmiDataRequest
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
	if _, err := nutrition.ComputeBodyMetricsWithSplit(body.BodyProfile, h.split); err != nil {
		validationError(c, err)
		return
	}

	today := time.Now().Format("2006-01-02")
	err := pgx.BeginFunc(c, h.db, func(tx pgx.Tx) error {
		if _, err := tx.Exec(c,
			`INSERT INTO body_profiles (user_id, age, height_cm, weight_kg, initial_weight_kg, sex, activity_level)
			 VALUES (@userID, @age, @heightCM, @weightKG, @weightKG, @sex, @activityLevel)
			 ON CONFLICT (user_id) DO UPDATE SET
				age            = EXCLUDED.age,
				height_cm      = EXCLUDED.height_cm,
				weight_kg      = EXCLUDED.weight_kg,
				sex            = EXCLUDED.sex,
				activity_level = EXCLUDED.activity_level,
				updated_at     = now()`,
			pgx.NamedArgs{
				"userID":        userID,
				"age":           body.Age,
				"heightCM":      body.HeightCM,
				"weightKG":      body.WeightKG,
				"sex":           string(body.Sex),
				"activityLevel": string(body.ActivityLevel),
			}); err != nil {
			return err
		}

		if body.FirstName != nil || body.LastName != nil || body.Image != nil {
			if _, err := tx.Exec(c,
				`UPDATE users SET
					first_name = COALESCE(@firstName, first_name),
					last_name  = COALESCE(@lastName, last_name),
					image      = COALESCE(@image, image)
				 WHERE id = @userID`,
				pgx.NamedArgs{
					"userID":    userID,
					"firstName": body.FirstName,
					"lastName":  body.LastName,
					"image":     body.Image,
				}); err != nil {
				return err
			}
		}

		_, err := tx.Exec(c,
			`INSERT INTO weight_log (user_id, date, weight_kg)
			 VALUES (@userID, @date, @weightKG)
			 ON CONFLICT (user_id, date) DO UPDATE SET weight_kg = EXCLUDED.weight_kg`,
			pgx.NamedArgs{"userID": userID, "date": today, "weightKG": body.WeightKG})
		return err
	})
	if err != nil {
		log.Printf("[saveBMIData] transaction failed for user %d: %v", userID, err)
		apiError(c, http.StatusInternalServerError, "failed to save profile")
		return
	}

	u, err := queryOne[user](h.db, c,
		"SELECT * FROM users WHERE id = @userID",
		pgx.NamedArgs{"userID": userID})
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
