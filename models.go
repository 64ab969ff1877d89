package main

import (
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgtype"

	"lg/diet-tracker-api/nutrition"
)

// DateOnly wraps time.Time to serialize as "YYYY-MM-DD" in JSON.
type DateOnly struct{ time.Time }

func (d DateOnly) MarshalJSON() ([]byte, error) {
	return []byte(`"` + d.Time.Format("2006-01-02") + `"`), nil
}

func (d *DateOnly) UnmarshalJSON(b []byte) error {
	t, err := time.Parse(`"2006-01-02"`, string(b))
	if err != nil {
		return err
	}
	d.Time = t
	return nil
}

// ScanDate implements pgtype.DateScanner so pgx can scan PostgreSQL date
// columns (OID 1082) into DateOnly. NULL values zero the time and return nil
// so that *DateOnly pointer fields can be set to nil by pgx's NULL handling.
func (d *DateOnly) ScanDate(v pgtype.Date) error {
	if !v.Valid {
		d.Time = time.Time{}
		return nil
	}
	d.Time = v.Time
	return nil
}

/* ─── Domain structs ─────────────────────────────────────────────────── */

// JSON field names follow the two front-ends (camelCase, "_id").

// user maps to the users table. AuthToken and Password are hidden from JSON responses.
type user struct {
	ID        int        `json:"_id" db:"id"`
	Email     string     `json:"email" db:"email"`
	FirstName string     `json:"firstName" db:"first_name"`
	LastName  string     `json:"lastName" db:"last_name"`
	Role      string     `json:"role" db:"role"`
	Image     string     `json:"image" db:"image"`
	AuthToken string     `json:"-" db:"auth_token"`
	Password  string     `json:"-" db:"password"`
	CreatedAt *time.Time `json:"createdAt" db:"created_at"`
}

// bodyProfile maps to body_profiles. One row per user, overwritten on every save.
// InitialWeightKG is set on the first save and never changed afterwards.
type bodyProfile struct {
	UserID          int                     `db:"user_id"`
	Age             int                     `db:"age"`
	HeightCM        float64                 `db:"height_cm"`
	WeightKG        float64                 `db:"weight_kg"`
	InitialWeightKG float64                 `db:"initial_weight_kg"`
	Sex             nutrition.Sex           `db:"sex"`
	ActivityLevel   nutrition.ActivityLevel `db:"activity_level"`
	UpdatedAt       *time.Time              `db:"updated_at"`
}

func (p bodyProfile) profile() nutrition.BodyProfile {
	return nutrition.BodyProfile{
		Age:           p.Age,
		HeightCM:      p.HeightCM,
		WeightKG:      p.WeightKG,
		Sex:           p.Sex,
		ActivityLevel: p.ActivityLevel,
	}
}

// bmiData is the profile as the front-ends read it: stored inputs plus the
// targets computed from them. Targets are never persisted.
type bmiData struct {
	nutrition.BodyProfile
	nutrition.NutritionTargets
	InitialWeight float64 `json:"initialWeight"`
	WeightDiff    float64 `json:"weightDiff"`
}

// userResponse is a user with their bmiData, or bmiData=null before onboarding.
type userResponse struct {
	user
	BMIData         *bmiData `json:"bmiData"`
	ProfileComplete bool     `json:"profileComplete"`
}

// product maps to products. Nutrient columns are per 100 units of Unit.
type product struct {
	ID        int            `json:"_id" db:"id"`
	Name      string         `json:"name" db:"name"`
	Category  string         `json:"category" db:"category"`
	Unit      nutrition.Unit `json:"unit" db:"unit"`
	Image     string         `json:"image" db:"image"`
	Calories  float64        `json:"calories" db:"calories"`
	Protein   float64        `json:"protein" db:"protein"`
	Carbs     float64        `json:"carbs" db:"carbs"`
	Fat       float64        `json:"fat" db:"fat"`
	CreatedAt *time.Time     `json:"createdAt" db:"created_at"`
	UpdatedAt *time.Time     `json:"updatedAt" db:"updated_at"`
}

func (p product) baseline() nutrition.NutrientBaseline {
	return nutrition.NutrientBaseline{
		Calories: nutrition.Number(p.Calories),
		Protein:  nutrition.Number(p.Protein),
		Carbs:    nutrition.Number(p.Carbs),
		Fat:      nutrition.Number(p.Fat),
		Unit:     p.Unit,
	}
}

// recipe maps to recipes. Calories/Protein/Carbs/Fat are per serving and are
// always recomputed from Ingredients and Servings before being written.
type recipe struct {
	ID           int                    `json:"_id" db:"id"`
	AuthorID     *int                   `json:"authorId" db:"author_id"`
	Name         string                 `json:"name" db:"name"`
	Description  string                 `json:"description" db:"description"`
	Image        string                 `json:"image" db:"image"`
	Ingredients  []nutrition.Ingredient `json:"ingredients" db:"ingredients"`
	Instructions []string               `json:"instructions" db:"instructions"`
	Servings     int                    `json:"servings" db:"servings"`
	PrepTime     int                    `json:"prepTime" db:"prep_time"`
	CookTime     int                    `json:"cookTime" db:"cook_time"`
	Category     []string               `json:"category" db:"category"`
	Difficulty   string                 `json:"difficulty" db:"difficulty"`
	Tags         []string               `json:"tags" db:"tags"`
	Calories     float64                `json:"calories" db:"calories"`
	Protein      float64                `json:"protein" db:"protein"`
	Carbs        float64                `json:"carbs" db:"carbs"`
	Fat          float64                `json:"fat" db:"fat"`
	CreatedAt    *time.Time             `json:"createdAt" db:"created_at"`
	UpdatedAt    *time.Time             `json:"updatedAt" db:"updated_at"`
}

// diaryEntry maps to diary_entries.
type diaryEntry struct {
	ID          int                    `json:"_id" db:"id"`
	UserID      int                    `json:"userId" db:"user_id"`
	Date        DateOnly               `json:"date" db:"date"`
	Name        string                 `json:"name" db:"name"`
	MealType    nutrition.MealType     `json:"mealType" db:"meal_type"`
	Type        nutrition.EntryType    `json:"type" db:"type"`
	RecipeID    *int                   `json:"recipeId" db:"recipe_id"`
	Ingredients []nutrition.Ingredient `json:"ingredients" db:"ingredients"`
	Image       string                 `json:"image" db:"image"`
	Calories    float64                `json:"calories" db:"calories"`
	Protein     float64                `json:"protein" db:"protein"`
	Carbs       float64                `json:"carbs" db:"carbs"`
	Fat         float64                `json:"fat" db:"fat"`
	CreatedAt   *time.Time             `json:"createdAt" db:"created_at"`
	UpdatedAt   *time.Time             `json:"updatedAt" db:"updated_at"`
}

func (e diaryEntry) entry() nutrition.DiaryEntry {
	return nutrition.DiaryEntry{
		Name:        e.Name,
		Date:        e.Date.Format("2006-01-02"),
		MealType:    e.MealType,
		Type:        e.Type,
		RecipeID:    e.RecipeID,
		Ingredients: e.Ingredients,
		Calories:    nutrition.Number(e.Calories),
		Protein:     nutrition.Number(e.Protein),
		Carbs:       nutrition.Number(e.Carbs),
		Fat:         nutrition.Number(e.Fat),
	}
}

// weightEntry maps to weight_log.
type weightEntry struct {
	ID        int        `json:"_id" db:"id"`
	UserID    int        `json:"userId" db:"user_id"`
	Date      DateOnly   `json:"date" db:"date"`
	WeightKG  float64    `json:"weight" db:"weight_kg"`
	CreatedAt *time.Time `json:"createdAt" db:"created_at"`
}

// article maps to articles. Date is the publication date shown on the card.
type article struct {
	ID        int        `json:"_id" db:"id"`
	AuthorID  *int       `json:"authorId" db:"author_id"`
	Title     string     `json:"title" db:"title"`
	Category  string     `json:"category" db:"category"`
	Label     string     `json:"label" db:"label"`
	Image     string     `json:"image" db:"image"`
	Excerpt   string     `json:"excerpt" db:"excerpt"`
	Content   string     `json:"content" db:"content"`
	Date      DateOnly   `json:"date" db:"date"`
	CreatedAt *time.Time `json:"createdAt" db:"created_at"`
	UpdatedAt *time.Time `json:"updatedAt" db:"updated_at"`
}

// passwordReset maps to password_resets. Only the bcrypt hash of the link
// secret is stored.
type passwordReset struct {
	ID         uuid.UUID  `db:"id"`
	UserID     int        `db:"user_id"`
	SecretHash string     `db:"secret_hash"`
	ExpiresAt  time.Time  `db:"expires_at"`
	UsedAt     *time.Time `db:"used_at"`
	CreatedAt  *time.Time `db:"created_at"`
}

// adminStats is the response shape for GET /api/admin/stats.
type adminStats struct {
	Users    int `json:"users" db:"users"`
	Recipes  int `json:"recipes" db:"recipes"`
	Articles int `json:"articles" db:"articles"`
	Products int `json:"products" db:"products"`
}

// dayActivity is one bar of the admin activity chart: rows created that day.
type dayActivity struct {
	Day      int `json:"day" db:"day"`
	Users    int `json:"users" db:"users"`
	Recipes  int `json:"recipes" db:"recipes"`
	Articles int `json:"articles" db:"articles"`
}

// dashboardRecent is the response shape for GET /api/admin/dashboard/recent.
type dashboardRecent struct {
	Articles []article `json:"articles"`
	Recipes  []recipe  `json:"recipes"`
}

// dayTotalsDBRow is the shape of each row returned by the diary stats GROUP BY query.
type dayTotalsDBRow struct {
	Date     DateOnly `db:"date"`
	Entries  int      `db:"entries"`
	Calories float64  `db:"calories"`
	Protein  float64  `db:"protein"`
	Carbs    float64  `db:"carbs"`
	Fat      float64  `db:"fat"`
}

// daySummary is the response shape for GET /api/diary/:date/summary and one
// element of the stats response.
type daySummary struct {
	Date     string                     `json:"date"`
	Totals   nutrition.NutrientValues   `json:"totals"`
	Targets  nutrition.NutritionTargets `json:"targets"`
	Progress nutrition.ProgressView     `json:"progress"`
}

// dayDiary is the response shape for GET /api/diary/:date.
type dayDiary struct {
	daySummary
	Entries    []diaryEntry                                    `json:"entries"`
	Meals      map[nutrition.MealType][]diaryEntry             `json:"meals"`
	MealTotals map[nutrition.MealType]nutrition.NutrientValues `json:"mealTotals"`
}

/* ─── Request bodies ─────────────────────────────────────────────────── */

type loginRequest struct {
	Email    string `json:"email" binding:"required,email"`
	Password string `json:"password" binding:"required"`
}

type registerRequest struct {
	Email     string `json:"email" binding:"required,email"`
	Password  string `json:"password" binding:"required,min=6"`
	FirstName string `json:"firstName" binding:"max=100"`
	LastName  string `json:"lastName" binding:"max=100"`
}

type changePasswordRequest struct {
	CurrentPassword string `json:"currentPassword" binding:"required"`
	NewPassword     string `json:"newPassword" binding:"required,min=6"`
}

// bmiDataRequest is the body of POST /api/user/bmi-data. The profile fields
// are validated by nutrition.BodyProfile.Validate so errors name the exact
// field and range; the name and image fields are optional and only written
// when present.
type bmiDataRequest struct {
	nutrition.BodyProfile
	FirstName *string `json:"firstName"`
	LastName  *string `json:"lastName"`
	Image     *string `json:"image"`
}

// productRequest is the body of POST/PUT /api/products. The embedded
// baseline is per 100 units.
type productRequest struct {
	Name     string `json:"name" binding:"required,max=200"`
	Category string `json:"category"`
	Image    string `json:"image"`
	nutrition.NutrientBaseline
}

// recipeRequest is the body of POST/PUT /api/recipes. Any per-serving totals
// the client sends are ignored; the server recomputes them.
type recipeRequest struct {
	Name         string                 `json:"name" binding:"required,max=200"`
	Description  string                 `json:"description"`
	Image        string                 `json:"image"`
	Ingredients  []nutrition.Ingredient `json:"ingredients"`
	Instructions []string               `json:"instructions"`
	Servings     nutrition.Number       `json:"servings"`
	PrepTime     nutrition.Number       `json:"prepTime"`
	CookTime     nutrition.Number       `json:"cookTime"`
	Category     []string               `json:"category"`
	Difficulty   string                 `json:"difficulty" binding:"omitempty,oneof=easy medium hard"`
	Tags         []string               `json:"tags"`
}

// diaryEntryRequest is the body of POST/PUT /api/diary.
type diaryEntryRequest struct {
	nutrition.DiaryEntry
	Image string `json:"image"`
}

type weightEntryRequest struct {
	Date     string  `json:"date" binding:"required"`
	WeightKG float64 `json:"weight" binding:"required,gt=0,lte=500"`
}

// articleRequest is the body of POST/PUT /api/articles.
type articleRequest struct {
	Title    string `json:"title" binding:"required,max=200"`
	Category string `json:"category" binding:"omitempty,oneof=porady zdrowie suplementacja styl_zycia"`
	Label    string `json:"label" binding:"max=50"`
	Image    string `json:"image"`
	Excerpt  string `json:"excerpt" binding:"max=500"`
	Content  string `json:"content"`
	Date     string `json:"date"`
}

type forgotPasswordRequest struct {
	Email string `json:"email" binding:"required,email"`
}

type resetPasswordRequest struct {
	Token    string `json:"token" binding:"required"`
	Password string `json:"password" binding:"required,min=6"`
}

// profileRequest is the body of PUT /api/admin/profile. Absent fields are kept.
type profileRequest struct {
	FirstName *string `json:"firstName" binding:"omitempty,max=100"`
	LastName  *string `json:"lastName" binding:"omitempty,max=100"`
	Image     *string `json:"image"`
}
