package nutrition

import (
	"math"
	"strings"
)

// RecipeTotals is the result of folding a recipe's ingredients.
type RecipeTotals struct {
	PerServing NutrientValues `json:"perServing"`
	Total      NutrientValues `json:"total"`
	// Servings is the value actually divided by, after clamping to >= 1.
	Servings int `json:"servings"`
	// Degenerate is set when the requested servings was below 1.
	Degenerate bool `json:"degenerate,omitempty"`
}

// Issue returns the degenerate-servings issue, if there was one.
func (t RecipeTotals) Issue() (Issue, bool) {
	if !t.Degenerate {
		return Issue{}, false
	}
	return Issue{Kind: IssueDegenerateServings, Index: -1, Msg: "servings below 1, using 1"}, true
}

// ComputeRecipeTotals sums the ingredients and divides by servings. Per-serving
// calories are rounded to whole kcal and macros to one decimal. servings < 1
// is treated as 1, and the returned Servings reflects that.
func ComputeRecipeTotals(ings []Ingredient, servings int) RecipeTotals {
	t := RecipeTotals{Total: SumIngredients(ings), Servings: servings}
	if t.Servings < 1 {
		t.Servings = 1
		t.Degenerate = true
	}
	n := float64(t.Servings)
	t.PerServing = NutrientValues{
		Calories: roundKcal(t.Total.Calories / n),
		Protein:  round1(t.Total.Protein / n),
		Carbs:    round1(t.Total.Carbs / n),
		Fat:      round1(t.Total.Fat / n),
	}
	return t
}

// Recipe is a set of ingredients plus its per-serving nutrient values.
type Recipe struct {
	Name        string         `json:"name"`
	Servings    int            `json:"servings"`
	Ingredients []Ingredient   `json:"ingredients"`
	PerServing  NutrientValues `json:"perServing"`
}

// Recomputed returns r with servings clamped and per-serving values rebuilt
// from its ingredients. Recomputation is always total.
func (r Recipe) Recomputed() (Recipe, RecipeTotals) {
	t := ComputeRecipeTotals(r.Ingredients, r.Servings)
	r.Servings = t.Servings
	r.PerServing = t.PerServing
	return r, t
}

/* ─── Diary ──────────────────────────────────────────────────────────── */

// MealType is the slot of the day an entry was eaten in.
type MealType string

const (
	Breakfast MealType = "breakfast"
	Brunch    MealType = "brunch"
	Lunch     MealType = "lunch"
	Dinner    MealType = "dinner"
	Snack     MealType = "snack"
)

// MealTypes lists the meal slots in the order of the day.
var MealTypes = []MealType{Breakfast, Brunch, Lunch, Dinner, Snack}

// ParseMealType normalizes s and reports whether it is a known meal slot.
func ParseMealType(s string) (MealType, bool) {
	m := MealType(strings.ToLower(strings.TrimSpace(s)))
	for _, known := range MealTypes {
		if m == known {
			return m, true
		}
	}
	return m, false
}

// EntryType tells whether a diary entry came from a recipe or was typed in.
type EntryType string

const (
	EntryRecipe EntryType = "recipe"
	EntryCustom EntryType = "custom"
)

// DiaryEntry is one logged meal.
type DiaryEntry struct {
	Name        string       `json:"name"`
	Date        string       `json:"date"`
	MealType    MealType     `json:"mealType"`
	Type        EntryType    `json:"type"`
	RecipeID    *int         `json:"recipeId,omitempty"`
	Ingredients []Ingredient `json:"ingredients,omitempty"`
	Calories    Number       `json:"calories"`
	Protein     Number       `json:"protein"`
	Carbs       Number       `json:"carbs"`
	Fat         Number       `json:"fat"`
}

// Values returns the entry's nutrients with non-numeric fields as 0.
func (e DiaryEntry) Values() NutrientValues {
	return NutrientValues{
		Calories: e.Calories.Float(),
		Protein:  e.Protein.Float(),
		Carbs:    e.Carbs.Float(),
		Fat:      e.Fat.Float(),
	}
}

// Normalized returns e with its totals made consistent with its contents.
// Recipe entries that carry ingredients get their totals rebuilt from them
// (calories rounded to whole kcal, macros to 0.1 g). Custom entries keep the
// user's values, with calories rounded, even when they list ingredients.
func (e DiaryEntry) Normalized() DiaryEntry {
	if e.Type == EntryRecipe && len(e.Ingredients) > 0 {
		t := SumIngredients(e.Ingredients)
		e.Calories = Number(roundKcal(t.Calories))
		e.Protein = Number(round1(t.Protein))
		e.Carbs = Number(round1(t.Carbs))
		e.Fat = Number(round1(t.Fat))
		return e
	}
	v := e.Values()
	e.Calories = Number(roundKcal(v.Calories))
	e.Protein, e.Carbs, e.Fat = Number(v.Protein), Number(v.Carbs), Number(v.Fat)
	return e
}

// ComputeDailyTotals sums all entries without rounding.
func ComputeDailyTotals(entries []DiaryEntry) NutrientValues {
	vals := make([]NutrientValues, len(entries))
	for i, e := range entries {
		vals[i] = e.Values()
	}
	return SumNutrients(vals...)
}

// GroupByMeal buckets entries by meal type, preserving their order.
// Entries with an empty or unknown meal type go to Snack.
func GroupByMeal(entries []DiaryEntry) map[MealType][]DiaryEntry {
	groups := make(map[MealType][]DiaryEntry)
	for _, e := range entries {
		m, ok := ParseMealType(string(e.MealType))
		if !ok {
			m = Snack
		}
		groups[m] = append(groups[m], e)
	}
	return groups
}

// MealTotals returns daily totals per meal slot. Every slot is present.
func MealTotals(entries []DiaryEntry) map[MealType]NutrientValues {
	groups := GroupByMeal(entries)
	out := make(map[MealType]NutrientValues, len(MealTypes))
	for _, m := range MealTypes {
		out[m] = ComputeDailyTotals(groups[m])
	}
	return out
}

/* ─── Progress ───────────────────────────────────────────────────────── */

// Progress compares one nutrient against its target.
type Progress struct {
	Actual float64 `json:"actual"`
	Target float64 `json:"target"`
	// Percent is actual/target*100 clamped to [0, 100], for progress bars.
	Percent float64 `json:"percentOfTarget"`
	// Ratio is actual/target, unclamped.
	Ratio float64 `json:"ratio"`
	Over  bool    `json:"isOverLimit"`
}

// ProgressView is the day's progress for energy and each macro.
type ProgressView struct {
	Calories Progress `json:"calories"`
	Protein  Progress `json:"protein"`
	Carbs    Progress `json:"carbs"`
	Fat      Progress `json:"fat"`
}

// ComputeProgress compares daily totals with the targets: calories against
// TDEE, each macro against its gram target.
func ComputeProgress(daily NutrientValues, t NutritionTargets) ProgressView {
	return ProgressView{
		Calories: progressOf(daily.Calories, t.TDEE),
		Protein:  progressOf(daily.Protein, t.ProteinTargetGrams),
		Carbs:    progressOf(daily.Carbs, t.CarbTargetGrams),
		Fat:      progressOf(daily.Fat, t.FatTargetGrams),
	}
}

// progressOf treats a non-positive target as "nothing allowed": ratio and
// percent are 0 and any positive intake is over the limit.
func progressOf(actual, target float64) Progress {
	actual, target = finite(actual), finite(target)
	p := Progress{Actual: actual, Target: target, Over: actual > target}
	if target <= 0 {
		return p
	}
	p.Ratio = actual / target
	p.Percent = math.Max(0, math.Min(p.Ratio*100, 100))
	return p
}
