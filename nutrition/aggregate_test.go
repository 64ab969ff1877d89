package nutrition

import (
	"encoding/json"
	"testing"
)

/* ─── ComputeRecipeTotals ────────────────────────────────────────────── */

// TestComputeRecipeTotals_TwoServings verifies (300+100)/2 = 200 kcal per serving.
func TestComputeRecipeTotals_TwoServings(t *testing.T) {
	ings := []Ingredient{
		{Name: "rice", Calories: 300, Protein: 6.2, Carbs: 66, Fat: 0.6},
		{Name: "oil", Calories: 100, Protein: 0, Carbs: 0, Fat: 11.2},
	}
	got := ComputeRecipeTotals(ings, 2)
	want := NutrientValues{Calories: 200, Protein: 3.1, Carbs: 33, Fat: 5.9}
	if got.PerServing != want {
		t.Errorf("per serving = %+v, want %+v", got.PerServing, want)
	}
	if got.Servings != 2 || got.Degenerate {
		t.Errorf("servings = %d degenerate=%v, want 2 false", got.Servings, got.Degenerate)
	}
}

// TestComputeRecipeTotals_SingleServingEqualsSum verifies servings=1 equals
// the plain ingredient sum.
func TestComputeRecipeTotals_SingleServingEqualsSum(t *testing.T) {
	ings := []Ingredient{
		{Calories: 300, Protein: 15, Carbs: 30, Fat: 7.5},
		{Calories: 120, Protein: 2.5, Carbs: 4, Fat: 9},
	}
	got := ComputeRecipeTotals(ings, 1)
	if want := SumIngredients(ings); got.PerServing != want {
		t.Errorf("per serving = %+v, want %+v", got.PerServing, want)
	}
}

// TestComputeRecipeTotals_ClampsServings verifies servings of 0 or below
// behave as 1 and are reported as degenerate.
func TestComputeRecipeTotals_ClampsServings(t *testing.T) {
	ings := []Ingredient{{Calories: 450, Protein: 20, Carbs: 50, Fat: 10}}
	one := ComputeRecipeTotals(ings, 1)
	for _, s := range []int{0, -1, -40} {
		got := ComputeRecipeTotals(ings, s)
		if got.PerServing != one.PerServing {
			t.Errorf("servings=%d per serving = %+v, want %+v", s, got.PerServing, one.PerServing)
		}
		if got.Servings != 1 {
			t.Errorf("servings=%d clamped to %d, want 1", s, got.Servings)
		}
		issue, ok := got.Issue()
		if !ok || issue.Kind != IssueDegenerateServings {
			t.Errorf("servings=%d issue = %+v, %v; want degenerate_servings", s, issue, ok)
		}
	}
	if _, ok := one.Issue(); ok {
		t.Error("servings=1 should not report an issue")
	}
}

// TestRecipe_Recomputed verifies the stored servings and per-serving values are rebuilt together.
func TestRecipe_Recomputed(t *testing.T) {
	r := Recipe{Name: "porridge", Servings: 0, Ingredients: []Ingredient{{Calories: 333, Protein: 10, Carbs: 50, Fat: 5}}}
	got, _ := r.Recomputed()
	if got.Servings != 1 || got.PerServing.Calories != 333 {
		t.Errorf("recomputed = %+v, want servings 1 and 333 kcal", got)
	}
}

/* ─── ComputeDailyTotals ─────────────────────────────────────────────── */

// TestComputeDailyTotals_CoercesFromJSON verifies entries decoded from raw
// JSON with calories [500, "abc", null] total 500.
func TestComputeDailyTotals_CoercesFromJSON(t *testing.T) {
	raw := `[
		{"name":"lunch","calories":500,"protein":"30.5","carbs":40,"fat":null},
		{"name":"mystery","calories":"abc","protein":1},
		{"name":"water","calories":null}
	]`
	var entries []DiaryEntry
	if err := json.Unmarshal([]byte(raw), &entries); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	got := ComputeDailyTotals(entries)
	want := NutrientValues{Calories: 500, Protein: 31.5, Carbs: 40, Fat: 0}
	if got != want {
		t.Errorf("daily totals = %+v, want %+v", got, want)
	}
}

// TestComputeDailyTotals_NoRounding verifies totals keep full precision.
func TestComputeDailyTotals_NoRounding(t *testing.T) {
	got := ComputeDailyTotals([]DiaryEntry{{Calories: 100.4, Fat: 0.25}, {Calories: 100.4, Fat: 0.25}})
	if got.Calories != 200.8 || got.Fat != 0.5 {
		t.Errorf("daily totals = %+v, want 200.8 kcal and 0.5 fat", got)
	}
}

// TestDiaryEntry_Normalized verifies recipe entries are rebuilt from their
// ingredients and custom entries keep manual values.
func TestDiaryEntry_Normalized(t *testing.T) {
	recipe := DiaryEntry{
		Type:     EntryRecipe,
		Calories: 1,
		Ingredients: []Ingredient{
			{Calories: 120.4, Protein: 3, Carbs: 10, Fat: 1},
			{Calories: 80.4, Protein: 2, Carbs: 5, Fat: 2},
		},
	}.Normalized()
	if recipe.Calories != 201 || recipe.Protein != 5 || recipe.Carbs != 15 || recipe.Fat != 3 {
		t.Errorf("recipe entry = %+v", recipe)
	}

	custom := DiaryEntry{Type: EntryCustom, Calories: 349.6, Protein: 12.3}.Normalized()
	if custom.Calories != 350 || custom.Protein != 12.3 {
		t.Errorf("custom entry = %+v", custom)
	}
}

// TestDiaryEntry_NormalizedRoundsMacros verifies rebuilt recipe macros are
// stored at 0.1 g precision rather than with float noise (0.1+0.2).
func TestDiaryEntry_NormalizedRoundsMacros(t *testing.T) {
	e := DiaryEntry{
		Type: EntryRecipe,
		Ingredients: []Ingredient{
			{Calories: 1, Protein: 0.1, Carbs: 0.1, Fat: 0.1},
			{Calories: 2, Protein: 0.2, Carbs: 0.2, Fat: 0.2},
		},
	}.Normalized()
	if e.Protein != 0.3 || e.Carbs != 0.3 || e.Fat != 0.3 {
		t.Errorf("macros = P%v C%v F%v, want 0.3 each", e.Protein, e.Carbs, e.Fat)
	}
}

// TestDiaryEntry_NormalizedCustomWithIngredients verifies custom entries keep
// the user's totals even when they list ingredients.
func TestDiaryEntry_NormalizedCustomWithIngredients(t *testing.T) {
	e := DiaryEntry{
		Type:        EntryCustom,
		Calories:    500,
		Protein:     20,
		Ingredients: []Ingredient{{Calories: 100, Protein: 1}},
	}.Normalized()
	if e.Calories != 500 || e.Protein != 20 {
		t.Errorf("custom entry = %+v, want manual 500 kcal / 20 g", e)
	}
}

// TestGroupByMeal verifies unknown and empty meal types fall into snack.
func TestGroupByMeal(t *testing.T) {
	entries := []DiaryEntry{
		{Name: "eggs", MealType: Breakfast, Calories: 200},
		{Name: "chips", MealType: "", Calories: 150},
		{Name: "cake", MealType: "dessert", Calories: 300},
		{Name: "soup", MealType: "Lunch", Calories: 250},
	}
	groups := GroupByMeal(entries)
	if len(groups[Snack]) != 2 || len(groups[Breakfast]) != 1 || len(groups[Lunch]) != 1 {
		t.Errorf("groups = %+v", groups)
	}
	totals := MealTotals(entries)
	if totals[Snack].Calories != 450 || totals[Dinner].Calories != 0 {
		t.Errorf("meal totals = %+v", totals)
	}
	if len(totals) != len(MealTypes) {
		t.Errorf("meal totals has %d slots, want %d", len(totals), len(MealTypes))
	}
}

/* ─── ComputeProgress ────────────────────────────────────────────────── */

// TestComputeProgress_UnderAndOver verifies percent is clamped at 100 while
// the over-limit flag uses the unclamped ratio, independently per nutrient.
func TestComputeProgress_UnderAndOver(t *testing.T) {
	targets := NutritionTargets{TDEE: 2000, ProteinTargetGrams: 150, CarbTargetGrams: 250, FatTargetGrams: 70}
	daily := NutrientValues{Calories: 2500, Protein: 75, Carbs: 250, Fat: 70.1}

	got := ComputeProgress(daily, targets)

	if got.Calories.Percent != 100 || !got.Calories.Over || got.Calories.Ratio != 1.25 {
		t.Errorf("calories = %+v, want 100%% over ratio 1.25", got.Calories)
	}
	if got.Protein.Percent != 50 || got.Protein.Over {
		t.Errorf("protein = %+v, want 50%% not over", got.Protein)
	}
	if got.Carbs.Percent != 100 || got.Carbs.Over {
		t.Errorf("carbs = %+v, want 100%% exactly at target, not over", got.Carbs)
	}
	if !got.Fat.Over || got.Fat.Percent != 100 {
		t.Errorf("fat = %+v, want over", got.Fat)
	}
}

// TestComputeProgress_ZeroTarget verifies a zero target never divides by zero.
func TestComputeProgress_ZeroTarget(t *testing.T) {
	got := ComputeProgress(NutrientValues{Calories: 10}, NutritionTargets{})
	if got.Calories.Percent != 0 || got.Calories.Ratio != 0 || !got.Calories.Over {
		t.Errorf("calories = %+v, want 0%% ratio 0 over", got.Calories)
	}
	if got.Protein.Over {
		t.Errorf("protein = %+v, want not over with zero intake", got.Protein)
	}
}

// TestComputeProgress_NegativeIntake verifies a negative daily total keeps its
// signed ratio while the display percent never drops below 0.
func TestComputeProgress_NegativeIntake(t *testing.T) {
	got := ComputeProgress(NutrientValues{Calories: -500}, FallbackTargets)
	if got.Calories.Percent != 0 || got.Calories.Ratio != -0.25 || got.Calories.Over {
		t.Errorf("calories = %+v, want 0%% ratio -0.25 not over", got.Calories)
	}
}
