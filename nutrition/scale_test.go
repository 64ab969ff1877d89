package nutrition

import (
	"math"
	"testing"
)

func intPtr(v int) *int { return &v }

// referenceBaseline is 200 kcal, 10g protein, 20g carbs, 5g fat per 100g.
func referenceBaseline() NutrientBaseline {
	return NutrientBaseline{Calories: 200, Protein: 10, Carbs: 20, Fat: 5, Unit: Grams}
}

func approxEqual(a, b NutrientValues) bool {
	const eps = 1e-9
	return math.Abs(a.Calories-b.Calories) < eps &&
		math.Abs(a.Protein-b.Protein) < eps &&
		math.Abs(a.Carbs-b.Carbs) < eps &&
		math.Abs(a.Fat-b.Fat) < eps
}

/* ─── ScaleIngredient ────────────────────────────────────────────────── */

// TestScaleIngredient_Reference scales the reference baseline to 150g:
// 300 kcal, 15.0 protein, 30.0 carbs, 7.5 fat.
func TestScaleIngredient_Reference(t *testing.T) {
	got := ScaleIngredient(referenceBaseline(), 150)
	want := NutrientValues{Calories: 300, Protein: 15, Carbs: 30, Fat: 7.5}
	if got != want {
		t.Errorf("ScaleIngredient(150) = %+v, want %+v", got, want)
	}
}

// TestScaleIngredient_IdentityAt100 verifies 100 units returns the baseline itself.
func TestScaleIngredient_IdentityAt100(t *testing.T) {
	b := NutrientBaseline{Calories: 389, Protein: 16.9, Carbs: 66.3, Fat: 6.9}
	got := ScaleIngredient(b, 100)
	want := NutrientValues{Calories: 389, Protein: 16.9, Carbs: 66.3, Fat: 6.9}
	if got != want {
		t.Errorf("ScaleIngredient(100) = %+v, want %+v", got, want)
	}
}

// TestScaleIngredient_Zero verifies 0 units (and negative/NaN amounts) scale to nothing.
func TestScaleIngredient_Zero(t *testing.T) {
	for _, amount := range []float64{0, -50, math.NaN(), math.Inf(1)} {
		got := ScaleIngredient(referenceBaseline(), amount)
		if got != (NutrientValues{}) {
			t.Errorf("ScaleIngredient(%v) = %+v, want zero", amount, got)
		}
		if math.Signbit(got.Calories) {
			t.Errorf("ScaleIngredient(%v) calories is negative zero", amount)
		}
	}
}

// TestScaleIngredient_Rounding verifies calories round to whole kcal and
// macros to one decimal at scale time.
func TestScaleIngredient_Rounding(t *testing.T) {
	b := NutrientBaseline{Calories: 123, Protein: 3.33, Carbs: 7.77, Fat: 1.25}
	got := ScaleIngredient(b, 37)
	// 45.51 kcal, 1.2321 P, 2.8749 C, 0.4625 F
	want := NutrientValues{Calories: 46, Protein: 1.2, Carbs: 2.9, Fat: 0.5}
	if got != want {
		t.Errorf("ScaleIngredient(37) = %+v, want %+v", got, want)
	}
}

// TestScaleIngredient_Idempotent verifies scaling the same inputs twice gives
// identical stored values.
func TestScaleIngredient_Idempotent(t *testing.T) {
	b := NutrientBaseline{Calories: 57, Protein: 0.7, Carbs: 14.5, Fat: 0.3}
	first := ScaleIngredient(b, 133)
	second := ScaleIngredient(b, 133)
	if first != second {
		t.Errorf("scaling not idempotent: %+v vs %+v", first, second)
	}
	ing := Ingredient{Name: "apple", Baseline: &b}.WithAmount(133)
	if again := ing.WithAmount(133); again.Values() != ing.Values() {
		t.Errorf("rescaling ingredient changed values: %+v vs %+v", again.Values(), ing.Values())
	}
}

/* ─── Amount edits ───────────────────────────────────────────────────── */

// TestIngredient_WithAmount_Baseline verifies baseline-backed ingredients rescale.
func TestIngredient_WithAmount_Baseline(t *testing.T) {
	b := referenceBaseline()
	ing := Ingredient{Name: "oats", Baseline: &b}.WithAmount(50)
	want := NutrientValues{Calories: 100, Protein: 5, Carbs: 10, Fat: 2.5}
	if ing.Values() != want {
		t.Errorf("values = %+v, want %+v", ing.Values(), want)
	}
	if ing.Amount != 50 {
		t.Errorf("amount = %v, want 50", ing.Amount)
	}
}

// TestIngredient_WithAmount_Freeform verifies freeform ingredients keep their
// user-entered nutrients when the amount changes.
func TestIngredient_WithAmount_Freeform(t *testing.T) {
	ing := Ingredient{Name: "grandma's sauce", Amount: 100, Calories: 250, Protein: 3, Carbs: 12, Fat: 20}
	got := ing.WithAmount(300)
	if got.Values() != ing.Values() {
		t.Errorf("freeform values changed: %+v -> %+v", ing.Values(), got.Values())
	}
	if got.Amount != 300 {
		t.Errorf("amount = %v, want 300", got.Amount)
	}
}

// TestIngredient_WithAmount_DoesNotMutate verifies the receiver is left untouched.
func TestIngredient_WithAmount_DoesNotMutate(t *testing.T) {
	b := referenceBaseline()
	orig := Ingredient{Name: "oats", Amount: 100, Baseline: &b, Calories: 200, Protein: 10, Carbs: 20, Fat: 5}
	_ = orig.WithAmount(10)
	if orig.Amount != 100 || orig.Calories != 200 {
		t.Errorf("receiver mutated: %+v", orig)
	}
}

/* ─── SumNutrients ───────────────────────────────────────────────────── */

// TestSumNutrients_OrderIndependent verifies every permutation of three items sums identically.
func TestSumNutrients_OrderIndependent(t *testing.T) {
	a := NutrientValues{Calories: 0.1, Protein: 0.1, Carbs: 1e16, Fat: 0.7}
	b := NutrientValues{Calories: 0.2, Protein: 0.2, Carbs: 1, Fat: 0.1}
	c := NutrientValues{Calories: 0.3, Protein: 0.3, Carbs: -1e16, Fat: 0.2}
	want := SumNutrients(a, b, c)
	for _, perm := range [][]NutrientValues{
		{a, c, b}, {b, a, c}, {b, c, a}, {c, a, b}, {c, b, a},
	} {
		if got := SumNutrients(perm...); got != want {
			t.Errorf("SumNutrients(%v) = %+v, want %+v", perm, got, want)
		}
	}
}

// TestSumNutrients_NaNAsZero verifies NaN and infinite fields contribute nothing.
func TestSumNutrients_NaNAsZero(t *testing.T) {
	got := SumNutrients(
		NutrientValues{Calories: 100, Protein: math.NaN(), Carbs: 5, Fat: math.Inf(-1)},
		NutrientValues{Calories: 50, Protein: 2, Carbs: math.Inf(1), Fat: 1},
	)
	want := NutrientValues{Calories: 150, Protein: 2, Carbs: 5, Fat: 1}
	if got != want {
		t.Errorf("SumNutrients = %+v, want %+v", got, want)
	}
}

// TestSumNutrients_Empty verifies an empty list sums to zero.
func TestSumNutrients_Empty(t *testing.T) {
	if got := SumNutrients(); got != (NutrientValues{}) {
		t.Errorf("SumNutrients() = %+v, want zero", got)
	}
}

/* ─── ResolveIngredients ─────────────────────────────────────────────── */

// TestResolveIngredients_MissingBaseline verifies an unresolvable product
// becomes a zero-nutrient freeform ingredient, is reported, and does not stop
// the rest of the list from being resolved.
func TestResolveIngredients_MissingBaseline(t *testing.T) {
	products := map[int]NutrientBaseline{1: referenceBaseline()}
	lookup := func(id int) (NutrientBaseline, bool) {
		b, ok := products[id]
		return b, ok
	}
	in := []Ingredient{
		{Name: "ghost", Amount: 100, ProductID: intPtr(99), Calories: 999},
		{Name: "oats", Amount: 150, ProductID: intPtr(1)},
		{Name: "salt", Amount: 2, Calories: 0},
	}

	out, issues := ResolveIngredients(in, lookup)

	if len(issues) != 1 || issues[0].Kind != IssueMissingBaseline || issues[0].Index != 0 {
		t.Fatalf("issues = %+v, want one missing_baseline at index 0", issues)
	}
	if out[0].ProductID != nil || out[0].Values() != (NutrientValues{}) {
		t.Errorf("ghost ingredient = %+v, want freeform zero", out[0])
	}
	want := NutrientValues{Calories: 300, Protein: 15, Carbs: 30, Fat: 7.5}
	if out[1].Values() != want {
		t.Errorf("oats = %+v, want %+v", out[1].Values(), want)
	}
	if out[1].Baseline == nil {
		t.Error("oats should carry its baseline")
	}
	if in[0].Calories != 999 || in[1].Baseline != nil {
		t.Error("input slice was modified")
	}
}

// TestSumIngredients_Fold verifies ingredient folding matches SumNutrients on their values.
func TestSumIngredients_Fold(t *testing.T) {
	ings := []Ingredient{
		{Calories: 300, Protein: 15, Carbs: 30, Fat: 7.5},
		{Calories: 100, Protein: 1.5, Carbs: 0, Fat: 11},
	}
	want := NutrientValues{Calories: 400, Protein: 16.5, Carbs: 30, Fat: 18.5}
	if got := SumIngredients(ings); !approxEqual(got, want) {
		t.Errorf("SumIngredients = %+v, want %+v", got, want)
	}
}

// TestNutrientBaseline_Normalized verifies product baselines are stored at fixed precision.
func TestNutrientBaseline_Normalized(t *testing.T) {
	got := NutrientBaseline{Calories: 52.6, Protein: 0.26, Carbs: -1, Fat: 0.17, Unit: "ML"}.Normalized()
	want := NutrientBaseline{Calories: 53, Protein: 0.3, Carbs: 0, Fat: 0.2, Unit: Millilitres}
	if got != want {
		t.Errorf("Normalized = %+v, want %+v", got, want)
	}
}
