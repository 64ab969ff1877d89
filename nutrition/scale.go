package nutrition

import (
	"fmt"
	"slices"
	"strings"
)

// Unit is what a baseline's "per 100" refers to.
type Unit string

const (
	Grams       Unit = "g"
	Millilitres Unit = "ml"
	Pieces      Unit = "piece"
)

// ParseUnit normalizes s; an empty string means grams.
func ParseUnit(s string) (Unit, bool) {
	switch u := Unit(strings.ToLower(strings.TrimSpace(s))); u {
	case "":
		return Grams, true
	case Grams, Millilitres, Pieces:
		return u, true
	default:
		return u, false
	}
}

// NutrientValues holds energy (kcal) and macros (g) for some quantity of food.
type NutrientValues struct {
	Calories float64 `json:"calories"`
	Protein  float64 `json:"protein"`
	Carbs    float64 `json:"carbs"`
	Fat      float64 `json:"fat"`
}

// NutrientBaseline is a product's nutrient profile per 100 units.
type NutrientBaseline struct {
	Calories Number `json:"calories"`
	Protein  Number `json:"protein"`
	Carbs    Number `json:"carbs"`
	Fat      Number `json:"fat"`
	Unit     Unit   `json:"unit,omitempty"`
}

// Normalized rounds a baseline to the stored precision: whole kcal, macros
// to 0.1 g. Negative values become 0.
func (b NutrientBaseline) Normalized() NutrientBaseline {
	unit, ok := ParseUnit(string(b.Unit))
	if !ok {
		unit = Grams
	}
	return NutrientBaseline{
		Calories: Number(roundKcal(nonNegative(b.Calories.Float()))),
		Protein:  Number(round1(nonNegative(b.Protein.Float()))),
		Carbs:    Number(round1(nonNegative(b.Carbs.Float()))),
		Fat:      Number(round1(nonNegative(b.Fat.Float()))),
		Unit:     unit,
	}
}

// ScaleIngredient scales b to amount units. Calories are rounded to whole
// kcal and macros to one decimal here, so the stored value is stable across
// reads. Negative or non-finite amounts scale to zero.
func ScaleIngredient(b NutrientBaseline, amount float64) NutrientValues {
	amount = nonNegative(finite(amount))
	return NutrientValues{
		Calories: roundKcal(b.Calories.Float() * amount / 100),
		Protein:  round1(b.Protein.Float() * amount / 100),
		Carbs:    round1(b.Carbs.Float() * amount / 100),
		Fat:      round1(b.Fat.Float() * amount / 100),
	}
}

// Ingredient is one line of a recipe or diary entry. When Baseline is set the
// nutrient fields are derived from it and Amount; otherwise they are the
// user's own figures and are never rescaled.
type Ingredient struct {
	Name      string            `json:"name"`
	Amount    Number            `json:"amount"`
	ProductID *int              `json:"productId,omitempty"`
	Baseline  *NutrientBaseline `json:"baseValues,omitempty"`
	Calories  Number            `json:"calories"`
	Protein   Number            `json:"protein"`
	Carbs     Number            `json:"carbs"`
	Fat       Number            `json:"fat"`
}

// Values returns the ingredient's nutrients with non-numeric fields as 0.
func (i Ingredient) Values() NutrientValues {
	return NutrientValues{
		Calories: i.Calories.Float(),
		Protein:  i.Protein.Float(),
		Carbs:    i.Carbs.Float(),
		Fat:      i.Fat.Float(),
	}
}

// WithAmount returns a copy of i with the new amount. Baseline-backed
// ingredients are rescaled; freeform ones keep their nutrient fields.
func (i Ingredient) WithAmount(amount float64) Ingredient {
	i.Amount = Number(finite(amount))
	return i.Rescaled()
}

// Rescaled recomputes the nutrient fields from the baseline, if any.
func (i Ingredient) Rescaled() Ingredient {
	if i.Baseline == nil {
		return i
	}
	v := ScaleIngredient(*i.Baseline, i.Amount.Float())
	i.Calories = Number(v.Calories)
	i.Protein = Number(v.Protein)
	i.Carbs = Number(v.Carbs)
	i.Fat = Number(v.Fat)
	return i
}

// SumNutrients adds items field by field. Each field is summed in ascending
// order of its values so the result is identical for any ordering of items.
// NaN and infinite fields count as 0.
func SumNutrients(items ...NutrientValues) NutrientValues {
	cal := make([]float64, len(items))
	pro := make([]float64, len(items))
	carb := make([]float64, len(items))
	fat := make([]float64, len(items))
	for i, it := range items {
		cal[i] = finite(it.Calories)
		pro[i] = finite(it.Protein)
		carb[i] = finite(it.Carbs)
		fat[i] = finite(it.Fat)
	}
	return NutrientValues{
		Calories: sortedSum(cal),
		Protein:  sortedSum(pro),
		Carbs:    sortedSum(carb),
		Fat:      sortedSum(fat),
	}
}

// SumIngredients is SumNutrients over each ingredient's Values.
func SumIngredients(ings []Ingredient) NutrientValues {
	vals := make([]NutrientValues, len(ings))
	for i, ing := range ings {
		vals[i] = ing.Values()
	}
	return SumNutrients(vals...)
}

func sortedSum(xs []float64) float64 {
	slices.Sort(xs)
	var sum float64
	for _, x := range xs {
		sum += x
	}
	return sum + 0
}

func nonNegative(f float64) float64 {
	if f < 0 {
		return 0
	}
	return f
}

/* ─── Baseline resolution ────────────────────────────────────────────── */

// IssueKind classifies a non-fatal problem found while computing.
type IssueKind string

const (
	// IssueMissingBaseline: an ingredient referenced a product that could not
	// be resolved; it was kept as a zero-nutrient freeform ingredient.
	IssueMissingBaseline IssueKind = "missing_baseline"
	// IssueDegenerateServings: servings was below 1 and was clamped to 1.
	IssueDegenerateServings IssueKind = "degenerate_servings"
)

// Issue is reported alongside a result rather than instead of one.
type Issue struct {
	Kind  IssueKind `json:"kind"`
	Index int       `json:"index"`
	Name  string    `json:"name,omitempty"`
	Msg   string    `json:"message"`
}

func (i Issue) String() string {
	if i.Name != "" {
		return fmt.Sprintf("ingredient %d %q: %s", i.Index, i.Name, i.Msg)
	}
	return i.Msg
}

// BaselineLookup resolves a product ID to its baseline.
type BaselineLookup func(productID int) (NutrientBaseline, bool)

// ResolveIngredients attaches baselines to product-backed ingredients and
// rescales them. An ingredient whose product can't be found becomes a
// freeform ingredient with zero nutrients and is reported as an Issue; the
// rest of the list is still resolved. The input slice is not modified.
func ResolveIngredients(ings []Ingredient, lookup BaselineLookup) ([]Ingredient, []Issue) {
	out := make([]Ingredient, len(ings))
	var issues []Issue
	for idx, ing := range ings {
		if ing.ProductID != nil && lookup != nil {
			if b, ok := lookup(*ing.ProductID); ok {
				b = b.Normalized()
				ing.Baseline = &b
			} else {
				issues = append(issues, Issue{
					Kind:  IssueMissingBaseline,
					Index: idx,
					Name:  ing.Name,
					Msg:   fmt.Sprintf("missing baseline for product %d", *ing.ProductID),
				})
				ing.ProductID = nil
				ing.Baseline = nil
				ing.Calories, ing.Protein, ing.Carbs, ing.Fat = 0, 0, 0, 0
			}
		}
		out[idx] = ing.Rescaled()
	}
	return out, issues
}
