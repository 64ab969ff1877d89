package nutrition

import (
	"fmt"
	"math"
)

// BMICategory is the WHO adult weight class for a BMI value.
type BMICategory string

const (
	Underweight BMICategory = "underweight"
	Normal      BMICategory = "normal"
	Overweight  BMICategory = "overweight"
	Obese       BMICategory = "obese"
)

// NutritionTargets is derived from a BodyProfile and never stored on its own.
type NutritionTargets struct {
	BMI                float64     `json:"bmi"`
	BMICategory        BMICategory `json:"bmiCategory"`
	BMR                float64     `json:"bmr"`
	TDEE               float64     `json:"tdee"`
	ProteinTargetGrams float64     `json:"protein"`
	FatTargetGrams     float64     `json:"fat"`
	CarbTargetGrams    float64     `json:"carbs"`
}

// FallbackTargets are shown to users who have not completed their profile yet.
var FallbackTargets = NutritionTargets{
	TDEE:               2000,
	ProteinTargetGrams: 150,
	CarbTargetGrams:    250,
	FatTargetGrams:     70,
}

// MacroSplit is the share of daily energy assigned to each macronutrient.
// Shares must be non-negative and sum to 1.
type MacroSplit struct {
	Protein float64 `json:"protein"`
	Carbs   float64 `json:"carbs"`
	Fat     float64 `json:"fat"`
}

// DefaultMacroSplit is 30% protein, 40% carbohydrate, 30% fat.
var DefaultMacroSplit = MacroSplit{Protein: 0.30, Carbs: 0.40, Fat: 0.30}

// Energy density in kcal per gram.
const (
	kcalPerGramProtein = 4
	kcalPerGramCarbs   = 4
	kcalPerGramFat     = 9
)

// Validate reports a ValidationError on field "macroSplit" when a share is
// negative or the shares don't add up to 1 (within 0.001).
func (s MacroSplit) Validate() error {
	if !(s.Protein >= 0 && s.Carbs >= 0 && s.Fat >= 0) {
		return &ValidationError{Field: "macroSplit", Allowed: "non-negative shares", Value: s}
	}
	if sum := s.Protein + s.Carbs + s.Fat; math.Abs(sum-1) > 0.001 {
		return &ValidationError{Field: "macroSplit", Allowed: "shares summing to 1", Value: fmt.Sprintf("%.3f", sum)}
	}
	return nil
}

// Targets converts a daily energy budget into macro targets in grams.
// The grams are not rounded; progress is measured against the exact values
// and callers round only for display.
func (s MacroSplit) Targets(tdee float64) (proteinG, carbsG, fatG float64) {
	proteinG = tdee * s.Protein / kcalPerGramProtein
	carbsG = tdee * s.Carbs / kcalPerGramCarbs
	fatG = tdee * s.Fat / kcalPerGramFat
	return proteinG, carbsG, fatG
}

// BMI returns weight_kg / height_m².
func BMI(weightKG, heightCM float64) float64 {
	h := heightCM / 100
	return weightKG / (h * h)
}

// CategorizeBMI uses inclusive lower bounds: 18.5 is normal, 25 is
// overweight, 30 is obese.
func CategorizeBMI(bmi float64) BMICategory {
	switch {
	case bmi < 18.5:
		return Underweight
	case bmi < 25:
		return Normal
	case bmi < 30:
		return Overweight
	default:
		return Obese
	}
}

// BMR is the Mifflin-St Jeor resting energy expenditure in kcal/day.
func BMR(sex Sex, weightKG, heightCM float64, age int) float64 {
	bmr := 10*weightKG + 6.25*heightCM - 5*float64(age)
	if sex == Male {
		return bmr + 5
	}
	return bmr - 161
}

// TDEE scales bmr by the activity multiplier and rounds to whole kcal.
// ok is false for an unknown activity level.
func TDEE(bmr float64, level ActivityLevel) (tdee float64, ok bool) {
	mult, ok := activityMultipliers[level]
	if !ok {
		return 0, false
	}
	return math.Round(bmr * mult), true
}

// ComputeBodyMetrics validates p and derives its targets using DefaultMacroSplit.
func ComputeBodyMetrics(p BodyProfile) (NutritionTargets, error) {
	return ComputeBodyMetricsWithSplit(p, DefaultMacroSplit)
}

// ComputeBodyMetricsWithSplit is ComputeBodyMetrics with a caller-chosen macro split.
func ComputeBodyMetricsWithSplit(p BodyProfile, split MacroSplit) (NutritionTargets, error) {
	if err := p.Validate(); err != nil {
		return NutritionTargets{}, err
	}
	if err := split.Validate(); err != nil {
		return NutritionTargets{}, err
	}

	bmi := BMI(p.WeightKG, p.HeightCM)
	bmr := BMR(p.Sex, p.WeightKG, p.HeightCM, p.Age)
	tdee, _ := TDEE(bmr, p.ActivityLevel) // level already validated
	protein, carbs, fat := split.Targets(tdee)

	return NutritionTargets{
		BMI:                bmi,
		BMICategory:        CategorizeBMI(bmi),
		BMR:                bmr,
		TDEE:               tdee,
		ProteinTargetGrams: protein,
		CarbTargetGrams:    carbs,
		FatTargetGrams:     fat,
	}, nil
}

// WeightChange returns current - initial, rounded to 0.1 kg.
func WeightChange(initialKG, currentKG float64) float64 {
	return round1(currentKG - initialKG)
}
