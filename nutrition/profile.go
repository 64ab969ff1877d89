package nutrition

import (
	"errors"
	"fmt"
	"strings"
)

// Sex selects the constant in the Mifflin-St Jeor equation.
type Sex string

const (
	Male   Sex = "male"
	Female Sex = "female"
)

// ActivityLevel is the self-reported activity band used to scale BMR to TDEE.
type ActivityLevel string

const (
	Sedentary        ActivityLevel = "sedentary"
	LightlyActive    ActivityLevel = "lightly_active"
	ModeratelyActive ActivityLevel = "moderately_active"
	VeryActive       ActivityLevel = "very_active"
	ExtremelyActive  ActivityLevel = "extremely_active"
)

// activityMultipliers maps each activity level to its TDEE multiplier.
// This is the single source of truth for valid activity levels; ParseActivityLevel
// and profile validation both read it.
var activityMultipliers = map[ActivityLevel]float64{
	Sedentary:        1.2,
	LightlyActive:    1.375,
	ModeratelyActive: 1.55,
	VeryActive:       1.725,
	ExtremelyActive:  1.9,
}

// activityOrder fixes the order levels are listed in error messages.
var activityOrder = []ActivityLevel{Sedentary, LightlyActive, ModeratelyActive, VeryActive, ExtremelyActive}

// Multiplier returns the TDEE multiplier for l and whether l is a known level.
func (l ActivityLevel) Multiplier() (float64, bool) {
	m, ok := activityMultipliers[l]
	return m, ok
}

// ParseActivityLevel normalizes s (case, surrounding space, '-' for '_')
// and reports whether it names a known level.
func ParseActivityLevel(s string) (ActivityLevel, bool) {
	l := ActivityLevel(strings.ReplaceAll(strings.ToLower(strings.TrimSpace(s)), "-", "_"))
	_, ok := activityMultipliers[l]
	return l, ok
}

// ParseSex normalizes s and reports whether it is male or female.
func ParseSex(s string) (Sex, bool) {
	x := Sex(strings.ToLower(strings.TrimSpace(s)))
	return x, x == Male || x == Female
}

// BodyProfile is the input to the body metrics calculator. Height is in
// centimetres and weight in kilograms.
type BodyProfile struct {
	Age           int           `json:"age"`
	HeightCM      float64       `json:"height"`
	WeightKG      float64       `json:"weight"`
	Sex           Sex           `json:"gender"`
	ActivityLevel ActivityLevel `json:"activityLevel"`
}

// Accepted profile ranges, inclusive on both ends.
const (
	MinAge      = 10
	MaxAge      = 120
	MinHeightCM = 100.0
	MaxHeightCM = 250.0
	MinWeightKG = 30.0
	MaxWeightKG = 300.0
)

// ErrValidation is wrapped by every *ValidationError.
var ErrValidation = errors.New("validation failed")

// ValidationError names the offending field and what it accepts.
type ValidationError struct {
	Field string
	// Allowed describes the accepted values, e.g. "10-120" or "male, female".
	Allowed string
	Value   any
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("%s must be %s, got %v", e.Field, e.Allowed, e.Value)
}

func (e *ValidationError) Unwrap() error { return ErrValidation }

func rangeError(field string, min, max, got any) *ValidationError {
	return &ValidationError{Field: field, Allowed: fmt.Sprintf("between %v and %v", min, max), Value: got}
}

// Validate checks p against the accepted ranges and enums. The first
// violation is returned; values are never clamped.
func (p BodyProfile) Validate() error {
	if p.Age < MinAge || p.Age > MaxAge {
		return rangeError("age", MinAge, MaxAge, p.Age)
	}
	// Written as !(in range) so NaN is rejected too.
	if !(p.HeightCM >= MinHeightCM && p.HeightCM <= MaxHeightCM) {
		return rangeError("height", MinHeightCM, MaxHeightCM, p.HeightCM)
	}
	if !(p.WeightKG >= MinWeightKG && p.WeightKG <= MaxWeightKG) {
		return rangeError("weight", MinWeightKG, MaxWeightKG, p.WeightKG)
	}
	if p.Sex != Male && p.Sex != Female {
		return &ValidationError{Field: "gender", Allowed: "one of male, female", Value: string(p.Sex)}
	}
	if _, ok := activityMultipliers[p.ActivityLevel]; !ok {
		names := make([]string, len(activityOrder))
		for i, l := range activityOrder {
			names[i] = string(l)
		}
		return &ValidationError{
			Field:   "activityLevel",
			Allowed: "one of " + strings.Join(names, ", "),
			Value:   string(p.ActivityLevel),
		}
	}
	return nil
}
