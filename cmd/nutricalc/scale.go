package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"lg/diet-tracker-api/nutrition"
)

var (
	scaleCalories float64
	scaleProtein  float64
	scaleCarbs    float64
	scaleFat      float64
	scaleUnit     string
	scaleAmount   float64
)

var scaleCmd = &cobra.Command{
	Use:   "scale",
	Short: "Scale per-100 nutrient values to an amount",
	RunE: func(cmd *cobra.Command, args []string) error {
		unit, ok := nutrition.ParseUnit(scaleUnit)
		if !ok {
			return fmt.Errorf("unit must be one of: g, ml, piece")
		}
		b := nutrition.NutrientBaseline{
			Calories: nutrition.Number(scaleCalories),
			Protein:  nutrition.Number(scaleProtein),
			Carbs:    nutrition.Number(scaleCarbs),
			Fat:      nutrition.Number(scaleFat),
			Unit:     unit,
		}
		v := nutrition.ScaleIngredient(b, scaleAmount)
		if outputJSON {
			return printJSON(cmd.OutOrStdout(), v)
		}
		printValues(cmd.OutOrStdout(), fmt.Sprintf("%g%s", scaleAmount, unit), v)
		return nil
	},
}

func init() {
	f := scaleCmd.Flags()
	f.Float64Var(&scaleCalories, "calories", 0, "kcal per 100 units")
	f.Float64Var(&scaleProtein, "protein", 0, "Protein g per 100 units")
	f.Float64Var(&scaleCarbs, "carbs", 0, "Carbohydrate g per 100 units")
	f.Float64Var(&scaleFat, "fat", 0, "Fat g per 100 units")
	f.StringVar(&scaleUnit, "unit", "g", "g, ml or piece")
	f.Float64Var(&scaleAmount, "amount", 100, "Amount to scale to")
	rootCmd.AddCommand(scaleCmd)
}
