package main

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"lg/diet-tracker-api/nutrition"
)

var (
	dayCalories float64
	dayProtein  float64
	dayCarbs    float64
	dayFat      float64
)

var dayCmd = &cobra.Command{
	Use:   "day <entries.json|->",
	Short: "Total a day's diary entries and compare them with targets",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		var entries []nutrition.DiaryEntry
		if err := readJSONInput(cmd, args[0], &entries); err != nil {
			return err
		}
		targets := nutrition.NutritionTargets{
			TDEE:               dayCalories,
			ProteinTargetGrams: dayProtein,
			CarbTargetGrams:    dayCarbs,
			FatTargetGrams:     dayFat,
		}
		totals := nutrition.ComputeDailyTotals(entries)
		meals := nutrition.MealTotals(entries)
		progress := nutrition.ComputeProgress(totals, targets)

		if outputJSON {
			return printJSON(cmd.OutOrStdout(), struct {
				Totals     nutrition.NutrientValues                        `json:"totals"`
				MealTotals map[nutrition.MealType]nutrition.NutrientValues `json:"mealTotals"`
				Progress   nutrition.ProgressView                          `json:"progress"`
			}{totals, meals, progress})
		}
		out := cmd.OutOrStdout()
		for _, m := range nutrition.MealTypes {
			printValues(out, string(m), meals[m])
		}
		printValues(out, "total", totals)
		for _, row := range []struct {
			name string
			p    nutrition.Progress
		}{
			{"calories", progress.Calories},
			{"protein", progress.Protein},
			{"carbs", progress.Carbs},
			{"fat", progress.Fat},
		} {
			bar := strings.Repeat("#", barWidth(row.p.Percent))
			flag := ""
			if row.p.Over {
				flag = " OVER"
			}
			fmt.Fprintf(out, "%-9s [%-20s] %5.1f / %.0f%s\n", row.name, bar, row.p.Actual, row.p.Target, flag)
		}
		return nil
	},
}

// barWidth maps a percentage onto the 20-column progress bar.
func barWidth(percent float64) int {
	return max(0, min(int(percent/5), 20))
}

func init() {
	f := dayCmd.Flags()
	f.Float64Var(&dayCalories, "target-calories", nutrition.FallbackTargets.TDEE, "Daily energy target in kcal")
	f.Float64Var(&dayProtein, "target-protein", nutrition.FallbackTargets.ProteinTargetGrams, "Daily protein target in g")
	f.Float64Var(&dayCarbs, "target-carbs", nutrition.FallbackTargets.CarbTargetGrams, "Daily carbohydrate target in g")
	f.Float64Var(&dayFat, "target-fat", nutrition.FallbackTargets.FatTargetGrams, "Daily fat target in g")
	rootCmd.AddCommand(dayCmd)
}
