package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"lg/diet-tracker-api/nutrition"
)

var (
	metricsAge      int
	metricsHeight   float64
	metricsWeight   float64
	metricsSex      string
	metricsActivity string
	metricsProtein  float64
	metricsCarbs    float64
	metricsFat      float64
)

var metricsCmd = &cobra.Command{
	Use:   "metrics",
	Short: "Compute BMI, BMR, TDEE and macro targets for a body profile",
	RunE: func(cmd *cobra.Command, args []string) error {
		sex, _ := nutrition.ParseSex(metricsSex)
		level, _ := nutrition.ParseActivityLevel(metricsActivity)
		p := nutrition.BodyProfile{
			Age:           metricsAge,
			HeightCM:      metricsHeight,
			WeightKG:      metricsWeight,
			Sex:           sex,
			ActivityLevel: level,
		}
		split := nutrition.MacroSplit{Protein: metricsProtein, Carbs: metricsCarbs, Fat: metricsFat}

		t, err := nutrition.ComputeBodyMetricsWithSplit(p, split)
		if err != nil {
			return err
		}
		if outputJSON {
			return printJSON(cmd.OutOrStdout(), t)
		}
		out := cmd.OutOrStdout()
		fmt.Fprintf(out, "BMI       %.1f (%s)\n", t.BMI, t.BMICategory)
		fmt.Fprintf(out, "BMR       %.0f kcal\n", t.BMR)
		fmt.Fprintf(out, "TDEE      %.0f kcal\n", t.TDEE)
		fmt.Fprintf(out, "Protein   %.0f g\n", t.ProteinTargetGrams)
		fmt.Fprintf(out, "Carbs     %.0f g\n", t.CarbTargetGrams)
		fmt.Fprintf(out, "Fat       %.0f g\n", t.FatTargetGrams)
		return nil
	},
}

func init() {
	f := metricsCmd.Flags()
	f.IntVar(&metricsAge, "age", 0, "Age in years (10-120)")
	f.Float64Var(&metricsHeight, "height", 0, "Height in cm (100-250)")
	f.Float64Var(&metricsWeight, "weight", 0, "Weight in kg (30-300)")
	f.StringVar(&metricsSex, "sex", "", "male or female")
	f.StringVar(&metricsActivity, "activity", "sedentary",
		"sedentary, lightly_active, moderately_active, very_active or extremely_active")
	f.Float64Var(&metricsProtein, "protein-share", nutrition.DefaultMacroSplit.Protein, "Share of TDEE from protein")
	f.Float64Var(&metricsCarbs, "carbs-share", nutrition.DefaultMacroSplit.Carbs, "Share of TDEE from carbohydrate")
	f.Float64Var(&metricsFat, "fat-share", nutrition.DefaultMacroSplit.Fat, "Share of TDEE from fat")
	for _, name := range []string{"age", "height", "weight", "sex"} {
		_ = metricsCmd.MarkFlagRequired(name)
	}
	rootCmd.AddCommand(metricsCmd)
}
