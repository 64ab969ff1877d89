package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"lg/diet-tracker-api/nutrition"
)

var recipeServings int

var recipeCmd = &cobra.Command{
	Use:   "recipe <ingredients.json|->",
	Short: "Compute per-serving totals from a JSON array of ingredients",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		var ings []nutrition.Ingredient
		if err := readJSONInput(cmd, args[0], &ings); err != nil {
			return err
		}
		ings, issues := nutrition.ResolveIngredients(ings, nil)
		totals := nutrition.ComputeRecipeTotals(ings, recipeServings)
		if issue, ok := totals.Issue(); ok {
			issues = append(issues, issue)
		}

		if outputJSON {
			return printJSON(cmd.OutOrStdout(), struct {
				nutrition.RecipeTotals
				Issues []nutrition.Issue `json:"issues,omitempty"`
			}{totals, issues})
		}
		out := cmd.OutOrStdout()
		for _, ing := range ings {
			printValues(out, ing.Name, ing.Values())
		}
		printValues(out, "total", totals.Total)
		printValues(out, fmt.Sprintf("per 1/%d", totals.Servings), totals.PerServing)
		for _, issue := range issues {
			fmt.Fprintf(cmd.ErrOrStderr(), "warning: %s\n", issue)
		}
		return nil
	},
}

func init() {
	recipeCmd.Flags().IntVar(&recipeServings, "servings", 1, "Number of servings (values below 1 count as 1)")
	rootCmd.AddCommand(recipeCmd)
}
