package main

import (
	"encoding/json"
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"

	"lg/diet-tracker-api/nutrition"
)

var outputJSON bool

var rootCmd = &cobra.Command{
	Use:           "nutricalc",
	Short:         "nutricalc computes body metrics, ingredient scaling and meal totals",
	Long:          "nutricalc is an offline front-end to the diet tracker's nutrition calculators.",
	SilenceUsage:  true,
	SilenceErrors: true,
}

func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func init() {
	rootCmd.PersistentFlags().BoolVar(&outputJSON, "json", false, "Output as JSON")
}

func printJSON(w io.Writer, v any) error {
	b, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return err
	}
	fmt.Fprintln(w, string(b))
	return nil
}

// readJSONInput decodes a file argument, or stdin when the path is "-".
func readJSONInput(cmd *cobra.Command, path string, v any) error {
	var r io.Reader = cmd.InOrStdin()
	if path != "-" {
		f, err := os.Open(path)
		if err != nil {
			return err
		}
		defer f.Close()
		r = f
	}
	if err := json.NewDecoder(r).Decode(v); err != nil {
		return fmt.Errorf("decode %s: %w", path, err)
	}
	return nil
}

func printValues(w io.Writer, label string, v nutrition.NutrientValues) {
	fmt.Fprintf(w, "%-10s %7.0f kcal  P %6.1fg  C %6.1fg  F %6.1fg\n", label, v.Calories, v.Protein, v.Carbs, v.Fat)
}
