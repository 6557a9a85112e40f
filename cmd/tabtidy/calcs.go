package main

import (
	"fmt"
	"os"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"github.com/tabtidy/tabtidy/internal/workbook"
)

var calcsCmd = &cobra.Command{
	Use:   "calcs <workbook.twb>",
	Short: "List calculated fields and their comment status",
	Long: `List every calculated field in the workbook with its display name and
whether its formula carries a comment. Bins and fields without formulas
are marked exempt.`,
	Args: cobra.ExactArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		wb, err := workbook.Load(args[0])
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			os.Exit(1)
		}

		green := color.New(color.FgGreen).SprintFunc()
		red := color.New(color.FgRed).SprintFunc()
		gray := color.New(color.FgHiBlack).SprintFunc()

		calcs := wb.Calculations()
		commented := 0
		for _, calc := range calcs {
			switch {
			case calc.IsBin() || !calc.HasFormula():
				fmt.Printf("  %s %s\n", gray("○ exempt "), calc.DisplayName())
			case calc.CommentLine() != "":
				commented++
				fmt.Printf("  %s %s\n", green("✓ comment"), calc.DisplayName())
			default:
				fmt.Printf("  %s %s\n", red("✗ missing"), calc.DisplayName())
			}
		}
		fmt.Printf("\n%d calculated fields, %d commented\n", len(calcs), commented)
	},
}

func init() {
	rootCmd.AddCommand(calcsCmd)
}
