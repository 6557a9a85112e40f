package main

import (
	"fmt"
	"os"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"github.com/tabtidy/tabtidy/internal/rules"
	"github.com/tabtidy/tabtidy/internal/validate"
)

var validateCmd = &cobra.Command{
	Use:   "validate <workbook.twb>",
	Short: "Check a workbook against the cleanup rules",
	Long: `Run every cleanup rule against the workbook and print one line per
violation, prefixed with a severity tag and rule identifier.

Exit status is 0 when the workbook is clean and 1 when violations remain.`,
	Args: cobra.ExactArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		report := validate.New(nil).ValidateFile(args[0])
		printReport(args[0], report)
		if !report.Clean() {
			os.Exit(1)
		}
	},
}

func printReport(path string, report *validate.Report) {
	cyan := color.New(color.FgCyan, color.Bold).SprintFunc()
	green := color.New(color.FgGreen).SprintFunc()
	red := color.New(color.FgRed).SprintFunc()
	yellow := color.New(color.FgYellow).SprintFunc()

	fmt.Printf("\n%s\n", cyan("=== Workbook Cleanup Validation ==="))
	fmt.Printf("%s\n\n", path)

	if report.Fatal {
		fmt.Printf("%s %s\n", red("[FATAL]"), report.Violations[0].Message)
		return
	}

	for _, line := range report.Lines() {
		fmt.Printf("%s %s\n", red("•"), line)
	}
	if report.Clean() {
		fmt.Printf("%s all rules pass\n", green("[PASS]"))
		return
	}

	fmt.Printf("\n%s\n", yellow("Errors by category:"))
	for _, cat := range rules.Categories {
		if n := report.Counts[cat]; n > 0 {
			fmt.Printf("  %-12s %d\n", cat.String(), n)
		}
	}
	fmt.Printf("  %-12s %d\n", "total", report.Total)
}

func init() {
	rootCmd.AddCommand(validateCmd)
}
