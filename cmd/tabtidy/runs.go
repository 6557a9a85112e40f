package main

import (
	"context"
	"fmt"
	"os"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"github.com/tabtidy/tabtidy/internal/ledger"
)

var runsLimit int

var runsCmd = &cobra.Command{
	Use:   "runs [workbook.twb]",
	Short: "Show the run ledger",
	Long: `List recorded convergence runs, newest first. With a workbook argument
only that workbook's runs are shown.`,
	Args: cobra.MaximumNArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		workbook := ""
		if len(args) == 1 {
			workbook = args[0]
		}

		led, err := ledger.Open(cfg.LedgerPath)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			os.Exit(1)
		}
		defer led.Close()

		records, err := led.ListRuns(context.Background(), workbook, runsLimit)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			os.Exit(1)
		}
		if len(records) == 0 {
			fmt.Println("No runs recorded.")
			return
		}

		green := color.New(color.FgGreen).SprintFunc()
		red := color.New(color.FgRed).SprintFunc()
		for _, rec := range records {
			mark := green("✓")
			if !rec.Success {
				mark = red("✗")
			}
			fmt.Printf("%s %s\n", mark, ledger.FormatLine(rec))
		}
	},
}

func init() {
	runsCmd.Flags().IntVar(&runsLimit, "limit", 20, "maximum runs to show (0 for all)")
	rootCmd.AddCommand(runsCmd)
}
