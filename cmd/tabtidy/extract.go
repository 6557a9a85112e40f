package main

import (
	"fmt"
	"os"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"github.com/tabtidy/tabtidy/internal/archive"
)

var extractCmd = &cobra.Command{
	Use:   "extract <workbook.twbx> [dir]",
	Short: "Unpack a .twbx archive and locate the .twb inside",
	Args:  cobra.RangeArgs(1, 2),
	Run: func(cmd *cobra.Command, args []string) {
		dest := ""
		if len(args) == 2 {
			dest = args[1]
		}
		result, err := archive.Extract(args[0], dest)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			os.Exit(1)
		}
		green := color.New(color.FgGreen).SprintFunc()
		fmt.Printf("%s extracted %d files to %s\n", green("✓"), result.Files, result.Dir)
		fmt.Printf("  workbook: %s\n", result.Workbook)
	},
}

func init() {
	rootCmd.AddCommand(extractCmd)
}
