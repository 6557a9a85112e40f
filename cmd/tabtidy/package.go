package main

import (
	"fmt"
	"os"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"github.com/tabtidy/tabtidy/internal/archive"
)

var packageCmd = &cobra.Command{
	Use:   "package <dir> <output.twbx>",
	Short: "Repack an extracted directory into a .twbx archive",
	Args:  cobra.ExactArgs(2),
	Run: func(cmd *cobra.Command, args []string) {
		result, err := archive.Package(args[0], args[1])
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			os.Exit(1)
		}
		green := color.New(color.FgGreen).SprintFunc()
		fmt.Printf("%s packaged %d files into %s\n", green("✓"), result.Files, result.Output)
	},
}

func init() {
	rootCmd.AddCommand(packageCmd)
}
