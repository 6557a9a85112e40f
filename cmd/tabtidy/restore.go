package main

import (
	"fmt"
	"os"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"github.com/tabtidy/tabtidy/internal/snapshot"
)

var restoreCmd = &cobra.Command{
	Use:   "restore <workbook.twb>",
	Short: "Reset the working copy from the backup snapshot",
	Long: `Overwrite the _cleaned working copy with the _backup snapshot, discarding
whatever the fix loop wrote. The original file is never touched.`,
	Args: cobra.ExactArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		snaps := snapshot.NewManager()
		paths := snaps.Paths(args[0])
		if err := snaps.Restore(paths); err != nil {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			os.Exit(1)
		}
		green := color.New(color.FgGreen).SprintFunc()
		fmt.Printf("%s restored %s from %s\n", green("✓"), paths.Working, paths.Backup)
	},
}

func init() {
	rootCmd.AddCommand(restoreCmd)
}
