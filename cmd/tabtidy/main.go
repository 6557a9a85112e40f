package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/tabtidy/tabtidy/internal/config"
)

var (
	configPath string
	cfg        *config.Config
)

var rootCmd = &cobra.Command{
	Use:   "tabtidy",
	Short: "Tableau workbook cleanup validator and convergence loop",
	Long: `tabtidy validates Tableau workbook (.twb) files against the cleanup rule
set (captions, comments, folders, encoding) and drives an iterative
fix loop that hands violations to a corrective agent until the workbook
is clean or the pass ceiling is reached.

All passes operate on a _cleaned working copy; the original file and a
_backup snapshot are never touched.`,
	SilenceUsage: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		loaded, err := config.LoadOrDefault(configPath)
		if err != nil {
			return fmt.Errorf("loading config: %w", err)
		}
		cfg = loaded
		return nil
	},
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func init() {
	rootCmd.PersistentFlags().StringVar(&configPath, "config", "",
		"path to config file (default "+config.DefaultPath+")")
}
