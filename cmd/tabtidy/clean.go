package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"github.com/tabtidy/tabtidy/internal/converge"
	"github.com/tabtidy/tabtidy/internal/fixer"
	"github.com/tabtidy/tabtidy/internal/ledger"
	"github.com/tabtidy/tabtidy/internal/snapshot"
	"github.com/tabtidy/tabtidy/internal/validate"
)

var cleanCmd = &cobra.Command{
	Use:   "clean [workbook.twb...]",
	Short: "Run the full validate-fix-revalidate loop on workbooks",
	Long: `Run the convergence loop: snapshot the workbook, validate the working
copy, hand violations to the corrective step, and re-validate until the
workbook is clean or the pass ceiling is reached.

Targets come from the arguments, or from the config file's targets list
when no arguments are given. Each run appends one record to the ledger.`,
	Run: func(cmd *cobra.Command, args []string) {
		targets := args
		if len(targets) == 0 {
			targets = cfg.Targets
		}
		if len(targets) == 0 {
			fmt.Fprintln(os.Stderr, "Error: no workbooks given and no targets configured")
			os.Exit(1)
		}

		ctrl, led, err := buildController()
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			os.Exit(1)
		}
		defer led.Close()

		ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
		defer stop()

		failed := false
		for _, target := range targets {
			result, err := ctrl.Run(ctx, target)
			if err != nil {
				fmt.Fprintf(os.Stderr, "Error: %s: %v\n", target, err)
				failed = true
				continue
			}
			printResult(result)
			if !result.Skipped && result.State != converge.StateConverged {
				failed = true
			}
		}
		if failed {
			os.Exit(1)
		}
	},
}

func buildController() (*converge.Controller, ledger.Ledger, error) {
	fixTimeout, err := cfg.ParseFixTimeout()
	if err != nil {
		return nil, nil, err
	}
	window, err := cfg.ParseFreshnessWindow()
	if err != nil {
		return nil, nil, err
	}

	loopCfg := converge.Config{
		MaxPasses:       cfg.MaxPasses,
		FixTimeout:      fixTimeout,
		MaxViolations:   cfg.MaxViolations,
		FreshnessWindow: window,
	}

	var fix converge.Fixer
	switch cfg.Fixer {
	case "api":
		fix, err = fixer.NewAPIFixer(fixer.APIConfig{Model: cfg.Model})
		if err != nil {
			return nil, nil, err
		}
	default:
		fix = fixer.NewAgent(fixer.AgentConfig{
			Command:         cfg.AgentCommand,
			SkipPermissions: cfg.SkipPermissions,
			Echo:            true,
		})
	}

	led, err := ledger.Open(cfg.LedgerPath)
	if err != nil {
		return nil, nil, err
	}

	ctrl, err := converge.New(loopCfg, validate.New(nil), fix, snapshot.NewManager(), led, &progressObserver{})
	if err != nil {
		led.Close()
		return nil, nil, err
	}
	return ctrl, led, nil
}

// progressObserver prints pass boundaries as the loop runs.
type progressObserver struct{}

func (progressObserver) PassChecked(pass int, report *validate.Report) {
	yellow := color.New(color.FgYellow).SprintFunc()
	fmt.Printf("%s pass %d: %d violations\n", yellow("▸"), pass, report.Total)
}

func (progressObserver) FixInvoked(pass int, res *converge.FixResult, err error) {
	if err != nil {
		fmt.Fprintf(os.Stderr, "warning: pass %d fix invocation failed: %v\n", pass, err)
		return
	}
	if res != nil && res.BudgetExhausted {
		fmt.Fprintf(os.Stderr, "warning: pass %d fix budget exhausted, partial result\n", pass)
	}
}

func (progressObserver) PassVerified(pass int, delta int, report *validate.Report) {
	fmt.Printf("  pass %d verified: delta %+d, %d remaining\n", pass, delta, report.Total)
}

func (progressObserver) RegressionDetected(pass int, before, after int) {
	red := color.New(color.FgRed, color.Bold).SprintFunc()
	fmt.Printf("%s pass %d increased violations from %d to %d\n", red("REGRESSION:"), pass, before, after)
}

func printResult(result *converge.Result) {
	green := color.New(color.FgGreen, color.Bold).SprintFunc()
	red := color.New(color.FgRed, color.Bold).SprintFunc()
	yellow := color.New(color.FgYellow).SprintFunc()
	gray := color.New(color.FgHiBlack).SprintFunc()

	if result.Skipped {
		fmt.Printf("%s %s: working copy modified recently, run skipped\n", gray("○"), result.Workbook)
		return
	}

	switch result.State {
	case converge.StateConverged:
		fmt.Printf("%s %s: converged after %d passes in %s (%d → 0 errors)\n",
			green("✓"), result.Workbook, result.Passes, result.Duration.Round(time.Second), result.InitialTotal)
	case converge.StateRegressed:
		fmt.Printf("%s %s: exhausted %d passes with %d regressions, %d errors remain\n",
			red("✗"), result.Workbook, result.Passes, result.Regressions, result.FinalTotal)
	case converge.StateExhausted:
		fmt.Printf("%s %s: exhausted %d passes, %d errors remain\n",
			red("✗"), result.Workbook, result.Passes, result.FinalTotal)
	}
	if result.State != converge.StateConverged {
		fmt.Printf("%s\n", yellow("Further automated passes are unlikely to help; restore the backup with 'tabtidy restore' if needed."))
	}
}

func init() {
	rootCmd.AddCommand(cleanCmd)
}
