// Package converge drives the bounded validate → fix → re-validate loop.
//
// The controller owns iteration mechanics: pass counting, deltas, regression
// flagging, the pass ceiling, and deterministic termination. Judgment about
// how to fix a violation is delegated entirely to the Fixer, an opaque
// collaborator whose only observable effects are its transcript and its
// mutation of the working copy file.
package converge

import (
	"context"
	"time"

	"github.com/tabtidy/tabtidy/internal/rules"
	"github.com/tabtidy/tabtidy/internal/validate"
)

// State is the controller's position in the run state machine.
type State int

const (
	StateInitializing State = iota
	StateChecking
	StateInvoking
	StateVerifying

	// Terminal states. Each produces exactly one run record.
	StateConverged // zero violations on a pass > 1
	StateRegressed // ceiling reached with at least one regression along the way
	StateExhausted // ceiling reached without regressions
)

func (s State) String() string {
	switch s {
	case StateInitializing:
		return "initializing"
	case StateChecking:
		return "checking"
	case StateInvoking:
		return "invoking"
	case StateVerifying:
		return "verifying"
	case StateConverged:
		return "converged"
	case StateRegressed:
		return "regressed"
	case StateExhausted:
		return "exhausted"
	default:
		return "unknown"
	}
}

// Terminal reports whether s ends the run.
func (s State) Terminal() bool {
	return s == StateConverged || s == StateRegressed || s == StateExhausted
}

// Config controls one run. It is immutable once the controller is built; no
// process-wide state exists beyond the ledger append handle.
type Config struct {
	// MaxPasses is the iteration ceiling. Default 10.
	MaxPasses int

	// FixTimeout bounds a single corrective invocation. On expiry the
	// invocation is treated as having returned a partial result, not as an
	// error. Zero means no per-pass bound.
	FixTimeout time.Duration

	// MaxViolations caps the violation list handed to the fixer. Default 50.
	MaxViolations int

	// FreshnessWindow makes the controller skip a target whose working copy
	// changed this recently: another run is in progress or just finished.
	// Zero disables the guard.
	FreshnessWindow time.Duration
}

// DefaultConfig returns the standard loop settings.
func DefaultConfig() Config {
	return Config{
		MaxPasses:       10,
		FixTimeout:      30 * time.Minute,
		MaxViolations:   50,
		FreshnessWindow: 10 * time.Minute,
	}
}

// FixRequest is everything the corrective step gets to see.
type FixRequest struct {
	WorkingCopy  string
	Pass         int
	Instructions string
	Violations   []rules.Violation
}

// FixResult is everything the controller learns back. The transcript is
// never parsed for correctness signals beyond the budget-exhaustion marker;
// the real result is whatever the fixer wrote to the working copy.
type FixResult struct {
	Transcript      []string
	BudgetExhausted bool
}

// Fixer is the opaque corrective collaborator.
type Fixer interface {
	Fix(ctx context.Context, req *FixRequest) (*FixResult, error)
}

// RunRecord is the ledger entry for one run, immutable once written.
type RunRecord struct {
	ID            string
	Workbook      string
	Success       bool
	Passes        int
	InitialErrors int
	FinalErrors   int
	Regressions   int
	StartedAt     time.Time
	Duration      time.Duration
}

// Recorder appends run records. The controller writes exactly one record per
// terminal state and never discards a regression silently.
type Recorder interface {
	RecordRun(ctx context.Context, rec *RunRecord) error
}

// Observer receives pass-boundary notifications. All methods may be called
// with a nil-safe controller; pass nil to disable observation.
type Observer interface {
	PassChecked(pass int, report *validate.Report)
	FixInvoked(pass int, res *FixResult, err error)
	PassVerified(pass int, delta int, report *validate.Report)
	RegressionDetected(pass int, before, after int)
}

// Result summarizes a finished (or skipped) run.
type Result struct {
	RunID        string
	Workbook     string
	State        State
	Passes       int
	InitialTotal int
	FinalTotal   int
	Regressions  int
	Deltas       []int
	Duration     time.Duration

	// Skipped is set when the freshness guard declined to run. No passes
	// were executed and no record was written.
	Skipped bool
}
