package converge

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/tabtidy/tabtidy/internal/rules"
	"github.com/tabtidy/tabtidy/internal/snapshot"
	"github.com/tabtidy/tabtidy/internal/validate"
)

// Controller orchestrates one run over one working copy. A controller may be
// reused across runs but never runs concurrently: the freshness guard, not a
// lock file, keeps two runs off the same target.
type Controller struct {
	config    Config
	validator *validate.Validator
	fixer     Fixer
	snapshots *snapshot.Manager
	recorder  Recorder
	observer  Observer
}

// New builds a controller. The validator, fixer and recorder are required;
// the observer may be nil.
func New(cfg Config, v *validate.Validator, fixer Fixer, snaps *snapshot.Manager, rec Recorder, obs Observer) (*Controller, error) {
	if cfg.MaxPasses < 1 {
		return nil, fmt.Errorf("MaxPasses must be at least 1, got %d", cfg.MaxPasses)
	}
	if cfg.MaxViolations < 1 {
		return nil, fmt.Errorf("MaxViolations must be at least 1, got %d", cfg.MaxViolations)
	}
	if v == nil {
		return nil, fmt.Errorf("validator is required")
	}
	if fixer == nil {
		return nil, fmt.Errorf("fixer is required")
	}
	if rec == nil {
		return nil, fmt.Errorf("recorder is required")
	}
	if snaps == nil {
		snaps = snapshot.NewManager()
	}
	return &Controller{
		config:    cfg,
		validator: v,
		fixer:     fixer,
		snapshots: snaps,
		recorder:  rec,
		observer:  obs,
	}, nil
}

// Run executes the full state machine against one original document.
//
// Pass 1 always invokes the corrective step, even when the check finds
// nothing: the fixer applies judgment criteria the rule set cannot express,
// so the first sweep is unconditional. From pass 2 on, a clean check is
// convergence.
func (c *Controller) Run(ctx context.Context, original string) (*Result, error) {
	started := time.Now()
	result := &Result{
		RunID:    uuid.New().String(),
		Workbook: original,
	}

	// Initializing: freshness guard, then snapshots. Exactly once per run.
	fresh, err := c.snapshots.Fresh(original, c.config.FreshnessWindow)
	if err != nil {
		return nil, fmt.Errorf("freshness check: %w", err)
	}
	if fresh {
		result.Skipped = true
		return result, nil
	}
	paths, err := c.snapshots.Prepare(original)
	if err != nil {
		return nil, fmt.Errorf("preparing snapshots: %w", err)
	}

	recorded := false
	record := func(state State) error {
		if recorded {
			return nil
		}
		recorded = true
		result.State = state
		result.Duration = time.Since(started)
		rec := &RunRecord{
			ID:            result.RunID,
			Workbook:      original,
			Success:       state == StateConverged,
			Passes:        result.Passes,
			InitialErrors: result.InitialTotal,
			FinalErrors:   result.FinalTotal,
			Regressions:   result.Regressions,
			StartedAt:     started,
			Duration:      result.Duration,
		}
		// The terminal record must land even when the run itself was
		// canceled, so the append runs on a detached context.
		if err := c.recorder.RecordRun(context.WithoutCancel(ctx), rec); err != nil {
			return fmt.Errorf("recording run: %w", err)
		}
		return nil
	}

	for pass := 1; pass <= c.config.MaxPasses; pass++ {
		// Checking.
		if err := ctx.Err(); err != nil {
			recErr := record(c.exhaustedState(result))
			return result, errors.Join(fmt.Errorf("run canceled before pass %d: %w", pass, err), recErr)
		}
		report := c.validator.ValidateFile(paths.Working)
		if pass == 1 {
			result.InitialTotal = report.Total
		}
		result.FinalTotal = report.Total
		result.Passes = pass
		if c.observer != nil {
			c.observer.PassChecked(pass, report)
		}
		if report.Clean() && pass > 1 {
			err := record(StateConverged)
			return result, err
		}

		// Invoking.
		if err := ctx.Err(); err != nil {
			recErr := record(c.exhaustedState(result))
			return result, errors.Join(fmt.Errorf("run canceled before invoking fixer on pass %d: %w", pass, err), recErr)
		}
		req := &FixRequest{
			WorkingCopy:  paths.Working,
			Pass:         pass,
			Instructions: c.instructions(pass),
			Violations:   capViolations(report, c.config.MaxViolations),
		}
		fixCtx := ctx
		var cancelFix context.CancelFunc
		if c.config.FixTimeout > 0 {
			fixCtx, cancelFix = context.WithTimeout(ctx, c.config.FixTimeout)
		}
		res, fixErr := c.fixer.Fix(fixCtx, req)
		if fixErr != nil && fixCtx.Err() == context.DeadlineExceeded && ctx.Err() == nil {
			// Budget exhausted mid-invocation: a partial result, not an
			// error. The working copy holds whatever was written so far.
			res = &FixResult{BudgetExhausted: true}
			fixErr = nil
		}
		if cancelFix != nil {
			cancelFix()
		}
		if c.observer != nil {
			c.observer.FixInvoked(pass, res, fixErr)
		}
		if fixErr != nil {
			// A failed invocation fails the pass, never the run. No retry:
			// the next pass's check picks up from whatever was written.
			continue
		}

		// Verifying.
		if err := ctx.Err(); err != nil {
			recErr := record(c.exhaustedState(result))
			return result, errors.Join(fmt.Errorf("run canceled before verifying pass %d: %w", pass, err), recErr)
		}
		after := c.validator.ValidateFile(paths.Working)
		delta := report.Total - after.Total
		result.Deltas = append(result.Deltas, delta)
		result.FinalTotal = after.Total
		if c.observer != nil {
			c.observer.PassVerified(pass, delta, after)
		}
		if after.Clean() {
			err := record(StateConverged)
			return result, err
		}
		if delta < 0 {
			// Regression: reported and recorded, never rolled back.
			result.Regressions++
			if c.observer != nil {
				c.observer.RegressionDetected(pass, report.Total, after.Total)
			}
		}
	}

	err = record(c.exhaustedState(result))
	return result, err
}

// exhaustedState distinguishes a plain ceiling hit from one that regressed
// along the way.
func (c *Controller) exhaustedState(result *Result) State {
	if result.Regressions > 0 {
		return StateRegressed
	}
	return StateExhausted
}

// instructions is the contract text handed to the fixer each pass. It states
// the monotonic convergence target: prior-pass correctness must never be
// undone.
func (c *Controller) instructions(pass int) string {
	var b strings.Builder
	fmt.Fprintf(&b, "Cleanup pass %d of %d.\n", pass, c.config.MaxPasses)
	b.WriteString("Fix the listed violations in the working copy file, in place.\n")
	b.WriteString("Do not move a field out of a folder it is already correctly placed in.\n")
	b.WriteString("Never rewrite a column's internal name attribute; only captions, comments and folders change.\n")
	b.WriteString("Escape &, ', <, > and \" as entities in attribute text, and encode line breaks as &#13;&#10;.\n")
	if pass == 1 {
		b.WriteString("This is the first pass: sweep every calculation for caption, comment and folder quality even if it is not listed below.\n")
	}
	return b.String()
}

func capViolations(report *validate.Report, max int) []rules.Violation {
	if len(report.Violations) <= max {
		return report.Violations
	}
	return report.Violations[:max]
}
