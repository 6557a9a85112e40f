package fixer

import (
	"bufio"
	"context"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"sync"

	"github.com/tabtidy/tabtidy/internal/converge"
)

// maxTranscriptLines caps captured agent output to prevent memory
// exhaustion from long-running invocations.
const maxTranscriptLines = 10000

// AgentConfig configures the coding-agent subprocess.
type AgentConfig struct {
	// Command is the agent binary. Default "claude".
	Command string

	// SkipPermissions passes the agent's permission-bypass flag. Only safe
	// because the agent operates on a disposable working copy.
	SkipPermissions bool

	// Echo mirrors agent output to this process's stdout/stderr as it
	// arrives.
	Echo bool
}

// Agent invokes a coding-agent CLI as the corrective step. The agent edits
// the working copy in place; its stdout becomes the transcript.
type Agent struct {
	config AgentConfig
}

// NewAgent returns an agent fixer.
func NewAgent(cfg AgentConfig) *Agent {
	if cfg.Command == "" {
		cfg.Command = "claude"
	}
	return &Agent{config: cfg}
}

var _ converge.Fixer = (*Agent)(nil)

// Fix spawns the agent with the rendered prompt and blocks until it exits
// or the context expires. The process is killed on context expiry; the
// working copy then holds whatever the agent wrote before the cut.
func (a *Agent) Fix(ctx context.Context, req *converge.FixRequest) (*converge.FixResult, error) {
	prompt := BuildPrompt(req)

	args := []string{}
	if a.config.SkipPermissions {
		args = append(args, "--dangerously-skip-permissions")
	}
	args = append(args, prompt)

	cmd := exec.CommandContext(ctx, a.config.Command, args...)
	cmd.Dir = filepath.Dir(req.WorkingCopy)

	stdout, err := cmd.StdoutPipe()
	if err != nil {
		return nil, fmt.Errorf("creating stdout pipe: %w", err)
	}
	stderr, err := cmd.StderrPipe()
	if err != nil {
		return nil, fmt.Errorf("creating stderr pipe: %w", err)
	}
	if err := cmd.Start(); err != nil {
		return nil, fmt.Errorf("starting agent %q: %w", a.config.Command, err)
	}

	var mu sync.Mutex
	var transcript []string
	capture := func(scanner *bufio.Scanner, echo *os.File) {
		for scanner.Scan() {
			line := scanner.Text()
			mu.Lock()
			if len(transcript) < maxTranscriptLines {
				transcript = append(transcript, line)
			} else if len(transcript) == maxTranscriptLines {
				transcript = append(transcript, "[... transcript truncated: limit reached ...]")
			}
			mu.Unlock()
			if a.config.Echo && echo != nil {
				fmt.Fprintln(echo, line)
			}
		}
	}

	var wg sync.WaitGroup
	wg.Add(2)
	go func() {
		defer wg.Done()
		capture(bufio.NewScanner(stdout), os.Stdout)
	}()
	go func() {
		defer wg.Done()
		capture(bufio.NewScanner(stderr), os.Stderr)
	}()
	wg.Wait()

	waitErr := cmd.Wait()
	if ctx.Err() != nil {
		// Killed by timeout or cancellation; the controller decides whether
		// that is a partial result or a failed pass.
		return nil, fmt.Errorf("agent interrupted: %w", ctx.Err())
	}
	if waitErr != nil {
		return nil, fmt.Errorf("agent exited with error: %w", waitErr)
	}

	return &converge.FixResult{
		Transcript:      transcript,
		BudgetExhausted: BudgetExhausted(transcript),
	}, nil
}
