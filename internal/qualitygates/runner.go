package qualitygates

import (
	"context"
	"strings"
	"time"

	"inkbook/pkg/logger"

	"github.com/rs/zerolog"
	"golang.org/x/sync/errgroup"
)

// Runner executes gates phase by phase.
type Runner struct {
	gates    []Gate
	executor Executor
	now      func() time.Time
	log      zerolog.Logger
}

// NewRunner creates a Runner. A nil executor runs real commands.
func NewRunner(gates []Gate, executor Executor) *Runner {
	if executor == nil {
		executor = CommandExecutor{}
	}
	return &Runner{gates: gates, executor: executor, now: time.Now, log: logger.Component("qualitygates")}
}

// Gates returns the gates of phase in configured order.
func (r *Runner) Gates(phase Phase) []Gate {
	var out []Gate
	for _, g := range r.gates {
		if g.Phase == phase {
			out = append(out, g)
		}
	}
	return out
}

// Run executes the selected phases, all of them when only is empty.
// Phases run in order and the gates of a phase run concurrently. Once a
// required gate does not pass, later phases are reported as skipped.
func (r *Runner) Run(ctx context.Context, only ...Phase) *Report {
	start := r.now()
	report := &Report{Passed: true}
	stopped := false

	for _, phase := range Phases {
		if !selected(phase, only) {
			continue
		}
		gates := r.Gates(phase)
		if len(gates) == 0 {
			continue
		}

		var pr PhaseReport
		if stopped || ctx.Err() != nil {
			pr = skipPhase(phase, gates)
		} else {
			pr = r.runPhase(ctx, phase, gates)
		}
		if !pr.Passed {
			report.Passed = false
			stopped = true
		}
		report.Phases = append(report.Phases, pr)
	}

	report.Duration = r.now().Sub(start)
	return report
}

func (r *Runner) runPhase(ctx context.Context, phase Phase, gates []Gate) PhaseReport {
	r.log.Info().Str("phase", string(phase)).Int("gates", len(gates)).Msg("running phase")

	results := make([]Result, len(gates))
	var g errgroup.Group
	for i, gate := range gates {
		i, gate := i, gate
		g.Go(func() error {
			results[i] = r.runGate(ctx, gate)
			return nil
		})
	}
	_ = g.Wait()

	pr := PhaseReport{Phase: phase, Passed: true, Results: results}
	for _, res := range results {
		if res.Blocking() {
			pr.Passed = false
		}
	}
	return pr
}

func (r *Runner) runGate(ctx context.Context, gate Gate) Result {
	res := Result{Gate: gate.Name, Phase: gate.Phase, Required: gate.Required}
	if gate.Timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, gate.Timeout)
		defer cancel()
	}

	start := r.now()
	out, code, err := r.executor.Execute(ctx, gate.Dir, gate.Command)
	res.Duration = r.now().Sub(start)
	res.ExitCode = code
	res.Output = tail(out)

	switch {
	case err != nil:
		res.Outcome = OutcomeError
		res.Error = err.Error()
	case code != 0:
		res.Outcome = OutcomeFailed
	case gate.FailOnOutput && strings.TrimSpace(string(out)) != "":
		res.Outcome = OutcomeFailed
	default:
		res.Outcome = OutcomePassed
	}

	event := r.log.Info()
	if res.Outcome != OutcomePassed {
		event = r.log.Warn()
	}
	event.Str("gate", gate.Name).Str("outcome", string(res.Outcome)).Int("exit_code", code).Dur("duration", res.Duration).Msg("gate finished")
	return res
}

func skipPhase(phase Phase, gates []Gate) PhaseReport {
	pr := PhaseReport{Phase: phase, Skipped: true}
	for _, g := range gates {
		pr.Results = append(pr.Results, Result{Gate: g.Name, Phase: phase, Required: g.Required, Outcome: OutcomeSkipped})
	}
	return pr
}

func selected(phase Phase, only []Phase) bool {
	if len(only) == 0 {
		return true
	}
	for _, p := range only {
		if p == phase {
			return true
		}
	}
	return false
}
