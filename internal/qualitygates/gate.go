// Package qualitygates runs the repository's static analysis, security, test and build
// checks as ordered phases of external commands.
package qualitygates

import (
	"strings"
	"time"
)

// Phase groups gates that may run concurrently.
type Phase string

const (
	PhaseAnalysis Phase = "analysis"
	PhaseSecurity Phase = "security"
	PhaseTests    Phase = "tests"
	PhaseBuild    Phase = "build"
)

// Phases lists every phase in execution order.
var Phases = []Phase{PhaseAnalysis, PhaseSecurity, PhaseTests, PhaseBuild}

// ParsePhase accepts a phase name case-insensitively.
func ParsePhase(s string) (Phase, bool) {
	p := Phase(strings.ToLower(strings.TrimSpace(s)))
	for _, known := range Phases {
		if p == known {
			return p, true
		}
	}
	return "", false
}

// Gate is one external check.
type Gate struct {
	Name     string        `yaml:"name" json:"name"`
	Phase    Phase         `yaml:"phase" json:"phase"`
	Command  []string      `yaml:"command" json:"command"`
	Required bool          `yaml:"required" json:"required"`
	Timeout  time.Duration `yaml:"timeout" json:"timeout,omitempty"`
	Dir      string        `yaml:"dir" json:"dir,omitempty"`
	// FailOnOutput fails the gate when the command prints anything, for tools like
	// gofmt -l that exit 0 on findings.
	FailOnOutput bool `yaml:"fail_on_output" json:"fail_on_output,omitempty"`
}

// DefaultGates is the gate list used when no config file is given.
func DefaultGates() []Gate {
	return []Gate{
		{Name: "gofmt", Phase: PhaseAnalysis, Command: []string{"gofmt", "-l", "."}, Required: true, FailOnOutput: true, Timeout: 2 * time.Minute},
		{Name: "vet", Phase: PhaseAnalysis, Command: []string{"go", "vet", "./..."}, Required: true, Timeout: 5 * time.Minute},
		{Name: "govulncheck", Phase: PhaseSecurity, Command: []string{"govulncheck", "./..."}, Required: true, Timeout: 10 * time.Minute},
		{Name: "mod-verify", Phase: PhaseSecurity, Command: []string{"go", "mod", "verify"}, Timeout: 5 * time.Minute},
		{Name: "test", Phase: PhaseTests, Command: []string{"go", "test", "./..."}, Required: true, Timeout: 15 * time.Minute},
		{Name: "test-race", Phase: PhaseTests, Command: []string{"go", "test", "-race", "./..."}, Timeout: 20 * time.Minute},
		{Name: "build", Phase: PhaseBuild, Command: []string{"go", "build", "./..."}, Required: true, Timeout: 10 * time.Minute},
	}
}

// Outcome is the result of one gate.
type Outcome string

const (
	OutcomePassed  Outcome = "passed"
	OutcomeFailed  Outcome = "failed"
	OutcomeError   Outcome = "error"
	OutcomeSkipped Outcome = "skipped"
)

// Result records how a gate ran.
type Result struct {
	Gate     string        `json:"gate"`
	Phase    Phase         `json:"phase"`
	Required bool          `json:"required"`
	Outcome  Outcome       `json:"outcome"`
	ExitCode int           `json:"exit_code"`
	Duration time.Duration `json:"duration_ns"`
	Output   string        `json:"output,omitempty"`
	Error    string        `json:"error,omitempty"`
}

// Blocking reports whether the result stops the pipeline.
func (r Result) Blocking() bool {
	return r.Required && r.Outcome != OutcomePassed
}

// PhaseReport aggregates the gates of one phase.
type PhaseReport struct {
	Phase   Phase    `json:"phase"`
	Passed  bool     `json:"passed"`
	Skipped bool     `json:"skipped"`
	Results []Result `json:"results"`
}

// Report is the outcome of a whole run.
type Report struct {
	Passed   bool          `json:"passed"`
	Duration time.Duration `json:"duration_ns"`
	Phases   []PhaseReport `json:"phases"`
}

// Counts tallies results by outcome.
func (r *Report) Counts() map[Outcome]int {
	counts := make(map[Outcome]int)
	for _, p := range r.Phases {
		for _, res := range p.Results {
			counts[res.Outcome]++
		}
	}
	return counts
}
