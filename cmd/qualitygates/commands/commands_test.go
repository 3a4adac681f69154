package commands

import (
	"bytes"
	"context"
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"inkbook/internal/qualitygates"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type scriptedExecutor map[string]int

func (s scriptedExecutor) Execute(_ context.Context, _ string, command []string) ([]byte, int, error) {
	key := strings.Join(command, " ")
	return []byte(key + "\n"), s[key], nil
}

func run(t *testing.T, exec qualitygates.Executor, args ...string) (string, error) {
	t.Helper()
	prev := newExecutor
	newExecutor = func() qualitygates.Executor { return exec }
	t.Cleanup(func() { newExecutor = prev })

	var out bytes.Buffer
	root := NewRootCmd()
	root.SetOut(&out)
	root.SetErr(&out)
	root.SetArgs(args)
	err := root.Execute()
	return out.String(), err
}

func writeConfig(t *testing.T) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "gates.yaml")
	require.NoError(t, os.WriteFile(path, []byte(`
gates:
  - {name: fmt, phase: analysis, command: [fmt-check], required: true}
  - {name: unit, phase: tests, command: [unit-tests], required: true}
`), 0o600))
	return path
}

func TestRunPasses(t *testing.T) {
	out, err := run(t, scriptedExecutor{}, "run", "--config", writeConfig(t))
	require.NoError(t, err)
	assert.Contains(t, out, "PASS fmt (required)")
	assert.Contains(t, out, "PASSED: 2 passed")
}

func TestRunFailureReturnsError(t *testing.T) {
	out, err := run(t, scriptedExecutor{"fmt-check": 1}, "run", "--config", writeConfig(t))
	assert.ErrorIs(t, err, errGatesFailed)
	assert.Contains(t, out, "FAIL fmt")
	assert.Contains(t, out, "SKIP unit")
}

func TestRunJSONAndPhaseFilter(t *testing.T) {
	out, err := run(t, scriptedExecutor{}, "run", "--config", writeConfig(t), "--phase", "tests", "--json")
	require.NoError(t, err)

	var report qualitygates.Report
	require.NoError(t, json.Unmarshal([]byte(out), &report))
	assert.True(t, report.Passed)
	require.Len(t, report.Phases, 1)
	assert.Equal(t, qualitygates.PhaseTests, report.Phases[0].Phase)
}

func TestRunRejectsUnknownPhase(t *testing.T) {
	_, err := run(t, scriptedExecutor{}, "run", "--phase", "deploy")
	assert.ErrorContains(t, err, "unknown phase")
}

func TestListDefaultGates(t *testing.T) {
	out, err := run(t, scriptedExecutor{}, "list")
	require.NoError(t, err)
	assert.Contains(t, out, "govulncheck ./...")
	assert.Less(t, strings.Index(out, "gofmt"), strings.Index(out, "go build ./..."))
}
