package analyzer

import (
	"context"
	"os"
	"os/exec"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zaptest/observer"
)

// Test Plan for ScriptAnalyzer:
// - Output lines are logged with the [PY] prefix, in order
// - Context and plan paths reach the process through the environment
// - The process runs in the requested working directory
// - Script path and extra args are passed to the factory
// - Non-zero exit maps to ErrAnalyzerFailed
// - Factory and lookup failures map to ErrPythonNotFound
// - Timeout kills the process and reports ErrAnalyzerFailed

// shellFactory ignores the script and runs body with sh instead.
func shellFactory(body string) CommandFactory {
	return func(ctx context.Context, script string, args ...string) (*exec.Cmd, error) {
		return exec.Command("sh", "-c", body), nil
	}
}

func observedLogger() (*zap.Logger, *observer.ObservedLogs) {
	core, logs := observer.New(zap.InfoLevel)
	return zap.New(core), logs
}

func pyLines(logs *observer.ObservedLogs) []string {
	var out []string
	for _, entry := range logs.All() {
		if strings.HasPrefix(entry.Message, OutputPrefix) {
			out = append(out, entry.Message)
		}
	}
	return out
}

func TestAnalyze_StreamsOutput(t *testing.T) {
	t.Parallel()

	logger, logs := observedLogger()
	a := NewScriptAnalyzer("pipeline_rca.py",
		WithLogger(logger),
		WithCommandFactory(shellFactory(`echo "reading context"; echo "oops" >&2; echo done`)))

	require.NoError(t, a.Analyze(context.Background(), Request{}))

	lines := pyLines(logs)
	require.Len(t, lines, 3)
	assert.Equal(t, "[PY] reading context", lines[0])
	assert.Contains(t, lines, "[PY] oops")
	assert.Contains(t, lines, "[PY] done")
}

func TestAnalyze_EnvironmentAndWorkDir(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	req := Request{
		ContextPath: filepath.Join(dir, "context.rcft"),
		PlanPath:    filepath.Join(dir, "plan.json"),
		WorkDir:     dir,
	}
	body := `printf '[{"type":"CLASS","concept_name":"%s"}]' "$(basename "$HOIST_CONTEXT_PATH")" > "$HOIST_PLAN_PATH"; pwd > where.txt`

	a := NewScriptAnalyzer("pipeline_rca.py", WithCommandFactory(shellFactory(body)))
	require.NoError(t, a.Analyze(context.Background(), req))

	data, err := os.ReadFile(req.PlanPath)
	require.NoError(t, err)
	assert.Equal(t, `[{"type":"CLASS","concept_name":"context.rcft"}]`, string(data))

	where, err := os.ReadFile(filepath.Join(dir, "where.txt"))
	require.NoError(t, err)
	wantDir, err := filepath.EvalSymlinks(dir)
	require.NoError(t, err)
	gotDir, err := filepath.EvalSymlinks(strings.TrimSpace(string(where)))
	require.NoError(t, err)
	assert.Equal(t, wantDir, gotDir)
}

func TestAnalyze_PassesScriptAndArgs(t *testing.T) {
	t.Parallel()

	var gotScript string
	var gotArgs []string
	factory := func(ctx context.Context, script string, args ...string) (*exec.Cmd, error) {
		gotScript = script
		gotArgs = args
		return exec.Command("true"), nil
	}

	a := NewScriptAnalyzer("scripts/rca.py", WithArgs("--lattice", "full"), WithCommandFactory(factory))
	require.NoError(t, a.Analyze(context.Background(), Request{}))

	assert.True(t, filepath.IsAbs(gotScript))
	assert.Equal(t, "rca.py", filepath.Base(gotScript))
	assert.Equal(t, []string{"--lattice", "full"}, gotArgs)
}

func TestAnalyze_NonZeroExit(t *testing.T) {
	t.Parallel()

	a := NewScriptAnalyzer("x.py", WithCommandFactory(shellFactory(`echo failing; exit 3`)))
	err := a.Analyze(context.Background(), Request{})

	require.ErrorIs(t, err, ErrAnalyzerFailed)
	assert.Contains(t, err.Error(), "exit code 3")
}

func TestAnalyze_PythonNotFound(t *testing.T) {
	t.Parallel()

	a := NewScriptAnalyzer("x.py", WithCommandFactory(SystemPython("hoist-no-such-python-binary")))
	err := a.Analyze(context.Background(), Request{})
	assert.ErrorIs(t, err, ErrPythonNotFound)

	missing := func(ctx context.Context, script string, args ...string) (*exec.Cmd, error) {
		return exec.Command(filepath.Join(t.TempDir(), "python3")), nil
	}
	a = NewScriptAnalyzer("x.py", WithCommandFactory(missing))
	err = a.Analyze(context.Background(), Request{})
	assert.ErrorIs(t, err, ErrPythonNotFound)
}

func TestAnalyze_Timeout(t *testing.T) {
	t.Parallel()

	a := NewScriptAnalyzer("x.py",
		WithTimeout(200*time.Millisecond),
		WithCommandFactory(shellFactory(`exec sleep 10`)))

	start := time.Now()
	err := a.Analyze(context.Background(), Request{})

	require.ErrorIs(t, err, ErrAnalyzerFailed)
	assert.ErrorIs(t, err, context.DeadlineExceeded)
	assert.Less(t, time.Since(start), 5*time.Second)
}

func TestAnalyze_Cancelled(t *testing.T) {
	t.Parallel()

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	a := NewScriptAnalyzer("x.py", WithCommandFactory(shellFactory(`exec sleep 10`)))
	err := a.Analyze(ctx, Request{})
	assert.ErrorIs(t, err, context.Canceled)
}

func TestSystemPython_BuildsCommand(t *testing.T) {
	t.Parallel()

	cmd, err := SystemPython("sh")(context.Background(), "/tmp/script.py", "-v")
	require.NoError(t, err)
	assert.Equal(t, []string{"/tmp/script.py", "-v"}, cmd.Args[1:])
}

func TestFunc(t *testing.T) {
	t.Parallel()

	var got Request
	var a Analyzer = Func(func(ctx context.Context, req Request) error {
		got = req
		return nil
	})
	require.NoError(t, a.Analyze(context.Background(), Request{PlanPath: "p"}))
	assert.Equal(t, "p", got.PlanPath)
}
