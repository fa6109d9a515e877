package cli

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zapcore"

	"github.com/mvp-joe/project-hoist/internal/analyzer"
	"github.com/mvp-joe/project-hoist/internal/config"
	"github.com/mvp-joe/project-hoist/internal/history"
	"github.com/mvp-joe/project-hoist/internal/modelstore"
	"github.com/mvp-joe/project-hoist/internal/pipeline"
	"github.com/mvp-joe/project-hoist/internal/plan"
	"github.com/mvp-joe/project-hoist/internal/rcft"
	"github.com/mvp-joe/project-hoist/internal/refactor"
)

// Test Plan for CLI:
// - loadEnvFrom uses defaults without a config file and honors an explicit file
// - --verbose forces debug logging
// - buildController wires history and runs the pipeline with an injected analyzer
// - buildController works with history disabled
// - buildAnalyzer in system mode reports a missing interpreter
// - Progress reporter prints relocated members, the plan's reason and a summary; quiet prints nothing
// - writeActions prints stored members, skip reasons and rationale
// - writeResult covers no plan, analyzer failure and success
// - writeDocumentSummary prints context sizes and rows
// - watchModel processes once up front and again per change, stops on cancel
// - version and inspect commands write to the command output

const modelYAML = `name: transport
classifiers:
  - name: Car
    attributes:
      - {name: speed, type: int}
    operations:
      - {name: drive}
  - name: Truck
    attributes:
      - {name: speed, type: int}
    operations:
      - {name: drive}
`

const vehiclePlan = `[{"type":"CLASS","concept_name":"Vehicle","classes":["Car","Truck"],"features":["speed:int","drive()"]}]`

func newTestEnv(t *testing.T, configYAML string) *env {
	t.Helper()
	root := t.TempDir()
	if configYAML != "" {
		require.NoError(t, os.MkdirAll(filepath.Join(root, ".hoist"), 0755))
		require.NoError(t, os.WriteFile(filepath.Join(root, ".hoist", "config.yml"), []byte(configYAML), 0644))
	}
	e, err := loadEnvFrom(root, "", false)
	require.NoError(t, err)
	return e
}

func writeModelFile(t *testing.T, dir string) string {
	t.Helper()
	path := filepath.Join(dir, "transport.yaml")
	require.NoError(t, os.WriteFile(path, []byte(modelYAML), 0644))
	return path
}

func TestLoadEnv_Defaults(t *testing.T) {
	t.Parallel()

	e := newTestEnv(t, "")

	assert.Equal(t, config.AnalyzerModeSystem, e.cfg.Analyzer.Mode)
	assert.Equal(t, filepath.Join(e.rootDir, ".hoist", "context.rcft"), e.cfg.ContextPath(e.rootDir))
	assert.False(t, e.logger.Core().Enabled(zapcore.DebugLevel), "debug must be off by default")
}

func TestLoadEnv_ExplicitFileAndVerbose(t *testing.T) {
	t.Parallel()

	root := t.TempDir()
	file := filepath.Join(root, "custom.yml")
	require.NoError(t, os.WriteFile(file, []byte("paths:\n  work_dir: build\n"), 0644))

	e, err := loadEnvFrom(root, file, true)
	require.NoError(t, err)

	assert.Equal(t, filepath.Join(root, "build", "plan.json"), e.cfg.PlanPath(root))
	assert.True(t, e.logger.Core().Enabled(zapcore.DebugLevel), "verbose enables debug")
}

func TestLoadEnv_InvalidConfig(t *testing.T) {
	t.Parallel()

	root := t.TempDir()
	require.NoError(t, os.MkdirAll(filepath.Join(root, ".hoist"), 0755))
	require.NoError(t, os.WriteFile(filepath.Join(root, ".hoist", "config.yml"), []byte("analyzer:\n  mode: remote\n"), 0644))

	_, err := loadEnvFrom(root, "", false)
	assert.ErrorIs(t, err, config.ErrInvalidMode)
}

func TestBuildController_RunWithHistory(t *testing.T) {
	t.Parallel()

	e := newTestEnv(t, "")
	modelPath := writeModelFile(t, e.rootDir)

	var seen analyzer.Request
	an := analyzer.Func(func(ctx context.Context, req analyzer.Request) error {
		seen = req
		return os.WriteFile(req.PlanPath, []byte(vehiclePlan), 0644)
	})

	var out bytes.Buffer
	ctrl, closeFn, err := buildController(e, an, NewCLIProgressReporter(&out, false))
	require.NoError(t, err)

	res, err := ctrl.Run(context.Background(), modelPath)
	require.NoError(t, err)
	closeFn()

	assert.Equal(t, e.cfg.ContextPath(e.rootDir), seen.ContextPath)
	assert.Equal(t, e.cfg.WorkDir(e.rootDir), seen.WorkDir)
	assert.Equal(t, "1 of 1 actions applied", res.Message)
	assert.Equal(t, modelstore.RefactoredPath(modelPath), res.OutputPath)
	assert.NotEmpty(t, res.RunID)
	assert.FileExists(t, res.OutputPath)
	assert.Contains(t, out.String(), "operation drive moved from Car")
	assert.Contains(t, out.String(), "attribute speed moved from Car")

	store, err := history.Open(e.cfg.HistoryPath(e.rootDir))
	require.NoError(t, err)
	defer store.Close()

	run, err := store.GetRun(context.Background(), res.RunID)
	require.NoError(t, err)
	assert.Equal(t, history.StatusSucceeded, run.Status)
	assert.Equal(t, 1, run.ActionsApplied)
}

func TestBuildController_HistoryDisabled(t *testing.T) {
	t.Parallel()

	e := newTestEnv(t, "history:\n  enabled: false\n")
	modelPath := writeModelFile(t, e.rootDir)

	ctrl, closeFn, err := buildController(e, nil, nil)
	require.NoError(t, err)
	defer closeFn()

	doc, err := ctrl.Extract(context.Background(), modelPath, "")
	require.NoError(t, err)
	assert.Equal(t, []string{"Car", "Truck"}, doc.Classes.Objects)
	assert.FileExists(t, e.cfg.ContextPath(e.rootDir))
	assert.NoFileExists(t, e.cfg.HistoryPath(e.rootDir))
}

func TestBuildApplier_UsesRefactorConfig(t *testing.T) {
	t.Parallel()

	e := newTestEnv(t, "refactor:\n  marker_patterns: [\"link_*\"]\n")

	applier, err := buildApplier(e, nil)
	require.NoError(t, err)
	require.NotNil(t, applier)
}

func TestBuildAnalyzer_SystemMode(t *testing.T) {
	t.Parallel()

	e := newTestEnv(t, "analyzer:\n  python: definitely-not-a-python\n")

	an, err := buildAnalyzer(e)
	require.NoError(t, err)

	err = an.Analyze(context.Background(), analyzer.Request{WorkDir: e.rootDir})
	assert.ErrorIs(t, err, analyzer.ErrPythonNotFound)
}

func TestCLIProgressReporter(t *testing.T) {
	t.Parallel()

	applied := refactor.ActionResult{
		Action: plan.Action{
			Kind:             plan.KindInterface,
			ConceptName:      "Drivable",
			ConcernedClasses: []string{"Car", "Truck"},
			Reason:           "both classes drive",
		},
		Applied:         true,
		MovedOperations: []string{"drive"},
		Linked:          []string{"Car", "Truck"},
	}
	skipped := refactor.ActionResult{
		Action: plan.Action{ConceptName: "Ghost", ConcernedClasses: []string{"Nope"}},
		Skip:   refactor.SkipRepresentativeMissing,
	}
	report := &refactor.Report{Actions: []refactor.ActionResult{applied, skipped}}

	var out bytes.Buffer
	r := NewCLIProgressReporter(&out, false)
	r.OnApplyStart(2)
	r.OnActionApplied(0, applied)
	r.OnActionApplied(1, skipped)
	r.OnApplyComplete(report, 1500*time.Millisecond)

	s := out.String()
	assert.Contains(t, s, "[1] created interface Drivable")
	assert.Contains(t, s, "operation drive moved from Car")
	assert.Contains(t, s, "reason: both classes drive")
	assert.Contains(t, s, "[2] Ghost skipped ("+string(refactor.SkipRepresentativeMissing)+")")
	assert.Contains(t, s, "Applied 1 of 2 actions")

	var quiet bytes.Buffer
	q := NewCLIProgressReporter(&quiet, true)
	q.OnApplyStart(2)
	q.OnActionApplied(0, applied)
	q.OnApplyComplete(report, time.Second)
	assert.Empty(t, quiet.String())
}

func TestWriteResult(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name     string
		result   *pipeline.Result
		contains []string
	}{
		{
			name:     "no plan after analyzer failure",
			result:   &pipeline.Result{NoPlan: true, Message: pipeline.MsgNoPlan, AnalyzerErr: analyzer.ErrAnalyzerFailed},
			contains: []string{"Analyzer failed", pipeline.MsgNoPlan},
		},
		{
			name:     "empty plan",
			result:   &pipeline.Result{Message: pipeline.MsgEmptyPlan},
			contains: []string{pipeline.MsgEmptyPlan},
		},
		{
			name: "applied",
			result: &pipeline.Result{
				Report:     &refactor.Report{},
				Message:    "1 of 1 actions applied",
				OutputPath: "/tmp/m-refactored.ecore",
				RunID:      "run-1",
			},
			contains: []string{"1 of 1 actions applied", "/tmp/m-refactored.ecore", "run-1"},
		},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			var out bytes.Buffer
			writeResult(&out, tt.result)
			for _, want := range tt.contains {
				assert.Contains(t, out.String(), want)
			}
		})
	}
}

func TestWriteActions(t *testing.T) {
	t.Parallel()

	var out bytes.Buffer
	writeActions(&out, []*history.ActionRecord{
		{
			Seq:             0,
			Kind:            "CLASS",
			ConceptName:     "Vehicle",
			Representative:  "Car",
			MovedOperations: []string{"drive"},
			MovedAttributes: []string{"speed"},
			Rationale:       "shared motion",
		},
		{Seq: 1, Kind: "INTERFACE", ConceptName: "Ghost", SkipReason: string(refactor.SkipRepresentativeMissing)},
	})

	s := out.String()
	assert.Contains(t, s, "[1] CLASS Vehicle from Car (applied)")
	assert.Contains(t, s, "operations: drive")
	assert.Contains(t, s, "attributes: speed")
	assert.Contains(t, s, "reason: shared motion")
	assert.Contains(t, s, "[2] INTERFACE Ghost from  (skipped: "+string(refactor.SkipRepresentativeMissing)+")")
	assert.Equal(t, 1, strings.Count(s, "reason:"))
}

func TestWriteDocumentSummary(t *testing.T) {
	t.Parallel()

	m, err := modelstore.New().Load(writeModelFile(t, t.TempDir()))
	require.NoError(t, err)
	doc := rcft.Extract(m)

	var out bytes.Buffer
	writeDocumentSummary(&out, doc, true)

	s := out.String()
	assert.Contains(t, s, rcft.ClassesContext)
	assert.Contains(t, s, rcft.TypesContext)
	assert.Contains(t, s, rcft.DependenciesRelation)
	assert.Contains(t, s, "Car: ")
}

type fakeWatcher struct {
	changes []string
}

func (f *fakeWatcher) Start(ctx context.Context, callback func(path string)) error {
	for _, c := range f.changes {
		callback(c)
	}
	return nil
}

func (f *fakeWatcher) Stop() error { return nil }

func TestWatchModel(t *testing.T) {
	t.Parallel()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	fw := &fakeWatcher{changes: []string{"/m.ecore", "/m.ecore"}}

	var processed []string
	process := func(ctx context.Context, path string) {
		processed = append(processed, path)
		if len(processed) == 3 {
			cancel()
		}
	}

	var out bytes.Buffer
	require.NoError(t, watchModel(ctx, &out, fw, process, "m.ecore"))

	assert.Equal(t, []string{"m.ecore", "/m.ecore", "/m.ecore"}, processed)
	assert.Contains(t, out.String(), "Watching m.ecore")
}

// Commands below share rootCmd and are not run in parallel.

func TestVersionCommand(t *testing.T) {
	var out bytes.Buffer
	rootCmd.SetOut(&out)
	rootCmd.SetArgs([]string{"version"})
	defer rootCmd.SetArgs(nil)

	require.NoError(t, rootCmd.Execute())
	assert.Contains(t, out.String(), "Hoist "+Version)
}

func TestInspectCommand(t *testing.T) {
	dir := t.TempDir()
	m, err := modelstore.New().Load(writeModelFile(t, dir))
	require.NoError(t, err)

	docPath := filepath.Join(dir, "context.rcft")
	require.NoError(t, os.WriteFile(docPath, []byte(rcft.Encode(rcft.Extract(m))), 0644))

	var out bytes.Buffer
	rootCmd.SetOut(&out)
	rootCmd.SetArgs([]string{"inspect", docPath})
	defer rootCmd.SetArgs(nil)

	require.NoError(t, rootCmd.Execute())
	assert.Contains(t, out.String(), rcft.ClassesContext)

	rootCmd.SetArgs([]string{"inspect", filepath.Join(dir, "missing.rcft")})
	assert.Error(t, rootCmd.Execute())
}
