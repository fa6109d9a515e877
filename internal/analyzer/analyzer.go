// Package analyzer runs the external relational concept analysis step that
// turns a context document into a refactoring plan.
package analyzer

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/exec"
	"path/filepath"
	"strings"
	"time"

	"go.uber.org/zap"
)

// Environment variables handed to the analyzer script.
const (
	EnvContextPath = "HOIST_CONTEXT_PATH"
	EnvPlanPath    = "HOIST_PLAN_PATH"
)

// OutputPrefix marks analyzer output lines in the log.
const OutputPrefix = "[PY]"

// killWaitDelay bounds how long Wait keeps copying output after the process
// was killed.
const killWaitDelay = 2 * time.Second

var (
	// ErrAnalyzerFailed indicates the analyzer process ran but did not succeed.
	ErrAnalyzerFailed = errors.New("analyzer failed")

	// ErrPythonNotFound indicates the interpreter could not be located or prepared.
	ErrPythonNotFound = errors.New("python interpreter not found")
)

// Request describes one analysis run.
type Request struct {
	ContextPath string // context document to analyze
	PlanPath    string // where the analyzer writes the plan
	WorkDir     string // working directory of the analyzer process
}

// Analyzer produces a plan document from a context document.
type Analyzer interface {
	Analyze(ctx context.Context, req Request) error
}

// ScriptAnalyzer runs a Python script as the analyzer. Paths are passed
// through the environment and the combined output is streamed to the logger
// line by line.
type ScriptAnalyzer struct {
	script  string
	args    []string
	timeout time.Duration
	logger  *zap.Logger
	factory CommandFactory
}

// Option configures a ScriptAnalyzer.
type Option func(*ScriptAnalyzer)

// WithLogger sets the logger that receives analyzer output.
func WithLogger(logger *zap.Logger) Option {
	return func(s *ScriptAnalyzer) {
		if logger != nil {
			s.logger = logger
		}
	}
}

// WithArgs appends extra arguments after the script path.
func WithArgs(args ...string) Option {
	return func(s *ScriptAnalyzer) {
		s.args = append(s.args, args...)
	}
}

// WithTimeout bounds a single run. Zero means no limit.
func WithTimeout(timeout time.Duration) Option {
	return func(s *ScriptAnalyzer) {
		s.timeout = timeout
	}
}

// WithCommandFactory replaces how the interpreter command is built.
func WithCommandFactory(factory CommandFactory) Option {
	return func(s *ScriptAnalyzer) {
		if factory != nil {
			s.factory = factory
		}
	}
}

// NewScriptAnalyzer creates an analyzer for script, run with the system
// python3 unless another CommandFactory is configured.
func NewScriptAnalyzer(script string, opts ...Option) *ScriptAnalyzer {
	s := &ScriptAnalyzer{
		script:  script,
		logger:  zap.NewNop(),
		factory: SystemPython("python3"),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Analyze runs the script and waits for it to exit.
func (s *ScriptAnalyzer) Analyze(ctx context.Context, req Request) error {
	if s.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, s.timeout)
		defer cancel()
	}

	script := s.script
	if abs, err := filepath.Abs(script); err == nil {
		script = abs
	}

	cmd, err := s.factory(ctx, script, s.args...)
	if err != nil {
		return err
	}
	if req.WorkDir != "" {
		cmd.Dir = req.WorkDir
	}
	env := cmd.Env
	if env == nil {
		env = os.Environ()
	}
	cmd.Env = append(env,
		EnvContextPath+"="+req.ContextPath,
		EnvPlanPath+"="+req.PlanPath,
	)

	if cmd.WaitDelay == 0 {
		cmd.WaitDelay = killWaitDelay
	}

	pr, pw := io.Pipe()
	cmd.Stdout = pw
	cmd.Stderr = pw

	s.logger.Info("starting analyzer",
		zap.String("script", script),
		zap.String("context", req.ContextPath),
		zap.String("plan", req.PlanPath))

	if err := cmd.Start(); err != nil {
		pw.Close()
		if errors.Is(err, exec.ErrNotFound) || errors.Is(err, os.ErrNotExist) {
			return fmt.Errorf("%w: %w", ErrPythonNotFound, err)
		}
		return fmt.Errorf("failed to start analyzer: %w", err)
	}

	streamDone := make(chan struct{})
	go func() {
		defer close(streamDone)
		s.stream(pr)
	}()

	// Commands from CommandFactory are not necessarily bound to ctx.
	waitDone := make(chan struct{})
	go func() {
		select {
		case <-ctx.Done():
			if cmd.Process != nil {
				_ = cmd.Process.Kill()
			}
		case <-waitDone:
		}
	}()

	waitErr := cmd.Wait()
	close(waitDone)
	pw.Close()
	<-streamDone

	if ctxErr := ctx.Err(); ctxErr != nil {
		return fmt.Errorf("%w: %w", ErrAnalyzerFailed, ctxErr)
	}
	if waitErr != nil {
		var exitErr *exec.ExitError
		if errors.As(waitErr, &exitErr) {
			return fmt.Errorf("%w: exit code %d", ErrAnalyzerFailed, exitErr.ExitCode())
		}
		return fmt.Errorf("%w: %w", ErrAnalyzerFailed, waitErr)
	}

	s.logger.Info("analyzer finished")
	return nil
}

func (s *ScriptAnalyzer) stream(r io.Reader) {
	scanner := bufio.NewScanner(r)
	scanner.Buffer(make([]byte, 64*1024), 1024*1024)
	for scanner.Scan() {
		line := strings.TrimRight(scanner.Text(), "\r")
		s.logger.Info(OutputPrefix + " " + line)
	}
	// Drain whatever is left so the child never blocks on a full pipe.
	_, _ = io.Copy(io.Discard, r)
}

// Func adapts a function to the Analyzer interface.
type Func func(ctx context.Context, req Request) error

// Analyze calls f.
func (f Func) Analyze(ctx context.Context, req Request) error {
	return f(ctx, req)
}

var _ Analyzer = (*ScriptAnalyzer)(nil)
var _ Analyzer = Func(nil)

