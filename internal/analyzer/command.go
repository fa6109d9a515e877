package analyzer

import (
	"context"
	"fmt"
	"os/exec"
	"sync"

	"github.com/kluctl/go-embed-python/python"
)

// CommandFactory builds the command that runs script with args. This allows
// for dependency injection in tests.
type CommandFactory func(ctx context.Context, script string, args ...string) (*exec.Cmd, error)

// SystemPython runs scripts with an interpreter from PATH (or an explicit path).
func SystemPython(interpreter string) CommandFactory {
	return func(ctx context.Context, script string, args ...string) (*exec.Cmd, error) {
		path, err := exec.LookPath(interpreter)
		if err != nil {
			return nil, fmt.Errorf("%w: %s: %w", ErrPythonNotFound, interpreter, err)
		}
		return exec.CommandContext(ctx, path, append([]string{script}, args...)...), nil
	}
}

// EmbeddedPython runs scripts with the Python distribution bundled in the
// binary. The runtime is extracted into runtimeDir on first use and reused
// across runs.
func EmbeddedPython(runtimeDir string) CommandFactory {
	runtime := &lazy[*python.EmbeddedPython]{}
	return func(ctx context.Context, script string, args ...string) (*exec.Cmd, error) {
		ep, err := runtime.get(func() (*python.EmbeddedPython, error) {
			return python.NewEmbeddedPythonWithTmpDir(runtimeDir, true)
		})
		if err != nil {
			return nil, fmt.Errorf("%w: failed to extract embedded python: %w", ErrPythonNotFound, err)
		}
		cmd, err := ep.PythonCmd(append([]string{script}, args...)...)
		if err != nil {
			return nil, fmt.Errorf("failed to create python command: %w", err)
		}
		return cmd, nil
	}
}

// lazy initializes a value once and caches the result, error included.
type lazy[T any] struct {
	once  sync.Once
	value T
	err   error
}

func (l *lazy[T]) get(init func() (T, error)) (T, error) {
	l.once.Do(func() {
		l.value, l.err = init()
	})
	return l.value, l.err
}
