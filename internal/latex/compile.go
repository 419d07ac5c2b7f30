// Package latex drives an external LaTeX compiler to turn rendered markup
// into PDF bytes.
package latex

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/jonathan/fairguide/internal/logger"
)

const (
	// DefaultCommand is the compiler used when none is configured.
	DefaultCommand = "pdflatex"

	// CompilationTimeout is the maximum time to wait for one compiler run
	CompilationTimeout = 60 * time.Second

	// waitDelay bounds how long Run waits for output pipes after the
	// compiler was killed.
	waitDelay = 5 * time.Second
)

// Compiler runs one compiler invocation per Compile call, each in its own
// temporary directory. A Compiler holds no mutable state and may be shared.
type Compiler struct {
	// Command is the executable name or path, e.g. pdflatex or xelatex.
	Command string
	// Args are passed before the standard flags.
	Args []string
	// Timeout bounds a single run; CompilationTimeout when zero.
	Timeout time.Duration
	// TempRoot is the parent of the per-call directories; os.TempDir when empty.
	TempRoot string

	Logger *logger.Logger
}

// NewCompiler returns a compiler for command with default settings.
func NewCompiler(command string, log *logger.Logger) *Compiler {
	return &Compiler{Command: command, Logger: log}
}

// Compile writes markup into a fresh directory, runs the compiler once and
// returns the produced PDF. The directory is removed on every exit path.
func (c *Compiler) Compile(ctx context.Context, markup string) ([]byte, error) {
	log := c.Logger
	if log == nil {
		log = logger.Discard()
	}
	command := c.Command
	if command == "" {
		command = DefaultCommand
	}
	timeout := c.Timeout
	if timeout <= 0 {
		timeout = CompilationTimeout
	}

	workDir, err := os.MkdirTemp(c.TempRoot, "fairguide-*")
	if err != nil {
		return nil, fmt.Errorf("failed to create temporary working directory: %w", err)
	}
	defer func() {
		if err := os.RemoveAll(workDir); err != nil {
			log.Warn("failed to remove compile directory", "dir", workDir, "error", err)
		}
	}()

	job := uuid.NewString()
	texPath := filepath.Join(workDir, job+".tex")
	if err := os.WriteFile(texPath, []byte(markup), 0644); err != nil {
		return nil, fmt.Errorf("failed to write LaTeX file: %w", err)
	}

	ctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	args := append(append([]string{}, c.Args...),
		"-interaction=batchmode", "-halt-on-error", "-output-directory", workDir, texPath)
	cmd := exec.CommandContext(ctx, command, args...)
	cmd.Dir = workDir
	cmd.WaitDelay = waitDelay

	var stdout, stderr strings.Builder
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	start := time.Now()
	runErr := cmd.Run()
	log.Debug("compiler finished", "command", command, "job", job, "duration", time.Since(start), "error", runErr)

	if runErr != nil {
		if isNotFound(runErr) {
			return nil, &CompilationError{
				Kind:    KindMissing,
				Message: fmt.Sprintf("%s not found. Please install a LaTeX distribution (e.g., TeX Live)", command),
				Cause:   runErr,
			}
		}

		compileErr := &CompilationError{
			Kind:    KindFailed,
			Message: fmt.Sprintf("%s exited with an error", command),
			Log:     readLog(workDir, job, stdout.String()+stderr.String()),
			Cause:   runErr,
		}
		switch {
		case errors.Is(ctx.Err(), context.DeadlineExceeded):
			compileErr.Message = fmt.Sprintf("%s did not finish within %s", command, timeout)
		case ctx.Err() != nil:
			compileErr.Message = fmt.Sprintf("%s was cancelled", command)
		}
		return nil, compileErr
	}

	pdf, err := os.ReadFile(filepath.Join(workDir, job+".pdf"))
	if err != nil {
		return nil, &CompilationError{
			Kind:    KindFailed,
			Message: "PDF was not generated",
			Log:     readLog(workDir, job, stdout.String()+stderr.String()),
			Cause:   err,
		}
	}
	return pdf, nil
}

// readLog prefers the compiler's own log file over console output
func readLog(workDir, job, console string) string {
	data, err := os.ReadFile(filepath.Join(workDir, job+".log"))
	if err != nil || len(data) == 0 {
		return console
	}
	return string(data)
}

func isNotFound(err error) bool {
	var execErr *exec.Error
	if errors.As(err, &execErr) {
		return true
	}
	return errors.Is(err, os.ErrNotExist)
}
