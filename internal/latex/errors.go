package latex

import "fmt"

// FailureKind tells a missing compiler apart from a failed compilation.
type FailureKind int

const (
	// KindFailed means the compiler ran and did not produce a PDF.
	KindFailed FailureKind = iota
	// KindMissing means the compiler executable could not be started.
	KindMissing
)

func (k FailureKind) String() string {
	if k == KindMissing {
		return "compiler missing"
	}
	return "compilation failed"
}

// CompilationError represents a LaTeX compilation failure. Log holds the
// compiler's log file, or its console output when no log was written.
type CompilationError struct {
	Kind    FailureKind
	Message string
	Log     string
	Cause   error
}

func (e *CompilationError) Error() string {
	msg := fmt.Sprintf("LaTeX compilation error (%s): %s", e.Kind, e.Message)
	if e.Cause != nil {
		msg = fmt.Sprintf("%s: %v", msg, e.Cause)
	}
	if e.Log != "" {
		msg += "\n" + e.Log
	}
	return msg
}

func (e *CompilationError) Unwrap() error {
	return e.Cause
}
