package archive

import "fmt"

// ExportError aborts an export: unsupported mode or a failure while writing
// the container.
type ExportError struct {
	Message string
}

func (e *ExportError) Error() string {
	return e.Message
}

func exportErrorf(format string, args ...any) error {
	return &ExportError{Message: fmt.Sprintf(format, args...)}
}

// ImportError aborts the whole import. Non-fatal issues are reported as
// warning strings instead and must never be promoted to an ImportError.
type ImportError struct {
	Message string
}

func (e *ImportError) Error() string {
	return e.Message
}

func importErrorf(format string, args ...any) error {
	return &ImportError{Message: fmt.Sprintf(format, args...)}
}
