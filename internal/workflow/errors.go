package workflow

import (
	"errors"
	"fmt"
)

var (
	// ErrDirNotFound is returned when the workflows directory does not exist.
	ErrDirNotFound = errors.New("workflow directory not found")

	// ErrParserUnavailable is returned by CheckParser when the YAML decoder
	// cannot handle a trivial document.
	ErrParserUnavailable = errors.New("YAML parser unavailable")

	// ErrMultipleDocuments is returned for a file holding more than one
	// non-empty YAML document. Only the first would be analyzed otherwise.
	ErrMultipleDocuments = errors.New("workflow file contains multiple YAML documents")
)

// DirNotFoundError reports a missing workflows directory.
type DirNotFoundError struct {
	Dir string
}

func (e *DirNotFoundError) Error() string {
	return fmt.Sprintf("Workflow directory not found: %s", e.Dir)
}

// Is lets errors.Is match ErrDirNotFound.
func (e *DirNotFoundError) Is(target error) bool {
	return target == ErrDirNotFound
}

// ParseError is returned when a single workflow file cannot be read or
// decoded. It never affects other files.
type ParseError struct {
	Path string
	Err  error
}

func (e *ParseError) Error() string {
	return fmt.Sprintf("%s: %v", e.Path, e.Err)
}

func (e *ParseError) Unwrap() error {
	return e.Err
}
