package runner

import (
	"errors"
	"fmt"
	"path/filepath"
	"runtime"
	"strings"

	"github.com/bmatcuk/doublestar/v4"
	"github.com/detent/workflow-doctor/internal/workflow"
)

// WorkflowsDir is the default directory containing workflow files
const WorkflowsDir = ".github/workflows"

// ErrInvalidConfig wraps every Config validation failure.
var ErrInvalidConfig = errors.New("invalid configuration")

// Config configures one analysis run.
type Config struct {
	// WorkflowsDir is the directory scanned for workflow files
	// (e.g., ".github/workflows")
	WorkflowsDir string

	// WorkflowFile is an optional workflow file name inside WorkflowsDir
	// (e.g., "ci.yml"). If empty, every discovered workflow is analyzed.
	WorkflowFile string

	// Ignore lists doublestar patterns matched against workflow file names.
	Ignore []string

	// Parallel is the number of files analyzed at once. Zero means GOMAXPROCS.
	Parallel int

	// FailFast stops the run at the first file that fails to parse and
	// discards every report.
	FailFast bool
}

// Validate checks the configuration and fills defaults for optional fields.
func (c *Config) Validate() error {
	if c.WorkflowsDir == "" {
		c.WorkflowsDir = WorkflowsDir
	}

	if c.WorkflowFile != "" {
		if strings.ContainsAny(c.WorkflowFile, `/\`) || c.WorkflowFile != filepath.Base(c.WorkflowFile) {
			return fmt.Errorf("%w: workflow %q must be a file name inside the workflows directory", ErrInvalidConfig, c.WorkflowFile)
		}
		if !workflow.IsWorkflowFile(c.WorkflowFile) {
			return fmt.Errorf("%w: workflow %q must have a .yml or .yaml extension", ErrInvalidConfig, c.WorkflowFile)
		}
	}

	for _, pattern := range c.Ignore {
		if !doublestar.ValidatePattern(pattern) {
			return fmt.Errorf("%w: invalid ignore pattern %q", ErrInvalidConfig, pattern)
		}
	}

	if c.Parallel < 0 {
		return fmt.Errorf("%w: parallel must not be negative", ErrInvalidConfig)
	}
	if c.Parallel == 0 {
		c.Parallel = runtime.GOMAXPROCS(0)
	}
	// Only the first failure in path order may be reported, so fail-fast
	// runs sequentially.
	if c.FailFast {
		c.Parallel = 1
	}

	return nil
}

// ignored reports whether a workflow file name matches any ignore pattern.
func (c *Config) ignored(name string) bool {
	for _, pattern := range c.Ignore {
		if ok, err := doublestar.Match(pattern, name); err == nil && ok {
			return true
		}
	}
	return false
}
