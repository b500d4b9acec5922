package workflow

import (
	"bytes"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sort"

	"github.com/detent/workflow-doctor/internal/debug"
)

const (
	// maxWorkflowSizeBytes is the maximum allowed size for a workflow file (1MB)
	maxWorkflowSizeBytes = 1 * 1024 * 1024

	// maxControlBytes is how many stray control characters a file may hold
	maxControlBytes = 10

	unnamedStep = "unnamed step"
)

// validateWorkflowContent rejects content that is not plausibly a workflow.
func validateWorkflowContent(data []byte) error {
	if len(data) > maxWorkflowSizeBytes {
		return fmt.Errorf("workflow file exceeds maximum size of %d bytes", maxWorkflowSizeBytes)
	}

	// Null bytes indicate binary content disguised as YAML
	if bytes.Contains(data, []byte{0x00}) {
		return fmt.Errorf("workflow file contains null bytes (binary content not allowed)")
	}

	controlCount := 0
	for _, b := range data {
		if b < 32 && b != '\n' && b != '\r' && b != '\t' {
			controlCount++
		}
	}
	if controlCount > maxControlBytes {
		return fmt.Errorf("workflow file contains excessive control characters (%d found)", controlCount)
	}

	return nil
}

// DiscoverWorkflows returns the sorted paths of the .yml and .yaml files
// directly inside dir. Subdirectories and symlinks are skipped. A dir that
// exists but is not a directory holds no workflows.
func DiscoverWorkflows(dir string) ([]string, error) {
	if dir == "" {
		return nil, fmt.Errorf("workflows directory cannot be empty")
	}

	info, err := os.Stat(dir)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, &DirNotFoundError{Dir: dir}
		}
		return nil, fmt.Errorf("reading workflows directory: %w", err)
	}
	if !info.IsDir() {
		debug.Log("%s is not a directory, no workflows to read", dir)
		return nil, nil
	}

	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, fmt.Errorf("reading workflows directory: %w", err)
	}

	var workflows []string
	for _, entry := range entries {
		if entry.IsDir() {
			continue
		}

		// Skip symlinks to prevent path traversal
		if entry.Type()&os.ModeSymlink != 0 {
			debug.Log("skipping symlink %s", filepath.Join(dir, entry.Name()))
			continue
		}

		if !IsWorkflowFile(entry.Name()) {
			continue
		}

		workflows = append(workflows, filepath.Join(dir, entry.Name()))
	}

	sort.Strings(workflows)
	return workflows, nil
}

// IsWorkflowFile reports whether name has a workflow file extension.
func IsWorkflowFile(name string) bool {
	ext := filepath.Ext(name)
	return ext == ".yml" || ext == ".yaml"
}

// ParseWorkflowFile reads and parses a single workflow file.
// Any failure is returned as a *ParseError.
func ParseWorkflowFile(path string) (*Document, error) {
	data, err := os.ReadFile(path) //nolint:gosec // path comes from DiscoverWorkflows
	if err != nil {
		return nil, &ParseError{Path: path, Err: fmt.Errorf("reading workflow file: %w", err)}
	}
	return ParseWorkflow(path, data)
}

// ParseWorkflow parses workflow content already in memory.
func ParseWorkflow(path string, data []byte) (*Document, error) {
	if err := validateWorkflowContent(data); err != nil {
		return nil, &ParseError{Path: path, Err: err}
	}

	root, err := decodeTree(data)
	if err != nil {
		return nil, &ParseError{Path: path, Err: fmt.Errorf("parsing workflow YAML: %w", err)}
	}

	return buildDocument(path, root), nil
}

// CheckParser verifies the YAML decoder works before any file is touched.
func CheckParser() error {
	root, err := decodeTree([]byte("on: push\njobs: {}\n"))
	if err != nil {
		return fmt.Errorf("%w: %v", ErrParserUnavailable, err)
	}
	if !root.Has("on") || !root.Has("jobs") {
		return fmt.Errorf("%w: probe document decoded without its keys", ErrParserUnavailable)
	}
	return nil
}

func buildDocument(path string, root *Node) *Document {
	doc := &Document{
		Path:                   path,
		HasTopLevelPermissions: root.Has("permissions"),
	}
	on, _ := root.Get("on")
	doc.Triggers = CollectTriggers(on)

	jobs, _ := root.Get("jobs")
	for _, pair := range jobs.Mapping() {
		if !pair.Value.IsMapping() {
			continue
		}
		doc.Jobs = append(doc.Jobs, buildJob(pair.Key, pair.Value))
	}
	return doc
}

func buildJob(name string, node *Node) Job {
	job := Job{
		Name:           name,
		HasPermissions: node.Has("permissions"),
	}
	if uses, ok := node.Get("uses"); ok {
		job.Uses, job.HasUses = uses.String(), true
	}

	steps, _ := node.Get("steps")
	for _, s := range steps.Sequence() {
		if !s.IsMapping() {
			continue
		}
		step := Step{DisplayName: stepDisplayName(s)}
		if uses, ok := s.Get("uses"); ok {
			step.Uses, step.HasUses = uses.String(), true
		}
		job.Steps = append(job.Steps, step)
	}
	return job
}

func stepDisplayName(step *Node) string {
	for _, key := range []string{"name", "id"} {
		v, ok := step.Get(key)
		if !ok {
			continue
		}
		if s := scalarOrEmpty(v); s != "" {
			return s
		}
	}
	return unnamedStep
}

// CollectTriggers extracts trigger names from the value of `on`: a scalar,
// a sequence, or a mapping keyed by event. Non-scalar sequence items are
// kept in flow form. Any other shape, including an absent key, yields no
// triggers.
func CollectTriggers(on *Node) []string {
	if on == nil {
		return nil
	}

	var names []string
	switch on.Kind {
	case KindString:
		names = []string{on.Str}
	case KindSequence:
		for _, item := range on.Items {
			names = append(names, item.String())
		}
	case KindMapping:
		for _, p := range on.Pairs {
			names = append(names, p.Key)
		}
	default:
		return nil
	}

	seen := make(map[string]bool, len(names))
	triggers := make([]string, 0, len(names))
	for _, n := range names {
		if n == "" || seen[n] {
			continue
		}
		seen[n] = true
		triggers = append(triggers, n)
	}
	return triggers
}

func scalarOrEmpty(n *Node) string {
	s, _ := n.Scalar()
	return s
}
