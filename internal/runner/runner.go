package runner

import (
	"context"
	"errors"
	"fmt"
	"path/filepath"
	"time"

	"github.com/detent/workflow-doctor/internal/debug"
	"github.com/detent/workflow-doctor/internal/report"
	"github.com/detent/workflow-doctor/internal/rules"
	"github.com/detent/workflow-doctor/internal/sentry"
	"github.com/detent/workflow-doctor/internal/workflow"
	"golang.org/x/sync/errgroup"
)

// ErrWorkflowNotFound is returned when Config.WorkflowFile names a file that
// is not among the discovered workflows.
var ErrWorkflowNotFound = errors.New("workflow file not found")

// Result is the outcome for one workflow file. Exactly one of Report and Err
// is set.
type Result struct {
	Path   string
	Report *report.WorkflowReport
	Err    error
}

// Summary holds per-file results in sorted path order.
type Summary struct {
	WorkflowsDir string
	Results      []Result
}

// Failed returns the results whose file could not be parsed.
func (s *Summary) Failed() []Result {
	var failed []Result
	for _, r := range s.Results {
		if r.Err != nil {
			failed = append(failed, r)
		}
	}
	return failed
}

// Err joins every per-file error, or returns nil when all files parsed.
func (s *Summary) Err() error {
	var errs []error
	for _, r := range s.Failed() {
		errs = append(errs, r.Err)
	}
	return errors.Join(errs...)
}

// Runner analyzes a workflows directory.
type Runner struct {
	config Config
	rules  []rules.Rule
}

// New validates cfg and returns a Runner using the full rule set.
func New(cfg Config) (*Runner, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &Runner{config: cfg, rules: rules.All()}, nil
}

// Run discovers the workflow files and analyzes each one. Missing directory
// and config errors are returned directly. Per-file parse failures are
// recorded in the Summary, except with FailFast where the first one is
// returned and no Summary is produced.
func (r *Runner) Run(ctx context.Context) (*Summary, error) {
	paths, err := r.discover()
	if err != nil {
		return nil, err
	}
	debug.Log("discovered %d workflow(s) in %s", len(paths), r.config.WorkflowsDir)
	sentry.AddBreadcrumb("discover", fmt.Sprintf("%d workflows", len(paths)))

	summary := &Summary{
		WorkflowsDir: r.config.WorkflowsDir,
		Results:      make([]Result, len(paths)),
	}

	if r.config.FailFast {
		for i, path := range paths {
			if err := ctx.Err(); err != nil {
				return nil, err
			}
			res := r.analyzeFile(path)
			if res.Err != nil {
				return nil, res.Err
			}
			summary.Results[i] = res
		}
		return summary, nil
	}

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(r.config.Parallel)
	for i, path := range paths {
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			// Each goroutine owns its slot, so output order is path order.
			summary.Results[i] = r.analyzeFile(path)
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	return summary, nil
}

func (r *Runner) discover() ([]string, error) {
	discovered, err := workflow.DiscoverWorkflows(r.config.WorkflowsDir)
	if err != nil {
		return nil, err
	}

	var paths []string
	for _, path := range discovered {
		name := filepath.Base(path)
		if r.config.WorkflowFile != "" && name != r.config.WorkflowFile {
			continue
		}
		if r.config.ignored(name) {
			debug.Log("ignoring %s", path)
			continue
		}
		paths = append(paths, path)
	}

	if r.config.WorkflowFile != "" && len(paths) == 0 {
		return nil, fmt.Errorf("%w: %s in %s", ErrWorkflowNotFound, r.config.WorkflowFile, r.config.WorkflowsDir)
	}
	return paths, nil
}

func (r *Runner) analyzeFile(path string) Result {
	start := time.Now()

	doc, err := workflow.ParseWorkflowFile(path)
	if err != nil {
		debug.Log("parse failed for %s: %v", path, err)
		return Result{Path: path, Err: err}
	}

	rep := rules.Run(doc, r.rules)
	debug.Log("analyzed %s: %d jobs, %d findings in %s", path, len(doc.Jobs), len(rep.Findings), time.Since(start))
	return Result{Path: path, Report: rep}
}
