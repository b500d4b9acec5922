package output

import (
	"encoding/json"
	"io"

	"github.com/detent/workflow-doctor/internal/report"
	"github.com/detent/workflow-doctor/internal/runner"
)

type jsonSummary struct {
	WorkflowsDir string         `json:"workflows_dir"`
	Workflows    []jsonWorkflow `json:"workflows"`
}

type jsonWorkflow struct {
	Path     string           `json:"path"`
	Triggers []string         `json:"triggers"`
	Findings []report.Finding `json:"findings"`
	Error    string           `json:"error,omitempty"`
}

// FormatJSON writes the run as indented JSON.
// Returns error if JSON marshaling or writing fails.
func FormatJSON(w io.Writer, summary *runner.Summary) error {
	out := jsonSummary{
		WorkflowsDir: summary.WorkflowsDir,
		Workflows:    make([]jsonWorkflow, 0, len(summary.Results)),
	}
	for _, res := range summary.Results {
		wf := jsonWorkflow{
			Path:     res.Path,
			Triggers: []string{},
			Findings: []report.Finding{},
		}
		if res.Err != nil {
			wf.Error = failureCause(res.Err)
		} else {
			wf.Triggers = append(wf.Triggers, res.Report.SortedTriggers()...)
			wf.Findings = append(wf.Findings, res.Report.Findings...)
		}
		out.Workflows = append(out.Workflows, wf)
	}

	encoder := json.NewEncoder(w)
	encoder.SetIndent("", "  ")
	return encoder.Encode(out)
}
