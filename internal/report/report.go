package report

import (
	"sort"
	"strings"
)

// Severity indicates how important a finding is.
type Severity string

const (
	SeverityWarning Severity = "warning"
	SeverityInfo    Severity = "info"
)

// Finding is one observation about a location in a workflow.
type Finding struct {
	Severity Severity `json:"severity"`
	RuleID   string   `json:"rule"`
	Message  string   `json:"message"`
	Job      string   `json:"job,omitempty"`  // empty for workflow-level findings
	Step     string   `json:"step,omitempty"` // empty for job-level findings
}

// WorkflowReport collects the findings for a single workflow file.
// Findings keep their insertion order.
type WorkflowReport struct {
	Path     string
	Triggers []string
	Findings []Finding
}

// New creates an empty report for path.
func New(path string, triggers []string) *WorkflowReport {
	return &WorkflowReport{
		Path:     path,
		Triggers: append([]string(nil), triggers...),
	}
}

// Add appends findings to the report.
func (r *WorkflowReport) Add(findings ...Finding) {
	r.Findings = append(r.Findings, findings...)
}

// Infos returns the info findings in emission order.
func (r *WorkflowReport) Infos() []Finding {
	return r.bySeverity(SeverityInfo)
}

// Warnings returns the warning findings in emission order.
func (r *WorkflowReport) Warnings() []Finding {
	return r.bySeverity(SeverityWarning)
}

func (r *WorkflowReport) bySeverity(sev Severity) []Finding {
	var out []Finding
	for _, f := range r.Findings {
		if f.Severity == sev {
			out = append(out, f)
		}
	}
	return out
}

// SortedTriggers returns a sorted copy of the trigger names.
func (r *WorkflowReport) SortedTriggers() []string {
	triggers := append([]string(nil), r.Triggers...)
	sort.Strings(triggers)
	return triggers
}

// Render formats the report as plain text without a trailing newline.
func (r *WorkflowReport) Render() string {
	lines := []string{"== " + r.Path + " =="}
	if len(r.Triggers) > 0 {
		lines = append(lines, "Triggers: "+strings.Join(r.SortedTriggers(), ", "))
	}

	infos := r.Infos()
	if len(infos) > 0 {
		lines = append(lines, "Info:")
		lines = appendItems(lines, infos)
	}

	warnings := r.Warnings()
	if len(warnings) > 0 {
		lines = append(lines, "Warnings:")
		lines = appendItems(lines, warnings)
	} else {
		lines = append(lines, "No warnings detected.")
	}

	return strings.Join(lines, "\n")
}

func appendItems(lines []string, findings []Finding) []string {
	for _, f := range findings {
		lines = append(lines, "  • "+f.Message)
	}
	return lines
}
