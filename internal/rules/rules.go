// Package rules holds the workflow hygiene checks. Each rule reads a parsed
// workflow and returns findings; rules never see each other's output.
package rules

import (
	"fmt"

	"github.com/detent/workflow-doctor/internal/actionref"
	"github.com/detent/workflow-doctor/internal/report"
	"github.com/detent/workflow-doctor/internal/workflow"
)

// Rule IDs
const (
	TopLevelPermissionsID = "top-level-permissions"
	JobPermissionsID      = "job-permissions"
	UsesReferenceID       = "uses-reference"
	ElevatedTriggerID     = "elevated-trigger"
)

// elevatedTrigger runs with base repository secrets on fork pull requests.
const elevatedTrigger = "pull_request_target"

// Rule is a named check over one workflow document.
type Rule struct {
	ID          string
	Description string
	Check       func(doc *workflow.Document) []report.Finding
}

// All returns the rules in the order their findings are reported.
func All() []Rule {
	return []Rule{
		{
			ID:          TopLevelPermissionsID,
			Description: "Workflows should declare top-level permissions.",
			Check:       CheckTopLevelPermissions,
		},
		{
			ID:          JobPermissionsID,
			Description: "Jobs without permissions inherit the workflow token scope.",
			Check:       CheckJobPermissions,
		},
		{
			ID:          UsesReferenceID,
			Description: "Action and reusable workflow references should be pinned.",
			Check:       CheckUsesReferences,
		},
		{
			ID:          ElevatedTriggerID,
			Description: "pull_request_target runs with elevated permissions.",
			Check:       CheckElevatedTrigger,
		},
	}
}

// Run applies every rule to doc and returns the populated report.
func Run(doc *workflow.Document, rules []Rule) *report.WorkflowReport {
	r := report.New(doc.Path, doc.Triggers)
	for _, rule := range rules {
		r.Add(rule.Check(doc)...)
	}
	return r
}

// CheckTopLevelPermissions warns when the workflow has no permissions key.
func CheckTopLevelPermissions(doc *workflow.Document) []report.Finding {
	if doc.HasTopLevelPermissions {
		return nil
	}
	return []report.Finding{{
		Severity: report.SeverityWarning,
		RuleID:   TopLevelPermissionsID,
		Message:  "Workflow does not declare top-level `permissions`. Define minimal permissions to avoid unexpected token scope.",
	}}
}

// CheckJobPermissions notes every job that inherits workflow permissions.
func CheckJobPermissions(doc *workflow.Document) []report.Finding {
	var findings []report.Finding
	for _, job := range doc.Jobs {
		if job.HasPermissions {
			continue
		}
		findings = append(findings, report.Finding{
			Severity: report.SeverityInfo,
			RuleID:   JobPermissionsID,
			Message: fmt.Sprintf("Job `%s` inherits workflow permissions. "+
				"If it needs fewer privileges, set job-specific `permissions`.", job.Name),
			Job: job.Name,
		})
	}
	return findings
}

// CheckUsesReferences classifies each job and step reference in document order.
func CheckUsesReferences(doc *workflow.Document) []report.Finding {
	var findings []report.Finding
	for _, job := range doc.Jobs {
		if job.HasUses {
			location := fmt.Sprintf("job `%s`", job.Name)
			if f, ok := referenceFinding(location, job.Uses); ok {
				f.Job = job.Name
				findings = append(findings, f)
			}
		}
		for _, step := range job.Steps {
			if !step.HasUses {
				continue
			}
			location := fmt.Sprintf("step `%s` in job `%s`", step.DisplayName, job.Name)
			if f, ok := referenceFinding(location, step.Uses); ok {
				f.Job, f.Step = job.Name, step.DisplayName
				findings = append(findings, f)
			}
		}
	}
	return findings
}

// referenceFinding returns false for tagged references, which are accepted
// without comment.
func referenceFinding(location, ref string) (report.Finding, bool) {
	f := report.Finding{RuleID: UsesReferenceID, Severity: report.SeverityWarning}
	switch actionref.Classify(ref) {
	case actionref.Unpinned:
		f.Message = fmt.Sprintf("%s references `%s` without a version. "+
			"Pin to a tag or commit to avoid unexpected updates.", location, ref)
	case actionref.FloatingBranch:
		f.Message = fmt.Sprintf("%s uses floating branch `%s`. "+
			"Prefer a stable release or commit SHA.", location, ref)
	case actionref.FloatingTag:
		f.Message = fmt.Sprintf("%s uses floating tag `%s`. "+
			"Pin to a specific version or commit for reproducibility.", location, ref)
	case actionref.PinnedSHA:
		f.Severity = report.SeverityInfo
		f.Message = fmt.Sprintf("%s pins `%s` to a specific commit, which is reproducible.", location, ref)
	default:
		return report.Finding{}, false
	}
	return f, true
}

// CheckElevatedTrigger warns on pull_request_target regardless of pinning.
func CheckElevatedTrigger(doc *workflow.Document) []report.Finding {
	if !doc.HasTrigger(elevatedTrigger) {
		return nil
	}
	return []report.Finding{{
		Severity: report.SeverityWarning,
		RuleID:   ElevatedTriggerID,
		Message: "`pull_request_target` runs with elevated permissions. " +
			"Ensure all referenced actions are pinned and inputs validated.",
	}}
}
