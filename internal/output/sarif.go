package output

import (
	"fmt"
	"io"
	"path/filepath"

	"github.com/detent/workflow-doctor/internal/report"
	"github.com/detent/workflow-doctor/internal/rules"
	"github.com/detent/workflow-doctor/internal/runner"
	"github.com/owenrumney/go-sarif/v2/sarif"
)

const (
	toolName = "workflow-doctor"
	toolURI  = "https://github.com/detent/workflow-doctor"

	// parseErrorRuleID marks files that could not be analyzed
	parseErrorRuleID = "parse-error"
)

// FormatSARIF writes the run as a SARIF 2.1.0 log with one run.
func FormatSARIF(w io.Writer, summary *runner.Summary) error {
	sarifLog, err := sarif.New(sarif.Version210)
	if err != nil {
		return fmt.Errorf("failed to create SARIF report: %w", err)
	}

	run := sarif.NewRunWithInformationURI(toolName, toolURI)
	for _, rule := range rules.All() {
		run.AddRule(rule.ID).WithDescription(rule.Description)
	}
	run.AddRule(parseErrorRuleID).WithDescription("The workflow file could not be parsed.")

	for _, res := range summary.Results {
		location := artifactLocation(res.Path)
		if res.Err != nil {
			run.AddResult(sarif.NewRuleResult(parseErrorRuleID).
				WithMessage(sarif.NewTextMessage(failureCause(res.Err))).
				WithLevel("error").
				WithLocations([]*sarif.Location{location}))
			continue
		}
		for _, f := range res.Report.Findings {
			run.AddResult(sarif.NewRuleResult(f.RuleID).
				WithMessage(sarif.NewTextMessage(f.Message)).
				WithLevel(sarifLevel(f.Severity)).
				WithLocations([]*sarif.Location{location}))
		}
	}

	sarifLog.AddRun(run)
	return sarifLog.PrettyWrite(w)
}

func artifactLocation(path string) *sarif.Location {
	return sarif.NewLocation().WithPhysicalLocation(
		sarif.NewPhysicalLocation().
			WithArtifactLocation(sarif.NewArtifactLocation().WithUri(filepath.ToSlash(path))),
	)
}

func sarifLevel(sev report.Severity) string {
	if sev == report.SeverityWarning {
		return "warning"
	}
	return "note"
}
