package output

import (
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/detent/workflow-doctor/internal/runner"
	"github.com/detent/workflow-doctor/internal/workflow"
)

var (
	headerStyle  = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("14"))
	warningStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("214"))
	successStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("42"))
	errorStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("196"))
)

// FormatText writes one rendered report per workflow, each followed by a
// blank line. Files that failed to parse are shown as an error block in
// their place. Styling is applied only when styled is true.
func FormatText(w io.Writer, summary *runner.Summary, styled bool) {
	if len(summary.Results) == 0 {
		_, _ = fmt.Fprintf(w, "No workflows found in %s\n", summary.WorkflowsDir)
		return
	}

	for _, res := range summary.Results {
		block := renderResult(res)
		if styled {
			block = styleBlock(block)
		}
		_, _ = fmt.Fprintln(w, block)
		_, _ = fmt.Fprintln(w)
	}
}

func renderResult(res runner.Result) string {
	if res.Err == nil {
		return res.Report.Render()
	}
	return fmt.Sprintf("== %s ==\nError: %s", res.Path, failureCause(res.Err))
}

// failureCause strips the path prefix a ParseError carries, since the block
// header already names the file.
func failureCause(err error) string {
	var parseErr *workflow.ParseError
	if errors.As(err, &parseErr) {
		return parseErr.Err.Error()
	}
	return err.Error()
}

func styleBlock(block string) string {
	lines := strings.Split(block, "\n")
	for i, line := range lines {
		switch {
		case strings.HasPrefix(line, "== "):
			lines[i] = headerStyle.Render(line)
		case line == "Warnings:":
			lines[i] = warningStyle.Render(line)
		case line == "No warnings detected.":
			lines[i] = successStyle.Render(line)
		case strings.HasPrefix(line, "Error: "):
			lines[i] = errorStyle.Render(line)
		}
	}
	return strings.Join(lines, "\n")
}
