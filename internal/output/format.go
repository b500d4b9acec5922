package output

import (
	"fmt"
	"io"
	"strings"

	"github.com/detent/workflow-doctor/internal/runner"
)

// Format selects a renderer.
type Format string

const (
	TextFormat  Format = "text"
	JSONFormat  Format = "json"
	SARIFFormat Format = "sarif"
)

// Formats lists the accepted --output values.
var Formats = []Format{TextFormat, JSONFormat, SARIFFormat}

// ParseFormat validates an --output value.
func ParseFormat(s string) (Format, error) {
	for _, f := range Formats {
		if strings.EqualFold(s, string(f)) {
			return f, nil
		}
	}
	return "", fmt.Errorf("unknown output format %q (want text, json or sarif)", s)
}

// Write renders summary to w in the requested format.
func Write(w io.Writer, summary *runner.Summary, format Format, styled bool) error {
	switch format {
	case JSONFormat:
		return FormatJSON(w, summary)
	case SARIFFormat:
		return FormatSARIF(w, summary)
	default:
		FormatText(w, summary, styled)
		return nil
	}
}
