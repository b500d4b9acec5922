package workflow

// Document is the analysis view of one workflow file.
type Document struct {
	Path string

	// Triggers holds the names under `on`, deduplicated, in document order.
	Triggers []string

	// HasTopLevelPermissions is true when the `permissions` key is present,
	// even if its value is empty.
	HasTopLevelPermissions bool

	// Jobs are in document order. Entries under `jobs` that are not mappings
	// are skipped.
	Jobs []Job
}

// Job represents a job in a workflow
type Job struct {
	Name           string
	HasPermissions bool

	// Uses is set when the job calls a reusable workflow.
	Uses    string
	HasUses bool

	Steps []Step
}

// Step represents a step in a job
type Step struct {
	// DisplayName is the step name, else its id, else "unnamed step".
	DisplayName string

	// Uses is the action reference. Steps without one run commands.
	Uses    string
	HasUses bool
}

// HasTrigger reports whether the document is triggered by event.
func (d *Document) HasTrigger(event string) bool {
	for _, t := range d.Triggers {
		if t == event {
			return true
		}
	}
	return false
}
