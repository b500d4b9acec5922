package report

import (
	"strings"
	"testing"
)

func TestRender(t *testing.T) {
	tests := []struct {
		name     string
		triggers []string
		findings []Finding
		want     string
	}{
		{
			name: "no findings no triggers",
			want: "== ci.yml ==\nNo warnings detected.",
		},
		{
			name:     "triggers are sorted",
			triggers: []string{"push", "pull_request", "merge_group"},
			want:     "== ci.yml ==\nTriggers: merge_group, pull_request, push\nNo warnings detected.",
		},
		{
			name:     "info only still reports no warnings",
			findings: []Finding{{Severity: SeverityInfo, Message: "first"}, {Severity: SeverityInfo, Message: "second"}},
			want:     "== ci.yml ==\nInfo:\n  • first\n  • second\nNo warnings detected.",
		},
		{
			name:     "info block before warnings block in emission order",
			triggers: []string{"push"},
			findings: []Finding{
				{Severity: SeverityWarning, Message: "w1"},
				{Severity: SeverityInfo, Message: "i1"},
				{Severity: SeverityWarning, Message: "w2"},
			},
			want: "== ci.yml ==\nTriggers: push\nInfo:\n  • i1\nWarnings:\n  • w1\n  • w2",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r := New("ci.yml", tt.triggers)
			r.Add(tt.findings...)
			if got := r.Render(); got != tt.want {
				t.Errorf("Render() =\n%s\nwant\n%s", got, tt.want)
			}
		})
	}
}

func TestRender_Deterministic(t *testing.T) {
	r := New("ci.yml", []string{"b", "a"})
	r.Add(Finding{Severity: SeverityWarning, Message: "w"})

	first := r.Render()
	for i := 0; i < 3; i++ {
		if got := r.Render(); got != first {
			t.Fatalf("Render() differs on call %d", i)
		}
	}
	if !strings.Contains(first, "Triggers: a, b") {
		t.Errorf("Render() = %q, want sorted triggers", first)
	}
	if r.Triggers[0] != "b" {
		t.Error("Render() reordered the report's triggers")
	}
}

func TestNew_CopiesTriggers(t *testing.T) {
	triggers := []string{"push"}
	r := New("ci.yml", triggers)
	triggers[0] = "changed"
	if r.Triggers[0] != "push" {
		t.Errorf("Triggers[0] = %q, want push", r.Triggers[0])
	}
}

func TestBySeverity(t *testing.T) {
	r := New("ci.yml", nil)
	r.Add(
		Finding{Severity: SeverityInfo, Message: "i"},
		Finding{Severity: SeverityWarning, Message: "w"},
	)
	if got := r.Infos(); len(got) != 1 || got[0].Message != "i" {
		t.Errorf("Infos() = %+v", got)
	}
	if got := r.Warnings(); len(got) != 1 || got[0].Message != "w" {
		t.Errorf("Warnings() = %+v", got)
	}
}
