package domain

import (
	"fmt"
	"io"
	"strings"
)

// ReportWidth is the column the dotted object name is padded to
const ReportWidth = 80

// ChangeStatus tells whether an object is created or replaced
type ChangeStatus string

const (
	StatusNew     ChangeStatus = "new"
	StatusChanged ChangeStatus = "changed"
)

// Change is one object that the migration script will (re)create
type Change struct {
	Object      SqlObject
	CurrentText string // Definition currently in the database, empty for new objects
}

// Status returns new or changed
func (c Change) Status() ChangeStatus {
	if c.Object.IsNew {
		return StatusNew
	}
	return StatusChanged
}

// ReportLine renders the object name padded with dots followed by its status
func (c Change) ReportLine() string {
	name := c.Object.Name
	if pad := ReportWidth - len(name); pad > 0 {
		name += strings.Repeat(".", pad)
	}
	return name + string(c.Status())
}

// ChangeSet is the outcome of one reconciliation run
type ChangeSet struct {
	Changes []Change
	Script  string // Migration script, empty when there is nothing to apply
}

// HasChanges returns true if at least one object must be applied
func (s *ChangeSet) HasChanges() bool {
	return len(s.Changes) > 0
}

// Objects returns the changed objects in change set order
func (s *ChangeSet) Objects() []SqlObject {
	objects := make([]SqlObject, 0, len(s.Changes))
	for _, c := range s.Changes {
		objects = append(objects, c.Object)
	}
	return objects
}

// WriteReport prints one line per change, or "No changes found"
func (s *ChangeSet) WriteReport(w io.Writer) error {
	if !s.HasChanges() {
		_, err := fmt.Fprintln(w, "No changes found")
		return err
	}
	for _, c := range s.Changes {
		if _, err := fmt.Fprintln(w, c.ReportLine()); err != nil {
			return err
		}
	}
	return nil
}

// ChangeSummary counts changes by status and kind
type ChangeSummary struct {
	Total   int            `yaml:"total"`
	New     int            `yaml:"new"`
	Changed int            `yaml:"changed"`
	ByKind  map[string]int `yaml:"by_kind,omitempty"`
}

// Summary calculates the summary statistics
func (s *ChangeSet) Summary() ChangeSummary {
	summary := ChangeSummary{ByKind: make(map[string]int)}
	for _, c := range s.Changes {
		summary.Total++
		summary.ByKind[c.Object.Kind.String()]++
		if c.Object.IsNew {
			summary.New++
		} else {
			summary.Changed++
		}
	}
	return summary
}

// PlanReport is the machine readable form of a change set
type PlanReport struct {
	Summary ChangeSummary     `yaml:"summary"`
	Changes []PlanReportEntry `yaml:"changes"`
	Script  string            `yaml:"script,omitempty"`
}

// PlanReportEntry describes a single change
type PlanReportEntry struct {
	Name   string       `yaml:"name"`
	Kind   ObjectKind   `yaml:"kind"`
	Status ChangeStatus `yaml:"status"`
}

// Report converts the change set into a PlanReport
func (s *ChangeSet) Report(includeScript bool) PlanReport {
	report := PlanReport{
		Summary: s.Summary(),
		Changes: make([]PlanReportEntry, 0, len(s.Changes)),
	}
	for _, c := range s.Changes {
		report.Changes = append(report.Changes, PlanReportEntry{
			Name:   c.Object.Name,
			Kind:   c.Object.Kind,
			Status: c.Status(),
		})
	}
	if includeScript {
		report.Script = s.Script
	}
	return report
}
