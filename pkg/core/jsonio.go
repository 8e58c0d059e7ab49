package core

import (
	"encoding/json"
	"fmt"
	"io"

	"github.com/varalys/gitaudit/internal/git"
	"github.com/varalys/gitaudit/internal/report"
)

// Report is the JSON document written for one audit run.
type Report struct {
	Audit      string           `json:"audit"`
	Repository Repository       `json:"repository"`
	Summary    map[Severity]int `json:"summary"`
	Findings   []Finding        `json:"findings"`
}

// Repository identifies the audited checkout. Name, Branch and Commit are
// best effort and omitted when git cannot resolve them.
type Repository struct {
	Path   string `json:"path"`
	Name   string `json:"name,omitempty"`
	Branch string `json:"branch,omitempty"`
	Commit string `json:"commit,omitempty"`
}

// NewReport wraps findings produced by a, which may be a baseline-filtered
// subset of a.Findings().
func NewReport(a *Audit, findings []Finding) Report {
	if findings == nil {
		findings = []Finding{}
	}
	path := a.Settings().RepositoryPath
	name, commit, branch := git.RepoMetadata(path)
	return Report{
		Audit:      a.Name(),
		Repository: Repository{Path: path, Name: name, Branch: branch, Commit: commit},
		Summary:    report.Counts(findings),
		Findings:   findings,
	}
}

// WriteReport pretty-prints r as JSON.
func WriteReport(w io.Writer, r Report) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(r)
}

// ReadReport decodes a document written by WriteReport.
func ReadReport(r io.Reader) (Report, error) {
	var rep Report
	if err := json.NewDecoder(r).Decode(&rep); err != nil {
		return Report{}, fmt.Errorf("decode report: %w", err)
	}
	return rep, nil
}
