package report

import (
	"encoding/json"
	"io"
	"time"

	"github.com/varalys/gitaudit/internal/types"
)

type sarif struct {
	Schema  string     `json:"$schema"`
	Version string     `json:"version"`
	Runs    []sarifRun `json:"runs"`
}

type sarifRun struct {
	Tool    sarifTool     `json:"tool"`
	Results []sarifResult `json:"results"`
}

type sarifTool struct {
	Driver sarifDriver `json:"driver"`
}

type sarifDriver struct {
	Name    string      `json:"name"`
	Version string      `json:"version"`
	Rules   []sarifRule `json:"rules"`
}

type sarifRule struct {
	ID               string       `json:"id"`
	ShortDescription sarifMessage `json:"shortDescription"`
}

type sarifResult struct {
	RuleID     string         `json:"ruleId"`
	RuleIndex  int            `json:"ruleIndex"`
	Level      string         `json:"level"`
	Message    sarifMessage   `json:"message"`
	Locations  []sarifLoc     `json:"locations,omitempty"`
	Properties map[string]any `json:"properties,omitempty"`
}

type sarifMessage struct {
	Text string `json:"text"`
}

type sarifLoc struct {
	PhysicalLocation sarifPhys `json:"physicalLocation"`
}

type sarifPhys struct {
	ArtifactLocation sarifArt     `json:"artifactLocation"`
	Region           *sarifRegion `json:"region,omitempty"`
}

type sarifArt struct {
	URI string `json:"uri"`
}

type sarifRegion struct {
	StartLine int           `json:"startLine"`
	Snippet   *sarifMessage `json:"snippet,omitempty"`
}

func sevToLevel(s types.Severity) string {
	switch s {
	case types.SevCritical, types.SevHigh:
		return "error"
	case types.SevMed:
		return "warning"
	default:
		return "note"
	}
}

// ruleID names the check behind a finding: the pattern rule for secrets,
// the category otherwise.
func ruleID(f types.Finding) string {
	if f.Category == types.CatSecret && f.Pattern != "" {
		return f.Pattern
	}
	return string(f.Category)
}

// WriteSARIF writes findings as SARIF 2.1.0 to the provided writer.
func WriteSARIF(w io.Writer, findings []types.Finding) error {
	run := sarifRun{
		Tool:    sarifTool{Driver: sarifDriver{Name: "gitaudit", Version: time.Now().Format("2006.01.02")}},
		Results: []sarifResult{},
	}
	index := map[string]int{}
	for _, f := range findings {
		id := ruleID(f)
		i, ok := index[id]
		if !ok {
			i = len(run.Tool.Driver.Rules)
			index[id] = i
			run.Tool.Driver.Rules = append(run.Tool.Driver.Rules, sarifRule{
				ID:               id,
				ShortDescription: sarifMessage{Text: f.Title},
			})
		}
		res := sarifResult{
			RuleID:    id,
			RuleIndex: i,
			Level:     sevToLevel(f.Severity),
			Message:   sarifMessage{Text: f.Description},
			Properties: map[string]any{
				"severity": string(f.Severity),
				"category": string(f.Category),
				"context":  f.Context,
			},
		}
		if f.File != "" {
			loc := sarifLoc{PhysicalLocation: sarifPhys{ArtifactLocation: sarifArt{URI: f.File}}}
			if f.Line > 0 {
				loc.PhysicalLocation.Region = &sarifRegion{StartLine: f.Line}
				if f.Match != "" {
					loc.PhysicalLocation.Region.Snippet = &sarifMessage{Text: maskValue(f.Match)}
				}
			}
			res.Locations = []sarifLoc{loc}
		}
		run.Results = append(run.Results, res)
	}
	doc := sarif{
		Schema:  "https://json.schemastore.org/sarif-2.1.0.json",
		Version: "2.1.0",
		Runs:    []sarifRun{run},
	}
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(doc)
}
