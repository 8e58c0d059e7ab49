package report

import (
	"bytes"
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/varalys/gitaudit/internal/types"
)

type sarifDoc struct {
	Version string `json:"version"`
	Runs    []struct {
		Tool struct {
			Driver struct {
				Name  string `json:"name"`
				Rules []struct {
					ID string `json:"id"`
				} `json:"rules"`
			} `json:"driver"`
		} `json:"tool"`
		Results []struct {
			RuleID    string `json:"ruleId"`
			RuleIndex int    `json:"ruleIndex"`
			Level     string `json:"level"`
			Locations []struct {
				PhysicalLocation struct {
					ArtifactLocation struct {
						URI string `json:"uri"`
					} `json:"artifactLocation"`
					Region *struct {
						StartLine int `json:"startLine"`
						Snippet   *struct {
							Text string `json:"text"`
						} `json:"snippet"`
					} `json:"region"`
				} `json:"physicalLocation"`
			} `json:"locations"`
		} `json:"results"`
	} `json:"runs"`
}

func TestWriteSARIF(t *testing.T) {
	fs := append(sampleFindings(),
		types.Finding{Category: types.CatSecret, Title: "Potential Secret: GitHub Personal Access Token", Severity: types.SevCritical, File: "c.go", Line: 2, Pattern: "github_pat", Match: "ghp_x"},
		types.Finding{Category: types.CatAuditError, Title: "Audit Failed", Severity: types.SevHigh, Description: "boom"},
	)
	var buf bytes.Buffer
	require.NoError(t, WriteSARIF(&buf, fs))

	var doc sarifDoc
	require.NoError(t, json.Unmarshal(buf.Bytes(), &doc), buf.String())
	assert.Equal(t, "2.1.0", doc.Version)
	require.Len(t, doc.Runs, 1)
	run := doc.Runs[0]
	assert.Equal(t, "gitaudit", run.Tool.Driver.Name)

	var ids []string
	for _, r := range run.Tool.Driver.Rules {
		ids = append(ids, r.ID)
	}
	assert.Equal(t, []string{"large_file", "github_pat", "jwt", "audit_error"}, ids)

	require.Len(t, run.Results, 5)
	for _, r := range run.Results {
		assert.Equal(t, r.RuleID, ids[r.RuleIndex])
	}
	assert.Equal(t, "warning", run.Results[0].Level)
	assert.Nil(t, run.Results[0].Locations[0].PhysicalLocation.Region)
	assert.Equal(t, "error", run.Results[1].Level)
	assert.Equal(t, 10, run.Results[1].Locations[0].PhysicalLocation.Region.StartLine)
	assert.Equal(t, "ghp_…6789", run.Results[1].Locations[0].PhysicalLocation.Region.Snippet.Text)
	assert.Equal(t, 1, run.Results[3].RuleIndex)
	assert.Empty(t, run.Results[4].Locations)
	assert.Equal(t, "error", run.Results[4].Level)
}

func TestWriteSARIF_Empty(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, WriteSARIF(&buf, nil))
	var doc map[string]any
	require.NoError(t, json.Unmarshal(buf.Bytes(), &doc))
	runs := doc["runs"].([]any)
	results := runs[0].(map[string]any)["results"].([]any)
	assert.Empty(t, results)
}
