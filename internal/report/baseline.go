package report

import (
	"encoding/json"
	"fmt"
	"os"
	"strconv"
	"strings"

	xxhash "github.com/cespare/xxhash/v2"

	"github.com/varalys/gitaudit/internal/types"
)

// Baseline holds fingerprints of accepted findings.
type Baseline struct {
	Items map[string]bool `json:"items"`
}

// LoadBaseline reads a baseline file. A missing file yields an empty
// baseline along with the read error.
func LoadBaseline(path string) (Baseline, error) {
	b := Baseline{Items: map[string]bool{}}
	f, err := os.ReadFile(path)
	if err != nil {
		return b, err
	}
	if err := json.Unmarshal(f, &b); err != nil {
		return Baseline{Items: map[string]bool{}}, fmt.Errorf("parse baseline %s: %w", path, err)
	}
	if b.Items == nil {
		b.Items = map[string]bool{}
	}
	return b, nil
}

func SaveBaseline(path string, findings []types.Finding) error {
	b := Baseline{Items: map[string]bool{}}
	for _, f := range findings {
		b.Items[Fingerprint(f)] = true
	}
	buf, err := json.MarshalIndent(b, "", "  ")
	if err != nil {
		return err
	}
	return os.WriteFile(path, buf, 0o644)
}

func FilterNewFindings(findings []types.Finding, base Baseline) []types.Finding {
	var out []types.Finding
	for _, f := range findings {
		if !base.Items[Fingerprint(f)] {
			out = append(out, f)
		}
	}
	return out
}

// Fingerprint identifies a finding independently of its line number, so
// edits above an accepted finding do not resurface it.
func Fingerprint(f types.Finding) string {
	key := strings.Join([]string{string(f.Category), f.Pattern, f.File, f.Context, f.Match, f.Title}, "|")
	return strconv.FormatUint(xxhash.Sum64String(key), 16)
}

// ShouldFail reports whether any finding is at or above the failOn
// severity. An unknown threshold falls back to medium.
func ShouldFail(findings []types.Finding, failOn string) bool {
	th, ok := types.ParseSeverity(strings.ToLower(strings.TrimSpace(failOn)))
	if !ok {
		th = types.SevMed
	}
	for _, f := range findings {
		if f.Severity.Rank() >= th.Rank() {
			return true
		}
	}
	return false
}
