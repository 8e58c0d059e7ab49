package types

// Severity is a coarse-grained risk level for a finding.
type Severity string

const (
	SevLow      Severity = "low"
	SevMed      Severity = "medium"
	SevHigh     Severity = "high"
	SevCritical Severity = "critical"
)

// Rank orders severities so that critical > high > medium > low. Unknown
// values rank below low.
func (s Severity) Rank() int {
	switch s {
	case SevCritical:
		return 4
	case SevHigh:
		return 3
	case SevMed:
		return 2
	case SevLow:
		return 1
	}
	return 0
}

// ParseSeverity maps a case-sensitive severity name to a Severity.
func ParseSeverity(s string) (Severity, bool) {
	switch Severity(s) {
	case SevLow, SevMed, SevHigh, SevCritical:
		return Severity(s), true
	}
	return "", false
}

// Category groups findings by the kind of check that produced them.
type Category string

const (
	CatSecret        Category = "secret"
	CatSensitiveFile Category = "sensitive_file"
	CatLargeFile     Category = "large_file"
	CatBinaryFile    Category = "binary_file"
	CatAuditError    Category = "audit_error"
)

// SourceLabel identifies findings produced by the git security audit.
const SourceLabel = "Git Security Audit"

// Finding describes one reported issue: a pattern match, a sensitive or
// oversized tracked file, or a failure of the audit itself. Line is 0 when
// the finding has no line. Match holds the truncated matched text only.
type Finding struct {
	Category    Category `json:"category"`
	Title       string   `json:"title"`
	Description string   `json:"description"`
	Severity    Severity `json:"severity"`
	File        string   `json:"file,omitempty"`
	Line        int      `json:"line,omitempty"`
	Context     string   `json:"context,omitempty"`
	Pattern     string   `json:"pattern,omitempty"`
	Match       string   `json:"match,omitempty"`
	Source      string   `json:"source"`
}
