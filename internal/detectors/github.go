package detectors

import "github.com/varalys/gitaudit/internal/types"

var vcsRules = []builtin{
	{
		name:        "github_pat",
		pattern:     `\b(?:ghp_[A-Za-z0-9]{36}|github_pat_[A-Za-z0-9_]{82})\b`,
		severity:    types.SevCritical,
		description: "GitHub Personal Access Token",
		keywords:    []string{"ghp_", "github_pat_"},
	},
	{
		name:        "github_oauth",
		pattern:     `\bgho_[A-Za-z0-9]{36}\b`,
		severity:    types.SevCritical,
		description: "GitHub OAuth Token",
		keywords:    []string{"gho_"},
	},
}
