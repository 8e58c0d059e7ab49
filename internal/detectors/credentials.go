package detectors

import "github.com/varalys/gitaudit/internal/types"

var credentialRules = []builtin{
	{
		name:        "database_url",
		pattern:     `(?i)\b(?:mysql|mariadb|postgres(?:ql)?|mongodb(?:\+srv)?|rediss?|mssql|sqlserver|amqps?)://[^\s:@/'"]+:[^\s@/'"]+@[^\s/'"?]+`,
		severity:    types.SevHigh,
		description: "Database URL with embedded credentials",
		keywords:    []string{"://"},
	},
	{
		name:        "generic_api_key",
		pattern:     `(?i)api[_.\-]?key['"]?\s*[:=>]+\s*['"]?[A-Za-z0-9_\-]{20,}`,
		severity:    types.SevHigh,
		description: "Generic API Key",
		keywords:    []string{"api"},
	},
	{
		name:        "jwt",
		pattern:     `\beyJ[A-Za-z0-9_\-]{10,}\.[A-Za-z0-9_\-]{10,}\.[A-Za-z0-9_\-]{10,}`,
		severity:    types.SevMed,
		description: "JSON Web Token",
		keywords:    []string{"eyj"},
	},
	{
		name:        "password_in_url",
		pattern:     `(?i)\b(?:https?|ftps?|sftp|ssh|git)://[^\s:@/'"]+:[^\s@/'"]+@[^\s/'"?]+`,
		severity:    types.SevHigh,
		description: "Password in URL",
		keywords:    []string{"://"},
	},
	{
		name:        "password",
		pattern:     `(?i)(?:password|passwd|pwd)['"]?\s*[:=>]+\s*['"][^'"\s]{4,}['"]`,
		severity:    types.SevMed,
		description: "Hardcoded Password",
		keywords:    []string{"pass", "pwd"},
	},
}
