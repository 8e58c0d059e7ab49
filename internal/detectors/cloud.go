package detectors

import "github.com/varalys/gitaudit/internal/types"

var cloudRules = []builtin{
	{
		name:        "aws_access_key",
		pattern:     `\b(?:A3T[A-Z0-9]|AKIA|AGPA|AIDA|AROA|AIPA|ANPA|ANVA|ASIA)[A-Z0-9]{16}\b`,
		severity:    types.SevCritical,
		description: "AWS Access Key ID",
		keywords:    []string{"a3t", "akia", "agpa", "aida", "aroa", "aipa", "anpa", "anva", "asia"},
	},
	{
		name:        "aws_secret_key",
		pattern:     `(?i)aws[_.\-]?secret[_.\-]?(?:access[_.\-]?)?key['"]?\s*[:=>]+\s*['"]?[A-Za-z0-9/+=]{40}`,
		severity:    types.SevCritical,
		description: "AWS Secret Access Key",
		keywords:    []string{"aws"},
	},
	{
		name:        "gcp_service_account",
		pattern:     `"private_key"\s*:\s*"-----BEGIN (?:RSA )?PRIVATE KEY-----`,
		severity:    types.SevCritical,
		description: "GCP Service Account Private Key",
		keywords:    []string{"private_key"},
	},
	{
		name:        "azure_client_secret",
		pattern:     `(?i)azure[_.\-]?client[_.\-]?secret['"]?\s*[:=>]+\s*['"]?[A-Za-z0-9_~.\-]{34,40}`,
		severity:    types.SevCritical,
		description: "Azure Client Secret",
		keywords:    []string{"azure"},
	},
}
