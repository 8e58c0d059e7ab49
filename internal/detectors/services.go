package detectors

import "github.com/varalys/gitaudit/internal/types"

var serviceRules = []builtin{
	{
		name:        "slack_token",
		pattern:     `\bxox[baprs]-[0-9A-Za-z\-]{10,48}`,
		severity:    types.SevHigh,
		description: "Slack Token",
		keywords:    []string{"xox"},
	},
	{
		name:        "stripe_key",
		pattern:     `\b(?:sk|rk)_live_[0-9a-zA-Z]{24,99}`,
		severity:    types.SevCritical,
		description: "Stripe Live Secret Key",
		keywords:    []string{"_live_"},
	},
	{
		name:        "twilio_sid",
		pattern:     `\bAC[a-f0-9]{32}\b`,
		severity:    types.SevHigh,
		description: "Twilio Account SID",
		keywords:    []string{"ac"},
	},
	{
		name:        "sendgrid_key",
		pattern:     `\bSG\.[A-Za-z0-9_\-]{22}\.[A-Za-z0-9_\-]{43}`,
		severity:    types.SevHigh,
		description: "SendGrid API Key",
		keywords:    []string{"sg."},
	},
	{
		name:        "auth0_secret",
		pattern:     `(?i)auth0[_.\-]?(?:client[_.\-]?)?secret['"]?\s*[:=>]+\s*['"]?[A-Za-z0-9_\-]{32,}`,
		severity:    types.SevHigh,
		description: "Auth0 Client Secret",
		keywords:    []string{"auth0"},
	},
}
