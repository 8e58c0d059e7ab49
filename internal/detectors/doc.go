// Package detectors holds the pattern library used by gitaudit. The library is
// a declarative table of named rules (regex, severity, description) built once
// from the built-in rules plus user-supplied custom patterns, and is read-only
// afterwards.
package detectors
