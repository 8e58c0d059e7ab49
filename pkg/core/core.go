package core

import (
	"context"

	"github.com/varalys/gitaudit/internal/config"
	"github.com/varalys/gitaudit/internal/detectors"
	"github.com/varalys/gitaudit/internal/engine"
	"github.com/varalys/gitaudit/internal/types"
)

// Re-export selected internal types as a stable public API surface.
// These are type aliases so external consumers can depend on a stable path.
type (
	Audit    = engine.Audit
	Option   = engine.Option
	Settings = config.Settings
	Finding  = types.Finding
	Severity = types.Severity
)

var (
	WithExecutor = engine.WithExecutor
	WithFs       = engine.WithFs
	WithLogger   = engine.WithLogger
)

// New builds an audit from typed settings. Start from DefaultSettings.
func New(s Settings, opts ...Option) *Audit { return engine.New(s, opts...) }

// NewFromOptions builds an audit from a loosely typed option map, the shape
// configuration files and integrations hand over.
func NewFromOptions(raw map[string]any, opts ...Option) *Audit {
	return engine.NewFromOptions(raw, opts...)
}

// DefaultSettings returns the default configuration.
func DefaultSettings() Settings { return config.Defaults() }

// Run is a convenience wrapper that audits the repository at path with
// default settings and returns its findings.
func Run(ctx context.Context, path string) ([]Finding, bool) {
	s := config.Defaults()
	s.RepositoryPath = path
	a := engine.New(s)
	clean := a.Run(ctx)
	return a.Findings(), clean
}

// DetectorIDs returns the names of the built-in rules.
func DetectorIDs() []string { return detectors.BuiltinIDs() }
