package engine

import (
	"context"
	"fmt"
	"os"
	"path/filepath"

	"github.com/sirupsen/logrus"
	"github.com/spf13/afero"

	"github.com/varalys/gitaudit/internal/config"
	"github.com/varalys/gitaudit/internal/detectors"
	"github.com/varalys/gitaudit/internal/git"
	"github.com/varalys/gitaudit/internal/gitexec"
	"github.com/varalys/gitaudit/internal/types"
)

// Audit scans one repository across the working tree, the staged index and
// recent history. It is not safe for concurrent use; separate instances are
// independent.
type Audit struct {
	settings config.Settings
	setupErr error

	exec gitexec.Executor
	fs   afero.Fs
	log  logrus.FieldLogger

	lib      *detectors.Library
	client   *git.Client
	filter   *Filter
	classify *classifier

	findings []types.Finding
}

// Option customizes an Audit.
type Option func(*Audit)

// WithExecutor replaces the command runner used for every git call.
func WithExecutor(ex gitexec.Executor) Option {
	return func(a *Audit) { a.exec = ex }
}

// WithFs sets the filesystem live files are read from. Paths handed to it
// are relative to the repository root.
func WithFs(fsys afero.Fs) Option {
	return func(a *Audit) { a.fs = fsys }
}

// WithLogger sets the logger phase failures and skipped files are reported
// to.
func WithLogger(l logrus.FieldLogger) Option {
	return func(a *Audit) { a.log = l }
}

// New builds an audit from parsed settings. It never fails: configuration
// and rule compilation errors are reported by Run.
func New(s config.Settings, opts ...Option) *Audit {
	return build(s, nil, opts)
}

// NewFromOptions parses a raw option map and builds an audit. A parse error
// is kept and reported by Run.
func NewFromOptions(raw map[string]any, opts ...Option) *Audit {
	s, err := config.Parse(raw)
	if err != nil {
		err = fmt.Errorf("invalid configuration: %w", err)
	}
	return build(s, err, opts)
}

func build(s config.Settings, setupErr error, opts []Option) *Audit {
	if abs, err := filepath.Abs(s.RepositoryPath); err == nil {
		s.RepositoryPath = abs
	}
	a := &Audit{settings: s, setupErr: setupErr}
	for _, o := range opts {
		o(a)
	}
	if a.log == nil {
		a.log = defaultLogger()
	}
	if a.fs == nil {
		a.fs = afero.NewBasePathFs(afero.NewOsFs(), s.RepositoryPath)
	}
	if a.setupErr != nil {
		return a
	}
	lib, err := detectors.New(s.CustomPatterns, s.RuleEnabled)
	if err != nil {
		a.setupErr = fmt.Errorf("invalid configuration: %w", err)
		return a
	}
	a.lib = lib
	a.client = git.New(s.RepositoryPath, a.exec, s.Timeout)
	a.filter = NewFilter(a.fs, s)
	a.classify = &classifier{fs: a.fs, maxSize: s.MaxFileSize, reportBinary: s.CheckBinaryFiles}
	return a
}

func defaultLogger() logrus.FieldLogger {
	l := logrus.New()
	l.SetOutput(os.Stderr)
	l.SetLevel(logrus.WarnLevel)
	return l
}

// Name identifies the audit in reports.
func (a *Audit) Name() string { return types.SourceLabel }

// Settings returns the settings the audit was built with.
func (a *Audit) Settings() config.Settings { return a.settings }

// Rules returns the names of the enabled rules, or nil when the rule table
// could not be built.
func (a *Audit) Rules() []string {
	if a.lib == nil {
		return nil
	}
	return a.lib.IDs()
}

// ShouldRun reports whether the audit applies. It is false when the
// repository path holds no git metadata. A configuration error keeps it true
// so that Run reports the failure.
func (a *Audit) ShouldRun() bool {
	if a.setupErr != nil {
		return true
	}
	return git.IsRepository(a.settings.RepositoryPath)
}

// Findings returns a copy of the findings from the last Run, in the order
// they were produced.
func (a *Audit) Findings() []types.Finding {
	out := make([]types.Finding, len(a.findings))
	copy(out, a.findings)
	return out
}

// Run executes every enabled phase and reports whether the repository is
// clean. A failing phase is logged and skipped; a configuration error, a
// failed repository probe or a panic ends the run with a single
// "Audit Failed" finding.
func (a *Audit) Run(ctx context.Context) (clean bool) {
	a.findings = nil
	defer func() {
		if r := recover(); r != nil {
			a.fail(fmt.Errorf("unexpected panic: %v", r))
			clean = false
		}
	}()

	if a.setupErr != nil {
		a.fail(a.setupErr)
		return false
	}
	if !a.ShouldRun() {
		a.log.WithField("path", a.settings.RepositoryPath).Debug("not a git repository; nothing to audit")
		return true
	}
	if err := a.client.Verify(ctx); err != nil {
		a.fail(fmt.Errorf("repository check failed: %w", err))
		return false
	}

	for _, p := range a.phases() {
		if !p.enabled {
			continue
		}
		if err := p.run(ctx); err != nil {
			a.log.WithFields(logrus.Fields{
				"phase": p.name,
				"error": err,
			}).Warn("audit phase skipped")
		}
	}
	return len(a.findings) == 0
}

func (a *Audit) add(f types.Finding) {
	a.findings = append(a.findings, f)
}

func (a *Audit) fail(err error) {
	a.log.WithError(err).Error("audit failed")
	a.add(types.Finding{
		Category:    types.CatAuditError,
		Title:       "Audit Failed",
		Description: err.Error(),
		Severity:    types.SevHigh,
		Source:      types.SourceLabel,
	})
}
