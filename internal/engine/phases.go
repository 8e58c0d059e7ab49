package engine

import (
	"context"
	"fmt"

	humanize "github.com/dustin/go-humanize"
	"github.com/sirupsen/logrus"

	"github.com/varalys/gitaudit/internal/types"
)

type phase struct {
	name    string
	enabled bool
	run     func(context.Context) error
}

func (a *Audit) phases() []phase {
	s := a.settings
	return []phase{
		{"working_tree", s.ScanWorkingTree, func(ctx context.Context) error {
			return a.scanLive(ctx, Target{Kind: WorkingTree})
		}},
		{"staged", s.ScanStaged, func(ctx context.Context) error {
			return a.scanLive(ctx, Target{Kind: Staged})
		}},
		{"history", s.ScanHistory, a.scanHistory},
		{"sensitive_files", s.CheckSensitiveFiles, a.sweepSensitive},
		{"large_files", s.CheckLargeFiles, a.sweepLarge},
	}
}

// scanLive classifies and matches the files of the working tree or the
// staged index. Staged paths are read from disk.
func (a *Audit) scanLive(ctx context.Context, t Target) error {
	paths, err := a.candidates(ctx, t)
	if err != nil {
		return err
	}
	for _, p := range paths {
		if err := ctx.Err(); err != nil {
			return err
		}
		content, gate, err := a.classify.classify(p, t)
		if err != nil {
			a.skip(p, t, err)
			continue
		}
		if gate != nil {
			a.add(*gate)
			continue
		}
		a.match(p, t, content)
	}
	return nil
}

// scanHistory matches the blobs of files changed by the most recent
// commits. Blobs are matched without classification.
func (a *Audit) scanHistory(ctx context.Context) error {
	commits, err := a.client.ListRecentCommits(ctx, a.settings.MaxCommits)
	if err != nil {
		return err
	}
	for _, c := range commits {
		t := Target{Kind: Commit, Commit: c}
		paths, err := a.candidates(ctx, t)
		if err != nil {
			return err
		}
		for _, p := range paths {
			blob, err := a.client.ReadBlobAtCommit(ctx, c, p)
			if err != nil {
				a.skip(p, t, err)
				continue
			}
			a.match(p, t, blob)
		}
	}
	return nil
}

func (a *Audit) sweepSensitive(ctx context.Context) error {
	t := Target{Kind: WorkingTree}
	paths, err := a.candidates(ctx, t)
	if err != nil {
		return err
	}
	for _, p := range paths {
		glob, ok := sensitiveName(p)
		if !ok {
			continue
		}
		a.add(types.Finding{
			Category:    types.CatSensitiveFile,
			Title:       "Sensitive File Tracked",
			Description: fmt.Sprintf("%s matches the sensitive file pattern %q and is tracked by git", p, glob),
			Severity:    types.SevHigh,
			File:        p,
			Context:     t.Label(),
			Pattern:     glob,
			Source:      types.SourceLabel,
		})
	}
	return nil
}

func (a *Audit) sweepLarge(ctx context.Context) error {
	t := Target{Kind: WorkingTree}
	paths, err := a.candidates(ctx, t)
	if err != nil {
		return err
	}
	for _, p := range paths {
		info, err := a.fs.Stat(p)
		if err != nil {
			a.skip(p, t, err)
			continue
		}
		if info.IsDir() || info.Size() <= a.settings.MaxFileSize {
			continue
		}
		a.add(types.Finding{
			Category: types.CatLargeFile,
			Title:    "Large File Tracked",
			Description: fmt.Sprintf("%s (%s) is tracked by git and exceeds %s; consider Git LFS",
				p, humanize.IBytes(uint64(info.Size())), humanize.IBytes(uint64(a.settings.MaxFileSize))),
			Severity: types.SevMed,
			File:     p,
			Context:  t.Label(),
			Source:   types.SourceLabel,
		})
	}
	return nil
}

func (a *Audit) match(p string, t Target, content []byte) {
	ms, err := a.lib.Match(content)
	if err != nil {
		a.log.WithFields(logrus.Fields{"file": p, "context": t.Label()}).WithError(err).Debug("rule skipped")
	}
	for _, m := range ms {
		a.add(types.Finding{
			Category:    types.CatSecret,
			Title:       "Potential Secret: " + m.Description,
			Description: fmt.Sprintf("%s found in %s on line %d (%s)", m.Description, p, m.Line, t.Label()),
			Severity:    m.Severity,
			File:        p,
			Line:        m.Line,
			Context:     t.Label(),
			Pattern:     m.Rule,
			Match:       m.Text,
			Source:      types.SourceLabel,
		})
	}
}

func (a *Audit) skip(p string, t Target, err error) {
	a.log.WithFields(logrus.Fields{"file": p, "context": t.Label()}).WithError(err).Debug("file skipped")
}
