package engine

import "context"

// TargetKind identifies a scan surface.
type TargetKind int

const (
	WorkingTree TargetKind = iota
	Staged
	Commit
)

// Target is one scan surface: the working tree, the staged index, or the
// files changed by a single commit.
type Target struct {
	Kind   TargetKind
	Commit string
}

// Label renders the context string carried on findings.
func (t Target) Label() string {
	switch t.Kind {
	case Staged:
		return "staged"
	case Commit:
		return "commit " + t.Commit
	default:
		return "working tree"
	}
}

// candidates lists the filtered paths of a live surface.
func (a *Audit) candidates(ctx context.Context, t Target) ([]string, error) {
	var (
		paths []string
		err   error
	)
	switch t.Kind {
	case Staged:
		paths, err = a.client.ListStagedFiles(ctx)
	case Commit:
		paths, err = a.client.ListCommitChangedFiles(ctx, t.Commit)
	default:
		paths, err = a.client.ListWorkingTreeFiles(ctx)
	}
	if err != nil {
		return nil, err
	}
	out := paths[:0]
	for _, p := range paths {
		if a.filter.Allowed(p) {
			out = append(out, p)
		}
	}
	return out, nil
}
