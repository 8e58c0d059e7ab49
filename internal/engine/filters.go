package engine

import (
	"path"
	"path/filepath"
	"strings"

	doublestar "github.com/bmatcuk/doublestar/v4"
	gitignore "github.com/sabhiram/go-gitignore"
	"github.com/spf13/afero"

	"github.com/varalys/gitaudit/internal/config"
)

// sensitiveNames are basename globs, matched case-insensitively, for files
// that should never be tracked.
var sensitiveNames = []string{
	".env*",
	"id_rsa",
	"id_dsa",
	"id_ecdsa",
	"id_ed25519",
	"*.pem",
	"*.key",
	"*.crt",
	"*.p12",
	"*.pfx",
	"dump.sql",
	"backup.sql",
	".htpasswd",
	"web.config",
}

// Filter decides whether a repository-relative path is part of the scan
// surface. One Filter serves every phase.
type Filter struct {
	excludes []string
	ignore   *gitignore.GitIgnore
	exts     map[string]bool
}

// NewFilter builds the filter for s. The ignore file is read through fsys
// when relative; a missing ignore file is not an error.
func NewFilter(fsys afero.Fs, s config.Settings) *Filter {
	f := &Filter{}
	for _, e := range s.ExcludePaths {
		e = strings.TrimSpace(filepath.ToSlash(e))
		if e != "" {
			f.excludes = append(f.excludes, e)
		}
	}
	if len(s.IncludeExtensions) > 0 {
		f.exts = make(map[string]bool, len(s.IncludeExtensions))
		for _, e := range s.IncludeExtensions {
			f.exts[strings.ToLower(strings.TrimPrefix(e, "."))] = true
		}
	}
	if s.IgnoreFile != "" {
		f.ignore = loadIgnore(fsys, s.IgnoreFile)
	}
	return f
}

func loadIgnore(fsys afero.Fs, name string) *gitignore.GitIgnore {
	src := fsys
	if filepath.IsAbs(name) || src == nil {
		src = afero.NewOsFs()
	}
	b, err := afero.ReadFile(src, name)
	if err != nil {
		return nil
	}
	var lines []string
	for _, l := range strings.Split(string(b), "\n") {
		lines = append(lines, strings.TrimRight(l, "\r"))
	}
	return gitignore.CompileIgnoreLines(lines...)
}

// Allowed reports whether p survives exclusion, the ignore file and the
// extension allow-list, in that order.
func (f *Filter) Allowed(p string) bool {
	p = filepath.ToSlash(p)
	if f.excluded(p) {
		return false
	}
	if f.ignore != nil && f.ignore.MatchesPath(p) {
		return false
	}
	if f.exts != nil {
		ext := strings.ToLower(strings.TrimPrefix(path.Ext(p), "."))
		if ext == "" || !f.exts[ext] {
			return false
		}
	}
	return true
}

func (f *Filter) excluded(p string) bool {
	base := path.Base(p)
	for _, g := range f.excludes {
		if ok, _ := doublestar.Match(g, p); ok {
			return true
		}
		if ok, _ := doublestar.Match(g, base); ok {
			return true
		}
		if pre := strings.TrimPrefix(g, "./"); pre != "" && strings.HasPrefix(p, pre) {
			return true
		}
	}
	return false
}

// sensitiveName reports the glob a tracked file's basename matches, if any.
func sensitiveName(p string) (string, bool) {
	base := strings.ToLower(path.Base(filepath.ToSlash(p)))
	for _, g := range sensitiveNames {
		if ok, _ := doublestar.Match(g, base); ok {
			return g, true
		}
	}
	return "", false
}
