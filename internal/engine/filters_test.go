package engine

import (
	"testing"

	"github.com/spf13/afero"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/varalys/gitaudit/internal/config"
)

func TestFilter_Allowed(t *testing.T) {
	fsys := afero.NewMemMapFs()
	require.NoError(t, afero.WriteFile(fsys, ".gitauditignore", []byte("generated/\n*.lock\n!keep.lock\n"), 0o644))

	s := config.Defaults()
	s.ExcludePaths = []string{"vendor/", "**/*.min.js", "secrets.txt", "./build"}
	s.IncludeExtensions = []string{"go", ".TXT", "js", "lock"}
	f := NewFilter(fsys, s)

	cases := []struct {
		path string
		want bool
	}{
		{"main.go", true},
		{"pkg/a/b.go", true},
		{"README.md", false},
		{"Makefile", false},
		{"notes/todo.txt", true},
		{"notes/TODO.TXT", true},
		{"vendor/x/y.go", false},
		{"web/app.min.js", false},
		{"web/app.js", true},
		{"config/secrets.txt", false},
		{"build/out.go", false},
		{"generated/api.go", false},
		{"deps/yarn.lock", false},
		{"keep.lock", true},
	}
	for _, tc := range cases {
		assert.Equal(t, tc.want, f.Allowed(tc.path), tc.path)
	}
}

func TestFilter_NoRules(t *testing.T) {
	f := NewFilter(afero.NewMemMapFs(), config.Defaults())
	for _, p := range []string{"a", "b/c.d", ".env", "x/y/z.bin"} {
		assert.True(t, f.Allowed(p), p)
	}
}

func TestFilter_DoublestarDirectory(t *testing.T) {
	s := config.Defaults()
	s.ExcludePaths = []string{"vendor/**"}
	f := NewFilter(afero.NewMemMapFs(), s)
	assert.False(t, f.Allowed("vendor/a/b.go"))
}

func TestFilter_EmptyPrefixExcludesNothing(t *testing.T) {
	s := config.Defaults()
	s.ExcludePaths = []string{"./", "", "./docs/"}
	f := NewFilter(afero.NewMemMapFs(), s)
	assert.True(t, f.Allowed("main.go"))
	assert.True(t, f.Allowed("pkg/a/b.go"))
	assert.False(t, f.Allowed("docs/guide.md"))
}

func TestSensitiveName(t *testing.T) {
	cases := map[string]bool{
		".env":             true,
		"app/.env.local":   true,
		"home/.ssh/id_rsa": true,
		"Id_Ed25519":       true,
		"id_rsa.pub":       false,
		"tls/server.PEM":   true,
		"private.key":      true,
		"ca.crt":           true,
		"store.p12":        true,
		"cert.pfx":         true,
		"dump.sql":         true,
		"sql/backup.sql":   true,
		"schema.sql":       false,
		".htpasswd":        true,
		"site/web.config":  true,
		"main.go":          false,
		"environment.go":   false,
	}
	for p, want := range cases {
		_, got := sensitiveName(p)
		assert.Equal(t, want, got, p)
	}
}

func TestTarget_Label(t *testing.T) {
	assert.Equal(t, "working tree", Target{Kind: WorkingTree}.Label())
	assert.Equal(t, "staged", Target{Kind: Staged}.Label())
	assert.Equal(t, "commit abc123", Target{Kind: Commit, Commit: "abc123"}.Label())
}
