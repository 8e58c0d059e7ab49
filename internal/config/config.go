package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	humanize "github.com/dustin/go-humanize"
	"github.com/spf13/cast"
	"gopkg.in/yaml.v3"
)

// ErrInvalidOption is returned (wrapped) when an option value cannot be
// normalized.
var ErrInvalidOption = errors.New("invalid option")

// Option keys recognized by Parse.
const (
	KeyRepositoryPath      = "repository_path"
	KeyScanWorkingTree     = "scan_working_tree"
	KeyScanStaged          = "scan_staged"
	KeyScanHistory         = "scan_history"
	KeyMaxCommits          = "max_commits"
	KeyCheckSensitiveFiles = "check_sensitive_files"
	KeyCheckLargeFiles     = "check_large_files"
	KeyCheckBinaryFiles    = "check_binary_files"
	KeyMaxFileSize         = "max_file_size"
	KeyExcludePaths        = "exclude_paths"
	KeyIncludeExtensions   = "include_extensions"
	KeyCustomPatterns      = "custom_patterns"
	KeyTimeout             = "timeout"
	KeyIgnoreFile          = "ignore_file"

	// rulePrefix prefixes the per-rule toggles, e.g. check_aws_access_key.
	rulePrefix = "check_"
)

// Keys lists every scalar and list option key in documentation order.
var Keys = []string{
	KeyRepositoryPath,
	KeyScanWorkingTree,
	KeyScanStaged,
	KeyScanHistory,
	KeyMaxCommits,
	KeyCheckSensitiveFiles,
	KeyCheckLargeFiles,
	KeyCheckBinaryFiles,
	KeyMaxFileSize,
	KeyExcludePaths,
	KeyIncludeExtensions,
	KeyCustomPatterns,
	KeyTimeout,
	KeyIgnoreFile,
}

// RuleKey returns the toggle key for a rule, e.g. check_jwt.
func RuleKey(rule string) string { return rulePrefix + rule }

const (
	DefaultMaxCommits  = 50
	DefaultMaxFileSize = 1 << 20
	DefaultTimeout     = 300 * time.Second
	DefaultIgnoreFile  = ".gitauditignore"
)

// CustomPattern is a user-supplied detection rule. It overrides a built-in
// rule with the same Name or adds a new one.
type CustomPattern struct {
	Name        string `yaml:"name" json:"name"`
	Pattern     string `yaml:"pattern" json:"pattern"`
	Severity    string `yaml:"severity" json:"severity"`
	Description string `yaml:"description" json:"description"`
}

// Settings is the normalized audit configuration.
type Settings struct {
	RepositoryPath      string
	ScanWorkingTree     bool
	ScanStaged          bool
	ScanHistory         bool
	MaxCommits          int
	CheckSensitiveFiles bool
	CheckLargeFiles     bool
	CheckBinaryFiles    bool
	MaxFileSize         int64
	ExcludePaths        []string
	IncludeExtensions   []string
	CustomPatterns      []CustomPattern
	Timeout             time.Duration
	IgnoreFile          string

	// RuleToggles holds check_<rule> values keyed by rule name. Rules absent
	// from the map are enabled.
	RuleToggles map[string]bool
}

// Defaults returns the settings used for options that are not supplied.
func Defaults() Settings {
	return Settings{
		RepositoryPath:      ".",
		ScanWorkingTree:     true,
		ScanStaged:          true,
		ScanHistory:         true,
		MaxCommits:          DefaultMaxCommits,
		CheckSensitiveFiles: true,
		CheckLargeFiles:     true,
		CheckBinaryFiles:    false,
		MaxFileSize:         DefaultMaxFileSize,
		Timeout:             DefaultTimeout,
		IgnoreFile:          DefaultIgnoreFile,
		RuleToggles:         map[string]bool{},
	}
}

// RuleEnabled reports whether the check_<name> toggle leaves the rule on.
func (s Settings) RuleEnabled(name string) bool {
	on, ok := s.RuleToggles[name]
	return !ok || on
}

// Parse converts a raw option map into Settings. Keys are matched
// case-insensitively; unknown keys are ignored.
func Parse(raw map[string]any) (Settings, error) {
	s := Defaults()
	for k, v := range raw {
		key := strings.ToLower(strings.TrimSpace(k))
		if v == nil {
			continue
		}
		var err error
		switch key {
		case KeyRepositoryPath:
			s.RepositoryPath, err = cast.ToStringE(v)
		case KeyScanWorkingTree:
			s.ScanWorkingTree, err = cast.ToBoolE(v)
		case KeyScanStaged:
			s.ScanStaged, err = cast.ToBoolE(v)
		case KeyScanHistory:
			s.ScanHistory, err = cast.ToBoolE(v)
		case KeyCheckSensitiveFiles:
			s.CheckSensitiveFiles, err = cast.ToBoolE(v)
		case KeyCheckLargeFiles:
			s.CheckLargeFiles, err = cast.ToBoolE(v)
		case KeyCheckBinaryFiles:
			s.CheckBinaryFiles, err = cast.ToBoolE(v)
		case KeyMaxCommits:
			s.MaxCommits, err = cast.ToIntE(v)
			if err == nil && s.MaxCommits < 0 {
				err = errors.New("must not be negative")
			}
		case KeyMaxFileSize:
			s.MaxFileSize, err = parseSize(v)
		case KeyTimeout:
			s.Timeout, err = parseSeconds(v)
		case KeyExcludePaths:
			s.ExcludePaths, err = stringList(v)
		case KeyIncludeExtensions:
			var exts []string
			exts, err = stringList(v)
			s.IncludeExtensions = normalizeExtensions(exts)
		case KeyCustomPatterns:
			s.CustomPatterns, err = customPatterns(v)
		case KeyIgnoreFile:
			s.IgnoreFile, err = cast.ToStringE(v)
		default:
			if name, ok := strings.CutPrefix(key, rulePrefix); ok && name != "" {
				var on bool
				on, err = cast.ToBoolE(v)
				s.RuleToggles[name] = on
			}
		}
		if err != nil {
			return Settings{}, fmt.Errorf("%w: %s: %v", ErrInvalidOption, key, err)
		}
	}
	if strings.TrimSpace(s.RepositoryPath) == "" {
		s.RepositoryPath = "."
	}
	abs, err := filepath.Abs(s.RepositoryPath)
	if err != nil {
		return Settings{}, fmt.Errorf("%w: %s: %v", ErrInvalidOption, KeyRepositoryPath, err)
	}
	s.RepositoryPath = abs
	return s, nil
}

// parseSize accepts a byte count or a human readable size such as "2MiB".
func parseSize(v any) (int64, error) {
	if str, ok := v.(string); ok {
		str = strings.TrimSpace(str)
		if n, err := cast.ToInt64E(str); err == nil {
			return positive(n)
		}
		n, err := humanize.ParseBytes(str)
		if err != nil {
			return 0, err
		}
		return positive(int64(n))
	}
	n, err := cast.ToInt64E(v)
	if err != nil {
		return 0, err
	}
	return positive(n)
}

func positive(n int64) (int64, error) {
	if n <= 0 {
		return 0, errors.New("must be positive")
	}
	return n, nil
}

func parseSeconds(v any) (time.Duration, error) {
	secs, err := cast.ToFloat64E(v)
	if err != nil {
		return 0, err
	}
	if secs <= 0 {
		return 0, errors.New("must be positive")
	}
	return time.Duration(secs * float64(time.Second)), nil
}

// stringList accepts a list or a comma separated string.
func stringList(v any) ([]string, error) {
	var items []string
	switch t := v.(type) {
	case string:
		items = strings.Split(t, ",")
	case []string:
		items = t
	case []any:
		for _, e := range t {
			s, err := cast.ToStringE(e)
			if err != nil {
				return nil, err
			}
			items = append(items, s)
		}
	default:
		return nil, fmt.Errorf("expected list or comma-separated string, got %T", v)
	}
	var out []string
	for _, it := range items {
		if it = strings.TrimSpace(it); it != "" {
			out = append(out, it)
		}
	}
	return out, nil
}

func normalizeExtensions(exts []string) []string {
	var out []string
	for _, e := range exts {
		e = strings.ToLower(strings.TrimPrefix(e, "."))
		if e != "" {
			out = append(out, e)
		}
	}
	return out
}

// customPatterns accepts a map of rule definitions keyed by rule name, or the
// same map encoded as a JSON or YAML string.
func customPatterns(v any) ([]CustomPattern, error) {
	var m map[string]any
	switch t := v.(type) {
	case string:
		if strings.TrimSpace(t) == "" {
			return nil, nil
		}
		if err := yaml.Unmarshal([]byte(t), &m); err != nil {
			return nil, fmt.Errorf("decode: %w", err)
		}
	default:
		var err error
		m, err = cast.ToStringMapE(v)
		if err != nil {
			return nil, err
		}
	}
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	out := make([]CustomPattern, 0, len(keys))
	for _, k := range keys {
		entry, err := cast.ToStringMapStringE(m[k])
		if err != nil {
			return nil, fmt.Errorf("%s: %w", k, err)
		}
		cp := CustomPattern{
			Name:        strings.TrimSpace(entry["name"]),
			Pattern:     entry["pattern"],
			Severity:    strings.ToLower(strings.TrimSpace(entry["severity"])),
			Description: strings.TrimSpace(entry["description"]),
		}
		if cp.Name == "" {
			cp.Name = k
		}
		if cp.Pattern == "" {
			return nil, fmt.Errorf("%s: pattern is required", k)
		}
		if cp.Severity == "" {
			return nil, fmt.Errorf("%s: severity is required", k)
		}
		if cp.Description == "" {
			cp.Description = "Custom pattern " + cp.Name
		}
		out = append(out, cp)
	}
	return out, nil
}

// LoadFile reads a YAML config file into a raw option map.
func LoadFile(path string) (map[string]any, error) {
	b, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	raw := map[string]any{}
	if err := yaml.Unmarshal(b, &raw); err != nil {
		return nil, fmt.Errorf("parse %s: %w", path, err)
	}
	return raw, nil
}

// LocalNames lists the repo-local config file names in search order.
var LocalNames = []string{".gitaudit.yml", ".gitaudit.yaml", "gitaudit.yml", "gitaudit.yaml"}

// FindLocal returns the first repo-local config file present in repoRoot.
func FindLocal(repoRoot string) (string, bool) {
	for _, name := range LocalNames {
		p := filepath.Join(repoRoot, name)
		if _, err := os.Stat(p); err == nil {
			return p, true
		}
	}
	return "", false
}

// LoadLocal searches for a repo-local config file in the given root.
func LoadLocal(repoRoot string) (map[string]any, error) {
	p, ok := FindLocal(repoRoot)
	if !ok {
		return nil, errors.New("no local config")
	}
	return LoadFile(p)
}
