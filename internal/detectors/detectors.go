package detectors

import (
	"fmt"

	"github.com/varalys/gitaudit/internal/config"
	"github.com/varalys/gitaudit/internal/types"
)

// Rule is one named detection pattern.
type Rule struct {
	Name        string
	Description string
	Severity    types.Severity
	Enabled     bool
	// Keywords are lowercase literals; every match contains at least one of
	// them. Rules without keywords are always evaluated.
	Keywords []string
	Custom   bool

	re matcher
}

// Pattern returns the source expression of the rule.
func (r Rule) Pattern() string {
	if r.re == nil {
		return ""
	}
	return r.re.String()
}

// Library is the compiled rule table. It is safe to share once built; no
// method mutates the rule set.
type Library struct {
	rules []Rule
	pf    *prefilter
}

// New compiles the built-in rules, merges custom patterns by name and applies
// the enabled predicate (nil enables every rule). A custom pattern with the
// name of a built-in replaces it in place; other custom patterns are
// appended in the given order.
func New(custom []config.CustomPattern, enabled func(name string) bool) (*Library, error) {
	var rules []Rule
	index := map[string]int{}
	for _, b := range builtins() {
		r, err := b.compile()
		if err != nil {
			return nil, err
		}
		index[r.Name] = len(rules)
		rules = append(rules, r)
	}
	for _, cp := range custom {
		r, err := compileCustom(cp)
		if err != nil {
			return nil, err
		}
		if i, ok := index[r.Name]; ok {
			rules[i] = r
			continue
		}
		index[r.Name] = len(rules)
		rules = append(rules, r)
	}
	for i := range rules {
		rules[i].Enabled = enabled == nil || enabled(rules[i].Name)
	}
	return &Library{rules: rules, pf: newPrefilter(rules)}, nil
}

// Rules returns a copy of every rule, enabled or not, in table order.
func (l *Library) Rules() []Rule {
	out := make([]Rule, len(l.rules))
	copy(out, l.rules)
	return out
}

// IDs returns the names of the enabled rules in table order.
func (l *Library) IDs() []string {
	var out []string
	for _, r := range l.rules {
		if r.Enabled {
			out = append(out, r.Name)
		}
	}
	return out
}

// BuiltinIDs returns the names of the built-in rules.
func BuiltinIDs() []string {
	var out []string
	for _, b := range builtins() {
		out = append(out, b.name)
	}
	return out
}

// builtin is the uncompiled form of a built-in rule.
type builtin struct {
	name        string
	pattern     string
	severity    types.Severity
	description string
	keywords    []string
}

func (b builtin) compile() (Rule, error) {
	m, err := compileRE2(b.pattern)
	if err != nil {
		return Rule{}, fmt.Errorf("built-in rule %s: %w", b.name, err)
	}
	return Rule{
		Name:        b.name,
		Description: b.description,
		Severity:    b.severity,
		Keywords:    b.keywords,
		re:          m,
	}, nil
}

func builtins() []builtin {
	var out []builtin
	out = append(out, cloudRules...)
	out = append(out, vcsRules...)
	out = append(out, credentialRules...)
	out = append(out, keyRules...)
	out = append(out, serviceRules...)
	return out
}
