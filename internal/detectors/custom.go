package detectors

import (
	"errors"
	"fmt"
	"regexp"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/dlclark/regexp2"

	"github.com/varalys/gitaudit/internal/config"
	"github.com/varalys/gitaudit/internal/types"
)

// BacktrackTimeout bounds a single regexp2 evaluation.
const BacktrackTimeout = 5 * time.Second

// ErrBacktrackTimeout is returned when a regexp2 rule exceeds
// BacktrackTimeout on one piece of content.
var ErrBacktrackTimeout = errors.New("pattern match timed out")

// matcher finds all non-overlapping matches as byte offset pairs.
type matcher interface {
	String() string
	FindAll(content []byte) ([][2]int, error)
}

type re2Matcher struct{ re *regexp.Regexp }

func compileRE2(pattern string) (matcher, error) {
	re, err := regexp.Compile(pattern)
	if err != nil {
		return nil, err
	}
	return re2Matcher{re: re}, nil
}

func (m re2Matcher) String() string { return m.re.String() }

func (m re2Matcher) FindAll(content []byte) ([][2]int, error) {
	idx := m.re.FindAllIndex(content, -1)
	out := make([][2]int, 0, len(idx))
	for _, loc := range idx {
		out = append(out, [2]int{loc[0], loc[1]})
	}
	return out, nil
}

// backtrackMatcher runs expressions RE2 rejects, such as look-around and
// back-references.
type backtrackMatcher struct{ re *regexp2.Regexp }

func compileBacktrack(pattern string) (matcher, error) {
	re, err := regexp2.Compile(pattern, regexp2.None)
	if err != nil {
		return nil, err
	}
	re.MatchTimeout = BacktrackTimeout
	return backtrackMatcher{re: re}, nil
}

func (m backtrackMatcher) String() string { return m.re.String() }

// FindAll converts regexp2's rune indexes back into byte offsets of content.
func (m backtrackMatcher) FindAll(content []byte) ([][2]int, error) {
	runes := make([]rune, 0, len(content))
	offsets := make([]int, 0, len(content)+1)
	for i := 0; i < len(content); {
		r, size := utf8.DecodeRune(content[i:])
		runes = append(runes, r)
		offsets = append(offsets, i)
		i += size
	}
	offsets = append(offsets, len(content))

	var out [][2]int
	match, err := m.re.FindRunesMatch(runes)
	for err == nil && match != nil {
		start := match.Index
		end := start + match.Length
		out = append(out, [2]int{offsets[start], offsets[end]})
		match, err = m.re.FindNextMatch(match)
	}
	if err != nil {
		if strings.Contains(err.Error(), "timeout") {
			return out, fmt.Errorf("%w: %v", ErrBacktrackTimeout, err)
		}
		return out, err
	}
	return out, nil
}

// compileCustom turns a configured pattern into a rule. RE2 is tried first;
// regexp2 is the fallback for syntax RE2 does not support.
func compileCustom(cp config.CustomPattern) (Rule, error) {
	sev, ok := types.ParseSeverity(strings.ToLower(cp.Severity))
	if !ok {
		return Rule{}, fmt.Errorf("custom pattern %s: %w: unknown severity %q", cp.Name, config.ErrInvalidOption, cp.Severity)
	}
	if cp.Pattern == "" {
		return Rule{}, fmt.Errorf("custom pattern %s: %w: empty pattern", cp.Name, config.ErrInvalidOption)
	}
	expr := unwrapDelimited(cp.Pattern)
	m, err := compileRE2(expr)
	if err != nil {
		var berr error
		m, berr = compileBacktrack(expr)
		if berr != nil {
			return Rule{}, fmt.Errorf("custom pattern %s: %w: %v", cp.Name, config.ErrInvalidOption, berr)
		}
	}
	desc := cp.Description
	if desc == "" {
		desc = "Custom pattern " + cp.Name
	}
	return Rule{
		Name:        cp.Name,
		Description: desc,
		Severity:    sev,
		Custom:      true,
		re:          m,
	}, nil
}

// unwrapDelimited rewrites "/expr/flags" into "(?flags)expr". Flags outside
// imsx leave the pattern untouched.
func unwrapDelimited(p string) string {
	if len(p) < 2 || p[0] != '/' {
		return p
	}
	end := strings.LastIndexByte(p, '/')
	if end <= 0 {
		return p
	}
	body, flags := p[1:end], p[end+1:]
	for _, f := range flags {
		if !strings.ContainsRune("imsx", f) {
			return p
		}
	}
	if flags == "" {
		return body
	}
	return "(?" + flags + ")" + body
}
