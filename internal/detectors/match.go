package detectors

import (
	"errors"
	"fmt"
	"unicode/utf8"

	"github.com/varalys/gitaudit/internal/types"
)

// MaxMatchLen is the longest matched text carried on a finding, in runes.
const MaxMatchLen = 50

// Match is one occurrence of an enabled rule in a piece of content.
type Match struct {
	Rule        string
	Description string
	Severity    types.Severity
	// Line is 1-based.
	Line  int
	Start int
	End   int
	// Text is the matched text truncated with Truncate.
	Text string
}

// Match runs every enabled rule selected by the keyword prefilter and
// returns all non-overlapping matches, grouped by rule in table order. A rule
// that fails on this content (regexp2 timeout) is skipped; its error is
// joined into the returned error while the matches of other rules are kept.
func (l *Library) Match(content []byte) ([]Match, error) {
	if len(content) == 0 {
		return nil, nil
	}
	var out []Match
	var errs []error
	for _, i := range l.pf.candidates(content, len(l.rules)) {
		r := l.rules[i]
		if !r.Enabled || r.re == nil {
			continue
		}
		locs, err := r.re.FindAll(content)
		if err != nil {
			errs = append(errs, fmt.Errorf("rule %s: %w", r.Name, err))
			continue
		}
		lc := lineCounter{content: content, line: 1}
		for _, loc := range locs {
			out = append(out, Match{
				Rule:        r.Name,
				Description: r.Description,
				Severity:    r.Severity,
				Line:        lc.lineAt(loc[0]),
				Start:       loc[0],
				End:         loc[1],
				Text:        Truncate(string(content[loc[0]:loc[1]])),
			})
		}
	}
	return out, errors.Join(errs...)
}

// lineCounter converts increasing byte offsets into line numbers without
// rescanning the content from the start.
type lineCounter struct {
	content []byte
	pos     int
	line    int
}

func (c *lineCounter) lineAt(off int) int {
	for ; c.pos < off && c.pos < len(c.content); c.pos++ {
		if c.content[c.pos] == '\n' {
			c.line++
		}
	}
	return c.line
}

// LineOf returns the 1-based line containing byte offset off.
func LineOf(content []byte, off int) int {
	c := lineCounter{content: content, line: 1}
	return c.lineAt(off)
}

// Truncate shortens s to at most MaxMatchLen runes, replacing the tail with
// "..." when it is cut.
func Truncate(s string) string {
	if utf8.RuneCountInString(s) <= MaxMatchLen {
		return s
	}
	runes := []rune(s)
	return string(runes[:MaxMatchLen-3]) + "..."
}
