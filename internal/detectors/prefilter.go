package detectors

import (
	"bytes"
	"sync"

	"github.com/cloudflare/ahocorasick"
)

// prefilter selects the rules worth running on a piece of content from the
// keywords it contains. The underlying matcher keeps per-call state, so calls
// are serialized.
type prefilter struct {
	mu       sync.Mutex
	m        *ahocorasick.Matcher
	keywords []string
	// owners maps a keyword index to the rule indexes that declared it.
	owners [][]int
	always []int
}

func newPrefilter(rules []Rule) *prefilter {
	pf := &prefilter{}
	seen := map[string]int{}
	for i, r := range rules {
		if len(r.Keywords) == 0 {
			pf.always = append(pf.always, i)
			continue
		}
		for _, kw := range r.Keywords {
			k, ok := seen[kw]
			if !ok {
				k = len(pf.keywords)
				seen[kw] = k
				pf.keywords = append(pf.keywords, kw)
				pf.owners = append(pf.owners, nil)
			}
			pf.owners[k] = append(pf.owners[k], i)
		}
	}
	if len(pf.keywords) > 0 {
		pf.m = ahocorasick.NewStringMatcher(pf.keywords)
	}
	return pf
}

// candidates returns rule indexes in table order.
func (pf *prefilter) candidates(content []byte, nrules int) []int {
	selected := make([]bool, nrules)
	for _, i := range pf.always {
		selected[i] = true
	}
	if pf.m != nil {
		lower := bytes.ToLower(content)
		pf.mu.Lock()
		hits := pf.m.Match(lower)
		pf.mu.Unlock()
		for _, k := range hits {
			for _, i := range pf.owners[k] {
				selected[i] = true
			}
		}
	}
	out := make([]int, 0, nrules)
	for i, ok := range selected {
		if ok {
			out = append(out, i)
		}
	}
	return out
}
