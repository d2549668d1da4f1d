// Package pathshort rewrites long build paths into readable aliases.
// Rules come from configuration; output is used both for report text and
// for serialized merged traces.
package pathshort

import (
	"sort"
	"strings"

	"buildprof/internal/config"
)

// Shortener applies an ordered set of prefix replacements.
type Shortener struct {
	replacer *strings.Replacer
}

// New builds a Shortener from configured rules. Longer prefixes are
// applied first so nested build directories pick the most specific alias.
func New(rules []config.Shorten) *Shortener {
	if len(rules) == 0 {
		return &Shortener{}
	}
	ordered := make([]config.Shorten, len(rules))
	copy(ordered, rules)
	sort.SliceStable(ordered, func(i, j int) bool {
		return len(ordered[i].Prefix) > len(ordered[j].Prefix)
	})
	pairs := make([]string, 0, 2*len(ordered))
	for _, r := range ordered {
		pairs = append(pairs, r.Prefix, r.Replacement)
	}
	return &Shortener{replacer: strings.NewReplacer(pairs...)}
}

// Apply rewrites every configured prefix occurrence in s.
func (s *Shortener) Apply(in string) string {
	if s == nil || s.replacer == nil {
		return in
	}
	return s.replacer.Replace(in)
}

// ApplyBytes rewrites a serialized document, such as a merged trace.
func (s *Shortener) ApplyBytes(in []byte) []byte {
	if s == nil || s.replacer == nil || len(in) == 0 {
		return in
	}
	return []byte(s.replacer.Replace(string(in)))
}
