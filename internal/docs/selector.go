package docs

import (
	"regexp"
	"strings"
)

// separator matches one or more non-alphanumeric characters. Patterns are
// matched against lower-cased text, so the character class stays lower-case.
const separator = "[^a-z0-9]+"

// Selector chooses documents relevant to a piece of free text by scanning an
// ordered keyword index. Selection is deterministic and total: it never
// fails, and empty text still yields the always-include set.
type Selector struct {
	corpus   Corpus
	index    *Index
	compiled [][]*regexp.Regexp // one pattern list per rule, in rule order
}

// NewSelector compiles the index's keyword patterns once up front.
func NewSelector(corpus Corpus, index *Index) (*Selector, error) {
	compiled := make([][]*regexp.Regexp, len(index.Rules))
	for i, rule := range index.Rules {
		patterns := make([]*regexp.Regexp, len(rule.Keywords))
		for j, kw := range rule.Keywords {
			re, err := compilePattern(kw)
			if err != nil {
				return nil, err
			}
			patterns[j] = re
		}
		compiled[i] = patterns
	}
	return &Selector{corpus: corpus, index: index, compiled: compiled}, nil
}

// compilePattern turns a keyword pattern into a regexp. Literal segments are
// quoted; each '.' becomes the word-separator wildcard.
func compilePattern(keyword string) (*regexp.Regexp, error) {
	segments := strings.Split(strings.ToLower(keyword), ".")
	for i, seg := range segments {
		segments[i] = regexp.QuoteMeta(seg)
	}
	return regexp.Compile(strings.Join(segments, separator))
}

// Select returns the ordered, deduplicated document list for the given text:
// always-include paths first in declared order, then the document of each
// matching rule in rule order. A document referenced by several matching
// rules appears once, at its first matching rule's slot. Keyword-matched
// documents must exist on disk; always-include documents are kept regardless
// and surface placeholder content when missing.
func (s *Selector) Select(text string) []string {
	lower := strings.ToLower(text)

	selected := make([]string, 0, len(s.index.AlwaysInclude))
	seen := make(map[string]struct{})
	for _, doc := range s.index.AlwaysInclude {
		if _, dup := seen[doc]; dup {
			continue
		}
		seen[doc] = struct{}{}
		selected = append(selected, doc)
	}

	for i, rule := range s.index.Rules {
		if _, dup := seen[rule.Doc]; dup {
			continue
		}
		if !matchesAny(s.compiled[i], lower) {
			continue
		}
		if !s.corpus.Exists(rule.Doc) {
			continue
		}
		seen[rule.Doc] = struct{}{}
		selected = append(selected, rule.Doc)
	}
	return selected
}

func matchesAny(patterns []*regexp.Regexp, text string) bool {
	for _, re := range patterns {
		if re.MatchString(text) {
			return true
		}
	}
	return false
}
