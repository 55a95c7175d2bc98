package content

import (
	"path/filepath"

	"github.com/haybale/haybale/internal/finder"
)

// NameMatcher matches a file's basename against a PatternExpr. It is always
// case-insensitive for wildcard patterns, regardless of the content case
// toggle (§4.4); regex alternatives honor their own inline flags.
type NameMatcher struct {
	expr   *finder.PatternExpr
	finder finder.Finder
}

// NewNameMatcher builds a NameMatcher from a parsed pattern.
func NewNameMatcher(expr *finder.PatternExpr) *NameMatcher {
	return &NameMatcher{expr: expr, finder: finder.NewFinder(expr, false)}
}

// Matches reports whether path's basename satisfies the pattern.
func (m *NameMatcher) Matches(path string) bool {
	base := filepath.Base(path)
	switch f := m.finder.(type) {
	case *finder.WildcardFinder:
		return f.Matches(base)
	default:
		return len(m.finder.FindMatches(base)) > 0
	}
}
