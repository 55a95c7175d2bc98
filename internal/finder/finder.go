package finder

import (
	"regexp"
	"unicode"
)

// MatchRange is a half-open span within the text buffer a Finder was run
// against: [Start, End) in byte offsets. Both Finder implementations report
// ranges in this unit so callers can slice the original string directly.
type MatchRange struct {
	Start int
	End   int
}

// Finder is a context-free predicate over a text buffer, returning zero or
// more non-overlapping match ranges sorted by Start.
type Finder interface {
	FindMatches(text string) []MatchRange
}

// NewFinder builds the Finder appropriate to a PatternExpr's kind.
// caseSensitive only affects wildcard matching; regex case sensitivity is
// entirely controlled by the pattern's own inline flags.
func NewFinder(expr *PatternExpr, caseSensitive bool) Finder {
	switch expr.kind {
	case KindRegex:
		return &RegexFinder{re: expr.regex}
	default:
		return &WildcardFinder{expr: expr, caseSensitive: caseSensitive}
	}
}

// WildcardFinder anchors the whole-string match of text against an
// alternation of literal/star segment sequences.
type WildcardFinder struct {
	expr          *PatternExpr
	caseSensitive bool
}

// FindMatches returns a single range spanning all of text if any alternative
// matches the full string, or no ranges otherwise. The range is reported in
// byte offsets ([0, len(text))), matching RegexFinder's unit.
func (w *WildcardFinder) FindMatches(text string) []MatchRange {
	for _, alt := range w.expr.alts {
		if matchAlternative(alt.segments, []rune(text), w.caseSensitive) {
			return []MatchRange{{Start: 0, End: len(text)}}
		}
	}
	return nil
}

// Matches reports whether any alternative matches the full string, without
// allocating a range slice — used by matchers that only need a yes/no
// signal (name matching, per §4.2).
func (w *WildcardFinder) Matches(text string) bool {
	runes := []rune(text)
	for _, alt := range w.expr.alts {
		if matchAlternative(alt.segments, runes, w.caseSensitive) {
			return true
		}
	}
	return false
}

// matchAlternative does classic star/literal backtracking matching of a
// segment sequence against the full rune slice.
func matchAlternative(segs []segment, text []rune, caseSensitive bool) bool {
	return matchSegs(segs, text, caseSensitive)
}

func matchSegs(segs []segment, text []rune, caseSensitive bool) bool {
	if len(segs) == 0 {
		return len(text) == 0
	}

	seg := segs[0]
	if seg.star {
		// A star matches any run, including zero runes; try every split.
		for i := 0; i <= len(text); i++ {
			if matchSegs(segs[1:], text[i:], caseSensitive) {
				return true
			}
		}
		return false
	}

	lit := []rune(seg.literal)
	if len(text) < len(lit) {
		return false
	}
	if !runesEqual(lit, text[:len(lit)], caseSensitive) {
		return false
	}
	return matchSegs(segs[1:], text[len(lit):], caseSensitive)
}

func runesEqual(a, b []rune, caseSensitive bool) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if caseSensitive {
			if a[i] != b[i] {
				return false
			}
			continue
		}
		if !foldEqual(a[i], b[i]) {
			return false
		}
	}
	return true
}

// foldEqual compares two runes under Unicode simple case-folding: true if
// either is reachable from the other by repeated unicode.SimpleFold.
func foldEqual(a, b rune) bool {
	if a == b {
		return true
	}
	r := unicode.SimpleFold(a)
	for r != a {
		if r == b {
			return true
		}
		r = unicode.SimpleFold(r)
	}
	return false
}

// RegexFinder scans text left-to-right returning every non-overlapping
// match. The pattern's own inline flags are authoritative; RegexFinder never
// mutates case sensitivity.
type RegexFinder struct {
	re *regexp.Regexp
}

// FindMatches returns every non-overlapping match of the regex in text, in
// left-to-right order.
func (r *RegexFinder) FindMatches(text string) []MatchRange {
	idxs := r.re.FindAllStringIndex(text, -1)
	if len(idxs) == 0 {
		return nil
	}
	ranges := make([]MatchRange, len(idxs))
	for i, idx := range idxs {
		ranges[i] = MatchRange{Start: idx[0], End: idx[1]}
	}
	return ranges
}

// Regexp exposes the compiled pattern for callers that need direct access
// to FindAllStringSubmatchIndex or similar.
func (r *RegexFinder) Regexp() *regexp.Regexp { return r.re }
