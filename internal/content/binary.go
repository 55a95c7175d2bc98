package content

import (
	"os"

	"github.com/haybale/haybale/internal/binstrings"
	"github.com/haybale/haybale/internal/finder"
)

// BinaryContentSearcher implements §4.4's binary matching mode: the pattern
// is applied to each printable string extracted from the file (§4.3) rather
// than to raw line text. LineNumber is synthesized as the 1-based ordinal of
// the matching string among all extracted strings, and LineText is the
// extracted string's value.
type BinaryContentSearcher struct {
	expr          *finder.PatternExpr
	caseSensitive bool
}

// NewBinaryContentSearcher builds a searcher for the given pattern.
func NewBinaryContentSearcher(expr *finder.PatternExpr, caseSensitive bool) *BinaryContentSearcher {
	return &BinaryContentSearcher{expr: expr, caseSensitive: caseSensitive}
}

// Search reads path, extracts its printable strings, and returns a
// ContentMatch for every extracted string satisfying the pattern.
func (s *BinaryContentSearcher) Search(path string) ([]ContentMatch, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}

	strs := binstrings.Extract(data)
	f := finder.NewFinder(s.expr, s.caseSensitive)

	var matches []ContentMatch
	for i, str := range strs {
		var ranges []finder.MatchRange
		if wf, ok := f.(*finder.WildcardFinder); ok {
			if wf.Matches(str.Value) {
				ranges = []finder.MatchRange{{Start: 0, End: len(str.Value)}}
			}
		} else {
			ranges = f.FindMatches(str.Value)
		}
		if len(ranges) == 0 {
			continue
		}
		matches = append(matches, ContentMatch{
			LineNumber: i + 1,
			LineText:   str.Value,
			Ranges:     ranges,
		})
	}
	return matches, nil
}
