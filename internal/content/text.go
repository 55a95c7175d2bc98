package content

import (
	"os"
	"unicode/utf8"

	"golang.org/x/text/encoding/charmap"

	"github.com/haybale/haybale/internal/finder"
)

// LargeFileThreshold is the §4.4 size above which regex content matching
// degrades to line-by-line scanning instead of a whole-text scan.
const LargeFileThreshold = 50 * 1024 * 1024

// TextContentSearcher implements §4.4's text content matching: UTF-8 decode
// with a total Latin-1 fallback, line indexing across \n/\r\n/\r
// terminators, per-line wildcard matching, whole-text-or-line-mode regex
// matching, and N-2/N-1 .. M+1/M+2 context extraction.
type TextContentSearcher struct {
	expr          *finder.PatternExpr
	caseSensitive bool
}

// NewTextContentSearcher builds a searcher for the given pattern.
func NewTextContentSearcher(expr *finder.PatternExpr, caseSensitive bool) *TextContentSearcher {
	return &TextContentSearcher{expr: expr, caseSensitive: caseSensitive}
}

type lineIndex struct {
	lines []string // line content, terminator stripped
	start []int    // byte offset of each line's first byte within text
	end   []int    // byte offset just past each line's content (before terminator)
}

// Search reads path, decodes it, and returns the ContentMatches satisfying
// the pattern. degraded reports whether the file exceeded LargeFileThreshold
// and a regex pattern was applied line-by-line instead of whole-text
// (§4.4.4, §7 LargeFileRegexDegraded) — the caller is responsible for
// emitting the associated Warning event.
func (s *TextContentSearcher) Search(path string) (matches []ContentMatch, degraded bool, err error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, false, err
	}

	text := decode(data)
	idx := buildLineIndex(text)

	if s.expr.Kind() == finder.KindRegex {
		if len(data) > LargeFileThreshold {
			return s.searchLineByLine(idx), true, nil
		}
		return s.searchWholeText(text, idx), false, nil
	}

	return s.searchLineByLine(idx), false, nil
}

// decode attempts UTF-8; on failure it falls back to Latin-1 (ISO-8859-1),
// which is total over any byte sequence, and the substituted text is
// reported verbatim (§9 open question).
func decode(data []byte) string {
	if utf8.Valid(data) {
		return string(data)
	}
	out, err := charmap.ISO8859_1.NewDecoder().Bytes(data)
	if err != nil {
		// ISO-8859-1 is total; this should not happen, but fall back to a
		// byte-for-byte rune reinterpretation rather than losing content.
		runes := make([]rune, len(data))
		for i, b := range data {
			runes[i] = rune(b)
		}
		return string(runes)
	}
	return string(out)
}

// buildLineIndex splits text on \n, \r\n, and \r terminators.
func buildLineIndex(text string) lineIndex {
	var idx lineIndex
	lineStart := 0
	i := 0
	for i < len(text) {
		c := text[i]
		if c == '\n' {
			idx.lines = append(idx.lines, text[lineStart:i])
			idx.start = append(idx.start, lineStart)
			idx.end = append(idx.end, i)
			i++
			lineStart = i
			continue
		}
		if c == '\r' {
			idx.lines = append(idx.lines, text[lineStart:i])
			idx.start = append(idx.start, lineStart)
			idx.end = append(idx.end, i)
			i++
			if i < len(text) && text[i] == '\n' {
				i++
			}
			lineStart = i
			continue
		}
		i++
	}
	// Trailing partial line (including the empty-file / no-trailing-newline case).
	if lineStart < len(text) || len(idx.lines) == 0 {
		idx.lines = append(idx.lines, text[lineStart:])
		idx.start = append(idx.start, lineStart)
		idx.end = append(idx.end, len(text))
	}
	return idx
}

func (idx lineIndex) lineAtOffset(off int) int {
	for i := range idx.start {
		if off >= idx.start[i] && off <= idx.end[i] {
			return i
		}
	}
	if len(idx.lines) == 0 {
		return 0
	}
	return len(idx.lines) - 1
}

func (s *TextContentSearcher) contextAround(idx lineIndex, startLine, endLine int) (before, after []ContextLine) {
	for i := startLine - 2; i < startLine; i++ {
		if i >= 0 {
			before = append(before, ContextLine{LineNumber: i + 1, Text: idx.lines[i]})
		}
	}
	for i := endLine + 1; i <= endLine+2; i++ {
		if i < len(idx.lines) {
			after = append(after, ContextLine{LineNumber: i + 1, Text: idx.lines[i]})
		}
	}
	return before, after
}

// searchWholeText applies a regex across the entire decoded text, producing
// multi-line-capable matches (§4.4.4).
func (s *TextContentSearcher) searchWholeText(text string, idx lineIndex) []ContentMatch {
	f := finder.NewFinder(s.expr, s.caseSensitive)
	ranges := f.FindMatches(text)
	if len(ranges) == 0 {
		return nil
	}

	matches := make([]ContentMatch, 0, len(ranges))
	for _, r := range ranges {
		startLine := idx.lineAtOffset(r.Start)
		endOff := r.End
		if endOff > 0 {
			endOff--
		}
		endLine := idx.lineAtOffset(endOff)

		lineText := text[idx.start[startLine]:idx.end[endLine]]
		relStart := r.Start - idx.start[startLine]
		relEnd := r.End - idx.start[startLine]

		before, after := s.contextAround(idx, startLine, endLine)
		matches = append(matches, ContentMatch{
			LineNumber:    startLine + 1,
			LineText:      lineText,
			Ranges:        []finder.MatchRange{{Start: relStart, End: relEnd}},
			ContextBefore: before,
			ContextAfter:  after,
		})
	}
	return matches
}

// searchLineByLine applies the pattern to each logical line independently:
// the only mode for wildcard patterns (§4.4.3, whole-line anchored), and
// the degraded fallback for oversized files with a regex pattern (§4.4.4).
func (s *TextContentSearcher) searchLineByLine(idx lineIndex) []ContentMatch {
	var matches []ContentMatch

	for li, line := range idx.lines {
		var ranges []finder.MatchRange

		if s.expr.Kind() == finder.KindWildcard {
			f := finder.NewFinder(s.expr, s.caseSensitive).(*finder.WildcardFinder)
			if f.Matches(line) {
				ranges = []finder.MatchRange{{Start: 0, End: len(line)}}
			}
		} else {
			f := finder.NewFinder(s.expr, s.caseSensitive)
			ranges = f.FindMatches(line)
		}

		if len(ranges) == 0 {
			continue
		}

		before, after := s.contextAround(idx, li, li)
		matches = append(matches, ContentMatch{
			LineNumber:    li + 1,
			LineText:      line,
			Ranges:        ranges,
			ContextBefore: before,
			ContextAfter:  after,
		})
	}
	return matches
}
