// Package content implements the matcher layer of §4.4: binding a finder to
// a source. NameMatcher matches a basename, TextContentSearcher matches
// decoded file text with line/context semantics, and BinaryContentSearcher
// matches strings extracted from binary content.
package content

import "github.com/haybale/haybale/internal/finder"

// ContextLine is one (lineNumber, text) pair attached as context around a
// ContentMatch.
type ContextLine struct {
	LineNumber int
	Text       string
}

// ContentMatch is one matched region in a file, per spec §3.
type ContentMatch struct {
	LineNumber    int
	LineText      string
	Ranges        []finder.MatchRange
	ContextBefore []ContextLine
	ContextAfter  []ContextLine
}
