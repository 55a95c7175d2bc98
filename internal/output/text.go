package output

import (
	"fmt"
	"io"
	"sort"
	"strconv"
)

// textFormatter implements the default output format of spec §6:
//
//	<absolute-path>
//	  <line-number>.  <line-text>
//	  <line-number>.  <line-text>
//	(blank line)
//
// Line numbers are right-aligned to the widest number printed for that
// file. Context lines interleave with match lines in line-number order;
// per §4.4.5/§9 overlapping context between adjacent matches is not
// deduplicated here either — that stays the consumer's call, and this
// driver is the reference consumer.
type textFormatter struct {
	out  io.Writer
	diag io.Writer
	cfg  Config
}

type renderedLine struct {
	num     int
	text    string
	isMatch bool
	ranges  []Range
}

func (f *textFormatter) WriteResult(path string, matches []ContentMatch) error {
	if _, err := fmt.Fprintln(f.out, path); err != nil {
		return err
	}

	if len(matches) > 0 {
		lines := collectLines(matches)
		width := lineNumberWidth(lines)
		for _, l := range lines {
			text := l.text
			if f.cfg.Color && l.isMatch {
				text = highlight(text, l.ranges)
			}
			if _, err := fmt.Fprintf(f.out, "  %*d.  %s\n", width, l.num, text); err != nil {
				return err
			}
		}
	}

	_, err := fmt.Fprintln(f.out)
	return err
}

func (f *textFormatter) WriteWarning(path, reason string) error {
	_, err := fmt.Fprintf(f.diag, "warning: %s: %s\n", path, reason)
	return err
}

func collectLines(matches []ContentMatch) []renderedLine {
	var lines []renderedLine
	for _, m := range matches {
		for _, cb := range m.ContextBefore {
			lines = append(lines, renderedLine{num: cb.LineNumber, text: cb.Text})
		}
		lines = append(lines, renderedLine{num: m.LineNumber, text: m.LineText, isMatch: true, ranges: m.Ranges})
		for _, ca := range m.ContextAfter {
			lines = append(lines, renderedLine{num: ca.LineNumber, text: ca.Text})
		}
	}
	sort.SliceStable(lines, func(i, j int) bool { return lines[i].num < lines[j].num })
	return lines
}

func lineNumberWidth(lines []renderedLine) int {
	max := 0
	for _, l := range lines {
		if l.num > max {
			max = l.num
		}
	}
	return len(strconv.Itoa(max))
}

// highlight wraps each match range in bold, used only under --color. Ranges
// are byte offsets (finder.MatchRange's unit), matching text's own indexing
// directly with no rune conversion.
func highlight(text string, ranges []Range) string {
	var out []byte
	last := 0
	for _, r := range ranges {
		if r.Start < last || r.End > len(text) || r.Start > r.End {
			continue
		}
		out = append(out, text[last:r.Start]...)
		out = append(out, Bold...)
		out = append(out, text[r.Start:r.End]...)
		out = append(out, Reset...)
		last = r.End
	}
	out = append(out, text[last:]...)
	return string(out)
}
