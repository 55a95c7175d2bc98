package binstrings

import (
	"sort"
	"unicode"
	"unicode/utf16"
	"unicode/utf8"
)

// Encoding identifies the source encoding of an ExtractedString.
type Encoding int

const (
	ASCII Encoding = iota
	UTF8
	UTF16LE
)

func (e Encoding) String() string {
	switch e {
	case ASCII:
		return "ASCII"
	case UTF8:
		return "UTF-8"
	case UTF16LE:
		return "UTF-16LE"
	default:
		return "unknown"
	}
}

// ExtractedString is one maximal printable run found in a byte stream,
// tagged with the absolute byte offset of its first byte in the source.
type ExtractedString struct {
	Value      string
	ByteOffset int64
	Encoding   Encoding
}

// MinRunLength is the minimum number of characters a printable run must
// reach before it is reported.
const MinRunLength = 4

// run is an internal candidate before overlap resolution; End is the
// exclusive byte offset just past the run.
type run struct {
	value    string
	start    int64
	end      int64
	encoding Encoding
}

// Extract streams printable substrings out of data per §4.3: an ASCII/UTF-8
// pass and a UTF-16LE pass, each producing runs of at least MinRunLength
// characters, with overlap between the two passes resolved in favor of the
// longer run (ties favor UTF-8/ASCII).
func Extract(data []byte) []ExtractedString {
	utf8Runs := extractUTF8(data)
	utf16Runs := extractUTF16LE(data)
	merged := resolveOverlaps(utf8Runs, utf16Runs)

	out := make([]ExtractedString, 0, len(merged))
	for _, r := range merged {
		out = append(out, ExtractedString{Value: r.value, ByteOffset: r.start, Encoding: r.encoding})
	}
	return out
}

// isPrintableRune reports membership in general categories L, N, P, S, Z,
// plus ASCII tab and space (§4.3, GLOSSARY "Printable").
func isPrintableRune(r rune) bool {
	if r == '\t' || r == ' ' {
		return true
	}
	switch {
	case unicode.IsLetter(r), unicode.IsNumber(r), unicode.IsPunct(r), unicode.IsSymbol(r), unicode.Is(unicode.Z, r):
		return true
	}
	return false
}

// extractUTF8 decodes data as a sequence of UTF-8 (including plain ASCII)
// code points, accumulating a run while each decodes to a printable code
// point, terminating the run on a control character (other than tab) or a
// decoding failure.
func extractUTF8(data []byte) []run {
	var runs []run
	i := 0
	runStart := -1
	var buf []rune
	nonASCII := false

	flush := func(end int) {
		if runStart >= 0 && len(buf) >= MinRunLength {
			enc := ASCII
			if nonASCII {
				enc = UTF8
			}
			runs = append(runs, run{value: string(buf), start: int64(runStart), end: int64(end), encoding: enc})
		}
		runStart = -1
		buf = nil
		nonASCII = false
	}

	for i < len(data) {
		r, size := utf8.DecodeRune(data[i:])
		if r == utf8.RuneError && size <= 1 {
			flush(i)
			i++
			continue
		}
		if r < 0x20 && r != '\t' {
			flush(i)
			i += size
			continue
		}
		if !isPrintableRune(r) {
			flush(i)
			i += size
			continue
		}
		if runStart < 0 {
			runStart = i
		}
		if r > 0x7F {
			nonASCII = true
		}
		buf = append(buf, r)
		i += size
	}
	flush(len(data))
	return runs
}

// extractUTF16LE scans for alternating printable-low-byte/0x00-high-byte
// sequences starting at even offsets, per §4.3.
func extractUTF16LE(data []byte) []run {
	var runs []run
	n := len(data)

	for start := 0; start+1 < n; start += 2 {
		var units []uint16
		i := start
		for i+1 < n {
			lo, hi := data[i], data[i+1]
			if hi != 0x00 {
				break
			}
			r := rune(lo)
			if !isPrintableRune(r) {
				break
			}
			units = append(units, uint16(lo))
			i += 2
		}
		if len(units) >= MinRunLength {
			decoded := utf16.Decode(units)
			runs = append(runs, run{
				value:    string(decoded),
				start:    int64(start),
				end:      int64(i),
				encoding: UTF16LE,
			})
		}
	}
	return runs
}

// resolveOverlaps merges two sets of candidate runs into one
// non-overlapping, offset-sorted list. The UTF-8/ASCII runs never overlap
// each other; the UTF-16LE pass reports a run from every even start, so its
// suffix runs overlap and are dropped here. Where runs overlap, the longer
// one (in bytes) wins; ties favor UTF-8/ASCII.
func resolveOverlaps(utf8Runs, utf16Runs []run) []run {
	all := make([]run, 0, len(utf8Runs)+len(utf16Runs))
	all = append(all, utf8Runs...)
	all = append(all, utf16Runs...)
	sort.Slice(all, func(i, j int) bool {
		if all[i].start != all[j].start {
			return all[i].start < all[j].start
		}
		li, lj := all[i].end-all[i].start, all[j].end-all[j].start
		if li != lj {
			return li > lj
		}
		// Tie: UTF-8/ASCII (not UTF16LE) wins.
		return all[i].encoding != UTF16LE && all[j].encoding == UTF16LE
	})

	var result []run
	for _, r := range all {
		n := len(result)
		if n == 0 || r.start >= result[n-1].end {
			result = append(result, r)
			continue
		}
		// r overlaps the last kept run: keep the longer of the two, and on a
		// tie the UTF-8/ASCII one.
		prev := result[n-1]
		lr, lp := r.end-r.start, prev.end-prev.start
		if lr > lp || (lr == lp && prev.encoding == UTF16LE && r.encoding != UTF16LE) {
			result[n-1] = r
		}
	}
	return result
}
