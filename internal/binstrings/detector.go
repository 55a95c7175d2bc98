// Package binstrings implements binary-file detection and printable-string
// extraction (§4.3): a zero byte anywhere in the first 8 KiB is the sole
// binary signal.
package binstrings

import "io"

// SniffLimit is the number of leading bytes BinaryDetector inspects.
const SniffLimit = 8192

// IsBinary reports whether the stream is binary per §4.3: binary iff a
// 0x00 byte occurs within the first SniffLimit bytes. Empty and
// shorter-than-the-limit files are classified from their full content, and
// an empty file is always text.
func IsBinary(r io.Reader) (bool, error) {
	buf := make([]byte, SniffLimit)
	n, err := io.ReadFull(r, buf)
	if err != nil && err != io.ErrUnexpectedEOF && err != io.EOF {
		return false, err
	}
	for _, b := range buf[:n] {
		if b == 0x00 {
			return true, nil
		}
	}
	return false, nil
}

// IsBinaryBytes is the byte-slice equivalent of IsBinary, for callers that
// already hold a prefix in memory.
func IsBinaryBytes(prefix []byte) bool {
	limit := len(prefix)
	if limit > SniffLimit {
		limit = SniffLimit
	}
	for _, b := range prefix[:limit] {
		if b == 0x00 {
			return true
		}
	}
	return false
}
