package filter

import (
	"fmt"
	"strconv"
	"strings"
)

const (
	kilobyte int64 = 1024
	megabyte int64 = 1024 * 1024
)

// ParseSize parses the human size grammar of §4.5: <digits>[unit] where
// unit is KB or MB (case-insensitive); a missing unit means KB.
func ParseSize(s string) (int64, error) {
	trimmed := strings.TrimSpace(s)
	if trimmed == "" {
		return 0, fmt.Errorf("haybale: empty size value")
	}

	upper := strings.ToUpper(trimmed)
	unit := kilobyte
	digits := upper
	switch {
	case strings.HasSuffix(upper, "MB"):
		unit = megabyte
		digits = strings.TrimSuffix(upper, "MB")
	case strings.HasSuffix(upper, "KB"):
		unit = kilobyte
		digits = strings.TrimSuffix(upper, "KB")
	}

	digits = strings.TrimSpace(digits)
	n, err := strconv.ParseInt(digits, 10, 64)
	if err != nil {
		return 0, fmt.Errorf("haybale: invalid size %q: %w", s, err)
	}
	if n < 0 {
		return 0, fmt.Errorf("haybale: negative size %q", s)
	}
	return n * unit, nil
}
