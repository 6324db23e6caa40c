// Package formatting provides parsing and rendering of human-readable byte
// sizes for configuration values.
package formatting

import (
	"fmt"
	"math"
	"regexp"
	"slices"
	"strconv"
	"strings"
)

var units = []string{"B", "KB", "MB", "GB", "TB", "PB"}

var sizePattern = regexp.MustCompile(`^(\d+\.?\d*)\s*([A-Za-z]*)$`)

// FormatBytes renders a byte count using base-1024 units.
func FormatBytes(n int64, precision int) string {
	if n == 0 {
		return "0 B"
	}
	if precision < 0 {
		precision = 0
	}

	f := float64(n)
	idx := min(int(math.Floor(math.Log(f)/math.Log(1024))), len(units)-1)
	size := f / math.Pow(1024, float64(idx))

	return strconv.FormatFloat(size, 'f', precision, 64) + " " + units[idx]
}

// ParseBytes parses a human-readable size ("10MB", "512 KB") into a byte
// count. A bare number means bytes; unit matching is case-insensitive.
func ParseBytes(s string) (int64, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return 0, fmt.Errorf("empty byte size string")
	}

	matches := sizePattern.FindStringSubmatch(s)
	if matches == nil {
		return 0, fmt.Errorf("invalid byte size: %q", s)
	}

	value, err := strconv.ParseFloat(matches[1], 64)
	if err != nil {
		return 0, fmt.Errorf("invalid byte size number: %w", err)
	}

	unit := strings.ToUpper(matches[2])
	if unit == "" {
		return int64(value), nil
	}

	idx := slices.Index(units, unit)
	if idx == -1 {
		return 0, fmt.Errorf("unknown byte size unit: %q", unit)
	}

	return int64(value * math.Pow(1024, float64(idx))), nil
}
