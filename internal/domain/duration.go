package domain

import (
	"fmt"
	"math"
	"strconv"
	"strings"
	"unicode"
)

// ParseDurationHours converts a runtime string into hours.
//
// Supported shapes: "120 min", "45 m", "20h", "100h+", "2h 30m".
// Anything after the first "h" is ignored, so "2h 30m" reads as 2 hours.
// Unparseable input yields 0.
func ParseDurationHours(runtime string) float64 {
	if runtime == "" {
		return 0
	}
	lower := strings.ToLower(runtime)

	if before, _, found := strings.Cut(lower, "h"); found {
		return nonNegative(leadingFloat(before))
	}

	// "min" contains "m", so one check covers both spellings
	return nonNegative(leadingFloat(lower) / 60)
}

// FormatHours renders an hour total as "45m" below one hour, else "12.5h"
func FormatHours(hours float64) string {
	if hours < 1 {
		return fmt.Sprintf("%dm", int(math.Round(hours*60)))
	}
	return fmt.Sprintf("%.1fh", hours)
}

// leadingFloat parses the longest numeric prefix of s after leading
// whitespace. Returns 0 when there is none.
func leadingFloat(s string) float64 {
	s = strings.TrimLeftFunc(s, unicode.IsSpace)

	end := 0
	seenDigit, seenDot := false, false
scan:
	for i, r := range s {
		switch {
		case r >= '0' && r <= '9':
			seenDigit = true
			end = i + 1
		case r == '.' && !seenDot:
			seenDot = true
		case (r == '-' || r == '+') && i == 0:
		default:
			break scan
		}
	}
	if !seenDigit {
		return 0
	}
	v, err := strconv.ParseFloat(s[:end], 64)
	if err != nil || math.IsNaN(v) || math.IsInf(v, 0) {
		return 0
	}
	return v
}

func nonNegative(v float64) float64 {
	if v < 0 {
		return 0
	}
	return v
}
