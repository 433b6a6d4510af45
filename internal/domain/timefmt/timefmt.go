// Package timefmt converts elapsed swim times between seconds and the
// "m:ss.hh" display form.
package timefmt

import (
	"errors"
	"fmt"
	"math"
	"strconv"
	"strings"
)

// ErrInvalidTime is returned for time strings that are not m:ss.hh or ss.hh.
var ErrInvalidTime = errors.New("invalid time")

const (
	hundredthsPerSecond = 100
	hundredthsPerMinute = 60 * hundredthsPerSecond
)

// Format renders seconds as minutes:seconds with two-digit seconds and
// two decimals, e.g. 83.456 -> "1:23.46". The value is rounded to
// hundredths once, before splitting into minutes, so 59.999 renders as
// "1:00.00" rather than "0:60.00".
func Format(seconds float64) string {
	if math.IsNaN(seconds) || math.IsInf(seconds, 0) {
		return strconv.FormatFloat(seconds, 'f', -1, 64)
	}
	if seconds < 0 {
		return "-" + Format(-seconds)
	}
	total := hundredths(seconds)
	return fmt.Sprintf("%d:%02d.%02d",
		total/hundredthsPerMinute,
		(total%hundredthsPerMinute)/hundredthsPerSecond,
		total%hundredthsPerSecond)
}

// hundredths rounds a non-negative value to an integer count of hundredths
// using the same correctly rounded decimal conversion as %.2f.
func hundredths(seconds float64) int64 {
	s := strconv.FormatFloat(seconds, 'f', 2, 64)
	whole, frac, _ := strings.Cut(s, ".")
	w, _ := strconv.ParseInt(whole, 10, 64)
	f, _ := strconv.ParseInt(frac, 10, 64)
	return w*hundredthsPerSecond + f
}

// Parse reads "m:ss.hh" or "ss.hh" into seconds.
func Parse(raw string) (float64, error) {
	s := strings.TrimSpace(raw)
	if s == "" {
		return 0, fmt.Errorf("%w: empty", ErrInvalidTime)
	}
	minutes := 0
	if m, rest, ok := strings.Cut(s, ":"); ok {
		n, err := strconv.Atoi(m)
		if err != nil || n < 0 {
			return 0, fmt.Errorf("%w: %q", ErrInvalidTime, raw)
		}
		minutes = n
		s = rest
	}
	secs, err := strconv.ParseFloat(s, 64)
	if err != nil || secs < 0 || math.IsNaN(secs) || math.IsInf(secs, 0) {
		return 0, fmt.Errorf("%w: %q", ErrInvalidTime, raw)
	}
	return float64(minutes)*60 + secs, nil
}
