package format

import (
	"fmt"
	"math"
	"strconv"
	"strings"
	"time"
)

// TimestampLayout is the default wall-clock layout for start and end stamps.
const TimestampLayout = "2006-01-02T15:04:05"

const (
	secondsPerMinute = 60
	secondsPerHour   = 60 * secondsPerMinute
	secondsPerDay    = 24 * secondsPerHour
)

// maxSeconds is the longest span a time.Duration can hold.
var maxSeconds = time.Duration(math.MaxInt64).Seconds()

// FormatTimespan renders a duration given in seconds.
//
// Spans of a minute or more are decomposed greedily into days, hours, minutes
// and seconds, keeping only non-zero parts and stopping once less than a second
// remains ("1 h 1 min 1 s"). Shorter spans use one unit from seconds down to
// nanoseconds with three significant digits ("1.23 s", "123 µs"). Zero, negative
// and NaN inputs render as "0 ns"; +Inf and spans longer than the largest
// time.Duration render as that duration.
func FormatTimespan(seconds float64, units Units) string {
	if math.IsNaN(seconds) || seconds < 0 {
		seconds = 0
	}
	if seconds > maxSeconds {
		seconds = maxSeconds
	}
	if seconds >= secondsPerMinute {
		return formatLong(seconds, units)
	}
	return formatShort(seconds, units)
}

// FormatDuration is FormatTimespan for a time.Duration.
func FormatDuration(d time.Duration, units Units) string {
	return FormatTimespan(d.Seconds(), units)
}

// FormatTimestamp renders t in layout, falling back to TimestampLayout.
func FormatTimestamp(t time.Time, layout string) string {
	if layout == "" {
		layout = TimestampLayout
	}
	return t.Format(layout)
}

func formatLong(seconds float64, units Units) string {
	parts := []struct {
		suffix string
		length float64
	}{
		{units.Day, secondsPerDay},
		{units.Hour, secondsPerHour},
		{units.Min, secondsPerMinute},
		{units.Sec, 1},
	}
	out := make([]string, 0, len(parts))
	leftover := seconds
	for _, p := range parts {
		value := math.Trunc(leftover / p.length)
		if value > 0 {
			leftover = math.Mod(leftover, p.length)
			out = append(out, strconv.FormatFloat(value, 'f', 0, 64)+" "+p.suffix)
		}
		if leftover < 1 {
			break
		}
	}
	return strings.Join(out, " ")
}

// shortScales pairs each sub-minute order with its lower bound in seconds.
// Comparing against the bounds picks the same order as -floor(floor(log10(s))/3)
// without the rounding error log10 shows near powers of ten.
var shortScales = [...]struct {
	min   float64
	scale float64
}{
	{1, 1},
	{1e-3, 1e3},
	{1e-6, 1e6},
	{0, 1e9},
}

func formatShort(seconds float64, units Units) string {
	suffixes := [...]string{units.Sec, units.Milli, units.Micro, units.Nano}

	order := len(shortScales) - 1
	if seconds > 0 {
		for i, s := range shortScales {
			if seconds >= s.min {
				order = i
				break
			}
		}
	}

	text := fmt.Sprintf("%.3g", seconds*shortScales[order].scale)
	// 999.95 µs rounds to "1e+03"; render it as 1 ms instead.
	if order > 0 {
		if v, err := strconv.ParseFloat(text, 64); err == nil && v >= 1000 {
			order--
			text = fmt.Sprintf("%.3g", seconds*shortScales[order].scale)
		}
	}
	return text + " " + suffixes[order]
}
