// Package format renders torrent quantities for the list and detail panes.
// Compact forms are single-unit and at most one decimal so columns stay
// narrow; long forms spell things out for the detail pane.
package format

import (
	"fmt"
	"time"

	"github.com/dustin/go-humanize"
)

const (
	kib = 1 << 10
	mib = 1 << 20
	gib = 1 << 30
	tib = 1 << 40
)

// Size renders a byte count in the compact single-letter form used by list
// columns: everything below one MiB shows as K.
func Size(bytes int64) string {
	switch {
	case bytes >= tib:
		return trim1(float64(bytes)/tib) + "T"
	case bytes >= gib:
		return trim1(float64(bytes)/gib) + "G"
	case bytes >= mib:
		return trim1(float64(bytes)/mib) + "M"
	}
	return trim1(float64(bytes)/kib) + "K"
}

// SizeLong renders a byte count with full IEC units for the detail pane.
func SizeLong(bytes int64) string {
	if bytes < 0 {
		return "?"
	}
	return humanize.IBytes(uint64(bytes))
}

// Rate renders a transfer rate, blank when idle so quiet rows stay quiet.
func Rate(bytesPerSecond int64) string {
	if bytesPerSecond <= 0 {
		return ""
	}
	return Size(bytesPerSecond)
}

// ETA renders remaining seconds in the compact single-unit form. The daemon
// reports -1 when it has no estimate and -2 when it never will.
func ETA(seconds int64) string {
	if seconds == -2 {
		return "oo"
	}
	if seconds < 0 {
		return "?"
	}
	return compactDuration(seconds)
}

// Duration renders elapsed seconds in the compact single-unit form.
func Duration(seconds int64) string {
	if seconds < 0 {
		return "?"
	}
	return compactDuration(seconds)
}

const (
	minuteSeconds = 60
	hourSeconds   = 3600
	daySeconds    = 86400
	monthSeconds  = 2360591 // 27.321661 days, the lunar month
	yearSeconds   = 31557600
)

func compactDuration(seconds int64) string {
	round := func(unit int64) int64 {
		return (seconds + unit/2) / unit
	}
	switch {
	case seconds < minuteSeconds:
		return fmt.Sprintf("%ds", seconds)
	case seconds < hourSeconds:
		return fmt.Sprintf("%dm", round(minuteSeconds))
	case seconds < daySeconds:
		return fmt.Sprintf("%dh", round(hourSeconds))
	case seconds < monthSeconds:
		return fmt.Sprintf("%dd", round(daySeconds))
	case seconds < yearSeconds:
		return fmt.Sprintf("%dM", round(monthSeconds))
	}
	return fmt.Sprintf("%dy", round(yearSeconds))
}

// Percent renders a 0..1 fraction as a whole percentage.
func Percent(fraction float64) string {
	if fraction < 0 {
		fraction = 0
	}
	if fraction > 1 {
		fraction = 1
	}
	return fmt.Sprintf("%.0f%%", fraction*100)
}

// Ratio renders an upload ratio; the daemon reports -1 before anything was
// downloaded and -2 for infinite.
func Ratio(ratio float64) string {
	if ratio == -2 {
		return "oo"
	}
	if ratio < 0 {
		return "?"
	}
	return fmt.Sprintf("%.2f", ratio)
}

// Time renders a unix timestamp relative to now ("3 days ago") for the
// detail pane; zero means the event never happened.
func Time(unix int64) string {
	if unix <= 0 {
		return "never"
	}
	return humanize.Time(time.Unix(unix, 0))
}

// Count renders a count with thousands separators.
func Count(n int64) string {
	if n < 0 {
		return "?"
	}
	return humanize.Comma(n)
}

func trim1(v float64) string {
	s := fmt.Sprintf("%.1f", v)
	if len(s) > 2 && s[len(s)-2:] == ".0" {
		return s[:len(s)-2]
	}
	return s
}
