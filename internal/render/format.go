package render

import (
	"fmt"
	"math"
	"strconv"
	"strings"
	"time"

	"github.com/dustin/go-humanize"
	"github.com/ncruces/go-strftime"
)

var statusLabels = [...]string{
	"Stopped",
	"Check wait",
	"Check",
	"Download wait",
	"Download",
	"Seed wait",
	"Seed",
	"Isolated",
}

const (
	unknownStatus    = "Unknown"
	unknownRemaining = "remaining time unknown"
	noElapsed        = "Time not available"

	// ETAs at or above 999 hours are reported as unknown.
	maxETASeconds = 999 * 60 * 60
)

// StatusLabel maps a status index to its label; out of range yields "Unknown".
func StatusLabel(i int) string {
	if i < 0 || i >= len(statusLabels) {
		return unknownStatus
	}
	return statusLabels[i]
}

// Percentage formats a [0,1] fraction as "NN.NN%".
func Percentage(fraction float64) (string, error) {
	if math.IsNaN(fraction) || math.IsInf(fraction, 0) {
		return "", fmt.Errorf("%w: percentage %v", ErrInvalidNumber, fraction)
	}
	return strconv.FormatFloat(fraction*100, 'f', 2, 64) + "%", nil
}

// plural renders "1 day" for exactly one and "N days" otherwise.
func plural(n int64, unit string) string {
	if n == 1 {
		return "1 " + unit
	}
	return strconv.FormatInt(n, 10) + " " + unit + "s"
}

// RemainingTime turns an ETA in seconds into a short phrase, showing the
// largest non-zero unit and, below a count of 4, the next unit down.
func RemainingTime(seconds int64) string {
	if seconds < 0 || seconds >= maxETASeconds {
		return unknownRemaining
	}

	days := seconds / 86400
	hours := (seconds % 86400) / 3600
	minutes := (seconds % 3600) / 60
	secs := seconds % 60

	d := plural(days, "day")
	h := plural(hours, "hour")
	m := plural(minutes, "minute")
	s := plural(secs, "second")

	switch {
	case days > 0:
		if days >= 4 || hours == 0 {
			return d + " remaining"
		}
		return d + ", " + h + " remaining"
	case hours > 0:
		if hours >= 4 || minutes == 0 {
			return h + " remaining"
		}
		return h + ", " + m + " remaining"
	case minutes > 0:
		if minutes >= 4 || secs == 0 {
			return m + " remaining"
		}
		return m + ", " + s + " remaining"
	}
	return s + " remaining"
}

// ParseEpoch converts unix seconds to a time.
//
// Transmission reports 0 for dates it has not recorded yet; 0 is treated
// as now. This mirrors the bot's historical behavior and hides the missing
// date instead of showing 1970.
func ParseEpoch(sec int64, now time.Time) time.Time {
	if sec == 0 {
		return now
	}
	return time.Unix(sec, 0)
}

// FormatDate formats t in loc with a strftime pattern (%A, %d, %B, %H, %M, ...).
// A nil loc keeps t's own location.
func FormatDate(t time.Time, layout string, loc *time.Location) string {
	if loc != nil {
		t = t.In(loc)
	}
	return strftime.Format(layout, t)
}

// ElapsedBetween describes second-first as "H hours, M minutes, S seconds".
//
// Zero units are skipped. The hours and minutes segments always end in ", ",
// so a whole number of minutes renders with a trailing separator. When
// nothing is left (or second precedes first) it returns "Time not available".
func ElapsedBetween(first, second time.Time) string {
	total := int64(second.Sub(first) / time.Second)
	if total <= 0 {
		return noElapsed
	}
	hours := total / 3600
	minutes := (total - hours*3600) / 60
	secs := total - hours*3600 - minutes*60

	var b strings.Builder
	if hours > 0 {
		b.WriteString(strconv.FormatInt(hours, 10) + " hours, ")
	}
	if minutes > 0 {
		b.WriteString(strconv.FormatInt(minutes, 10) + " minutes, ")
	}
	if secs > 0 {
		b.WriteString(strconv.FormatInt(secs, 10) + " seconds")
	}
	return b.String()
}

// EnabledPhrase renders a flag as "enabled" / "not enabled".
func EnabledPhrase(on bool) string {
	if on {
		return "enabled"
	}
	return "not enabled"
}

// ByteUnits selects the magnitude scheme for byte sizes.
type ByteUnits string

const (
	UnitsIEC ByteUnits = "iec" // 1024-based: KiB, MiB, GiB
	UnitsSI  ByteUnits = "si"  // 1000-based: kB, MB, GB
)

// ParseByteUnits accepts "", "iec", "binary", "si" and "decimal".
func ParseByteUnits(s string) (ByteUnits, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "iec", "binary":
		return UnitsIEC, nil
	case "si", "decimal":
		return UnitsSI, nil
	default:
		return "", fmt.Errorf("render: unknown byte units %q", s)
	}
}

// FormatBytes renders a byte count (sizes and per-second rates alike).
// Zero renders as "0 B"; negative counts are rejected.
func FormatBytes(n int64, units ByteUnits) (string, error) {
	if n < 0 {
		return "", fmt.Errorf("%w: byte count %d", ErrInvalidNumber, n)
	}
	if units == UnitsSI {
		return humanize.Bytes(uint64(n)), nil
	}
	return humanize.IBytes(uint64(n)), nil
}
