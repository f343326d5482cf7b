package formatters

import (
	"strconv"
	"time"
)

const (
	filetimeEpochOffset = 116444736000000000
	filetimeNever       = int64(9223372036854775807)

	filetimeTicksPerSecond = 10000000

	// storedTimeLayout is how the collector normalizes FILETIME and
	// Generalized-Time attributes before storing them.
	storedTimeLayout      = "2006-01-02 15:04:05.999999999 -0700 MST"
	generalizedTimeLayout = "20060102150405.0Z"
	displayTimeLayout     = "2006-01-02 15:04:05 UTC"

	neverText       = "never"
	storedNeverText = "N/A"
)

// TimeTransformer renders timestamps stored in any of the collector's forms
// (normalized time text, raw FILETIME integers, Generalized-Time) in UTC.
type TimeTransformer struct{}

func (TimeTransformer) Transform(value string) string {
	if value == storedNeverText {
		return neverText
	}
	if t, err := time.Parse(storedTimeLayout, value); err == nil {
		return t.UTC().Format(displayTimeLayout)
	}
	if t, err := time.Parse(generalizedTimeLayout, value); err == nil {
		return t.UTC().Format(displayTimeLayout)
	}
	if ft, err := strconv.ParseInt(value, 10, 64); err == nil {
		t, ok := FromFiletime(ft)
		if !ok {
			return neverText
		}
		return t.Format(displayTimeLayout)
	}
	return value
}

// FromFiletime converts a Windows FILETIME (100ns ticks since 1601) to UTC.
// 0 and the maximum value mean "never" and report false.
func FromFiletime(ft int64) (time.Time, bool) {
	if ft <= 0 || ft == filetimeNever {
		return time.Time{}, false
	}
	ticks := ft - filetimeEpochOffset
	return time.Unix(ticks/filetimeTicksPerSecond, (ticks%filetimeTicksPerSecond)*100).UTC(), true
}
