package timex

import "time"

// NowMs returns Unix milliseconds as int64.
func NowMs() int64 { return time.Now().UnixMilli() }

// ElapsedMs returns now-then, clamped at zero so a stale timestamp never
// yields a negative duration.
func ElapsedMs(now, then int64) int64 {
	if now < then {
		return 0
	}
	return now - then
}
