package cliui

import (
	"fmt"
	"strings"
	"time"
	"unicode/utf8"
)

// Truncate returns s trimmed to at most max runes. If truncated, "..." is
// appended within the budget.
func Truncate(s string, max int) string {
	if max <= 0 {
		return ""
	}
	if utf8.RuneCountInString(s) <= max {
		return s
	}
	rs := []rune(s)
	if max <= 3 {
		return string(rs[:max])
	}
	return string(rs[:max-3]) + "..."
}

// FormatUnix renders a unix-second timestamp for table output.
func FormatUnix(ts int64) string {
	if ts <= 0 {
		return "-"
	}
	return time.Unix(ts, 0).UTC().Format("2006-01-02 15:04:05Z")
}

// Percent renders a percentage with one decimal place.
func Percent(v float64) string {
	return fmt.Sprintf("%.1f%%", v)
}

type KV struct {
	K string
	V string
}

// JoinKV renders key=value pairs separated by two spaces, skipping blank keys.
func JoinKV(pairs ...KV) string {
	parts := make([]string, 0, len(pairs))
	for _, p := range pairs {
		if strings.TrimSpace(p.K) == "" {
			continue
		}
		parts = append(parts, p.K+"="+p.V)
	}
	return strings.Join(parts, "  ")
}
