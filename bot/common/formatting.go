package common

import (
	"fmt"
	"strings"
	"time"
)

// FormatCoins formats a coin amount with thousand separators
func FormatCoins(amount int64) string {
	// Convert to string
	str := fmt.Sprintf("%d", amount)

	// Add commas for thousands
	n := len(str)
	if n <= 3 {
		return str
	}

	var result strings.Builder
	for i, digit := range str {
		if i > 0 && (n-i)%3 == 0 {
			result.WriteRune(',')
		}
		result.WriteRune(digit)
	}

	return result.String()
}

// FormatTransferResult formats the result of a transfer
func FormatTransferResult(amount int64, recipientID string) string {
	return fmt.Sprintf("✅ paid **%s coins** to <@%s>",
		FormatCoins(amount), recipientID)
}

// FormatDuration renders a duration as "Xh Ym" for cooldown countdowns
func FormatDuration(d time.Duration) string {
	d = d.Round(time.Minute)
	h := d / time.Hour
	m := (d % time.Hour) / time.Minute
	if h > 0 {
		return fmt.Sprintf("%dh %dm", h, m)
	}
	return fmt.Sprintf("%dm", m)
}

// FormatDiscordTimestamp formats a time as a Discord timestamp that displays in user's local timezone
// Format types: "t" = short time, "T" = long time, "d" = short date, "D" = long date,
// "f" = short date/time, "F" = long date/time, "R" = relative time
func FormatDiscordTimestamp(t time.Time, format string) string {
	return fmt.Sprintf("<t:%d:%s>", t.Unix(), format)
}
