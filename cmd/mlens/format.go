package main

import (
	"fmt"
	"time"
)

// formatAge renders how long ago t was, like "2h 15m ago".
func formatAge(t time.Time) string {
	if t.IsZero() {
		return "never"
	}
	d := time.Since(t)
	if d < 0 {
		d = 0
	}
	if d < time.Minute {
		return fmt.Sprintf("%ds ago", int(d.Seconds()))
	}
	if d < time.Hour {
		return fmt.Sprintf("%dm ago", int(d.Minutes()))
	}
	h := int(d.Hours())
	m := int(d.Minutes()) % 60
	if h >= 24 {
		days := h / 24
		return fmt.Sprintf("%dd %dh ago", days, h%24)
	}
	return fmt.Sprintf("%dh %dm ago", h, m)
}
