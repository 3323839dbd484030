package calendar

import "github.com/p-blackswan/studyhub/internal/store"

// Display colors.
const (
	ColorPersonal = store.DefaultPersonalColor
	ColorProject  = "#ef4444"
	ColorDone     = "#22c55e"
	ColorWarning  = "#f59e0b"
	ColorAlert    = "#ef4444"
)

// TaskColor returns the display color of a task. A non-empty explicit color
// wins over the status color.
func TaskColor(status, explicit string) string {
	if explicit != "" {
		return explicit
	}
	switch store.TaskStatus(status) {
	case store.TaskDone:
		return ColorDone
	case store.TaskDoing:
		return ColorWarning
	default:
		return ColorAlert
	}
}

func personalColor(stored string) string {
	if stored == "" {
		return ColorPersonal
	}
	return stored
}
