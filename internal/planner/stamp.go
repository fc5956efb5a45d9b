package planner

import (
	"fmt"
	"time"
)

// StampLayout is the timestamp layout Planner uses for task and project
// dates, e.g. "20150602T231626Z".
const StampLayout = "20060102T150405Z"

// FormatStamp renders t as a Planner timestamp.
func FormatStamp(t time.Time) string {
	return t.UTC().Format(StampLayout)
}

// ParseStamp parses a Planner timestamp.
func ParseStamp(value string) (time.Time, error) {
	t, err := time.Parse(StampLayout, value)
	if err != nil {
		return time.Time{}, fmt.Errorf("invalid planner timestamp %q: %w", value, err)
	}
	return t, nil
}
