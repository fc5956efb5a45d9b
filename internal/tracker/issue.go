// Package tracker models Bitbucket issue records and fetches them from the
// Bitbucket 1.0 REST API.
package tracker

import (
	"fmt"
	"time"
)

// Issue is one issue as reported by the Bitbucket 1.0 API. Records are
// immutable snapshots of tracker state; plansync never writes them back.
type Issue struct {
	LocalID        int      `json:"local_id"`
	Title          string   `json:"title"`
	Status         string   `json:"status"`
	Priority       string   `json:"priority"`
	CreatedOn      string   `json:"created_on"`
	UTCLastUpdated string   `json:"utc_last_updated"`
	ReportedBy     *Account `json:"reported_by,omitempty"`
	Responsible    *Account `json:"responsible,omitempty"`
	Metadata       Metadata `json:"metadata"`
}

// Account identifies a Bitbucket user attached to an issue.
type Account struct {
	Username    string `json:"username"`
	DisplayName string `json:"display_name,omitempty"`
}

// Metadata is the issue's classification bag. Milestone is empty when the
// tracker reports null.
type Metadata struct {
	Kind      string `json:"kind"`
	Milestone string `json:"milestone"`
	Component string `json:"component,omitempty"`
	Version   string `json:"version,omitempty"`
}

// statusPercent maps Bitbucket issue statuses onto Planner percent-complete
// values.
var statusPercent = map[string]string{
	"new":       "0",
	"open":      "0",
	"on hold":   "0",
	"resolved":  "100",
	"invalid":   "100",
	"duplicate": "100",
	"wontfix":   "100",
	"closed":    "100",
}

// statusGlyph marks finished work in task names.
var statusGlyph = map[string]string{
	"resolved":  "✓ ",
	"closed":    "✓ ",
	"invalid":   "✗ ",
	"duplicate": "✗ ",
	"wontfix":   "✗ ",
}

// priorityRank orders Bitbucket priorities, most urgent first. Priorities
// outside the table rank last.
var priorityRank = map[string]int{
	"blocker":  0,
	"critical": 1,
	"major":    2,
	"minor":    3,
	"trivial":  4,
}

// PercentComplete returns the Planner percent-complete value for the issue's
// status. A status outside the mapping table is an error, never a silent
// default.
func (i Issue) PercentComplete() (string, error) {
	pct, ok := statusPercent[i.Status]
	if !ok {
		return "", fmt.Errorf("no percent-complete mapping for issue status %q", i.Status)
	}
	return pct, nil
}

// Closed reports whether the issue's status is a finished one.
func (i Issue) Closed() bool {
	return statusPercent[i.Status] == "100"
}

// Glyph returns the status marker prefixed to task names, "" for open-like
// statuses.
func (i Issue) Glyph() string {
	return statusGlyph[i.Status]
}

// SortKey is the composite ordering applied to tracker-tied sibling tasks:
// open issues before closed ones, then by priority, then by local id.
type SortKey struct {
	StatusRank   int
	PriorityRank int
	LocalID      int
}

// SortKey derives the issue's sibling ordering key.
func (i Issue) SortKey() SortKey {
	status := 0
	if i.Closed() {
		status = 1
	}
	rank, ok := priorityRank[i.Priority]
	if !ok {
		rank = len(priorityRank)
	}
	return SortKey{StatusRank: status, PriorityRank: rank, LocalID: i.LocalID}
}

// Less orders sort keys field by field.
func (k SortKey) Less(other SortKey) bool {
	if k.StatusRank != other.StatusRank {
		return k.StatusRank < other.StatusRank
	}
	if k.PriorityRank != other.PriorityRank {
		return k.PriorityRank < other.PriorityRank
	}
	return k.LocalID < other.LocalID
}

// issueTimeLayouts covers the timestamp shapes the 1.0 API emits:
// created_on like "2015-06-02T23:16:26.709" and utc_last_updated like
// "2015-06-02 21:16:26+00:00".
var issueTimeLayouts = []string{
	"2006-01-02T15:04:05.999999999Z07:00",
	"2006-01-02T15:04:05.999999999",
	"2006-01-02 15:04:05Z07:00",
	"2006-01-02 15:04:05",
}

// ParseTime parses a Bitbucket issue timestamp. Timestamps without an offset
// are taken as UTC.
func ParseTime(value string) (time.Time, error) {
	for _, layout := range issueTimeLayouts {
		if t, err := time.Parse(layout, value); err == nil {
			return t.UTC(), nil
		}
	}
	return time.Time{}, fmt.Errorf("unrecognized issue timestamp %q", value)
}

const workdaySeconds = 8 * 60 * 60

// ElapsedWorkSeconds derives accumulated work from the span between the
// issue's creation and last update: eight working hours per elapsed day,
// with the final partial day capped at one workday. Never negative.
func (i Issue) ElapsedWorkSeconds() (int64, error) {
	created, err := ParseTime(i.CreatedOn)
	if err != nil {
		return 0, fmt.Errorf("issue %d created_on: %w", i.LocalID, err)
	}
	updated, err := ParseTime(i.UTCLastUpdated)
	if err != nil {
		return 0, fmt.Errorf("issue %d utc_last_updated: %w", i.LocalID, err)
	}
	span := updated.Sub(created)
	if span <= 0 {
		return 0, nil
	}
	days := int64(span / (24 * time.Hour))
	remainder := int64((span % (24 * time.Hour)) / time.Second)
	if remainder > workdaySeconds {
		remainder = workdaySeconds
	}
	return days*workdaySeconds + remainder, nil
}
