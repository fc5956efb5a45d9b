package reconcile

import (
	"fmt"
	"strconv"

	"github.com/plansync-dev/plansync/internal/planner"
	"github.com/plansync-dev/plansync/internal/tracker"
)

// CreatePlaceholder appends a bare-marker task for an issue under parent.
// Attributes beyond the defaults are left for the update pass.
func CreatePlaceholder(doc *planner.Document, parent *planner.Task, prefix string, id int) *planner.Task {
	t := doc.NewTask(Tag(prefix, id))
	doc.AppendChild(parent, t)
	return t
}

// UpdateTask refreshes a task's attributes from its issue record. Name,
// percent-complete, and work are always rewritten. Dates are set-if-unset:
// once a human or an earlier run has put a start, work-start, or end on the
// task, later syncs leave it alone.
func UpdateTask(t *planner.Task, prefix string, issue tracker.Issue) error {
	pct, err := issue.PercentComplete()
	if err != nil {
		return fmt.Errorf("issue %d: %w", issue.LocalID, err)
	}
	work, err := issue.ElapsedWorkSeconds()
	if err != nil {
		return err
	}

	t.Name = issue.Glyph() + Tag(prefix, issue.LocalID) + " " + issue.Title
	t.PercentComplete = pct
	t.Work = strconv.FormatInt(work, 10)

	if t.Start == "" {
		created, err := tracker.ParseTime(issue.CreatedOn)
		if err != nil {
			return fmt.Errorf("issue %d created_on: %w", issue.LocalID, err)
		}
		t.Start = planner.FormatStamp(created)
		t.Constraint = &planner.Constraint{Type: planner.ConstraintStartNoEarlier, Time: t.Start}
	}
	if t.WorkStart == "" {
		t.WorkStart = t.Start
	}
	if t.End == "" {
		updated, err := tracker.ParseTime(issue.UTCLastUpdated)
		if err != nil {
			return fmt.Errorf("issue %d utc_last_updated: %w", issue.LocalID, err)
		}
		t.End = planner.FormatStamp(updated)
	}
	return nil
}

// Relocate moves t under parent unless it already sits there, preserving its
// attributes and subtree. Reports whether a move happened.
func Relocate(doc *planner.Document, t, parent *planner.Task) (bool, error) {
	current, found := doc.ParentOf(t)
	if !found {
		return false, fmt.Errorf("task %q is not attached to the document", t.Name)
	}
	if current == parent {
		return false, nil
	}
	doc.Detach(t)
	doc.AppendChild(parent, t)
	return true, nil
}
