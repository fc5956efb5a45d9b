package reconcile

import (
	"strings"

	"github.com/plansync-dev/plansync/internal/planner"
	"github.com/plansync-dev/plansync/internal/tracker"
)

// ProjectTask returns the namespace's top-level "owner/slug" task, creating
// it on demand as the last top-level entry.
func ProjectTask(doc *planner.Document, spec planner.TrackerSpec) (*planner.Task, error) {
	task, _, err := doc.EnsureChild(nil, spec.FullName())
	return task, err
}

// milestonePath returns the milestone grouping levels for a label. An empty
// label groups under "Unplanned". A dotted label "x.y.z" nests one level per
// accumulated dotted prefix from the second component on ("x.y", "x.y.z").
func milestonePath(milestone string) []string {
	if milestone == "" {
		return []string{"Unplanned"}
	}
	if !strings.Contains(milestone, ".") {
		return []string{milestone}
	}
	parts := strings.Split(milestone, ".")
	names := make([]string, 0, len(parts)-1)
	for i := 2; i <= len(parts); i++ {
		names = append(names, strings.Join(parts[:i], "."))
	}
	return names
}

// groupingPath returns the grouping node names between a project task and an
// issue's own task: the milestone levels, then the kind when the issue has
// one.
func groupingPath(issue tracker.Issue) []string {
	names := milestonePath(issue.Metadata.Milestone)
	if kind := issue.Metadata.Kind; kind != "" {
		names = append(names, kind)
	}
	return names
}

// EnsurePlacement resolves the grouping node an issue's task belongs under,
// creating missing levels along the way. When chainMilestones is set, a
// newly created milestone level other than "Unplanned" records the project
// task's previous last child as its finish-to-start predecessor, so fresh
// milestones line up after existing ones by default.
func EnsurePlacement(doc *planner.Document, project *planner.Task, issue tracker.Issue, chainMilestones bool) (*planner.Task, error) {
	parent := project
	for depth, name := range groupingPath(issue) {
		var prevLast *planner.Task
		if kids := project.Children; depth == 0 && len(kids) > 0 {
			prevLast = kids[len(kids)-1]
		}
		child, created, err := doc.EnsureChild(parent, name)
		if err != nil {
			return nil, err
		}
		if created && depth == 0 && chainMilestones && name != "Unplanned" && prevLast != nil {
			planner.AddPredecessor(child, prevLast)
		}
		parent = child
	}
	return parent, nil
}
