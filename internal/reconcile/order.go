package reconcile

import (
	"sort"

	"github.com/plansync-dev/plansync/internal/planner"
	"github.com/plansync-dev/plansync/internal/tracker"
)

// ReorderSiblings stable-sorts parent's direct children by their issues'
// composite sort key. Children absent from keys carry no key and sort before
// every keyed child; the stable sort keeps their relative order. Reports
// whether the order actually changed.
func ReorderSiblings(parent *planner.Task, keys map[*planner.Task]tracker.SortKey) bool {
	kids := parent.Children
	if len(kids) < 2 {
		return false
	}
	before := make([]*planner.Task, len(kids))
	copy(before, kids)

	sort.SliceStable(kids, func(i, j int) bool {
		ki, iKeyed := keys[kids[i]]
		kj, jKeyed := keys[kids[j]]
		switch {
		case !iKeyed && !jKeyed:
			return false
		case !iKeyed:
			return true
		case !jKeyed:
			return false
		default:
			return ki.Less(kj)
		}
	})

	for i := range kids {
		if kids[i] != before[i] {
			return true
		}
	}
	return false
}
