package reconcile

import (
	"sort"

	"github.com/plansync-dev/plansync/internal/planner"
	"github.com/plansync-dev/plansync/internal/tracker"
)

// Classification partitions one namespace's issue ids into the three
// reconciliation cases. All slices are in ascending id order.
type Classification struct {
	New    []int // tracked, no task yet
	Common []int // tracked with an existing task
	Orphan []int // task marker with no tracked issue
}

// Classify partitions the tracked issue set against the ids already embedded
// in the document's task names.
func Classify(tracked map[int]tracker.Issue, present map[int]*planner.Task) Classification {
	var c Classification
	for id := range tracked {
		if _, ok := present[id]; ok {
			c.Common = append(c.Common, id)
		} else {
			c.New = append(c.New, id)
		}
	}
	for id := range present {
		if _, ok := tracked[id]; !ok {
			c.Orphan = append(c.Orphan, id)
		}
	}
	sort.Ints(c.New)
	sort.Ints(c.Common)
	sort.Ints(c.Orphan)
	return c
}

// ToUpdate returns the ids needing an attribute pass: the symmetric
// difference of Common and New. The two are disjoint by construction, so
// this is their union in ascending order.
func (c Classification) ToUpdate() []int {
	count := make(map[int]int, len(c.Common)+len(c.New))
	for _, id := range c.Common {
		count[id]++
	}
	for _, id := range c.New {
		count[id]++
	}
	ids := make([]int, 0, len(count))
	for id, n := range count {
		if n == 1 {
			ids = append(ids, id)
		}
	}
	sort.Ints(ids)
	return ids
}
