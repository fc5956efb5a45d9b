package reconcile

import (
	"fmt"
	"log/slog"
	"regexp"
	"strconv"

	"github.com/plansync-dev/plansync/internal/planner"
)

// Tag renders the bracket marker that ties a task name to a tracker issue.
func Tag(prefix string, id int) string {
	return fmt.Sprintf("[%s-%d]", prefix, id)
}

// tagPattern matches the bracket marker for one prefix anywhere in a task
// name and captures the issue's local id.
func tagPattern(prefix string) *regexp.Regexp {
	return regexp.MustCompile(`\[` + regexp.QuoteMeta(prefix) + `-(\d+)\]`)
}

// Correspondence maps issue local ids to the task nodes carrying their
// markers. Tasks without a marker for this prefix are skipped. A marker
// duplicated across tasks keeps the node encountered last in document order;
// the collision is logged, not fatal.
func Correspondence(doc *planner.Document, prefix string, logger *slog.Logger) map[int]*planner.Task {
	re := tagPattern(prefix)
	tasks := make(map[int]*planner.Task)
	doc.WalkTasks(func(t *planner.Task) {
		m := re.FindStringSubmatch(t.Name)
		if m == nil {
			return
		}
		id, err := strconv.Atoi(m[1])
		if err != nil {
			return
		}
		if prev, ok := tasks[id]; ok {
			logger.Warn("duplicate issue marker in document",
				"marker", Tag(prefix, id), "dropped", prev.Name, "kept", t.Name)
		}
		tasks[id] = t
	})
	return tasks
}
