package planner

import (
	"fmt"
	"strconv"
)

// Task is one node of the document's task tree. Attribute values stay
// strings so that documents round-trip without reformatting.
type Task struct {
	ID              string        `xml:"id,attr"`
	Name            string        `xml:"name,attr"`
	Note            string        `xml:"note,attr"`
	Work            string        `xml:"work,attr"`
	Start           string        `xml:"start,attr"`
	End             string        `xml:"end,attr"`
	WorkStart       string        `xml:"work-start,attr"`
	PercentComplete string        `xml:"percent-complete,attr"`
	Priority        string        `xml:"priority,attr"`
	Type            string        `xml:"type,attr"`
	Scheduling      string        `xml:"scheduling,attr"`
	Constraint      *Constraint   `xml:"constraint"`
	Predecessors    *Predecessors `xml:"predecessors"`
	Children        []*Task       `xml:"task"`
}

// ConstraintStartNoEarlier is the constraint type recorded when a start date
// is first populated from tracker data.
const ConstraintStartNoEarlier = "start-no-earlier-than"

// Constraint is a scheduling constraint on a task.
type Constraint struct {
	Type string `xml:"type,attr"`
	Time string `xml:"time,attr"`
}

// Predecessors holds a task's scheduling dependency edges.
type Predecessors struct {
	Items []Predecessor `xml:"predecessor"`
}

// Predecessor is one finish-to-start (or similar) dependency edge.
type Predecessor struct {
	ID            string `xml:"id,attr"`
	PredecessorID string `xml:"predecessor-id,attr"`
	Type          string `xml:"type,attr"`
}

// NewTask allocates a fresh task node with Planner's default attributes and
// the next free document-wide id. The node is not yet attached; callers must
// append it before allocating the next one, or ids will collide.
func (d *Document) NewTask(name string) *Task {
	return &Task{
		ID:              strconv.Itoa(d.NextTaskID()),
		Name:            name,
		Note:            "",
		Work:            "",
		Start:           "",
		End:             "",
		WorkStart:       "",
		PercentComplete: "0",
		Priority:        "0",
		Type:            "normal",
		Scheduling:      "fixed-work",
	}
}

// NextTaskID returns one past the highest numeric task id in the document,
// or 1 for a document without tasks.
func (d *Document) NextTaskID() int {
	max := 0
	d.WalkTasks(func(t *Task) {
		id, err := strconv.Atoi(t.ID)
		if err != nil {
			return
		}
		if id > max {
			max = id
		}
	})
	return max + 1
}

// WalkTasks visits every task in the tree in document (preorder) order.
func (d *Document) WalkTasks(fn func(*Task)) {
	var walk func(tasks []*Task)
	walk = func(tasks []*Task) {
		for _, t := range tasks {
			fn(t)
			walk(t.Children)
		}
	}
	walk(d.Tasks.Tasks)
}

// childrenOf returns the child slice holding parent's children. A nil parent
// addresses the document's top-level task container.
func (d *Document) childrenOf(parent *Task) *[]*Task {
	if parent == nil {
		return &d.Tasks.Tasks
	}
	return &parent.Children
}

// FindChild returns the direct child of parent with the given name, or nil
// when absent. Two same-named children are a hard error: grouping nodes must
// be unique under their parent.
func (d *Document) FindChild(parent *Task, name string) (*Task, error) {
	var found *Task
	for _, child := range *d.childrenOf(parent) {
		if child.Name != name {
			continue
		}
		if found != nil {
			return nil, fmt.Errorf("found multiple tasks named %q", name)
		}
		found = child
	}
	return found, nil
}

// EnsureChild returns the direct child of parent with the given name,
// creating and appending it when absent. The second result reports whether a
// node was created.
func (d *Document) EnsureChild(parent *Task, name string) (*Task, bool, error) {
	child, err := d.FindChild(parent, name)
	if err != nil {
		return nil, false, err
	}
	if child != nil {
		return child, false, nil
	}
	child = d.NewTask(name)
	d.AppendChild(parent, child)
	return child, true, nil
}

// AppendChild attaches t as the last child of parent (nil parent: the
// top-level container).
func (d *Document) AppendChild(parent *Task, t *Task) {
	kids := d.childrenOf(parent)
	*kids = append(*kids, t)
}

// Detach removes t from its current position in the tree and reports whether
// it was found. The node itself is left intact for re-attachment.
func (d *Document) Detach(t *Task) bool {
	var detach func(kids *[]*Task) bool
	detach = func(kids *[]*Task) bool {
		for i, child := range *kids {
			if child == t {
				*kids = append((*kids)[:i], (*kids)[i+1:]...)
				return true
			}
			if detach(&child.Children) {
				return true
			}
		}
		return false
	}
	return detach(&d.Tasks.Tasks)
}

// ParentOf locates t's parent. A nil parent with found true means t sits
// directly under the top-level container.
func (d *Document) ParentOf(t *Task) (parent *Task, found bool) {
	var search func(p *Task, kids []*Task) (*Task, bool)
	search = func(p *Task, kids []*Task) (*Task, bool) {
		for _, child := range kids {
			if child == t {
				return p, true
			}
			if parent, ok := search(child, child.Children); ok {
				return parent, ok
			}
		}
		return nil, false
	}
	return search(nil, d.Tasks.Tasks)
}

// AddPredecessor records a finish-to-start scheduling dependency from t onto
// pred.
func AddPredecessor(t, pred *Task) {
	if t.Predecessors == nil {
		t.Predecessors = &Predecessors{}
	}
	t.Predecessors.Items = append(t.Predecessors.Items, Predecessor{
		ID:            strconv.Itoa(len(t.Predecessors.Items) + 1),
		PredecessorID: pred.ID,
		Type:          "FS",
	})
}
