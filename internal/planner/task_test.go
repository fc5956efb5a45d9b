package planner

import "testing"

func emptyDoc() *Document {
	return &Document{FormatVersion: "2"}
}

func TestNewTaskDefaults(t *testing.T) {
	doc := emptyDoc()
	task := doc.NewTask("biocommons/eutils")
	if task.ID != "1" {
		t.Errorf("ID = %q, want 1 for an empty document", task.ID)
	}
	if task.Name != "biocommons/eutils" {
		t.Errorf("Name = %q", task.Name)
	}
	if task.PercentComplete != "0" || task.Priority != "0" {
		t.Errorf("percent/priority = %q/%q, want 0/0", task.PercentComplete, task.Priority)
	}
	if task.Type != "normal" || task.Scheduling != "fixed-work" {
		t.Errorf("type/scheduling = %q/%q", task.Type, task.Scheduling)
	}
	if task.Start != "" || task.End != "" || task.WorkStart != "" || task.Work != "" {
		t.Error("dates and work should start empty")
	}
}

func TestNextTaskIDIsDocumentWideMax(t *testing.T) {
	doc := emptyDoc()
	doc.AppendChild(nil, &Task{ID: "3", Name: "a"})
	doc.AppendChild(doc.Tasks.Tasks[0], &Task{ID: "7", Name: "b"})
	doc.AppendChild(nil, &Task{ID: "junk", Name: "c"})
	if got := doc.NextTaskID(); got != 8 {
		t.Errorf("NextTaskID = %d, want 8", got)
	}
}

func TestEnsureChildCreatesOnce(t *testing.T) {
	doc := emptyDoc()
	child, created, err := doc.EnsureChild(nil, "M1")
	if err != nil {
		t.Fatalf("EnsureChild failed: %v", err)
	}
	if !created {
		t.Error("first EnsureChild should create")
	}
	again, created, err := doc.EnsureChild(nil, "M1")
	if err != nil {
		t.Fatalf("second EnsureChild failed: %v", err)
	}
	if created {
		t.Error("second EnsureChild should reuse")
	}
	if again != child {
		t.Error("EnsureChild returned a different node on reuse")
	}
	if len(doc.Tasks.Tasks) != 1 {
		t.Errorf("top-level children = %d, want 1", len(doc.Tasks.Tasks))
	}
}

func TestFindChildDuplicateNameIsError(t *testing.T) {
	doc := emptyDoc()
	doc.AppendChild(nil, &Task{ID: "1", Name: "M1"})
	doc.AppendChild(nil, &Task{ID: "2", Name: "M1"})
	if _, err := doc.FindChild(nil, "M1"); err == nil {
		t.Fatal("expected duplicate-name error")
	}
}

func TestDetachAndReattach(t *testing.T) {
	doc := emptyDoc()
	m1, _, err := doc.EnsureChild(nil, "M1")
	if err != nil {
		t.Fatal(err)
	}
	m2, _, err := doc.EnsureChild(nil, "M2")
	if err != nil {
		t.Fatal(err)
	}
	task := doc.NewTask("[FOO-2] Title")
	doc.AppendChild(m1, task)

	parent, found := doc.ParentOf(task)
	if !found || parent != m1 {
		t.Fatalf("ParentOf = %v found=%v, want M1", parent, found)
	}

	if !doc.Detach(task) {
		t.Fatal("Detach failed to find the node")
	}
	if len(m1.Children) != 0 {
		t.Error("node still attached to M1")
	}
	doc.AppendChild(m2, task)
	parent, found = doc.ParentOf(task)
	if !found || parent != m2 {
		t.Errorf("ParentOf after move = %v found=%v, want M2", parent, found)
	}
}

func TestDetachMissingNode(t *testing.T) {
	doc := emptyDoc()
	if doc.Detach(&Task{ID: "99"}) {
		t.Error("Detach reported success for a node outside the tree")
	}
}

func TestParentOfTopLevelTask(t *testing.T) {
	doc := emptyDoc()
	top, _, err := doc.EnsureChild(nil, "biocommons/eutils")
	if err != nil {
		t.Fatal(err)
	}
	parent, found := doc.ParentOf(top)
	if !found {
		t.Fatal("top-level task not found")
	}
	if parent != nil {
		t.Errorf("parent = %v, want nil for top-level", parent)
	}
}

func TestAddPredecessor(t *testing.T) {
	doc := emptyDoc()
	first, _, err := doc.EnsureChild(nil, "0.1")
	if err != nil {
		t.Fatal(err)
	}
	second, _, err := doc.EnsureChild(nil, "0.2")
	if err != nil {
		t.Fatal(err)
	}
	AddPredecessor(second, first)
	if second.Predecessors == nil || len(second.Predecessors.Items) != 1 {
		t.Fatal("predecessor edge missing")
	}
	edge := second.Predecessors.Items[0]
	if edge.PredecessorID != first.ID {
		t.Errorf("PredecessorID = %q, want %q", edge.PredecessorID, first.ID)
	}
	if edge.Type != "FS" {
		t.Errorf("Type = %q, want FS", edge.Type)
	}
	if edge.ID != "1" {
		t.Errorf("ID = %q, want 1", edge.ID)
	}
}
