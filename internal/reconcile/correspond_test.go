package reconcile

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestTag(t *testing.T) {
	require.Equal(t, "[FOO-12]", Tag("FOO", 12))
	require.Equal(t, "[a.b-1]", Tag("a.b", 1))
}

// TestCorrespondenceMatchesOnlyPrefix: markers for other prefixes and
// unmarked names stay out of the mapping.
func TestCorrespondenceMatchesOnlyPrefix(t *testing.T) {
	doc := docWithTracker("FOO", "acme", "widgets")
	matched := seedTask(t, doc, []string{"acme/widgets", "M1"}, "✓ [FOO-1] Done work")
	seedTask(t, doc, []string{"acme/widgets", "M1"}, "[BAR-2] Other tracker")
	seedTask(t, doc, []string{"acme/widgets", "M1"}, "Untracked chore")
	nested := seedTask(t, doc, []string{"acme/widgets", "M1"}, "Mid-name [FOO-7] marker")

	tasks := Correspondence(doc, "FOO", testLogger())
	require.Len(t, tasks, 2)
	require.Same(t, matched, tasks[1])
	require.Same(t, nested, tasks[7])
}

// TestCorrespondenceDottedPrefix: a prefix containing regexp metacharacters
// matches literally.
func TestCorrespondenceDottedPrefix(t *testing.T) {
	doc := docWithTracker("a.b", "acme", "widgets")
	seedTask(t, doc, []string{"acme/widgets"}, "[a.b-3] Dotted")
	seedTask(t, doc, []string{"acme/widgets"}, "[axb-4] Not dotted")

	tasks := Correspondence(doc, "a.b", testLogger())
	require.Len(t, tasks, 1)
	require.Contains(t, tasks[3].Name, "Dotted")
}

// TestCorrespondenceDuplicateKeepsLast: two tasks carrying the same marker
// resolve to the one later in document order.
func TestCorrespondenceDuplicateKeepsLast(t *testing.T) {
	doc := docWithTracker("FOO", "acme", "widgets")
	seedTask(t, doc, []string{"acme/widgets", "M1"}, "[FOO-5] First copy")
	later := seedTask(t, doc, []string{"acme/widgets", "M2"}, "[FOO-5] Second copy")

	tasks := Correspondence(doc, "FOO", testLogger())
	require.Len(t, tasks, 1)
	require.Same(t, later, tasks[5])
}
