// Package reconcile aligns a Planner document's task tree with the issue
// sets of the trackers it declares: marker correspondence, set
// classification, grouping placement, attribute mutation, and sibling
// ordering, driven per namespace by the Reconciler.
package reconcile

import (
	"context"
	"fmt"
	"log/slog"
	"sort"

	"github.com/google/uuid"

	"github.com/plansync-dev/plansync/internal/cache"
	"github.com/plansync-dev/plansync/internal/planner"
	"github.com/plansync-dev/plansync/internal/tracker"
)

// IssueSource fetches the complete issue set of one tracker project.
type IssueSource interface {
	FetchAllIssues(ctx context.Context, owner, slug string) ([]tracker.Issue, error)
}

// IssueCache persists fetched issue sets between runs.
type IssueCache interface {
	Load(namespace string) ([]tracker.Issue, bool, error)
	Store(namespace string, issues []tracker.Issue) error
}

// Options select and tune one reconciliation run.
type Options struct {
	// Prefixes picks the tracker namespaces to process. Empty means every
	// tracker the document declares, in document order.
	Prefixes []string
	// Refresh forces a tracker fetch for the named prefixes even when the
	// cache holds them.
	Refresh map[string]bool
	// RefreshAll forces a tracker fetch for every processed namespace.
	RefreshAll bool
	// ChainMilestones links each newly created milestone onto the previous
	// one with a finish-to-start dependency.
	ChainMilestones bool
}

// NamespaceSummary reports what one namespace's pass did.
type NamespaceSummary struct {
	Prefix    string
	Tracker   string
	Issues    int
	Created   int
	Updated   int
	Relocated int
	Reordered int
	Orphans   []string
}

// Summary aggregates one whole run.
type Summary struct {
	RunID      string
	Namespaces []NamespaceSummary
	Normalized bool
}

// Reconciler drives issue-to-plan reconciliation across the namespaces a
// document declares.
type Reconciler struct {
	source IssueSource
	cache  IssueCache
	logger *slog.Logger
}

// New creates a Reconciler backed by the given issue source and cache.
func New(source IssueSource, issueCache IssueCache, logger *slog.Logger) *Reconciler {
	return &Reconciler{
		source: source,
		cache:  issueCache,
		logger: logger.With("component", "reconcile"),
	}
}

// Run reconciles doc in place against the selected namespaces and reports
// what changed. The document is only mutated in memory: callers persist it
// once, after the whole run has succeeded, so a mid-run failure leaves the
// original file untouched.
func (r *Reconciler) Run(ctx context.Context, doc *planner.Document, opts Options) (*Summary, error) {
	runID := uuid.NewString()
	logger := r.logger.With("run_id", runID)

	specs, err := selectTrackers(doc, opts.Prefixes)
	if err != nil {
		return nil, err
	}

	summary := &Summary{RunID: runID}
	for _, spec := range specs {
		ns, err := r.syncNamespace(ctx, logger, doc, spec, opts)
		if err != nil {
			return nil, fmt.Errorf("namespace %s: %w", spec.Prefix, err)
		}
		summary.Namespaces = append(summary.Namespaces, *ns)
	}

	summary.Normalized = doc.Normalize()
	if summary.Normalized {
		logger.Info("project start normalized", "project_start", doc.ProjectStart)
	}
	return summary, nil
}

// selectTrackers resolves the requested prefixes against the document's
// declared trackers. A requested prefix the document does not declare is a
// configuration error.
func selectTrackers(doc *planner.Document, prefixes []string) ([]planner.TrackerSpec, error) {
	if len(prefixes) == 0 {
		specs := doc.Trackers()
		if len(specs) == 0 {
			return nil, fmt.Errorf("document declares no trackers")
		}
		return specs, nil
	}

	specs := make([]planner.TrackerSpec, 0, len(prefixes))
	for _, prefix := range prefixes {
		spec, ok := doc.TrackerByPrefix(prefix)
		if !ok {
			return nil, fmt.Errorf("no tracker declared for prefix %q", prefix)
		}
		specs = append(specs, spec)
	}
	return specs, nil
}

// syncNamespace runs the full pipeline for one tracker namespace.
func (r *Reconciler) syncNamespace(ctx context.Context, logger *slog.Logger, doc *planner.Document, spec planner.TrackerSpec, opts Options) (*NamespaceSummary, error) {
	logger = logger.With("prefix", spec.Prefix, "tracker", spec.FullName())

	issues, err := r.loadIssues(ctx, logger, spec, opts)
	if err != nil {
		return nil, err
	}

	tracked := make(map[int]tracker.Issue, len(issues))
	for _, issue := range issues {
		tracked[issue.LocalID] = issue
	}

	tasks := Correspondence(doc, spec.Prefix, logger)
	classes := Classify(tracked, tasks)
	logger.Info("namespace classified",
		"issues", len(tracked),
		"new", len(classes.New),
		"common", len(classes.Common),
		"orphaned", len(classes.Orphan))

	project, err := ProjectTask(doc, spec)
	if err != nil {
		return nil, err
	}

	ns := &NamespaceSummary{Prefix: spec.Prefix, Tracker: spec.FullName(), Issues: len(issues)}

	// Placeholders first, so the update pass treats every tracked issue
	// alike.
	for _, id := range classes.New {
		target, err := EnsurePlacement(doc, project, tracked[id], opts.ChainMilestones)
		if err != nil {
			return nil, err
		}
		tasks[id] = CreatePlaceholder(doc, target, spec.Prefix, id)
		ns.Created++
		logger.Info("task created", "marker", Tag(spec.Prefix, id), "under", target.Name)
	}

	for _, id := range classes.ToUpdate() {
		issue := tracked[id]
		t := tasks[id]
		if err := UpdateTask(t, spec.Prefix, issue); err != nil {
			return nil, err
		}
		ns.Updated++

		target, err := EnsurePlacement(doc, project, issue, opts.ChainMilestones)
		if err != nil {
			return nil, err
		}
		moved, err := Relocate(doc, t, target)
		if err != nil {
			return nil, err
		}
		if moved {
			ns.Relocated++
			logger.Info("task relocated", "marker", Tag(spec.Prefix, id), "to", target.Name)
		}
	}

	if len(classes.Orphan) > 0 {
		markers := make([]string, len(classes.Orphan))
		for i, id := range classes.Orphan {
			markers[i] = Tag(spec.Prefix, id)
		}
		ns.Orphans = markers
		logger.Warn("tasks reference issues the tracker no longer reports; left as-is",
			"markers", markers)
	}

	ns.Reordered = reorderTrackedParents(doc, tracked, tasks)

	logger.Info("namespace synchronized",
		"created", ns.Created,
		"updated", ns.Updated,
		"relocated", ns.Relocated,
		"reordered", ns.Reordered,
		"orphaned", len(ns.Orphans))
	return ns, nil
}

// loadIssues returns the namespace's issue set from the cache, going to the
// tracker on a miss or a forced refresh and storing the result back.
func (r *Reconciler) loadIssues(ctx context.Context, logger *slog.Logger, spec planner.TrackerSpec, opts Options) ([]tracker.Issue, error) {
	namespace := cache.Key(spec.Owner, spec.Slug)

	if !opts.RefreshAll && !opts.Refresh[spec.Prefix] {
		issues, ok, err := r.cache.Load(namespace)
		if err != nil {
			return nil, err
		}
		if ok {
			logger.Debug("issues loaded from cache", "count", len(issues))
			return issues, nil
		}
	}

	issues, err := r.source.FetchAllIssues(ctx, spec.Owner, spec.Slug)
	if err != nil {
		return nil, err
	}
	if err := r.cache.Store(namespace, issues); err != nil {
		return nil, err
	}
	logger.Info("issues fetched from tracker", "count", len(issues))
	return issues, nil
}

// reorderTrackedParents re-sorts the children of every grouping node holding
// tracked tasks, returning how many of them actually changed order. Orphaned
// tasks get no key, so they float ahead of tracked siblings without moving
// relative to each other.
func reorderTrackedParents(doc *planner.Document, tracked map[int]tracker.Issue, tasks map[int]*planner.Task) int {
	ids := make([]int, 0, len(tasks))
	for id := range tasks {
		ids = append(ids, id)
	}
	sort.Ints(ids)

	keys := make(map[*planner.Task]tracker.SortKey, len(tasks))
	var parents []*planner.Task
	seen := make(map[*planner.Task]bool)
	for _, id := range ids {
		issue, ok := tracked[id]
		if !ok {
			continue
		}
		t := tasks[id]
		keys[t] = issue.SortKey()
		parent, found := doc.ParentOf(t)
		if !found || parent == nil {
			continue
		}
		if !seen[parent] {
			seen[parent] = true
			parents = append(parents, parent)
		}
	}

	changed := 0
	for _, parent := range parents {
		if ReorderSiblings(parent, keys) {
			changed++
		}
	}
	return changed
}
