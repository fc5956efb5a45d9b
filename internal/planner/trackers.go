package planner

import "regexp"

// Tracker namespaces are declared through project properties, one per
// tracker, added via Planner's Project > Edit Project Properties > Custom
// dialog:
//
//	<properties>
//	  <property name="eutils" type="text" owner="project" label="eutils"
//	            description="bitbucket:biocommons/eutils"/>
//	</properties>
//
// The property name is the issue-tag prefix; the description names the
// tracker, owning account, and repository slug.
var trackerSpecRe = regexp.MustCompile(`^(\w+):(\w+)/(\w+)$`)

// TrackerSpec identifies one issue tracker namespace declared in the
// document.
type TrackerSpec struct {
	Prefix string
	SCM    string
	Owner  string
	Slug   string
}

// FullName returns the owner/slug form used to name the namespace's
// top-level project task.
func (ts TrackerSpec) FullName() string {
	return ts.Owner + "/" + ts.Slug
}

// Trackers returns the tracker namespaces declared as project properties, in
// declaration order. Properties whose description is not a tracker spec are
// ignored.
func (d *Document) Trackers() []TrackerSpec {
	if d.Properties == nil {
		return nil
	}
	var specs []TrackerSpec
	for _, prop := range d.Properties.Items {
		m := trackerSpecRe.FindStringSubmatch(prop.Description)
		if m == nil {
			continue
		}
		specs = append(specs, TrackerSpec{
			Prefix: prop.Name,
			SCM:    m[1],
			Owner:  m[2],
			Slug:   m[3],
		})
	}
	return specs
}

// TrackerByPrefix returns the declared tracker spec for prefix, if any.
func (d *Document) TrackerByPrefix(prefix string) (TrackerSpec, bool) {
	for _, spec := range d.Trackers() {
		if spec.Prefix == prefix {
			return spec, true
		}
	}
	return TrackerSpec{}, false
}
