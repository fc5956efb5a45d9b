// Package planner reads, mutates, and writes GNOME Planner XML documents.
//
// Only the regions plansync works with are modeled as typed structures: the
// project attributes, the property declarations, and the task tree. Every
// other region (phases, calendars, resources, allocations) is carried through
// parsing and serialization verbatim so that hand-maintained documents
// survive a sync untouched.
package planner

import (
	"encoding/xml"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"
)

// Document is one Planner project file.
type Document struct {
	XMLName       xml.Name    `xml:"project"`
	Name          string      `xml:"name,attr"`
	Company       string      `xml:"company,attr"`
	Manager       string      `xml:"manager,attr"`
	Phase         string      `xml:"phase,attr"`
	ProjectStart  string      `xml:"project-start,attr"`
	FormatVersion string      `xml:"mrproject-version,attr"`
	Calendar      string      `xml:"calendar,attr"`
	Properties    *Properties `xml:"properties"`
	Phases        *RawSection `xml:"phases"`
	Calendars     *RawSection `xml:"calendars"`
	Tasks         TaskRoot    `xml:"tasks"`
	ResourceGroup *RawSection `xml:"resource-groups"`
	Resources     *RawSection `xml:"resources"`
	Allocations   *RawSection `xml:"allocations"`
}

// Properties holds the project-level property declarations.
type Properties struct {
	Items []Property `xml:"property"`
}

// Property is one project property declaration. Tracker namespaces are
// declared through these (see Trackers).
type Property struct {
	Name        string `xml:"name,attr"`
	Type        string `xml:"type,attr"`
	Owner       string `xml:"owner,attr"`
	Label       string `xml:"label,attr"`
	Description string `xml:"description,attr"`
	Value       string `xml:"value,attr,omitempty"`
}

// TaskRoot is the document's top-level task container.
type TaskRoot struct {
	Tasks []*Task `xml:"task"`
}

// RawSection preserves a document region plansync does not interpret.
type RawSection struct {
	XMLName xml.Name
	Attrs   []xml.Attr `xml:",any,attr"`
	Inner   string     `xml:",innerxml"`
}

// Parse decodes a Planner document from its XML serialization.
func Parse(data []byte) (*Document, error) {
	var doc Document
	if err := xml.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("parsing planner document: %w", err)
	}
	return &doc, nil
}

// Load reads and parses the Planner document at path.
func Load(path string) (*Document, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading planner document %s: %w", path, err)
	}
	doc, err := Parse(data)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return doc, nil
}

// Bytes renders the document back to Planner XML with a UTF-8 declaration.
func (d *Document) Bytes() ([]byte, error) {
	body, err := xml.MarshalIndent(d, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("serializing planner document: %w", err)
	}
	out := make([]byte, 0, len(xml.Header)+len(body)+1)
	out = append(out, xml.Header...)
	out = append(out, body...)
	out = append(out, '\n')
	return out, nil
}

// Save serializes the document to path. A pre-existing file at path is
// renamed to a timestamped backup first, never overwritten in place; the
// backup path is returned when one was made.
func Save(d *Document, path string) (string, error) {
	data, err := d.Bytes()
	if err != nil {
		return "", err
	}

	backup := ""
	if _, err := os.Stat(path); err == nil {
		backup = backupName(path, time.Now())
		if err := os.Rename(path, backup); err != nil {
			return "", fmt.Errorf("backing up %s: %w", path, err)
		}
	} else if !os.IsNotExist(err) {
		return "", fmt.Errorf("checking %s: %w", path, err)
	}

	if err := os.WriteFile(path, data, 0644); err != nil {
		return backup, fmt.Errorf("writing planner document %s: %w", path, err)
	}
	return backup, nil
}

func backupName(path string, now time.Time) string {
	ext := filepath.Ext(path)
	base := strings.TrimSuffix(path, ext)
	return fmt.Sprintf("%s-backup-%s%s", base, now.Format("20060102-150405"), ext)
}

// Normalize recomputes the project-start attribute from the earliest task
// start in the tree. Tasks with empty or unparseable starts are skipped.
// Reports whether the attribute changed.
func (d *Document) Normalize() bool {
	var earliest time.Time
	found := false
	d.WalkTasks(func(t *Task) {
		if t.Start == "" {
			return
		}
		ts, err := ParseStamp(t.Start)
		if err != nil {
			return
		}
		if !found || ts.Before(earliest) {
			earliest = ts
			found = true
		}
	})
	if !found {
		return false
	}
	stamp := FormatStamp(earliest)
	if d.ProjectStart == stamp {
		return false
	}
	d.ProjectStart = stamp
	return true
}
