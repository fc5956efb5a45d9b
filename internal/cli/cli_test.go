package cli

import (
	"context"
	"io"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/spf13/cobra"

	"github.com/plansync-dev/plansync/internal/cache"
	"github.com/plansync-dev/plansync/internal/tracker"
)

const testPlan = `<?xml version="1.0"?>
<project name="Test" company="" manager="" phase="" project-start="" mrproject-version="2" calendar="1">
  <properties>
    <property name="FOO" type="text" owner="project" label="FOO" description="bitbucket:acme/widgets"/>
  </properties>
  <tasks>
  </tasks>
</project>
`

func writePlanFile(t *testing.T, dir string) string {
	t.Helper()
	path := filepath.Join(dir, "plan.planner")
	if err := os.WriteFile(path, []byte(testPlan), 0644); err != nil {
		t.Fatal(err)
	}
	return path
}

func writeConfigFile(t *testing.T, dir, cacheDir string) string {
	t.Helper()
	path := filepath.Join(dir, "config.toml")
	content := `[bitbucket]
username = "tester"
password = "hunter2"

[cache]
dir = "` + cacheDir + `"
`
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		t.Fatal(err)
	}
	return path
}

// seedCache stores one issue for acme/widgets so sync runs without a
// network.
func seedCache(t *testing.T, cacheDir string) {
	t.Helper()
	st, err := cache.Open(cacheDir)
	if err != nil {
		t.Fatal(err)
	}
	defer st.Close()

	err = st.Store(cache.Key("acme", "widgets"), []tracker.Issue{{
		LocalID:        1,
		Title:          "Cached crash",
		Status:         "open",
		Priority:       "major",
		CreatedOn:      "2015-06-02T23:16:26.709",
		UTCLastUpdated: "2015-06-10 21:16:26+00:00",
		Metadata:       tracker.Metadata{Milestone: "M1"},
	}})
	if err != nil {
		t.Fatal(err)
	}
}

// newSyncCmd builds a command carrying the flags RunSync reads, with the
// config flag pre-pointed at cfgPath.
func newSyncCmd(t *testing.T, cfgPath string) *cobra.Command {
	t.Helper()
	cmd := &cobra.Command{}
	cmd.SetContext(context.Background())
	cmd.Flags().String("config", cfgPath, "")
	cmd.Flags().String("log-level", "error", "")
	cmd.Flags().Bool("log-json", false, "")
	cmd.Flags().StringP("output", "o", "", "")
	cmd.Flags().StringSlice("prefix", nil, "")
	cmd.Flags().StringSlice("refresh", nil, "")
	cmd.Flags().Bool("refresh-all", false, "")
	cmd.Flags().Bool("dry-run", false, "")
	return cmd
}

func captureStdout(t *testing.T, fn func() error) (string, error) {
	t.Helper()
	old := os.Stdout
	r, w, err := os.Pipe()
	if err != nil {
		t.Fatal(err)
	}
	os.Stdout = w
	defer func() { os.Stdout = old }()

	runErr := fn()
	w.Close()
	out, err := io.ReadAll(r)
	if err != nil {
		t.Fatal(err)
	}
	return string(out), runErr
}

func TestSyncDryRunLeavesFileAlone(t *testing.T) {
	dir := t.TempDir()
	cacheDir := filepath.Join(dir, "cache")
	planPath := writePlanFile(t, dir)
	cfgPath := writeConfigFile(t, dir, cacheDir)
	seedCache(t, cacheDir)

	cmd := newSyncCmd(t, cfgPath)
	if err := cmd.Flags().Set("dry-run", "true"); err != nil {
		t.Fatal(err)
	}

	out, err := captureStdout(t, func() error { return RunSync(cmd, []string{planPath}) })
	if err != nil {
		t.Fatalf("RunSync: %v", err)
	}
	if !strings.Contains(out, "dry run") {
		t.Fatalf("expected dry run notice, got %q", out)
	}

	after, err := os.ReadFile(planPath)
	if err != nil {
		t.Fatal(err)
	}
	if string(after) != testPlan {
		t.Fatal("dry run modified the plan file")
	}

	backups, err := filepath.Glob(filepath.Join(dir, "*-backup-*"))
	if err != nil {
		t.Fatal(err)
	}
	if len(backups) != 0 {
		t.Fatalf("dry run made a backup: %v", backups)
	}
}

func TestSyncWritesDocumentAndBackup(t *testing.T) {
	dir := t.TempDir()
	cacheDir := filepath.Join(dir, "cache")
	planPath := writePlanFile(t, dir)
	cfgPath := writeConfigFile(t, dir, cacheDir)
	seedCache(t, cacheDir)

	cmd := newSyncCmd(t, cfgPath)
	if _, err := captureStdout(t, func() error { return RunSync(cmd, []string{planPath}) }); err != nil {
		t.Fatalf("RunSync: %v", err)
	}

	updated, err := os.ReadFile(planPath)
	if err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(string(updated), "[FOO-1] Cached crash") {
		t.Fatalf("synced document lacks the issue task:\n%s", updated)
	}
	if !strings.Contains(string(updated), `name="acme/widgets"`) {
		t.Fatal("synced document lacks the project task")
	}

	backups, err := filepath.Glob(filepath.Join(dir, "*-backup-*"))
	if err != nil {
		t.Fatal(err)
	}
	if len(backups) != 1 {
		t.Fatalf("expected one backup, got %v", backups)
	}
	original, err := os.ReadFile(backups[0])
	if err != nil {
		t.Fatal(err)
	}
	if string(original) != testPlan {
		t.Fatal("backup does not hold the pre-sync document")
	}
}

func TestSyncOutputFlagWritesElsewhere(t *testing.T) {
	dir := t.TempDir()
	cacheDir := filepath.Join(dir, "cache")
	planPath := writePlanFile(t, dir)
	cfgPath := writeConfigFile(t, dir, cacheDir)
	seedCache(t, cacheDir)

	outPath := filepath.Join(dir, "out.planner")
	cmd := newSyncCmd(t, cfgPath)
	if err := cmd.Flags().Set("output", outPath); err != nil {
		t.Fatal(err)
	}

	if _, err := captureStdout(t, func() error { return RunSync(cmd, []string{planPath}) }); err != nil {
		t.Fatalf("RunSync: %v", err)
	}

	source, err := os.ReadFile(planPath)
	if err != nil {
		t.Fatal(err)
	}
	if string(source) != testPlan {
		t.Fatal("--output run modified the source document")
	}

	written, err := os.ReadFile(outPath)
	if err != nil {
		t.Fatalf("output document not written: %v", err)
	}
	if !strings.Contains(string(written), "[FOO-1]") {
		t.Fatal("output document lacks the issue task")
	}
}

func TestSyncMissingConfigFails(t *testing.T) {
	dir := t.TempDir()
	planPath := writePlanFile(t, dir)
	cmd := newSyncCmd(t, filepath.Join(dir, "nope.toml"))

	if err := RunSync(cmd, []string{planPath}); err == nil {
		t.Fatal("expected a config error")
	}
}

func TestTrackersListsDeclared(t *testing.T) {
	dir := t.TempDir()
	planPath := writePlanFile(t, dir)

	out, err := captureStdout(t, func() error {
		return RunTrackers(&cobra.Command{}, []string{planPath})
	})
	if err != nil {
		t.Fatalf("RunTrackers: %v", err)
	}
	if !strings.Contains(out, "FOO\tbitbucket:acme/widgets") {
		t.Fatalf("unexpected trackers output: %q", out)
	}
}

func TestCacheClearRequiresTarget(t *testing.T) {
	cmd := &cobra.Command{}
	cmd.Flags().Bool("all", false, "")

	err := RunCacheClear(cmd, nil)
	if err == nil || !strings.Contains(err.Error(), "--all") {
		t.Fatalf("expected a guard error, got %v", err)
	}
}
