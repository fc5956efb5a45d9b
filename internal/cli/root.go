// Package cli wires the plansync command tree.
package cli

import (
	"github.com/spf13/cobra"
)

func NewRootCommand(version string) *cobra.Command {
	rootCmd := &cobra.Command{
		Use:   "plansync",
		Short: "Synchronize Planner project documents with issue trackers",
		Long: `plansync reconciles a GNOME Planner document's task tree against the
Bitbucket issue trackers declared in the document's own properties.
Tracked issues get tasks under their milestone groupings, task names and
progress follow the tracker, and hand-made scheduling survives the sync.`,
		Version: version,
	}

	rootCmd.PersistentFlags().String("config", "", "Path to config file (default ~/.config/plansync/config.toml)")
	rootCmd.PersistentFlags().String("log-level", "info", "Log level: debug|info|warn|error")
	rootCmd.PersistentFlags().Bool("log-json", false, "Emit JSON logs instead of text")

	syncCmd := &cobra.Command{
		Use:   "sync <plan-file>",
		Short: "Reconcile a plan document against its trackers",
		Args:  cobra.ExactArgs(1),
		RunE:  RunSync,
	}
	syncCmd.Flags().StringP("output", "o", "", "Write the updated document here instead of in place")
	syncCmd.Flags().StringSlice("prefix", nil, "Tracker prefix to process (repeatable; default: config, else all declared)")
	syncCmd.Flags().StringSlice("refresh", nil, "Tracker prefix to refetch even when cached (repeatable)")
	syncCmd.Flags().Bool("refresh-all", false, "Refetch every processed tracker")
	syncCmd.Flags().Bool("dry-run", false, "Reconcile in memory and report without writing the document")

	trackersCmd := &cobra.Command{
		Use:   "trackers <plan-file>",
		Short: "List the trackers a plan document declares",
		Args:  cobra.ExactArgs(1),
		RunE:  RunTrackers,
	}

	cacheCmd := &cobra.Command{
		Use:   "cache",
		Short: "Inspect and invalidate the issue cache",
	}
	cacheListCmd := &cobra.Command{
		Use:   "list",
		Short: "List cached tracker namespaces",
		Args:  cobra.NoArgs,
		RunE:  RunCacheList,
	}
	cacheClearCmd := &cobra.Command{
		Use:   "clear [namespace...]",
		Short: "Remove cached namespaces",
		RunE:  RunCacheClear,
	}
	cacheClearCmd.Flags().Bool("all", false, "Clear every cached namespace")
	cacheCmd.AddCommand(cacheListCmd, cacheClearCmd)

	rootCmd.AddCommand(syncCmd, trackersCmd, cacheCmd)
	return rootCmd
}
