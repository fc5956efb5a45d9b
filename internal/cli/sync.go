package cli

import (
	"fmt"
	"net/http"

	"github.com/spf13/cobra"

	"github.com/plansync-dev/plansync/internal/cache"
	"github.com/plansync-dev/plansync/internal/planner"
	"github.com/plansync-dev/plansync/internal/reconcile"
	"github.com/plansync-dev/plansync/internal/tracker"
)

func RunSync(cmd *cobra.Command, args []string) error {
	logger, err := buildLogger(cmd)
	if err != nil {
		return err
	}
	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}

	outPath, err := cmd.Flags().GetString("output")
	if err != nil {
		return fmt.Errorf("failed to read --output flag: %w", err)
	}
	prefixes, err := cmd.Flags().GetStringSlice("prefix")
	if err != nil {
		return fmt.Errorf("failed to read --prefix flag: %w", err)
	}
	refresh, err := cmd.Flags().GetStringSlice("refresh")
	if err != nil {
		return fmt.Errorf("failed to read --refresh flag: %w", err)
	}
	refreshAll, err := cmd.Flags().GetBool("refresh-all")
	if err != nil {
		return fmt.Errorf("failed to read --refresh-all flag: %w", err)
	}
	dryRun, err := cmd.Flags().GetBool("dry-run")
	if err != nil {
		return fmt.Errorf("failed to read --dry-run flag: %w", err)
	}

	planPath := args[0]
	doc, err := planner.Load(planPath)
	if err != nil {
		return err
	}

	if len(prefixes) == 0 {
		prefixes = cfg.Sync.Prefixes
	}
	refreshSet := make(map[string]bool, len(refresh))
	for _, prefix := range refresh {
		refreshSet[prefix] = true
	}

	issueCache, err := cache.Open(cfg.Cache.Dir)
	if err != nil {
		return err
	}
	defer issueCache.Close()

	client := tracker.NewClient(
		cfg.Bitbucket.BaseURL,
		cfg.Bitbucket.Username,
		cfg.Bitbucket.Password,
		&http.Client{Timeout: cfg.Bitbucket.Timeout.Duration},
		logger,
	)

	summary, err := reconcile.New(client, issueCache, logger).Run(cmd.Context(), doc, reconcile.Options{
		Prefixes:        prefixes,
		Refresh:         refreshSet,
		RefreshAll:      refreshAll,
		ChainMilestones: cfg.Sync.MilestoneChain,
	})
	if err != nil {
		return err
	}

	for _, ns := range summary.Namespaces {
		fmt.Printf("%s (%s): %d issues, %d created, %d updated, %d relocated, %d orphaned\n",
			ns.Prefix, ns.Tracker, ns.Issues, ns.Created, ns.Updated, ns.Relocated, len(ns.Orphans))
	}

	if dryRun {
		fmt.Println("dry run: document not written")
		return nil
	}

	if outPath == "" {
		outPath = planPath
	}
	backup, err := planner.Save(doc, outPath)
	if err != nil {
		return err
	}
	if backup != "" {
		logger.Info("previous document backed up", "backup", backup)
	}
	fmt.Printf("wrote %s\n", outPath)
	return nil
}
