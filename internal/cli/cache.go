package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/plansync-dev/plansync/internal/cache"
)

func RunCacheList(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}

	st, err := cache.Open(cfg.Cache.Dir)
	if err != nil {
		return err
	}
	defer st.Close()

	entries, err := st.Entries()
	if err != nil {
		return err
	}
	if len(entries) == 0 {
		fmt.Println("cache is empty")
		return nil
	}
	for _, e := range entries {
		fmt.Printf("%s\t%d issues\tfetched %s\n",
			e.Namespace, e.IssueCount, e.FetchedAt.Format("2006-01-02 15:04:05"))
	}
	return nil
}

func RunCacheClear(cmd *cobra.Command, args []string) error {
	all, err := cmd.Flags().GetBool("all")
	if err != nil {
		return fmt.Errorf("failed to read --all flag: %w", err)
	}
	if !all && len(args) == 0 {
		return fmt.Errorf("name the namespaces to clear, or pass --all")
	}

	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}

	st, err := cache.Open(cfg.Cache.Dir)
	if err != nil {
		return err
	}
	defer st.Close()

	var removed int
	if all {
		removed, err = st.ClearAll()
	} else {
		removed, err = st.Clear(args)
	}
	if err != nil {
		return err
	}
	fmt.Printf("cleared %d cached namespaces\n", removed)
	return nil
}
