package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/lazypower/engram/internal/config"
	"github.com/lazypower/engram/internal/model"
)

var statsCmd = &cobra.Command{
	Use:   "stats",
	Short: "Show store statistics",
	RunE:  runStats,
}

func runStats(cmd *cobra.Command, args []string) error {
	cfg := config.FromEnv()
	store, path, err := openStore(cfg)
	if err != nil {
		return err
	}
	defer store.Close()

	fmt.Printf("store:    %s (%s)\n", path, cfg.Store.Backend)
	fmt.Printf("memories: %d\n", store.Count())

	for _, cat := range []model.Category{
		model.CategoryGeneral, model.CategoryFact, model.CategoryPreference,
		model.CategoryConversation, model.CategoryTask, model.CategoryEphemeral,
	} {
		records := store.FindByCategory(cat)
		if len(records) == 0 {
			continue
		}
		var sum float64
		for _, r := range records {
			sum += r.Importance
		}
		fmt.Printf("  %-12s %4d  avg importance %.1f\n", cat, len(records), sum/float64(len(records)))
	}
	return nil
}
