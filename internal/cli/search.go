package cli

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/lazypower/engram/internal/config"
)

var (
	searchLimit     int
	searchThreshold float64
)

var searchCmd = &cobra.Command{
	Use:   "search <query>",
	Short: "Rank memories against a query",
	Args:  cobra.ExactArgs(1),
	RunE:  runSearch,
}

func init() {
	searchCmd.Flags().IntVarP(&searchLimit, "limit", "n", 10, "max results")
	searchCmd.Flags().Float64Var(&searchThreshold, "threshold", 0.3, "minimum similarity score")
}

func runSearch(cmd *cobra.Command, args []string) error {
	store, _, err := openStore(config.FromEnv())
	if err != nil {
		return err
	}
	defer store.Close()

	results, err := store.Search(context.Background(), args[0], searchLimit, searchThreshold)
	if err != nil {
		return err
	}

	if len(results) == 0 {
		fmt.Println("no matches")
		return nil
	}

	for _, res := range results {
		fmt.Printf("%.3f  %s  [%s] %.1f  %s\n",
			res.Score, res.Record.ID, res.Record.Category, res.Record.Importance,
			truncate(res.Record.Content, 80))
	}
	return nil
}

func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n-3] + "..."
}
