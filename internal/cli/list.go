package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/lazypower/engram/internal/config"
	"github.com/lazypower/engram/internal/model"
)

var (
	listLimit    int
	listOffset   int
	listCategory string
	listTags     []string
)

var listCmd = &cobra.Command{
	Use:   "list",
	Short: "List memories, most recent first",
	RunE:  runList,
}

func init() {
	listCmd.Flags().IntVarP(&listLimit, "limit", "n", 20, "max results")
	listCmd.Flags().IntVar(&listOffset, "offset", 0, "skip this many")
	listCmd.Flags().StringVarP(&listCategory, "category", "c", "", "filter by category")
	listCmd.Flags().StringSliceVarP(&listTags, "tag", "t", nil, "filter by any tag (repeatable)")
}

func runList(cmd *cobra.Command, args []string) error {
	store, _, err := openStore(config.FromEnv())
	if err != nil {
		return err
	}
	defer store.Close()

	var records []*model.Record
	switch {
	case listCategory != "":
		records = store.FindByCategory(model.Category(listCategory))
	case len(listTags) > 0:
		records = store.FindByAnyTag(listTags)
	default:
		records = store.List(listLimit, listOffset)
	}

	if len(records) == 0 {
		fmt.Println("no memories")
		return nil
	}

	for _, r := range records {
		fmt.Printf("%s  %s  [%s] %.1f  %s\n",
			r.CreatedAt.Format("2006-01-02"), r.ID, r.Category, r.Importance,
			truncate(r.Content, 70))
	}
	return nil
}
