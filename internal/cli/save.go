package cli

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/lazypower/engram/internal/config"
	"github.com/lazypower/engram/internal/memory"
	"github.com/lazypower/engram/internal/model"
)

var (
	saveTags       []string
	saveCategory   string
	saveImportance float64
	saveMetadata   []string
)

var saveCmd = &cobra.Command{
	Use:   "save <content>",
	Short: "Store a new memory",
	Args:  cobra.MinimumNArgs(1),
	RunE:  runSave,
}

func init() {
	saveCmd.Flags().StringSliceVarP(&saveTags, "tag", "t", nil, "tag (repeatable)")
	saveCmd.Flags().StringVarP(&saveCategory, "category", "c", "", "category (general, fact, preference, conversation, task, ephemeral)")
	saveCmd.Flags().Float64VarP(&saveImportance, "importance", "i", 0, "importance 1-10 (default 5)")
	saveCmd.Flags().StringSliceVarP(&saveMetadata, "meta", "m", nil, "metadata key=value (repeatable)")
}

func runSave(cmd *cobra.Command, args []string) error {
	store, _, err := openStore(config.FromEnv())
	if err != nil {
		return err
	}
	defer store.Close()

	metadata, err := parseMetadata(saveMetadata)
	if err != nil {
		return err
	}

	rec, err := store.Save(context.Background(), memory.SaveParams{
		Content:    strings.Join(args, " "),
		Metadata:   metadata,
		Tags:       saveTags,
		Importance: saveImportance,
		Category:   model.Category(saveCategory),
	})
	if err != nil {
		var dup *memory.DuplicateContentError
		if errors.As(err, &dup) {
			return fmt.Errorf("already stored as %s", dup.ExistingID)
		}
		return err
	}

	fmt.Printf("saved %s [%s] importance %.1f\n", rec.ID, rec.Category, rec.Importance)
	return nil
}

func parseMetadata(pairs []string) (map[string]string, error) {
	if len(pairs) == 0 {
		return nil, nil
	}
	m := make(map[string]string, len(pairs))
	for _, p := range pairs {
		k, v, ok := strings.Cut(p, "=")
		if !ok || k == "" {
			return nil, fmt.Errorf("invalid metadata %q, want key=value", p)
		}
		m[k] = v
	}
	return m, nil
}
