package cli

import (
	"context"
	"encoding/json"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/lazypower/engram/internal/config"
)

var getCmd = &cobra.Command{
	Use:   "get <id>",
	Short: "Fetch one memory by id",
	Args:  cobra.ExactArgs(1),
	RunE:  runGet,
}

func runGet(cmd *cobra.Command, args []string) error {
	store, _, err := openStore(config.FromEnv())
	if err != nil {
		return err
	}
	defer store.Close()

	rec, err := store.Get(context.Background(), args[0])
	if err != nil {
		return err
	}
	if rec == nil {
		fmt.Fprintln(os.Stderr, "not found")
		return nil
	}

	rec.Embedding = nil // too noisy for terminal output
	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	return enc.Encode(rec)
}
