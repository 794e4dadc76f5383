package cli

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/lazypower/engram/internal/config"
)

var rmAll bool

var rmCmd = &cobra.Command{
	Use:   "rm [id]",
	Short: "Delete a memory (or all of them)",
	RunE:  runRm,
}

func init() {
	rmCmd.Flags().BoolVar(&rmAll, "all", false, "delete every memory")
}

func runRm(cmd *cobra.Command, args []string) error {
	store, _, err := openStore(config.FromEnv())
	if err != nil {
		return err
	}
	defer store.Close()

	if rmAll {
		n, err := store.DeleteAll(context.Background())
		if err != nil {
			return err
		}
		fmt.Printf("deleted %d memories\n", n)
		return nil
	}

	if len(args) != 1 {
		return fmt.Errorf("need an id (or --all)")
	}

	removed, err := store.Delete(context.Background(), args[0])
	if err != nil {
		return err
	}
	if !removed {
		fmt.Println("not found")
		return nil
	}
	fmt.Println("deleted")
	return nil
}
