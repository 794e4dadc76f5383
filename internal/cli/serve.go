package cli

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/lazypower/engram/internal/backup"
	"github.com/lazypower/engram/internal/config"
	"github.com/lazypower/engram/internal/server"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the HTTP API server",
	RunE:  runServe,
}

func runServe(cmd *cobra.Command, args []string) error {
	cfg := config.FromEnv()

	store, path, err := openStore(cfg)
	if err != nil {
		return err
	}
	defer store.Close()

	if cfg.Backup.Enabled {
		keeper := backup.NewKeeper(path, time.Duration(cfg.Backup.IntervalHours)*time.Hour, cfg.Backup.Keep)
		store.SetNotifier(keeper)
	}

	srv := server.New(store, VersionString())
	addr := cfg.ListenAddr()

	httpServer := &http.Server{
		Addr:    addr,
		Handler: srv,
	}

	// Graceful shutdown
	done := make(chan os.Signal, 1)
	signal.Notify(done, os.Interrupt, syscall.SIGTERM)

	go func() {
		fmt.Fprintf(os.Stderr, "engram serving on %s\n", addr)
		fmt.Fprintf(os.Stderr, "  store: %s (%s)\n", path, cfg.Store.Backend)
		fmt.Fprintf(os.Stderr, "  memories: %d\n", store.Count())
		if err := httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			fmt.Fprintf(os.Stderr, "server error: %v\n", err)
			os.Exit(1)
		}
	}()

	<-done
	fmt.Fprintln(os.Stderr, "\nshutting down...")

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	return httpServer.Shutdown(ctx)
}
