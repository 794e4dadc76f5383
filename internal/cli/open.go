package cli

import (
	"fmt"
	"os"

	"github.com/lazypower/engram/internal/config"
	"github.com/lazypower/engram/internal/embedding"
	"github.com/lazypower/engram/internal/memory"
	"github.com/lazypower/engram/internal/persist"
)

// openStore wires the persistence adapter, embedder, and policy from config
// and environment. Every command goes through here.
func openStore(cfg config.Config) (*memory.Store, string, error) {
	path := cfg.Store.Path
	if path == "" {
		var err error
		path, err = persist.DefaultPath()
		if err != nil {
			return nil, "", fmt.Errorf("resolve store path: %w", err)
		}
	}

	adapter, err := persist.Open(cfg.Store.Backend, path)
	if err != nil {
		return nil, "", fmt.Errorf("open store: %w", err)
	}

	store, err := memory.New(adapter, pickEmbedder(cfg), memory.NewPolicy(memory.PolicyConfig{}))
	if err != nil {
		adapter.Close()
		return nil, "", err
	}
	return store, path, nil
}

// pickEmbedder prefers a reachable Ollama; otherwise falls back to the
// deterministic mock so offline use still works (with degraded recall).
func pickEmbedder(cfg config.Config) embedding.Embedder {
	if embedding.ProbeOllama(cfg.Embed.OllamaURL, cfg.Embed.Model) {
		return embedding.NewOllama(cfg.Embed.OllamaURL, cfg.Embed.Model, cfg.Embed.Dims)
	}
	fmt.Fprintln(os.Stderr, "warning: ollama unreachable, using deterministic fallback embedder")
	return embedding.NewMock(cfg.Embed.Dims)
}
