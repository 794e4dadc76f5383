// Package backup implements the snapshot-copy backup policy. The store
// reports after each save; the Keeper decides whether enough time has
// passed to copy the backing file aside, and rotates old copies out.
package backup

import (
	"fmt"
	"io"
	"log"
	"os"
	"path/filepath"
	"sort"
	"time"
)

// Keeper copies the store file to <path>.<timestamp>.bak at most once per
// interval and keeps the newest `keep` backups. Failures are logged, never
// surfaced: the store does not depend on backups succeeding.
type Keeper struct {
	path     string
	interval time.Duration
	keep     int
	last     time.Time
	now      func() time.Time
}

// NewKeeper creates a Keeper for the store file at path.
func NewKeeper(path string, interval time.Duration, keep int) *Keeper {
	if interval <= 0 {
		interval = time.Hour
	}
	if keep <= 0 {
		keep = 5
	}
	return &Keeper{
		path:     path,
		interval: interval,
		keep:     keep,
		now:      time.Now,
	}
}

// AfterSave implements memory.Notifier. Snapshots when the interval since
// the last backup has elapsed.
func (k *Keeper) AfterSave(count int) {
	now := k.now()
	if now.Sub(k.last) < k.interval {
		return
	}

	if err := k.snapshot(now); err != nil {
		log.Printf("backup: %v", err)
		return
	}
	k.last = now
	log.Printf("backup: snapshotted %d memories", count)

	if pruned, err := k.rotate(); err != nil {
		log.Printf("backup rotate: %v", err)
	} else if pruned > 0 {
		log.Printf("backup: pruned %d old snapshots", pruned)
	}
}

func (k *Keeper) snapshot(now time.Time) error {
	src, err := os.Open(k.path)
	if err != nil {
		return fmt.Errorf("open store file: %w", err)
	}
	defer src.Close()

	dest := fmt.Sprintf("%s.%s.bak", k.path, now.UTC().Format("20060102T150405"))
	dst, err := os.Create(dest)
	if err != nil {
		return fmt.Errorf("create backup file: %w", err)
	}
	defer dst.Close()

	if _, err := io.Copy(dst, src); err != nil {
		os.Remove(dest)
		return fmt.Errorf("copy store file: %w", err)
	}
	return nil
}

// rotate deletes all but the newest `keep` backups.
func (k *Keeper) rotate() (int, error) {
	matches, err := filepath.Glob(k.path + ".*.bak")
	if err != nil {
		return 0, fmt.Errorf("glob backups: %w", err)
	}
	if len(matches) <= k.keep {
		return 0, nil
	}

	// Timestamped names sort lexically by age
	sort.Strings(matches)
	stale := matches[:len(matches)-k.keep]
	pruned := 0
	for _, f := range stale {
		if err := os.Remove(f); err != nil {
			return pruned, fmt.Errorf("remove backup %s: %w", f, err)
		}
		pruned++
	}
	return pruned, nil
}
