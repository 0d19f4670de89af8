//go:build mage

package main

import (
	"fmt"
	"os"
)

// ResetDB deletes the local shelf database so the next run starts empty.
// The store runs SQLite in WAL mode, so the sidecar files go too.
func ResetDB() error {
	removed := false
	for _, path := range []string{"bookshelf.db", "bookshelf.db-wal", "bookshelf.db-shm"} {
		err := os.Remove(path)
		if os.IsNotExist(err) {
			continue
		}
		if err != nil {
			return fmt.Errorf("removing %s: %w", path, err)
		}
		fmt.Println("  removed", path)
		removed = true
	}
	if !removed {
		fmt.Println("No local database found.")
	}
	return nil
}
