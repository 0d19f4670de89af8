// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package secrets loads API keys from a directory of plain-text files. Each
// file is one secret: the filename is the key name, the trimmed contents are
// the value.
//
// The engine reads one key, google-books-api-key.
package secrets

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
)

// KeyGoogleBooks is the filename holding the Google Books API key. The
// catalog works without it at a reduced quota.
const KeyGoogleBooks = "google-books-api-key"

// maxSecretSize bounds a secret file. Anything larger is almost certainly
// not a key and gets skipped rather than loaded into memory.
const maxSecretSize = 4096

// Load reads every regular file in dir into a key-to-value map. A missing
// directory is not an error; the engine simply runs unauthenticated. Hidden
// files and subdirectories are skipped. Unreadable or oversized files warn
// on stderr and are skipped; a file readable by group or others draws a
// warning too, since API keys should be private to their owner.
func Load(dir string) (map[string]string, error) {
	secrets := make(map[string]string)

	entries, err := os.ReadDir(dir)
	if errors.Is(err, fs.ErrNotExist) {
		return secrets, nil
	}
	if err != nil {
		return nil, fmt.Errorf("reading secrets directory %s: %w", dir, err)
	}

	for _, entry := range entries {
		name := entry.Name()
		if entry.IsDir() || strings.HasPrefix(name, ".") {
			continue
		}

		if info, err := entry.Info(); err == nil {
			if info.Size() > maxSecretSize {
				fmt.Fprintf(os.Stderr, "warning: secret %s exceeds %d bytes, skipping\n", name, maxSecretSize)
				continue
			}
			if info.Mode().Perm()&0o077 != 0 {
				fmt.Fprintf(os.Stderr, "warning: secret %s is readable by other users\n", name)
			}
		}

		data, err := os.ReadFile(filepath.Join(dir, name))
		if err != nil {
			fmt.Fprintf(os.Stderr, "warning: could not read secret %s: %v\n", name, err)
			continue
		}
		if value := strings.TrimSpace(string(data)); value != "" {
			secrets[name] = value
		}
	}

	return secrets, nil
}
