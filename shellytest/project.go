// Copyright © 2024 The Shelly authors

// Package shellytest provides helpers for tests that analyze projects on
// disk.
package shellytest

import (
	"os"
	"path/filepath"
	"testing"
)

// WriteProject writes files, keyed by '/' separated relative path, to a
// fresh temporary directory and returns its path.
func WriteProject(t testing.TB, files map[string]string) string {
	t.Helper()
	dir := t.TempDir()
	for name, src := range files {
		path := filepath.Join(dir, filepath.FromSlash(name))
		if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
			t.Fatal(err)
		}
		if err := os.WriteFile(path, []byte(src), 0o600); err != nil {
			t.Fatal(err)
		}
	}
	return dir
}
