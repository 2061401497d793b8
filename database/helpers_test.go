package database

import (
	"os"
	"path/filepath"
	"testing"
)

// writeFile is the shared fixture helper: write contents to name under
// dir, creating parent directories as needed.
func writeFile(t *testing.T, dir, name, contents string) string {
	t.Helper()
	full := filepath.Join(dir, name)
	if err := os.MkdirAll(filepath.Dir(full), 0o755); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(full, []byte(contents), 0o644); err != nil {
		t.Fatal(err)
	}
	return full
}
