package testutil

import (
	"path/filepath"
	"testing"
)

// IsolateHome points HOME, NETRC and DAVSYNC_CONFIG into a fresh temp dir so
// a test never reads the developer's real credentials. It returns the dir.
//
// Tests that call it must not run in parallel.
func IsolateHome(t *testing.T) string {
	t.Helper()

	home := t.TempDir()
	t.Setenv("HOME", home)
	t.Setenv("NETRC", filepath.Join(home, ".netrc"))
	t.Setenv("DAVSYNC_CONFIG", filepath.Join(home, "config.yaml"))
	return home
}
