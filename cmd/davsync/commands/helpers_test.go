package commands

import (
	"bytes"
	"strings"
	"testing"

	"github.com/spf13/cobra"

	"github.com/systmms/davsync/internal/config"
	"github.com/systmms/davsync/tests/testutil"
)

func newTestConfig(t *testing.T, path string) (*config.Config, *testutil.TestLogger) {
	t.Helper()

	logger := testutil.NewTestLogger(t, true)
	return &config.Config{Path: path, Logger: logger.Logger}, logger
}

// execute runs cmd with args and stdin, returning stdout and stderr
func execute(cmd *cobra.Command, stdin string, args ...string) (string, string, error) {
	var stdout, stderr bytes.Buffer
	if args == nil {
		// nil would make cobra fall back to os.Args
		args = []string{}
	}
	cmd.SetArgs(args)
	cmd.SetIn(strings.NewReader(stdin))
	cmd.SetOut(&stdout)
	cmd.SetErr(&stderr)
	cmd.SilenceUsage = true
	cmd.SilenceErrors = true

	err := cmd.Execute()
	return stdout.String(), stderr.String(), err
}
