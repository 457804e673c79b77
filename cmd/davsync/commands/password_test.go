package commands

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	dserrors "github.com/systmms/davsync/internal/errors"
	"github.com/systmms/davsync/internal/keyring"
	"github.com/systmms/davsync/tests/testutil"
)

const noKeyringConfig = "general:\n  keyring_backend: none\n"

func TestPasswordCommandNetrc(t *testing.T) {
	home := testutil.IsolateHome(t)
	require.NoError(t, os.WriteFile(filepath.Join(home, ".netrc"),
		[]byte("machine example.com\n  login bob\n  password netrc-secret\n"), 0o600))
	path := testutil.WriteConfig(t, noKeyringConfig)

	cfg, logger := newTestConfig(t, path)
	stdout, _, err := execute(NewPasswordCommand(cfg), "", "bob", "https://example.com/dav/")
	require.NoError(t, err)
	assert.Equal(t, "netrc-secret\n", stdout)
	logger.AssertNotContains(t, "netrc-secret")

	cfg, _ = newTestConfig(t, path)
	stdout, _, err = execute(NewPasswordCommand(cfg), "", "--check", "bob", "https://example.com/dav/")
	require.NoError(t, err)
	assert.Equal(t, "netrc\n", stdout)
}

func TestPasswordCommandPasswordEval(t *testing.T) {
	testutil.IsolateHome(t)
	script := testutil.WriteScript(t, `echo "$2-$1"`)
	path := testutil.WriteConfig(t, noKeyringConfig+"  passwordeval: "+script+"\n")

	cfg, _ := newTestConfig(t, path)
	stdout, _, err := execute(NewPasswordCommand(cfg), "", "bob", "https://dav.example.com:8443/")
	require.NoError(t, err)
	assert.Equal(t, "dav.example.com-bob\n", stdout)
}

func TestPasswordCommandFailingPasswordEval(t *testing.T) {
	testutil.IsolateHome(t)
	script := testutil.WriteScript(t, "echo 'vault is sealed' >&2\nexit 1")
	path := testutil.WriteConfig(t, noKeyringConfig+"  passwordeval: "+script+"\n")

	cfg, _ := newTestConfig(t, path)
	_, stderr, err := execute(NewPasswordCommand(cfg), "typed\n", "--stdin", "bob", "https://example.com/")
	require.Error(t, err)

	var cmdErr dserrors.CommandError
	require.ErrorAs(t, err, &cmdErr)
	assert.Equal(t, 1, cmdErr.ExitCode)
	assert.Equal(t, "vault is sealed", cmdErr.Message)
	assert.Empty(t, stderr)
}

func TestPasswordCommandPromptAndFileKeyring(t *testing.T) {
	testutil.IsolateHome(t)
	t.Setenv(keyring.EnvFilePassword, "unlock-me")
	dir := t.TempDir()
	path := testutil.WriteConfig(t, "general:\n  keyring_backend: file\n  keyring_dir: "+dir+"\n")

	cfg, _ := newTestConfig(t, path)
	stdout, stderr, err := execute(NewPasswordCommand(cfg), "typed-secret\ny\n", "--stdin", "bob", "https://example.com/")
	require.NoError(t, err)
	assert.Equal(t, "typed-secret\n", stdout)
	assert.Equal(t,
		"Server password for bob at host example.com: \n"+
			"Save this password in the keyring? [y/N]: y\n",
		stderr)

	// A new session finds it in the keyring without prompting
	cfg, _ = newTestConfig(t, path)
	stdout, stderr, err = execute(NewPasswordCommand(cfg), "", "--stdin", "--check", "bob", "https://example.com/other")
	require.NoError(t, err)
	assert.Equal(t, "keyring\n", stdout)
	assert.Empty(t, stderr)
}

func TestPasswordCommandNonInteractive(t *testing.T) {
	testutil.IsolateHome(t)
	path := testutil.WriteConfig(t, noKeyringConfig)

	cfg, _ := newTestConfig(t, path)
	cfg.NonInteractive = true

	_, _, err := execute(NewPasswordCommand(cfg), "typed\n", "--stdin", "bob", "https://example.com/")
	require.Error(t, err)
	assert.ErrorIs(t, err, dserrors.ErrAuthenticationFailure)
}

func TestPasswordCommandWithoutConfigFile(t *testing.T) {
	home := testutil.IsolateHome(t)
	require.NoError(t, os.WriteFile(filepath.Join(home, ".netrc"),
		[]byte("default login bob password fallback\n"), 0o600))

	// No config file: the system keyring is never reached because netrc answers first
	cfg, _ := newTestConfig(t, filepath.Join(home, "missing.yaml"))
	stdout, _, err := execute(NewPasswordCommand(cfg), "", "bob", "https://anything.example.org/")
	require.NoError(t, err)
	assert.Equal(t, "fallback\n", stdout)
}

func TestPasswordCommandBadKeyringBackend(t *testing.T) {
	testutil.IsolateHome(t)
	path := testutil.WriteConfig(t, "general:\n  keyring_backend: vault\n")

	cfg, _ := newTestConfig(t, path)
	_, _, err := execute(NewPasswordCommand(cfg), "", "bob", "https://example.com/")
	var cfgErr dserrors.ConfigError
	require.ErrorAs(t, err, &cfgErr)
	assert.Equal(t, "general.keyring_backend", cfgErr.Field)
}

func TestPasswordCommandArgs(t *testing.T) {
	cfg, _ := newTestConfig(t, "")
	_, _, err := execute(NewPasswordCommand(cfg), "", "bob")
	assert.Error(t, err)
}
