package credentials

import (
	"context"
	"errors"
	"fmt"
	"net/url"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/systmms/davsync/internal/config"
	dserrors "github.com/systmms/davsync/internal/errors"
	"github.com/systmms/davsync/internal/keyring"
	"github.com/systmms/davsync/internal/logging"
	"github.com/systmms/davsync/pkg/exec"
)

// Prompt wording. Test suites and wrapper scripts match these literally.
const (
	passwordPromptFormat = "Server password for %s at host %s"
	savePrompt           = "Save this password in the keyring?"
)

const defaultCommandTimeout = 30 * time.Second

// Resolver produces passwords for (username, resource URL) pairs by walking
// cache, netrc, keyring, passwordeval and the interactive prompt in that order.
type Resolver struct {
	mu       sync.Mutex
	config   *config.Config
	cache    *Cache
	backends Backends
	logger   *logging.Logger
}

// New creates a resolver. cache is owned by the caller and normally lives
// for the whole CLI session.
func New(cfg *config.Config, cache *Cache, backends Backends) *Resolver {
	if cache == nil {
		cache = NewCache()
	}
	if backends.Command == nil {
		backends.Command = exec.DefaultExecutor()
	}
	logger := cfg.Logger
	if logger == nil {
		logger = logging.Discard()
	}
	return &Resolver{
		config:   cfg,
		cache:    cache,
		backends: backends,
		logger:   logger,
	}
}

// Cache returns the session cache used by the resolver
func (r *Resolver) Cache() *Cache {
	return r.cache
}

// Result is a resolved password together with where it came from
type Result struct {
	Password string
	Host     string
	// Source is one of the Source* constants
	Source string
}

// Resolve returns the password for username at the host of resourceURL.
// It fails with *errors.AuthenticationError when every source is exhausted
// and with errors.CommandError when a configured passwordeval command fails.
func (r *Resolver) Resolve(ctx context.Context, username, resourceURL string) (string, error) {
	res, err := r.Lookup(ctx, username, resourceURL)
	if err != nil {
		return "", err
	}
	return res.Password, nil
}

// Lookup is Resolve reporting the source that answered.
func (r *Resolver) Lookup(ctx context.Context, username, resourceURL string) (Result, error) {
	host, err := Hostname(resourceURL)
	if err != nil {
		return Result{}, err
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	if pw, ok := r.cache.Get(username, host); ok {
		r.logger.Debug("Got password for %s from internal cache", username)
		recordResolution(SourceCache)
		return Result{Password: pw, Host: host, Source: SourceCache}, nil
	}

	pw, source, err := r.lookup(ctx, username, host)
	if err != nil {
		recordResolution(SourceFailed)
		return Result{}, err
	}

	if err := r.cache.Put(username, host, pw); err != nil {
		r.logger.Warn("Could not cache password for %s at %s: %v", username, host, err)
	}
	recordResolution(source)
	return Result{Password: pw, Host: host, Source: source}, nil
}

func (r *Resolver) lookup(ctx context.Context, username, host string) (string, string, error) {
	if pw, ok := r.fromNetrc(host); ok {
		r.logger.Debug("Got password for %s from netrc", username)
		return pw, SourceNetrc, nil
	}

	if pw, ok := r.fromKeyring(username, host); ok {
		r.logger.Debug("Got password for %s from system keyring", username)
		return pw, SourceKeyring, nil
	}

	pw, ok, err := r.fromCommand(ctx, username, host)
	if err != nil {
		return "", "", err
	}
	if ok {
		r.logger.Debug("Got password for %s from passwordeval command", username)
		return pw, SourceCommand, nil
	}

	pw, err = r.fromPrompt(username, host)
	if err != nil {
		return "", "", err
	}
	return pw, SourcePrompt, nil
}

func (r *Resolver) fromNetrc(host string) (string, bool) {
	if r.backends.Netrc == nil {
		return "", false
	}

	auth, err := r.backends.Netrc.Authenticators(host)
	if err != nil {
		r.logger.Debug("netrc lookup for %s skipped: %v", host, err)
		return "", false
	}
	if auth == nil || auth.Password == "" {
		return "", false
	}
	return auth.Password, true
}

func (r *Resolver) fromKeyring(username, host string) (string, bool) {
	if r.backends.Keyring == nil {
		return "", false
	}

	pw, err := r.backends.Keyring.Get(KeyringService(host), username)
	if err != nil {
		if !errors.Is(err, keyring.ErrNotFound) {
			r.logger.Debug("keyring lookup for %s at %s failed: %v", username, host, err)
		}
		return "", false
	}
	if pw == "" {
		return "", false
	}
	return pw, true
}

// fromCommand runs passwordeval. ok is false only when no command is
// configured; a configured command that fails is always an error.
func (r *Resolver) fromCommand(ctx context.Context, username, host string) (string, bool, error) {
	general := r.config.General()

	path, _, err := general.String(config.KeyPasswordEval)
	if err != nil {
		return "", false, err
	}
	if path == "" {
		return "", false, nil
	}
	path = expandHome(path)

	timeout := defaultCommandTimeout
	secs, err := general.Int(config.KeyPasswordEvalTimeout, 0)
	if err != nil {
		return "", false, err
	}
	if secs > 0 {
		timeout = time.Duration(secs) * time.Second
	}

	ctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	stdout, stderr, err := r.backends.Command.Execute(ctx, path, username, host)
	if err != nil {
		if exec.IsNotFound(err) || errors.Is(err, os.ErrNotExist) || errors.Is(err, os.ErrPermission) {
			return "", false, dserrors.WrapCommandNotFound(path, err)
		}

		cmdErr := dserrors.CommandError{
			Command:    path,
			Message:    strings.TrimSpace(string(stderr)),
			Suggestion: "Fix the passwordeval command; davsync does not fall back to prompting when it fails",
			Err:        err,
		}
		if code := exec.ExitCode(err); code > 0 {
			cmdErr.ExitCode = code
		}
		if errors.Is(err, context.DeadlineExceeded) {
			cmdErr.Message = fmt.Sprintf("timed out after %s", timeout)
		}
		if cmdErr.Message == "" {
			cmdErr.Message = err.Error()
		}
		return "", false, cmdErr
	}

	pw := strings.TrimRight(string(stdout), " \t\r\n")
	if pw == "" {
		return "", false, dserrors.CommandError{
			Command:    path,
			Message:    "command printed no password",
			Suggestion: fmt.Sprintf("The command is called as '%s %s %s' and must print the password on stdout", path, username, host),
		}
	}
	return pw, true, nil
}

func (r *Resolver) fromPrompt(username, host string) (string, error) {
	p := r.backends.Prompt
	if r.config.NonInteractive || p == nil || !p.Interactive() {
		return "", &dserrors.AuthenticationError{
			Username: username,
			Host:     host,
			Reason:   "no password in netrc, keyring or passwordeval, and no interactive terminal to ask",
		}
	}

	var pw string
	for pw == "" {
		var err error
		pw, err = p.Password(fmt.Sprintf(passwordPromptFormat, username, host))
		if err != nil {
			return "", &dserrors.AuthenticationError{
				Username: username,
				Host:     host,
				Reason:   "password prompt aborted",
			}
		}
	}

	if r.backends.Keyring != nil {
		save, err := p.Confirm(savePrompt, false)
		if err == nil && save {
			if err := r.backends.Keyring.Set(KeyringService(host), username, pw); err != nil {
				r.logger.Warn("Could not save password for %s at %s in the keyring: %v", username, host, err)
				recordKeyringSave(false)
			} else {
				r.logger.Info("Saved password for %s at %s in the keyring", username, host)
				recordKeyringSave(true)
			}
		}
	}

	return pw, nil
}

// Hostname extracts the host used as lookup key from a resource URL. Port,
// path and credentials are dropped and the host is lower-cased.
func Hostname(resourceURL string) (string, error) {
	u, err := url.Parse(resourceURL)
	if err == nil && u.Host == "" && !strings.Contains(resourceURL, "://") {
		u, err = url.Parse("//" + resourceURL)
	}
	if err != nil {
		return "", dserrors.ConfigError{
			Field:   "url",
			Value:   resourceURL,
			Message: "invalid resource URL",
			Err:     err,
		}
	}

	host := u.Hostname()
	if host == "" {
		return "", dserrors.ConfigError{
			Field:      "url",
			Value:      resourceURL,
			Message:    "resource URL has no host",
			Suggestion: "Use a full URL such as https://dav.example.com/",
		}
	}
	return strings.ToLower(host), nil
}

func expandHome(path string) string {
	if path != "~" && !strings.HasPrefix(path, "~/") {
		return path
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return path
	}
	return filepath.Join(home, strings.TrimPrefix(path, "~"))
}
