package commands

import (
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	promtestutil "github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	dserrors "github.com/systmms/davsync/internal/errors"
	"github.com/systmms/davsync/internal/fingerprint"
	"github.com/systmms/davsync/tests/testutil"
)

func newTLSServer(t *testing.T) *httptest.Server {
	t.Helper()

	srv := httptest.NewTLSServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		fmt.Fprint(w, "ok")
	}))
	t.Cleanup(srv.Close)
	return srv
}

func TestFingerprintCommandPrints(t *testing.T) {
	t.Parallel()

	srv := newTLSServer(t)
	der := srv.Certificate().Raw

	for _, alg := range []fingerprint.Algorithm{fingerprint.SHA1, fingerprint.MD5, fingerprint.SHA256} {
		want, err := fingerprint.Compute(der, alg)
		require.NoError(t, err)

		cfg, _ := newTestConfig(t, "")
		stdout, _, err := execute(NewFingerprintCommand(cfg), "", "--algorithm", string(alg), srv.URL)
		require.NoError(t, err)
		assert.Equal(t, want+"\n", stdout)
	}
}

func TestFingerprintCommandExpect(t *testing.T) {
	t.Parallel()

	srv := newTLSServer(t)
	fp, err := fingerprint.Compute(srv.Certificate().Raw, fingerprint.SHA256)
	require.NoError(t, err)

	cfg, logger := newTestConfig(t, "")
	stdout, _, err := execute(NewFingerprintCommand(cfg), "", "--expect", strings.ToLower(fp), srv.URL)
	require.NoError(t, err)
	assert.Equal(t, fp+"\n", stdout)
	logger.AssertContains(t, "matches the pinned sha256 fingerprint")

	wrong := strings.Repeat("AB:", 19) + "AB"
	cfg, _ = newTestConfig(t, "")
	_, _, err = execute(NewFingerprintCommand(cfg), "", "--expect", wrong, srv.URL)
	require.Error(t, err)
	assert.ErrorIs(t, err, dserrors.ErrCertificateMismatch)
}

func TestFingerprintCommandStorage(t *testing.T) {
	t.Parallel()

	srv := newTLSServer(t)
	fp, err := fingerprint.Compute(srv.Certificate().Raw, fingerprint.SHA1)
	require.NoError(t, err)

	path := testutil.WriteConfig(t, fmt.Sprintf(`general: {}
storages:
  remote:
    type: caldav
    url: %s
    verify: false
    verify_fingerprint: "%s"
  stale:
    url: %s
    verify: false
    verify_fingerprint: "%s"
`, srv.URL, fp, srv.URL, strings.Repeat("00:", 19)+"00"))

	cfg, _ := newTestConfig(t, path)
	stdout, _, err := execute(NewFingerprintCommand(cfg), "", "--storage", "remote")
	require.NoError(t, err)
	assert.Equal(t, fp+"\n", stdout)

	cfg, _ = newTestConfig(t, path)
	_, _, err = execute(NewFingerprintCommand(cfg), "", "--storage", "stale")
	assert.ErrorIs(t, err, dserrors.ErrCertificateMismatch)

	cfg, _ = newTestConfig(t, path)
	_, _, err = execute(NewFingerprintCommand(cfg), "", "--storage", "missing")
	var cfgErr dserrors.ConfigError
	require.ErrorAs(t, err, &cfgErr)
	assert.Equal(t, "storage", cfgErr.Field)
}

// Not parallel: counters are process-global.
func TestFingerprintCommandRecordsChecks(t *testing.T) {
	fingerprint.InitMetrics()
	counter := fingerprint.GetChecksTotal()
	require.NotNil(t, counter)

	srv := newTLSServer(t)
	fp, err := fingerprint.Compute(srv.Certificate().Raw, fingerprint.SHA1)
	require.NoError(t, err)

	matchBefore := promtestutil.ToFloat64(counter.WithLabelValues("match"))
	mismatchBefore := promtestutil.ToFloat64(counter.WithLabelValues("mismatch"))

	cfg, _ := newTestConfig(t, "")
	_, _, err = execute(NewFingerprintCommand(cfg), "", "--expect", fp, srv.URL)
	require.NoError(t, err)
	assert.Equal(t, matchBefore+1, promtestutil.ToFloat64(counter.WithLabelValues("match")))

	cfg, _ = newTestConfig(t, "")
	_, _, err = execute(NewFingerprintCommand(cfg), "", "--expect", strings.Repeat("00:", 19)+"00", srv.URL)
	assert.ErrorIs(t, err, dserrors.ErrCertificateMismatch)
	assert.Equal(t, mismatchBefore+1, promtestutil.ToFloat64(counter.WithLabelValues("mismatch")))

	// Printing without a pin is not a check
	cfg, _ = newTestConfig(t, "")
	_, _, err = execute(NewFingerprintCommand(cfg), "", srv.URL)
	require.NoError(t, err)
	assert.Equal(t, matchBefore+1, promtestutil.ToFloat64(counter.WithLabelValues("match")))
	assert.Equal(t, mismatchBefore+1, promtestutil.ToFloat64(counter.WithLabelValues("mismatch")))
}

func TestFingerprintCommandErrors(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name string
		args []string
	}{
		{name: "no target", args: nil},
		{name: "plain http", args: []string{"http://dav.example.com/"}},
		{name: "bad algorithm", args: []string{"--algorithm", "crc32", "https://dav.example.com/"}},
		{name: "bad pin", args: []string{"--expect", "xyz", "https://127.0.0.1:1/"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			cfg, _ := newTestConfig(t, "")
			_, _, err := execute(NewFingerprintCommand(cfg), "", tt.args...)
			assert.Error(t, err)
		})
	}
}
