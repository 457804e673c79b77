package credentials_test

import (
	"context"
	"testing"

	promtestutil "github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/systmms/davsync/internal/credentials"
	"github.com/systmms/davsync/tests/fakes"
	"github.com/systmms/davsync/tests/testutil"
)

// Not parallel: counters are process-global.
func TestResolutionMetrics(t *testing.T) {
	credentials.InitMetrics()
	credentials.InitMetrics()
	require.True(t, credentials.IsMetricsRegistered())

	counter := credentials.GetResolutionsTotal()
	require.NotNil(t, counter)
	keyringBefore := promtestutil.ToFloat64(counter.WithLabelValues(credentials.SourceKeyring))
	cacheBefore := promtestutil.ToFloat64(counter.WithLabelValues(credentials.SourceCache))
	failedBefore := promtestutil.ToFloat64(counter.WithLabelValues(credentials.SourceFailed))
	savesBefore := promtestutil.ToFloat64(credentials.GetKeyringSavesTotal().WithLabelValues("success"))

	logger := testutil.NewTestLogger(t, false)
	cfg := newConfig(t, logger, "general: {}\n")
	kr := fakes.NewFakeKeyring()
	kr.SetSecret("davsync:example.com", testUser, "pw")
	r := credentials.New(cfg, nil, credentials.Backends{Keyring: kr})

	_, err := r.Resolve(context.Background(), testUser, testURL)
	require.NoError(t, err)
	_, err = r.Resolve(context.Background(), testUser, testURL)
	require.NoError(t, err)
	_, err = r.Resolve(context.Background(), "nobody", testURL)
	require.Error(t, err)

	p, _ := scripted("typed\ny\n")
	r = credentials.New(cfg, nil, credentials.Backends{Keyring: kr, Prompt: p})
	_, err = r.Resolve(context.Background(), "newuser", testURL)
	require.NoError(t, err)

	assert.Equal(t, keyringBefore+1, promtestutil.ToFloat64(counter.WithLabelValues(credentials.SourceKeyring)))
	assert.Equal(t, cacheBefore+1, promtestutil.ToFloat64(counter.WithLabelValues(credentials.SourceCache)))
	assert.Equal(t, failedBefore+1, promtestutil.ToFloat64(counter.WithLabelValues(credentials.SourceFailed)))
	assert.Equal(t, savesBefore+1, promtestutil.ToFloat64(credentials.GetKeyringSavesTotal().WithLabelValues("success")))
}
