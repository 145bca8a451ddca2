package metrics

import (
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRegisterOnCustomRegistry(t *testing.T) {
	reg := prometheus.NewRegistry()
	require.NoError(t, Register(reg))
	require.NoError(t, Register(reg))

	UpstreamRetriesTotal.Inc()

	n, err := testutil.GatherAndCount(reg, "mumin_upstream_retries_total")
	require.NoError(t, err)
	assert.Equal(t, 1, n)
}

func TestRegisterConflict(t *testing.T) {
	reg := prometheus.NewRegistry()
	other := prometheus.NewCounter(prometheus.CounterOpts{
		Name: "mumin_upstream_retries_total",
		Help: "clashing collector",
	})
	require.NoError(t, reg.Register(other))

	assert.Error(t, Register(reg))
}
