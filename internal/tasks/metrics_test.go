package tasks

import (
	"strings"
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRegisterMetrics(t *testing.T) {
	reg := prometheus.NewRegistry()
	repo := NewInMemoryRepo(seedTasks()...)
	require.NoError(t, RegisterMetrics(reg, repo))

	before := testutil.ToFloat64(taskMutationsTotal.WithLabelValues("delete"))
	require.NoError(t, repo.Delete(1))

	assert.Equal(t, before+1, testutil.ToFloat64(taskMutationsTotal.WithLabelValues("delete")))

	n, err := testutil.GatherAndCount(reg, "tasks_stored")
	require.NoError(t, err)
	assert.Equal(t, 1, n)
	assert.NoError(t, testutil.GatherAndCompare(reg, strings.NewReader("# HELP tasks_stored Number of tasks currently held in memory\n# TYPE tasks_stored gauge\ntasks_stored 2\n"), "tasks_stored"))
}
