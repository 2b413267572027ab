package metrics

import (
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"

	"github.com/OFFIS-RIT/idisland/pkg/common"
)

func TestRunCompleted(t *testing.T) {
	m := New(prometheus.NewRegistry())

	m.RunCompleted(4, 11, []common.AnomalyLabel{
		{Kind: common.AnomalyDuplicateIdentity},
		{Kind: common.AnomalyMislinkedIdentity, Fallback: true},
		{Kind: common.AnomalyMislinkedIdentity},
	})

	assert.Equal(t, 1.0, testutil.ToFloat64(m.runs.WithLabelValues("completed")))
	assert.Equal(t, 4.0, testutil.ToFloat64(m.islands))
	assert.Equal(t, 11.0, testutil.ToFloat64(m.identities))
	assert.Equal(t, 2.0, testutil.ToFloat64(m.anomalies.WithLabelValues(string(common.AnomalyMislinkedIdentity))))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.anomalies.WithLabelValues(string(common.AnomalyDuplicateIdentity))))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.fallbacks))
}

func TestFailuresAndStages(t *testing.T) {
	reg := prometheus.NewRegistry()
	m := New(reg)

	m.RunFailed()
	m.PersistFailed("s3")
	m.PersistFailed("s3")
	m.ObserveStage("generate", 150*time.Millisecond)

	assert.Equal(t, 1.0, testutil.ToFloat64(m.runs.WithLabelValues("failed")))
	assert.Equal(t, 2.0, testutil.ToFloat64(m.persistErrors.WithLabelValues("s3")))
	assert.Equal(t, 1, testutil.CollectAndCount(m.duration))

	families, err := reg.Gather()
	assert.NoError(t, err)
	assert.NotEmpty(t, families)
}

func TestSeparateRegistries(t *testing.T) {
	assert.NotPanics(t, func() {
		New(prometheus.NewRegistry())
		New(prometheus.NewRegistry())
	})
}
