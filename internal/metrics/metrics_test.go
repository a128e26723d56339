package metrics

import (
	"testing"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
)

func TestObserveDetection(t *testing.T) {
	m := New()

	m.ObserveDetection(true, []string{"acceptLanguage", "canvas"})
	m.ObserveDetection(false, nil)

	assert.Equal(t, 1.0, testutil.ToFloat64(m.Detections.WithLabelValues("private")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.Detections.WithLabelValues("standard")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.ProbePositives.WithLabelValues("acceptLanguage")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.ProbePositives.WithLabelValues("canvas")))
}

func TestObserveBypass(t *testing.T) {
	m := New()

	m.ObserveBypass()
	m.ObserveBypass()

	assert.Equal(t, 2.0, testutil.ToFloat64(m.BypassGrants))
}
