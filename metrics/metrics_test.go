package metrics

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestDisabledMetricsAreNoOps(t *testing.T) {
	m := New(false)

	assert.NotPanics(t, func() {
		m.RecordRequest("register", 201, 0.12)
		m.RecordRequest("current_user", 0, 0.5)
		m.RecordSessionTransition("loading", "authenticated")
	})
}

func TestStatusLabel(t *testing.T) {
	assert.Equal(t, "transport_error", statusLabel(0))
	assert.Equal(t, "500", statusLabel(500))
	assert.Equal(t, "201", statusLabel(201))
}

func TestEnabledMetricsRecord(t *testing.T) {
	// promauto registers against the default registry, so New(true) runs
	// once for the whole test binary.
	m := New(true)

	assert.NotPanics(t, func() {
		m.RecordRequest("verify", 200, 0.02)
		m.RecordSessionTransition("unauthenticated", "loading")
	})
}
