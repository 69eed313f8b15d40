package metrics

import (
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNew_RegistersCollectors(t *testing.T) {
	reg := prometheus.NewRegistry()
	m := New(reg, "1.2.3")

	m.AuthAttempts.WithLabelValues("success").Inc()
	m.AuthAttempts.WithLabelValues("success").Inc()
	m.PasswordResets.WithLabelValues("invalid").Inc()

	assert.Equal(t, 2.0, testutil.ToFloat64(m.AuthAttempts.WithLabelValues("success")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.PasswordResets.WithLabelValues("invalid")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.AppInfo.WithLabelValues("1.2.3")))

	families, err := reg.Gather()
	require.NoError(t, err)
	names := make([]string, 0, len(families))
	for _, f := range families {
		names = append(names, f.GetName())
	}
	assert.Contains(t, names, "usertemplate_auth_attempts_total")
	assert.Contains(t, names, "usertemplate_app_info")
}

func TestNew_DuplicateRegistrationPanics(t *testing.T) {
	reg := prometheus.NewRegistry()
	New(reg, "")
	assert.Panics(t, func() { New(reg, "") })
}

func TestNop(t *testing.T) {
	assert.NotPanics(t, func() {
		Nop()
		Nop()
	})
}
