/*
 * Copyright © 2025 Suparena Software Inc., All rights reserved.
 */

package monitoring

import (
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPrivateRegistries(t *testing.T) {
	a := New(nil)
	b := New(nil)

	a.Lookups.WithLabelValues(LookupUsable).Inc()
	a.Lookups.WithLabelValues(LookupUsable).Inc()
	b.Lookups.WithLabelValues(LookupNegative).Inc()

	assert.Equal(t, 2.0, testutil.ToFloat64(a.Lookups.WithLabelValues(LookupUsable)))
	assert.Equal(t, 0.0, testutil.ToFloat64(b.Lookups.WithLabelValues(LookupUsable)))
	require.NotNil(t, a.Gatherer())

	families, err := a.Gatherer().Gather()
	require.NoError(t, err)
	assert.NotEmpty(t, families)
}

func TestSharedRegisterer(t *testing.T) {
	reg := prometheus.NewRegistry()
	m := New(reg)
	assert.Nil(t, m.Gatherer())

	assert.Panics(t, func() { New(reg) })
}
