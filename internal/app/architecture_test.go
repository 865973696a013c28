//go:build unit

package app_test

import (
	"testing"

	"github.com/mstrYoda/go-arctest/pkg/arctest"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const mod = `github\.com/Nazarious-ucu/weather-push-api`

func TestLayeredArchitecture(t *testing.T) {
	arch, err := arctest.New("../../")
	require.NoError(t, err)

	err = arch.ParsePackages()
	require.NoError(t, err, "failed to parse packages")

	domainLayer, err := arctest.NewLayer("domain",
		`^`+mod+`/internal/models`,
		`^`+mod+`/pkg/messaging`,
	)
	require.NoError(t, err)

	sharedLayer, err := arctest.NewLayer("shared",
		`^`+mod+`/internal/(config|metrics)`,
		`^`+mod+`/pkg/logger`,
	)
	require.NoError(t, err)

	infraLayer, err := arctest.NewLayer("infrastructure",
		`^`+mod+`/internal/(repository|emailer|lock|auth|queue|producers|consumer)`,
	)
	require.NoError(t, err)

	appLayer, err := arctest.NewLayer("application",
		`^`+mod+`/internal/(services|notifier|scheduler)`,
	)
	require.NoError(t, err)

	userLayer, err := arctest.NewLayer("interface", `^`+mod+`/internal/handlers`)
	require.NoError(t, err)

	layered := arch.NewLayeredArchitecture(domainLayer, sharedLayer, infraLayer, appLayer, userLayer)

	err = sharedLayer.DependsOnLayer(domainLayer)
	assert.NoError(t, err)

	err = infraLayer.DependsOnLayer(domainLayer)
	assert.NoError(t, err)
	err = infraLayer.DependsOnLayer(sharedLayer)
	assert.NoError(t, err)

	err = appLayer.DependsOnLayer(domainLayer)
	assert.NoError(t, err)
	err = appLayer.DependsOnLayer(sharedLayer)
	assert.NoError(t, err)
	err = appLayer.DependsOnLayer(infraLayer)
	assert.NoError(t, err)

	err = userLayer.DependsOnLayer(domainLayer)
	assert.NoError(t, err)

	violations, err := layered.Check()
	require.NoError(t, err)

	for _, v := range violations {
		assert.Failf(t, "layer violation", "%s", v)
	}
}
