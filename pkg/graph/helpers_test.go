package graph

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/OFFIS-RIT/idisland/pkg/locale/localetest"
)

var testAsOf = time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)

func newTestGenerator(t testing.TB, country string) *Generator {
	t.Helper()
	gen, err := NewGenerator(NewGeneratorParams{
		Provider: localetest.Provider{Country: country},
		AsOf:     testAsOf,
	})
	require.NoError(t, err)
	return gen
}
