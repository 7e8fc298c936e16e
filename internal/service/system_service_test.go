package service_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rabbit-invest/rabbit-invest-backend/internal/testutil"
)

func TestSystemService(t *testing.T) {
	t.Run("healthy database", func(t *testing.T) {
		svcs := testutil.NewTestServices(t, testutil.NewMockGateway())

		assert.NoError(t, svcs.System.CheckHealth())
	})

	t.Run("version reports schema and catalog", func(t *testing.T) {
		svcs := testutil.NewTestServices(t, testutil.NewMockGateway())

		info, err := svcs.System.CheckVersion()
		require.NoError(t, err)
		assert.Equal(t, "1", info.DbVersion)
		assert.Nil(t, info.CatalogLoadedAt)

		_, err = svcs.Catalog.Current(context.Background())
		require.NoError(t, err)

		info, err = svcs.System.CheckVersion()
		require.NoError(t, err)
		assert.Equal(t, int64(1), info.CatalogVersion)
		assert.Equal(t, 6, info.CatalogSize)
		assert.NotNil(t, info.CatalogLoadedAt)
	})
}
