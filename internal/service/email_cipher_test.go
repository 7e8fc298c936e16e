package service_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rabbit-invest/rabbit-invest-backend/internal/apperrors"
	"github.com/rabbit-invest/rabbit-invest-backend/internal/service"
)

func TestEmailCipher(t *testing.T) {
	t.Run("empty key passes values through", func(t *testing.T) {
		c, err := service.NewEmailCipher("")
		require.NoError(t, err)
		assert.False(t, c.Enabled())

		sealed, err := c.Encrypt("a@b.co")
		require.NoError(t, err)
		assert.Equal(t, "a@b.co", sealed)
	})

	t.Run("invalid key is rejected", func(t *testing.T) {
		_, err := service.NewEmailCipher("not-a-key")
		assert.Error(t, err)
	})

	t.Run("token from another key does not decrypt", func(t *testing.T) {
		k1, err := service.GenerateEmailKey()
		require.NoError(t, err)
		k2, err := service.GenerateEmailKey()
		require.NoError(t, err)
		c1, err := service.NewEmailCipher(k1)
		require.NoError(t, err)
		c2, err := service.NewEmailCipher(k2)
		require.NoError(t, err)

		token, err := c1.Encrypt("a@b.co")
		require.NoError(t, err)

		_, err = c2.Decrypt(token)
		assert.ErrorIs(t, err, apperrors.ErrFailedToDecryptPreferences)
	})
}
