package service

import (
	"fmt"

	"github.com/fernet/fernet-go"

	"github.com/rabbit-invest/rabbit-invest-backend/internal/apperrors"
)

// EmailCipher encrypts values stored in the preference table. A cipher built
// from an empty key passes values through unchanged.
type EmailCipher struct {
	keys []*fernet.Key
}

// NewEmailCipher parses a base64 fernet key. An empty key disables encryption.
func NewEmailCipher(encodedKey string) (*EmailCipher, error) {
	if encodedKey == "" {
		return &EmailCipher{}, nil
	}
	key, err := fernet.DecodeKey(encodedKey)
	if err != nil {
		return nil, fmt.Errorf("invalid preference encryption key: %w", err)
	}
	return &EmailCipher{keys: []*fernet.Key{key}}, nil
}

// GenerateEmailKey returns a new random base64 fernet key.
func GenerateEmailKey() (string, error) {
	var key fernet.Key
	if err := key.Generate(); err != nil {
		return "", err
	}
	return key.Encode(), nil
}

// Enabled reports whether values are encrypted.
func (c *EmailCipher) Enabled() bool {
	return c != nil && len(c.keys) > 0
}

// Encrypt seals plain into a fernet token.
func (c *EmailCipher) Encrypt(plain string) (string, error) {
	if !c.Enabled() {
		return plain, nil
	}
	token, err := fernet.EncryptAndSign([]byte(plain), c.keys[0])
	if err != nil {
		return "", fmt.Errorf("failed to encrypt preference value: %w", err)
	}
	return string(token), nil
}

// Decrypt opens a token produced by Encrypt. Tokens never expire.
func (c *EmailCipher) Decrypt(token string) (string, error) {
	if !c.Enabled() {
		return token, nil
	}
	plain := fernet.VerifyAndDecrypt([]byte(token), 0, c.keys)
	if plain == nil {
		return "", apperrors.ErrFailedToDecryptPreferences
	}
	return string(plain), nil
}
