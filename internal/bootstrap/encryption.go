package bootstrap

import (
	"log/slog"

	"github.com/tailfin-labs/tailfin/internal/data/cryptoutil"
)

// CreateEncryptor creates an AES-GCM encryptor from the provided key
// material. An empty or unusable key falls back to the noop encryptor with
// a warning so local development works without one.
//
//nolint:ireturn // Returning interface is intentional for encryptor abstraction
func CreateEncryptor(key string, logger *slog.Logger) cryptoutil.Encryptor {
	if key == "" {
		if logger != nil {
			logger.Warn("encryption key is empty, using noop encryptor")
		}
		return &cryptoutil.NoopEncryptor{}
	}

	enc, err := cryptoutil.NewEncryptorFromKey(key)
	if err != nil {
		if logger != nil {
			logger.Warn("failed to create encryptor, using noop encryptor", "error", err)
		}
		return &cryptoutil.NoopEncryptor{}
	}
	return enc
}
