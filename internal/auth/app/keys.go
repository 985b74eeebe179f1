package app

import (
	"fmt"
	"log/slog"
	"os"
	"strings"

	"github.com/aussiebroadwan/tabauth/pkg/jwtx"
)

const minSecretLength = jwtx.MinKeyLength

// LoadSigningSecret returns the HMAC key tokens are signed with.
//
// AUTH_SECRET_FILE wins over AUTH_SECRET so the secret can be mounted from a
// secrets volume without also living in the environment. Surrounding
// whitespace in the file is ignored.
func LoadSigningSecret(cfg AuthConfig, logger *slog.Logger) ([]byte, error) {
	secret := cfg.Secret
	if cfg.SecretFile != "" {
		data, err := os.ReadFile(cfg.SecretFile)
		if err != nil {
			return nil, fmt.Errorf("failed to read signing secret: %w", err)
		}
		secret = strings.TrimSpace(string(data))
		logger.Info("signing secret loaded from file", "path", cfg.SecretFile)
	}

	if len(secret) < minSecretLength {
		return nil, fmt.Errorf("signing secret must be at least %d bytes, got %d", minSecretLength, len(secret))
	}
	return []byte(secret), nil
}
