package venue

import (
	"crypto/ed25519"
	"fmt"
	"strconv"
	"strings"

	solana "github.com/gagliardetto/solana-go"
)

// ParseKeeperKey parses the keeper private key from either a comma separated list of bytes
// or a base58 string.
func ParseKeeperKey(raw string) (solana.PrivateKey, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return nil, fmt.Errorf("keeper private key cannot be an empty string")
	}

	if !strings.Contains(raw, ",") {
		key, err := solana.PrivateKeyFromBase58(raw)
		if err != nil {
			return nil, fmt.Errorf("parsing base58 keeper private key: %w", err)
		}
		if len(key) != ed25519.PrivateKeySize {
			return nil, fmt.Errorf("expected a %d byte keeper private key, got %d bytes",
				ed25519.PrivateKeySize, len(key))
		}

		return key, nil
	}

	parts := strings.Split(strings.Trim(raw, "[]"), ",")
	if len(parts) != ed25519.PrivateKeySize {
		return nil, fmt.Errorf("expected a %d byte keeper private key, got %d bytes",
			ed25519.PrivateKeySize, len(parts))
	}

	key := make([]byte, 0, len(parts))
	for idx, part := range parts {
		b, err := strconv.ParseUint(strings.TrimSpace(part), 10, 8)
		if err != nil {
			return nil, fmt.Errorf("parsing keeper private key byte %d: %w", idx, err)
		}

		key = append(key, byte(b))
	}

	return solana.PrivateKey(key), nil
}
