package signature

import (
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
)

// Verify reports whether providedHex is a valid HMAC-SHA256 signature
// of payload under secret.
//
// An empty secret disables verification and always returns true: Pike13
// signing is opt-in, and an unset secret means the operator chose not to
// configure it.
//
// A malformed signature (invalid hex, wrong length) fails verification
// rather than erroring. The comparison is constant-time.
func Verify(secret string, payload []byte, providedHex string) bool {
	if secret == "" {
		return true
	}

	provided, err := hex.DecodeString(providedHex)
	if err != nil {
		return false
	}

	mac := hmac.New(sha256.New, []byte(secret))
	mac.Write(payload)
	return hmac.Equal(provided, mac.Sum(nil))
}
