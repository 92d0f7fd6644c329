package security

import (
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
)

// HashRefreshToken derives the stored digest of a refresh token.
func HashRefreshToken(token, pepper string) string {
	mac := hmac.New(sha256.New, []byte(pepper))
	_, _ = mac.Write([]byte(token))
	return hex.EncodeToString(mac.Sum(nil))
}
