package billing

import (
	"crypto/hmac"
	"crypto/sha256"
	"crypto/subtle"
	"encoding/hex"
	"strings"
)

// VerifySignature checks a Paddle signature header of the form
// "ts=<unix>;h1=<hex>" against the raw request body. The digest covers
// "<ts>;<body>" keyed with the shared webhook secret. The body must be the
// exact received bytes; hashing a re-serialized payload is not equivalent.
// Any malformed input fails verification rather than erroring.
func VerifySignature(secret, header string, body []byte) bool {
	if secret == "" || header == "" {
		return false
	}

	var ts, digest string
	for _, field := range strings.Split(header, ";") {
		key, value, ok := strings.Cut(field, "=")
		if !ok {
			continue
		}
		switch strings.TrimSpace(key) {
		case "ts":
			ts = strings.TrimSpace(value)
		case "h1":
			digest = strings.TrimSpace(value)
		}
	}
	if ts == "" || digest == "" {
		return false
	}

	got, err := hex.DecodeString(digest)
	if err != nil {
		return false
	}

	mac := hmac.New(sha256.New, []byte(secret))
	mac.Write([]byte(ts))
	mac.Write([]byte(";"))
	mac.Write(body)

	return hmac.Equal(mac.Sum(nil), got)
}

// VerifyLegacyKey authenticates the older API-key-trust webhook scheme with a
// constant-time comparison. An empty configured key disables the scheme.
func VerifyLegacyKey(configured, presented string) bool {
	if configured == "" || presented == "" {
		return false
	}
	return subtle.ConstantTimeCompare([]byte(configured), []byte(presented)) == 1
}
