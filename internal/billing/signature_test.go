package billing_test

import (
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"testing"

	"github.com/mailsense/mailsense/internal/billing"
	"github.com/stretchr/testify/assert"
)

// sign computes the expected header digest independently of the
// implementation under test.
func sign(secret, ts string, body []byte) string {
	mac := hmac.New(sha256.New, []byte(secret))
	mac.Write([]byte(ts + ";"))
	mac.Write(body)
	return hex.EncodeToString(mac.Sum(nil))
}

func TestVerifySignature(t *testing.T) {
	secret := "s"
	body := []byte("{}")
	ts := "1000"
	header := "ts=" + ts + ";h1=" + sign(secret, ts, body)

	t.Run("accepts a correctly signed payload", func(t *testing.T) {
		assert.True(t, billing.VerifySignature(secret, header, body))
	})

	t.Run("altered body fails", func(t *testing.T) {
		assert.False(t, billing.VerifySignature(secret, header, []byte("{ }")))
	})

	t.Run("altered timestamp fails", func(t *testing.T) {
		tampered := "ts=1001;h1=" + sign(secret, ts, body)
		assert.False(t, billing.VerifySignature(secret, tampered, body))
	})

	t.Run("wrong secret fails", func(t *testing.T) {
		assert.False(t, billing.VerifySignature("t", header, body))
	})

	t.Run("altered digest fails", func(t *testing.T) {
		digest := sign(secret, ts, body)
		flipped := "0" + digest[1:]
		if flipped == digest {
			flipped = "1" + digest[1:]
		}
		assert.False(t, billing.VerifySignature(secret, "ts="+ts+";h1="+flipped, body))
	})

	t.Run("missing timestamp field fails closed", func(t *testing.T) {
		assert.False(t, billing.VerifySignature(secret, "h1="+sign(secret, ts, body), body))
	})

	t.Run("missing digest field fails closed", func(t *testing.T) {
		assert.False(t, billing.VerifySignature(secret, "ts=1000", body))
	})

	t.Run("non-hex digest fails closed", func(t *testing.T) {
		assert.False(t, billing.VerifySignature(secret, "ts=1000;h1=zzzz", body))
	})

	t.Run("garbage header fails closed", func(t *testing.T) {
		assert.False(t, billing.VerifySignature(secret, "complete nonsense", body))
		assert.False(t, billing.VerifySignature(secret, "", body))
	})

	t.Run("empty secret fails closed", func(t *testing.T) {
		assert.False(t, billing.VerifySignature("", header, body))
	})
}

func TestVerifyLegacyKey(t *testing.T) {
	assert.True(t, billing.VerifyLegacyKey("legacy-key", "legacy-key"))
	assert.False(t, billing.VerifyLegacyKey("legacy-key", "wrong-key"))
	assert.False(t, billing.VerifyLegacyKey("legacy-key", ""))

	// An empty configured key disables the scheme entirely
	assert.False(t, billing.VerifyLegacyKey("", ""))
	assert.False(t, billing.VerifyLegacyKey("", "anything"))
}
