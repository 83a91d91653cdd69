package util

import (
	"context"
	"crypto/ecdsa"
	"crypto/elliptic"
	"crypto/rand"
	"crypto/sha256"
	"encoding/base64"
	"encoding/hex"
	"errors"
	"net/http"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/plaid/plaid-go/v41/plaid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type webhookFixture struct {
	key     *ecdsa.PrivateKey
	jwk     plaid.JWKPublicKey
	fetches int
}

func newWebhookFixture(t *testing.T) *webhookFixture {
	t.Helper()
	key, err := ecdsa.GenerateKey(elliptic.P256(), rand.Reader)
	require.NoError(t, err)
	pad := func(b []byte) []byte {
		out := make([]byte, 32)
		copy(out[32-len(b):], b)
		return out
	}
	return &webhookFixture{
		key: key,
		jwk: plaid.JWKPublicKey{
			Kid: "kid-1",
			Kty: "EC",
			Crv: "P-256",
			Alg: "ES256",
			Use: "sig",
			X:   base64.RawURLEncoding.EncodeToString(pad(key.X.Bytes())),
			Y:   base64.RawURLEncoding.EncodeToString(pad(key.Y.Bytes())),
		},
	}
}

func (f *webhookFixture) verifier(now time.Time) *WebhookVerifier {
	v := NewWebhookVerifier(func(ctx context.Context, kid string) (*plaid.JWKPublicKey, error) {
		f.fetches++
		if kid != f.jwk.Kid {
			return nil, errors.New("unknown kid")
		}
		key := f.jwk
		return &key, nil
	})
	v.now = func() time.Time { return now }
	return v
}

func (f *webhookFixture) sign(t *testing.T, body []byte, iat time.Time, kid string) http.Header {
	t.Helper()
	sum := sha256.Sum256(body)
	token := jwt.NewWithClaims(jwt.SigningMethodES256, jwt.MapClaims{
		"iat":                 iat.Unix(),
		"request_body_sha256": hex.EncodeToString(sum[:]),
	})
	token.Header["kid"] = kid
	signed, err := token.SignedString(f.key)
	require.NoError(t, err)
	h := http.Header{}
	h.Set("Plaid-Verification", signed)
	return h
}

func TestWebhookVerify(t *testing.T) {
	now := time.Date(2024, 3, 1, 12, 0, 0, 0, time.UTC)
	body := []byte(`{"webhook_type":"TRANSACTIONS","webhook_code":"SYNC_UPDATES_AVAILABLE"}`)

	t.Run("valid", func(t *testing.T) {
		f := newWebhookFixture(t)
		v := f.verifier(now)
		assert.NoError(t, v.Verify(context.Background(), body, f.sign(t, body, now.Add(-time.Minute), "kid-1")))
		assert.NoError(t, v.Verify(context.Background(), body, f.sign(t, body, now, "kid-1")))
		assert.Equal(t, 1, f.fetches, "key is cached by kid")
	})

	t.Run("tampered body", func(t *testing.T) {
		f := newWebhookFixture(t)
		err := f.verifier(now).Verify(context.Background(), []byte(`{}`), f.sign(t, body, now, "kid-1"))
		assert.ErrorContains(t, err, "body hash mismatch")
	})

	t.Run("too old", func(t *testing.T) {
		f := newWebhookFixture(t)
		err := f.verifier(now).Verify(context.Background(), body, f.sign(t, body, now.Add(-10*time.Minute), "kid-1"))
		assert.ErrorContains(t, err, "too old")
	})

	t.Run("unknown key", func(t *testing.T) {
		f := newWebhookFixture(t)
		err := f.verifier(now).Verify(context.Background(), body, f.sign(t, body, now, "kid-2"))
		assert.ErrorContains(t, err, "get JWK")
	})

	t.Run("missing header", func(t *testing.T) {
		f := newWebhookFixture(t)
		err := f.verifier(now).Verify(context.Background(), body, http.Header{})
		assert.ErrorContains(t, err, "missing Plaid-Verification")
	})

	t.Run("wrong algorithm", func(t *testing.T) {
		f := newWebhookFixture(t)
		token := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{"iat": now.Unix()})
		token.Header["kid"] = "kid-1"
		signed, err := token.SignedString([]byte("secret"))
		require.NoError(t, err)
		h := http.Header{}
		h.Set("Plaid-Verification", signed)
		err = f.verifier(now).Verify(context.Background(), body, h)
		assert.ErrorContains(t, err, "signing method HS256 is invalid")
		assert.Zero(t, f.fetches)
	})
}
