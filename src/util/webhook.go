package util

import (
	"context"
	"crypto/ecdsa"
	"crypto/elliptic"
	"crypto/sha256"
	"crypto/subtle"
	"encoding/base64"
	"encoding/hex"
	"errors"
	"fmt"
	"math/big"
	"net/http"
	"strings"
	"sync"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/plaid/plaid-go/v41/plaid"
)

// Verification follows https://plaid.com/docs/api/webhooks/webhook-verification/

const (
	verificationHeader = "Plaid-Verification"
	webhookMaxAge      = 5 * time.Minute
)

// KeyFetcher returns the verification key Plaid published under kid.
type KeyFetcher func(ctx context.Context, kid string) (*plaid.JWKPublicKey, error)

// PlaidKeyFetcher asks /webhook_verification_key/get.
func PlaidKeyFetcher(client *plaid.APIClient) KeyFetcher {
	return func(ctx context.Context, kid string) (*plaid.JWKPublicKey, error) {
		req := *plaid.NewWebhookVerificationKeyGetRequest(kid)
		resp, _, err := client.PlaidApi.WebhookVerificationKeyGet(ctx).
			WebhookVerificationKeyGetRequest(req).
			Execute()
		if err != nil {
			return nil, err
		}
		key := resp.GetKey()
		return &key, nil
	}
}

// WebhookVerifier checks the Plaid-Verification JWT of incoming webhooks.
// Parsed keys are cached by kid. Safe for concurrent use.
type WebhookVerifier struct {
	fetch KeyFetcher
	now   func() time.Time

	mu   sync.Mutex
	keys map[string]*ecdsa.PublicKey
}

func NewWebhookVerifier(fetch KeyFetcher) *WebhookVerifier {
	return &WebhookVerifier{fetch: fetch, now: time.Now, keys: map[string]*ecdsa.PublicKey{}}
}

// p256Key rebuilds the public key from its base64url coordinates.
func p256Key(jwk *plaid.JWKPublicKey) (*ecdsa.PublicKey, error) {
	if jwk == nil {
		return nil, errors.New("no key returned")
	}
	if jwk.Kty != "EC" || jwk.Crv != "P-256" {
		return nil, fmt.Errorf("unsupported key %s/%s", jwk.Kty, jwk.Crv)
	}
	coord := func(name, v string) (*big.Int, error) {
		if v == "" {
			return nil, fmt.Errorf("missing %s coordinate", name)
		}
		b, err := base64.RawURLEncoding.DecodeString(v)
		if err != nil {
			return nil, fmt.Errorf("decode %s coordinate: %w", name, err)
		}
		return new(big.Int).SetBytes(b), nil
	}
	x, err := coord("x", jwk.X)
	if err != nil {
		return nil, err
	}
	y, err := coord("y", jwk.Y)
	if err != nil {
		return nil, err
	}
	return &ecdsa.PublicKey{Curve: elliptic.P256(), X: x, Y: y}, nil
}

func (v *WebhookVerifier) publicKey(ctx context.Context, kid string) (*ecdsa.PublicKey, error) {
	v.mu.Lock()
	key, ok := v.keys[kid]
	v.mu.Unlock()
	if ok {
		return key, nil
	}

	jwk, err := v.fetch(ctx, kid)
	if err != nil {
		return nil, fmt.Errorf("get JWK %s: %w", kid, err)
	}
	key, err = p256Key(jwk)
	if err != nil {
		return nil, fmt.Errorf("get JWK %s: %w", kid, err)
	}
	v.mu.Lock()
	v.keys[kid] = key
	v.mu.Unlock()
	return key, nil
}

// Verify returns nil when header carries an ES256 token signed by a Plaid
// key, issued within the last five minutes, whose request_body_sha256 claim
// matches body.
func (v *WebhookVerifier) Verify(ctx context.Context, body []byte, header http.Header) error {
	raw := header.Get(verificationHeader)
	if raw == "" {
		return fmt.Errorf("missing %s header", verificationHeader)
	}

	parser := jwt.NewParser(
		jwt.WithValidMethods([]string{jwt.SigningMethodES256.Alg()}),
		jwt.WithLeeway(30*time.Second),
		jwt.WithTimeFunc(v.now),
	)
	claims := jwt.MapClaims{}
	_, err := parser.ParseWithClaims(raw, claims, func(t *jwt.Token) (interface{}, error) {
		kid, _ := t.Header["kid"].(string)
		if kid == "" {
			return nil, errors.New("missing kid in token header")
		}
		return v.publicKey(ctx, kid)
	})
	if err != nil {
		return fmt.Errorf("invalid token: %w", err)
	}

	iat, err := claims.GetIssuedAt()
	if err != nil || iat == nil {
		return errors.New("missing iat")
	}
	if age := v.now().Sub(iat.Time); age > webhookMaxAge {
		return fmt.Errorf("token too old (%s)", age.Round(time.Second))
	}

	want, _ := claims["request_body_sha256"].(string)
	if want == "" {
		return errors.New("missing request_body_sha256")
	}
	sum := sha256.Sum256(body)
	got := hex.EncodeToString(sum[:])
	if subtle.ConstantTimeCompare([]byte(got), []byte(strings.ToLower(want))) != 1 {
		return errors.New("body hash mismatch")
	}
	return nil
}
