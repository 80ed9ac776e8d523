package auth

import (
	"strings"
	"testing"
	"time"

	"github.com/google/uuid"

	"github.com/veloramarket/storefront-checkout/pkg/config"
)

func testJWTConfig() config.JWTConfig {
	return config.JWTConfig{Secret: "test-secret", Issuer: "velora-test", ExpirationMinutes: 60}
}

func TestMintAndParseRoundTrip(t *testing.T) {
	cfg := testJWTConfig()
	customerID := uuid.New()

	token, err := MintCustomerToken(cfg, time.Now(), CustomerTokenPayload{
		CustomerID: customerID,
		Email:      "buyer@example.com",
		Name:       "A Buyer",
	})
	if err != nil {
		t.Fatalf("mint: %v", err)
	}

	claims, err := ParseCustomerToken(cfg, token)
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	if claims.CustomerID != customerID {
		t.Fatalf("customer id mismatch: %s", claims.CustomerID)
	}
	if claims.Email != "buyer@example.com" {
		t.Fatalf("email mismatch: %s", claims.Email)
	}
	if claims.ID == "" {
		t.Fatalf("expected generated jti")
	}
}

func TestParseRejectsExpiredToken(t *testing.T) {
	cfg := testJWTConfig()
	token, err := MintCustomerToken(cfg, time.Now().Add(-2*time.Hour), CustomerTokenPayload{CustomerID: uuid.New()})
	if err != nil {
		t.Fatalf("mint: %v", err)
	}
	if _, err := ParseCustomerToken(cfg, token); err == nil {
		t.Fatalf("expected expired token to fail")
	}
}

func TestParseRejectsWrongIssuer(t *testing.T) {
	cfg := testJWTConfig()
	token, err := MintCustomerToken(cfg, time.Now(), CustomerTokenPayload{CustomerID: uuid.New()})
	if err != nil {
		t.Fatalf("mint: %v", err)
	}

	other := cfg
	other.Issuer = "someone-else"
	if _, err := ParseCustomerToken(other, token); err == nil {
		t.Fatalf("expected issuer mismatch to fail")
	}
}

func TestParseRejectsTamperedToken(t *testing.T) {
	cfg := testJWTConfig()
	token, err := MintCustomerToken(cfg, time.Now(), CustomerTokenPayload{CustomerID: uuid.New()})
	if err != nil {
		t.Fatalf("mint: %v", err)
	}

	tampered := token[:strings.LastIndex(token, ".")] + ".AAAA"
	if _, err := ParseCustomerToken(cfg, tampered); err == nil {
		t.Fatalf("expected tampered signature to fail")
	}
}

func TestMintValidatesConfig(t *testing.T) {
	cases := map[string]config.JWTConfig{
		"missing secret": {Issuer: "velora-test", ExpirationMinutes: 60},
		"missing issuer": {Secret: "s", ExpirationMinutes: 60},
		"zero expiry":    {Secret: "s", Issuer: "velora-test"},
	}
	for name, cfg := range cases {
		if _, err := MintCustomerToken(cfg, time.Now(), CustomerTokenPayload{CustomerID: uuid.New()}); err == nil {
			t.Fatalf("%s: expected error", name)
		}
	}
}
