package auth

import (
	"testing"
	"time"
)

func TestTokenRoundTrip(t *testing.T) {
	at := NewAuthToken("unit-test-secret")

	token, err := at.GenerateToken("device-42")
	if err != nil {
		t.Fatalf("GenerateToken error: %v", err)
	}

	ok, deviceID, err := at.VerifyToken(token)
	if err != nil || !ok {
		t.Fatalf("VerifyToken: ok=%v err=%v", ok, err)
	}
	if deviceID != "device-42" {
		t.Errorf("deviceID = %q", deviceID)
	}
}

func TestTokenWrongSecretRejected(t *testing.T) {
	token, err := NewAuthToken("secret-a").GenerateToken("device-1")
	if err != nil {
		t.Fatalf("GenerateToken error: %v", err)
	}

	if ok, _, err := NewAuthToken("secret-b").VerifyToken(token); ok || err == nil {
		t.Error("token signed with a different secret must not verify")
	}
}

func TestTokenExpiryRejected(t *testing.T) {
	at := NewAuthToken("secret")
	at.ttl = -time.Minute

	token, err := at.GenerateToken("device-1")
	if err != nil {
		t.Fatalf("GenerateToken error: %v", err)
	}

	if ok, _, err := at.VerifyToken(token); ok || err == nil {
		t.Error("expired token must not verify")
	}
}

func TestTokenRequiresSecretAndDevice(t *testing.T) {
	if _, err := NewAuthToken("").GenerateToken("device-1"); err == nil {
		t.Error("expected error without secret")
	}
	if _, err := NewAuthToken("secret").GenerateToken(""); err == nil {
		t.Error("expected error without device id")
	}
}
