package crypto

import (
	"bytes"
	"testing"
)

func TestEncryptDecryptRoundTrip(t *testing.T) {
	svc, err := New("0123456789abcdef0123456789abcdef")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !svc.Configured() {
		t.Fatal("expected service to be configured")
	}

	plain := []byte("JBSWY3DPEHPK3PXP")
	sealed, err := svc.Encrypt(plain)
	if err != nil {
		t.Fatalf("encrypt failed: %v", err)
	}
	if bytes.Equal(sealed, plain) {
		t.Fatal("ciphertext equals plaintext")
	}

	opened, err := svc.Decrypt(sealed)
	if err != nil {
		t.Fatalf("decrypt failed: %v", err)
	}
	if !bytes.Equal(opened, plain) {
		t.Fatalf("round trip mismatch: got %q", opened)
	}
}

func TestUnconfiguredPassthrough(t *testing.T) {
	svc, err := New("")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if svc.Configured() {
		t.Fatal("expected unconfigured service")
	}
	out, err := svc.Encrypt([]byte("secret"))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if string(out) != "secret" {
		t.Fatalf("expected passthrough, got %q", out)
	}
}

func TestInvalidKeyLength(t *testing.T) {
	if _, err := New("short"); err == nil {
		t.Fatal("expected error for short key")
	}
}
