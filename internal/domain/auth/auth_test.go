package auth

import "testing"

func TestIsPasswordHash(t *testing.T) {
	hashed, err := HashPassword("Welcome123!")
	if err != nil {
		t.Fatalf("HashPassword: %v", err)
	}
	if !IsPasswordHash(hashed) {
		t.Fatalf("expected %q to be recognised as a digest", hashed)
	}
	for _, plain := range []string{"", "Welcome123!", "password", "$notahash"} {
		if IsPasswordHash(plain) {
			t.Fatalf("plaintext %q misread as a digest", plain)
		}
	}
}
