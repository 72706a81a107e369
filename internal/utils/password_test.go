package utils

import "testing"

func TestHashAndVerify(t *testing.T) {
	cases := []string{"correct horse battery staple", "", "pässwörd–日本語", "short"}
	for _, plain := range cases {
		hash, err := HashPassword(plain, 4)
		if err != nil {
			t.Fatalf("hash %q: %v", plain, err)
		}
		if !VerifyPassword(hash, plain) {
			t.Errorf("verify failed for %q", plain)
		}
		if VerifyPassword(hash, plain+"x") {
			t.Errorf("verify accepted wrong password for %q", plain)
		}
	}
}

func TestHashIsSalted(t *testing.T) {
	a, err := HashPassword("same input", 4)
	if err != nil {
		t.Fatal(err)
	}
	b, err := HashPassword("same input", 4)
	if err != nil {
		t.Fatal(err)
	}
	if a == b {
		t.Error("two hashes of the same plaintext are identical; salt missing")
	}
}

func TestVerifyMalformedDigest(t *testing.T) {
	for _, digest := range []string{"", "not-a-bcrypt-hash", "$2a$xx$garbage"} {
		if VerifyPassword(digest, "anything") {
			t.Errorf("verify accepted malformed digest %q", digest)
		}
	}
}

func TestHashCostOutOfRangeFallsBack(t *testing.T) {
	hash, err := HashPassword("pw", 99)
	if err != nil {
		t.Fatalf("expected fallback to default cost, got %v", err)
	}
	if !VerifyPassword(hash, "pw") {
		t.Error("fallback hash does not verify")
	}
}
