package security

import (
	"strings"
	"testing"
)

func TestHashAndVerifyPassword(t *testing.T) {
	hash, err := HashPassword("correct horse battery staple")
	if err != nil {
		t.Fatalf("HashPassword returned error: %v", err)
	}
	if !strings.HasPrefix(hash, "argon2id$v=19$") {
		t.Fatalf("unexpected hash format: %s", hash)
	}

	ok, err := VerifyPassword("correct horse battery staple", hash)
	if err != nil {
		t.Fatalf("VerifyPassword returned error: %v", err)
	}
	if !ok {
		t.Fatal("expected matching password to verify")
	}

	ok, err = VerifyPassword("wrong password", hash)
	if err != nil {
		t.Fatalf("VerifyPassword returned error: %v", err)
	}
	if ok {
		t.Fatal("expected mismatching password to fail")
	}
}

func TestVerifyPasswordRejectsMalformedHash(t *testing.T) {
	if _, err := VerifyPassword("anything", "argon2id$v=19$broken"); err == nil {
		t.Fatal("expected error for malformed hash")
	}
}

func TestNeedsRehash(t *testing.T) {
	hash, err := HashPassword("some password")
	if err != nil {
		t.Fatalf("HashPassword returned error: %v", err)
	}
	if NeedsRehash(hash) {
		t.Fatal("hash produced with active parameters must not need rehash")
	}

	// Legacy colon-separated hashes always need an upgrade.
	if !NeedsRehash("c2FsdA==:aGFzaA==") {
		t.Fatal("legacy format must need rehash")
	}

	if !NeedsRehash("not a hash at all") {
		t.Fatal("garbage must need rehash")
	}

	weak := "argon2id$v=19$m=8192,t=1,p=1$" + strings.SplitN(hash, "$", 5)[3] + "$" + strings.SplitN(hash, "$", 5)[4]
	if !NeedsRehash(weak) {
		t.Fatal("hash with weaker parameters must need rehash")
	}
}

func TestConfigureArgon2RejectsWeakParameters(t *testing.T) {
	if err := ConfigureArgon2(Argon2Config{Memory: 1024, Iterations: 1, Parallelism: 1, SaltLength: 16, KeyLength: 32}); err == nil {
		t.Fatal("expected error for too little memory")
	}
	if err := ConfigureArgon2(Argon2Config{Memory: 64 * 1024, Iterations: 0, Parallelism: 1, SaltLength: 16, KeyLength: 32}); err == nil {
		t.Fatal("expected error for zero iterations")
	}
}
