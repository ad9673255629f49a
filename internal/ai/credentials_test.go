package ai

import "testing"

func TestCredentialsSetAndGet(t *testing.T) {
	creds := NewCredentials("sk-initial")
	if creds.Get() != "sk-initial" {
		t.Fatalf("expected initial key, got %q", creds.Get())
	}

	creds.Set("sk-override")
	if creds.Get() != "sk-override" {
		t.Fatalf("expected override key, got %q", creds.Get())
	}
}

func TestCredentialsIgnoresEmptySet(t *testing.T) {
	creds := NewCredentials("sk-working")
	creds.Set("")
	if creds.Get() != "sk-working" {
		t.Fatal("blank override must not clobber a working key")
	}
}

func TestCredentialsInvalidate(t *testing.T) {
	creds := NewCredentials("sk-bad")
	creds.Invalidate()
	if creds.Get() != "" {
		t.Fatal("invalidate should clear the key")
	}

	creds.Set("sk-new")
	if creds.Get() != "sk-new" {
		t.Fatal("a new key should be accepted after invalidation")
	}
}
