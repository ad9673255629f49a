package profiles

import (
	"testing"

	"github.com/david/govfeed/internal/models"
)

func TestMemoryStoreDefaultsUnknownUsers(t *testing.T) {
	store := NewMemoryStore()
	got := store.Get("nobody")
	if got.Keywords != DefaultProfile.Keywords {
		t.Fatalf("unknown user should get the default profile, got %q", got.Keywords)
	}
}

func TestMemoryStoreSetAndGet(t *testing.T) {
	store := NewMemoryStore()
	want := models.UserProfile{Keywords: "hypersonics, propulsion", Focus: "Hypersonic test services"}
	store.Set("u-1", want)

	got := store.Get("u-1")
	if got.Keywords != want.Keywords || got.Focus != want.Focus {
		t.Fatalf("stored profile mismatch: %+v", got)
	}

	// Other users are untouched.
	if store.Get("u-2").Keywords != DefaultProfile.Keywords {
		t.Fatal("profiles must be isolated per user")
	}
}

func TestMemoryStoreOverwrite(t *testing.T) {
	store := NewMemoryStore()
	store.Set("u-1", models.UserProfile{Keywords: "old"})
	store.Set("u-1", models.UserProfile{Keywords: "new"})
	if got := store.Get("u-1").Keywords; got != "new" {
		t.Fatalf("expected latest write, got %q", got)
	}
}
