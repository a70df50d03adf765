package locations

import (
	"errors"
	"strings"
	"testing"

	derr "github.com/voyago/tripmatch/internal/domain/errors"
)

func TestResolve_CaseInsensitiveExactMatch(t *testing.T) {
	d, err := Open()
	if err != nil {
		t.Fatalf("open directory: %v", err)
	}

	for _, name := range []string{"Rome", "rome", "ROME", "  rome  "} {
		hub, err := d.Resolve(name)
		if err != nil {
			t.Fatalf("resolve %q: %v", name, err)
		}
		if hub != "FCO" {
			t.Fatalf("resolve %q: expected FCO, got %s", name, hub)
		}
	}
}

func TestResolve_UnknownNameCarriesOffendingName(t *testing.T) {
	d, err := Open()
	if err != nil {
		t.Fatalf("open directory: %v", err)
	}

	_, err = d.Resolve("Turin")
	if !errors.Is(err, derr.ErrLocationNotFound) {
		t.Fatalf("expected ErrLocationNotFound, got %v", err)
	}
	if !strings.Contains(err.Error(), "Turin") {
		t.Fatalf("expected error to reference the offending name, got %q", err.Error())
	}
}

func TestDisplayName_ReverseLookup(t *testing.T) {
	d, err := Open()
	if err != nil {
		t.Fatalf("open directory: %v", err)
	}

	name, ok := d.DisplayName("fco")
	if !ok || name != "Rome" {
		t.Fatalf("expected Rome for FCO, got %q (ok=%v)", name, ok)
	}

	if _, ok := d.DisplayName("XXX"); ok {
		t.Fatal("expected no display name for unknown hub code")
	}
}

func TestTags_KnownHub(t *testing.T) {
	d, err := Open()
	if err != nil {
		t.Fatalf("open directory: %v", err)
	}

	tags := d.Tags("LIS")
	if len(tags) == 0 {
		t.Fatal("expected tags for LIS")
	}
	found := false
	for _, tag := range tags {
		if tag == "mood:relaxed" {
			found = true
		}
	}
	if !found {
		t.Fatalf("expected mood:relaxed among LIS tags, got %v", tags)
	}

	if tags := d.Tags("XXX"); tags != nil {
		t.Fatalf("expected nil tags for unknown hub, got %v", tags)
	}
}

func TestOpen_ReturnsSameDirectory(t *testing.T) {
	first, err := Open()
	if err != nil {
		t.Fatalf("open directory: %v", err)
	}
	second, err := Open()
	if err != nil {
		t.Fatalf("open directory again: %v", err)
	}
	if first != second {
		t.Fatal("expected Open to reuse the parsed directory")
	}
}
