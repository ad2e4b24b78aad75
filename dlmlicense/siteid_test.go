package dlmlicense

import (
	"testing"
)

func TestSiteID_Length(t *testing.T) {
	t.Setenv("DLM_SITE_ID", "")

	id, err := SiteID("https://example.com")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(id) != 16 {
		t.Errorf("expected 16 char hex string, got %d chars: %s", len(id), id)
	}
}

func TestSiteID_Normalized(t *testing.T) {
	t.Setenv("DLM_SITE_ID", "")

	variants := []string{
		"https://example.com",
		"http://example.com/",
		"https://www.example.com",
		"EXAMPLE.com",
	}
	want, err := SiteID(variants[0])
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	for _, v := range variants[1:] {
		got, err := SiteID(v)
		if err != nil {
			t.Fatalf("SiteID(%q): %v", v, err)
		}
		if got != want {
			t.Errorf("SiteID(%q) = %s, want %s", v, got, want)
		}
	}

	other, _ := SiteID("https://example.com/blog")
	if other == want {
		t.Error("sub-path installs should have their own site id")
	}
}

func TestSiteID_EnvOverride(t *testing.T) {
	const custom = "site-from-env"
	t.Setenv("DLM_SITE_ID", custom)

	id, err := SiteID("https://example.com")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if id != custom {
		t.Errorf("expected %q, got %q", custom, id)
	}
}

func TestSiteID_Invalid(t *testing.T) {
	t.Setenv("DLM_SITE_ID", "")

	for _, in := range []string{"", "   ", "https://"} {
		if _, err := SiteID(in); err == nil {
			t.Errorf("SiteID(%q) expected error", in)
		}
	}
}

func TestSiteHostname(t *testing.T) {
	tests := map[string]string{
		"https://App.Local:8443/wp": "app.local:8443",
		"example.com":               "example.com",
		"":                          "",
	}
	for in, want := range tests {
		if got := SiteHostname(in); got != want {
			t.Errorf("SiteHostname(%q) = %q, want %q", in, got, want)
		}
	}
}
