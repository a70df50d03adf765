package tracing

import (
	"strings"
	"testing"
)

func TestCollectorEndpoint(t *testing.T) {
	cases := []struct {
		in   string
		want string
	}{
		{"", "http://localhost:14268/api/traces"},
		{"jaeger", "http://jaeger/api/traces"},
		{"jaeger:14268", "http://jaeger:14268/api/traces"},
		{"http://jaeger:14268", "http://jaeger:14268/api/traces"},
		{"http://jaeger:14268/", "http://jaeger:14268/api/traces"},
		{"http://jaeger:14268/api/traces", "http://jaeger:14268/api/traces"},
	}

	for _, tc := range cases {
		if got := collectorEndpoint(tc.in); got != tc.want {
			t.Errorf("collectorEndpoint(%q) = %q, want %q", tc.in, got, tc.want)
		}
	}
}

func TestSamplerFor(t *testing.T) {
	if desc := samplerFor("local").Description(); desc != "AlwaysOnSampler" {
		t.Fatalf("local env: expected full sampling, got %s", desc)
	}

	desc := samplerFor("prod").Description()
	if !strings.Contains(desc, "ParentBased") {
		t.Fatalf("prod env: expected parent-based sampling, got %s", desc)
	}
}
