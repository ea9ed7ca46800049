package util

import (
	"strings"
	"testing"
)

func TestRedactPII(t *testing.T) {
	in := `upstream said: api_key=sk-abcdef123456 contact ops@example.com Authorization: Bearer abc.def-12345678`
	out := RedactPII(in)
	for _, leaked := range []string{"sk-abcdef123456", "ops@example.com", "abc.def-12345678"} {
		if strings.Contains(out, leaked) {
			t.Fatalf("expected %q to be redacted: %s", leaked, out)
		}
	}
	if !strings.Contains(out, "key=[redacted]") {
		t.Fatalf("expected key marker in %s", out)
	}
}
