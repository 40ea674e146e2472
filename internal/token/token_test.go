// internal/token/token_test.go
//
// Run: go test ./internal/token -v

package token

import (
	"strings"
	"testing"
)

func TestNewTokensAreURLSafeAndDistinct(t *testing.T) {
	src := CryptoSource{}
	seen := make(map[string]bool)
	for i := 0; i < 100; i++ {
		tok := src.New()
		if len(tok) != 43 {
			t.Fatalf("token length %d, want 43", len(tok))
		}
		if strings.ContainsAny(tok, "+/=") {
			t.Fatalf("token %q not URL-safe", tok)
		}
		if seen[tok] {
			t.Fatalf("duplicate token %q", tok)
		}
		seen[tok] = true
	}
}
