// internal/vault/vault_test.go
//
// Run: go test ./internal/vault -v

package vault

import (
	"context"
	"testing"
)

func TestResolvePassesPlainValuesThrough(t *testing.T) {
	got, err := Resolve(context.Background(), nil, "plain-password")
	if err != nil {
		t.Fatalf("Resolve error: %v", err)
	}
	if got != "plain-password" {
		t.Fatalf("got %q", got)
	}
}

func TestResolveRejectsURIWithoutClient(t *testing.T) {
	if _, err := Resolve(context.Background(), nil, "vault:secret/db#password"); err == nil {
		t.Fatalf("expected error for vault URI with nil client")
	}
}

func TestResolveRejectsMalformedURI(t *testing.T) {
	c := &Client{}
	if _, err := Resolve(context.Background(), c, "vault:secret/db-no-key"); err == nil {
		t.Fatalf("expected error for reference without #key")
	}
}
