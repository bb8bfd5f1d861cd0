package auth

import (
	"context"
	"testing"
)

func TestClaimsContext_RoundTrip(t *testing.T) {
	if _, ok := ClaimsFromContext(context.Background()); ok {
		t.Fatal("empty context must not carry claims")
	}

	c := &Claims{UniqueName: "chef1"}
	got, ok := ClaimsFromContext(NewContext(context.Background(), c))
	if !ok || got != c {
		t.Fatalf("claims not propagated: %v %v", got, ok)
	}

	if _, ok := ClaimsFromContext(NewContext(context.Background(), nil)); ok {
		t.Fatal("nil claims must read as absent")
	}
}
