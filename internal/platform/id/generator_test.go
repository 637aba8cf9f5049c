package id

import "testing"

func TestRandomGenerator_NewID(t *testing.T) {
	ids := NewRandomGenerator()
	tokens := NewTokenGenerator()

	first, err := ids.NewID()
	if err != nil {
		t.Fatalf("new id: %v", err)
	}
	second, err := ids.NewID()
	if err != nil {
		t.Fatalf("new id: %v", err)
	}
	if first == second {
		t.Fatalf("expected distinct ids, got %s twice", first)
	}
	if len(first) != 32 {
		t.Fatalf("expected 32 hex chars, got %d", len(first))
	}

	token, err := tokens.NewID()
	if err != nil {
		t.Fatalf("new token: %v", err)
	}
	if len(token) != 48 {
		t.Fatalf("expected 48 hex chars, got %d", len(token))
	}
}
