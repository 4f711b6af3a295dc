package machine

import "testing"

func TestHashStringIsDeterministic(t *testing.T) {
	if hashString("foo") != hashString("foo") {
		t.Fatal("hashString must be deterministic for identical inputs")
	}
}

func TestHashStringDiffersForDifferentInputs(t *testing.T) {
	// Not a guarantee of FNV-1a, but a collision between these two short,
	// distinct strings would be surprising enough to investigate.
	if hashString("foo") == hashString("bar") {
		t.Fatal("hashString collided for distinct short inputs")
	}
}

func TestObjStringAccessors(t *testing.T) {
	s := &ObjString{chars: "hello", hash: hashString("hello")}
	if s.String() != "hello" {
		t.Fatalf("String() = %q, want %q", s.String(), "hello")
	}
	if s.Type() != "string" {
		t.Fatalf("Type() = %q, want %q", s.Type(), "string")
	}
	if s.Len() != 5 {
		t.Fatalf("Len() = %d, want 5", s.Len())
	}
	if s.objType() != objString {
		t.Fatalf("objType() = %v, want %v", s.objType(), objString)
	}
}
