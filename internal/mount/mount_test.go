package mount

import "testing"

func TestLookupCaseInsensitive(t *testing.T) {
	fs, err := Lookup("ExT4")
	if err != nil {
		t.Fatalf("Lookup: %v", err)
	}
	if fs.String() != "ext4" {
		t.Fatalf("got %s", fs.String())
	}
}

func TestLookupUnknown(t *testing.T) {
	if _, err := Lookup("zzzfs"); err == nil {
		t.Fatal("expected error")
	}
}

func TestAvailableMatchesRegistry(t *testing.T) {
	if len(Available()) != len(Registry) {
		t.Fatalf("length mismatch")
	}
}
