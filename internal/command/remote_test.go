package command

import "testing"

func TestShellLineWithoutDir(t *testing.T) {
	got := shellLine("", "echo", "hi there", "two")
	want := `echo "hi there" "two"`
	if got != want {
		t.Fatalf("shellLine() = %q, want %q", got, want)
	}
}

func TestShellLineWithDir(t *testing.T) {
	got := shellLine("/tmp/scratch", "make")
	want := `cd "/tmp/scratch" && make`
	if got != want {
		t.Fatalf("shellLine() = %q, want %q", got, want)
	}
}

func TestShellLineQuotesEachArgIndependently(t *testing.T) {
	got := shellLine("", "test.bin", "--flag=1", "arg with spaces")
	want := `test.bin "--flag=1" "arg with spaces"`
	if got != want {
		t.Fatalf("shellLine() = %q, want %q", got, want)
	}
}
