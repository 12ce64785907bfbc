package version

import "testing"

func TestString(t *testing.T) {
	origV, origSHA, origTime := Version, GitSHA, BuildTime
	defer func() { Version, GitSHA, BuildTime = origV, origSHA, origTime }()

	Version, GitSHA, BuildTime = "1.2.0", "abc123", "2026-10-14"
	if got, want := String(), "irr 1.2.0 (abc123, built 2026-10-14)"; got != want {
		t.Errorf("String() = %q, want %q", got, want)
	}
}
