package version

import (
	"runtime"
	"strings"
	"testing"
)

func TestResolvePrefersLdflags(t *testing.T) {
	oldVersion, oldCommit := Version, Commit
	t.Cleanup(func() { Version, Commit = oldVersion, oldCommit })

	Version = "v1.2.3"
	Commit = "0123456789abcdef0123"

	info := Resolve()
	if info.Version != "v1.2.3" || info.Commit != Commit {
		t.Fatalf("got %+v", info)
	}
	if info.GoVersion != runtime.Version() {
		t.Fatalf("go version: got %q want %q", info.GoVersion, runtime.Version())
	}
	if got, want := String(), "v1.2.3 (0123456789ab)"; got != want {
		t.Fatalf("String: got %q want %q", got, want)
	}
}

func TestResolveFallsBack(t *testing.T) {
	oldVersion := Version
	t.Cleanup(func() { Version = oldVersion })
	Version = ""

	if info := Resolve(); info.Version == "" {
		t.Fatal("expected a non-empty version")
	}
	if s := String(); s == "" || strings.HasPrefix(s, " ") {
		t.Fatalf("unexpected String %q", s)
	}
}

func TestShortCommit(t *testing.T) {
	t.Parallel()
	if got := shortCommit("abc"); got != "abc" {
		t.Fatalf("got %q want abc", got)
	}
	if got := shortCommit("0123456789abcdef"); got != "0123456789ab" {
		t.Fatalf("got %q want 0123456789ab", got)
	}
}
