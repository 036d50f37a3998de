package errdef

import (
	"errors"
	"fmt"
	"io/fs"
	"testing"
)

func TestWrapNilReturnsNil(t *testing.T) {
	if err := Wrap(CodePlan, nil, "resolve"); err != nil {
		t.Fatalf("expected nil, got %v", err)
	}
}

func TestWrapFormatsAndUnwraps(t *testing.T) {
	err := Wrap(CodeFilesystem, fs.ErrExist, "write %s", "app/index.html")
	if got, want := err.Error(), "filesystem: write app/index.html: file already exists"; got != want {
		t.Fatalf("Error() = %q, want %q", got, want)
	}
	if !errors.Is(err, fs.ErrExist) {
		t.Fatalf("expected wrapped fs.ErrExist")
	}
	if CodeOf(err) != CodeFilesystem {
		t.Fatalf("CodeOf = %s", CodeOf(err))
	}
}

func TestIsWalksNestedCodes(t *testing.T) {
	inner := New(CodeTemplate, "bad js")
	outer := Wrap(CodeFilesystem, fmt.Errorf("render: %w", inner), "execute")
	if !Is(outer, CodeFilesystem) {
		t.Fatalf("expected outer code match")
	}
	if !Is(outer, CodeTemplate) {
		t.Fatalf("expected nested template code match")
	}
	if Is(outer, CodePublish) {
		t.Fatalf("unexpected publish match")
	}
	if Is(nil, CodePlan) {
		t.Fatalf("nil error must not match")
	}
}

func TestEmptyCodeDefaultsToUnknown(t *testing.T) {
	err := New("", "oops %d", 1)
	if CodeOf(err) != CodeUnknown {
		t.Fatalf("expected unknown code, got %s", CodeOf(err))
	}
	if err.Error() != "unknown: oops 1" {
		t.Fatalf("unexpected message %q", err.Error())
	}
}
