package injector

import (
	"errors"
	"fmt"
	"strings"
	"testing"
)

func TestErrorKindMatching(t *testing.T) {
	cause := fmt.Errorf("open pid 42: access is denied")
	err := wrap(KindAccessDenied, "apply affinity", cause)

	if !errors.Is(err, &Error{Kind: KindAccessDenied}) {
		t.Error("errors.Is should match on kind alone")
	}
	if errors.Is(err, &Error{Kind: KindLoadFailed}) {
		t.Error("errors.Is must not match a different kind")
	}
	if !errors.Is(err, cause) {
		t.Error("wrapped cause should survive unwrapping")
	}
}

func TestKindOf(t *testing.T) {
	err := wrap(KindArchitectureMismatch, "apply affinity", nil)
	if got := KindOf(err); got != KindArchitectureMismatch {
		t.Errorf("KindOf = %v, want architecture mismatch", got)
	}

	wrapped := fmt.Errorf("outer: %w", err)
	if got := KindOf(wrapped); got != KindArchitectureMismatch {
		t.Errorf("KindOf through wrapping = %v, want architecture mismatch", got)
	}

	if got := KindOf(errors.New("plain")); got != KindUnknown {
		t.Errorf("KindOf(plain error) = %v, want unknown", got)
	}
	if got := KindOf(nil); got != KindUnknown {
		t.Errorf("KindOf(nil) = %v, want unknown", got)
	}
}

func TestErrorStringIncludesOpAndKind(t *testing.T) {
	err := wrap(KindArtifactMissing, "resolve payload", errors.New("no such file"))
	msg := err.Error()
	for _, want := range []string{"resolve payload", "artifact missing", "no such file"} {
		if !strings.Contains(msg, want) {
			t.Errorf("error %q should contain %q", msg, want)
		}
	}
}

func TestHints(t *testing.T) {
	if KindAccessDenied.Hint() == "" {
		t.Error("access denied should carry an operator hint")
	}
	if KindLoadFailed.Hint() != "" {
		t.Error("load failed has no actionable hint")
	}
}
