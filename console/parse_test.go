package console

import (
	"reflect"
	"strings"
	"testing"

	"github.com/ohto-ai/window-mod/winutil"
)

func TestSplitCommand(t *testing.T) {
	tests := []struct {
		input string
		want  []string
	}{
		{"list", []string{"list"}},
		{"exclude 0x1A2B", []string{"exclude", "0x1A2B"}},
		{`exclude "My Secret Notes"`, []string{"exclude", "My Secret Notes"}},
		{"  topmost   3   on ", []string{"topmost", "3", "on"}},
		{`hide "unterminated`, []string{"hide", `"unterminated`}}, // fallback split
		{"", nil},
	}
	for _, tt := range tests {
		got := SplitCommand(tt.input)
		if len(got) == 0 && len(tt.want) == 0 {
			continue
		}
		if !reflect.DeepEqual(got, tt.want) {
			t.Errorf("SplitCommand(%q) = %v, want %v", tt.input, got, tt.want)
		}
	}
}

func testWindows() []winutil.WindowInfo {
	return []winutil.WindowInfo{
		{Handle: 0x10, Title: "Untitled - Notepad", ProcessName: "notepad.exe", PID: 100},
		{Handle: 0x20, Title: "Password Vault", ProcessName: "vault.exe", PID: 200},
		{Handle: 0x30, Title: "Notepad++", ProcessName: "notepad++.exe", PID: 300},
	}
}

func TestResolveTargetByIndex(t *testing.T) {
	w, err := ResolveTarget(testWindows(), "2")
	if err != nil {
		t.Fatalf("ResolveTarget failed: %v", err)
	}
	if w.Title != "Password Vault" {
		t.Errorf("got %q, want Password Vault", w.Title)
	}

	for _, bad := range []string{"0", "4", "-1"} {
		if _, err := ResolveTarget(testWindows(), bad); err == nil {
			t.Errorf("index %q should be out of range", bad)
		}
	}
}

func TestResolveTargetByHandle(t *testing.T) {
	w, err := ResolveTarget(testWindows(), "0x20")
	if err != nil {
		t.Fatalf("ResolveTarget failed: %v", err)
	}
	if w.PID != 200 {
		t.Errorf("got pid %d, want 200", w.PID)
	}

	if _, err := ResolveTarget(testWindows(), "0x999"); err == nil {
		t.Error("unknown handle should fail")
	}
	if _, err := ResolveTarget(testWindows(), "0xZZ"); err == nil {
		t.Error("malformed handle should fail")
	}
}

func TestResolveTargetByTitle(t *testing.T) {
	w, err := ResolveTarget(testWindows(), "vault")
	if err != nil {
		t.Fatalf("ResolveTarget failed: %v", err)
	}
	if w.Handle != 0x20 {
		t.Errorf("got handle 0x%X, want 0x20", w.Handle)
	}

	_, err = ResolveTarget(testWindows(), "notepad")
	if err == nil || !strings.Contains(err.Error(), "ambiguous") {
		t.Errorf("expected ambiguity error, got %v", err)
	}

	if _, err := ResolveTarget(testWindows(), "no such thing"); err == nil {
		t.Error("unmatched substring should fail")
	}
}

func TestResolveTargetEmpty(t *testing.T) {
	if _, err := ResolveTarget(testWindows(), ""); err == nil {
		t.Error("empty target should fail")
	}
}
