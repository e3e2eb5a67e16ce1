// Package console implements the interactive shell: a liner-driven REPL over
// the same operations the one-shot CLI commands expose, with tab completion
// and table rendering of the window list.
package console

import (
	"fmt"
	"strconv"
	"strings"

	shellquote "github.com/kballard/go-shellquote"

	"github.com/ohto-ai/window-mod/winutil"
)

// SplitCommand tokenises one input line. Quoted window titles survive as
// single tokens; on malformed quoting it falls back to whitespace splitting
// rather than rejecting the line.
func SplitCommand(input string) []string {
	parts, err := shellquote.Split(input)
	if err != nil {
		parts = strings.Fields(input)
	}
	out := parts[:0]
	for _, p := range parts {
		if p != "" {
			out = append(out, p)
		}
	}
	return out
}

// ResolveTarget picks one window out of list by a target expression:
// a 1-based index into the most recent listing, a 0x-prefixed window handle,
// or a case-insensitive title substring. A substring matching more than one
// window is rejected so the operator never mutates the wrong window.
func ResolveTarget(list []winutil.WindowInfo, target string) (winutil.WindowInfo, error) {
	if target == "" {
		return winutil.WindowInfo{}, fmt.Errorf("missing target (index, 0xHANDLE or title substring)")
	}

	if strings.HasPrefix(strings.ToLower(target), "0x") {
		handle, err := strconv.ParseUint(target[2:], 16, 64)
		if err != nil {
			return winutil.WindowInfo{}, fmt.Errorf("bad window handle %q", target)
		}
		for _, w := range list {
			if w.Handle == uintptr(handle) {
				return w, nil
			}
		}
		return winutil.WindowInfo{}, fmt.Errorf("no listed window with handle %s", target)
	}

	if idx, err := strconv.Atoi(target); err == nil {
		if idx < 1 || idx > len(list) {
			return winutil.WindowInfo{}, fmt.Errorf("index %d out of range (1-%d)", idx, len(list))
		}
		return list[idx-1], nil
	}

	var matches []winutil.WindowInfo
	needle := strings.ToLower(target)
	for _, w := range list {
		if strings.Contains(strings.ToLower(w.Title), needle) {
			matches = append(matches, w)
		}
	}
	switch len(matches) {
	case 0:
		return winutil.WindowInfo{}, fmt.Errorf("no window title contains %q", target)
	case 1:
		return matches[0], nil
	default:
		titles := make([]string, len(matches))
		for i, m := range matches {
			titles[i] = fmt.Sprintf("%q", m.Title)
		}
		return winutil.WindowInfo{}, fmt.Errorf("%q is ambiguous: matches %s",
			target, strings.Join(titles, ", "))
	}
}
