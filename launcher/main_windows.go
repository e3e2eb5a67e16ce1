//go:build windows

// The cross-bitness launcher. When the controller's bitness differs from the
// target's, the controller cannot start a remote thread on the target's
// LoadLibraryW, so it spawns this binary (built for the target's bitness) to
// do the injection instead. The interface is deliberately narrow: argv in,
// exit code out; the parameter block is already published under its global
// name by the controller before this process starts.
//
// Usage: wda_launcher_<bits>.exe <pid> <payload_path> [unload]
package main

import (
	"fmt"
	"os"
	"strconv"

	"github.com/ohto-ai/window-mod/injector"
)

func main() {
	if err := run(os.Args[1:]); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func run(args []string) error {
	if len(args) < 2 || len(args) > 3 {
		return fmt.Errorf("usage: %s <pid> <payload_path> [unload]", os.Args[0])
	}
	pid64, err := strconv.ParseUint(args[0], 10, 32)
	if err != nil {
		return fmt.Errorf("bad pid %q", args[0])
	}
	pid := uint32(pid64)
	payloadPath := args[1]

	unload := false
	if len(args) == 3 {
		if args[2] != "unload" {
			return fmt.Errorf("unknown mode %q", args[2])
		}
		unload = true
	}

	if unload {
		return injector.EnsureUnloaded(pid, injector.DefaultThreadWait)
	}

	if _, err := os.Stat(payloadPath); err != nil {
		return fmt.Errorf("payload %s: %w", payloadPath, err)
	}
	return injector.InjectIntoProcess(pid, payloadPath, injector.DefaultThreadWait)
}
