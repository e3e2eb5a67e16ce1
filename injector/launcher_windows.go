//go:build windows

package injector

import (
	"context"
	"fmt"
	"os/exec"
	"strconv"
	"time"
)

// runLauncher delegates one injection (or unload) to the opposite-bitness
// launcher binary. The launcher's contract is narrow on purpose: argv in,
// exit code out. The parameter block is already published under its global
// name before the launcher starts, so the only state crossing the process
// boundary here is the pid and the payload path.
func runLauncher(launcherPath string, pid uint32, payloadPath string, unload bool, timeout time.Duration) error {
	ctx, cancel := context.WithTimeout(context.Background(), timeout)
	defer cancel()

	args := []string{strconv.FormatUint(uint64(pid), 10), payloadPath}
	if unload {
		args = append(args, "unload")
	}

	cmd := exec.CommandContext(ctx, launcherPath, args...)
	if err := cmd.Run(); err != nil {
		if ctx.Err() == context.DeadlineExceeded {
			return fmt.Errorf("launcher did not finish within %s", timeout)
		}
		if exitErr, ok := err.(*exec.ExitError); ok {
			return fmt.Errorf("launcher exited with code %d", exitErr.ExitCode())
		}
		return fmt.Errorf("spawn launcher: %w", err)
	}
	return nil
}
