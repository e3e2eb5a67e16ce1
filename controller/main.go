// The window-mod controller: lists top-level windows and mutates per-window
// state, most importantly the display affinity that hides a window from
// screen capture. Affinity changes happen inside the window's owning process
// via the payload DLL, driven by the injector package.
package main

import (
	"os"
	"path/filepath"

	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"github.com/ohto-ai/window-mod/logging"
)

var (
	verboseFlag     bool
	logFileFlag     string
	dbPathFlag      string
	noDBFlag        bool
	artifactDirFlag string
	autoUnloadFlag  bool
	autoUnloadSet   bool
)

func main() {
	rootCmd := &cobra.Command{
		Use:   "window-mod",
		Short: "Inspect and mutate top-level windows, including screen-capture exclusion",
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			autoUnloadSet = cmd.Flags().Changed("auto-unload")
			return logging.Setup(verboseFlag, logFileFlag)
		},
		SilenceUsage: true,
	}

	pf := rootCmd.PersistentFlags()
	pf.BoolVarP(&verboseFlag, "verbose", "v", false, "enable debug logging")
	pf.StringVar(&logFileFlag, "log-file", "", "mirror log output to this file")
	pf.StringVar(&dbPathFlag, "db", "", "state database path (default: window_mod.db beside the executable)")
	pf.BoolVar(&noDBFlag, "no-db", false, "disable the state database")
	pf.StringVar(&artifactDirFlag, "artifact-dir", "", "directory holding payload DLLs and launchers (default: beside the executable)")
	pf.BoolVar(&autoUnloadFlag, "auto-unload", false, "unload the payload right after applying an affinity")

	rootCmd.AddCommand(
		&cobra.Command{
			Use:   "list",
			Short: "List visible top-level windows",
			Args:  cobra.NoArgs,
			RunE:  func(cmd *cobra.Command, args []string) error { return runList() },
		},
		&cobra.Command{
			Use:   "exclude <target>",
			Short: "Hide a window from screen capture (WDA_EXCLUDEFROMCAPTURE)",
			Args:  cobra.MinimumNArgs(1),
			RunE:  func(cmd *cobra.Command, args []string) error { return runExclude(args) },
		},
		&cobra.Command{
			Use:   "include <target>",
			Short: "Make a window capturable again (WDA_NONE)",
			Args:  cobra.MinimumNArgs(1),
			RunE:  func(cmd *cobra.Command, args []string) error { return runInclude(args) },
		},
		&cobra.Command{
			Use:   "unload <target>",
			Short: "Remove the payload DLL from a window's process",
			Args:  cobra.MinimumNArgs(1),
			RunE:  func(cmd *cobra.Command, args []string) error { return runUnload(args) },
		},
		&cobra.Command{
			Use:   "topmost <target> on|off",
			Short: "Set or clear a window's always-on-top flag",
			Args:  cobra.MinimumNArgs(2),
			RunE:  func(cmd *cobra.Command, args []string) error { return runTopMost(args) },
		},
		&cobra.Command{
			Use:   "hide <target>",
			Short: "Hide a window from the screen",
			Args:  cobra.MinimumNArgs(1),
			RunE:  func(cmd *cobra.Command, args []string) error { return runHide(args) },
		},
		&cobra.Command{
			Use:   "show <target>",
			Short: "Reveal a window hidden with 'hide'",
			Args:  cobra.MinimumNArgs(1),
			RunE:  func(cmd *cobra.Command, args []string) error { return runShow(args) },
		},
		&cobra.Command{
			Use:   "restore [<target>|all]",
			Short: "Re-show windows recorded as hidden in the state database",
			RunE:  func(cmd *cobra.Command, args []string) error { return runRestore(args) },
		},
		&cobra.Command{
			Use:   "history",
			Short: "Show recent window operations",
			Args:  cobra.NoArgs,
			RunE:  func(cmd *cobra.Command, args []string) error { return runHistory() },
		},
		&cobra.Command{
			Use:   "shell",
			Short: "Start the interactive shell",
			Args:  cobra.NoArgs,
			RunE:  func(cmd *cobra.Command, args []string) error { return runShell() },
		},
	)

	if err := rootCmd.Execute(); err != nil {
		logrus.Error(err)
		os.Exit(1)
	}
}

// defaultDBPath resolves the state database location beside the executable,
// matching where the payload and launcher artifacts live.
func defaultDBPath() string {
	if dbPathFlag != "" {
		return dbPathFlag
	}
	exe, err := os.Executable()
	if err != nil {
		return "window_mod.db"
	}
	return filepath.Join(filepath.Dir(exe), "window_mod.db")
}
