//go:build !windows

package main

import "errors"

var errWindowsOnly = errors.New("window-mod manipulates Win32 windows and only runs on Windows")

func runList() error                 { return errWindowsOnly }
func runExclude(args []string) error { return errWindowsOnly }
func runInclude(args []string) error { return errWindowsOnly }
func runUnload(args []string) error  { return errWindowsOnly }
func runTopMost(args []string) error { return errWindowsOnly }
func runHide(args []string) error    { return errWindowsOnly }
func runShow(args []string) error    { return errWindowsOnly }
func runRestore(args []string) error { return errWindowsOnly }
func runHistory() error              { return errWindowsOnly }
func runShell() error                { return errWindowsOnly }
