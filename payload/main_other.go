//go:build !windows

package main

import (
	"fmt"
	"os"
)

func main() {
	fmt.Fprintln(os.Stderr, "the payload DLL only targets Windows")
	os.Exit(1)
}
