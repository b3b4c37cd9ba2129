package main

import (
	"fmt"
	"os"
	"runtime/debug"

	"github.com/spynners/spynners/internal/cli"
)

func main() {
	if err := cli.Execute(appVersion()); err != nil {
		fmt.Fprintln(os.Stderr, "spynners:", err)
		os.Exit(1)
	}
}

func appVersion() string {
	bi, ok := debug.ReadBuildInfo()
	if !ok || bi.Main.Version == "" {
		return "unknown"
	}
	return bi.Main.Version
}
