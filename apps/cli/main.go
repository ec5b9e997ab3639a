package main

import "github.com/sethetter/reqq/apps/cli/cmd"

// Set by -ldflags at build time.
var (
	version   = "dev"
	buildTime = "unknown"
)

func main() {
	cmd.Execute(version, buildTime)
}
