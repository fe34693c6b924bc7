package main

import (
	"github.com/deploywatch/deploywatch/cmd"
)

// Version is the current version of deploywatch
// It is set at build time by using -ldflags "-X main.version=x.x.x"
var version string

func main() {
	cmd.Execute(version)
}
