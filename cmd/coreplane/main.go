package main

import (
	"github.com/coreplane-io/coreplane/cmd"
)

// version is overridden at build time:
//
//	go build -ldflags "-X main.version=v1.2.3" ./cmd/coreplane
var version = "dev"

func main() {
	cmd.SetVersion(version)
	cmd.Execute()
}
