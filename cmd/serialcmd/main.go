package main

import (
	"github.com/robotalks/serialcmd/pkg/cli/sh"
	"github.com/robotalks/serialcmd/pkg/env"
)

//go-build: CGO_ENABLED=0

func init() {
	env.SetupFlags()
}

func main() {
	sh.Main()
}
