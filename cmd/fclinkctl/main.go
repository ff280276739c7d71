package main

//go-build: CGO_ENABLED=0

import (
	"github.com/espfly/fclink/pkg/cli/sh"
)

func main() {
	sh.Main()
}
