package main

import (
	"github.com/cephmedic/cephmedic/pkg/cli"
)

func main() {
	cli.Execute()
}
