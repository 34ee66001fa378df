package main

import (
	"os"

	"github.com/sadopc/timer/internal/cli"
)

func main() {
	os.Exit(cli.New().Run(os.Args[1:]))
}
