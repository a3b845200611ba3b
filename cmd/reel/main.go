package main

import (
	"os"

	"github.com/roach88/reel/internal/cli"
)

func main() {
	os.Exit(cli.Execute())
}
