package main

import (
	"os"

	"github.com/swarmload/swarm/internal/cli"
)

func main() {
	os.Exit(cli.Execute())
}
