package main

import (
	"os"

	"github.com/jakoblorz/create-stack/internal/cli"
)

func main() {
	os.Exit(cli.Execute())
}
