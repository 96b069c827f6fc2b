package main

import (
	"os"

	"github.com/dmitrijs2005/jasmify/internal/cli"
)

func main() {
	os.Exit(cli.Execute(os.Args[1:]))
}
