// # cmd/depscan/main.go
package main

import (
	"depscan/internal/ui/cli"
	"os"
)

func main() {
	os.Exit(cli.Run(os.Args[1:]))
}
