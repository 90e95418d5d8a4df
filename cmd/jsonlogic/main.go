// Command jsonlogic compiles query manifests into typed JSON Logic filter
// inputs and translates filter payloads into SQL.
package main

import (
	"os"

	"github.com/roach88/jsonlogic/internal/cli"
)

func main() {
	err := cli.NewRootCommand().Execute()
	os.Exit(cli.GetExitCode(err))
}
