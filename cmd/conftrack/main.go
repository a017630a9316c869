// Command conftrack runs the conference site and its admin tooling.
package main

import (
	"context"
	"os"

	"github.com/sakif/conftrack/internal/cli"
)

func main() {
	os.Exit(cli.Execute(context.Background()))
}
