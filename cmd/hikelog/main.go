// Command hikelog keeps a personal log of hikes and trail observations.
//
// The main package stays minimal: every command, flag and exit code lives in
// internal/cli so it can be tested without building a binary.
package main

import (
	"context"
	"os"

	"github.com/sakif/hikelog/internal/cli"
)

func main() {
	os.Exit(cli.Execute(context.Background(), os.Args[1:], os.Stdin, os.Stdout, os.Stderr))
}
