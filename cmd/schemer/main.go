package main

import (
	"context"
	"os"

	"github.com/schemerhq/schemer/pkg/cmd"
)

// NB: These are set by GoReleaser during a build.
var (
	version string
	commit  string
	date    string
)

func main() {
	os.Exit(cmd.Run(context.Background(), &cmd.Version{
		Version:   version,
		Commit:    commit,
		Timestamp: date,
	}, os.Args))
}
