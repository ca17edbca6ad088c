// Package main provides the tripgrid CLI: a trip planner whose edits land in
// a local SQLite cache and replicate to a sync server.
package main

import (
	"os"

	"github.com/mesh-intelligence/tripgrid/internal/logging"
)

// version is overwritten at build time with -ldflags "-X main.version=...".
var version = "dev"

func main() {
	code := execute(newRootCmd(), os.Args[1:])
	logging.Sync()
	os.Exit(code)
}
