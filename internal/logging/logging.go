// Package logging configures the apex/log handler shared by the binaries.
package logging

import (
	"io"

	"github.com/apex/log"
	"github.com/apex/log/handlers/cli"
)

// Setup installs a CLI handler writing to w as the package-level logger and
// returns it. Debug entries are only emitted when verbose is set.
func Setup(w io.Writer, verbose bool) log.Interface {
	log.SetHandler(cli.New(w))
	log.SetLevel(Level(verbose))
	return log.Log
}

func Level(verbose bool) log.Level {
	if verbose {
		return log.DebugLevel
	}
	return log.InfoLevel
}
