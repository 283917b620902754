// Copyright 2026 Canonical Ltd.
// Licensed under the AGPLv3, see LICENCE file for details.

package main

import (
	"fmt"
	"os"

	"github.com/juju/cmd/v4"

	"github.com/canonical/azlab/internal/osenv"
	"github.com/canonical/azlab/version"
)

var azlabDoc = `
azlab provisions disposable Azure virtual machines for lab and training
environments, along with the networking they depend on. Credentials for
the subscription's service principal are read from the environment; see
the README for the variables involved.
`

// Main registers subcommands for the azlab executable, and hands over
// control to the cmd package. This function is not redundant with main,
// because it provides an entry point for testing with arbitrary command
// line arguments.
func Main(args []string) int {
	ctx, err := cmd.DefaultContext()
	if err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		return 2
	}
	return cmd.Main(newAzlabCommand(), ctx, args[1:])
}

func newAzlabCommand() cmd.Command {
	azlab := cmd.NewSuperCommand(cmd.SuperCommandParams{
		Name: "azlab",
		Doc:  azlabDoc,
		Log: &cmd.Log{
			DefaultConfig: os.Getenv(osenv.LoggingConfigEnvKey),
		},
		Version: version.Current.String(),
	})
	azlab.Register(newLaunchCommand())
	azlab.Register(newReleaseCommand())
	azlab.Register(newStatusCommand())
	azlab.Register(newRegionsCommand())
	return azlab
}

func main() {
	os.Exit(Main(os.Args))
}
