// Copyright 2026 Canonical Ltd.
// Licensed under the AGPLv3, see LICENCE file for details.

package main

import (
	"github.com/juju/cmd/v4"
	"github.com/juju/errors"
	"github.com/juju/gnuflag"
)

var usageRegionsSummary = `
Lists the Azure locations available to the subscription.`[1:]

var usageRegionsDetails = `
Regions lists the locations the subscription may provision machines
into, sorted by name. Set AZURE_LOCATION to one of them to control
where launch places new machines.

Examples:
    azlab regions
    azlab regions --format json

See also:
    launch`

func newRegionsCommand() cmd.Command {
	return &regionsCommand{
		environCommandBase: environCommandBase{newEnviron: newAzureEnviron},
	}
}

type regionsCommand struct {
	environCommandBase

	out cmd.Output
}

func (c *regionsCommand) Info() *cmd.Info {
	return &cmd.Info{
		Name:    "regions",
		Purpose: usageRegionsSummary,
		Doc:     usageRegionsDetails,
	}
}

func (c *regionsCommand) SetFlags(f *gnuflag.FlagSet) {
	c.environCommandBase.SetFlags(f)
	c.out.AddFlags(f, "yaml", map[string]cmd.Formatter{
		"yaml": cmd.FormatYaml,
		"json": cmd.FormatJson,
	})
}

func (c *regionsCommand) Run(ctxt *cmd.Context) error {
	env, err := c.newEnviron(ctxt)
	if err != nil {
		return errors.Trace(err)
	}
	locations, err := env.Locations(ctxt)
	if err != nil {
		return errors.Trace(err)
	}
	return c.out.Write(ctxt, locations)
}
