// Copyright 2026 Canonical Ltd.
// Licensed under the AGPLv3, see LICENCE file for details.

package main

import (
	"github.com/juju/cmd/v4"
	"github.com/juju/errors"
	"github.com/juju/gnuflag"
)

var usageStatusSummary = `
Shows the status of a lab machine.`[1:]

var usageStatusDetails = `
Status reports the provisioning state, power state and addresses of a
machine in the lab resource group. With no machine name, the most
recently launched machine is reported.

Examples:
    azlab status
    azlab status ArmVM-mygroup-1724580000
    azlab status --format json

See also:
    launch
    release`

func newStatusCommand() cmd.Command {
	return &statusCommand{
		environCommandBase: environCommandBase{newEnviron: newAzureEnviron},
	}
}

type statusCommand struct {
	environCommandBase

	out     cmd.Output
	machine string
}

func (c *statusCommand) Info() *cmd.Info {
	return &cmd.Info{
		Name:    "status",
		Args:    "[<machine name>]",
		Purpose: usageStatusSummary,
		Doc:     usageStatusDetails,
	}
}

func (c *statusCommand) SetFlags(f *gnuflag.FlagSet) {
	c.environCommandBase.SetFlags(f)
	c.out.AddFlags(f, "yaml", map[string]cmd.Formatter{
		"yaml": cmd.FormatYaml,
		"json": cmd.FormatJson,
	})
}

func (c *statusCommand) Init(args []string) error {
	if len(args) > 0 {
		c.machine, args = args[0], args[1:]
	}
	return cmd.CheckEmpty(args)
}

func (c *statusCommand) Run(ctxt *cmd.Context) error {
	env, err := c.newEnviron(ctxt)
	if err != nil {
		return errors.Trace(err)
	}
	group, err := env.ResolveResourceGroup(ctxt)
	if err != nil {
		return errors.Trace(err)
	}
	status, err := env.Instance(ctxt, group, c.machine)
	if err != nil {
		return errors.Trace(err)
	}
	return c.out.Write(ctxt, status)
}
