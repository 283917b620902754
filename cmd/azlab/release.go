// Copyright 2026 Canonical Ltd.
// Licensed under the AGPLv3, see LICENCE file for details.

package main

import (
	"bufio"
	"fmt"
	"io"
	"strings"

	"github.com/juju/cmd/v4"
	"github.com/juju/errors"
	"github.com/juju/gnuflag"
)

var usageReleaseSummary = `
Releases the lab resource group and everything in it.`[1:]

var usageReleaseDetails = `
Release deletes the resource group the lab machines were provisioned
into, along with every resource it contains.

The resource group is taken from AZURE_RESOURCE_GROUP when set;
otherwise the first resource group in the subscription is released.

Deletion is requested and then carries on in the background; use --wait
to block until the resource group is gone.

Examples:
    azlab release
    azlab release --yes --wait

See also:
    launch
    status`

var releaseMsg = `
WARNING! This command will delete the resource group %q and everything in it.

Continue? (y/N):`[1:]

func newReleaseCommand() cmd.Command {
	return &releaseCommand{
		environCommandBase: environCommandBase{newEnviron: newAzureEnviron},
	}
}

type releaseCommand struct {
	environCommandBase

	assumeYes bool
	wait      bool
}

func (c *releaseCommand) Info() *cmd.Info {
	return &cmd.Info{
		Name:    "release",
		Purpose: usageReleaseSummary,
		Doc:     usageReleaseDetails,
	}
}

func (c *releaseCommand) SetFlags(f *gnuflag.FlagSet) {
	c.environCommandBase.SetFlags(f)
	f.BoolVar(&c.assumeYes, "y", false, "Do not prompt for confirmation")
	f.BoolVar(&c.assumeYes, "yes", false, "")
	f.BoolVar(&c.wait, "wait", false, "Wait until the resource group has been deleted")
}

func (c *releaseCommand) Run(ctxt *cmd.Context) error {
	env, err := c.newEnviron(ctxt)
	if err != nil {
		return errors.Trace(err)
	}
	group, err := env.ResolveResourceGroup(ctxt)
	if err != nil {
		return errors.Trace(err)
	}
	if !c.assumeYes {
		if err := confirmRelease(ctxt, group); err != nil {
			return err
		}
	}
	if err := env.Release(ctxt, group, c.wait); err != nil {
		return errors.Trace(err)
	}
	if c.wait {
		ctxt.Infof("Resource group %q deleted.", group)
	} else {
		ctxt.Infof("Deletion of resource group %q requested.", group)
	}
	return nil
}

// confirmRelease prompts the user before anything is deleted.
func confirmRelease(ctxt *cmd.Context, group string) error {
	fmt.Fprintf(ctxt.Stdout, releaseMsg, group)
	scanner := bufio.NewScanner(ctxt.Stdin)
	scanner.Scan()
	if err := scanner.Err(); err != nil && err != io.EOF {
		return errors.Annotate(err, "reading input")
	}
	answer := strings.ToLower(scanner.Text())
	if answer != "y" && answer != "yes" {
		return errors.New("resource group deletion aborted")
	}
	return nil
}
