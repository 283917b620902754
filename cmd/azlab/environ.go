// Copyright 2026 Canonical Ltd.
// Licensed under the AGPLv3, see LICENCE file for details.

package main

import (
	"context"

	"github.com/juju/cmd/v4"
	"github.com/juju/errors"
	"github.com/juju/loggo/v2"

	"github.com/canonical/azlab/internal/osenv"
	"github.com/canonical/azlab/internal/provider/azure"
)

var logger = loggo.GetLogger("azlab.cmd")

// AzureEnviron is the surface of *azure.Environ the commands use.
// Commands depend on this interface so tests can substitute a fake.
type AzureEnviron interface {
	Location() string
	Launch(ctx context.Context, args azure.LaunchParams) (*azure.LaunchResult, error)
	Release(ctx context.Context, group string, wait bool) error
	Instance(ctx context.Context, group, name string) (*azure.InstanceStatus, error)
	Locations(ctx context.Context) ([]azure.Location, error)
	ResolveResourceGroup(ctx context.Context) (string, error)
}

type newEnvironFunc func(ctx context.Context) (AzureEnviron, error)

// newAzureEnviron reads the subscription, credential and location from
// the environment and opens an environ on them.
func newAzureEnviron(ctx context.Context) (AzureEnviron, error) {
	subscriptionID, err := osenv.SubscriptionID()
	if err != nil {
		return nil, errors.Trace(err)
	}
	credential, err := osenv.ReadCredential()
	if err != nil {
		return nil, errors.Trace(err)
	}
	env, err := azure.NewEnviron(ctx, azure.CloudSpec{
		SubscriptionID: subscriptionID,
		TenantID:       credential.TenantID,
		AppID:          credential.AppID,
		AppPassword:    credential.AppPassword,
		Location:       osenv.Location(),
		ResourceGroup:  osenv.ResourceGroup(),
	}, azure.NewProviderConfig())
	if err != nil {
		return nil, errors.Trace(err)
	}
	return env, nil
}

// environCommandBase is embedded by the commands that operate on an
// Azure environ.
type environCommandBase struct {
	cmd.CommandBase
	newEnviron newEnvironFunc
}
