// Copyright 2026 Canonical Ltd.
// Licensed under the AGPLv3, see LICENCE file for details.

package azure

import (
	"context"
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/Azure/azure-sdk-for-go/sdk/azcore"
	"github.com/Azure/azure-sdk-for-go/sdk/azcore/arm"
	"github.com/Azure/azure-sdk-for-go/sdk/azcore/to"
	"github.com/Azure/azure-sdk-for-go/sdk/resourcemanager/compute/armcompute/v2"
	"github.com/Azure/azure-sdk-for-go/sdk/resourcemanager/network/armnetwork"
	"github.com/Azure/azure-sdk-for-go/sdk/resourcemanager/resources/armresources"
	"github.com/Azure/azure-sdk-for-go/sdk/resourcemanager/resources/armsubscriptions"
	"github.com/juju/errors"

	"github.com/canonical/azlab/internal/provider/azure/internal/azureauth"
	"github.com/canonical/azlab/internal/provider/azure/internal/errorutils"
)

const (
	defaultPollInterval = 10 * time.Second
	defaultPollTimeout  = 5 * time.Minute
)

// Environ provisions and releases lab machines within a single
// subscription and location.
type Environ struct {
	provider ProviderConfig
	cloud    CloudSpec

	subscriptionID string
	tenantID       string
	location       string

	credential    azcore.TokenCredential
	clientOptions arm.ClientOptions

	// mu guards resourceGroup, which is resolved lazily unless
	// configured up front.
	mu            sync.Mutex
	resourceGroup string
}

// NewEnviron returns an Environ for the subscription and location in
// cloud. The tenant ID is discovered from the subscription's challenge
// response when cloud does not carry one.
func NewEnviron(ctx context.Context, cloud CloudSpec, provider ProviderConfig) (*Environ, error) {
	if err := provider.Validate(); err != nil {
		return nil, errors.Annotate(err, "validating provider configuration")
	}
	if err := cloud.Validate(); err != nil {
		return nil, errors.Annotate(err, "validating cloud specification")
	}
	env := &Environ{
		provider:       provider,
		cloud:          cloud,
		subscriptionID: cloud.SubscriptionID,
		location:       canonicalLocation(cloud.Location),
		resourceGroup:  cloud.ResourceGroup,
	}
	if err := env.initEnviron(ctx); err != nil {
		return nil, errors.Trace(err)
	}
	return env, nil
}

func (env *Environ) initEnviron(ctx context.Context) error {
	clientOptions := azcore.ClientOptions{
		Transport: env.provider.Sender,
	}
	if env.provider.RequestInspector != nil {
		clientOptions.PerCallPolicies = append(
			clientOptions.PerCallPolicies, env.provider.RequestInspector,
		)
	}
	env.clientOptions = arm.ClientOptions{ClientOptions: clientOptions}

	env.tenantID = env.cloud.TenantID
	if env.tenantID == "" {
		tenantID, err := azureauth.DiscoverTenantID(ctx, env.subscriptionID, env.provider.Sender)
		if err != nil {
			return errors.Annotate(err, "discovering tenant ID")
		}
		logger.Debugf("discovered tenant ID %q for subscription %q", tenantID, env.subscriptionID)
		env.tenantID = tenantID
	}

	credential, err := env.provider.CreateTokenCredential(
		env.cloud.AppID, env.cloud.AppPassword, env.tenantID, env.clientOptions.ClientOptions,
	)
	if err != nil {
		return errors.Annotate(err, "creating token credential")
	}
	env.credential = credential
	return nil
}

// Location returns the canonicalized location the Environ provisions
// into.
func (env *Environ) Location() string {
	return env.location
}

func (env *Environ) resourceGroupsClient() (*armresources.ResourceGroupsClient, error) {
	return armresources.NewResourceGroupsClient(env.subscriptionID, env.credential, &env.clientOptions)
}

func (env *Environ) virtualNetworksClient() (*armnetwork.VirtualNetworksClient, error) {
	return armnetwork.NewVirtualNetworksClient(env.subscriptionID, env.credential, &env.clientOptions)
}

func (env *Environ) subnetsClient() (*armnetwork.SubnetsClient, error) {
	return armnetwork.NewSubnetsClient(env.subscriptionID, env.credential, &env.clientOptions)
}

func (env *Environ) securityGroupsClient() (*armnetwork.SecurityGroupsClient, error) {
	return armnetwork.NewSecurityGroupsClient(env.subscriptionID, env.credential, &env.clientOptions)
}

func (env *Environ) securityRulesClient() (*armnetwork.SecurityRulesClient, error) {
	return armnetwork.NewSecurityRulesClient(env.subscriptionID, env.credential, &env.clientOptions)
}

func (env *Environ) publicAddressesClient() (*armnetwork.PublicIPAddressesClient, error) {
	return armnetwork.NewPublicIPAddressesClient(env.subscriptionID, env.credential, &env.clientOptions)
}

func (env *Environ) interfacesClient() (*armnetwork.InterfacesClient, error) {
	return armnetwork.NewInterfacesClient(env.subscriptionID, env.credential, &env.clientOptions)
}

func (env *Environ) virtualMachinesClient() (*armcompute.VirtualMachinesClient, error) {
	return armcompute.NewVirtualMachinesClient(env.subscriptionID, env.credential, &env.clientOptions)
}

func (env *Environ) subscriptionsClient() (*armsubscriptions.Client, error) {
	return armsubscriptions.NewClient(env.credential, &env.clientOptions)
}

// LaunchParams are the arguments for launching a lab machine.
type LaunchParams struct {
	// Config holds the validated launch attributes.
	Config *LaunchConfig

	// SSHPublicKey is the authorised key installed for the admin
	// user.
	SSHPublicKey string

	// PollInterval and PollTimeout bound the wait for the public
	// address. Zero values mean the defaults of 10s and 5m.
	PollInterval time.Duration
	PollTimeout  time.Duration

	// StatusCallback, if non-nil, is invoked with progress messages
	// as provisioning moves along.
	StatusCallback func(message string)
}

func (p LaunchParams) validate() error {
	if p.Config == nil {
		return errors.NotValidf("nil Config")
	}
	if p.SSHPublicKey == "" {
		return errors.NotValidf("empty SSHPublicKey")
	}
	return nil
}

// LaunchResult describes a provisioned machine.
type LaunchResult struct {
	ResourceGroup    string
	VirtualNetwork   string
	Subnet           string
	SecurityGroup    string
	PublicIPName     string
	NetworkInterface string
	VirtualMachine   string
	Location         string
	AdminUsername    string
	PublicAddress    string
}

// Launch provisions a lab machine and its networking in dependency
// order, then waits for the machine's public address to be assigned.
// Nothing is torn down on failure; release cleans up by deleting the
// whole resource group.
func (env *Environ) Launch(ctx context.Context, args LaunchParams) (*LaunchResult, error) {
	if err := args.validate(); err != nil {
		return nil, errors.Annotate(err, "validating launch parameters")
	}
	notify := args.StatusCallback
	if notify == nil {
		notify = func(string) {}
	}
	interval := args.PollInterval
	if interval <= 0 {
		interval = defaultPollInterval
	}
	timeout := args.PollTimeout
	if timeout <= 0 {
		timeout = defaultPollTimeout
	}

	now := env.provider.RetryClock.Now()
	group, err := env.ensureResourceGroup(ctx, now, notify)
	if err != nil {
		return nil, errors.Trace(err)
	}
	names := namesForGroup(group, now)

	subnet, err := env.createVirtualNetwork(ctx, names, args.Config, notify)
	if err != nil {
		return nil, errors.Trace(err)
	}
	securityGroup, err := env.createSecurityGroup(ctx, names, args.Config.InboundPorts, notify)
	if err != nil {
		return nil, errors.Trace(err)
	}
	publicIP, err := env.createPublicIPAddress(ctx, names, notify)
	if err != nil {
		return nil, errors.Trace(err)
	}
	nic, err := env.createNetworkInterface(ctx, names, subnet, publicIP, securityGroup, notify)
	if err != nil {
		return nil, errors.Trace(err)
	}
	if err := env.createVirtualMachine(ctx, names, args.Config, args.SSHPublicKey, nic, notify); err != nil {
		return nil, errors.Trace(err)
	}

	notify(fmt.Sprintf("Waiting for public address to be assigned to %q.", names.publicIP))
	publicAddress, err := env.waitPublicAddress(ctx, names.publicIP, interval, timeout)
	if err != nil {
		return nil, errors.Trace(err)
	}
	return &LaunchResult{
		ResourceGroup:    group,
		VirtualNetwork:   names.virtualNetwork,
		Subnet:           names.subnet,
		SecurityGroup:    names.securityGroup,
		PublicIPName:     names.publicIP,
		NetworkInterface: names.networkInterface,
		VirtualMachine:   names.virtualMachine,
		Location:         env.location,
		AdminUsername:    args.Config.AdminUsername,
		PublicAddress:    publicAddress,
	}, nil
}

// ResolveResourceGroup returns the resource group the Environ operates
// on: the configured group when one was supplied, otherwise the first
// group that exists in the subscription. An error satisfying
// errors.NotFound is returned when the subscription has none.
func (env *Environ) ResolveResourceGroup(ctx context.Context) (string, error) {
	env.mu.Lock()
	defer env.mu.Unlock()
	if env.resourceGroup != "" {
		return env.resourceGroup, nil
	}
	groups, err := env.resourceGroupsClient()
	if err != nil {
		return "", errors.Trace(err)
	}
	pager := groups.NewListPager(nil)
	for pager.More() {
		next, err := pager.NextPage(ctx)
		if err != nil {
			return "", errors.Annotate(err, "listing resource groups")
		}
		for _, group := range next.Value {
			if name := toValue(group.Name); name != "" {
				env.resourceGroup = name
				return name, nil
			}
		}
	}
	return "", errors.NotFoundf("resource groups in subscription %q", env.subscriptionID)
}

// ensureResourceGroup returns the resource group to provision into,
// creating ArmResourceGroup-<timestamp> when the subscription has none
// and none was configured.
func (env *Environ) ensureResourceGroup(ctx context.Context, now time.Time, notify func(string)) (string, error) {
	if env.cloud.ResourceGroup != "" {
		return env.cloud.ResourceGroup, nil
	}
	group, err := env.ResolveResourceGroup(ctx)
	if err == nil {
		notify(fmt.Sprintf("Found existing resource group %q.", group))
		return group, nil
	}
	if !errors.Is(err, errors.NotFound) {
		return "", errors.Trace(err)
	}

	group = newResourceGroupName(now)
	notify(fmt.Sprintf("No existing resource groups found; creating %q.", group))
	logger.Debugf("creating resource group %q in %q", group, env.location)
	groups, err := env.resourceGroupsClient()
	if err != nil {
		return "", errors.Trace(err)
	}
	_, err = groups.CreateOrUpdate(ctx, group, armresources.ResourceGroup{
		Location: to.Ptr(env.location),
	}, nil)
	if err != nil {
		return "", errors.Annotatef(err, "creating resource group %q", group)
	}
	env.mu.Lock()
	env.resourceGroup = group
	env.mu.Unlock()
	return group, nil
}

// Release deletes the resource group and everything in it. When wait
// is false the deletion carries on in the background after the service
// has accepted the request.
func (env *Environ) Release(ctx context.Context, group string, wait bool) error {
	logger.Debugf("deleting resource group %q", group)
	groups, err := env.resourceGroupsClient()
	if err != nil {
		return errors.Trace(err)
	}
	poller, err := groups.BeginDelete(ctx, group, nil)
	if err == nil && wait {
		_, err = poller.PollUntilDone(ctx, nil)
	}
	if err != nil {
		if errorutils.IsNotFoundError(err) {
			return errors.NotFoundf("resource group %q", group)
		}
		return errors.Annotatef(err, "deleting resource group %q", group)
	}
	return nil
}

// Location describes an Azure location available to a subscription.
type Location struct {
	Name        string `json:"name" yaml:"name"`
	DisplayName string `json:"display-name" yaml:"display-name"`
}

// Locations lists the locations the subscription may provision into,
// sorted by name.
func (env *Environ) Locations(ctx context.Context) ([]Location, error) {
	subscriptions, err := env.subscriptionsClient()
	if err != nil {
		return nil, errors.Trace(err)
	}
	var result []Location
	pager := subscriptions.NewListLocationsPager(env.subscriptionID, nil)
	for pager.More() {
		next, err := pager.NextPage(ctx)
		if err != nil {
			return nil, errors.Annotate(err, "listing locations")
		}
		for _, location := range next.Value {
			result = append(result, Location{
				Name:        toValue(location.Name),
				DisplayName: toValue(location.DisplayName),
			})
		}
	}
	sort.Slice(result, func(i, j int) bool {
		return result[i].Name < result[j].Name
	})
	return result, nil
}

func toValue[T any](v *T) T {
	if v == nil {
		return *new(T)
	}
	return *v
}
