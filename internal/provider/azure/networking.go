// Copyright 2026 Canonical Ltd.
// Licensed under the AGPLv3, see LICENCE file for details.

package azure

import (
	"context"
	"fmt"
	"strconv"
	"time"

	"github.com/Azure/azure-sdk-for-go/sdk/azcore/to"
	"github.com/Azure/azure-sdk-for-go/sdk/resourcemanager/network/armnetwork"
	"github.com/juju/errors"
	"github.com/juju/retry"
)

const (
	// securityRuleBasePriority is the priority of the first inbound
	// security rule; each subsequent rule steps by
	// securityRulePriorityStep.
	securityRuleBasePriority = 1000
	securityRulePriorityStep = 10
)

// createVirtualNetwork creates the virtual network and its single
// subnet, returning the subnet for attaching the machine's NIC.
func (env *Environ) createVirtualNetwork(
	ctx context.Context,
	names resourceNames,
	cfg *LaunchConfig,
	notify func(string),
) (*armnetwork.Subnet, error) {
	notify(fmt.Sprintf("Creating virtual network %q with subnet %q.", names.virtualNetwork, names.subnet))
	logger.Debugf("creating virtual network %q with address space %q", names.virtualNetwork, cfg.VNetAddressPrefix)
	virtualNetworks, err := env.virtualNetworksClient()
	if err != nil {
		return nil, errors.Trace(err)
	}
	vnetPoller, err := virtualNetworks.BeginCreateOrUpdate(
		ctx, names.resourceGroup, names.virtualNetwork,
		armnetwork.VirtualNetwork{
			Location: to.Ptr(env.location),
			Properties: &armnetwork.VirtualNetworkPropertiesFormat{
				AddressSpace: &armnetwork.AddressSpace{
					AddressPrefixes: to.SliceOfPtrs(cfg.VNetAddressPrefix),
				},
			},
		},
		nil,
	)
	if err == nil {
		_, err = vnetPoller.PollUntilDone(ctx, nil)
	}
	if err != nil {
		return nil, errors.Annotatef(err, "creating virtual network %q", names.virtualNetwork)
	}

	subnets, err := env.subnetsClient()
	if err != nil {
		return nil, errors.Trace(err)
	}
	var subnet armnetwork.SubnetsClientCreateOrUpdateResponse
	subnetPoller, err := subnets.BeginCreateOrUpdate(
		ctx, names.resourceGroup, names.virtualNetwork, names.subnet,
		armnetwork.Subnet{
			Properties: &armnetwork.SubnetPropertiesFormat{
				AddressPrefix: to.Ptr(cfg.SubnetAddressPrefix),
			},
		},
		nil,
	)
	if err == nil {
		subnet, err = subnetPoller.PollUntilDone(ctx, nil)
	}
	if err != nil {
		return nil, errors.Annotatef(err, "creating subnet %q", names.subnet)
	}
	return &subnet.Subnet, nil
}

// createSecurityGroup creates the network security group and one
// inbound TCP allow rule per port, priorities assigned in list order.
func (env *Environ) createSecurityGroup(
	ctx context.Context,
	names resourceNames,
	inboundPorts []int,
	notify func(string),
) (*armnetwork.SecurityGroup, error) {
	notify(fmt.Sprintf("Creating network security group %q.", names.securityGroup))
	securityGroups, err := env.securityGroupsClient()
	if err != nil {
		return nil, errors.Trace(err)
	}
	var securityGroup armnetwork.SecurityGroupsClientCreateOrUpdateResponse
	groupPoller, err := securityGroups.BeginCreateOrUpdate(
		ctx, names.resourceGroup, names.securityGroup,
		armnetwork.SecurityGroup{
			Location: to.Ptr(env.location),
		},
		nil,
	)
	if err == nil {
		securityGroup, err = groupPoller.PollUntilDone(ctx, nil)
	}
	if err != nil {
		return nil, errors.Annotatef(err, "creating network security group %q", names.securityGroup)
	}

	securityRules, err := env.securityRulesClient()
	if err != nil {
		return nil, errors.Trace(err)
	}
	for i, port := range inboundPorts {
		ruleName := securityRuleName(port)
		notify(fmt.Sprintf("Creating security rule %q for port %d.", ruleName, port))
		rulePoller, err := securityRules.BeginCreateOrUpdate(
			ctx, names.resourceGroup, names.securityGroup, ruleName,
			armnetwork.SecurityRule{
				Properties: &armnetwork.SecurityRulePropertiesFormat{
					Protocol:                 to.Ptr(armnetwork.SecurityRuleProtocolTCP),
					SourceAddressPrefix:      to.Ptr("*"),
					SourcePortRange:          to.Ptr("*"),
					DestinationAddressPrefix: to.Ptr("*"),
					DestinationPortRange:     to.Ptr(strconv.Itoa(port)),
					Access:                   to.Ptr(armnetwork.SecurityRuleAccessAllow),
					Direction:                to.Ptr(armnetwork.SecurityRuleDirectionInbound),
					Priority:                 to.Ptr(int32(securityRuleBasePriority + i*securityRulePriorityStep)),
				},
			},
			nil,
		)
		if err == nil {
			_, err = rulePoller.PollUntilDone(ctx, nil)
		}
		if err != nil {
			return nil, errors.Annotatef(err, "creating security rule %q", ruleName)
		}
	}
	return &securityGroup.SecurityGroup, nil
}

// createPublicIPAddress creates the machine's public IP address with
// static allocation, so the address survives the machine deallocating.
func (env *Environ) createPublicIPAddress(
	ctx context.Context,
	names resourceNames,
	notify func(string),
) (*armnetwork.PublicIPAddress, error) {
	notify(fmt.Sprintf("Creating public IP address %q.", names.publicIP))
	publicAddresses, err := env.publicAddressesClient()
	if err != nil {
		return nil, errors.Trace(err)
	}
	var publicIP armnetwork.PublicIPAddressesClientCreateOrUpdateResponse
	poller, err := publicAddresses.BeginCreateOrUpdate(
		ctx, names.resourceGroup, names.publicIP,
		armnetwork.PublicIPAddress{
			Location: to.Ptr(env.location),
			SKU: &armnetwork.PublicIPAddressSKU{
				Name: to.Ptr(armnetwork.PublicIPAddressSKUNameBasic),
			},
			Properties: &armnetwork.PublicIPAddressPropertiesFormat{
				PublicIPAllocationMethod: to.Ptr(armnetwork.IPAllocationMethodStatic),
			},
		},
		nil,
	)
	if err == nil {
		publicIP, err = poller.PollUntilDone(ctx, nil)
	}
	if err != nil {
		return nil, errors.Annotatef(err, "creating public IP address %q", names.publicIP)
	}
	return &publicIP.PublicIPAddress, nil
}

// createNetworkInterface creates the machine's NIC, attached to the
// subnet and public IP, with the security group applied.
func (env *Environ) createNetworkInterface(
	ctx context.Context,
	names resourceNames,
	subnet *armnetwork.Subnet,
	publicIP *armnetwork.PublicIPAddress,
	securityGroup *armnetwork.SecurityGroup,
	notify func(string),
) (*armnetwork.Interface, error) {
	notify(fmt.Sprintf("Creating network interface %q.", names.networkInterface))
	interfaces, err := env.interfacesClient()
	if err != nil {
		return nil, errors.Trace(err)
	}
	var nic armnetwork.InterfacesClientCreateOrUpdateResponse
	poller, err := interfaces.BeginCreateOrUpdate(
		ctx, names.resourceGroup, names.networkInterface,
		armnetwork.Interface{
			Location: to.Ptr(env.location),
			Properties: &armnetwork.InterfacePropertiesFormat{
				IPConfigurations: []*armnetwork.InterfaceIPConfiguration{{
					Name: to.Ptr(ipConfigurationName),
					Properties: &armnetwork.InterfaceIPConfigurationPropertiesFormat{
						PrivateIPAllocationMethod: to.Ptr(armnetwork.IPAllocationMethodDynamic),
						Subnet:                    &armnetwork.Subnet{ID: subnet.ID},
						PublicIPAddress:           &armnetwork.PublicIPAddress{ID: publicIP.ID},
					},
				}},
				NetworkSecurityGroup: &armnetwork.SecurityGroup{ID: securityGroup.ID},
			},
		},
		nil,
	)
	if err == nil {
		nic, err = poller.PollUntilDone(ctx, nil)
	}
	if err != nil {
		return nil, errors.Annotatef(err, "creating network interface %q", names.networkInterface)
	}
	return &nic.Interface, nil
}

// waitPublicAddress polls the public IP resource until the service has
// assigned it an address, checking once immediately and then every
// interval until timeout.
func (env *Environ) waitPublicAddress(
	ctx context.Context,
	publicIPName string,
	interval, timeout time.Duration,
) (string, error) {
	publicAddresses, err := env.publicAddressesClient()
	if err != nil {
		return "", errors.Trace(err)
	}
	group, err := env.ResolveResourceGroup(ctx)
	if err != nil {
		return "", errors.Trace(err)
	}

	var publicAddress string
	errNotAssigned := errors.Errorf("public IP address not yet assigned")
	err = retry.Call(retry.CallArgs{
		Func: func() error {
			resp, err := publicAddresses.Get(ctx, group, publicIPName, nil)
			if err != nil {
				return errors.Annotatef(err, "getting public IP address %q", publicIPName)
			}
			if resp.Properties == nil || toValue(resp.Properties.IPAddress) == "" {
				return errNotAssigned
			}
			publicAddress = toValue(resp.Properties.IPAddress)
			return nil
		},
		NotifyFunc: func(lastError error, attempt int) {
			logger.Debugf("waiting for public IP address %q: attempt %d", publicIPName, attempt)
		},
		IsFatalError: func(err error) bool {
			return err != errNotAssigned
		},
		Delay:       interval,
		MaxDuration: timeout,
		Clock:       env.provider.RetryClock,
		Stop:        ctx.Done(),
	})
	if err != nil {
		if retry.IsDurationExceeded(err) || retry.IsRetryStopped(err) {
			return "", errors.Errorf("timed out waiting for public IP address %q to be assigned", publicIPName)
		}
		return "", errors.Trace(err)
	}
	return publicAddress, nil
}
