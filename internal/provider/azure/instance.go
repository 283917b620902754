// Copyright 2026 Canonical Ltd.
// Licensed under the AGPLv3, see LICENCE file for details.

package azure

import (
	"context"
	"fmt"
	"strings"

	"github.com/Azure/azure-sdk-for-go/sdk/azcore/to"
	"github.com/Azure/azure-sdk-for-go/sdk/resourcemanager/compute/armcompute/v2"
	"github.com/Azure/azure-sdk-for-go/sdk/resourcemanager/network/armnetwork"
	"github.com/juju/errors"

	"github.com/canonical/azlab/internal/provider/azure/internal/errorutils"
	"github.com/canonical/azlab/internal/provider/azure/internal/imageutils"
)

// createVirtualMachine creates the virtual machine, booting the
// configured image with password authentication disabled and the
// given SSH public key installed for the admin user.
func (env *Environ) createVirtualMachine(
	ctx context.Context,
	names resourceNames,
	cfg *LaunchConfig,
	sshPublicKey string,
	nic *armnetwork.Interface,
	notify func(string),
) error {
	notify(fmt.Sprintf("Creating virtual machine %q.", names.virtualMachine))
	image, err := imageutils.ParseImageReference(cfg.Image)
	if err != nil {
		return errors.Trace(err)
	}
	virtualMachines, err := env.virtualMachinesClient()
	if err != nil {
		return errors.Trace(err)
	}
	poller, err := virtualMachines.BeginCreateOrUpdate(
		ctx, names.resourceGroup, names.virtualMachine,
		armcompute.VirtualMachine{
			Location: to.Ptr(env.location),
			Properties: &armcompute.VirtualMachineProperties{
				HardwareProfile: &armcompute.HardwareProfile{
					VMSize: to.Ptr(armcompute.VirtualMachineSizeTypes(cfg.VMSize)),
				},
				StorageProfile: &armcompute.StorageProfile{
					ImageReference: image,
					OSDisk: &armcompute.OSDisk{
						CreateOption: to.Ptr(armcompute.DiskCreateOptionTypesFromImage),
						Caching:      to.Ptr(armcompute.CachingTypesReadWrite),
						ManagedDisk: &armcompute.ManagedDiskParameters{
							StorageAccountType: to.Ptr(armcompute.StorageAccountTypesStandardLRS),
						},
					},
				},
				OSProfile: &armcompute.OSProfile{
					ComputerName:  to.Ptr(names.virtualMachine),
					AdminUsername: to.Ptr(cfg.AdminUsername),
					LinuxConfiguration: &armcompute.LinuxConfiguration{
						DisablePasswordAuthentication: to.Ptr(true),
						SSH: &armcompute.SSHConfiguration{
							PublicKeys: []*armcompute.SSHPublicKey{{
								Path:    to.Ptr(fmt.Sprintf("/home/%s/.ssh/authorized_keys", cfg.AdminUsername)),
								KeyData: to.Ptr(sshPublicKey),
							}},
						},
					},
				},
				NetworkProfile: &armcompute.NetworkProfile{
					NetworkInterfaces: []*armcompute.NetworkInterfaceReference{{
						ID: nic.ID,
						Properties: &armcompute.NetworkInterfaceReferenceProperties{
							Primary: to.Ptr(true),
						},
					}},
				},
			},
		},
		nil,
	)
	if err == nil {
		_, err = poller.PollUntilDone(ctx, nil)
	}
	if err != nil {
		if errorutils.IsQuotaExceededError(err) {
			return errors.Annotatef(err,
				"creating virtual machine %q: size %q exceeds the subscription's quota",
				names.virtualMachine, cfg.VMSize,
			)
		}
		return errors.Annotatef(err, "creating virtual machine %q", names.virtualMachine)
	}
	return nil
}

// InstanceStatus describes the observed state of a lab machine.
type InstanceStatus struct {
	VirtualMachine    string `json:"virtual-machine" yaml:"virtual-machine"`
	ResourceGroup     string `json:"resource-group" yaml:"resource-group"`
	Location          string `json:"location" yaml:"location"`
	Size              string `json:"size,omitempty" yaml:"size,omitempty"`
	ProvisioningState string `json:"provisioning-state,omitempty" yaml:"provisioning-state,omitempty"`
	PowerState        string `json:"power-state,omitempty" yaml:"power-state,omitempty"`
	PrivateAddress    string `json:"private-address,omitempty" yaml:"private-address,omitempty"`
	PublicAddress     string `json:"public-address,omitempty" yaml:"public-address,omitempty"`
}

// Instance returns the status of the named machine in group, or of the
// most recently launched machine when name is empty.
func (env *Environ) Instance(ctx context.Context, group, name string) (*InstanceStatus, error) {
	var err error
	if name == "" {
		name, err = env.latestInstanceName(ctx, group)
		if err != nil {
			return nil, errors.Trace(err)
		}
	}
	virtualMachines, err := env.virtualMachinesClient()
	if err != nil {
		return nil, errors.Trace(err)
	}
	resp, err := virtualMachines.Get(ctx, group, name, &armcompute.VirtualMachinesClientGetOptions{
		Expand: to.Ptr(armcompute.InstanceViewTypesInstanceView),
	})
	if err != nil {
		if errorutils.IsNotFoundError(err) {
			return nil, errors.NotFoundf("virtual machine %q in resource group %q", name, group)
		}
		return nil, errors.Annotatef(err, "getting virtual machine %q", name)
	}

	vm := resp.VirtualMachine
	status := &InstanceStatus{
		VirtualMachine: toValue(vm.Name),
		ResourceGroup:  group,
		Location:       toValue(vm.Location),
	}
	if vm.Properties != nil {
		status.ProvisioningState = toValue(vm.Properties.ProvisioningState)
		if vm.Properties.HardwareProfile != nil {
			status.Size = string(toValue(vm.Properties.HardwareProfile.VMSize))
		}
		if vm.Properties.InstanceView != nil {
			status.PowerState = powerState(vm.Properties.InstanceView.Statuses)
		}
	}
	if err := env.instanceAddresses(ctx, group, toValue(vm.ID), status); err != nil {
		return nil, errors.Trace(err)
	}
	return status, nil
}

// latestInstanceName returns the name of the machine in group with the
// newest timestamp suffix.
func (env *Environ) latestInstanceName(ctx context.Context, group string) (string, error) {
	virtualMachines, err := env.virtualMachinesClient()
	if err != nil {
		return "", errors.Trace(err)
	}
	var (
		latest      string
		latestStamp int64 = -1
	)
	pager := virtualMachines.NewListPager(group, nil)
	for pager.More() {
		next, err := pager.NextPage(ctx)
		if err != nil {
			return "", errors.Annotate(err, "listing virtual machines")
		}
		for _, vm := range next.Value {
			name := toValue(vm.Name)
			if !strings.HasPrefix(name, machineNamePrefix) {
				continue
			}
			if stamp := nameTimestamp(name); stamp > latestStamp {
				latest, latestStamp = name, stamp
			}
		}
	}
	if latest == "" {
		return "", errors.NotFoundf("machines in resource group %q", group)
	}
	return latest, nil
}

// instanceAddresses fills in the private and public addresses of the
// machine with the given resource ID.
func (env *Environ) instanceAddresses(ctx context.Context, group, vmID string, status *InstanceStatus) error {
	interfaces, err := env.interfacesClient()
	if err != nil {
		return errors.Trace(err)
	}
	var publicIPID string
	nicPager := interfaces.NewListPager(group, nil)
	for nicPager.More() {
		next, err := nicPager.NextPage(ctx)
		if err != nil {
			return errors.Annotate(err, "listing network interfaces")
		}
		for _, nic := range next.Value {
			if nic.Properties == nil ||
				nic.Properties.VirtualMachine == nil ||
				toValue(nic.Properties.VirtualMachine.ID) != vmID {
				continue
			}
			for _, ipConfiguration := range nic.Properties.IPConfigurations {
				if ipConfiguration.Properties == nil {
					continue
				}
				if addr := toValue(ipConfiguration.Properties.PrivateIPAddress); addr != "" && status.PrivateAddress == "" {
					status.PrivateAddress = addr
				}
				if publicIP := ipConfiguration.Properties.PublicIPAddress; publicIP != nil && publicIPID == "" {
					publicIPID = toValue(publicIP.ID)
				}
			}
		}
	}
	if publicIPID == "" {
		return nil
	}

	publicAddresses, err := env.publicAddressesClient()
	if err != nil {
		return errors.Trace(err)
	}
	pipPager := publicAddresses.NewListPager(group, nil)
	for pipPager.More() {
		next, err := pipPager.NextPage(ctx)
		if err != nil {
			return errors.Annotate(err, "listing public IP addresses")
		}
		for _, publicIP := range next.Value {
			if toValue(publicIP.ID) != publicIPID || publicIP.Properties == nil {
				continue
			}
			status.PublicAddress = toValue(publicIP.Properties.IPAddress)
		}
	}
	return nil
}

// powerState extracts the power state from an instance view's statuses.
func powerState(statuses []*armcompute.InstanceViewStatus) string {
	for _, status := range statuses {
		code := toValue(status.Code)
		if state, ok := strings.CutPrefix(code, "PowerState/"); ok {
			return state
		}
	}
	return ""
}
