// Copyright 2026 Canonical Ltd.
// Licensed under the AGPLv3, see LICENCE file for details.

package azure

import (
	"fmt"
	"strconv"
	"strings"
	"time"
)

const (
	// resourceGroupNamePrefix is the prefix of resource groups created
	// when none exist in the subscription.
	resourceGroupNamePrefix = "ArmResourceGroup"

	// machineNamePrefix is the prefix of every virtual machine name.
	machineNamePrefix = "ArmVM-"

	// subnetName names the single subnet in the virtual network.
	subnetName = "ArmSubnet"

	// ipConfigurationName names the single IP configuration on each
	// network interface.
	ipConfigurationName = "ipconfig1"
)

// resourceNames holds the names of the resources making up one lab
// machine. The timestamped names share a single timestamp so a machine
// and its dependencies can be related at a glance.
type resourceNames struct {
	resourceGroup    string
	virtualNetwork   string
	subnet           string
	securityGroup    string
	publicIP         string
	networkInterface string
	virtualMachine   string
}

// newResourceGroupName returns the name for a resource group created
// at the given time.
func newResourceGroupName(now time.Time) string {
	return fmt.Sprintf("%s-%d", resourceGroupNamePrefix, now.Unix())
}

// namesForGroup returns the resource names used when provisioning a
// machine into group at the given time.
func namesForGroup(group string, now time.Time) resourceNames {
	stamp := now.Unix()
	return resourceNames{
		resourceGroup:    group,
		virtualNetwork:   fmt.Sprintf("ArmVNet-%s", group),
		subnet:           subnetName,
		securityGroup:    fmt.Sprintf("ArmNSG-%s-%d", group, stamp),
		publicIP:         fmt.Sprintf("ArmPublicIP-%s-%d", group, stamp),
		networkInterface: fmt.Sprintf("ArmNIC-%s-%d", group, stamp),
		virtualMachine:   fmt.Sprintf("%s%s-%d", machineNamePrefix, group, stamp),
	}
}

// securityRuleName returns the name of the security rule allowing
// inbound traffic to port.
func securityRuleName(port int) string {
	return fmt.Sprintf("AllowTCP%d", port)
}

// nameTimestamp returns the unix timestamp suffix of a resource name,
// or -1 when the name does not carry one.
func nameTimestamp(name string) int64 {
	i := strings.LastIndex(name, "-")
	if i < 0 {
		return -1
	}
	stamp, err := strconv.ParseInt(name[i+1:], 10, 64)
	if err != nil {
		return -1
	}
	return stamp
}
