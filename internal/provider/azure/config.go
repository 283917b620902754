// Copyright 2026 Canonical Ltd.
// Licensed under the AGPLv3, see LICENCE file for details.

package azure

import (
	"net"
	"strconv"
	"strings"

	"github.com/juju/collections/set"
	"github.com/juju/errors"
	"github.com/juju/schema"
	"gopkg.in/juju/environschema.v1"

	"github.com/canonical/azlab/internal/provider/azure/internal/imageutils"
)

const (
	// configAttrVNetAddressPrefix is the address space of the virtual
	// network created for the machine.
	configAttrVNetAddressPrefix = "vnet-address-prefix"

	// configAttrSubnetAddressPrefix is the address prefix of the
	// subnet the machine's NIC is attached to.
	configAttrSubnetAddressPrefix = "subnet-address-prefix"

	// configAttrVMSize is the Azure size of the machine.
	configAttrVMSize = "vm-size"

	// configAttrImage is the marketplace image URN the machine boots.
	configAttrImage = "image"

	// configAttrAdminUsername is the name of the administrative user
	// created on the machine.
	configAttrAdminUsername = "admin-username"

	// configAttrInboundPorts is a comma separated list of TCP ports
	// opened on the machine's security group.
	configAttrInboundPorts = "inbound-ports"

	// resourceNameLengthMax is the maximum length of resource
	// names in Azure.
	resourceNameLengthMax = 80
)

var configSchema = environschema.Fields{
	configAttrVNetAddressPrefix: {
		Description: "Address space of the virtual network, in CIDR notation",
		Type:        environschema.Tstring,
	},
	configAttrSubnetAddressPrefix: {
		Description: "Address prefix of the subnet, in CIDR notation",
		Type:        environschema.Tstring,
	},
	configAttrVMSize: {
		Description: "Azure size of the virtual machine",
		Type:        environschema.Tstring,
	},
	configAttrImage: {
		Description: "Marketplace image URN, Publisher:Offer:SKU:Version",
		Type:        environschema.Tstring,
	},
	configAttrAdminUsername: {
		Description: "Name of the administrative user created on the machine",
		Type:        environschema.Tstring,
	},
	configAttrInboundPorts: {
		Description: "Comma separated TCP ports allowed inbound by the security group",
		Type:        environschema.Tstring,
	},
}

var configDefaults = schema.Defaults{
	configAttrVNetAddressPrefix:   "10.0.0.0/16",
	configAttrSubnetAddressPrefix: "10.0.0.0/24",
	configAttrVMSize:              "Standard_A1_v5",
	configAttrImage:               "Canonical:UbuntuServer:22_04-lts:latest",
	configAttrAdminUsername:       "azureuser",
	configAttrInboundPorts:        "22,80,443,3306,5432,6379,27017,5000,8080,8443",
}

var configFields = func() schema.Fields {
	fs, _, err := configSchema.ValidationSchema()
	if err != nil {
		panic(err)
	}
	return fs
}()

// LaunchConfig holds the validated attributes controlling what kind of
// machine is launched and how it is reachable.
type LaunchConfig struct {
	VNetAddressPrefix   string
	SubnetAddressPrefix string
	VMSize              string
	Image               string
	AdminUsername       string
	InboundPorts        []int
}

// ValidateLaunchConfig coerces attrs against the launch schema,
// applying defaults for anything unspecified, and returns the
// resulting configuration.
func ValidateLaunchConfig(attrs map[string]interface{}) (*LaunchConfig, error) {
	for key := range attrs {
		if _, ok := configFields[key]; !ok {
			return nil, errors.NotValidf("unknown config %q", key)
		}
	}
	coerced, err := schema.FieldMap(configFields, configDefaults).Coerce(attrs, nil)
	if err != nil {
		return nil, errors.Annotate(err, "validating launch config")
	}
	validated := coerced.(map[string]interface{})
	cfg := &LaunchConfig{
		VNetAddressPrefix:   validated[configAttrVNetAddressPrefix].(string),
		SubnetAddressPrefix: validated[configAttrSubnetAddressPrefix].(string),
		VMSize:              validated[configAttrVMSize].(string),
		Image:               validated[configAttrImage].(string),
		AdminUsername:       validated[configAttrAdminUsername].(string),
	}

	_, vnet, err := net.ParseCIDR(cfg.VNetAddressPrefix)
	if err != nil {
		return nil, errors.NotValidf("%s %q", configAttrVNetAddressPrefix, cfg.VNetAddressPrefix)
	}
	_, subnet, err := net.ParseCIDR(cfg.SubnetAddressPrefix)
	if err != nil {
		return nil, errors.NotValidf("%s %q", configAttrSubnetAddressPrefix, cfg.SubnetAddressPrefix)
	}
	vnetOnes, _ := vnet.Mask.Size()
	subnetOnes, _ := subnet.Mask.Size()
	if !vnet.Contains(subnet.IP) || subnetOnes < vnetOnes {
		return nil, errors.Errorf(
			"subnet address prefix %q is not contained in virtual network address space %q",
			cfg.SubnetAddressPrefix, cfg.VNetAddressPrefix,
		)
	}

	if _, err := imageutils.ParseImageReference(cfg.Image); err != nil {
		return nil, errors.Trace(err)
	}
	if strings.TrimSpace(cfg.AdminUsername) == "" {
		return nil, errors.NotValidf("empty %s", configAttrAdminUsername)
	}

	cfg.InboundPorts, err = parseInboundPorts(validated[configAttrInboundPorts].(string))
	if err != nil {
		return nil, errors.Trace(err)
	}
	return cfg, nil
}

// parseInboundPorts parses a comma separated port list, dropping
// repeated ports but otherwise preserving order: security rule
// priorities are assigned in list order.
func parseInboundPorts(value string) ([]int, error) {
	if strings.TrimSpace(value) == "" {
		return nil, errors.NotValidf("empty %s", configAttrInboundPorts)
	}
	seen := set.NewInts()
	var ports []int
	for _, field := range strings.Split(value, ",") {
		field = strings.TrimSpace(field)
		port, err := strconv.Atoi(field)
		if err != nil {
			return nil, errors.NotValidf("inbound port %q", field)
		}
		if port < 1 || port > 65535 {
			return nil, errors.NotValidf("inbound port %d", port)
		}
		if seen.Contains(port) {
			continue
		}
		seen.Add(port)
		ports = append(ports, port)
	}
	return ports, nil
}

// canonicalLocation returns the canonicalized location string. This involves
// stripping whitespace, and lowercasing. The ARM APIs do not support embedded
// whitespace, whereas the old Service Management APIs used to; we allow the
// user to provide either, and canonicalize them to one form that ARM allows.
func canonicalLocation(s string) string {
	s = strings.Replace(s, " ", "", -1)
	return strings.ToLower(s)
}
