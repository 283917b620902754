// Copyright 2026 Canonical Ltd.
// Licensed under the AGPLv3, see LICENCE file for details.

package azure_test

import (
	"github.com/juju/testing"
	jc "github.com/juju/testing/checkers"
	gc "gopkg.in/check.v1"

	"github.com/canonical/azlab/internal/provider/azure"
)

type configSuite struct {
	testing.IsolationSuite
}

var _ = gc.Suite(&configSuite{})

func (s *configSuite) assertConfigValid(c *gc.C, attrs map[string]interface{}) *azure.LaunchConfig {
	cfg, err := azure.ValidateLaunchConfig(attrs)
	c.Assert(err, jc.ErrorIsNil)
	return cfg
}

func (s *configSuite) assertConfigInvalid(c *gc.C, attrs map[string]interface{}, expect string) {
	_, err := azure.ValidateLaunchConfig(attrs)
	c.Assert(err, gc.ErrorMatches, expect)
}

func (s *configSuite) TestValidateDefaults(c *gc.C) {
	cfg := s.assertConfigValid(c, nil)
	c.Assert(cfg, jc.DeepEquals, &azure.LaunchConfig{
		VNetAddressPrefix:   "10.0.0.0/16",
		SubnetAddressPrefix: "10.0.0.0/24",
		VMSize:              "Standard_A1_v5",
		Image:               "Canonical:UbuntuServer:22_04-lts:latest",
		AdminUsername:       "azureuser",
		InboundPorts:        []int{22, 80, 443, 3306, 5432, 6379, 27017, 5000, 8080, 8443},
	})
}

func (s *configSuite) TestValidateOverrides(c *gc.C) {
	cfg := s.assertConfigValid(c, map[string]interface{}{
		"vm-size":        "Standard_D2s_v5",
		"image":          "Canonical:0001-com-ubuntu-server-jammy:22_04-lts-gen2:latest",
		"admin-username": "operator",
		"inbound-ports":  "22,8080",
	})
	c.Assert(cfg.VMSize, gc.Equals, "Standard_D2s_v5")
	c.Assert(cfg.Image, gc.Equals, "Canonical:0001-com-ubuntu-server-jammy:22_04-lts-gen2:latest")
	c.Assert(cfg.AdminUsername, gc.Equals, "operator")
	c.Assert(cfg.InboundPorts, jc.DeepEquals, []int{22, 8080})
}

func (s *configSuite) TestValidateUnknownAttr(c *gc.C) {
	s.assertConfigInvalid(c, map[string]interface{}{
		"machine-size": "Standard_A1_v5",
	}, `unknown config "machine-size" not valid`)
}

func (s *configSuite) TestValidateBadVNetPrefix(c *gc.C) {
	s.assertConfigInvalid(c, map[string]interface{}{
		"vnet-address-prefix": "10.0.0.0",
	}, `vnet-address-prefix "10.0.0.0" not valid`)
}

func (s *configSuite) TestValidateBadSubnetPrefix(c *gc.C) {
	s.assertConfigInvalid(c, map[string]interface{}{
		"subnet-address-prefix": "kablooie",
	}, `subnet-address-prefix "kablooie" not valid`)
}

func (s *configSuite) TestValidateSubnetOutsideVNet(c *gc.C) {
	s.assertConfigInvalid(c, map[string]interface{}{
		"subnet-address-prefix": "192.168.0.0/24",
	}, `subnet address prefix "192.168.0.0/24" is not contained in virtual network address space "10.0.0.0/16"`)
}

func (s *configSuite) TestValidateSubnetWiderThanVNet(c *gc.C) {
	s.assertConfigInvalid(c, map[string]interface{}{
		"vnet-address-prefix":   "10.0.0.0/16",
		"subnet-address-prefix": "10.0.0.0/8",
	}, `subnet address prefix "10.0.0.0/8" is not contained in virtual network address space "10.0.0.0/16"`)
}

func (s *configSuite) TestValidateBadImage(c *gc.C) {
	s.assertConfigInvalid(c, map[string]interface{}{
		"image": "Canonical:UbuntuServer",
	}, `image URN "Canonical:UbuntuServer" not valid`)
}

func (s *configSuite) TestValidateEmptyAdminUsername(c *gc.C) {
	s.assertConfigInvalid(c, map[string]interface{}{
		"admin-username": "  ",
	}, `empty admin-username not valid`)
}

func (s *configSuite) TestValidateBadPort(c *gc.C) {
	s.assertConfigInvalid(c, map[string]interface{}{
		"inbound-ports": "22,http",
	}, `inbound port "http" not valid`)
}

func (s *configSuite) TestValidatePortOutOfRange(c *gc.C) {
	s.assertConfigInvalid(c, map[string]interface{}{
		"inbound-ports": "22,70000",
	}, `inbound port 70000 not valid`)
	s.assertConfigInvalid(c, map[string]interface{}{
		"inbound-ports": "0",
	}, `inbound port 0 not valid`)
}

func (s *configSuite) TestValidatePortsDeduplicated(c *gc.C) {
	cfg := s.assertConfigValid(c, map[string]interface{}{
		"inbound-ports": "443,22,443,8080,22",
	})
	c.Assert(cfg.InboundPorts, jc.DeepEquals, []int{443, 22, 8080})
}

func (s *configSuite) TestParseInboundPortsWhitespace(c *gc.C) {
	ports, err := azure.ParseInboundPorts(" 22 , 80 ")
	c.Assert(err, jc.ErrorIsNil)
	c.Assert(ports, jc.DeepEquals, []int{22, 80})
}

func (s *configSuite) TestValidateEmptyPorts(c *gc.C) {
	s.assertConfigInvalid(c, map[string]interface{}{
		"inbound-ports": " ",
	}, `empty inbound-ports not valid`)
}

func (s *configSuite) TestCanonicalLocation(c *gc.C) {
	c.Assert(azure.CanonicalLocation("East US"), gc.Equals, "eastus")
	c.Assert(azure.CanonicalLocation("eastus"), gc.Equals, "eastus")
	c.Assert(azure.CanonicalLocation("North Europe"), gc.Equals, "northeurope")
}
