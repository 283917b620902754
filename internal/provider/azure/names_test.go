// Copyright 2026 Canonical Ltd.
// Licensed under the AGPLv3, see LICENCE file for details.

package azure

import (
	"time"

	"github.com/juju/testing"
	jc "github.com/juju/testing/checkers"
	gc "gopkg.in/check.v1"
)

type namesSuite struct {
	testing.IsolationSuite
}

var _ = gc.Suite(&namesSuite{})

func (s *namesSuite) TestNewResourceGroupName(c *gc.C) {
	name := newResourceGroupName(time.Unix(1724580000, 0))
	c.Assert(name, gc.Equals, "ArmResourceGroup-1724580000")
}

func (s *namesSuite) TestNamesForGroup(c *gc.C) {
	names := namesForGroup("my-group", time.Unix(1724580000, 0))
	c.Assert(names, jc.DeepEquals, resourceNames{
		resourceGroup:    "my-group",
		virtualNetwork:   "ArmVNet-my-group",
		subnet:           "ArmSubnet",
		securityGroup:    "ArmNSG-my-group-1724580000",
		publicIP:         "ArmPublicIP-my-group-1724580000",
		networkInterface: "ArmNIC-my-group-1724580000",
		virtualMachine:   "ArmVM-my-group-1724580000",
	})
}

func (s *namesSuite) TestSecurityRuleName(c *gc.C) {
	c.Assert(securityRuleName(22), gc.Equals, "AllowTCP22")
	c.Assert(securityRuleName(8443), gc.Equals, "AllowTCP8443")
}

func (s *namesSuite) TestNameTimestamp(c *gc.C) {
	c.Assert(nameTimestamp("ArmVM-my-group-1724580000"), gc.Equals, int64(1724580000))
	c.Assert(nameTimestamp("ArmVM-1724580000"), gc.Equals, int64(1724580000))
	c.Assert(nameTimestamp("no-timestamp-here"), gc.Equals, int64(-1))
	c.Assert(nameTimestamp("plain"), gc.Equals, int64(-1))
}
