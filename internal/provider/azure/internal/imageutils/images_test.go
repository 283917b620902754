// Copyright 2026 Canonical Ltd.
// Licensed under the AGPLv3, see LICENCE file for details.

package imageutils_test

import (
	"github.com/Azure/azure-sdk-for-go/sdk/azcore/to"
	"github.com/Azure/azure-sdk-for-go/sdk/resourcemanager/compute/armcompute/v2"
	"github.com/juju/testing"
	jc "github.com/juju/testing/checkers"
	gc "gopkg.in/check.v1"

	"github.com/canonical/azlab/internal/provider/azure/internal/imageutils"
)

type imageutilsSuite struct {
	testing.IsolationSuite
}

var _ = gc.Suite(&imageutilsSuite{})

func (s *imageutilsSuite) TestParseImageReference(c *gc.C) {
	ref, err := imageutils.ParseImageReference("Canonical:UbuntuServer:22_04-lts:latest")
	c.Assert(err, jc.ErrorIsNil)
	c.Assert(ref, jc.DeepEquals, &armcompute.ImageReference{
		Publisher: to.Ptr("Canonical"),
		Offer:     to.Ptr("UbuntuServer"),
		SKU:       to.Ptr("22_04-lts"),
		Version:   to.Ptr("latest"),
	})
}

func (s *imageutilsSuite) TestParseImageReferenceInvalid(c *gc.C) {
	for _, urn := range []string{
		"",
		"Canonical",
		"Canonical:UbuntuServer",
		"Canonical:UbuntuServer:22_04-lts",
		"Canonical:UbuntuServer:22_04-lts:latest:extra",
		"Canonical::22_04-lts:latest",
	} {
		c.Logf("parsing %q", urn)
		_, err := imageutils.ParseImageReference(urn)
		c.Check(err, gc.ErrorMatches, `image URN ".*" not valid`)
	}
}

func (s *imageutilsSuite) TestImageURN(c *gc.C) {
	ref := &armcompute.ImageReference{
		Publisher: to.Ptr("Canonical"),
		Offer:     to.Ptr("UbuntuServer"),
		SKU:       to.Ptr("22_04-lts"),
		Version:   to.Ptr("latest"),
	}
	c.Assert(imageutils.ImageURN(ref), gc.Equals, "Canonical:UbuntuServer:22_04-lts:latest")
}

func (s *imageutilsSuite) TestImageURNPartial(c *gc.C) {
	ref := &armcompute.ImageReference{
		Publisher: to.Ptr("Canonical"),
		Offer:     to.Ptr("UbuntuServer"),
	}
	c.Assert(imageutils.ImageURN(ref), gc.Equals, "Canonical:UbuntuServer::")
}
