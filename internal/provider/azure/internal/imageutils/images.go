// Copyright 2026 Canonical Ltd.
// Licensed under the AGPLv3, see LICENCE file for details.

// Package imageutils handles the marketplace image URNs that select
// what a machine boots.
package imageutils

import (
	"fmt"
	"strings"

	"github.com/Azure/azure-sdk-for-go/sdk/azcore/to"
	"github.com/Azure/azure-sdk-for-go/sdk/resourcemanager/compute/armcompute/v2"
	"github.com/juju/errors"
)

// ParseImageReference parses an image URN in the
// "Publisher:Offer:SKU:Version" format expected by Azure Resource
// Manager, e.g. "Canonical:UbuntuServer:22_04-lts:latest".
func ParseImageReference(urn string) (*armcompute.ImageReference, error) {
	parts := strings.Split(urn, ":")
	if len(parts) != 4 {
		return nil, errors.NotValidf("image URN %q", urn)
	}
	for _, part := range parts {
		if part == "" {
			return nil, errors.NotValidf("image URN %q", urn)
		}
	}
	return &armcompute.ImageReference{
		Publisher: to.Ptr(parts[0]),
		Offer:     to.Ptr(parts[1]),
		SKU:       to.Ptr(parts[2]),
		Version:   to.Ptr(parts[3]),
	}, nil
}

// ImageURN renders an image reference back into URN form.
func ImageURN(ref *armcompute.ImageReference) string {
	var publisher, offer, sku, version string
	if ref.Publisher != nil {
		publisher = *ref.Publisher
	}
	if ref.Offer != nil {
		offer = *ref.Offer
	}
	if ref.SKU != nil {
		sku = *ref.SKU
	}
	if ref.Version != nil {
		version = *ref.Version
	}
	return fmt.Sprintf("%s:%s:%s:%s", publisher, offer, sku, version)
}
