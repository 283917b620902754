// Copyright 2026 Canonical Ltd.
// Licensed under the AGPLv3, see LICENCE file for details.

package azuretesting

import (
	"context"
	"time"

	"github.com/Azure/azure-sdk-for-go/sdk/azcore"
	"github.com/Azure/azure-sdk-for-go/sdk/azcore/policy"
)

// FakeCredential is an azcore.TokenCredential that returns a fake
// token without going anywhere near an authority.
type FakeCredential struct{}

// GetToken implements azcore.TokenCredential.
func (c *FakeCredential) GetToken(ctx context.Context, opts policy.TokenRequestOptions) (azcore.AccessToken, error) {
	return azcore.AccessToken{
		Token:     "FakeToken",
		ExpiresOn: time.Now().Add(time.Hour),
	}, nil
}
