// Copyright 2026 Canonical Ltd.
// Licensed under the AGPLv3, see LICENCE file for details.

package azureauth_test

import (
	"context"
	"net/http"

	"github.com/juju/testing"
	jc "github.com/juju/testing/checkers"
	gc "gopkg.in/check.v1"

	"github.com/canonical/azlab/internal/provider/azure/internal/azureauth"
	"github.com/canonical/azlab/internal/provider/azure/internal/azuretesting"
)

type discoverySuite struct {
	testing.IsolationSuite
}

var _ = gc.Suite(&discoverySuite{})

const fakeTenantId = "11111111-1111-1111-1111-111111111111"

func newChallengeResponse(authURI string) *http.Response {
	resp := azuretesting.NewResponseWithBodyAndStatus(
		azuretesting.NewBody(`{"error":{"code":"AuthenticationFailed"}}`),
		http.StatusUnauthorized,
		"Unauthorized",
	)
	resp.Header.Set(
		"WWW-Authenticate",
		`Bearer authorization_uri="`+authURI+`", error="invalid_token", error_description="The access token is missing."`,
	)
	return resp
}

func (s *discoverySuite) TestDiscoverTenantID(c *gc.C) {
	sender := &azuretesting.MockSender{
		PathPattern: ".*/subscriptions/sub-id",
	}
	sender.AppendResponse(newChallengeResponse("https://login.windows.net/" + fakeTenantId))
	tenantID, err := azureauth.DiscoverTenantID(context.Background(), "sub-id", sender)
	c.Assert(err, jc.ErrorIsNil)
	c.Assert(tenantID, gc.Equals, fakeTenantId)
}

func (s *discoverySuite) TestDiscoverTenantIDUnexpectedStatus(c *gc.C) {
	sender := &azuretesting.MockSender{}
	sender.AppendResponse(azuretesting.NewResponseWithContent(`{"id":"sub-id"}`))
	_, err := azureauth.DiscoverTenantID(context.Background(), "sub-id", sender)
	c.Assert(err, gc.ErrorMatches, "expected unauthorized error response, got 200")
}

func (s *discoverySuite) TestDiscoverTenantIDNoHeader(c *gc.C) {
	sender := &azuretesting.MockSender{}
	sender.AppendResponse(azuretesting.NewResponseWithBodyAndStatus(
		azuretesting.NewBody(""), http.StatusUnauthorized, "Unauthorized",
	))
	_, err := azureauth.DiscoverTenantID(context.Background(), "sub-id", sender)
	c.Assert(err, gc.ErrorMatches, "no WWW-Authenticate header in response")
}

func (s *discoverySuite) TestDiscoverTenantIDUnexpectedHeaderFormat(c *gc.C) {
	resp := azuretesting.NewResponseWithBodyAndStatus(
		azuretesting.NewBody(""), http.StatusUnauthorized, "Unauthorized",
	)
	resp.Header.Set("WWW-Authenticate", "Bearer realm=oz")
	sender := &azuretesting.MockSender{}
	sender.AppendResponse(resp)
	_, err := azureauth.DiscoverTenantID(context.Background(), "sub-id", sender)
	c.Assert(err, gc.ErrorMatches, `unexpected WWW-Authenticate header format: "Bearer realm=oz"`)
}

func (s *discoverySuite) TestDiscoverTenantIDNotUUID(c *gc.C) {
	sender := &azuretesting.MockSender{}
	sender.AppendResponse(newChallengeResponse("https://login.windows.net/not-a-uuid"))
	_, err := azureauth.DiscoverTenantID(context.Background(), "sub-id", sender)
	c.Assert(err, gc.ErrorMatches, `authorization_uri "https://login.windows.net/not-a-uuid" does not contain tenant ID`)
}
