// Copyright 2026 Canonical Ltd.
// Licensed under the AGPLv3, see LICENCE file for details.

// Package azureauth deals with the parts of authentication that the
// SDK does not cover, such as discovering which tenant a subscription
// belongs to.
package azureauth

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"regexp"
	"strings"

	"github.com/Azure/azure-sdk-for-go/sdk/azcore/policy"
	"github.com/juju/errors"
	"github.com/juju/loggo/v2"
	"github.com/juju/utils/v4"
)

var logger = loggo.GetLogger("azlab.provider.azure.azureauth")

// resourceManagerEndpoint is the public cloud Resource Manager
// endpoint. Sovereign clouds are not supported.
const resourceManagerEndpoint = "https://management.azure.com"

const apiVersion = "2022-12-01"

var authorizationUriRegexp = regexp.MustCompile(`authorization_uri="([^"]*)"`)

// DiscoverTenantID returns the tenant ID for the given subscription, by
// making an unauthenticated request to the Resource Manager API and
// extracting the tenant ID from the WWW-Authenticate header in the
// challenge response.
func DiscoverTenantID(ctx context.Context, subscriptionID string, sender policy.Transporter) (string, error) {
	logger.Debugf("discovering tenant ID for subscription %q", subscriptionID)
	if sender == nil {
		sender = http.DefaultClient
	}
	reqURL := fmt.Sprintf(
		"%s/subscriptions/%s?api-version=%s",
		resourceManagerEndpoint, url.PathEscape(subscriptionID), apiVersion,
	)
	req, err := http.NewRequestWithContext(ctx, "GET", reqURL, nil)
	if err != nil {
		return "", errors.Trace(err)
	}
	resp, err := sender.Do(req)
	if err != nil {
		return "", errors.Annotate(err, "getting subscription")
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusUnauthorized {
		return "", errors.Errorf("expected unauthorized error response, got %d", resp.StatusCode)
	}
	header := resp.Header.Get("WWW-Authenticate")
	if header == "" {
		return "", errors.New("no WWW-Authenticate header in response")
	}
	match := authorizationUriRegexp.FindStringSubmatch(header)
	if match == nil {
		return "", errors.Errorf("unexpected WWW-Authenticate header format: %q", header)
	}
	authURI, err := url.Parse(match[1])
	if err != nil {
		return "", errors.Annotatef(err, "parsing authorization_uri %q", match[1])
	}
	tenantID := strings.TrimPrefix(authURI.Path, "/")
	if !utils.IsValidUUIDString(tenantID) {
		return "", errors.Errorf("authorization_uri %q does not contain tenant ID", match[1])
	}
	return tenantID, nil
}
