// Copyright 2026 Canonical Ltd.
// Licensed under the AGPLv3, see LICENCE file for details.

// Package azure provisions lab virtual machines and their networking
// dependencies through the Azure Resource Manager APIs.
package azure

import (
	"github.com/Azure/azure-sdk-for-go/sdk/azcore"
	"github.com/Azure/azure-sdk-for-go/sdk/azcore/policy"
	"github.com/Azure/azure-sdk-for-go/sdk/azidentity"
	"github.com/juju/clock"
	"github.com/juju/errors"
	"github.com/juju/loggo/v2"
)

// Logger for the Azure provider.
var logger = loggo.GetLogger("azlab.provider.azure")

// ProviderConfig contains configuration for constructing an Environ.
type ProviderConfig struct {
	// Sender is the policy.Transporter that will be used by Azure
	// clients. If Sender is nil, the default HTTP client is used.
	Sender policy.Transporter

	// RequestInspector will be run on every request before it is
	// sent, if it is non-nil.
	RequestInspector policy.Policy

	// RetryClock is used when waiting between polling attempts.
	RetryClock clock.Clock

	// CreateTokenCredential returns the credential that authorises
	// requests for the given service principal.
	CreateTokenCredential func(appID, appPassword, tenantID string, opts azcore.ClientOptions) (azcore.TokenCredential, error)
}

// Validate validates the provider configuration.
func (cfg ProviderConfig) Validate() error {
	if cfg.RetryClock == nil {
		return errors.NotValidf("nil RetryClock")
	}
	if cfg.CreateTokenCredential == nil {
		return errors.NotValidf("nil CreateTokenCredential")
	}
	return nil
}

// NewProviderConfig returns the provider configuration used outside
// of tests: a wall clock, and client secret credentials from the SDK.
func NewProviderConfig() ProviderConfig {
	return ProviderConfig{
		RetryClock: clock.WallClock,
		CreateTokenCredential: func(appID, appPassword, tenantID string, opts azcore.ClientOptions) (azcore.TokenCredential, error) {
			return azidentity.NewClientSecretCredential(
				tenantID, appID, appPassword,
				&azidentity.ClientSecretCredentialOptions{ClientOptions: opts},
			)
		},
	}
}

// CloudSpec identifies the subscription, location and service
// principal an Environ operates on.
type CloudSpec struct {
	// SubscriptionID is the subscription to provision resources into.
	SubscriptionID string

	// TenantID is the tenant the service principal lives in. It may
	// be left empty, in which case it is discovered from the
	// subscription.
	TenantID string

	// AppID and AppPassword identify the service principal.
	AppID       string
	AppPassword string

	// Location is the Azure location resources are created in.
	Location string

	// ResourceGroup, if non-empty, pins the resource group used,
	// which is assumed to exist already.
	ResourceGroup string
}

// Validate checks the spec for missing or malformed attributes.
func (cs CloudSpec) Validate() error {
	if cs.SubscriptionID == "" {
		return errors.NotValidf("empty subscription ID")
	}
	if cs.AppID == "" {
		return errors.NotValidf("empty application ID")
	}
	if cs.AppPassword == "" {
		return errors.NotValidf("empty application password")
	}
	if cs.Location == "" {
		return errors.NotValidf("empty location")
	}
	if len(cs.ResourceGroup) > resourceNameLengthMax {
		return errors.Errorf(`resource group name %q is too long

Please choose a name of no more than %d characters.`,
			cs.ResourceGroup, resourceNameLengthMax,
		)
	}
	return nil
}
