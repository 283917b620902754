// Copyright 2026 Canonical Ltd.
// Licensed under the AGPLv3, see LICENCE file for details.

// Package osenv resolves the environment variables that azlab reads
// its subscription, credentials and defaults from.
package osenv

import (
	"fmt"
	"os"

	"github.com/juju/errors"
)

const (
	// ActiveSubscriptionEnvKey names the subscription entry whose
	// service principal variables are read. The value is interpolated
	// verbatim into the credential variable names.
	ActiveSubscriptionEnvKey = "INSTRUQT_AZURE_SUBSCRIPTIONS"

	// SubscriptionIDEnvKey holds the Azure subscription ID that
	// resources are provisioned into.
	SubscriptionIDEnvKey = "AZURE_SUBSCRIPTION_ID"

	// LocationEnvKey optionally overrides the Azure location.
	LocationEnvKey = "AZURE_LOCATION"

	// ResourceGroupEnvKey optionally pins an existing resource group.
	ResourceGroupEnvKey = "AZURE_RESOURCE_GROUP"

	// LoggingConfigEnvKey holds the loggo specification applied at
	// startup, e.g. "azlab=DEBUG".
	LoggingConfigEnvKey = "AZLAB_LOGGING_CONFIG"

	// DefaultLocation is used when LocationEnvKey is not set.
	DefaultLocation = "eastus"
)

const (
	credentialAttrAppID       = "SPN_ID"
	credentialAttrAppPassword = "SPN_PASSWORD"
	credentialAttrTenantID    = "TENANT_ID"
)

// Credential holds the service principal attributes read from the
// environment. TenantID may be empty, in which case it is discovered
// from the subscription.
type Credential struct {
	AppID       string
	AppPassword string
	TenantID    string
}

// CredentialEnvKey returns the name of the variable holding the given
// credential attribute for a subscription entry.
func CredentialEnvKey(subscription, attr string) string {
	return fmt.Sprintf("INSTRUQT_AZURE_SUBSCRIPTION_%s_%s", subscription, attr)
}

// ReadCredential reads the service principal credential for the active
// subscription entry. A missing required variable results in an error
// satisfying errors.NotFound.
func ReadCredential() (*Credential, error) {
	subscription := os.Getenv(ActiveSubscriptionEnvKey)
	if subscription == "" {
		return nil, errors.NotFoundf("environment variable %q", ActiveSubscriptionEnvKey)
	}
	appID, err := getRequired(CredentialEnvKey(subscription, credentialAttrAppID))
	if err != nil {
		return nil, errors.Trace(err)
	}
	appPassword, err := getRequired(CredentialEnvKey(subscription, credentialAttrAppPassword))
	if err != nil {
		return nil, errors.Trace(err)
	}
	return &Credential{
		AppID:       appID,
		AppPassword: appPassword,
		TenantID:    os.Getenv(CredentialEnvKey(subscription, credentialAttrTenantID)),
	}, nil
}

// SubscriptionID returns the subscription ID to provision into.
func SubscriptionID() (string, error) {
	return getRequired(SubscriptionIDEnvKey)
}

// Location returns the configured Azure location, or DefaultLocation.
func Location() string {
	if location := os.Getenv(LocationEnvKey); location != "" {
		return location
	}
	return DefaultLocation
}

// ResourceGroup returns the configured resource group name, if any.
func ResourceGroup() string {
	return os.Getenv(ResourceGroupEnvKey)
}

func getRequired(key string) (string, error) {
	if value := os.Getenv(key); value != "" {
		return value, nil
	}
	return "", errors.NotFoundf("environment variable %q", key)
}
