// Copyright 2026 Canonical Ltd.
// Licensed under the AGPLv3, see LICENCE file for details.

// Package errorutils classifies the errors returned by Azure Resource
// Manager clients.
package errorutils

import (
	stderrors "errors"
	"net/http"

	"github.com/Azure/azure-sdk-for-go/sdk/azcore"
	"github.com/juju/errors"
)

// asResponseError returns the *azcore.ResponseError in err's chain,
// or nil if there is none.
func asResponseError(err error) *azcore.ResponseError {
	var responseError *azcore.ResponseError
	if stderrors.As(errors.Cause(err), &responseError) {
		return responseError
	}
	return nil
}

// StatusCode returns the HTTP status code of the response that caused
// err, or zero if err did not come from a service response.
func StatusCode(err error) int {
	if responseError := asResponseError(err); responseError != nil {
		return responseError.StatusCode
	}
	return 0
}

// ErrorCode returns the Azure error code of the response that caused
// err, or an empty string if there is none.
func ErrorCode(err error) string {
	if responseError := asResponseError(err); responseError != nil {
		return responseError.ErrorCode
	}
	return ""
}

// IsNotFoundError reports whether err was caused by a 404 response or
// carries juju's NotFound semantics.
func IsNotFoundError(err error) bool {
	return StatusCode(err) == http.StatusNotFound || errors.Is(err, errors.NotFound)
}

// IsConflictError reports whether err was caused by a 409 response.
func IsConflictError(err error) bool {
	return StatusCode(err) == http.StatusConflict
}

// IsForbiddenError reports whether err was caused by a 403 response.
func IsForbiddenError(err error) bool {
	return StatusCode(err) == http.StatusForbidden
}

// IsUnauthorizedError reports whether err was caused by a 401 response.
func IsUnauthorizedError(err error) bool {
	return StatusCode(err) == http.StatusUnauthorized
}

// quotaErrorCodes are the service error codes that indicate the
// subscription cannot fit another machine of the requested size.
var quotaErrorCodes = []string{
	"OperationNotAllowed",
	"QuotaExceeded",
}

// IsQuotaExceededError reports whether err indicates that a quota or
// allowance on the subscription has been exhausted.
func IsQuotaExceededError(err error) bool {
	code := ErrorCode(err)
	for _, quotaCode := range quotaErrorCodes {
		if code == quotaCode {
			return true
		}
	}
	return false
}
