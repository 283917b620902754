// Copyright 2026 Canonical Ltd.
// Licensed under the AGPLv3, see LICENCE file for details.

// Package version acts as guardian of the current azlab version number.
package version

import (
	semversion "github.com/juju/version/v2"
)

// The presence and format of this constant is very important: the
// release packaging recipes use this value for the version number of
// the package.
const version = "0.1.0"

// Current gives the version of the currently running azlab.
var Current = semversion.MustParse(version)
