package httpapi

import (
	"testing"

	"plantcore/testutil"
)

// The HTTP layer talks to storage only through the service; concrete drivers
// are wired in cmd/plantcored.
func TestHTTPLayerDoesNotImportDrivers(t *testing.T) {
	testutil.AssertNoDirectImports(t, ".", testutil.DriverImportForbidden,
		"httpapi must reach storage through the service")
}
