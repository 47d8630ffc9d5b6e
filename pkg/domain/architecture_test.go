package domain

import (
	"testing"

	"quantumassembler/testutil"
)

// The domain layer is shared by every backend and must stay stdlib only.
func TestDomainImportsStdlibOnly(t *testing.T) {
	testutil.AssertNoDirectImports(t, ".", testutil.NonStdlibForbidden("quantumassembler/"), "domain must only import the standard library")
}
