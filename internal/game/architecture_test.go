package game

import (
	"testing"

	"quantumassembler/testutil"
)

func TestGameDoesNotImportBackends(t *testing.T) {
	testutil.AssertNoDirectImports(t, ".", testutil.ImportsUnder("/internal/infra/", "/internal/httpapi"), "game works against domain.SaveStore and the archive facade")
}
