package core

import (
	"testing"

	"quantumassembler/testutil"
)

func TestCoreDoesNotImportOuterLayers(t *testing.T) {
	testutil.AssertNoDirectImports(t, ".", testutil.ImportsUnder(
		"/internal/infra/",
		"/internal/persistence",
		"/internal/archive",
		"/internal/game",
		"/internal/httpapi",
		"/internal/economy",
	), "the engine must not depend on storage, wallet or transport packages")
}

func TestCoreDoesNotImportLoggingBackends(t *testing.T) {
	testutil.AssertNoDirectImports(t, ".", testutil.ImportsUnder("go.uber.org/zap", "github.com/natefinch/lumberjack"), "core logs through the Logger interface")
}
