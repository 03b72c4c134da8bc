package cli

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestVersionCmd_Use(t *testing.T) {
	assert.Equal(t, "version", versionCmd.Use)
}

func TestVersionCmd_Executes(t *testing.T) {
	originalVersion := version
	version = "test-version-1.0.0"
	defer func() { version = originalVersion }()

	out, err := runCLI(t, "", "version")

	assert.NoError(t, err)
	assert.Contains(t, out, "pdfsplit version test-version-1.0.0")
}

func TestRootCmd_RejectsBadLogFormat(t *testing.T) {
	_, err := runCLI(t, "", "--log-format", "xml", "version")
	assert.Error(t, err)
}
