package cli

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMCPCmd_Structure(t *testing.T) {
	assert.Equal(t, "mcp", mcpCmd.Use)

	var found bool
	for _, c := range mcpCmd.Commands() {
		if c.Name() == "serve" {
			found = true
		}
	}
	assert.True(t, found, "mcp has a serve subcommand")
}

func TestMCPServeCmd_Flags(t *testing.T) {
	port := mcpServeCmd.Flags().Lookup("port")
	require.NotNil(t, port)
	assert.Equal(t, "0", port.DefValue)
	assert.Equal(t, "p", port.Shorthand)

	m := mcpServeCmd.Flags().Lookup("metrics")
	require.NotNil(t, m)
	assert.Equal(t, "false", m.DefValue)
}

func TestMCPServeCmd_LoaderError(t *testing.T) {
	failLoader(t, errLoad)

	_, _, err := execute(t, "mcp", "serve")

	assert.ErrorIs(t, err, errLoad)
}
