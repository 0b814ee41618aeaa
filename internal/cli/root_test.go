package cli

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRootCommand(t *testing.T) {
	cmd := NewRootCommand()
	require.NotNil(t, cmd)
	assert.Equal(t, "audioctl", cmd.Use)
	assert.Contains(t, cmd.Long, "catalog file")
}

func TestCommandPresence(t *testing.T) {
	cmd := NewRootCommand()
	commands := [][]string{
		{"learn"},
		{"learn-fx"},
		{"enhancements", "enable"},
		{"enhancements", "disable"},
		{"enhancements", "state"},
		{"fx", "enable"},
		{"fx", "disable"},
		{"fx", "state"},
		{"fx", "list"},
		{"fx", "delete"},
		{"supported"},
		{"discover"},
		{"sessions", "list"},
		{"sessions", "show"},
		{"catalog", "path"},
		{"catalog", "show"},
		{"test"},
	}

	for _, path := range commands {
		name := path[len(path)-1]
		t.Run(name, func(t *testing.T) {
			subCmd, _, err := cmd.Find(path)
			require.NoError(t, err, "Command %v should exist", path)
			require.NotNil(t, subCmd)
			assert.Equal(t, name, subCmd.Name())
		})
	}
}

func TestGlobalFlags(t *testing.T) {
	cmd := NewRootCommand()

	verboseFlag := cmd.PersistentFlags().Lookup("verbose")
	require.NotNil(t, verboseFlag)
	assert.Equal(t, "v", verboseFlag.Shorthand)
	assert.Equal(t, "false", verboseFlag.DefValue)

	formatFlag := cmd.PersistentFlags().Lookup("format")
	require.NotNil(t, formatFlag)
	assert.Equal(t, "text", formatFlag.DefValue)

	for _, name := range []string{"config", "catalog", "registry-fixture", "session-db"} {
		f := cmd.PersistentFlags().Lookup(name)
		require.NotNil(t, f, name)
		assert.Equal(t, "", f.DefValue, name)
	}
}

func TestEndpointFlags(t *testing.T) {
	cmd := NewRootCommand()

	for _, path := range [][]string{{"learn"}, {"enhancements", "enable"}, {"fx", "state"}, {"supported"}, {"discover"}} {
		sub, _, err := cmd.Find(path)
		require.NoError(t, err)

		id := sub.Flags().Lookup("id")
		require.NotNil(t, id, "%v --id", path)
		assert.Equal(t, "", id.DefValue)

		flow := sub.Flags().Lookup("flow")
		require.NotNil(t, flow, "%v --flow", path)
		assert.Equal(t, "playback", flow.DefValue)
	}
}

func TestStateCommandFlags(t *testing.T) {
	cmd := NewRootCommand()
	for _, path := range [][]string{{"enhancements", "state"}, {"fx", "state"}} {
		sub, _, err := cmd.Find(path)
		require.NoError(t, err)

		fast := sub.Flags().Lookup("fast")
		require.NotNil(t, fast)
		assert.Equal(t, "false", fast.DefValue)
	}
}

func TestLearnEffectCommandFlags(t *testing.T) {
	cmd := NewRootCommand()
	sub, _, err := cmd.Find([]string{"learn-fx"})
	require.NoError(t, err)

	singlePass := sub.Flags().Lookup("single-pass")
	require.NotNil(t, singlePass)
	assert.Equal(t, "false", singlePass.DefValue)
}

func TestTestCommandFlags(t *testing.T) {
	cmd := NewRootCommand()
	testCmd, _, err := cmd.Find([]string{"test"})
	require.NoError(t, err)

	updateFlag := testCmd.Flags().Lookup("update")
	require.NotNil(t, updateFlag)
	assert.Equal(t, "false", updateFlag.DefValue)

	require.NotNil(t, testCmd.Flags().Lookup("filter"))
	require.NotNil(t, testCmd.Flags().Lookup("golden"))
}

func TestFormatValidation(t *testing.T) {
	assert.True(t, isValidFormat("text"))
	assert.True(t, isValidFormat("json"))

	assert.False(t, isValidFormat("xml"))
	assert.False(t, isValidFormat(""))
	assert.False(t, isValidFormat("TEXT"))
}

func TestFormatValidationIntegration(t *testing.T) {
	cmd := NewRootCommand()
	cmd.SetArgs([]string{"--format", "invalid", "catalog", "path"})

	err := cmd.Execute()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "invalid format")
	assert.Equal(t, ExitCommandError, GetExitCode(err))
}
