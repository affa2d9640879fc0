package cli

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestEmbedBackfillCmd_Use(t *testing.T) {
	assert.Equal(t, "backfill", embedBackfillCmd.Use)
}

func TestEmbedBackfillCmd_SweepsAllTablesByDefault(t *testing.T) {
	cleanup := setupTestServices()
	defer cleanup()

	buf := new(bytes.Buffer)
	rootCmd.SetOut(buf)
	rootCmd.SetArgs([]string{"embed", "backfill"})
	defer func() {
		rootCmd.SetArgs(nil)
	}()

	err := rootCmd.Execute()

	require.NoError(t, err)
	assert.Contains(t, buf.String(), "memories: 3 embedded")
	assert.Contains(t, buf.String(), "messages: 3 embedded")
	assert.Contains(t, buf.String(), "Total: 6 embedded")
}

func TestEmbedBackfillCmd_SingleTable(t *testing.T) {
	cleanup := setupTestServices()
	defer cleanup()

	buf := new(bytes.Buffer)
	rootCmd.SetOut(buf)
	rootCmd.SetArgs([]string{"embed", "backfill", "--table", "memories"})
	defer func() {
		rootCmd.SetArgs(nil)
		backfillTable = "" // Reset flag
	}()

	err := rootCmd.Execute()

	require.NoError(t, err)
	assert.Contains(t, buf.String(), "memories: 3 embedded")
	assert.NotContains(t, buf.String(), "Total:")
}

func TestEmbedBackfillCmd_NilWorkerFails(t *testing.T) {
	cleanup := setupTestServices()
	defer cleanup()
	embedWorker = nil

	buf := new(bytes.Buffer)
	rootCmd.SetOut(buf)
	rootCmd.SetErr(buf)
	rootCmd.SetArgs([]string{"embed", "backfill"})
	defer func() {
		rootCmd.SetArgs(nil)
	}()

	err := rootCmd.Execute()

	require.Error(t, err)
	assert.Contains(t, err.Error(), "not configured")
}
