package cli

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mnemo-labs/mnemo-cli/internal/core/domain"
)

func TestGraphExtractCmd_Use(t *testing.T) {
	assert.Equal(t, "extract", graphExtractCmd.Use)
}

func TestGraphExtractCmd_Executes(t *testing.T) {
	cleanup := setupTestServices()
	defer cleanup()

	buf := new(bytes.Buffer)
	rootCmd.SetOut(buf)
	rootCmd.SetArgs([]string{"graph", "extract"})
	defer func() {
		rootCmd.SetArgs(nil)
	}()

	err := rootCmd.Execute()

	require.NoError(t, err)
	assert.Contains(t, buf.String(), "Extracting from 1 chunks")
	assert.Contains(t, buf.String(), "Resolved 1 entities")
}

func TestGraphExtractCmd_DryRun(t *testing.T) {
	cleanup := setupTestServices()
	defer cleanup()

	buf := new(bytes.Buffer)
	rootCmd.SetOut(buf)
	rootCmd.SetArgs([]string{"graph", "extract", "--dry-run"})
	defer func() {
		rootCmd.SetArgs(nil)
		extractDryRun = false // Reset flag
	}()

	err := rootCmd.Execute()

	require.NoError(t, err)
	assert.Contains(t, buf.String(), "Would resolve")
}

func TestGraphExtractCmd_NoChunks(t *testing.T) {
	cleanup := setupTestServices()
	defer cleanup()
	chunkStore = &mockChunkStore{}

	buf := new(bytes.Buffer)
	rootCmd.SetOut(buf)
	rootCmd.SetArgs([]string{"graph", "extract"})
	defer func() {
		rootCmd.SetArgs(nil)
	}()

	err := rootCmd.Execute()

	require.NoError(t, err)
	assert.Contains(t, buf.String(), "No chunks found")
}

func TestGraphShowCmd_Executes(t *testing.T) {
	cleanup := setupTestServices()
	defer cleanup()

	buf := new(bytes.Buffer)
	rootCmd.SetOut(buf)
	rootCmd.SetArgs([]string{"graph", "show", "Ada"})
	defer func() {
		rootCmd.SetArgs(nil)
	}()

	err := rootCmd.Execute()

	require.NoError(t, err)
	assert.Contains(t, buf.String(), "Ada (person)")
	assert.Contains(t, buf.String(), "No relationships recorded")
}

func TestGraphShowCmd_UnknownEntity(t *testing.T) {
	cleanup := setupTestServices()
	defer cleanup()
	graphService = &mockGraphService{err: domain.ErrNotFound}

	buf := new(bytes.Buffer)
	rootCmd.SetOut(buf)
	rootCmd.SetArgs([]string{"graph", "show", "nobody"})
	defer func() {
		rootCmd.SetArgs(nil)
	}()

	err := rootCmd.Execute()

	require.NoError(t, err)
	assert.Contains(t, buf.String(), `No entity named "nobody"`)
}

func TestGraphCmd_NilServiceFails(t *testing.T) {
	cleanup := setupTestServices()
	defer cleanup()
	graphService = nil

	buf := new(bytes.Buffer)
	rootCmd.SetOut(buf)
	rootCmd.SetErr(buf)
	rootCmd.SetArgs([]string{"graph", "extract"})
	defer func() {
		rootCmd.SetArgs(nil)
	}()

	err := rootCmd.Execute()

	require.Error(t, err)
	assert.Contains(t, err.Error(), "not configured")
}
