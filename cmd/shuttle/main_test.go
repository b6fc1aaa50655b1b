package main

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// execute runs the command tree with args against in-memory storage.
func execute(t *testing.T, args ...string) (string, error) {
	t.Helper()
	t.Setenv("STORE_DRIVER", "memory")
	t.Setenv("JWT_SECRET", "test-secret")
	t.Setenv("TIMEZONE", "UTC")
	t.Setenv("LOG_LEVEL", "error")

	var out bytes.Buffer
	rootCmd.SetOut(&out)
	rootCmd.SetErr(&out)
	rootCmd.SetArgs(append([]string{"--env-file", filepath.Join(t.TempDir(), "missing.env")}, args...))
	t.Cleanup(func() { rootCmd.SetArgs(nil) })

	err := rootCmd.Execute()
	return out.String(), err
}

func TestRootCmd_registersSubcommands(t *testing.T) {
	var names []string
	for _, c := range rootCmd.Commands() {
		names = append(names, c.Name())
	}
	for _, want := range []string{"serve", "migrate", "seed", "report", "export", "import", "reset"} {
		assert.Contains(t, names, want)
	}
}

func TestResetCmd_requiresConfirmation(t *testing.T) {
	_, err := execute(t, "reset")

	require.Error(t, err)
	assert.Contains(t, err.Error(), "--yes")
}

func TestReportCmd_writesFile(t *testing.T) {
	dir := t.TempDir()

	out, err := execute(t, "report", "--period", "custom", "--from", "2025-01-05", "--to", "2025-01-20", "--format", "csv", "--out", dir)
	require.NoError(t, err)

	path := strings.TrimSpace(out)
	assert.Equal(t, dir, filepath.Dir(path))
	assert.True(t, strings.HasPrefix(filepath.Base(path), "Reporte_Transporte_05-01-2025_-_20-01-2025_"), path)
	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.NotEmpty(t, data)
}

func TestReportCmd_rejectsBadInput(t *testing.T) {
	_, err := execute(t, "report", "--format", "docx", "--from", "", "--to", "")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "--format")

	_, err = execute(t, "report", "--format", "csv", "--from", "05/01/2025")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "--from")
}

func TestParseDay(t *testing.T) {
	caracas := time.FixedZone("VET", -4*60*60)

	got, err := parseDay("2025-01-05", caracas)
	require.NoError(t, err)
	assert.True(t, time.Date(2025, 1, 5, 0, 0, 0, 0, caracas).Equal(got))

	got, err = parseDay("", caracas)
	require.NoError(t, err)
	assert.True(t, got.IsZero())
}
