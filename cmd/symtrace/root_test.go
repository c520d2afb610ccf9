// SPDX-License-Identifier: GPL-3.0-or-later

package main

import (
	"bytes"
	"os"
	"runtime"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testExecutable(t *testing.T) string {
	t.Helper()
	if runtime.GOOS != "linux" {
		t.Skip("requires an ELF test binary")
	}
	exe, err := os.Executable()
	require.NoError(t, err)
	return exe
}

func TestRootCmdRequiresFiles(t *testing.T) {
	cmd := newRootCmd()
	cmd.SetArgs(nil)
	cmd.SetOut(&bytes.Buffer{})
	cmd.SetErr(&bytes.Buffer{})

	require.Error(t, cmd.Execute())
}

func TestRootCmdDebugSymfile(t *testing.T) {
	exe := testExecutable(t)
	var stdout, stderr bytes.Buffer
	cmd := newRootCmd()
	cmd.SetArgs([]string{"--debug-symfile", "--segments", "--lookup", "no.such.symbol", exe})
	cmd.SetOut(&stdout)
	cmd.SetErr(&stderr)

	require.NoError(t, cmd.Execute())

	assert.Contains(t, stdout.String(), "has symbols: true")
	assert.Contains(t, stdout.String(), "no.such.symbol -> NULL")
	assert.Contains(t, stdout.String(), "segment 0x")
	assert.Contains(t, stderr.String(), "msg=symReadStart")
	assert.Contains(t, stderr.String(), "msg=symReadDone")
	assert.Contains(t, stderr.String(), "msg=symFinish")
	assert.NotContains(t, stderr.String(), "installDone")
}

func TestRootCmdQuietByDefault(t *testing.T) {
	exe := testExecutable(t)
	var stdout, stderr bytes.Buffer
	cmd := newRootCmd()
	cmd.SetArgs([]string{exe})
	cmd.SetOut(&stdout)
	cmd.SetErr(&stderr)

	require.NoError(t, cmd.Execute())

	assert.Contains(t, stdout.String(), "has symbols: true")
	assert.Empty(t, stderr.String())
}

func TestRootCmdVerbose(t *testing.T) {
	exe := testExecutable(t)
	var stdout, stderr bytes.Buffer
	cmd := newRootCmd()
	cmd.SetArgs([]string{"-v", "--debug-symfile", exe})
	cmd.SetOut(&stdout)
	cmd.SetErr(&stderr)

	require.NoError(t, cmd.Execute())

	assert.Contains(t, stderr.String(), "Symfile debugging is on.")
	assert.Contains(t, stderr.String(), "msg=installDone")
	assert.Contains(t, stderr.String(), "msg=uninstallDone")
}

func TestRootCmdStats(t *testing.T) {
	exe := testExecutable(t)
	var stdout, stderr bytes.Buffer
	cmd := newRootCmd()
	cmd.SetArgs([]string{"--debug-symfile", "--stats", exe})
	cmd.SetOut(&stdout)
	cmd.SetErr(&stderr)

	require.NoError(t, cmd.Execute())

	assert.Contains(t, stdout.String(), "Number of symbols: ")
	assert.Contains(t, stderr.String(), "msg=qfPrintStats")
}

func TestRootCmdInvalidAddress(t *testing.T) {
	exe := testExecutable(t)
	cmd := newRootCmd()
	cmd.SetArgs([]string{"--addr", "nope", exe})
	cmd.SetOut(&bytes.Buffer{})
	cmd.SetErr(&bytes.Buffer{})

	err := cmd.Execute()

	require.Error(t, err)
	assert.Contains(t, err.Error(), "invalid address")
}
