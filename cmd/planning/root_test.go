package main

import (
	"bytes"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mla/planning-backend/internal/app"
)

func TestRootCmd_Version(t *testing.T) {
	cmd := newRootCmd()
	var out bytes.Buffer
	cmd.SetOut(&out)
	cmd.SetArgs([]string{"version"})

	require.NoError(t, cmd.Execute())
	assert.Equal(t, app.BuildVersion(), strings.TrimSpace(out.String()))
}

func TestRootCmd_Subcommands(t *testing.T) {
	cmd := newRootCmd()

	for _, path := range [][]string{
		{"serve"},
		{"migrate", "up"},
		{"migrate", "down"},
		{"migrate", "status"},
		{"user", "create"},
		{"user", "promote"},
		{"version"},
	} {
		found, _, err := cmd.Find(path)
		require.NoError(t, err, "path %v", path)
		assert.Equal(t, path[len(path)-1], found.Name())
	}
}

func TestUserCreateCmd_RequiresFlags(t *testing.T) {
	cmd := newRootCmd()
	cmd.SetOut(&bytes.Buffer{})
	cmd.SetErr(&bytes.Buffer{})
	cmd.SetArgs([]string{"user", "create", "--email", "a@mla.org"})

	err := cmd.Execute()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "required flag")
}
