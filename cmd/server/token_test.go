package main

import (
	"bytes"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/festy23/kurukatsu/internal/auth"
	"github.com/festy23/kurukatsu/internal/config"
)

func TestTokenCommand(t *testing.T) {
	t.Setenv("CONFIG_FILE", "")
	t.Setenv("JWT_SECRET", "command-test-secret-value")

	var out bytes.Buffer
	rootCmd.SetOut(&out)
	rootCmd.SetArgs([]string{"token", "--user-id", "U1", "--email", "u1@example.com", "--ttl", "1h"})
	require.NoError(t, rootCmd.Execute())

	claims, err := auth.NewIssuer(config.LoadAuthConfigFromEnv()).Parse(strings.TrimSpace(out.String()))
	require.NoError(t, err)
	assert.Equal(t, "U1", claims.UserID)
	assert.Equal(t, "u1@example.com", claims.Email)
}

func TestTokenCommand_WeakSecret(t *testing.T) {
	t.Setenv("CONFIG_FILE", "")
	t.Setenv("JWT_SECRET", "short")

	rootCmd.SetOut(&bytes.Buffer{})
	rootCmd.SetArgs([]string{"token", "--user-id", "U1"})
	assert.Error(t, rootCmd.Execute())
}
