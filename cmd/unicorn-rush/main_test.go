package main

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestEnvConfiguresUnsetFlags(t *testing.T) {
	t.Setenv("UNICORN_SERVER", "http://game.example:9000")
	t.Setenv("UNICORN_WS_SERVER", "ws://game.example:9000")
	t.Setenv("UNICORN_STORE", "/tmp/unicorn-test.db")

	cfg := &config{}
	cmd := newCmd(cfg)
	require.NoError(t, cmd.ParseFlags(nil))

	assert.Equal(t, "http://game.example:9000", cfg.server)
	assert.Equal(t, "ws://game.example:9000", cfg.wsServer)
	assert.Equal(t, "/tmp/unicorn-test.db", cfg.storePath)
}

func TestFlagOverridesEnv(t *testing.T) {
	t.Setenv("UNICORN_SERVER", "http://game.example:9000")

	cfg := &config{}
	cmd := newCmd(cfg)
	require.NoError(t, cmd.ParseFlags([]string{"--server", "http://localhost:8000"}))

	assert.Equal(t, "http://localhost:8000", cfg.server)
}
