// AngelaMos | 2026
// server_test.go

package server

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/carterperez-dev/prepvault/internal/config"
)

type flag struct{ shutdown bool }

func (f *flag) SetShutdown(v bool) { f.shutdown = v }

func TestShutdownFlipsHealthBeforeStopping(t *testing.T) {
	f := &flag{}
	srv := New(Config{
		ServerConfig:  config.ServerConfig{Host: "127.0.0.1", Port: 0},
		HealthHandler: f,
	})

	require.NoError(t, srv.Shutdown(context.Background(), 0))
	assert.True(t, f.shutdown)
}

func TestShutdownHonoursDeadlineDuringDrain(t *testing.T) {
	srv := New(Config{ServerConfig: config.ServerConfig{Host: "127.0.0.1"}})

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	err := srv.Shutdown(ctx, time.Minute)
	assert.ErrorIs(t, err, context.Canceled)
}
