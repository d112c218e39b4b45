package bootstrap

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	coreconfig "github.com/m3rciful/moodprompt/core/config"
	"github.com/m3rciful/moodprompt/core/telegram/state"
)

func TestRunBuildsSessionStore(t *testing.T) {
	cfg := &coreconfig.Config{}
	cfg.Telegram.Token = "123:abc"
	require.NoError(t, coreconfig.Normalize(cfg))

	var got state.MemoryOptions
	res, err := Run(Options{
		Config:     cfg,
		LoggerInit: func(*coreconfig.Config) error { return nil },
		NewStore: func(opts state.MemoryOptions) state.Store {
			got = opts
			return state.NewMemoryStore(opts)
		},
	})
	require.NoError(t, err)
	require.NotNil(t, res.Sessions)
	assert.Equal(t, coreconfig.DefaultSessionTTL, got.TTL)
	assert.Equal(t, coreconfig.DefaultCleanupInterval, got.CleanupInterval)
}

func TestRunErrors(t *testing.T) {
	_, err := Run(Options{})
	assert.Error(t, err)

	boom := errors.New("boom")
	_, err = Run(Options{
		Config:     &coreconfig.Config{},
		LoggerInit: func(*coreconfig.Config) error { return boom },
	})
	assert.ErrorIs(t, err, boom)
}
