package logging

import (
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/require"
)

func TestSetLogSeverityFromEnv(t *testing.T) {
	saved := zerolog.GlobalLevel()
	t.Cleanup(func() { zerolog.SetGlobalLevel(saved) })

	for _, tc := range []struct {
		env      string
		expected zerolog.Level
	}{
		{"warn", zerolog.WarnLevel},
		{"debug", zerolog.DebugLevel},
		{"", zerolog.InfoLevel},
		{"loud", zerolog.InfoLevel},
	} {
		t.Setenv("LOG_LEVEL", tc.env)
		SetLogSeverityFromEnv()
		require.Equal(t, tc.expected, zerolog.GlobalLevel(), "LOG_LEVEL=%q", tc.env)
	}
}

func TestTrySetupGlobalLevel(t *testing.T) {
	saved := zerolog.GlobalLevel()
	t.Cleanup(func() { zerolog.SetGlobalLevel(saved) })

	require.NoError(t, TrySetupGlobalLevel("error"))
	require.Equal(t, zerolog.ErrorLevel, zerolog.GlobalLevel())
	require.Error(t, TrySetupGlobalLevel("loud"))
}
