package logging_test

import (
	"bytes"
	"encoding/json"
	"testing"

	"github.com/gistree/server/internal/config"
	"github.com/gistree/server/internal/logging"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"github.com/stretchr/testify/require"
)

func TestSetup(t *testing.T) {
	t.Cleanup(func() { zerolog.SetGlobalLevel(zerolog.InfoLevel) })

	t.Run("production writes json", func(t *testing.T) {
		var buf bytes.Buffer
		require.NoError(t, logging.Setup(config.EnvProduction, "debug", &buf))
		log.Debug().Str("user_id", "u-1").Msg("hello")

		var line map[string]any
		require.NoError(t, json.Unmarshal(buf.Bytes(), &line))
		require.Equal(t, "hello", line["message"])
		require.Equal(t, "u-1", line["user_id"])
		require.Equal(t, "debug", line["level"])
	})

	t.Run("level filters", func(t *testing.T) {
		var buf bytes.Buffer
		require.NoError(t, logging.Setup(config.EnvProduction, "WARN", &buf))
		log.Info().Msg("quiet")
		require.Empty(t, buf.String())
	})

	t.Run("development is human readable", func(t *testing.T) {
		var buf bytes.Buffer
		require.NoError(t, logging.Setup(config.EnvDevelopment, "", &buf))
		log.Info().Msg("started")
		require.Contains(t, buf.String(), "started")
		require.False(t, json.Valid(bytes.TrimSpace(buf.Bytes())))
	})

	t.Run("unknown level", func(t *testing.T) {
		require.Error(t, logging.Setup(config.EnvProduction, "loud", &bytes.Buffer{}))
	})
}
