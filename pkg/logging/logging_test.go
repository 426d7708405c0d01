package logging

import (
	"bytes"
	"os"
	"path/filepath"
	"testing"

	"github.com/TechXTT/workhours/pkg/config"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/require"
)

func TestLevel(t *testing.T) {
	require.Equal(t, zerolog.TraceLevel, Level("trace"))
	require.Equal(t, zerolog.WarnLevel, Level("warn"))
	require.Equal(t, zerolog.InfoLevel, Level("bogus"))
}

func TestApply_ConsoleAndFile(t *testing.T) {
	t.Cleanup(func() { zerolog.SetGlobalLevel(zerolog.DebugLevel) })

	path := filepath.Join(t.TempDir(), "logs", "workhours.log")
	var out bytes.Buffer

	logger := Apply(config.LogConfig{Level: "debug", File: path, MaxSizeMB: 1}, &out)
	logger.Debug().Int64("employee_id", 7).Msg("logged")
	logger.Trace().Msg("hidden")

	require.Contains(t, out.String(), "logged")
	require.NotContains(t, out.String(), "hidden")

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	require.Contains(t, string(data), "employee_id=7")
}
