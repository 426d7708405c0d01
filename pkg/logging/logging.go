package logging

import (
	"io"
	"os"
	"path/filepath"

	"github.com/TechXTT/workhours/pkg/config"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"gopkg.in/natefinch/lumberjack.v2"
)

const timeFormat = "2006-01-02 15:04:05"

// Level maps a configured level name onto zerolog, defaulting to info.
func Level(name string) zerolog.Level {
	switch name {
	case "trace":
		return zerolog.TraceLevel
	case "debug":
		return zerolog.DebugLevel
	case "warn":
		return zerolog.WarnLevel
	case "error":
		return zerolog.ErrorLevel
	default:
		return zerolog.InfoLevel
	}
}

// Apply sets the global level and builds the process logger: a console
// writer on out plus, when cfg.File is set, a rotating plain-text file.
// The returned logger is also installed as the zerolog global.
func Apply(cfg config.LogConfig, out io.Writer) zerolog.Logger {
	zerolog.SetGlobalLevel(Level(cfg.Level))

	console := zerolog.ConsoleWriter{Out: out, TimeFormat: timeFormat}
	log.Logger = zerolog.New(console).With().Timestamp().Logger()
	if cfg.File == "" {
		return log.Logger
	}

	if err := ensureLogDir(cfg.File); err != nil {
		log.Error().Err(err).Str("path", cfg.File).Msg("Failed to prepare log directory; logging to console only")
		return log.Logger
	}

	fileWriter := &lumberjack.Logger{
		Filename:   cfg.File,
		MaxSize:    cfg.MaxSizeMB,
		MaxBackups: cfg.MaxBackups,
		MaxAge:     cfg.MaxAgeDays,
		Compress:   cfg.Compress,
	}
	fileConsole := zerolog.ConsoleWriter{
		Out:        fileWriter,
		TimeFormat: timeFormat,
		NoColor:    true,
	}

	multi := zerolog.MultiLevelWriter(console, fileConsole)
	log.Logger = zerolog.New(multi).With().Timestamp().Logger()
	return log.Logger
}

func ensureLogDir(path string) error {
	dir := filepath.Dir(path)
	if dir == "" || dir == "." {
		return nil
	}
	return os.MkdirAll(dir, 0o755)
}
