package config

import (
	"errors"
	"log/slog"
	"strings"

	"github.com/simp-lee/logger"
)

// SetupLogger builds the process logger from cfg, installs it as the slog
// default and returns it. extra options are applied last, e.g. a console
// writer in tests. The caller must Close the returned logger.
func SetupLogger(cfg *LogConfig, extra ...logger.Option) (*logger.Logger, error) {
	if cfg == nil {
		return nil, errors.New("log config is nil")
	}

	log, err := logger.New(append(loggerOptions(cfg), extra...)...)
	if err != nil {
		return nil, err
	}
	log.SetDefault()
	return log, nil
}

// loggerOptions translates cfg. Records always pass through the context
// middleware so request_id and user_id attached to a request context show
// up on every line logged with it.
func loggerOptions(cfg *LogConfig) []logger.Option {
	format := parseFormat(cfg.Format)
	color := cfg.Color == nil || *cfg.Color

	opts := []logger.Option{
		logger.WithLevel(parseLevel(cfg.Level)),
		logger.WithMiddleware(logger.ContextMiddleware()),
		logger.WithConsoleFormat(format),
		logger.WithConsoleColor(color),
	}
	if cfg.FilePath == "" {
		return opts
	}

	opts = append(opts, logger.WithFilePath(cfg.FilePath), logger.WithFileFormat(format))
	for _, rotation := range []struct {
		set bool
		opt func() logger.Option
	}{
		{cfg.MaxSizeMB > 0, func() logger.Option { return logger.WithMaxSizeMB(cfg.MaxSizeMB) }},
		{cfg.RetentionDays > 0, func() logger.Option { return logger.WithRetentionDays(cfg.RetentionDays) }},
		{cfg.MaxBackups > 0, func() logger.Option { return logger.WithMaxBackups(cfg.MaxBackups) }},
		{cfg.CompressRotated != nil, func() logger.Option { return logger.WithCompressRotated(*cfg.CompressRotated) }},
	} {
		if rotation.set {
			opts = append(opts, rotation.opt())
		}
	}
	return opts
}

// parseFormat maps "text" and "json"; anything else gets the colored
// console layout.
func parseFormat(s string) logger.OutputFormat {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "text":
		return logger.FormatText
	case "json":
		return logger.FormatJSON
	default:
		return logger.FormatCustom
	}
}

// parseLevel accepts slog level names, including offsets such as
// "warn+2", and falls back to info.
func parseLevel(s string) slog.Level {
	var level slog.Level
	if err := level.UnmarshalText([]byte(strings.TrimSpace(s))); err != nil {
		return slog.LevelInfo
	}
	return level
}
