package main

import (
	"context"
	"fmt"
	"io"
	"log/slog"

	"github.com/urfave/cli/v3"
)

type loggerKey struct{}

func loggingFlags() []cli.Flag {
	return []cli.Flag{
		&cli.StringFlag{
			Name:  "log-level",
			Usage: "log level (debug, info, warn, error)",
			Value: "info",
		},
		&cli.StringFlag{
			Name:  "log-format",
			Usage: "log format (text, json)",
			Value: "text",
		},
	}
}

// setupLogging builds the process logger from the global flags and stores it
// in the command context.
func setupLogging(ctx context.Context, cmd *cli.Command) (context.Context, error) {
	level, err := parseLevel(cmd.String("log-level"))
	if err != nil {
		return ctx, err
	}
	logger, err := newLogger(stderr(cmd), level, cmd.String("log-format"))
	if err != nil {
		return ctx, err
	}
	return context.WithValue(ctx, loggerKey{}, logger), nil
}

func newLogger(w io.Writer, level slog.Level, format string) (*slog.Logger, error) {
	opts := &slog.HandlerOptions{Level: level}
	switch format {
	case "text", "":
		return slog.New(slog.NewTextHandler(w, opts)), nil
	case "json":
		return slog.New(slog.NewJSONHandler(w, opts)), nil
	default:
		return nil, fmt.Errorf("unknown log format %q (want text or json)", format)
	}
}

func parseLevel(s string) (slog.Level, error) {
	var level slog.Level
	if err := level.UnmarshalText([]byte(s)); err != nil {
		return 0, fmt.Errorf("unknown log level %q: %w", s, err)
	}
	return level, nil
}

// loggerFrom returns the logger installed by setupLogging, or a logger that
// discards everything.
func loggerFrom(ctx context.Context) *slog.Logger {
	if l, ok := ctx.Value(loggerKey{}).(*slog.Logger); ok {
		return l
	}
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}
