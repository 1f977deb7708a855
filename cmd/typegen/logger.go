package main

import (
	"fmt"
	"io"
	"log/slog"
	"strings"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
)

// logFlags holds CLI flag names for logging configuration, grounded on MacroPower-x/log's
// Config/Flags split: naming kept separate from values so a future subcommand could prefix
// these flags without forking the type.
type logFlags struct {
	Level  string
	Format string
}

// logConfig holds CLI flag values for logging configuration, built with newLogConfig and wired
// to a command via registerLogFlags. newHandler turns the selected level/format into a
// log/slog.Handler, mirroring MacroPower-x/log's Config.NewHandler.
type logConfig struct {
	flags  logFlags
	level  string
	format string
}

func newLogConfig() *logConfig {
	return &logConfig{
		flags:  logFlags{Level: "log-level", Format: "log-format"},
		level:  "warn",
		format: "text",
	}
}

func (c *logConfig) registerFlags(flags *pflag.FlagSet) {
	flags.StringVar(&c.level, c.flags.Level, c.level, "log level: debug, info, warn, error")
	flags.StringVar(&c.format, c.flags.Format, c.format, "log format: text, json")
}

func (c *logConfig) registerCompletions(cmd *cobra.Command) error {
	err := cmd.RegisterFlagCompletionFunc(c.flags.Level,
		cobra.FixedCompletions([]string{"debug", "info", "warn", "error"}, cobra.ShellCompDirectiveNoFileComp))
	if err != nil {
		return fmt.Errorf("registering %s completion: %w", c.flags.Level, err)
	}
	err = cmd.RegisterFlagCompletionFunc(c.flags.Format,
		cobra.FixedCompletions([]string{"text", "json"}, cobra.ShellCompDirectiveNoFileComp))
	if err != nil {
		return fmt.Errorf("registering %s completion: %w", c.flags.Format, err)
	}
	return nil
}

// newHandler builds a slog.Handler from c's level/format strings, writing to w.
func (c *logConfig) newHandler(w io.Writer) (slog.Handler, error) {
	var level slog.Level
	switch strings.ToLower(c.level) {
	case "debug":
		level = slog.LevelDebug
	case "info":
		level = slog.LevelInfo
	case "warn", "warning":
		level = slog.LevelWarn
	case "error":
		level = slog.LevelError
	default:
		return nil, fmt.Errorf("unknown log level %q", c.level)
	}

	opts := &slog.HandlerOptions{Level: level}
	switch strings.ToLower(c.format) {
	case "json":
		return slog.NewJSONHandler(w, opts), nil
	case "text":
		return slog.NewTextHandler(w, opts), nil
	default:
		return nil, fmt.Errorf("unknown log format %q", c.format)
	}
}

// slogWarner adapts an *slog.Logger to the core package's typegen.Logger interface (a single
// Warnf method), the CLI's default implementation of the "caller-supplied logger" requirement.
type slogWarner struct {
	logger *slog.Logger
}

func (w slogWarner) Warnf(format string, args ...any) {
	w.logger.Warn(fmt.Sprintf(format, args...))
}
