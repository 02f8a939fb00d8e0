// Package log provides structured logging for magi.
package log

import (
	"io"
	"os"

	"github.com/rs/zerolog"
)

// Logger is the global logger instance.
var Logger zerolog.Logger

// Component loggers.
var (
	Wallet   zerolog.Logger
	Contract zerolog.Logger
	Minter   zerolog.Logger
	RPC      zerolog.Logger
)

func init() {
	// Diagnostics go to stderr so command output on stdout stays clean.
	Logger = NewConsoleLogger(os.Stderr, "warn")
	initComponentLoggers()
}

// Options configures Init.
type Options struct {
	Level string // debug | info | warn | error
	JSON  bool
	File  string // when set, JSON lines are appended here as well
	Quiet bool   // suppress console output entirely (the dashboard owns the terminal)
}

// Init initializes the global logger. When opts.File is non-empty, logs are
// written to the console (unless Quiet) and to the file as JSON.
func Init(opts Options) error {
	var console io.Writer = os.Stderr
	if !opts.JSON {
		console = zerolog.ConsoleWriter{Out: os.Stderr, TimeFormat: "15:04:05"}
	}
	if opts.Quiet {
		console = io.Discard
	}

	out := console
	if opts.File != "" {
		f, err := os.OpenFile(opts.File, os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0o600)
		if err != nil {
			return err
		}
		out = zerolog.MultiLevelWriter(console, f)
	}

	Logger = zerolog.New(out).
		Level(parseLevel(opts.Level)).
		With().
		Timestamp().
		Logger()

	initComponentLoggers()
	return nil
}

// NewConsoleLogger creates a colored console logger.
func NewConsoleLogger(w io.Writer, level string) zerolog.Logger {
	output := zerolog.ConsoleWriter{
		Out:        w,
		TimeFormat: "15:04:05",
	}
	return zerolog.New(output).
		Level(parseLevel(level)).
		With().
		Timestamp().
		Logger()
}

// SetOutput replaces the global logger with one writing JSON to w.
// Intended for tests.
func SetOutput(w io.Writer, level string) {
	Logger = zerolog.New(w).Level(parseLevel(level))
	initComponentLoggers()
}

func parseLevel(level string) zerolog.Level {
	switch level {
	case "debug":
		return zerolog.DebugLevel
	case "info":
		return zerolog.InfoLevel
	case "warn":
		return zerolog.WarnLevel
	case "error":
		return zerolog.ErrorLevel
	default:
		return zerolog.InfoLevel
	}
}

func initComponentLoggers() {
	Wallet = WithComponent("wallet")
	Contract = WithComponent("contract")
	Minter = WithComponent("minter")
	RPC = WithComponent("rpc")
}

// WithComponent returns a logger with a component field.
func WithComponent(name string) zerolog.Logger {
	return Logger.With().Str("component", name).Logger()
}
