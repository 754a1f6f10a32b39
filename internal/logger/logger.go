package logger

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"time"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

// Logger wraps zerolog.Logger with additional functionality
type Logger struct {
	zerolog.Logger
	level  zerolog.Level
	output io.Writer
}

// Config represents logger configuration
type Config struct {
	// Log level (trace, debug, info, warn, error)
	Level string `toml:"level"`

	// Output destination (stdout, stderr, or file path)
	Output string `toml:"output"`

	// Enable colored output (only for terminal output)
	Color bool `toml:"color"`

	// Enable timestamp in logs
	Timestamp bool `toml:"timestamp"`

	// Enable caller information (file:line)
	Caller bool `toml:"caller"`
}

// DefaultConfig returns default logger configuration. The default output is a
// log file rather than stderr: while the search TUI is running the terminal
// belongs to it, and the invoking shell widget reads nothing but the output
// file, so diagnostics must never land on the process streams.
func DefaultConfig() *Config {
	return &Config{
		Level:     "info",
		Output:    DefaultLogPath(),
		Color:     false,
		Timestamp: true,
		Caller:    false,
	}
}

// DefaultLogPath returns the default log file location, preferring
// $XDG_STATE_HOME and falling back to ~/.local/state.
func DefaultLogPath() string {
	stateDir := os.Getenv("XDG_STATE_HOME")
	if stateDir == "" {
		homeDir, err := os.UserHomeDir()
		if err != nil {
			return "stderr"
		}
		stateDir = filepath.Join(homeDir, ".local", "state")
	}
	return filepath.Join(stateDir, "termsearch", "termsearch.log")
}

// LevelFromEnv returns the log level requested via the TERMSEARCH_LOG
// environment variable, or the fallback when the variable is unset or invalid.
func LevelFromEnv(fallback string) string {
	val := os.Getenv("TERMSEARCH_LOG")
	if val == "" {
		return fallback
	}
	if _, err := zerolog.ParseLevel(val); err != nil {
		return fallback
	}
	return val
}

var globalLogger *Logger

// Init initializes the global logger with the provided configuration
func Init(config *Config) error {
	if config == nil {
		config = DefaultConfig()
	}

	// Parse log level
	level, err := zerolog.ParseLevel(config.Level)
	if err != nil {
		return fmt.Errorf("invalid log level %s: %w", config.Level, err)
	}

	// Configure output
	var output io.Writer
	switch config.Output {
	case "stdout":
		output = os.Stdout
	case "stderr":
		output = os.Stderr
	default:
		// Assume it's a file path
		if err := os.MkdirAll(filepath.Dir(config.Output), 0755); err != nil {
			return fmt.Errorf("failed to create log directory: %w", err)
		}

		file, err := os.OpenFile(config.Output, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0644)
		if err != nil {
			return fmt.Errorf("failed to open log file: %w", err)
		}
		output = file
	}

	// Configure console writer for terminal output
	if (config.Output == "stdout" || config.Output == "stderr") && config.Color {
		output = zerolog.ConsoleWriter{
			Out:        output,
			TimeFormat: time.RFC3339,
			NoColor:    !config.Color,
		}
	}

	// Create logger
	logger := zerolog.New(output).Level(level)

	if config.Timestamp {
		logger = logger.With().Timestamp().Logger()
	}

	if config.Caller {
		logger = logger.With().Caller().Logger()
	}

	globalLogger = &Logger{
		Logger: logger,
		level:  level,
		output: output,
	}

	// Set global logger
	log.Logger = globalLogger.Logger

	return nil
}

// GetLogger returns the global logger instance
func GetLogger() *Logger {
	if globalLogger == nil {
		// Initialize with defaults if not already done
		_ = Init(DefaultConfig())
	}
	return globalLogger
}

// WithField adds a field to the logger context
func (l *Logger) WithField(key string, value interface{}) *Logger {
	return &Logger{
		Logger: l.Logger.With().Interface(key, value).Logger(),
		level:  l.level,
		output: l.output,
	}
}

// WithFields adds multiple fields to the logger context
func (l *Logger) WithFields(fields map[string]interface{}) *Logger {
	ctx := l.Logger.With()
	for key, value := range fields {
		ctx = ctx.Interface(key, value)
	}
	return &Logger{
		Logger: ctx.Logger(),
		level:  l.level,
		output: l.output,
	}
}

// WithError adds an error field to the logger context
func (l *Logger) WithError(err error) *Logger {
	return &Logger{
		Logger: l.Logger.With().Err(err).Logger(),
		level:  l.level,
		output: l.output,
	}
}

// WithComponent adds a component field for structured logging
func (l *Logger) WithComponent(component string) *Logger {
	return l.WithField("component", component)
}

// History creates a logger with history loading context
func (l *Logger) History() *Logger {
	return l.WithComponent("history")
}

// Search creates a logger with search context
func (l *Logger) Search() *Logger {
	return l.WithComponent("search")
}

// TUI creates a logger with TUI context
func (l *Logger) TUI() *Logger {
	return l.WithComponent("tui")
}

// Shell creates a logger with shell integration context
func (l *Logger) Shell() *Logger {
	return l.WithComponent("shell")
}

// Output creates a logger with output writer context
func (l *Logger) Output() *Logger {
	return l.WithComponent("output")
}

// Config creates a logger with configuration context
func (l *Logger) Config() *Logger {
	return l.WithComponent("config")
}

// Global convenience functions
func Debug() *zerolog.Event {
	return GetLogger().Debug()
}

func Info() *zerolog.Event {
	return GetLogger().Info()
}

func Warn() *zerolog.Event {
	return GetLogger().Warn()
}

func Error() *zerolog.Event {
	return GetLogger().Error()
}

func WithField(key string, value interface{}) *Logger {
	return GetLogger().WithField(key, value)
}

func WithError(err error) *Logger {
	return GetLogger().WithError(err)
}

func WithComponent(component string) *Logger {
	return GetLogger().WithComponent(component)
}
