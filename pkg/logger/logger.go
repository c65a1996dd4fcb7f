// Package logger implements a JSON logger on top of zerolog.
package logger

import (
	"bytes"
	"fmt"
	"log"
	"os"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"
)

// Interface -.
type Interface interface {
	Debug(message interface{}, args ...interface{})
	Info(message string, args ...interface{})
	Warn(message string, args ...interface{})
	Error(message interface{}, args ...interface{})
	Fatal(message interface{}, args ...interface{})
}

// Logger -.
type Logger struct {
	logger *zerolog.Logger
}

var _ Interface = (*Logger)(nil)

// New -.
func New(level string) *Logger {
	var l zerolog.Level

	switch strings.ToLower(level) {
	case "error":
		l = zerolog.ErrorLevel
	case "warn":
		l = zerolog.WarnLevel
	case "info":
		l = zerolog.InfoLevel
	case "debug":
		l = zerolog.DebugLevel
	default:
		l = zerolog.InfoLevel
	}

	zerolog.SetGlobalLevel(l)

	skipFrameCount := 3
	logger := zerolog.New(os.Stdout).
		With().
		Timestamp().
		CallerWithSkipFrameCount(zerolog.CallerSkipFrameCount + skipFrameCount).
		Logger()

	return &Logger{
		logger: &logger,
	}
}

// Debug -.
func (l *Logger) Debug(message interface{}, args ...interface{}) {
	l.msg("debug", message, args...)
}

// Info -.
func (l *Logger) Info(message string, args ...interface{}) {
	l.log(message, args...)
}

// Warn -.
func (l *Logger) Warn(message string, args ...interface{}) {
	l.logger.Warn().Msgf(message, args...)
}

// Error -.
func (l *Logger) Error(message interface{}, args ...interface{}) {
	if l.logger.GetLevel() == zerolog.DebugLevel {
		l.Debug(message, args...)
	}

	l.msg("error", message, args...)
}

// Fatal -.
func (l *Logger) Fatal(message interface{}, args ...interface{}) {
	l.msg("fatal", message, args...)

	os.Exit(1)
}

func (l *Logger) log(message string, args ...interface{}) {
	if len(args) == 0 {
		l.logger.Info().Msg(message)
	} else {
		l.logger.Info().Msgf(message, args...)
	}
}

// lineWriter lets io.Writer-based loggers (the stdlib default logger, gin)
// feed their lines into an Interface at a fixed level.
type lineWriter struct {
	emit func(message string, args ...interface{})
}

func (w lineWriter) Write(p []byte) (int, error) {
	w.emit(string(bytes.TrimRight(p, "\r\n")))

	return len(p), nil
}

// SetupStdLog sends standard library log output through l as warnings.
func SetupStdLog(l Interface) {
	log.SetFlags(0)
	log.SetOutput(lineWriter{emit: l.Warn})
}

// SetupGin sends gin's default and error writers through l.
func SetupGin(l Interface) {
	gin.DefaultWriter = lineWriter{emit: l.Info}
	gin.DefaultErrorWriter = lineWriter{emit: func(message string, args ...interface{}) {
		l.Error(message, args...)
	}}
}

func (l *Logger) msg(level string, message interface{}, args ...interface{}) {
	switch msg := message.(type) {
	case error:
		switch level {
		case "fatal":
			l.logger.Fatal().Msgf(msg.Error(), args...)
		case "error":
			l.logger.Error().Msgf(msg.Error(), args...)
		default:
			l.logger.Debug().Msgf(msg.Error(), args...)
		}
	case string:
		switch level {
		case "fatal":
			l.logger.Fatal().Msgf(msg, args...)
		case "error":
			l.logger.Error().Msgf(msg, args...)
		default:
			l.logger.Debug().Msgf(msg, args...)
		}
	default:
		l.log(fmt.Sprintf("%s message %v has unknown type %v", level, message, msg), args...)
	}
}
