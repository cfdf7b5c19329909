package logger

import (
	"context"
	"io"
	"log/slog"
	"os"
	"strings"
)

// Logger define a interface para logging estruturado.
// A aplicação (Handler, Service, Repository) deve depender apenas desta interface.
type Logger interface {
	Debug(msg string, fields map[string]interface{})
	Info(msg string, fields map[string]interface{})
	Warn(msg string, fields map[string]interface{})
	Error(msg string, err error)
	Fatal(msg string, err error)

	// With devolve um logger filho que sempre inclui os campos informados
	// (e.g., nome da operação e ID do recurso).
	With(fields map[string]interface{}) Logger
}

// SimpleLogger é a implementação concreta da interface Logger.
// Cada entrada é uma linha JSON (timestamp, level, message, campos e erro).
type SimpleLogger struct {
	l    *slog.Logger
	exit func(int)
}

// NewLogger cria e retorna uma nova instância do Logger escrevendo em stdout.
// Esta função é chamada no main.go.
func NewLogger(level string) Logger {
	return NewLoggerWithWriter(level, os.Stdout)
}

// NewLoggerWithWriter permite direcionar a saída (útil em testes).
func NewLoggerWithWriter(level string, w io.Writer) Logger {
	h := slog.NewJSONHandler(w, &slog.HandlerOptions{
		Level: parseLevel(level),
		ReplaceAttr: func(groups []string, a slog.Attr) slog.Attr {
			// Mantém o formato de chaves do log original: timestamp/message.
			switch a.Key {
			case slog.TimeKey:
				a.Key = "timestamp"
			case slog.MessageKey:
				a.Key = "message"
			}
			return a
		},
	})
	return &SimpleLogger{l: slog.New(h), exit: os.Exit}
}

// parseLevel traduz o LOG_LEVEL da configuração; valores desconhecidos caem em info.
func parseLevel(level string) slog.Level {
	switch strings.ToLower(level) {
	case "debug":
		return slog.LevelDebug
	case "warn", "warning":
		return slog.LevelWarn
	case "error", "fatal":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}

func toArgs(fields map[string]interface{}) []any {
	if len(fields) == 0 {
		return nil
	}
	args := make([]any, 0, len(fields))
	for k, v := range fields {
		args = append(args, slog.Any(k, v))
	}
	return []any{slog.Group("fields", args...)}
}

// Implementações da Interface Logger

func (l *SimpleLogger) Debug(msg string, fields map[string]interface{}) {
	l.l.Log(context.Background(), slog.LevelDebug, msg, toArgs(fields)...)
}

func (l *SimpleLogger) Info(msg string, fields map[string]interface{}) {
	l.l.Log(context.Background(), slog.LevelInfo, msg, toArgs(fields)...)
}

func (l *SimpleLogger) Warn(msg string, fields map[string]interface{}) {
	l.l.Log(context.Background(), slog.LevelWarn, msg, toArgs(fields)...)
}

func (l *SimpleLogger) Error(msg string, err error) {
	if err != nil {
		l.l.Log(context.Background(), slog.LevelError, msg, slog.String("error", err.Error()))
		return
	}
	l.l.Log(context.Background(), slog.LevelError, msg)
}

// Fatal registra o erro e encerra o processo.
func (l *SimpleLogger) Fatal(msg string, err error) {
	const levelFatal = slog.Level(12)
	if err != nil {
		l.l.Log(context.Background(), levelFatal, msg, slog.String("error", err.Error()))
	} else {
		l.l.Log(context.Background(), levelFatal, msg)
	}
	l.exit(1)
}

func (l *SimpleLogger) With(fields map[string]interface{}) Logger {
	args := make([]any, 0, len(fields))
	for k, v := range fields {
		args = append(args, slog.Any(k, v))
	}
	return &SimpleLogger{l: l.l.With(args...), exit: l.exit}
}
