// Package logger provides context scoped logrus entries. Commands attach an
// entry carrying the import ID and source path so every package in the
// pipeline logs with the same fields.
package logger

import (
	"context"
	"io"
	"time"

	"github.com/sirupsen/logrus"
)

var (
	// G returns the logger stored in ctx.
	G = GetLogger
	// L is the process wide fallback entry.
	L = logrus.NewEntry(newLogger())
)

type loggerKey struct{}

// Options configure the global logger.
type Options struct {
	Level  string
	Format string
	Output io.Writer
}

// WithLogger returns a context carrying entry.
func WithLogger(ctx context.Context, entry *logrus.Entry) context.Context {
	return context.WithValue(ctx, loggerKey{}, entry.WithContext(ctx))
}

// WithFields returns a context whose logger carries the extra fields.
func WithFields(ctx context.Context, fields logrus.Fields) context.Context {
	return WithLogger(ctx, G(ctx).WithFields(fields))
}

// GetLogger returns the entry attached to ctx, or L when there is none.
func GetLogger(ctx context.Context) *logrus.Entry {
	if entry, ok := ctx.Value(loggerKey{}).(*logrus.Entry); ok {
		return entry
	}
	return L.WithContext(ctx)
}

func newLogger() *logrus.Logger {
	l := logrus.New()
	l.Formatter = formatter("text")
	return l
}

func formatter(format string) logrus.Formatter {
	if format == "json" {
		return &logrus.JSONFormatter{
			FieldMap: logrus.FieldMap{
				logrus.FieldKeyTime:  "timestamp",
				logrus.FieldKeyLevel: "logLevel",
				logrus.FieldKeyMsg:   "message",
			},
			TimestampFormat: time.RFC3339Nano,
		}
	}
	return &logrus.TextFormatter{
		TimestampFormat: time.RFC3339Nano,
		FullTimestamp:   true,
	}
}

// Configure applies opts to the global logger. Empty fields keep their
// current value.
func Configure(opts Options) error {
	if opts.Level != "" {
		if err := SetLogLevel(opts.Level); err != nil {
			return err
		}
	}
	if opts.Format != "" {
		SetLogFormat(opts.Format)
	}
	if opts.Output != nil {
		SetLogOutput(opts.Output)
	}
	return nil
}

// SetLogLevel sets the level of the global logger.
func SetLogLevel(level string) error {
	lvl, err := logrus.ParseLevel(level)
	if err != nil {
		return err
	}
	L.Logger.SetLevel(lvl)
	return nil
}

// SetLogFormat switches the global logger between "text" and "json".
func SetLogFormat(format string) {
	L.Logger.Formatter = formatter(format)
}

// SetLogOutput redirects the global logger.
func SetLogOutput(w io.Writer) {
	L.Logger.SetOutput(w)
}
