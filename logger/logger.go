package logger

import (
	"fmt"
	"io"
	"os"
	"runtime/debug"

	"github.com/mattn/go-isatty"
	"github.com/rs/xid"
	log "github.com/sirupsen/logrus"
)

// Logger type is interface for available logging methods.
type Logger interface {
	Trace(...interface{})
	Debug(...interface{})
	Info(...interface{})
	Warn(...interface{})
	Error(...interface{})
	Panic(...interface{})
	Fatal(...interface{})
}

// LoggerImpl is a struct that extends sirupsen/logrus.
type LoggerImpl struct {
	Logger         *log.Entry
	Service        string
	RunId          string
	LogLevelStr    string
	PrintStackDump bool
	base           *log.Logger
}

// NewLogger will create a new logger implementation.
// Every logger is tagged with the service name and a unique run ID so that the output of one pipeline
// execution can be grepped out of shared log files.
func NewLogger(serviceName string, level string, stackDumpOnPanic bool) *LoggerImpl {
	base := log.New()
	logLevel, err := log.ParseLevel(level)
	if err == nil {
		base.SetLevel(logLevel)
	} else {
		fmt.Println("Error setting up logging: ", err)
		os.Exit(1)
	}
	runId := xid.New().String()
	l := &LoggerImpl{
		Logger: base.WithFields(log.Fields{
			"service": serviceName,
			"run":     runId,
		}),
		Service:        serviceName,
		RunId:          runId,
		LogLevelStr:    level,
		PrintStackDump: stackDumpOnPanic,
		base:           base,
	}
	l.SetOutput(os.Stderr)
	return l
}

// Trace log.
func (l *LoggerImpl) Trace(message ...interface{}) {
	l.Logger.Trace(message...)
}

// Debug log.
func (l *LoggerImpl) Debug(message ...interface{}) {
	l.Logger.Debug(message...)
}

// Info log.
func (l *LoggerImpl) Info(message ...interface{}) {
	l.Logger.Info(message...)
}

// Warn log.
func (l *LoggerImpl) Warn(message ...interface{}) {
	l.Logger.Warn(message...)
}

// Error (with stack trace in trace mode or when PrintStackDump is set).
func (l *LoggerImpl) Error(message ...interface{}) {
	if l.LogLevelStr == "trace" || l.PrintStackDump {
		l.Logger.WithField("stackTrace", fmt.Sprintf("%s", debug.Stack())).Error(message...)
	} else {
		l.Logger.Error(message...)
	}
}

// Panic (with stack trace in debug mode, or if user explicitly sets PrintStackDump).
func (l *LoggerImpl) Panic(message ...interface{}) {
	if l.LogLevelStr == "debug" || l.LogLevelStr == "trace" || l.PrintStackDump {
		l.Logger.WithField("stackTrace", fmt.Sprintf("%s", debug.Stack())).Panic(message...)
	} else {
		l.Logger.Panic(message...)
	}
}

// Fatal (with stack trace in debug mode).
// This causes exit(1) without a stack dump by default.
func (l *LoggerImpl) Fatal(message ...interface{}) {
	if l.LogLevelStr == "debug" || l.LogLevelStr == "trace" {
		l.Logger.WithField("stackTrace", fmt.Sprintf("%s", debug.Stack())).Fatal(message...)
	} else {
		l.Logger.Fatal(message...)
	}
}

// SetOutput will set the log output to the Writer supplied.
// Terminals get human readable text while anything else (files, pipes, buffers) gets JSON.
func (l *LoggerImpl) SetOutput(writer io.Writer) {
	l.base.SetOutput(writer)
	if f, ok := writer.(*os.File); ok && isatty.IsTerminal(f.Fd()) {
		l.base.SetFormatter(&log.TextFormatter{FullTimestamp: true})
	} else {
		l.base.SetFormatter(&log.JSONFormatter{})
	}
}
