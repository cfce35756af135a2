package log

import (
	"io"
	stdlog "log"
	"os"

	"go.withmatt.com/maildigest/internal/config"
)

var (
	debugEnabled bool
	logFile      *os.File
)

// Setup enables debug logging to the state directory. With debug off, all
// log output is discarded so nothing interferes with command output.
func Setup(debug bool) error {
	debugEnabled = debug
	if !debug {
		stdlog.SetOutput(io.Discard)
		return nil
	}
	if logFile != nil {
		return nil
	}
	logPath, err := config.StatePath("debug.log")
	if err != nil {
		return err
	}
	logFile, err = os.OpenFile(logPath, os.O_RDWR|os.O_CREATE|os.O_APPEND, 0o600)
	if err != nil {
		return err
	}
	stdlog.SetOutput(logFile)
	stdlog.SetPrefix("maildigest ")
	return nil
}

func Close() error {
	if logFile == nil {
		return nil
	}
	defer func() { logFile = nil }()
	stdlog.SetOutput(os.Stderr)
	return logFile.Close()
}

func DebugEnabled() bool {
	return debugEnabled
}

func Printf(format string, args ...any) {
	if debugEnabled {
		stdlog.Printf("DEBUG: "+format, args...)
	}
}
