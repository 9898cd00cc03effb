// Package logger provides centralized logging for dnskeeper.
package logger

import (
	"io"
	"os"
	"path/filepath"
	"runtime/debug"
	"sync"

	"github.com/sirupsen/logrus"
)

const logFileName = "dnskeeper.log"

var (
	base     = newBase()
	logFile  *os.File
	logMutex sync.Mutex
	logPath  string
)

func newBase() *logrus.Logger {
	l := logrus.New()
	l.Formatter = &logrus.TextFormatter{FullTimestamp: true, QuoteEmptyFields: true}
	l.Level = logrus.InfoLevel
	return l
}

// Init opens the log file and points the logger at it. When console is true
// every line is mirrored to stdout as well.
func Init(level string, console bool) error {
	if err := SetLevel(level); err != nil {
		return err
	}

	logMutex.Lock()
	defer logMutex.Unlock()

	logPath = filepath.Join(getLogDir(), logFileName)
	if err := os.MkdirAll(filepath.Dir(logPath), 0755); err != nil {
		return err
	}

	f, err := os.OpenFile(logPath, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0644)
	if err != nil {
		return err
	}
	logFile = f

	// Redirect stderr to log file so runtime panics are captured
	redirectStderr(f)

	if console {
		base.SetOutput(io.MultiWriter(f, os.Stdout))
	} else {
		base.SetOutput(f)
	}
	return nil
}

// SetLevel changes the minimum level; an empty string keeps the current one.
func SetLevel(level string) error {
	if level == "" {
		return nil
	}
	lvl, err := logrus.ParseLevel(level)
	if err != nil {
		return err
	}
	base.SetLevel(lvl)
	return nil
}

// Close closes the log file
func Close() {
	logMutex.Lock()
	defer logMutex.Unlock()
	if logFile != nil {
		base.SetOutput(os.Stdout)
		logFile.Close()
		logFile = nil
	}
}

// For returns an entry tagged with the component name.
func For(component string) *logrus.Entry {
	return base.WithField("component", component)
}

// Task logs an enforcement event for a DNS task.
func Task(taskID string, format string, args ...interface{}) {
	base.WithField("task", taskID).Infof(format, args...)
}

// GetLogPath returns the path to the log file
func GetLogPath() string {
	logMutex.Lock()
	defer logMutex.Unlock()
	return logPath
}

// Recover should be deferred at the top of every goroutine to catch panics.
// Usage: go func() { defer logger.Recover("myGoroutine"); ... }()
func Recover(name string) {
	if r := recover(); r != nil {
		base.WithField("goroutine", name).Errorf("PANIC: %v\n%s", r, debug.Stack())
	}
}

// SafeGo launches a goroutine with panic recovery.
func SafeGo(name string, fn func()) {
	go func() {
		defer Recover(name)
		fn()
	}()
}
