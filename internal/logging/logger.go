/*
Copyright © 2025 Benny Powers <web@bennypowers.com>

This program is free software: you can redistribute it and/or modify
it under the terms of the GNU General Public License as published by
the Free Software Foundation, either version 3 of the License, or
(at your option) any later version.

This program is distributed in the hope that it will be useful,
but WITHOUT ANY WARRANTY; without even the implied warranty of
MERCHANTABILITY or FITNESS FOR A PARTICULAR PURPOSE.  See the
GNU General Public License for more details.

You should have received a copy of the GNU General Public License
along with this program. If not, see <http://www.gnu.org/licenses/>.
*/

// Package logging provides the daemon's centralized logger. It adapts to
// two contexts: a CLI invocation (colorized pterm output to a terminal) and
// a running daemon (plain lines to the daemon's log file, never stdout).
package logging

import (
	"fmt"
	"io"
	"os"
	"sync"

	"github.com/pterm/pterm"
)

func init() {
	pterm.Info = *pterm.Info.WithPrefix(pterm.Prefix{
		Text:  "INFO",
		Style: pterm.NewStyle(pterm.FgBlue),
	}).WithMessageStyle(&pterm.ThemeDefault.DefaultText)

	pterm.Success = *pterm.Success.WithPrefix(pterm.Prefix{
		Text:  "SUCCESS",
		Style: pterm.NewStyle(pterm.FgGreen),
	}).WithMessageStyle(&pterm.ThemeDefault.DefaultText)

	pterm.Warning = *pterm.Warning.WithPrefix(pterm.Prefix{
		Text:  "WARNING",
		Style: pterm.NewStyle(pterm.FgYellow),
	}).WithMessageStyle(&pterm.ThemeDefault.DefaultText)

	pterm.Error = *pterm.Error.WithPrefix(pterm.Prefix{
		Text:  "ERROR",
		Style: pterm.NewStyle(pterm.FgRed),
	}).WithMessageStyle(&pterm.ThemeDefault.DefaultText)

	pterm.Debug = *pterm.Debug.WithPrefix(pterm.Prefix{
		Text:  "DEBUG",
		Style: pterm.NewStyle(pterm.FgCyan),
	}).WithMessageStyle(&pterm.ThemeDefault.DefaultText)
}

// LogLevel is the severity of a log line.
type LogLevel int

const (
	LogLevelDebug LogLevel = iota
	LogLevelInfo
	LogLevelWarning
	LogLevelError
)

func (l LogLevel) String() string {
	switch l {
	case LogLevelDebug:
		return "DEBUG"
	case LogLevelInfo:
		return "INFO"
	case LogLevelWarning:
		return "WARNING"
	case LogLevelError:
		return "ERROR"
	default:
		return "UNKNOWN"
	}
}

// LoggerMode selects the output target.
type LoggerMode int

const (
	// ModeCLI prints colorized lines to the terminal (pterm's default output).
	ModeCLI LoggerMode = iota
	// ModeDaemon writes plain lines to the daemon's log file and routes
	// Notify/Critical through a Broadcaster to connected editors.
	ModeDaemon
)

// Broadcaster is implemented by the daemon's clients table; Notify/Critical
// use it to echo a message to every connected editor (spec.md §7).
type Broadcaster interface {
	BroadcastEcho(message string, isError bool)
}

// Logger is the daemon's centralized logger.
type Logger struct {
	mu           sync.RWMutex
	mode         LoggerMode
	out          io.Writer
	broadcaster  Broadcaster
	debugEnabled bool
	quietEnabled bool
}

var globalLogger = &Logger{mode: ModeCLI}

// GetLogger returns the global logger instance.
func GetLogger() *Logger { return globalLogger }

// SetMode configures the logger for CLI or daemon operation.
func (l *Logger) SetMode(mode LoggerMode) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.mode = mode
}

// SetOutput points daemon-mode output at the given writer (typically the
// opened daemon log file). Never the process's stdout.
func (l *Logger) SetOutput(w io.Writer) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.out = w
}

// SetBroadcaster registers the editor-broadcast sink used by Notify/Critical
// in daemon mode.
func (l *Logger) SetBroadcaster(b Broadcaster) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.broadcaster = b
}

func (l *Logger) SetDebugEnabled(enabled bool) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.debugEnabled = enabled
}

func (l *Logger) IsDebugEnabled() bool {
	l.mu.RLock()
	defer l.mu.RUnlock()
	return l.debugEnabled
}

func (l *Logger) SetQuietEnabled(enabled bool) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.quietEnabled = enabled
}

func (l *Logger) IsQuietEnabled() bool {
	l.mu.RLock()
	defer l.mu.RUnlock()
	return l.quietEnabled
}

func (l *Logger) Debug(format string, args ...any)   { l.log(LogLevelDebug, format, args...) }
func (l *Logger) Info(format string, args ...any)    { l.log(LogLevelInfo, format, args...) }
func (l *Logger) Warning(format string, args ...any) { l.log(LogLevelWarning, format, args...) }
func (l *Logger) Error(format string, args ...any)   { l.log(LogLevelError, format, args...) }

// Critical logs at error level and, in daemon mode, also echoes the message
// to every connected editor as an error (spec.md §7 "Domain"/"LSP death").
func (l *Logger) Critical(format string, args ...any) {
	message := fmt.Sprintf(format, args...)
	l.log(LogLevelError, "%s", message)
	l.broadcast(message, true)
}

// Notify logs at info level and, in daemon mode, also echoes the message to
// every connected editor (a non-error `echo`).
func (l *Logger) Notify(format string, args ...any) {
	message := fmt.Sprintf(format, args...)
	l.log(LogLevelInfo, "%s", message)
	l.broadcast(message, false)
}

func (l *Logger) broadcast(message string, isError bool) {
	l.mu.RLock()
	mode := l.mode
	b := l.broadcaster
	l.mu.RUnlock()
	if mode == ModeDaemon && b != nil {
		b.BroadcastEcho(message, isError)
	}
}

func (l *Logger) Success(format string, args ...any) {
	l.mu.RLock()
	mode := l.mode
	quiet := l.quietEnabled
	l.mu.RUnlock()
	if quiet {
		return
	}
	if mode == ModeCLI {
		pterm.Success.Printf(format+"\n", args...)
		return
	}
	l.log(LogLevelInfo, format, args...)
}

func (l *Logger) log(level LogLevel, format string, args ...any) {
	l.mu.RLock()
	mode := l.mode
	out := l.out
	debugEnabled := l.debugEnabled
	quietEnabled := l.quietEnabled
	l.mu.RUnlock()

	if level == LogLevelDebug && !debugEnabled {
		return
	}
	if quietEnabled && (level == LogLevelInfo || level == LogLevelDebug) {
		return
	}

	message := fmt.Sprintf(format, args...)

	switch mode {
	case ModeCLI:
		l.logCLI(level, message)
	case ModeDaemon:
		l.logDaemon(level, message, out)
	}
}

func (l *Logger) logCLI(level LogLevel, message string) {
	switch level {
	case LogLevelDebug:
		pterm.Debug.Println(message)
	case LogLevelInfo:
		pterm.Info.Println(message)
	case LogLevelWarning:
		pterm.Warning.Println(message)
	case LogLevelError:
		pterm.Error.Println(message)
	}
}

func (l *Logger) logDaemon(level LogLevel, message string, out io.Writer) {
	if out == nil {
		out = os.Stderr
	}
	fmt.Fprintf(out, "%s [%s] %s\n", timestamp(), level, message)
}

// Convenience wrappers for the global logger.

func Debug(format string, args ...any)   { globalLogger.Debug(format, args...) }
func Info(format string, args ...any)    { globalLogger.Info(format, args...) }
func Warning(format string, args ...any) { globalLogger.Warning(format, args...) }
func Error(format string, args ...any)   { globalLogger.Error(format, args...) }
func Critical(format string, args ...any) {
	globalLogger.Critical(format, args...)
}
func Notify(format string, args ...any)       { globalLogger.Notify(format, args...) }
func Success(format string, args ...any)      { globalLogger.Success(format, args...) }
func SetMode(mode LoggerMode)                 { globalLogger.SetMode(mode) }
func SetOutput(w io.Writer)                   { globalLogger.SetOutput(w) }
func SetBroadcaster(b Broadcaster)            { globalLogger.SetBroadcaster(b) }
func SetDebugEnabled(enabled bool)            { globalLogger.SetDebugEnabled(enabled) }
func IsDebugEnabled() bool                    { return globalLogger.IsDebugEnabled() }
func SetQuietEnabled(enabled bool)            { globalLogger.SetQuietEnabled(enabled) }
func IsQuietEnabled() bool                    { return globalLogger.IsQuietEnabled() }
