/*
 * MIT License
 *
 * Copyright (c) 2025 Nicolas JUHEL
 *
 * Permission is hereby granted, free of charge, to any person obtaining a copy
 * of this software and associated documentation files (the "Software"), to deal
 * in the Software without restriction, including without limitation the rights
 * to use, copy, modify, merge, publish, distribute, sublicense, and/or sell
 * copies of the Software, and to permit persons to whom the Software is
 * furnished to do so, subject to the following conditions:
 *
 * The above copyright notice and this permission notice shall be included in all
 * copies or substantial portions of the Software.
 *
 * THE SOFTWARE IS PROVIDED "AS IS", WITHOUT WARRANTY OF ANY KIND, EXPRESS OR
 * IMPLIED, INCLUDING BUT NOT LIMITED TO THE WARRANTIES OF MERCHANTABILITY,
 * FITNESS FOR A PARTICULAR PURPOSE AND NONINFRINGEMENT. IN NO EVENT SHALL THE
 * AUTHORS OR COPYRIGHT HOLDERS BE LIABLE FOR ANY CLAIM, DAMAGES OR OTHER
 * LIABILITY, WHETHER IN AN ACTION OF CONTRACT, TORT OR OTHERWISE, ARISING FROM,
 * OUT OF OR IN CONNECTION WITH THE SOFTWARE OR THE USE OR OTHER DEALINGS IN THE
 * SOFTWARE.
 *
 *
 */

// Package logger is the structured, leveled logging facade the ipc tree
// logs connection lifecycle and dispatch errors through: a thin wrapper
// over logrus, built the way the teacher's logger package wires logrus in,
// scaled down to what this module needs.
package logger

import (
	"io"
	"os"

	"github.com/sirupsen/logrus"

	"github.com/nabbar/golib/logger/entry"
	"github.com/nabbar/golib/logger/fields"
	"github.com/nabbar/golib/logger/level"
)

// Logger is the leveled, structured logging facade every ipc component
// accepts instead of talking to logrus or os.Stderr directly.
type Logger interface {
	SetLevel(lvl level.Level)
	SetOutput(w io.Writer)
	SetJSON(enabled bool)

	Entry(lvl level.Level) *entry.Entry

	Debug(msg string, args ...any)
	Info(msg string, args ...any)
	Warning(msg string, args ...any)
	Error(msg string, args ...any)

	WithFields(f fields.Fields) Logger
}

type logger struct {
	log *logrus.Logger
	fld fields.Fields
}

// New builds a Logger writing to stderr at InfoLevel with the text
// formatter, matching logrus's own defaults.
func New() Logger {
	l := logrus.New()
	l.SetOutput(os.Stderr)
	l.SetLevel(level.InfoLevel.Logrus())
	l.SetFormatter(&logrus.TextFormatter{})

	return &logger{log: l, fld: fields.New()}
}

func (l *logger) SetLevel(lvl level.Level) {
	l.log.SetLevel(lvl.Logrus())
}

func (l *logger) SetOutput(w io.Writer) {
	l.log.SetOutput(w)
}

func (l *logger) SetJSON(enabled bool) {
	if enabled {
		l.log.SetFormatter(&logrus.JSONFormatter{})
	} else {
		l.log.SetFormatter(&logrus.TextFormatter{})
	}
}

func (l *logger) Entry(lvl level.Level) *entry.Entry {
	return entry.New(l.log, lvl).Fields(l.fld)
}

func (l *logger) Debug(msg string, args ...any)   { l.Entry(level.DebugLevel).Log(msg, args...) }
func (l *logger) Info(msg string, args ...any)    { l.Entry(level.InfoLevel).Log(msg, args...) }
func (l *logger) Warning(msg string, args ...any) { l.Entry(level.WarnLevel).Log(msg, args...) }
func (l *logger) Error(msg string, args ...any)   { l.Entry(level.ErrorLevel).Log(msg, args...) }

func (l *logger) WithFields(f fields.Fields) Logger {
	merged := fields.New()
	for k, v := range l.fld {
		merged[k] = v
	}
	for k, v := range f {
		merged[k] = v
	}
	return &logger{log: l.log, fld: merged}
}
