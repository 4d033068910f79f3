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

// Package entry wraps a single logrus.Entry with the level and fields types
// the rest of the ipc tree logs through, so callers never import logrus
// directly.
package entry

import (
	"github.com/sirupsen/logrus"

	"github.com/nabbar/golib/logger/fields"
	"github.com/nabbar/golib/logger/level"
)

// Entry is one log line in construction: a level, a message, and a set of
// structured fields, bound to a logrus.Logger.
type Entry struct {
	log *logrus.Logger
	lvl level.Level
	msg string
	fld fields.Fields
}

// New starts an Entry at lvl against log.
func New(log *logrus.Logger, lvl level.Level) *Entry {
	return &Entry{log: log, lvl: lvl, fld: fields.New()}
}

// Field adds key/value to the entry and returns the receiver for chaining.
func (e *Entry) Field(key string, value any) *Entry {
	e.fld.Add(key, value)
	return e
}

// Fields merges f into the entry's fields and returns the receiver.
func (e *Entry) Fields(f fields.Fields) *Entry {
	for k, v := range f {
		e.fld[k] = v
	}
	return e
}

// Error attaches err under the conventional "error" field, no-op if nil.
func (e *Entry) Error(err error) *Entry {
	if err != nil {
		e.fld.Add("error", err.Error())
	}
	return e
}

// Log emits the entry with msg, formatted as with fmt.Sprintf if args are
// given.
func (e *Entry) Log(msg string, args ...any) {
	if e.log == nil || e.lvl == level.NilLevel {
		return
	}

	le := e.log.WithFields(e.fld.Logrus())
	if len(args) > 0 {
		le.Logf(e.lvl.Logrus(), msg, args...)
	} else {
		le.Log(e.lvl.Logrus(), msg)
	}
}
