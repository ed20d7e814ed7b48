/*
 * Copyright 2024 The Lucid Authors.
 *
 * Licensed under the Apache License, Version 2.0 (the "License");
 * you may not use this file except in compliance with the License.
 * You may obtain a copy of the License at
 *
 *     http://www.apache.org/licenses/LICENSE-2.0
 *
 * Unless required by applicable law or agreed to in writing, software
 * distributed under the License is distributed on an "AS IS" BASIS,
 * WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
 * See the License for the specific language governing permissions and
 * limitations under the License.
 */

package log

import (
	"time"

	"github.com/sirupsen/logrus"
)

// Entry wraps logrus.Entry.
type Entry logrus.Entry

func (entry *Entry) toLogrus() *logrus.Entry {
	return (*logrus.Entry)(entry)
}

// WithError adds an error as single field (using the key defined in ErrorKey) to the Entry.
func (entry *Entry) WithError(err error) *Entry {
	return (*Entry)(entry.toLogrus().WithError(err))
}

// WithField adds a single field to the Entry.
func (entry *Entry) WithField(key string, value interface{}) *Entry {
	return (*Entry)(entry.toLogrus().WithField(key, value))
}

// WithFields adds a map of fields to the Entry.
func (entry *Entry) WithFields(fields Fields) *Entry {
	return (*Entry)(entry.toLogrus().WithFields(logrus.Fields(fields)))
}

// WithTime overrides the time of the Entry.
func (entry *Entry) WithTime(t time.Time) *Entry {
	return (*Entry)(entry.toLogrus().WithTime(t))
}

// Debug logs the entry at level Debug.
func (entry *Entry) Debug(args ...interface{}) {
	entry.toLogrus().Debug(args...)
}

// Print logs the entry at level Info.
func (entry *Entry) Print(args ...interface{}) {
	entry.toLogrus().Print(args...)
}

// Info logs the entry at level Info.
func (entry *Entry) Info(args ...interface{}) {
	entry.toLogrus().Info(args...)
}

// Warn logs the entry at level Warn.
func (entry *Entry) Warn(args ...interface{}) {
	entry.toLogrus().Warn(args...)
}

// Warning logs the entry at level Warn.
func (entry *Entry) Warning(args ...interface{}) {
	entry.toLogrus().Warning(args...)
}

// Error logs the entry at level Error.
func (entry *Entry) Error(args ...interface{}) {
	entry.toLogrus().Error(args...)
}

// Fatal logs the entry at level Fatal.
func (entry *Entry) Fatal(args ...interface{}) {
	entry.toLogrus().Fatal(args...)
}

// Panic logs the entry at level Panic.
func (entry *Entry) Panic(args ...interface{}) {
	entry.toLogrus().Panic(args...)
}

// Debugf logs the entry at level Debug.
func (entry *Entry) Debugf(format string, args ...interface{}) {
	entry.toLogrus().Debugf(format, args...)
}

// Infof logs the entry at level Info.
func (entry *Entry) Infof(format string, args ...interface{}) {
	entry.toLogrus().Infof(format, args...)
}

// Warnf logs the entry at level Warn.
func (entry *Entry) Warnf(format string, args ...interface{}) {
	entry.toLogrus().Warnf(format, args...)
}

// Errorf logs the entry at level Error.
func (entry *Entry) Errorf(format string, args ...interface{}) {
	entry.toLogrus().Errorf(format, args...)
}

// Fatalf logs the entry at level Fatal.
func (entry *Entry) Fatalf(format string, args ...interface{}) {
	entry.toLogrus().Fatalf(format, args...)
}

// Debugln logs the entry at level Debug.
func (entry *Entry) Debugln(args ...interface{}) {
	entry.toLogrus().Debugln(args...)
}

// Infoln logs the entry at level Info.
func (entry *Entry) Infoln(args ...interface{}) {
	entry.toLogrus().Infoln(args...)
}

// Warnln logs the entry at level Warn.
func (entry *Entry) Warnln(args ...interface{}) {
	entry.toLogrus().Warnln(args...)
}

// Errorln logs the entry at level Error.
func (entry *Entry) Errorln(args ...interface{}) {
	entry.toLogrus().Errorln(args...)
}
