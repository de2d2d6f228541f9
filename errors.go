/*
 * errors.go, part of goSHG.
 *
 * Copyright 2024 The goSHG authors
 *
 * This program is free software; you can redistribute it and/or modify
 * it under the terms of the GNU Lesser General Public License as
 * published by the Free Software Foundation; either version 2.1 of the
 * License, or (at your option) any later version.
 *
 * This program is distributed in the hope that it will be useful,
 * but WITHOUT ANY WARRANTY; without even the implied warranty of
 * MERCHANTABILITY or FITNESS FOR A PARTICULAR PURPOSE.  See the
 * GNU General Public License for more details.
 *
 * You should have received a copy of the GNU Lesser General
 * Public License along with this program.  If not, see
 * <http://www.gnu.org/licenses/>.
 *
 */

package shg

import (
	"fmt"
	"strings"
)

// ConfigError signals an invalid or unsupported set of run parameters.
// It is always detected before any frame is read.
type ConfigError struct {
	message string
	deco    []string
}

// NewConfigError returns a ConfigError with a formatted message.
func NewConfigError(caller, format string, a ...any) *ConfigError {
	return &ConfigError{message: fmt.Sprintf(format, a...), deco: []string{caller}}
}

func (E *ConfigError) Error() string {
	return "configuration error: " + E.message + decoString(E.deco)
}

// Decorate adds dec to the decoration slice of the error, and returns it.
func (E *ConfigError) Decorate(dec string) []string {
	if dec != "" {
		E.deco = append(E.deco, dec)
	}
	return E.deco
}

// Critical is always true.
func (E *ConfigError) Critical() bool { return true }

// SelectionError signals an index group that does not map onto whole molecules.
type SelectionError struct {
	Group   string
	message string
	deco    []string
}

// NewSelectionError returns a SelectionError for the given group, with a formatted message.
func NewSelectionError(caller, group, format string, a ...any) *SelectionError {
	return &SelectionError{Group: group, message: fmt.Sprintf(format, a...), deco: []string{caller}}
}

func (E *SelectionError) Error() string {
	return fmt.Sprintf("selection error in group %q: %s%s", E.Group, E.message, decoString(E.deco))
}

// Decorate adds dec to the decoration slice of the error, and returns it.
func (E *SelectionError) Decorate(dec string) []string {
	if dec != "" {
		E.deco = append(E.deco, dec)
	}
	return E.deco
}

// Critical is always true.
func (E *SelectionError) Critical() bool { return true }

// StreamError signals a failing or prematurely exhausted frame source.
// It fulfills TrajError.
type StreamError struct {
	Frame    int //the frame being read when the error happened
	filename string
	format   string
	message  string
	cause    error
	deco     []string
}

// NewStreamError returns a StreamError produced while reading the given frame.
// cause may be nil.
func NewStreamError(caller string, frame int, cause error, format string, a ...any) *StreamError {
	E := &StreamError{Frame: frame, message: fmt.Sprintf(format, a...), cause: cause, deco: []string{caller}}
	if t, ok := cause.(TrajError); ok {
		E.filename = t.FileName()
		E.format = t.Format()
	}
	return E
}

func (E *StreamError) Error() string {
	s := fmt.Sprintf("frame source error at frame %d: %s", E.Frame, E.message)
	if E.filename != "" {
		s += fmt.Sprintf(" (file %s)", E.filename)
	}
	if E.cause != nil {
		s += ": " + E.cause.Error()
	}
	return s + decoString(E.deco)
}

// Unwrap returns the error reported by the frame source, if any.
func (E *StreamError) Unwrap() error { return E.cause }

// Decorate adds dec to the decoration slice of the error, and returns it.
func (E *StreamError) Decorate(dec string) []string {
	if dec != "" {
		E.deco = append(E.deco, dec)
	}
	return E.deco
}

// Critical is always true.
func (E *StreamError) Critical() bool { return true }

// FileName returns the name of the failing trajectory file, if known.
func (E *StreamError) FileName() string { return E.filename }

// Format returns the format of the failing trajectory, if known.
func (E *StreamError) Format() string { return E.format }

// ErrDecorate adds the caller's name to err if it implements Error, and returns it.
func ErrDecorate(err error, caller string) error {
	if e, ok := err.(Error); ok {
		e.Decorate(caller)
	}
	return err
}

func decoString(deco []string) string {
	if len(deco) == 0 {
		return ""
	}
	return " [" + strings.Join(deco, " <- ") + "]"
}
