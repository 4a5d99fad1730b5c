// Copyright 2021 FerretDB Inc.
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

// Package lazyerrors wraps errors with the location where they were created or passed up.
//
// It is used for unexpected errors inside the module,
// where a caller location is more useful than a carefully crafted message.
package lazyerrors

import (
	"errors"
	"fmt"
	"path/filepath"
	"runtime"
	"strconv"
	"strings"
)

// located is an error annotated with the program counter of its origin.
type located struct {
	err error
	pc  uintptr
}

// Error implements error interface.
func (e *located) Error() string {
	return "[" + location(e.pc) + "] " + e.err.Error()
}

// Unwrap returns the annotated error.
func (e *located) Unwrap() error {
	return e.err
}

// New returns a new error with the given text and caller location.
func New(s string) error {
	return &located{err: errors.New(s), pc: callerPC()}
}

// Error annotates err with caller location.
//
// It panics if err is nil.
func Error(err error) error {
	if err == nil {
		panic("lazyerrors.Error: err is nil")
	}

	return &located{err: err, pc: callerPC()}
}

// Errorf returns a formatted error with caller location.
// %w verbs work as in [fmt.Errorf].
func Errorf(format string, a ...any) error {
	return &located{err: fmt.Errorf(format, a...), pc: callerPC()}
}

// callerPC returns the program counter of the caller of the exported function.
func callerPC() uintptr {
	var pcs [1]uintptr

	// skip runtime.Callers, callerPC, and New/Error/Errorf
	if runtime.Callers(3, pcs[:]) == 0 {
		return 0
	}

	return pcs[0]
}

// location formats pc as "file.go:line pkg.Func".
func location(pc uintptr) string {
	if pc == 0 {
		return "unknown"
	}

	f, _ := runtime.CallersFrames([]uintptr{pc}).Next()
	if f.File == "" {
		return "unknown"
	}

	res := filepath.Base(f.File) + ":" + strconv.Itoa(f.Line)

	if f.Function != "" {
		res += " " + f.Function[strings.LastIndex(f.Function, "/")+1:]
	}

	return res
}
