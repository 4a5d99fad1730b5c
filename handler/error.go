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

package handler

import (
	"errors"
	"fmt"

	"golang.org/x/exp/slices"

	"github.com/FerretDB/mongodbhandler/internal/util/debugbuild"
)

//go:generate stringer -linecomment -type ErrorCode

// ErrorCode represents a handler error code.
type ErrorCode int

// Error codes.
const (
	_ ErrorCode = iota

	// Configuration errors, returned by New.
	ErrorCodeInvalidConfig // InvalidConfig

	// Precondition errors.
	ErrorCodeNotConnected           // NotConnected
	ErrorCodeAlreadyConnected       // AlreadyConnected
	ErrorCodeDatabaseNotInitialized // DatabaseNotInitialized
	ErrorCodeDatabaseNameIsNull     // DatabaseNameIsNull

	// Validation errors.
	ErrorCodeMissingParameter // MissingParameter
	ErrorCodeTypeMismatch     // TypeMismatch
)

// Error represents a handler error.
//
// Errors reported by the database driver are never converted to *Error;
// they are returned as is.
type Error struct {
	err      error
	argument string
	code     ErrorCode
}

// newError creates a new handler error.
//
// Code must not be 0. Err must not be nil.
func newError(code ErrorCode, err error) *Error {
	return newErrorWithArgument(code, err, "")
}

// newErrorWithArgument creates a new handler error with the argument
// (parameter or database name) that caused it.
//
// Code must not be 0. Err must not be nil.
func newErrorWithArgument(code ErrorCode, err error, argument string) *Error {
	if code == 0 {
		panic("handler.newError: code must not be 0")
	}

	if err == nil {
		panic("handler.newError: err must not be nil")
	}

	return &Error{
		err:      err,
		argument: argument,
		code:     code,
	}
}

// Code returns the error code.
func (e *Error) Code() ErrorCode {
	return e.code
}

// Argument returns the parameter or database name that caused the error, if any.
func (e *Error) Argument() string {
	return e.argument
}

// Error implements error interface.
func (e *Error) Error() string {
	return fmt.Sprintf("%s: %v", e.code, e.err)
}

// Unwrap returns the underlying error.
func (e *Error) Unwrap() error {
	return e.err
}

// ErrorCodeIs returns true if err is (or wraps) *Error with one of the given error codes.
//
// At least one error code must be given.
func ErrorCodeIs(err error, code ErrorCode, codes ...ErrorCode) bool {
	var e *Error
	if !errors.As(err, &e) {
		return false
	}

	return e.code == code || slices.Contains(codes, e.code)
}

// checkError enforces operation contracts.
//
// If err is *Error, it must have one of the given error codes.
// If that's not the case, checkError panics in debug builds.
//
// It does nothing in non-debug builds.
func checkError(err error, codes ...ErrorCode) {
	if !debugbuild.Enabled {
		return
	}

	var e *Error
	if !errors.As(err, &e) {
		return
	}

	if !slices.Contains(codes, e.code) {
		panic(fmt.Sprintf("error code is not in %v: %v", codes, err))
	}
}

// check interfaces
var (
	_ error = (*Error)(nil)
)
