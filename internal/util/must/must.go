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

// Package must provides helpers that panic on errors and broken invariants.
//
// They should be used only where an error is a programming bug, never for I/O.
package must

import (
	"fmt"
	"reflect"
)

// NotFail panics if err is not nil, returns res otherwise.
func NotFail[T any](res T, err error) T {
	if err != nil {
		panic(err)
	}

	return res
}

// NoError panics if err is not nil.
func NoError(err error) {
	if err != nil {
		panic(err)
	}
}

// NotBeZero panics if v is the zero value of its type.
func NotBeZero[T any](v T) {
	if reflect.ValueOf(&v).Elem().IsZero() {
		panic(fmt.Sprintf("v has zero value (%#v)", v))
	}
}

// BeTrue panics if b is false.
func BeTrue(b bool) {
	if !b {
		panic("not true")
	}
}
