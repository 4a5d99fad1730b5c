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

package testutil

import (
	"bytes"
	"runtime/debug"
	"strings"
	"sync"
	"testing"

	"github.com/stretchr/testify/require"
)

var (
	databaseNamesM sync.Mutex
	databaseNames  = make(map[string][]byte)

	collectionNamesM sync.Mutex
	collectionNames  = make(map[string][]byte)
)

// stack returns the stack of the caller without testutil frames.
func stack() []byte {
	s := bytes.Split(debug.Stack(), []byte("\n"))
	return bytes.Join(s[7:], []byte("\n"))
}

// sanitize replaces characters that are not allowed in database and collection names.
func sanitize(name string) string {
	return strings.NewReplacer("/", "_", " ", "_", "$", "_", ".", "_").Replace(name)
}

// DatabaseName returns a stable database name for that test.
//
// It panics if the same name was already returned for another test.
func DatabaseName(tb testing.TB) string {
	tb.Helper()

	// database names are always lowercase
	name := sanitize(strings.ToLower(tb.Name()))

	require.Less(tb, len(name), 64)

	databaseNamesM.Lock()
	defer databaseNamesM.Unlock()

	if another, ok := databaseNames[name]; ok {
		tb.Logf("Database name %q already used by another test:\n%s", name, another)
		panic("duplicate database name")
	}

	databaseNames[name] = stack()

	return name
}

// CollectionName returns a stable collection name for that test.
//
// It panics if the same name was already returned for another test.
func CollectionName(tb testing.TB) string {
	tb.Helper()

	// do not use strings.ToLower because collection names can contain uppercase letters
	name := sanitize(tb.Name())

	require.Less(tb, len(name), 255)

	collectionNamesM.Lock()
	defer collectionNamesM.Unlock()

	if another, ok := collectionNames[name]; ok {
		tb.Logf("Collection name %q already used by another test:\n%s", name, another)
		panic("duplicate collection name")
	}

	collectionNames[name] = stack()

	return name
}
