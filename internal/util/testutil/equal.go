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
	"fmt"
	"testing"

	"github.com/pmezard/go-difflib/difflib"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson"
)

// AssertEqualDocuments asserts that two documents are equal.
//
// On failure, it reports both documents as canonical Extended JSON with a unified diff.
func AssertEqualDocuments(tb testing.TB, expected, actual any) bool {
	tb.Helper()

	if assert.ObjectsAreEqual(expected, actual) {
		return true
	}

	expectedS, actualS, diff := diffDocuments(tb, expected, actual)
	msg := fmt.Sprintf("Not equal: \nexpected: %s\nactual  : %s\n%s", expectedS, actualS, diff)

	return assert.Fail(tb, msg)
}

// diffDocuments returns a readable form of given documents and the difference between them.
func diffDocuments(tb testing.TB, expected, actual any) (expectedS string, actualS string, diff string) {
	tb.Helper()

	expectedS = marshal(expected)
	actualS = marshal(actual)

	diff, err := difflib.GetUnifiedDiffString(difflib.UnifiedDiff{
		A:        difflib.SplitLines(expectedS),
		FromFile: "expected",
		B:        difflib.SplitLines(actualS),
		ToFile:   "actual",
		Context:  1,
	})
	require.NoError(tb, err)

	return
}

// marshal returns indented canonical Extended JSON for v.
//
// Values that can't be marshaled as a document are formatted with %#v.
func marshal(v any) string {
	if v == nil {
		return "null"
	}

	b, err := bson.MarshalExtJSONIndent(v, true, false, "", "  ")
	if err != nil {
		return fmt.Sprintf("%#v", v)
	}

	return string(b)
}
