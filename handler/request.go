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
	"fmt"
	"reflect"

	"go.mongodb.org/mongo-driver/bson"
)

// Request represents parameters of a single operation.
//
// Which fields are required depends on the operation.
// String fields are absent when empty; Query and Data are absent when nil or holding a nil map or slice.
// An empty filter like bson.D{} is present.
type Request struct {
	// Database name; if empty, the first configured database is used.
	DBName string

	CollectionName string

	// Query filter, for example, bson.D{{"name", "a"}}.
	// If it is optional and absent, all documents match.
	Query any

	// Document to insert, a slice of documents to insert, or fields to set.
	Data any

	// Field name for GetFieldList; new collection name for RenameCollection.
	FieldName string

	// Sort, Skip, and Limit are used by GetDataItemsMany only.
	// Nil Skip or Limit means "not set"; zero is a valid value.
	Sort  any
	Skip  *int64
	Limit *int64
}

// RenameOptions represents options for RenameCollection.
type RenameOptions struct {
	// Drop the target collection if it exists.
	DropTarget bool
}

// requirements lists request fields that an operation requires.
type requirements struct {
	dbName         bool
	collectionName bool
	query          bool
	data           bool
	fieldName      bool

	// Data must be a slice or array of documents, if present.
	dataSequence bool
}

// Requirements of all operations taking a Request.
var (
	getDataItemReq         = requirements{collectionName: true, query: true}
	getDataItemsManyReq    = requirements{collectionName: true, query: true}
	addDataItemReq         = requirements{collectionName: true, data: true}
	addMultipleDataItemReq = requirements{collectionName: true, data: true, dataSequence: true}
	modifyDataItemReq      = requirements{collectionName: true, data: true}
	deleteItemReq          = requirements{collectionName: true, query: true}
	getFieldListReq        = requirements{collectionName: true, fieldName: true}
	renameCollectionReq    = requirements{collectionName: true, fieldName: true}
	collectionReq          = requirements{collectionName: true}
)

// check returns an error if req does not satisfy requirements.
//
// Fields are checked in a fixed order; the first missing one is reported.
func (r requirements) check(req *Request) error {
	if req == nil {
		req = new(Request)
	}

	for _, f := range []struct {
		name     string
		required bool
		present  bool
	}{
		{"DBName", r.dbName, req.DBName != ""},
		{"CollectionName", r.collectionName, req.CollectionName != ""},
		{"Query", r.query, !isAbsent(req.Query)},
		{"Data", r.data, !isAbsent(req.Data)},
		{"FieldName", r.fieldName, req.FieldName != ""},
	} {
		if f.required && !f.present {
			return newErrorWithArgument(
				ErrorCodeMissingParameter,
				fmt.Errorf("command called with missing required parameter '%s'", f.name),
				f.name,
			)
		}
	}

	if r.dataSequence && !isAbsent(req.Data) && !isSequence(req.Data) {
		return newErrorWithArgument(
			ErrorCodeTypeMismatch,
			fmt.Errorf("parameter 'Data' must be a slice of documents, got %T; use AddDataItem to insert a single document", req.Data),
			"Data",
		)
	}

	return nil
}

// Types that are slices, but represent a single document.
var (
	typeD   = reflect.TypeOf(bson.D{})
	typeRaw = reflect.TypeOf(bson.Raw{})
)

// isAbsent returns true for nil and for a nil map, slice, pointer or interface.
// The driver encodes a nil document as an empty one.
func isAbsent(v any) bool {
	if v == nil {
		return true
	}

	rv := reflect.ValueOf(v)

	switch rv.Kind() { //nolint:exhaustive // other kinds can't be nil
	case reflect.Map, reflect.Slice, reflect.Pointer, reflect.Interface:
		return rv.IsNil()
	default:
		return false
	}
}

// isSequence returns true if v is a slice or array of documents.
func isSequence(v any) bool {
	t := reflect.TypeOf(v)
	if t == nil {
		return false
	}

	switch t.Kind() { //nolint:exhaustive // all other kinds are not sequences
	case reflect.Slice, reflect.Array:
		if t.ConvertibleTo(typeD) || t.ConvertibleTo(typeRaw) {
			return false
		}

		return true
	default:
		return false
	}
}

// toSlice converts a slice or array to []any.
//
// It panics if v is not a sequence; check with isSequence first.
func toSlice(v any) []any {
	if res, ok := v.([]any); ok {
		return res
	}

	rv := reflect.ValueOf(v)

	res := make([]any, rv.Len())
	for i := range res {
		res[i] = rv.Index(i).Interface()
	}

	return res
}

// queryOrAll returns query, or an empty filter that matches all documents if query is absent.
func queryOrAll(query any) any {
	if isAbsent(query) {
		return bson.D{}
	}

	return query
}
