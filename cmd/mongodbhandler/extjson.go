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

package main

import (
	"fmt"
	"io"

	"go.mongodb.org/mongo-driver/bson"

	"github.com/FerretDB/mongodbhandler/internal/util/lazyerrors"
)

// parseDocument parses a document from Extended JSON in canonical or relaxed mode.
//
// It returns nil for an empty string and a non-nil empty document for `{}`.
func parseDocument(s string) (bson.D, error) {
	if s == "" {
		return nil, nil
	}

	var doc bson.D
	if err := bson.UnmarshalExtJSON([]byte(s), false, &doc); err != nil {
		return nil, fmt.Errorf("invalid Extended JSON document %q: %w", s, err)
	}

	if doc == nil {
		doc = bson.D{}
	}

	return doc, nil
}

// parseDocuments parses each of the given strings as a document.
func parseDocuments(ss []string) ([]bson.D, error) {
	res := make([]bson.D, len(ss))

	for i, s := range ss {
		doc, err := parseDocument(s)
		if err != nil {
			return nil, err
		}

		if doc == nil {
			return nil, fmt.Errorf("document #%d is empty", i)
		}

		res[i] = doc
	}

	return res, nil
}

// writeDocument writes doc to w as relaxed Extended JSON on a single line.
func writeDocument(w io.Writer, doc any) error {
	b, err := bson.MarshalExtJSON(doc, false, false)
	if err != nil {
		return lazyerrors.Error(err)
	}

	if _, err = fmt.Fprintf(w, "%s\n", b); err != nil {
		return lazyerrors.Error(err)
	}

	return nil
}
