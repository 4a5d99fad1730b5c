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
	"context"
	"fmt"

	"go.mongodb.org/mongo-driver/bson"
	"golang.org/x/exp/slices"

	"github.com/FerretDB/mongodbhandler/internal/driver"
	"github.com/FerretDB/mongodbhandler/internal/util/lazyerrors"
)

// connection returns the current connection or ErrorCodeNotConnected error.
func (h *Handler) connection() (*connection, error) {
	c := h.conn.Load()
	if c == nil {
		return nil, newError(
			ErrorCodeNotConnected,
			lazyerrors.New("attempted to access MongoDB before connection has been established; call Connect first"),
		)
	}

	return c, nil
}

// database returns the resolved database with the given name,
// or the first resolved database if name is empty.
func (c *connection) database(name string) (driver.Database, error) {
	if name == "" {
		if len(c.entries) == 0 {
			return nil, newError(ErrorCodeNotConnected, lazyerrors.New("no databases were resolved"))
		}

		return c.entries[0].db, nil
	}

	for _, e := range c.entries {
		if e.name == name {
			return e.db, nil
		}
	}

	return nil, newErrorWithArgument(
		ErrorCodeDatabaseNotInitialized,
		fmt.Errorf(
			"attempted to access a non-initialized database %q; was it included in DatabaseNames?",
			name,
		),
		name,
	)
}

// resolveDatabase returns the database for the request.
//
// All operations resolve databases there.
// An empty name means the first configured database.
func (h *Handler) resolveDatabase(name string) (driver.Database, error) {
	c, err := h.connection()
	if err != nil {
		return nil, err
	}

	if name == "" {
		if len(h.config.DatabaseNames) == 0 {
			return nil, newError(ErrorCodeDatabaseNameIsNull, lazyerrors.New("database name is null"))
		}

		name = h.config.DatabaseNames[0]
	}

	return c.database(name)
}

// collectionExists returns true if the collection with the given name exists in db.
func collectionExists(ctx context.Context, db driver.Database, name string) (bool, error) {
	names, err := db.ListCollectionNames(ctx, bson.D{{Key: "name", Value: name}})
	if err != nil {
		return false, err
	}

	return slices.Contains(names, name), nil
}
