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

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo/options"
	"go.uber.org/zap"
	"golang.org/x/exp/slices"

	"github.com/FerretDB/mongodbhandler/internal/driver"
)

// IsCapped returns true if the collection is capped.
// It returns false if the collection does not exist.
//
// CollectionName is required.
func (h *Handler) IsCapped(ctx context.Context, req *Request) (bool, error) {
	return dispatch(ctx, h, "IsCapped", req, collectionReq,
		func(ctx context.Context, _ driver.Database, c driver.Collection) (bool, error) {
			return c.IsCapped(ctx)
		},
	)
}

// GetOptions returns options the collection was created with,
// or nil if the collection does not exist.
//
// CollectionName is required.
func (h *Handler) GetOptions(ctx context.Context, req *Request) (bson.M, error) {
	return dispatch(ctx, h, "GetOptions", req, collectionReq,
		func(ctx context.Context, _ driver.Database, c driver.Collection) (bson.M, error) {
			return c.Options(ctx)
		},
	)
}

// RenameCollection renames the collection to req.FieldName within the same database.
//
// CollectionName and FieldName are required.
func (h *Handler) RenameCollection(ctx context.Context, req *Request, opts ...*RenameOptions) (bool, error) {
	return dispatch(ctx, h, "RenameCollection", req, renameCollectionReq,
		func(ctx context.Context, _ driver.Database, c driver.Collection) (bool, error) {
			var dropTarget bool
			for _, o := range opts {
				if o != nil {
					dropTarget = o.DropTarget
				}
			}

			if err := c.Rename(ctx, req.FieldName, dropTarget); err != nil {
				return false, err
			}

			return true, nil
		},
	)
}

// DoesCollectionExist returns true if the collection exists.
//
// CollectionName is required.
// It returns false (without an error) if the database is not configured or the driver fails;
// it still returns an error if the handler is not connected or the request is invalid.
func (h *Handler) DoesCollectionExist(ctx context.Context, req *Request) (bool, error) {
	if req == nil {
		req = new(Request)
	}

	c := &call{
		op:         "DoesCollectionExist",
		db:         req.DBName,
		collection: req.CollectionName,
		codes:      resolutionCodes,
	}

	return run(ctx, h, c, func(ctx context.Context) (bool, error) {
		if err := collectionReq.check(req); err != nil {
			return false, err
		}

		db, err := h.resolveDatabase(req.DBName)
		if err != nil {
			if ErrorCodeIs(err, ErrorCodeNotConnected) {
				return false, err
			}

			return false, nil
		}

		exists, err := collectionExists(ctx, db, req.CollectionName)
		if err != nil {
			h.l.Debug("Collection existence check failed", zap.Error(err))
			return false, nil
		}

		return exists, nil
	})
}

// CreateCollection creates a new collection.
//
// CollectionName is required.
func (h *Handler) CreateCollection(ctx context.Context, req *Request, opts ...*options.CreateCollectionOptions) (bool, error) {
	return dispatchDatabase(ctx, h, "CreateCollection", req, collectionReq,
		func(ctx context.Context, db driver.Database) (bool, error) {
			if err := db.CreateCollection(ctx, req.CollectionName, opts...); err != nil {
				return false, err
			}

			return true, nil
		},
	)
}

// DropCollection drops the collection.
//
// CollectionName is required.
func (h *Handler) DropCollection(ctx context.Context, req *Request) (bool, error) {
	return dispatch(ctx, h, "DropCollection", req, collectionReq,
		func(ctx context.Context, _ driver.Database, c driver.Collection) (bool, error) {
			if err := c.Drop(ctx); err != nil {
				return false, err
			}

			return true, nil
		},
	)
}

// DropDatabase drops the database with the given name.
//
// Only configured databases can be dropped: it returns false without contacting the driver
// if name is empty or not in DatabaseNames.
func (h *Handler) DropDatabase(ctx context.Context, name string) (bool, error) {
	c := &call{
		op:    "DropDatabase",
		db:    name,
		codes: []ErrorCode{ErrorCodeNotConnected},
	}

	return run(ctx, h, c, func(ctx context.Context) (bool, error) {
		if name == "" || !slices.Contains(h.config.DatabaseNames, name) {
			return false, nil
		}

		db, err := h.resolveDatabase(name)
		if err != nil {
			if ErrorCodeIs(err, ErrorCodeNotConnected) {
				return false, err
			}

			return false, nil
		}

		if err = db.Drop(ctx); err != nil {
			return false, err
		}

		return true, nil
	})
}
