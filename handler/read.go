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

	"github.com/FerretDB/mongodbhandler/internal/driver"
)

// GetDataItem returns the first document matching req.Query, or nil if there is none.
//
// CollectionName and Query are required.
func (h *Handler) GetDataItem(ctx context.Context, req *Request, opts ...*options.FindOneOptions) (bson.M, error) {
	return dispatch(ctx, h, "GetDataItem", req, getDataItemReq,
		func(ctx context.Context, _ driver.Database, c driver.Collection) (bson.M, error) {
			return c.FindOne(ctx, req.Query, opts...)
		},
	)
}

// GetDataItemsMany returns all documents matching req.Query.
//
// CollectionName and Query are required.
// Sort, Skip, and Limit are applied if set; opts are applied after them.
func (h *Handler) GetDataItemsMany(ctx context.Context, req *Request, opts ...*options.FindOptions) ([]bson.M, error) {
	return dispatch(ctx, h, "GetDataItemsMany", req, getDataItemsManyReq,
		func(ctx context.Context, _ driver.Database, c driver.Collection) ([]bson.M, error) {
			o := options.Find()

			if !isAbsent(req.Sort) {
				o.SetSort(req.Sort)
			}

			if req.Skip != nil {
				o.SetSkip(*req.Skip)
			}

			if req.Limit != nil {
				o.SetLimit(*req.Limit)
			}

			return c.Find(ctx, req.Query, append([]*options.FindOptions{o}, opts...)...)
		},
	)
}

// GetFieldList returns distinct values of req.FieldName in documents matching req.Query.
//
// CollectionName and FieldName are required; Query is optional.
func (h *Handler) GetFieldList(ctx context.Context, req *Request, opts ...*options.DistinctOptions) ([]any, error) {
	return dispatch(ctx, h, "GetFieldList", req, getFieldListReq,
		func(ctx context.Context, _ driver.Database, c driver.Collection) ([]any, error) {
			return c.Distinct(ctx, req.FieldName, queryOrAll(req.Query), opts...)
		},
	)
}

// CountDataItems returns the number of documents matching req.Query,
// or -1 if the collection does not exist.
//
// CollectionName is required; Query is optional.
func (h *Handler) CountDataItems(ctx context.Context, req *Request, opts ...*options.CountOptions) (int64, error) {
	return dispatch(ctx, h, "CountDataItems", req, collectionReq,
		func(ctx context.Context, db driver.Database, c driver.Collection) (int64, error) {
			n, err := c.CountDocuments(ctx, queryOrAll(req.Query), opts...)
			if err != nil || n != 0 {
				return n, err
			}

			// distinguish an empty collection from a missing one
			exists, err := collectionExists(ctx, db, c.Name())
			if err != nil {
				return 0, err
			}

			if !exists {
				return -1, nil
			}

			return 0, nil
		},
	)
}

// GetIndices returns index descriptors of the collection.
//
// CollectionName is required.
func (h *Handler) GetIndices(ctx context.Context, req *Request, opts ...*options.ListIndexesOptions) ([]bson.M, error) {
	return dispatch(ctx, h, "GetIndices", req, collectionReq,
		func(ctx context.Context, _ driver.Database, c driver.Collection) ([]bson.M, error) {
			return c.Indexes(ctx, opts...)
		},
	)
}

// GetIndexes is an alias for GetIndices.
//
// Deprecated: use GetIndices instead.
func (h *Handler) GetIndexes(ctx context.Context, req *Request, opts ...*options.ListIndexesOptions) ([]bson.M, error) {
	return h.GetIndices(ctx, req, opts...)
}
