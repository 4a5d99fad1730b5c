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
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/FerretDB/mongodbhandler/internal/driver"
)

// AddDataItem inserts req.Data as a single document.
//
// CollectionName and Data are required.
func (h *Handler) AddDataItem(ctx context.Context, req *Request, opts ...*options.InsertOneOptions) (*mongo.InsertOneResult, error) {
	return dispatch(ctx, h, "AddDataItem", req, addDataItemReq,
		func(ctx context.Context, _ driver.Database, c driver.Collection) (*mongo.InsertOneResult, error) {
			return c.InsertOne(ctx, req.Data, opts...)
		},
	)
}

// AddMultipleDataItems inserts all documents of req.Data.
//
// CollectionName and Data are required.
// Data must be a slice or array of documents; ErrorCodeTypeMismatch is returned otherwise.
// Partial failures are reported exactly as the driver reports them.
func (h *Handler) AddMultipleDataItems(ctx context.Context, req *Request, opts ...*options.InsertManyOptions) (*mongo.InsertManyResult, error) {
	return dispatch(ctx, h, "AddMultipleDataItems", req, addMultipleDataItemReq,
		func(ctx context.Context, _ driver.Database, c driver.Collection) (*mongo.InsertManyResult, error) {
			return c.InsertMany(ctx, toSlice(req.Data), opts...)
		},
	)
}

// ModifyDataItem sets fields of req.Data in the first document matching req.Query.
//
// CollectionName and Data are required; if Query is absent, the first document in the collection is modified.
func (h *Handler) ModifyDataItem(ctx context.Context, req *Request, opts ...*options.UpdateOptions) (*mongo.UpdateResult, error) {
	return dispatch(ctx, h, "ModifyDataItem", req, modifyDataItemReq,
		func(ctx context.Context, _ driver.Database, c driver.Collection) (*mongo.UpdateResult, error) {
			return c.UpdateOne(ctx, queryOrAll(req.Query), bson.D{{Key: "$set", Value: req.Data}}, opts...)
		},
	)
}

// AppendDataItem is an alias for ModifyDataItem.
//
// Deprecated: use ModifyDataItem instead.
func (h *Handler) AppendDataItem(ctx context.Context, req *Request, opts ...*options.UpdateOptions) (*mongo.UpdateResult, error) {
	return h.ModifyDataItem(ctx, req, opts...)
}

// ModifyDataItemsMany sets fields of req.Data in all documents matching req.Query.
//
// CollectionName and Data are required; if Query is absent, all documents are modified.
func (h *Handler) ModifyDataItemsMany(ctx context.Context, req *Request, opts ...*options.UpdateOptions) (*mongo.UpdateResult, error) {
	return dispatch(ctx, h, "ModifyDataItemsMany", req, modifyDataItemReq,
		func(ctx context.Context, _ driver.Database, c driver.Collection) (*mongo.UpdateResult, error) {
			return c.UpdateMany(ctx, queryOrAll(req.Query), bson.D{{Key: "$set", Value: req.Data}}, opts...)
		},
	)
}

// DeleteItemSingle deletes the first document matching req.Query.
//
// CollectionName and Query are required.
func (h *Handler) DeleteItemSingle(ctx context.Context, req *Request, opts ...*options.DeleteOptions) (*mongo.DeleteResult, error) {
	return dispatch(ctx, h, "DeleteItemSingle", req, deleteItemReq,
		func(ctx context.Context, _ driver.Database, c driver.Collection) (*mongo.DeleteResult, error) {
			return c.DeleteOne(ctx, req.Query, opts...)
		},
	)
}

// DeleteItemMany deletes all documents matching req.Query.
//
// CollectionName and Query are required.
func (h *Handler) DeleteItemMany(ctx context.Context, req *Request, opts ...*options.DeleteOptions) (*mongo.DeleteResult, error) {
	return dispatch(ctx, h, "DeleteItemMany", req, deleteItemReq,
		func(ctx context.Context, _ driver.Database, c driver.Collection) (*mongo.DeleteResult, error) {
			return c.DeleteMany(ctx, req.Query, opts...)
		},
	)
}
