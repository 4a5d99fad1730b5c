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

package mongodriver

import (
	"context"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/FerretDB/mongodbhandler/internal/driver"
	"github.com/FerretDB/mongodbhandler/internal/util/observability"
)

// collection implements [driver.Collection].
type collection struct {
	c *mongo.Collection
}

// Name implements [driver.Collection].
func (c *collection) Name() string {
	return c.c.Name()
}

// FindOne implements [driver.Collection].
func (c *collection) FindOne(ctx context.Context, filter any, opts ...*options.FindOneOptions) (bson.M, error) {
	defer observability.FuncCall(ctx)()

	var doc bson.M

	err := c.c.FindOne(ctx, filter, opts...).Decode(&doc)
	if isNoDocuments(err) {
		return nil, nil
	}

	if err != nil {
		return nil, err
	}

	return doc, nil
}

// Find implements [driver.Collection].
func (c *collection) Find(ctx context.Context, filter any, opts ...*options.FindOptions) ([]bson.M, error) {
	defer observability.FuncCall(ctx)()

	cursor, err := c.c.Find(ctx, filter, opts...)
	if err != nil {
		return nil, err
	}

	var docs []bson.M
	if err = cursor.All(ctx, &docs); err != nil {
		return nil, err
	}

	return emptyIfNil(docs), nil
}

// InsertOne implements [driver.Collection].
func (c *collection) InsertOne(ctx context.Context, doc any, opts ...*options.InsertOneOptions) (*mongo.InsertOneResult, error) {
	return c.c.InsertOne(ctx, doc, opts...)
}

// InsertMany implements [driver.Collection].
func (c *collection) InsertMany(ctx context.Context, docs []any, opts ...*options.InsertManyOptions) (*mongo.InsertManyResult, error) {
	return c.c.InsertMany(ctx, docs, opts...)
}

// UpdateOne implements [driver.Collection].
func (c *collection) UpdateOne(ctx context.Context, filter, update any, opts ...*options.UpdateOptions) (*mongo.UpdateResult, error) {
	return c.c.UpdateOne(ctx, filter, update, opts...)
}

// UpdateMany implements [driver.Collection].
func (c *collection) UpdateMany(ctx context.Context, filter, update any, opts ...*options.UpdateOptions) (*mongo.UpdateResult, error) {
	return c.c.UpdateMany(ctx, filter, update, opts...)
}

// DeleteOne implements [driver.Collection].
func (c *collection) DeleteOne(ctx context.Context, filter any, opts ...*options.DeleteOptions) (*mongo.DeleteResult, error) {
	return c.c.DeleteOne(ctx, filter, opts...)
}

// DeleteMany implements [driver.Collection].
func (c *collection) DeleteMany(ctx context.Context, filter any, opts ...*options.DeleteOptions) (*mongo.DeleteResult, error) {
	return c.c.DeleteMany(ctx, filter, opts...)
}

// CountDocuments implements [driver.Collection].
func (c *collection) CountDocuments(ctx context.Context, filter any, opts ...*options.CountOptions) (int64, error) {
	return c.c.CountDocuments(ctx, filter, opts...)
}

// Distinct implements [driver.Collection].
func (c *collection) Distinct(ctx context.Context, fieldName string, filter any, opts ...*options.DistinctOptions) ([]any, error) {
	values, err := c.c.Distinct(ctx, fieldName, filter, opts...)
	if err != nil {
		return nil, err
	}

	return emptyIfNil(values), nil
}

// Indexes implements [driver.Collection].
func (c *collection) Indexes(ctx context.Context, opts ...*options.ListIndexesOptions) ([]bson.M, error) {
	defer observability.FuncCall(ctx)()

	cursor, err := c.c.Indexes().List(ctx, opts...)
	if err != nil {
		return nil, err
	}

	var res []bson.M
	if err = cursor.All(ctx, &res); err != nil {
		return nil, err
	}

	return emptyIfNil(res), nil
}

// IsCapped implements [driver.Collection].
func (c *collection) IsCapped(ctx context.Context) (bool, error) {
	defer observability.FuncCall(ctx)()

	spec, err := specification(ctx, c.c)
	if err != nil || spec == nil {
		return false, err
	}

	v, err := spec.Options.LookupErr("capped")
	if err != nil {
		return false, nil
	}

	capped, _ := v.BooleanOK()

	return capped, nil
}

// Options implements [driver.Collection].
func (c *collection) Options(ctx context.Context) (bson.M, error) {
	defer observability.FuncCall(ctx)()

	spec, err := specification(ctx, c.c)
	if err != nil || spec == nil {
		return nil, err
	}

	res := bson.M{}
	if len(spec.Options) == 0 {
		return res, nil
	}

	if err = bson.Unmarshal(spec.Options, &res); err != nil {
		return nil, err
	}

	return res, nil
}

// Rename implements [driver.Collection].
func (c *collection) Rename(ctx context.Context, newName string, dropTarget bool) error {
	defer observability.FuncCall(ctx)()

	db := c.c.Database()

	cmd := bson.D{
		{Key: "renameCollection", Value: db.Name() + "." + c.c.Name()},
		{Key: "to", Value: db.Name() + "." + newName},
		{Key: "dropTarget", Value: dropTarget},
	}

	return db.Client().Database("admin").RunCommand(ctx, cmd).Err()
}

// Drop implements [driver.Collection].
func (c *collection) Drop(ctx context.Context) error {
	return c.c.Drop(ctx)
}

// check interfaces
var (
	_ driver.Collection = (*collection)(nil)
)
