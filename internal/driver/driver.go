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

// Package driver defines the contract between the handler and the document database driver.
//
// The handler talks only to these interfaces.
// The production implementation over the official MongoDB driver lives in the mongodriver subpackage;
// tests substitute their own.
//
// Implementations return driver errors as is; they should not wrap or translate them.
package driver

import (
	"context"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// Connector opens a client with the given options.
// Options are merged in order; later options win.
//
// A nil client with a nil error means that the connection was not established for an unknown reason.
type Connector func(ctx context.Context, opts ...*options.ClientOptions) (Client, error)

// Client represents a connected database client.
//
// Client methods should be thread-safe.
type Client interface {
	// Database returns a database handle.
	// The database does not need to exist.
	Database(name string, opts ...*options.DatabaseOptions) (Database, error)

	// Ping checks that the primary is reachable.
	Ping(ctx context.Context) error

	// Disconnect closes all connections.
	Disconnect(ctx context.Context) error

	// Mongo returns the underlying driver client, if any.
	Mongo() *mongo.Client
}

// Database represents a database handle.
type Database interface {
	Name() string

	// Collection returns a collection handle.
	// The collection does not need to exist.
	Collection(name string) Collection

	// ListCollectionNames returns names of collections matching the filter.
	ListCollectionNames(ctx context.Context, filter any) ([]string, error)

	CreateCollection(ctx context.Context, name string, opts ...*options.CreateCollectionOptions) error

	// Drop drops the whole database.
	Drop(ctx context.Context) error

	// Mongo returns the underlying driver database, if any.
	Mongo() *mongo.Database
}

// Collection represents a collection handle.
type Collection interface {
	Name() string

	// FindOne returns the first matching document, or nil if there is none.
	FindOne(ctx context.Context, filter any, opts ...*options.FindOneOptions) (bson.M, error)

	// Find returns all matching documents.
	Find(ctx context.Context, filter any, opts ...*options.FindOptions) ([]bson.M, error)

	InsertOne(ctx context.Context, doc any, opts ...*options.InsertOneOptions) (*mongo.InsertOneResult, error)
	InsertMany(ctx context.Context, docs []any, opts ...*options.InsertManyOptions) (*mongo.InsertManyResult, error)

	UpdateOne(ctx context.Context, filter, update any, opts ...*options.UpdateOptions) (*mongo.UpdateResult, error)
	UpdateMany(ctx context.Context, filter, update any, opts ...*options.UpdateOptions) (*mongo.UpdateResult, error)

	DeleteOne(ctx context.Context, filter any, opts ...*options.DeleteOptions) (*mongo.DeleteResult, error)
	DeleteMany(ctx context.Context, filter any, opts ...*options.DeleteOptions) (*mongo.DeleteResult, error)

	CountDocuments(ctx context.Context, filter any, opts ...*options.CountOptions) (int64, error)
	Distinct(ctx context.Context, fieldName string, filter any, opts ...*options.DistinctOptions) ([]any, error)

	// Indexes returns index descriptors as returned by listIndexes.
	Indexes(ctx context.Context, opts ...*options.ListIndexesOptions) ([]bson.M, error)

	// IsCapped returns true if the collection exists and is capped.
	IsCapped(ctx context.Context) (bool, error)

	// Options returns collection options as returned by listCollections,
	// or nil if the collection does not exist.
	Options(ctx context.Context) (bson.M, error)

	// Rename renames the collection within the same database.
	Rename(ctx context.Context, newName string, dropTarget bool) error

	Drop(ctx context.Context) error
}
