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

// Package mongodriver implements the driver contract over the official MongoDB Go driver.
package mongodriver

import (
	"context"
	"errors"
	"strings"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"go.mongodb.org/mongo-driver/mongo/readpref"
	"go.opentelemetry.io/contrib/instrumentation/go.mongodb.org/mongo-driver/mongo/otelmongo"

	"github.com/FerretDB/mongodbhandler/internal/driver"
	"github.com/FerretDB/mongodbhandler/internal/util/lazyerrors"
	"github.com/FerretDB/mongodbhandler/internal/util/observability"
)

// invalidDatabaseNameChars contains characters that are not allowed in database names.
const invalidDatabaseNameChars = "/\\. \"$\x00"

// Connect connects to MongoDB.
//
// It implements [driver.Connector].
// Commands are traced with OpenTelemetry unless one of opts sets its own command monitor.
func Connect(ctx context.Context, opts ...*options.ClientOptions) (driver.Client, error) {
	defer observability.FuncCall(ctx)()

	all := make([]*options.ClientOptions, 0, len(opts)+1)
	all = append(all, options.Client().SetMonitor(otelmongo.NewMonitor()))
	all = append(all, opts...)

	c, err := mongo.Connect(ctx, all...)
	if err != nil {
		return nil, err
	}

	return &client{c: c}, nil
}

// client implements [driver.Client].
type client struct {
	c *mongo.Client
}

// checkDatabaseName returns an error if name can't be used as a database name.
func checkDatabaseName(name string) error {
	if name == "" {
		return lazyerrors.New("database name is empty")
	}

	if strings.ContainsAny(name, invalidDatabaseNameChars) {
		return lazyerrors.Errorf("database name %q contains invalid characters", name)
	}

	return nil
}

// Database implements [driver.Client].
func (c *client) Database(name string, opts ...*options.DatabaseOptions) (driver.Database, error) {
	if err := checkDatabaseName(name); err != nil {
		return nil, err
	}

	return &database{db: c.c.Database(name, opts...)}, nil
}

// Ping implements [driver.Client].
func (c *client) Ping(ctx context.Context) error {
	return c.c.Ping(ctx, readpref.Primary())
}

// Disconnect implements [driver.Client].
func (c *client) Disconnect(ctx context.Context) error {
	return c.c.Disconnect(ctx)
}

// Mongo implements [driver.Client].
func (c *client) Mongo() *mongo.Client {
	return c.c
}

// database implements [driver.Database].
type database struct {
	db *mongo.Database
}

// Name implements [driver.Database].
func (db *database) Name() string {
	return db.db.Name()
}

// Collection implements [driver.Database].
func (db *database) Collection(name string) driver.Collection {
	return &collection{c: db.db.Collection(name)}
}

// ListCollectionNames implements [driver.Database].
func (db *database) ListCollectionNames(ctx context.Context, filter any) ([]string, error) {
	return db.db.ListCollectionNames(ctx, filter)
}

// CreateCollection implements [driver.Database].
func (db *database) CreateCollection(ctx context.Context, name string, opts ...*options.CreateCollectionOptions) error {
	return db.db.CreateCollection(ctx, name, opts...)
}

// Drop implements [driver.Database].
func (db *database) Drop(ctx context.Context) error {
	return db.db.Drop(ctx)
}

// Mongo implements [driver.Database].
func (db *database) Mongo() *mongo.Database {
	return db.db
}

// check interfaces
var (
	_ driver.Connector = Connect
	_ driver.Client    = (*client)(nil)
	_ driver.Database  = (*database)(nil)
)

// isNoDocuments returns true if err is the driver's "no documents in result" error.
func isNoDocuments(err error) bool {
	return errors.Is(err, mongo.ErrNoDocuments)
}

// emptyIfNil returns an empty slice instead of nil.
func emptyIfNil[T any](s []T) []T {
	if s == nil {
		return []T{}
	}

	return s
}

// specification returns the listCollections entry for the collection, or nil if it does not exist.
func specification(ctx context.Context, c *mongo.Collection) (*mongo.CollectionSpecification, error) {
	specs, err := c.Database().ListCollectionSpecifications(ctx, bson.D{{Key: "name", Value: c.Name()}})
	if err != nil {
		return nil, err
	}

	if len(specs) == 0 {
		return nil, nil
	}

	return specs[0], nil
}
