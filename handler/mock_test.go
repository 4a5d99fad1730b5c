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
	"sync"
	"testing"

	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/FerretDB/mongodbhandler/internal/driver"
	"github.com/FerretDB/mongodbhandler/internal/util/testutil"
)

// mockClient is a mock implementation of [driver.Client].
type mockClient struct {
	mock.Mock
}

func (m *mockClient) Database(name string, opts ...*options.DatabaseOptions) (driver.Database, error) {
	args := m.Called(name, opts)

	if args.Get(0) == nil {
		return nil, args.Error(1)
	}

	return args.Get(0).(driver.Database), args.Error(1)
}

func (m *mockClient) Ping(ctx context.Context) error {
	return m.Called(ctx).Error(0)
}

func (m *mockClient) Disconnect(ctx context.Context) error {
	return m.Called(ctx).Error(0)
}

func (m *mockClient) Mongo() *mongo.Client {
	return nil
}

// mockDatabase is a mock implementation of [driver.Database].
type mockDatabase struct {
	mock.Mock
	name string
}

func (m *mockDatabase) Name() string {
	return m.name
}

func (m *mockDatabase) Collection(name string) driver.Collection {
	return m.Called(name).Get(0).(driver.Collection)
}

func (m *mockDatabase) ListCollectionNames(ctx context.Context, filter any) ([]string, error) {
	args := m.Called(ctx, filter)

	if args.Get(0) == nil {
		return nil, args.Error(1)
	}

	return args.Get(0).([]string), args.Error(1)
}

func (m *mockDatabase) CreateCollection(ctx context.Context, name string, opts ...*options.CreateCollectionOptions) error {
	return m.Called(ctx, name, opts).Error(0)
}

func (m *mockDatabase) Drop(ctx context.Context) error {
	return m.Called(ctx).Error(0)
}

func (m *mockDatabase) Mongo() *mongo.Database {
	return nil
}

// mockCollection is a mock implementation of [driver.Collection].
type mockCollection struct {
	mock.Mock
	name string
}

func (m *mockCollection) Name() string {
	return m.name
}

func (m *mockCollection) FindOne(ctx context.Context, filter any, opts ...*options.FindOneOptions) (bson.M, error) {
	args := m.Called(ctx, filter, opts)

	if args.Get(0) == nil {
		return nil, args.Error(1)
	}

	return args.Get(0).(bson.M), args.Error(1)
}

func (m *mockCollection) Find(ctx context.Context, filter any, opts ...*options.FindOptions) ([]bson.M, error) {
	args := m.Called(ctx, filter, opts)

	if args.Get(0) == nil {
		return nil, args.Error(1)
	}

	return args.Get(0).([]bson.M), args.Error(1)
}

func (m *mockCollection) InsertOne(ctx context.Context, doc any, opts ...*options.InsertOneOptions) (*mongo.InsertOneResult, error) {
	args := m.Called(ctx, doc, opts)

	if args.Get(0) == nil {
		return nil, args.Error(1)
	}

	return args.Get(0).(*mongo.InsertOneResult), args.Error(1)
}

func (m *mockCollection) InsertMany(ctx context.Context, docs []any, opts ...*options.InsertManyOptions) (*mongo.InsertManyResult, error) {
	args := m.Called(ctx, docs, opts)

	if args.Get(0) == nil {
		return nil, args.Error(1)
	}

	return args.Get(0).(*mongo.InsertManyResult), args.Error(1)
}

func (m *mockCollection) UpdateOne(ctx context.Context, filter, update any, opts ...*options.UpdateOptions) (*mongo.UpdateResult, error) {
	args := m.Called(ctx, filter, update, opts)

	if args.Get(0) == nil {
		return nil, args.Error(1)
	}

	return args.Get(0).(*mongo.UpdateResult), args.Error(1)
}

func (m *mockCollection) UpdateMany(ctx context.Context, filter, update any, opts ...*options.UpdateOptions) (*mongo.UpdateResult, error) {
	args := m.Called(ctx, filter, update, opts)

	if args.Get(0) == nil {
		return nil, args.Error(1)
	}

	return args.Get(0).(*mongo.UpdateResult), args.Error(1)
}

func (m *mockCollection) DeleteOne(ctx context.Context, filter any, opts ...*options.DeleteOptions) (*mongo.DeleteResult, error) {
	args := m.Called(ctx, filter, opts)

	if args.Get(0) == nil {
		return nil, args.Error(1)
	}

	return args.Get(0).(*mongo.DeleteResult), args.Error(1)
}

func (m *mockCollection) DeleteMany(ctx context.Context, filter any, opts ...*options.DeleteOptions) (*mongo.DeleteResult, error) {
	args := m.Called(ctx, filter, opts)

	if args.Get(0) == nil {
		return nil, args.Error(1)
	}

	return args.Get(0).(*mongo.DeleteResult), args.Error(1)
}

func (m *mockCollection) CountDocuments(ctx context.Context, filter any, opts ...*options.CountOptions) (int64, error) {
	args := m.Called(ctx, filter, opts)
	return args.Get(0).(int64), args.Error(1)
}

func (m *mockCollection) Distinct(ctx context.Context, fieldName string, filter any, opts ...*options.DistinctOptions) ([]any, error) {
	args := m.Called(ctx, fieldName, filter, opts)

	if args.Get(0) == nil {
		return nil, args.Error(1)
	}

	return args.Get(0).([]any), args.Error(1)
}

func (m *mockCollection) Indexes(ctx context.Context, opts ...*options.ListIndexesOptions) ([]bson.M, error) {
	args := m.Called(ctx, opts)

	if args.Get(0) == nil {
		return nil, args.Error(1)
	}

	return args.Get(0).([]bson.M), args.Error(1)
}

func (m *mockCollection) IsCapped(ctx context.Context) (bool, error) {
	args := m.Called(ctx)
	return args.Bool(0), args.Error(1)
}

func (m *mockCollection) Options(ctx context.Context) (bson.M, error) {
	args := m.Called(ctx)

	if args.Get(0) == nil {
		return nil, args.Error(1)
	}

	return args.Get(0).(bson.M), args.Error(1)
}

func (m *mockCollection) Rename(ctx context.Context, newName string, dropTarget bool) error {
	return m.Called(ctx, newName, dropTarget).Error(0)
}

func (m *mockCollection) Drop(ctx context.Context) error {
	return m.Called(ctx).Error(0)
}

// setup contains mocks wired into a handler.
type setup struct {
	h      *Handler
	client *mockClient
	dbs    map[string]*mockDatabase

	// options passed to the connector
	m    sync.Mutex
	opts []*options.ClientOptions
}

// setupHandler returns a handler for the given databases with mocked driver.
//
// Mocks fail the test on any unexpected call; client.Database expectations are set for all databases.
func setupHandler(t testing.TB, names ...string) *setup {
	t.Helper()

	if len(names) == 0 {
		names = []string{testutil.DatabaseName(t)}
	}

	h, err := New(&Config{
		URI:           "mongodb://127.0.0.1:27017/",
		DatabaseNames: names,
		Logger:        testutil.Logger(t),
	})
	require.NoError(t, err)

	s := &setup{
		h:      h,
		client: new(mockClient),
		dbs:    make(map[string]*mockDatabase, len(names)),
	}
	s.client.Test(t)

	for _, name := range names {
		db := &mockDatabase{name: name}
		db.Test(t)

		s.dbs[name] = db
		s.client.On("Database", name, mock.Anything).Return(db, nil).Maybe()
	}

	h.connect = func(_ context.Context, opts ...*options.ClientOptions) (driver.Client, error) {
		s.m.Lock()
		defer s.m.Unlock()

		s.opts = append(s.opts, opts...)

		return s.client, nil
	}

	return s
}

// connect connects the handler and returns the mocked collection of the first database.
func (s *setup) connect(t testing.TB, collection string) *mockCollection {
	t.Helper()

	ok, err := s.h.Connect(testutil.Ctx(t))
	require.NoError(t, err)
	require.True(t, ok)

	return s.collection(t, s.h.config.DatabaseNames[0], collection)
}

// collection sets up a mocked collection in the given database.
func (s *setup) collection(t testing.TB, db, name string) *mockCollection {
	t.Helper()

	c := &mockCollection{name: name}
	c.Test(t)

	s.dbs[db].On("Collection", name).Return(c).Maybe()

	return c
}
