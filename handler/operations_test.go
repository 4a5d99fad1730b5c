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
	"errors"
	"testing"

	"github.com/AlekSi/pointer"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/FerretDB/mongodbhandler/internal/util/testutil"
)

func TestGetDataItemsMany(t *testing.T) {
	t.Parallel()

	s := setupHandler(t)
	ctx := testutil.Ctx(t)
	c := s.connect(t, "c")

	docs := []bson.M{{"v": int32(1)}, {"v": int32(2)}}

	c.On("Find", mock.Anything, bson.D{}, mock.MatchedBy(func(opts []*options.FindOptions) bool {
		if len(opts) != 2 {
			return false
		}

		o := opts[0]

		return o.Skip != nil && *o.Skip == 1 &&
			o.Limit != nil && *o.Limit == 0 &&
			assert.ObjectsAreEqual(bson.D{{Key: "v", Value: -1}}, o.Sort) &&
			opts[1].Projection != nil
	})).Return(docs, nil).Once()

	res, err := s.h.GetDataItemsMany(ctx, &Request{
		CollectionName: "c",
		Query:          bson.D{},
		Sort:           bson.D{{Key: "v", Value: -1}},
		Skip:           pointer.ToInt64(1),
		Limit:          pointer.ToInt64(0),
	}, options.Find().SetProjection(bson.D{{Key: "_id", Value: 0}}))
	require.NoError(t, err)
	assert.Equal(t, docs, res)

	c.On("Find", mock.Anything, bson.D{}, mock.MatchedBy(func(opts []*options.FindOptions) bool {
		return len(opts) == 1 && opts[0].Sort == nil && opts[0].Skip == nil && opts[0].Limit == nil
	})).Return([]bson.M{}, nil).Once()

	res, err = s.h.GetDataItemsMany(ctx, &Request{CollectionName: "c", Query: bson.D{}, Sort: bson.D(nil)})
	require.NoError(t, err)
	assert.Empty(t, res)

	c.AssertExpectations(t)
}

func TestGetDataItemNoMatch(t *testing.T) {
	t.Parallel()

	s := setupHandler(t)
	c := s.connect(t, "c")

	c.On("FindOne", mock.Anything, bson.D{{Key: "v", Value: 42}}, mock.Anything).Return(nil, nil).Once()

	res, err := s.h.GetDataItem(testutil.Ctx(t), completeRequest())
	require.NoError(t, err)
	assert.Nil(t, res)
}

func TestGetFieldList(t *testing.T) {
	t.Parallel()

	s := setupHandler(t)
	ctx := testutil.Ctx(t)
	c := s.connect(t, "c")

	c.On("Distinct", mock.Anything, "v", bson.D{}, mock.Anything).Return([]any{"a", "b"}, nil).Twice()
	c.On("Distinct", mock.Anything, "v", bson.D{{Key: "x", Value: 1}}, mock.Anything).Return([]any{"a"}, nil).Once()

	res, err := s.h.GetFieldList(ctx, &Request{CollectionName: "c", FieldName: "v"})
	require.NoError(t, err)
	assert.Equal(t, []any{"a", "b"}, res)

	// a nil map is an absent filter, not an empty document
	res, err = s.h.GetFieldList(ctx, &Request{CollectionName: "c", FieldName: "v", Query: bson.M(nil)})
	require.NoError(t, err)
	assert.Equal(t, []any{"a", "b"}, res)

	res, err = s.h.GetFieldList(ctx, &Request{CollectionName: "c", FieldName: "v", Query: bson.D{{Key: "x", Value: 1}}})
	require.NoError(t, err)
	assert.Equal(t, []any{"a"}, res)

	c.AssertExpectations(t)
}

func TestCountDataItems(t *testing.T) {
	t.Parallel()

	listErr := errors.New("list failed")

	for name, tc := range map[string]struct {
		count    int64
		names    []string // nil if ListCollectionNames is not expected
		listErr  error
		expected int64
		err      error
	}{
		"NonEmpty": {
			count:    3,
			expected: 3,
		},
		"Empty": {
			count:    0,
			names:    []string{"c"},
			expected: 0,
		},
		"Missing": {
			count:    0,
			names:    []string{},
			expected: -1,
		},
		"ListError": {
			count:   0,
			names:   []string{},
			listErr: listErr,
			err:     listErr,
		},
	} {
		name, tc := name, tc
		t.Run(name, func(t *testing.T) {
			t.Parallel()

			s := setupHandler(t)
			c := s.connect(t, "c")
			db := s.dbs[s.h.config.DatabaseNames[0]]

			c.On("CountDocuments", mock.Anything, bson.D{}, mock.Anything).Return(tc.count, nil).Once()

			if tc.names != nil {
				db.On("ListCollectionNames", mock.Anything, bson.D{{Key: "name", Value: "c"}}).Return(tc.names, tc.listErr).Once()
			}

			res, err := s.h.CountDataItems(testutil.Ctx(t), &Request{CollectionName: "c"})
			if tc.err != nil {
				assert.Same(t, tc.err, err)
				return
			}

			require.NoError(t, err)
			assert.Equal(t, tc.expected, res)

			c.AssertExpectations(t)
			db.AssertExpectations(t)
		})
	}
}

func TestGetIndices(t *testing.T) {
	t.Parallel()

	s := setupHandler(t)
	ctx := testutil.Ctx(t)
	c := s.connect(t, "c")

	indexes := []bson.M{{"name": "_id_", "key": bson.M{"_id": int32(1)}}}
	c.On("Indexes", mock.Anything, mock.Anything).Return(indexes, nil).Twice()

	res, err := s.h.GetIndices(ctx, &Request{CollectionName: "c"})
	require.NoError(t, err)
	assert.Equal(t, indexes, res)

	res, err = s.h.GetIndexes(ctx, &Request{CollectionName: "c"})
	require.NoError(t, err)
	assert.Equal(t, indexes, res)

	c.AssertExpectations(t)
}

func TestAddMultipleDataItems(t *testing.T) {
	t.Parallel()

	s := setupHandler(t)
	ctx := testutil.Ctx(t)
	c := s.connect(t, "c")

	for _, data := range []any{bson.D{{Key: "v", Value: 1}}, bson.M{"v": 1}, "v"} {
		_, err := s.h.AddMultipleDataItems(ctx, &Request{CollectionName: "c", Data: data})

		var e *Error
		require.ErrorAs(t, err, &e)
		assert.Equal(t, ErrorCodeTypeMismatch, e.Code())
		assert.Equal(t, "Data", e.Argument())
	}

	inserted := &mongo.InsertManyResult{InsertedIDs: []any{int32(1), int32(2)}}
	expected := []any{bson.D{{Key: "_id", Value: 1}}, bson.D{{Key: "_id", Value: 2}}}
	c.On("InsertMany", mock.Anything, expected, mock.Anything).Return(inserted, nil).Once()

	res, err := s.h.AddMultipleDataItems(ctx, &Request{
		CollectionName: "c",
		Data:           []bson.D{{{Key: "_id", Value: 1}}, {{Key: "_id", Value: 2}}},
	})
	require.NoError(t, err)
	assert.Same(t, inserted, res)

	c.AssertExpectations(t)
}

func TestWrites(t *testing.T) {
	t.Parallel()

	s := setupHandler(t)
	ctx := testutil.Ctx(t)
	c := s.connect(t, "c")

	doc := bson.D{{Key: "v", Value: 42}}
	set := bson.D{{Key: "$set", Value: bson.D{{Key: "w", Value: 1}}}}

	c.On("InsertOne", mock.Anything, doc, mock.Anything).Return(&mongo.InsertOneResult{InsertedID: 1}, nil).Once()
	c.On("UpdateOne", mock.Anything, bson.D{}, set, mock.Anything).Return(&mongo.UpdateResult{MatchedCount: 1}, nil).Twice()
	c.On("UpdateMany", mock.Anything, doc, set, mock.Anything).Return(&mongo.UpdateResult{MatchedCount: 2}, nil).Once()
	c.On("DeleteOne", mock.Anything, doc, mock.Anything).Return(&mongo.DeleteResult{DeletedCount: 1}, nil).Once()
	c.On("DeleteMany", mock.Anything, doc, mock.Anything).Return(&mongo.DeleteResult{DeletedCount: 2}, nil).Once()

	ins, err := s.h.AddDataItem(ctx, &Request{CollectionName: "c", Data: doc})
	require.NoError(t, err)
	assert.Equal(t, 1, ins.InsertedID)

	upd, err := s.h.ModifyDataItem(ctx, &Request{CollectionName: "c", Data: bson.D{{Key: "w", Value: 1}}})
	require.NoError(t, err)
	assert.Equal(t, int64(1), upd.MatchedCount)

	upd, err = s.h.AppendDataItem(ctx, &Request{CollectionName: "c", Data: bson.D{{Key: "w", Value: 1}}})
	require.NoError(t, err)
	assert.Equal(t, int64(1), upd.MatchedCount)

	upd, err = s.h.ModifyDataItemsMany(ctx, &Request{CollectionName: "c", Query: doc, Data: bson.D{{Key: "w", Value: 1}}})
	require.NoError(t, err)
	assert.Equal(t, int64(2), upd.MatchedCount)

	del, err := s.h.DeleteItemSingle(ctx, &Request{CollectionName: "c", Query: doc})
	require.NoError(t, err)
	assert.Equal(t, int64(1), del.DeletedCount)

	del, err = s.h.DeleteItemMany(ctx, &Request{CollectionName: "c", Query: doc})
	require.NoError(t, err)
	assert.Equal(t, int64(2), del.DeletedCount)

	c.AssertExpectations(t)
}

func TestDriverErrors(t *testing.T) {
	t.Parallel()

	s := setupHandler(t)
	ctx := testutil.Ctx(t)
	c := s.connect(t, "c")

	driverErr := mongo.CommandError{Code: 11000, Name: "DuplicateKey", Message: "duplicate key"}
	c.On("InsertOne", mock.Anything, mock.Anything, mock.Anything).Return(nil, driverErr).Once()

	res, err := s.h.AddDataItem(ctx, &Request{CollectionName: "c", Data: bson.D{{Key: "_id", Value: 1}}})
	assert.Nil(t, res)
	assert.Equal(t, driverErr, err, "driver errors must not be wrapped")
	assert.False(t, ErrorCodeIs(err, ErrorCodeMissingParameter, ErrorCodeTypeMismatch))

	c.AssertExpectations(t)
}

func TestCollectionOperations(t *testing.T) {
	t.Parallel()

	s := setupHandler(t)
	ctx := testutil.Ctx(t)
	c := s.connect(t, "c")
	db := s.dbs[s.h.config.DatabaseNames[0]]

	c.On("IsCapped", mock.Anything).Return(true, nil).Once()
	c.On("Options", mock.Anything).Return(bson.M{"capped": true, "size": int32(4096)}, nil).Once()
	c.On("Rename", mock.Anything, "d", false).Return(nil).Once()
	c.On("Rename", mock.Anything, "d", true).Return(nil).Once()
	c.On("Drop", mock.Anything).Return(nil).Once()
	db.On("CreateCollection", mock.Anything, "c", mock.Anything).Return(nil).Once()

	req := &Request{CollectionName: "c"}

	created, err := s.h.CreateCollection(ctx, req, options.CreateCollection().SetCapped(true).SetSizeInBytes(4096))
	require.NoError(t, err)
	assert.True(t, created)

	capped, err := s.h.IsCapped(ctx, req)
	require.NoError(t, err)
	assert.True(t, capped)

	opts, err := s.h.GetOptions(ctx, req)
	require.NoError(t, err)
	assert.Equal(t, bson.M{"capped": true, "size": int32(4096)}, opts)

	renamed, err := s.h.RenameCollection(ctx, &Request{CollectionName: "c", FieldName: "d"})
	require.NoError(t, err)
	assert.True(t, renamed)

	renamed, err = s.h.RenameCollection(ctx, &Request{CollectionName: "c", FieldName: "d"}, &RenameOptions{DropTarget: true})
	require.NoError(t, err)
	assert.True(t, renamed)

	dropped, err := s.h.DropCollection(ctx, req)
	require.NoError(t, err)
	assert.True(t, dropped)

	c.AssertExpectations(t)
	db.AssertExpectations(t)
}

func TestDoesCollectionExist(t *testing.T) {
	t.Parallel()

	s := setupHandler(t)
	ctx := testutil.Ctx(t)
	s.connect(t, "c")
	db := s.dbs[s.h.config.DatabaseNames[0]]

	filter := bson.D{{Key: "name", Value: "c"}}
	db.On("ListCollectionNames", mock.Anything, filter).Return([]string{"c"}, nil).Once()
	db.On("ListCollectionNames", mock.Anything, filter).Return([]string{}, nil).Once()
	db.On("ListCollectionNames", mock.Anything, filter).Return(nil, errors.New("list failed")).Once()

	for _, expected := range []bool{true, false, false} {
		exists, err := s.h.DoesCollectionExist(ctx, &Request{CollectionName: "c"})
		require.NoError(t, err)
		assert.Equal(t, expected, exists)
	}

	exists, err := s.h.DoesCollectionExist(ctx, &Request{DBName: "unknown", CollectionName: "c"})
	require.NoError(t, err)
	assert.False(t, exists)

	db.AssertExpectations(t)
}

func TestDropDatabase(t *testing.T) {
	t.Parallel()

	s := setupHandler(t, "a", "b")
	ctx := testutil.Ctx(t)

	// unconfigured databases are rejected even before connection
	for _, name := range []string{"", "unknown"} {
		dropped, err := s.h.DropDatabase(ctx, name)
		require.NoError(t, err)
		assert.False(t, dropped)
	}

	s.connect(t, "c")

	for _, name := range []string{"", "unknown"} {
		dropped, err := s.h.DropDatabase(ctx, name)
		require.NoError(t, err)
		assert.False(t, dropped)
	}

	s.dbs["b"].On("Drop", mock.Anything).Return(nil).Once()

	dropped, err := s.h.DropDatabase(ctx, "b")
	require.NoError(t, err)
	assert.True(t, dropped)

	s.dbs["a"].AssertExpectations(t)
	s.dbs["b"].AssertExpectations(t)
}
