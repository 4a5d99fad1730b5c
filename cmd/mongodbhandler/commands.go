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
	"context"
	"errors"
	"fmt"
	"io"

	"github.com/AlekSi/pointer"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/FerretDB/mongodbhandler/handler"
)

// execute runs a parsed command against the connected handler and writes results to w.
func execute(ctx context.Context, h *handler.Handler, c *cliFlags, cmd string, w io.Writer) error {
	switch cmd {
	case "ping":
		if err := h.Ping(ctx); err != nil {
			return err
		}

		return writeDocument(w, bson.D{{Key: "ok", Value: true}})

	case "find <collection>":
		req, err := newRequest(&c.Find.Target, c.Find.Filter)
		if err != nil {
			return err
		}

		sort, err := parseDocument(c.Find.Sort)
		if err != nil {
			return err
		}

		// keep Sort absent instead of a typed nil
		if sort != nil {
			req.Sort = sort
		}

		req.Skip = pointer.ToInt64(c.Find.Skip)
		req.Limit = pointer.ToInt64(c.Find.Limit)

		docs, err := h.GetDataItemsMany(ctx, req)
		if err != nil {
			return err
		}

		for _, doc := range docs {
			if err = writeDocument(w, doc); err != nil {
				return err
			}
		}

		return nil

	case "find-one <collection>":
		req, err := newRequest(&c.FindOne.Target, c.FindOne.Filter)
		if err != nil {
			return err
		}

		doc, err := h.GetDataItem(ctx, req)
		if err != nil || doc == nil {
			return err
		}

		return writeDocument(w, doc)

	case "insert <collection> <document>":
		docs, err := parseDocuments(c.Insert.Documents)
		if err != nil {
			return err
		}

		req := &handler.Request{DBName: c.Insert.DB, CollectionName: c.Insert.Collection}

		if len(docs) == 1 {
			req.Data = docs[0]

			res, err := h.AddDataItem(ctx, req)
			if err != nil {
				return err
			}

			return writeDocument(w, bson.D{{Key: "insertedIds", Value: bson.A{res.InsertedID}}})
		}

		req.Data = docs

		res, err := h.AddMultipleDataItems(ctx, req)
		if err != nil {
			return err
		}

		return writeDocument(w, bson.D{{Key: "insertedIds", Value: bson.A(res.InsertedIDs)}})

	case "update <collection> <set>":
		req, err := newRequest(&c.Update.Target, c.Update.Filter)
		if err != nil {
			return err
		}

		set, err := parseDocument(c.Update.Set)
		if err != nil {
			return err
		}

		if len(set) == 0 {
			return errors.New("nothing to set")
		}

		req.Data = set

		modify := h.ModifyDataItem
		if c.Update.Many {
			modify = h.ModifyDataItemsMany
		}

		res, err := modify(ctx, req)
		if err != nil {
			return err
		}

		return writeDocument(w, bson.D{
			{Key: "matched", Value: res.MatchedCount},
			{Key: "modified", Value: res.ModifiedCount},
		})

	case "delete <collection>":
		req, err := newRequest(&c.Delete.Target, c.Delete.Filter)
		if err != nil {
			return err
		}

		del := h.DeleteItemSingle
		if c.Delete.Many {
			del = h.DeleteItemMany
		}

		res, err := del(ctx, req)
		if err != nil {
			return err
		}

		return writeDocument(w, bson.D{{Key: "deleted", Value: res.DeletedCount}})

	case "count <collection>":
		req, err := newRequest(&c.Count.Target, c.Count.Filter)
		if err != nil {
			return err
		}

		n, err := h.CountDataItems(ctx, req)
		if err != nil {
			return err
		}

		return writeDocument(w, bson.D{{Key: "count", Value: n}})

	case "distinct <collection> <field>":
		req, err := newRequest(&c.Distinct.Target, c.Distinct.Filter)
		if err != nil {
			return err
		}

		req.FieldName = c.Distinct.Field

		values, err := h.GetFieldList(ctx, req)
		if err != nil {
			return err
		}

		return writeDocument(w, bson.D{{Key: "values", Value: bson.A(values)}})

	case "indexes <collection>":
		req, _ := newRequest(&c.Indexes.Target, "")

		indexes, err := h.GetIndices(ctx, req)
		if err != nil {
			return err
		}

		for _, index := range indexes {
			if err = writeDocument(w, index); err != nil {
				return err
			}
		}

		return nil

	case "exists <collection>":
		req, _ := newRequest(&c.Exists.Target, "")

		exists, err := h.DoesCollectionExist(ctx, req)
		if err != nil {
			return err
		}

		return writeDocument(w, bson.D{{Key: "exists", Value: exists}})

	case "create-collection <collection>":
		req, _ := newRequest(&c.CreateCollection.Target, "")

		opts := options.CreateCollection()
		if c.CreateCollection.Capped {
			opts.SetCapped(true).SetSizeInBytes(c.CreateCollection.Size)
		}

		ok, err := h.CreateCollection(ctx, req, opts)
		if err != nil {
			return err
		}

		return writeDocument(w, bson.D{{Key: "ok", Value: ok}})

	case "drop-collection <collection>":
		req, _ := newRequest(&c.DropCollection.Target, "")

		ok, err := h.DropCollection(ctx, req)
		if err != nil {
			return err
		}

		return writeDocument(w, bson.D{{Key: "ok", Value: ok}})

	case "rename-collection <collection> <to>":
		req, _ := newRequest(&c.RenameCollection.Target, "")
		req.FieldName = c.RenameCollection.To

		ok, err := h.RenameCollection(ctx, req, &handler.RenameOptions{DropTarget: c.RenameCollection.DropTarget})
		if err != nil {
			return err
		}

		return writeDocument(w, bson.D{{Key: "ok", Value: ok}})

	case "drop-database <name>":
		ok, err := h.DropDatabase(ctx, c.DropDatabase.Name)
		if err != nil {
			return err
		}

		return writeDocument(w, bson.D{{Key: "ok", Value: ok}})

	default:
		return fmt.Errorf("unknown command: %s", cmd)
	}
}

// newRequest returns a request for the target with the given Extended JSON filter.
//
// An empty filter leaves Query absent.
func newRequest(t *Target, filter string) (*handler.Request, error) {
	req := &handler.Request{
		DBName:         t.DB,
		CollectionName: t.Collection,
	}

	query, err := parseDocument(filter)
	if err != nil {
		return nil, err
	}

	if query != nil {
		req.Query = query
	}

	return req, nil
}
