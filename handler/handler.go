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

// Package handler provides a convenience wrapper around the MongoDB driver.
//
// A [Handler] holds connection configuration, resolves configured databases on [Handler.Connect],
// validates required request parameters, and forwards CRUD operations to the driver.
//
// Errors are either *[Error] values for invalid configuration, unmet preconditions, or invalid requests,
// or driver errors returned as is.
// Nothing is retried.
package handler

import (
	"context"
	"fmt"
	"sync/atomic"

	"github.com/google/uuid"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"go.uber.org/zap"

	"github.com/FerretDB/mongodbhandler/internal/driver"
	"github.com/FerretDB/mongodbhandler/internal/driver/mongodriver"
	"github.com/FerretDB/mongodbhandler/internal/util/lazyerrors"
	"github.com/FerretDB/mongodbhandler/internal/util/must"
)

// DatabaseEntry represents a database resolved by Connect.
type DatabaseEntry struct {
	Name     string
	Database *mongo.Database
}

// entry represents a resolved database.
type entry struct {
	name string
	db   driver.Database
}

// connection represents the state of a connected handler.
//
// It is immutable once published.
type connection struct {
	client  driver.Client
	entries []entry
}

// Handler handles all communication between the application and MongoDB.
//
// Operations may be called concurrently.
// Connect and Disconnect are expected to be called by a single owner.
type Handler struct {
	config  *Config
	connect driver.Connector
	l       *zap.Logger
	m       *metrics

	conn atomic.Pointer[connection]
}

// New creates a new handler with the given configuration.
//
// It validates configuration, but does not connect.
// Invalid configuration is reported as *Error with ErrorCodeInvalidConfig.
func New(config *Config) (*Handler, error) {
	c, err := config.validate()
	if err != nil {
		return nil, err
	}

	return &Handler{
		config:  c,
		connect: mongodriver.Connect,
		l:       c.Logger.Named("handler").With(zap.String("handler", uuid.NewString())),
		m:       newMetrics(),
	}, nil
}

// Connect connects to MongoDB and resolves all configured databases.
//
// It returns false without an error if the driver reported no error, but no client either.
// If any configured database can't be resolved, the client is closed,
// and ErrorCodeDatabaseNotInitialized is returned.
func (h *Handler) Connect(ctx context.Context) (bool, error) {
	return run(ctx, h, &call{
		op:    "Connect",
		codes: []ErrorCode{ErrorCodeAlreadyConnected, ErrorCodeDatabaseNotInitialized},
	}, func(ctx context.Context) (bool, error) {
		if h.conn.Load() != nil {
			return false, newError(ErrorCodeAlreadyConnected, lazyerrors.New("Connect called twice"))
		}

		var opts []*options.ClientOptions
		if h.config.ClientOptions != nil {
			opts = append(opts, h.config.ClientOptions)
		}

		opts = append(opts, options.Client().ApplyURI(h.config.URI))

		client, err := h.connect(ctx, opts...)
		if err != nil {
			return false, err
		}

		if client == nil {
			h.l.Warn("Driver returned neither client nor error")
			return false, nil
		}

		entries, err := h.resolveEntries(client)
		if err == nil && !h.conn.CompareAndSwap(nil, &connection{client: client, entries: entries}) {
			err = newError(ErrorCodeAlreadyConnected, lazyerrors.New("concurrent Connect calls"))
		}

		if err != nil {
			if dErr := client.Disconnect(ctx); dErr != nil {
				h.l.Warn("Failed to disconnect", zap.Error(dErr))
			}

			return false, err
		}

		h.l.Info("Connected", zap.Strings("databases", h.config.DatabaseNames))

		return true, nil
	})
}

// resolveEntries resolves all configured databases in order.
func (h *Handler) resolveEntries(client driver.Client) ([]entry, error) {
	entries := make([]entry, 0, len(h.config.DatabaseNames))

	for _, name := range h.config.DatabaseNames {
		// config validation rejects empty names
		must.NotBeZero(name)

		var opts []*options.DatabaseOptions
		if o := h.config.DatabaseOptions[name]; o != nil {
			opts = append(opts, o)
		}

		db, err := client.Database(name, opts...)
		if err == nil && db == nil {
			err = lazyerrors.New("driver returned no database handle")
		}

		if err != nil {
			return nil, newErrorWithArgument(
				ErrorCodeDatabaseNotInitialized,
				fmt.Errorf("failed to establish a database connection to %q: %w", name, err),
				name,
			)
		}

		entries = append(entries, entry{name: name, db: db})
	}

	must.BeTrue(len(entries) == len(h.config.DatabaseNames))

	return entries, nil
}

// Disconnect closes the connection.
//
// It returns true if the handler was connected, false otherwise.
// Handler state is cleared even if the driver fails to close the connection;
// that error is returned together with true.
func (h *Handler) Disconnect(ctx context.Context) (bool, error) {
	return run(ctx, h, &call{op: "Disconnect"}, func(ctx context.Context) (bool, error) {
		c := h.conn.Swap(nil)
		if c == nil {
			return false, nil
		}

		h.l.Info("Disconnecting")

		return true, c.client.Disconnect(ctx)
	})
}

// Ping checks that the primary is reachable.
func (h *Handler) Ping(ctx context.Context) error {
	_, err := run(ctx, h, &call{
		op:    "Ping",
		codes: []ErrorCode{ErrorCodeNotConnected},
	}, func(ctx context.Context) (struct{}, error) {
		c, err := h.connection()
		if err != nil {
			return struct{}{}, err
		}

		return struct{}{}, c.client.Ping(ctx)
	})

	return err
}

// Databases returns resolved databases in configured order, or nil if the handler is not connected.
func (h *Handler) Databases() []DatabaseEntry {
	c := h.conn.Load()
	if c == nil {
		return nil
	}

	res := make([]DatabaseEntry, len(c.entries))
	for i, e := range c.entries {
		res[i] = DatabaseEntry{Name: e.name, Database: e.db.Mongo()}
	}

	return res
}

// Client returns the driver client, or nil if the handler is not connected.
//
// It can be used for operations that the handler does not cover.
func (h *Handler) Client() *mongo.Client {
	c := h.conn.Load()
	if c == nil {
		return nil
	}

	return c.client.Mongo()
}

// Database returns the driver database with the given name, or the default database if name is empty.
//
// It returns nil if the handler is not connected or the database is not configured.
func (h *Handler) Database(name string) *mongo.Database {
	c := h.conn.Load()
	if c == nil {
		return nil
	}

	db, err := c.database(name)
	if err != nil {
		return nil
	}

	return db.Mongo()
}
