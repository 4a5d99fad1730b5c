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
	"errors"
	"time"

	"go.opentelemetry.io/otel/attribute"
	"go.uber.org/zap"

	"github.com/FerretDB/mongodbhandler/internal/driver"
	"github.com/FerretDB/mongodbhandler/internal/util/observability"
)

// call describes a single operation call for tracing, metrics, and logging.
type call struct {
	op         string
	db         string
	collection string

	// error codes the operation may return
	codes []ErrorCode
}

// resolutionCodes are error codes of request validation and resolution.
var resolutionCodes = []ErrorCode{
	ErrorCodeNotConnected,
	ErrorCodeDatabaseNotInitialized,
	ErrorCodeDatabaseNameIsNull,
	ErrorCodeMissingParameter,
	ErrorCodeTypeMismatch,
}

// run calls fn with observability: a trace region, an OpenTelemetry span, metrics, and logging.
//
// Every driver call made by the handler goes through run.
func run[T any](ctx context.Context, h *Handler, c *call, fn func(context.Context) (T, error)) (res T, err error) {
	defer observability.Region(ctx, "handler."+c.op)()

	ctx, span := observability.StartSpan(
		ctx, "handler."+c.op,
		attribute.String("db.operation", c.op),
		attribute.String("db.name", c.db),
		attribute.String("db.mongodb.collection", c.collection),
	)

	start := time.Now()

	defer func() {
		d := time.Since(start)

		observability.EndSpan(span, err)
		h.m.observe(c.op, err, d)
		h.log(c, err, d)

		checkError(err, c.codes...)
	}()

	res, err = fn(ctx)

	return
}

// log logs the result of the call.
//
// Handler errors are caller's mistakes and logged at debug level; driver errors are warnings.
func (h *Handler) log(c *call, err error, d time.Duration) {
	fields := []zap.Field{
		zap.String("op", c.op),
		zap.Duration("duration", d),
	}

	if c.db != "" {
		fields = append(fields, zap.String("db", c.db))
	}

	if c.collection != "" {
		fields = append(fields, zap.String("collection", c.collection))
	}

	var e *Error

	switch {
	case err == nil:
		h.l.Debug("Operation finished", fields...)
	case errors.As(err, &e):
		h.l.Debug("Operation rejected", append(fields, zap.Error(err))...)
	default:
		h.l.Warn("Operation failed", append(fields, zap.Error(err))...)
	}
}

// dispatchDatabase validates the request, resolves its database, and calls fn with it.
//
// Validation always happens before resolution; no driver call is made for invalid requests.
func dispatchDatabase[T any](
	ctx context.Context, h *Handler, op string, req *Request, r requirements,
	fn func(context.Context, driver.Database) (T, error),
) (T, error) {
	if req == nil {
		req = new(Request)
	}

	c := &call{
		op:         op,
		db:         req.DBName,
		collection: req.CollectionName,
		codes:      resolutionCodes,
	}

	return run(ctx, h, c, func(ctx context.Context) (T, error) {
		var zero T

		if err := r.check(req); err != nil {
			return zero, err
		}

		db, err := h.resolveDatabase(req.DBName)
		if err != nil {
			return zero, err
		}

		return fn(ctx, db)
	})
}

// dispatch validates the request, resolves its collection, and calls fn with it.
//
// See dispatchDatabase.
func dispatch[T any](
	ctx context.Context, h *Handler, op string, req *Request, r requirements,
	fn func(context.Context, driver.Database, driver.Collection) (T, error),
) (T, error) {
	return dispatchDatabase(ctx, h, op, req, r, func(ctx context.Context, db driver.Database) (T, error) {
		return fn(ctx, db, db.Collection(req.CollectionName))
	})
}
